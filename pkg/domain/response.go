package domain

// Category is the wire discriminator of a collaborator response.
type Category string

const (
	CategorySceneBrief        Category = "GM_BRIEF"
	CategoryNarrative         Category = "PLAYER_FACING"
	CategorySystemMessage     Category = "COMPUTER_MESSAGE"
	CategoryBridgeSuggestions Category = "RAIL_BRIDGES"
	CategoryConsequences      Category = "CONSEQUENCES"
	CategoryOptionSet         Category = "OPTIONS"
	CategoryTurnResolution    Category = "TURN_RESULT"
	CategoryClueSet           Category = "CLUE_DROPS"
	CategoryNPCRoster         Category = "CHARACTERS_LIST"
	CategoryPlayerRoster      Category = "PLAYERS_LIST"
)

// Categories lists every response category in declaration order.
func Categories() []Category {
	return []Category{
		CategorySceneBrief,
		CategoryNarrative,
		CategorySystemMessage,
		CategoryBridgeSuggestions,
		CategoryConsequences,
		CategoryOptionSet,
		CategoryTurnResolution,
		CategoryClueSet,
		CategoryNPCRoster,
		CategoryPlayerRoster,
	}
}

// Response is the closed set of answers the generation collaborator may return.
// Implementations live in this package only; consumers dispatch with a ResponseVisitor,
// so adding a category breaks every visitor at compile time.
type Response interface {
	Category() Category
	Provenance() []string
	Accept(v ResponseVisitor)
	sealed()
}

// ResponseVisitor has one method per response category.
type ResponseVisitor interface {
	VisitSceneBrief(*SceneBrief)
	VisitNarrative(*Narrative)
	VisitSystemMessage(*SystemMessage)
	VisitBridgeSuggestions(*BridgeSuggestions)
	VisitConsequences(*Consequences)
	VisitOptionSet(*OptionSet)
	VisitTurnResolution(*TurnResolution)
	VisitClueSet(*ClueSet)
	VisitNPCRoster(*NPCRoster)
	VisitPlayerRoster(*PlayerRoster)
}

// SceneBrief is a quick game-master summary of the current scene.
type SceneBrief struct {
	Scene   string   `json:"scene" mapstructure:"scene"`
	Bullets []string `json:"bullets" mapstructure:"bullets"`
	Sources []string `json:"sources" mapstructure:"sources"`
}

// Narrative is player-facing descriptive text.
type Narrative struct {
	Title   string   `json:"title" mapstructure:"title"`
	Bullets []string `json:"bullets" mapstructure:"bullets"`
	Sources []string `json:"sources" mapstructure:"sources"`
}

// SystemMessage is an out-of-fiction notice (step changes, errors).
type SystemMessage struct {
	Bullets []string `json:"bullets" mapstructure:"bullets"`
	Sources []string `json:"sources" mapstructure:"sources"`
}

// BridgeSuggestions proposes ways to steer players back to the scenario.
type BridgeSuggestions struct {
	From    string   `json:"from" mapstructure:"from"`
	To      string   `json:"to" mapstructure:"to"`
	Bridges []string `json:"bridges" mapstructure:"bridges"`
	Sources []string `json:"sources" mapstructure:"sources"`
}

// Consequences lists the outcome of a trigger without new options.
type Consequences struct {
	Trigger string   `json:"trigger" mapstructure:"trigger"`
	Bullets []string `json:"bullets" mapstructure:"bullets"`
	Sources []string `json:"sources" mapstructure:"sources"`
}

// OptionSet is a plain list of numbered choices.
type OptionSet struct {
	Prompt  string   `json:"prompt" mapstructure:"prompt"`
	Choices []string `json:"choices" mapstructure:"choices"`
	Sources []string `json:"sources" mapstructure:"sources"`
}

// TurnResolution resolves one player action and refreshes the options.
type TurnResolution struct {
	Trigger      string   `json:"trigger" mapstructure:"trigger"`
	Consequences []string `json:"consequences" mapstructure:"consequences"`
	NewOptions   []string `json:"new_options" mapstructure:"new_options"`
	Sources      []string `json:"sources" mapstructure:"sources"`
}

// ClueSet is the investigation data for the active step.
type ClueSet struct {
	Bullets []string `json:"bullets" mapstructure:"bullets"`
	Sources []string `json:"sources" mapstructure:"sources"`
}

// NPC is a non-player character entry.
type NPC struct {
	Name  string `json:"name" mapstructure:"name"`
	Role  string `json:"role" mapstructure:"role"`
	Trait string `json:"trait" mapstructure:"trait"`
}

// NPCRoster lists the non-player characters relevant to the campaign.
type NPCRoster struct {
	Characters []NPC    `json:"characters" mapstructure:"characters"`
	Sources    []string `json:"sources" mapstructure:"sources"`
}

// PlayerCharacter is a player character entry.
type PlayerCharacter struct {
	Name             string `json:"name" mapstructure:"name"`
	Mutation         string `json:"mutation" mapstructure:"mutation"`
	Society          string `json:"society" mapstructure:"society"`
	SocietyGoal      string `json:"society_goal" mapstructure:"society_goal"`
	PersonalGoal     string `json:"personal_goal" mapstructure:"personal_goal"`
	DescriptionShort string `json:"description_short" mapstructure:"description_short"`
}

// PlayerRoster lists the player characters.
type PlayerRoster struct {
	Players []PlayerCharacter `json:"players" mapstructure:"players"`
	Sources []string          `json:"sources" mapstructure:"sources"`
}

func (r *SceneBrief) Category() Category        { return CategorySceneBrief }
func (r *Narrative) Category() Category         { return CategoryNarrative }
func (r *SystemMessage) Category() Category     { return CategorySystemMessage }
func (r *BridgeSuggestions) Category() Category { return CategoryBridgeSuggestions }
func (r *Consequences) Category() Category      { return CategoryConsequences }
func (r *OptionSet) Category() Category         { return CategoryOptionSet }
func (r *TurnResolution) Category() Category    { return CategoryTurnResolution }
func (r *ClueSet) Category() Category           { return CategoryClueSet }
func (r *NPCRoster) Category() Category         { return CategoryNPCRoster }
func (r *PlayerRoster) Category() Category      { return CategoryPlayerRoster }

func (r *SceneBrief) Provenance() []string        { return r.Sources }
func (r *Narrative) Provenance() []string         { return r.Sources }
func (r *SystemMessage) Provenance() []string     { return r.Sources }
func (r *BridgeSuggestions) Provenance() []string { return r.Sources }
func (r *Consequences) Provenance() []string      { return r.Sources }
func (r *OptionSet) Provenance() []string         { return r.Sources }
func (r *TurnResolution) Provenance() []string    { return r.Sources }
func (r *ClueSet) Provenance() []string           { return r.Sources }
func (r *NPCRoster) Provenance() []string         { return r.Sources }
func (r *PlayerRoster) Provenance() []string      { return r.Sources }

func (r *SceneBrief) Accept(v ResponseVisitor)        { v.VisitSceneBrief(r) }
func (r *Narrative) Accept(v ResponseVisitor)         { v.VisitNarrative(r) }
func (r *SystemMessage) Accept(v ResponseVisitor)     { v.VisitSystemMessage(r) }
func (r *BridgeSuggestions) Accept(v ResponseVisitor) { v.VisitBridgeSuggestions(r) }
func (r *Consequences) Accept(v ResponseVisitor)      { v.VisitConsequences(r) }
func (r *OptionSet) Accept(v ResponseVisitor)         { v.VisitOptionSet(r) }
func (r *TurnResolution) Accept(v ResponseVisitor)    { v.VisitTurnResolution(r) }
func (r *ClueSet) Accept(v ResponseVisitor)           { v.VisitClueSet(r) }
func (r *NPCRoster) Accept(v ResponseVisitor)         { v.VisitNPCRoster(r) }
func (r *PlayerRoster) Accept(v ResponseVisitor)      { v.VisitPlayerRoster(r) }

func (*SceneBrief) sealed()        {}
func (*Narrative) sealed()         {}
func (*SystemMessage) sealed()     {}
func (*BridgeSuggestions) sealed() {}
func (*Consequences) sealed()      {}
func (*OptionSet) sealed()         {}
func (*TurnResolution) sealed()    {}
func (*ClueSet) sealed()           {}
func (*NPCRoster) sealed()         {}
func (*PlayerRoster) sealed()      {}

// NewResponse returns an empty response value for a category, ready to be decoded into.
// It returns false for unknown categories.
func NewResponse(c Category) (Response, bool) {
	switch c {
	case CategorySceneBrief:
		return &SceneBrief{}, true
	case CategoryNarrative:
		return &Narrative{}, true
	case CategorySystemMessage:
		return &SystemMessage{}, true
	case CategoryBridgeSuggestions:
		return &BridgeSuggestions{}, true
	case CategoryConsequences:
		return &Consequences{}, true
	case CategoryOptionSet:
		return &OptionSet{}, true
	case CategoryTurnResolution:
		return &TurnResolution{}, true
	case CategoryClueSet:
		return &ClueSet{}, true
	case CategoryNPCRoster:
		return &NPCRoster{}, true
	case CategoryPlayerRoster:
		return &PlayerRoster{}, true
	}
	return nil, false
}

// GenerationFailure is the fixed entry substituted for a failed or unparseable generation.
func GenerationFailure() *SystemMessage {
	return &SystemMessage{
		Bullets: []string{"CRITICAL AI SYSTEM ERROR", "Check API key", "Check JSON format"},
		Sources: []string{"SYSTEM_ERROR"},
	}
}
