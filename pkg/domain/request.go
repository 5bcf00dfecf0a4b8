package domain

// Request is what the session sends to the generation collaborator.
type Request struct {
	// Corpus is every loaded document, each possibly length-capped.
	Corpus []Document `json:"corpus"`

	// State is a snapshot of the game state at request time.
	State GameState `json:"state"`

	// Query is the free-text instruction for the collaborator.
	Query string `json:"query"`

	// Intent selects the expected response category.
	Intent Intent `json:"intent"`
}
