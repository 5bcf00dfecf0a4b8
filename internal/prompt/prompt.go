package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/gmboard/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

var (
	// ErrEmptyResponse is returned when the collaborator answered with no text.
	ErrEmptyResponse = errors.New("empty response")
	// ErrMissingType is returned when the JSON object has no "type" field.
	ErrMissingType = errors.New("response has no type")
	// ErrMalformedPayload is returned when a payload lacks a list its category requires.
	ErrMalformedPayload = errors.New("response payload does not match its category")
)

// Render builds the user prompt for req: corpus, state, query and intent.
// Documents are expected to be capped already.
func Render(req domain.Request) (string, error) {
	state, err := json.MarshalIndent(req.State, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode state: %w", err)
	}

	var b strings.Builder
	b.WriteString("### SCENARIO DOCUMENTATION (CANONICAL REFERENCE):\n")
	for _, d := range req.Corpus {
		fmt.Fprintf(&b, "\n--- FILE: %s ---\n%s\n", d.Name, d.Content)
	}
	fmt.Fprintf(&b, "\n### GAME STATE:\n%s\n", state)
	fmt.Fprintf(&b, "\n### USER REQUEST:\n%s\n", req.Query)
	fmt.Fprintf(&b, "\n### INTENT:\n%s\n", req.Intent)
	return b.String(), nil
}

// StripFences removes a surrounding ```json (or bare ```) code fence.
func StripFences(text string) string {
	clean := strings.TrimSpace(text)
	if !strings.HasPrefix(clean, "```") {
		return clean
	}
	clean = strings.TrimPrefix(clean, "```")
	clean = strings.TrimPrefix(clean, "json")
	clean = strings.TrimSuffix(strings.TrimSpace(clean), "```")
	return strings.TrimSpace(clean)
}

// ParseResponse decodes the collaborator's answer into a typed response.
// Unknown categories yield domain.ErrUnknownCategory.
func ParseResponse(text string) (domain.Response, error) {
	clean := StripFences(text)
	if clean == "" {
		return nil, ErrEmptyResponse
	}

	var raw map[string]any
	if err := json.Unmarshal([]byte(clean), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode response json: %w", err)
	}
	return Decode(raw)
}

// requiredLists names the list fields each category must carry besides
// "sources".
var requiredLists = map[domain.Category][]string{
	domain.CategorySceneBrief:        {"bullets"},
	domain.CategoryNarrative:         {"bullets"},
	domain.CategorySystemMessage:     {"bullets"},
	domain.CategoryBridgeSuggestions: {"bridges"},
	domain.CategoryConsequences:      {"bullets"},
	domain.CategoryOptionSet:         {"choices"},
	domain.CategoryTurnResolution:    {"consequences", "new_options"},
	domain.CategoryClueSet:           {"bullets"},
	domain.CategoryNPCRoster:         {"characters"},
	domain.CategoryPlayerRoster:      {"players"},
}

// Decode converts a generic JSON object into a typed response, dispatching on
// its "type" field. The lists a category relies on, and "sources", must be
// present as arrays; anything else yields ErrMalformedPayload.
func Decode(raw map[string]any) (domain.Response, error) {
	tag, _ := raw["type"].(string)
	if tag == "" {
		return nil, ErrMissingType
	}
	category := domain.Category(strings.TrimSpace(tag))
	resp, ok := domain.NewResponse(category)
	if !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnknownCategory, tag)
	}
	for _, field := range append([]string{"sources"}, requiredLists[category]...) {
		if _, isList := raw[field].([]any); !isList {
			return nil, fmt.Errorf("%w: %s needs a %q list", ErrMalformedPayload, category, field)
		}
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           resp,
		WeaklyTypedInput: true,
		TagName:          "mapstructure",
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", tag, err)
	}
	return resp, nil
}
