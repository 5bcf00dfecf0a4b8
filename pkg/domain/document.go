package domain

// Document is a scenario text loaded for a session.
// It is immutable once loaded and identified by its Name.
type Document struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}
