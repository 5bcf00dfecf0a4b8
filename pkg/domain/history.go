package domain

import (
	"encoding/json"
	"time"
)

// HistoryEntry is a received response stamped with its receipt time.
type HistoryEntry struct {
	Response Response  `json:"response"`
	At       time.Time `json:"at"`
}

// Category is a shortcut for the entry's response category.
func (e HistoryEntry) Category() Category {
	return e.Response.Category()
}

// MarshalJSON adds the category tag so hosts can tell entries apart.
func (e HistoryEntry) MarshalJSON() ([]byte, error) {
	var category Category
	if e.Response != nil {
		category = e.Response.Category()
	}
	return json.Marshal(struct {
		Type     Category  `json:"type"`
		At       time.Time `json:"at"`
		Response Response  `json:"response"`
	}{category, e.At, e.Response})
}
