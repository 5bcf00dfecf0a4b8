package domain

import "strings"

// Step is a named narrative phase extracted from a scenario document.
// Lines are 0-based; EndLine is exclusive, so StartLine < EndLine <= len(lines).
type Step struct {
	Name             string   `json:"name"`
	StartLine        int      `json:"start_line"`
	EndLine          int      `json:"end_line"`
	DescriptionLines []string `json:"description_lines"`
	Table            *Table   `json:"table,omitempty"`
}

// Table is a run of consecutive Markdown table rows.
type Table struct {
	Lines []string `json:"lines"`
}

// Rows splits the table lines into cells, skipping separator rows such as |---|:---:|.
func (t Table) Rows() [][]string {
	rows := make([][]string, 0, len(t.Lines))
	for _, line := range t.Lines {
		trimmed := strings.TrimSpace(line)
		trimmed = strings.TrimPrefix(trimmed, "|")
		trimmed = strings.TrimSuffix(trimmed, "|")

		parts := strings.Split(trimmed, "|")
		cells := make([]string, 0, len(parts))
		separator := true
		for _, p := range parts {
			cell := strings.TrimSpace(p)
			if strings.Trim(cell, "-: ") != "" || cell == "" {
				separator = false
			}
			cells = append(cells, cell)
		}
		if separator {
			continue
		}
		rows = append(rows, cells)
	}
	return rows
}
