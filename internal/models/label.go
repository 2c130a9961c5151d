package models

import (
	"fmt"
	"regexp"
)

// Label is an entry in the process-wide tag dictionary.
type Label struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

// colorRegex validates label colors (#rgb or #rrggbb).
var colorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6})$`)

// ValidateColor validates a label color.
func ValidateColor(color string) error {
	if !colorRegex.MatchString(color) {
		return fmt.Errorf("label color must be a hex color like #3b82f6, got %q", color)
	}
	return nil
}

// Validate validates the label fields.
func (l *Label) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("label id cannot be empty")
	}
	if l.Name == "" {
		return fmt.Errorf("label name cannot be empty")
	}
	return ValidateColor(l.Color)
}

// DefaultLabels returns the label dictionary seeded into stores that have none.
func DefaultLabels() []*Label {
	return []*Label{
		{ID: "urgent", Name: "Urgent", Color: "#dc2626"},
		{ID: "quick-win", Name: "Quick win", Color: "#16a34a"},
		{ID: "external", Name: "Extern", Color: "#2563eb"},
		{ID: "research", Name: "Onderzoek", Color: "#9333ea"},
		{ID: "waiting", Name: "Wacht op derden", Color: "#d97706"},
	}
}
