package domain

// Position is a named grappling state. Positions are reference data: they are
// defined when the dataset loads and never change afterwards.
type Position struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}

// NewPosition creates a position
func NewPosition(id, label string) Position {
	return Position{ID: id, Label: label}
}

// StartPosition is an entry point offered on the home screen
type StartPosition struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon,omitempty"`
}
