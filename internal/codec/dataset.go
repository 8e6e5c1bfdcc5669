package codec

// Dataset is the canonical, versioned wire form of the game plan data.
// Every codec reads and writes this one schema.
type Dataset struct {
	Version        string           `json:"version" yaml:"version" toml:"version" validate:"required"`
	Positions      []PositionRecord `json:"positions" yaml:"positions" toml:"positions" validate:"required,min=1,dive"`
	StartPositions []string         `json:"start_positions" yaml:"start_positions" toml:"start_positions" validate:"required,min=1,dive,required"`
	Catalog        []CatalogRecord  `json:"catalog" yaml:"catalog" toml:"catalog" validate:"dive"`
	Tips           []TipRecord      `json:"tips,omitempty" yaml:"tips,omitempty" toml:"tips,omitempty" validate:"dive"`
	TapList        []RosterRecord   `json:"tap_list,omitempty" yaml:"tap_list,omitempty" toml:"tap_list,omitempty" validate:"dive"`
}

// PositionRecord is one position with its ordered options
type PositionRecord struct {
	ID      string         `json:"id" yaml:"id" toml:"id" validate:"required"`
	Label   string         `json:"label" yaml:"label" toml:"label" validate:"required"`
	Icon    string         `json:"icon,omitempty" yaml:"icon,omitempty" toml:"icon,omitempty"`
	Options []OptionRecord `json:"options,omitempty" yaml:"options,omitempty" toml:"options,omitempty" validate:"dive"`
}

// OptionRecord is one edge leaving a position. Target is set for
// transitions only.
type OptionRecord struct {
	Label     string `json:"label" yaml:"label" toml:"label" validate:"required"`
	Kind      string `json:"kind" yaml:"kind" toml:"kind" validate:"required,optionkind"`
	Target    string `json:"target,omitempty" yaml:"target,omitempty" toml:"target,omitempty" validate:"required_if=Kind transition,excluded_unless=Kind transition"`
	EdgeLabel string `json:"edge_label,omitempty" yaml:"edge_label,omitempty" toml:"edge_label,omitempty"`
}

// CatalogRecord is one belt-annotated (position, submission) row
type CatalogRecord struct {
	From       string `json:"from" yaml:"from" toml:"from" validate:"required"`
	Submission string `json:"submission" yaml:"submission" toml:"submission" validate:"required"`
	Belt       string `json:"belt" yaml:"belt" toml:"belt" validate:"required,belt"`
	Setup      string `json:"setup,omitempty" yaml:"setup,omitempty" toml:"setup,omitempty"`
}

// TipRecord attaches a contextual hint to a position
type TipRecord struct {
	Position string `json:"position" yaml:"position" toml:"position" validate:"required"`
	Text     string `json:"text" yaml:"text" toml:"text" validate:"required"`
}

// RosterRecord is a Tap List submission and its category
type RosterRecord struct {
	Name     string `json:"name" yaml:"name" toml:"name" validate:"required"`
	Category string `json:"category" yaml:"category" toml:"category" validate:"required"`
}
