package domain

import "fmt"

// OptionKind is the closed set of edge kinds leaving a position
type OptionKind string

const (
	KindSubmission OptionKind = "submission"
	KindTakedown   OptionKind = "takedown"
	KindTransition OptionKind = "transition"
)

// ParseOptionKind converts a dataset string into an OptionKind
func ParseOptionKind(s string) (OptionKind, error) {
	k := OptionKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownOptionKind, s)
	}
	return k, nil
}

// Valid reports whether k is one of the known kinds
func (k OptionKind) Valid() bool {
	switch k {
	case KindSubmission, KindTakedown, KindTransition:
		return true
	}
	return false
}

// Terminal reports whether the kind ends the line of play.
// Terminal moves carry no outgoing edges of their own.
func (k OptionKind) Terminal() bool {
	switch k {
	case KindSubmission, KindTakedown:
		return true
	case KindTransition:
		return false
	}
	return false
}

// Option is a directed edge originating at a position
type Option struct {
	Label     string     `json:"label"`
	Kind      OptionKind `json:"kind"`
	Target    string     `json:"target,omitempty"`     // transition only
	EdgeLabel string     `json:"edge_label,omitempty"` // setup annotation, informational
}

// NewTransition creates a transition option to another position
func NewTransition(label, target, edgeLabel string) Option {
	return Option{Label: label, Kind: KindTransition, Target: target, EdgeLabel: edgeLabel}
}

// NewSubmission creates a terminal submission option
func NewSubmission(label, edgeLabel string) Option {
	return Option{Label: label, Kind: KindSubmission, EdgeLabel: edgeLabel}
}

// NewTakedown creates a terminal takedown option
func NewTakedown(label, edgeLabel string) Option {
	return Option{Label: label, Kind: KindTakedown, EdgeLabel: edgeLabel}
}

// ResolveTransition returns the destination id of a transition option.
// Submissions and takedowns never resolve; callers must not descend from them.
func ResolveTransition(o Option) (string, bool) {
	if o.Kind != KindTransition || o.Target == "" {
		return "", false
	}
	return o.Target, true
}

// PositionOption ties a raw option row to the position it leaves from
type PositionOption struct {
	From string
	Option
}
