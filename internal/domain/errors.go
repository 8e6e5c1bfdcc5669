package domain

import (
	"errors"
	"fmt"
)

var (
	ErrPositionNotFound  = errors.New("position not found")
	ErrInvalidStackIndex = errors.New("invalid stack index")
	ErrNotViewing        = errors.New("no position selected")
	ErrUnknownBelt       = errors.New("unknown belt")
	ErrUnknownOptionKind = errors.New("unknown option kind")
	ErrInvalidTapDate    = errors.New("invalid tap date")
	ErrTapNotFound       = errors.New("tap not found")
)

// PositionNotFoundError reports a lookup of an id absent from the graph.
// It matches ErrPositionNotFound with errors.Is.
type PositionNotFoundError struct {
	ID string
}

func (e *PositionNotFoundError) Error() string {
	return fmt.Sprintf("position %q not found", e.ID)
}

func (e *PositionNotFoundError) Is(target error) bool {
	return target == ErrPositionNotFound
}

// StackIndexError reports a JumpTo index outside [-1, len(stack)).
type StackIndexError struct {
	Index int
	Len   int
}

func (e *StackIndexError) Error() string {
	return fmt.Sprintf("stack index %d out of range (stack length %d)", e.Index, e.Len)
}

func (e *StackIndexError) Is(target error) bool {
	return target == ErrInvalidStackIndex
}

// ReferenceRole says which end of an option a dangling reference sits on.
type ReferenceRole string

const (
	RoleTarget ReferenceRole = "target" // transition target is undefined
	RoleSource ReferenceRole = "source" // option declared on an undefined position
)

// DanglingReferenceError is a data-integrity defect found by Validate.
type DanglingReferenceError struct {
	From    string        `json:"from"`
	Option  string        `json:"option"`
	Missing string        `json:"missing"`
	Role    ReferenceRole `json:"role"`
}

func (e DanglingReferenceError) Error() string {
	if e.Role == RoleSource {
		return fmt.Sprintf("option %q declared on undefined position %q", e.Option, e.Missing)
	}
	return fmt.Sprintf("option %q on %q targets undefined position %q", e.Option, e.From, e.Missing)
}
