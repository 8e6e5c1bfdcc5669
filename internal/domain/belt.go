package domain

import (
	"fmt"
	"strings"
)

// Belt is a difficulty tier with a strict total order
type Belt string

const (
	BeltWhite  Belt = "white"
	BeltBlue   Belt = "blue"
	BeltPurple Belt = "purple"
	BeltBrown  Belt = "brown"
	BeltBlack  Belt = "black"
)

var beltOrder = []Belt{BeltWhite, BeltBlue, BeltPurple, BeltBrown, BeltBlack}

// Belts returns every belt from lowest to highest
func Belts() []Belt {
	return append([]Belt(nil), beltOrder...)
}

// Rank returns the belt's position in the order, or -1 when unknown
func (b Belt) Rank() int {
	for i, o := range beltOrder {
		if o == b {
			return i
		}
	}
	return -1
}

// Valid reports whether b is a known belt
func (b Belt) Valid() bool {
	return b.Rank() >= 0
}

// ParseBelt parses a belt name case-insensitively
func ParseBelt(s string) (Belt, error) {
	b := Belt(strings.ToLower(strings.TrimSpace(s)))
	if !b.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownBelt, s)
	}
	return b, nil
}

// BeltFilter is a maximum tier, or BeltAll for no filtering
type BeltFilter string

// BeltAll is the unfiltered sentinel
const BeltAll BeltFilter = "all"

// UpTo returns the filter admitting b and every lower belt
func UpTo(b Belt) BeltFilter {
	return BeltFilter(b)
}

// ParseBeltFilter accepts a belt name, "all", or an empty string (all)
func ParseBeltFilter(s string) (BeltFilter, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" || s == string(BeltAll) {
		return BeltAll, nil
	}
	b, err := ParseBelt(s)
	if err != nil {
		return "", err
	}
	return UpTo(b), nil
}

// Admits reports whether an edge of belt b passes the filter
func (f BeltFilter) Admits(b Belt) bool {
	if f == BeltAll {
		return true
	}
	ceiling := Belt(f).Rank()
	rank := b.Rank()
	return rank >= 0 && ceiling >= 0 && rank <= ceiling
}
