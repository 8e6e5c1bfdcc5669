// Package timer models a roll timer: rounds of work separated by rest.
//
// The model is pure deadline arithmetic. Callers keep the start time and ask
// for the state at an elapsed duration, so there is no ticking goroutine to
// stop and the same plan can be shared by any number of clients.
package timer

import (
	"errors"
	"fmt"
	"time"
)

// Phase is the part of a round the timer is in
type Phase string

const (
	PhaseWork Phase = "work"
	PhaseRest Phase = "rest"
	PhaseDone Phase = "done"
)

var ErrInvalidPlan = errors.New("invalid timer plan")

// Plan limits. They keep Total well inside time.Duration.
const (
	MaxPhase  = 24 * time.Hour
	MaxRounds = 1000
)

// Plan describes a roll session
type Plan struct {
	Work   time.Duration `json:"work"`
	Rest   time.Duration `json:"rest"`
	Rounds int           `json:"rounds"`
}

// DefaultPlan is five six-minute rounds with a minute of rest
func DefaultPlan() Plan {
	return Plan{Work: 6 * time.Minute, Rest: time.Minute, Rounds: 5}
}

// Validate rejects non-positive work or rounds, negative rest, and values
// above MaxPhase or MaxRounds
func (p Plan) Validate() error {
	switch {
	case p.Work <= 0:
		return fmt.Errorf("%w: work must be positive, got %s", ErrInvalidPlan, p.Work)
	case p.Work > MaxPhase:
		return fmt.Errorf("%w: work must be at most %s, got %s", ErrInvalidPlan, MaxPhase, p.Work)
	case p.Rest < 0:
		return fmt.Errorf("%w: rest must not be negative, got %s", ErrInvalidPlan, p.Rest)
	case p.Rest > MaxPhase:
		return fmt.Errorf("%w: rest must be at most %s, got %s", ErrInvalidPlan, MaxPhase, p.Rest)
	case p.Rounds < 1:
		return fmt.Errorf("%w: rounds must be at least 1, got %d", ErrInvalidPlan, p.Rounds)
	case p.Rounds > MaxRounds:
		return fmt.Errorf("%w: rounds must be at most %d, got %d", ErrInvalidPlan, MaxRounds, p.Rounds)
	}
	return nil
}

// Total returns the session length. The last round has no trailing rest.
func (p Plan) Total() time.Duration {
	if p.Rounds < 1 {
		return 0
	}
	return time.Duration(p.Rounds)*p.Work + time.Duration(p.Rounds-1)*p.Rest
}

// State is the timer reading at some elapsed time
type State struct {
	Phase     Phase         `json:"phase"`
	Round     int           `json:"round"` // 1-based; Rounds once done
	Remaining time.Duration `json:"remaining"`
	Done      bool          `json:"done"`
}

// At returns the state after elapsed has passed since the start.
// Negative elapsed reads as the start.
func (p Plan) At(elapsed time.Duration) State {
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed >= p.Total() {
		return State{Phase: PhaseDone, Round: p.Rounds, Done: true}
	}

	cycle := p.Work + p.Rest
	round := int(elapsed / cycle)
	offset := elapsed - time.Duration(round)*cycle

	if offset < p.Work {
		return State{Phase: PhaseWork, Round: round + 1, Remaining: p.Work - offset}
	}
	return State{Phase: PhaseRest, Round: round + 1, Remaining: cycle - offset}
}
