// Package domain defines the core types for the JJ Game Plan grappling graph.
//
// This package contains the reference data and pure query logic behind the
// Game Plan, Flow and Submission Map views, plus the tap log kept by the Tap
// List.
//
// # Core Types
//
// Position is a named grappling state (Closed Guard, Mount, ...). Positions
// are immutable reference data loaded once from the canonical dataset.
//
// Option is a directed edge leaving a Position. Its OptionKind is a closed
// set: transitions lead to another Position, submissions and takedowns are
// terminal finishing moves.
//
// PositionGraph maps every Position to its ordered Options and answers the
// read-only queries (OptionsFor, SubgraphView, Flow, Validate).
//
// # Navigation
//
// Navigator is the drill-down state machine. It is either Home (empty stack)
// or Viewing a non-empty stack of position ids whose last element is the
// displayed position. TipLedger records which contextual tips a session has
// already surfaced.
//
// # Submission Catalog
//
// Catalog is the belt-annotated multigraph of (position, submission) pairs.
// Belts are totally ordered white < blue < purple < brown < black and a
// BeltFilter selects every edge at or below a tier.
//
// # Tap Log
//
// TapLog maps a submission name to the dated entries recorded for it, and
// ComputeStats derives the collected count, top move, streaks and the share
// line.
//
// # Design Principles
//
// - Immutable reference data, mutable state only in Navigator and TapLog
// - No database or external dependencies
// - Deterministic ordering everywhere output is enumerated
package domain
