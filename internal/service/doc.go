// Package service implements business logic for JJ Game Plan.
//
// Services sit between the HTTP handlers and the domain/repository layers.
//
// # Services
//
// GamePlanService holds the active game plan (graph, catalog, start
// positions, tips and roster) and the server-side navigation sessions. The
// plan is swapped atomically on reload; sessions keep their stacks and a
// position that disappeared renders as "not found" rather than failing.
//
// TapService persists the Tap List log through a repository.Store under the
// tap-list-data key and derives stats, streaks and the share line.
//
// # Sessions
//
// Each session owns a Navigator and a TipLedger. Mutations on one session
// are serialized by its own mutex; different sessions never contend. Idle
// sessions are swept after the configured TTL.
//
// # Event System
//
// Services publish events via EventBus for real-time updates to connected
// clients via Server-Sent Events: dataset_reloaded, tap_logged and
// tap_deleted.
package service
