// Package handler implements the jjplan HTTP API.
//
// GamePlanHandler serves the position graph, navigation sessions and the
// belt-filtered catalog. TapHandler serves the Tap List log and the raw
// storage contract. TimerHandler reads the roll timer.
//
// # Response Format
//
// Success responses return JSON data with appropriate status codes (200, 201).
// Error responses return JSON with {error, details} structure. Domain errors
// map to statuses by kind: not found is 404, bad input is 400, a navigation
// operation outside the Viewing state is 409.
//
// Read-only dataset endpoints carry the dataset fingerprint as an ETag and
// answer If-None-Match with 304.
//
// # Middleware
//
// Chain composes Recover, CORS, Logger, Metrics and Compress around the mux.
package handler
