package handler

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"jjplan/internal/timer"
)

// TimerHandler reads the roll timer
type TimerHandler struct {
	responder
	defaults timer.Plan
}

// NewTimerHandler creates a timer handler with the configured defaults
func NewTimerHandler(defaults timer.Plan, logger *zap.Logger) *TimerHandler {
	return &TimerHandler{responder: newResponder(logger), defaults: defaults}
}

// Register adds the timer route to mux
func (h *TimerHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/timer", h.GetState)
}

// TimerResponse is the plan with its reading at the requested elapsed time
type TimerResponse struct {
	Plan    timer.Plan    `json:"plan"`
	Total   time.Duration `json:"total"`
	Elapsed time.Duration `json:"elapsed"`
	State   timer.State   `json:"state"`
}

// GetState returns the timer state. work, rest and elapsed are Go
// durations ("6m", "90s"); missing values use the configured defaults.
func (h *TimerHandler) GetState(w http.ResponseWriter, r *http.Request) {
	plan := h.defaults
	var elapsed time.Duration

	q := r.URL.Query()
	for name, dst := range map[string]*time.Duration{
		"work":    &plan.Work,
		"rest":    &plan.Rest,
		"elapsed": &elapsed,
	} {
		raw := q.Get(name)
		if raw == "" {
			continue
		}
		d, err := time.ParseDuration(raw)
		if err != nil {
			h.writeError(w, "Invalid "+name, err.Error(), http.StatusBadRequest)
			return
		}
		*dst = d
	}

	rounds, err := intQuery(r, "rounds", plan.Rounds)
	if err != nil {
		h.writeError(w, "Invalid rounds", err.Error(), http.StatusBadRequest)
		return
	}
	plan.Rounds = rounds

	if err := plan.Validate(); err != nil {
		h.writeServiceError(w, "Invalid timer plan", err)
		return
	}

	h.writeJSON(w, TimerResponse{
		Plan:    plan,
		Total:   plan.Total(),
		Elapsed: elapsed,
		State:   plan.At(elapsed),
	}, http.StatusOK)
}
