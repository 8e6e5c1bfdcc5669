package handler

import (
	"io"
	"net/http"
	"strconv"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"jjplan/internal/service"
)

// TapHandler handles Tap List and raw storage requests
type TapHandler struct {
	responder
	svc     *service.TapService
	limiter *rate.Limiter
}

// NewTapHandler creates a tap handler. tapsPerMinute bounds tap writes
// across all clients; a value below 1 disables the limit.
func NewTapHandler(svc *service.TapService, tapsPerMinute int, logger *zap.Logger) *TapHandler {
	h := &TapHandler{responder: newResponder(logger), svc: svc}
	if tapsPerMinute > 0 {
		h.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(tapsPerMinute)), tapsPerMinute)
	}
	return h
}

// Register adds the tap and storage routes to mux
func (h *TapHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/taps", h.GetLog)
	mux.HandleFunc("GET /api/taps/stats", h.GetStats)
	mux.HandleFunc("POST /api/taps/{name}", h.AppendTap)
	mux.HandleFunc("DELETE /api/taps/{name}", h.ClearTaps)
	mux.HandleFunc("DELETE /api/taps/{name}/{index}", h.DeleteTap)

	mux.HandleFunc("GET /api/storage/{key}", h.GetRaw)
	mux.HandleFunc("PUT /api/storage/{key}", h.SetRaw)
}

// GetLog returns the whole tap log
func (h *TapHandler) GetLog(w http.ResponseWriter, r *http.Request) {
	log, err := h.svc.Log(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to read tap log", err)
		return
	}
	h.writeJSON(w, log, http.StatusOK)
}

// GetStats returns the collection summary, streaks and share text
func (h *TapHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.svc.Stats(r.Context())
	if err != nil {
		h.writeServiceError(w, "Failed to compute stats", err)
		return
	}
	h.writeJSON(w, stats, http.StatusOK)
}

type tapRequest struct {
	Date string `json:"date"`
	Note string `json:"note"`
}

// AppendTap logs a tap for a submission
func (h *TapHandler) AppendTap(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil {
		res := h.limiter.Reserve()
		if delay := res.Delay(); delay > 0 {
			res.Cancel()
			w.Header().Set("Retry-After", retryAfter(delay))
			h.writeError(w, "Too many taps", "Tap logging is rate limited, try again shortly", http.StatusTooManyRequests)
			return
		}
	}

	var req tapRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}

	entry, err := h.svc.Append(r.Context(), r.PathValue("name"), req.Date, req.Note)
	if err != nil {
		h.writeServiceError(w, "Failed to log tap", err)
		return
	}
	h.writeJSON(w, entry, http.StatusCreated)
}

// DeleteTap removes one entry by index
func (h *TapHandler) DeleteTap(w http.ResponseWriter, r *http.Request) {
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		h.writeError(w, "Invalid index", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.Delete(r.Context(), r.PathValue("name"), index); err != nil {
		h.writeServiceError(w, "Failed to delete tap", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ClearTaps removes every entry of a submission
func (h *TapHandler) ClearTaps(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.Clear(r.Context(), r.PathValue("name")); err != nil {
		h.writeServiceError(w, "Failed to clear taps", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetRaw returns the stored bytes for a key
func (h *TapHandler) GetRaw(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")
	data, err := h.svc.Raw(r.Context(), key)
	if err != nil {
		h.writeServiceError(w, "Failed to read key", err)
		return
	}
	if data == nil {
		h.writeError(w, "Not found", "No value stored under "+key, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(data)
}

// SetRaw stores the request body under a key
func (h *TapHandler) SetRaw(w http.ResponseWriter, r *http.Request) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 1<<20))
	if err != nil {
		h.writeError(w, "Failed to read request body", err.Error(), http.StatusBadRequest)
		return
	}
	if err := h.svc.SetRaw(r.Context(), r.PathValue("key"), data); err != nil {
		h.writeServiceError(w, "Failed to store key", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
