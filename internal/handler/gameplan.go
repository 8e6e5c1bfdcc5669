package handler

import (
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"jjplan/internal/codec"
	"jjplan/internal/domain"
	"jjplan/internal/service"
)

// GamePlanHandler handles position graph, session and catalog requests
type GamePlanHandler struct {
	responder
	svc *service.GamePlanService
}

// NewGamePlanHandler creates a new game plan handler
func NewGamePlanHandler(svc *service.GamePlanService, logger *zap.Logger) *GamePlanHandler {
	return &GamePlanHandler{responder: newResponder(logger), svc: svc}
}

// Register adds the game plan routes to mux
func (h *GamePlanHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/positions/start", h.ListStartPositions)
	mux.HandleFunc("GET /api/positions/{id}/options", h.GetOptions)
	mux.HandleFunc("GET /api/positions/{id}/subgraph", h.GetSubgraph)
	mux.HandleFunc("GET /api/flow", h.GetFlow)

	mux.HandleFunc("POST /api/sessions", h.CreateSession)
	mux.HandleFunc("GET /api/sessions/{id}", h.GetSession)
	mux.HandleFunc("DELETE /api/sessions/{id}", h.EndSession)
	mux.HandleFunc("POST /api/sessions/{id}/start", h.SelectStart)
	mux.HandleFunc("POST /api/sessions/{id}/push", h.Push)
	mux.HandleFunc("POST /api/sessions/{id}/pop", h.Pop)
	mux.HandleFunc("POST /api/sessions/{id}/jump", h.JumpTo)
	mux.HandleFunc("POST /api/sessions/{id}/choose", h.Choose)

	mux.HandleFunc("GET /api/catalog", h.GetCatalog)
	mux.HandleFunc("GET /api/catalog/positions/{id}", h.GetCatalogForPosition)
	mux.HandleFunc("GET /api/catalog/submissions", h.GetSubmissionNames)
	mux.HandleFunc("GET /api/catalog/graph", h.GetSubmissionMap)

	mux.HandleFunc("GET /api/export/{format}", h.Export)
	mux.HandleFunc("GET /healthz", h.Health)
}

// notModified sets the dataset ETag and reports whether the client copy is
// current, in which case a 304 has been written
func (h *GamePlanHandler) notModified(w http.ResponseWriter, r *http.Request) bool {
	etag := `"` + h.svc.Plan().Fingerprint + `"`
	w.Header().Set("ETag", etag)
	for _, candidate := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		candidate = strings.TrimSpace(candidate)
		if candidate == etag || candidate == "*" {
			w.WriteHeader(http.StatusNotModified)
			return true
		}
	}
	return false
}

// ListStartPositions returns the home screen entry points
func (h *GamePlanHandler) ListStartPositions(w http.ResponseWriter, r *http.Request) {
	if h.notModified(w, r) {
		return
	}
	h.writeJSON(w, h.svc.ListStartPositions(), http.StatusOK)
}

// GetOptions returns a position with its ordered options
func (h *GamePlanHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	pos, err := h.svc.Position(id)
	if err != nil {
		h.writeServiceError(w, "Position not found", err)
		return
	}
	if h.notModified(w, r) {
		return
	}
	options, err := h.svc.OptionsFor(id)
	if err != nil {
		h.writeServiceError(w, "Failed to get options", err)
		return
	}
	h.writeJSON(w, map[string]interface{}{
		"position": pos,
		"options":  options,
	}, http.StatusOK)
}

// GetSubgraph returns the neighbourhood of a position
func (h *GamePlanHandler) GetSubgraph(w http.ResponseWriter, r *http.Request) {
	depth, err := intQuery(r, "depth", 0)
	if err != nil {
		h.writeError(w, "Invalid depth", err.Error(), http.StatusBadRequest)
		return
	}
	sg, err := h.svc.Subgraph(r.PathValue("id"), depth)
	if err != nil {
		h.writeServiceError(w, "Failed to build subgraph", err)
		return
	}
	if h.notModified(w, r) {
		return
	}
	h.writeJSON(w, sg, http.StatusOK)
}

// GetFlow returns the whole position graph
func (h *GamePlanHandler) GetFlow(w http.ResponseWriter, r *http.Request) {
	if h.notModified(w, r) {
		return
	}
	h.writeJSON(w, h.svc.Flow(), http.StatusOK)
}

type positionRequest struct {
	Position string `json:"position"`
}

type jumpRequest struct {
	Index *int `json:"index"`
}

type chooseRequest struct {
	Option *int `json:"option"`
}

// CreateSession starts a navigation session
func (h *GamePlanHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.svc.CreateSession(), http.StatusCreated)
}

// GetSession returns the current view of a session
func (h *GamePlanHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Session(r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to get session", err)
		return
	}
	h.writeJSON(w, v, http.StatusOK)
}

// EndSession discards a session
func (h *GamePlanHandler) EndSession(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.EndSession(r.PathValue("id")); err != nil {
		h.writeServiceError(w, "Failed to end session", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SelectStart enters a start position
func (h *GamePlanHandler) SelectStart(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !h.decodePosition(w, r, &req) {
		return
	}
	v, err := h.svc.SelectStart(r.PathValue("id"), req.Position)
	if err != nil {
		h.writeServiceError(w, "Failed to select start position", err)
		return
	}
	h.writeJSON(w, v, http.StatusOK)
}

// Push descends into a position
func (h *GamePlanHandler) Push(w http.ResponseWriter, r *http.Request) {
	var req positionRequest
	if !h.decodePosition(w, r, &req) {
		return
	}
	v, err := h.svc.Push(r.PathValue("id"), req.Position)
	if err != nil {
		h.writeServiceError(w, "Failed to push position", err)
		return
	}
	h.writeJSON(w, v, http.StatusOK)
}

// Pop goes back one position
func (h *GamePlanHandler) Pop(w http.ResponseWriter, r *http.Request) {
	v, err := h.svc.Pop(r.PathValue("id"))
	if err != nil {
		h.writeServiceError(w, "Failed to pop position", err)
		return
	}
	h.writeJSON(w, v, http.StatusOK)
}

// JumpTo truncates the stack to a breadcrumb index; -1 returns Home
func (h *GamePlanHandler) JumpTo(w http.ResponseWriter, r *http.Request) {
	var req jumpRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Index == nil {
		h.writeError(w, "Index required", "Provide the breadcrumb index, or -1 for Home", http.StatusBadRequest)
		return
	}
	v, err := h.svc.JumpTo(r.PathValue("id"), *req.Index)
	if err != nil {
		h.writeServiceError(w, "Failed to jump", err)
		return
	}
	h.writeJSON(w, v, http.StatusOK)
}

// Choose follows the n-th option of the current position
func (h *GamePlanHandler) Choose(w http.ResponseWriter, r *http.Request) {
	var req chooseRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return
	}
	if req.Option == nil {
		h.writeError(w, "Option required", "Provide the index of the option to follow", http.StatusBadRequest)
		return
	}
	v, err := h.svc.Choose(r.PathValue("id"), *req.Option)
	if err != nil {
		h.writeServiceError(w, "Failed to follow option", err)
		return
	}
	h.writeJSON(w, v, http.StatusOK)
}

func (h *GamePlanHandler) decodePosition(w http.ResponseWriter, r *http.Request, req *positionRequest) bool {
	if err := decodeBody(r, req); err != nil {
		h.writeError(w, "Invalid request body", err.Error(), http.StatusBadRequest)
		return false
	}
	if req.Position == "" {
		h.writeError(w, "Position required", "Provide a position id", http.StatusBadRequest)
		return false
	}
	return true
}

// beltFilter reads the belt query parameter; a bad value has been answered
// with 400 when ok is false
func (h *GamePlanHandler) beltFilter(w http.ResponseWriter, r *http.Request) (domain.BeltFilter, bool) {
	f, err := domain.ParseBeltFilter(r.URL.Query().Get("belt"))
	if err != nil {
		h.writeServiceError(w, "Invalid belt", err)
		return "", false
	}
	return f, true
}

// GetCatalog returns the catalog edges within the belt filter
func (h *GamePlanHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	f, ok := h.beltFilter(w, r)
	if !ok || h.notModified(w, r) {
		return
	}
	h.writeJSON(w, h.svc.CatalogFilteredByTier(f), http.StatusOK)
}

// GetCatalogForPosition returns the submissions reachable from a position
func (h *GamePlanHandler) GetCatalogForPosition(w http.ResponseWriter, r *http.Request) {
	f, ok := h.beltFilter(w, r)
	if !ok || h.notModified(w, r) {
		return
	}
	names := h.svc.CatalogFilteredByPosition(f, r.PathValue("id"))
	if names == nil {
		names = []string{}
	}
	h.writeJSON(w, names, http.StatusOK)
}

// GetSubmissionNames returns the distinct visible submission names
func (h *GamePlanHandler) GetSubmissionNames(w http.ResponseWriter, r *http.Request) {
	f, ok := h.beltFilter(w, r)
	if !ok || h.notModified(w, r) {
		return
	}
	names := h.svc.SubmissionNames(f)
	if names == nil {
		names = []string{}
	}
	h.writeJSON(w, names, http.StatusOK)
}

// GetSubmissionMap returns the aggregate catalog view
func (h *GamePlanHandler) GetSubmissionMap(w http.ResponseWriter, r *http.Request) {
	f, ok := h.beltFilter(w, r)
	if !ok || h.notModified(w, r) {
		return
	}
	h.writeJSON(w, h.svc.SubmissionMap(f, r.URL.Query().Get("position")), http.StatusOK)
}

// Export writes the active dataset in the requested format
func (h *GamePlanHandler) Export(w http.ResponseWriter, r *http.Request) {
	c, err := codec.ForFormat(r.PathValue("format"))
	if err != nil {
		h.writeError(w, "Unsupported format", err.Error(), http.StatusBadRequest)
		return
	}
	if h.notModified(w, r) {
		return
	}

	w.Header().Set("Content-Type", contentType(c.Format()))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=gameplan.%s", c.Format()))
	if err := c.Export(h.svc.Plan().Dataset, w); err != nil {
		h.logger.Error("failed to export dataset", zap.String("format", c.Format()), zap.Error(err))
		// Can't write error response as we already set headers
		return
	}
}

// Health reports liveness and the active dataset
func (h *GamePlanHandler) Health(w http.ResponseWriter, r *http.Request) {
	plan := h.svc.Plan()
	h.writeJSON(w, map[string]interface{}{
		"status":   "ok",
		"version":  plan.Version,
		"source":   plan.Source,
		"sessions": h.svc.SessionCount(),
	}, http.StatusOK)
}

func contentType(format string) string {
	switch format {
	case "json":
		return "application/json"
	case "toml":
		return "application/toml"
	default:
		return "application/x-yaml"
	}
}
