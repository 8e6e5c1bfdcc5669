package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"jjplan/internal/domain"
	"jjplan/internal/loader"
	"jjplan/internal/metrics"
	"jjplan/internal/repository"
	"jjplan/internal/service"
	"jjplan/internal/timer"
)

type testEnv struct {
	handler http.Handler
	plans   *service.GamePlanService
	taps    *service.TapService
}

func newTestEnv(t *testing.T, tapsPerMinute int) *testEnv {
	t.Helper()
	plan, err := loader.Load("")
	require.NoError(t, err)

	logger := zap.NewNop()
	bus := service.NewEventBus()
	plans := service.NewGamePlanService(plan, bus, logger, service.Options{})

	store := repository.NewMemoryStore()
	t.Cleanup(func() { store.Close() })
	taps := service.NewTapService(store, plans, bus, logger)

	mux := http.NewServeMux()
	NewGamePlanHandler(plans, logger).Register(mux)
	NewTapHandler(taps, tapsPerMinute, logger).Register(mux)
	NewTimerHandler(timer.DefaultPlan(), logger).Register(mux)
	mux.HandleFunc("GET /panic", func(http.ResponseWriter, *http.Request) { panic("boom") })

	return &testEnv{
		handler: Chain(mux, Recover(logger), CORS, Logger(logger), Metrics, Compress),
		plans:   plans,
		taps:    taps,
	}
}

func (e *testEnv) do(t *testing.T, method, path, body string, headers ...string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	rec := httptest.NewRecorder()
	e.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestPositionRoutes(t *testing.T) {
	env := newTestEnv(t, 0)

	t.Run("start positions carry the dataset etag", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/positions/start", "")
		require.Equal(t, http.StatusOK, rec.Code)
		starts := decode[[]domain.StartPosition](t, rec)
		require.Len(t, starts, 7)
		assert.Equal(t, "standing", starts[0].ID)

		etag := rec.Header().Get("ETag")
		assert.Equal(t, `"`+env.plans.Plan().Fingerprint+`"`, etag)

		rec = env.do(t, http.MethodGet, "/api/positions/start", "", "If-None-Match", etag)
		assert.Equal(t, http.StatusNotModified, rec.Code)
		assert.Empty(t, rec.Body.String())
	})

	t.Run("options of a position", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/positions/mount-top/options", "")
		require.Equal(t, http.StatusOK, rec.Code)
		body := decode[struct {
			Position domain.Position `json:"position"`
			Options  []domain.Option `json:"options"`
		}](t, rec)
		assert.Equal(t, "mount-top", body.Position.ID)
		require.Len(t, body.Options, 4)
		assert.Equal(t, "Armbar", body.Options[0].Label)
	})

	t.Run("unknown position is 404", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/positions/nowhere/options", "")
		assert.Equal(t, http.StatusNotFound, rec.Code)
		errResp := decode[ErrorResponse](t, rec)
		assert.Contains(t, errResp.Details, "nowhere")
	})

	t.Run("bad subgraph depth is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/positions/mount-top/subgraph?depth=deep", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("flow compresses for gzip clients", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/flow", "", "Accept-Encoding", "gzip")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "gzip", rec.Header().Get("Content-Encoding"))
	})
}

func TestSessionRoutes(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, http.MethodPost, "/api/sessions", "")
	require.Equal(t, http.StatusCreated, rec.Code)
	id := decode[service.SessionView](t, rec).ID
	base := "/api/sessions/" + id

	t.Run("push at home conflicts", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, base+"/push", `{"position":"mount-top"}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("start shows the position tip", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, base+"/start", `{"position":"closed-guard-bottom"}`)
		require.Equal(t, http.StatusOK, rec.Code)
		v := decode[service.SessionView](t, rec)
		assert.Equal(t, []string{"closed-guard-bottom"}, v.Stack)
		require.NotNil(t, v.Tip)
		assert.Contains(t, v.Tip.Text, "posture")
	})

	t.Run("choose a transition then a finish", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, base+"/choose", `{"option":4}`)
		require.Equal(t, http.StatusOK, rec.Code)
		v := decode[service.SessionView](t, rec)
		assert.Equal(t, []string{"closed-guard-bottom", "mount-top"}, v.Stack)

		rec = env.do(t, http.MethodPost, base+"/choose", `{"option":0}`)
		require.Equal(t, http.StatusOK, rec.Code)
		v = decode[service.SessionView](t, rec)
		require.NotNil(t, v.Finish)
		assert.Equal(t, "Armbar", v.Finish.Label)

		rec = env.do(t, http.MethodPost, base+"/choose", `{"option":99}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("jump validates the index", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, base+"/jump", `{"index":5}`).Code)
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, base+"/jump", `{}`).Code)
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodPost, base+"/jump", `{"idx":0}`).Code)

		rec := env.do(t, http.MethodPost, base+"/jump", `{"index":0}`)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"closed-guard-bottom"}, decode[service.SessionView](t, rec).Stack)
	})

	t.Run("pop to home", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, base+"/pop", "")
		require.Equal(t, http.StatusOK, rec.Code)
		v := decode[service.SessionView](t, rec)
		assert.Equal(t, domain.StateHome, v.State)
		assert.Len(t, v.Starts, 7)
	})

	t.Run("end session", func(t *testing.T) {
		assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, base, "").Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, base, "").Code)
	})
}

func TestCatalogRoutes(t *testing.T) {
	env := newTestEnv(t, 0)

	t.Run("position filter in canonical order", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/catalog/positions/mount-top?belt=white", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, []string{"Armbar", "Americana", "Kimura", "Cross Collar Choke"}, decode[[]string](t, rec))
	})

	t.Run("unknown position is an empty list", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/catalog/positions/nowhere", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `[]`, rec.Body.String())
	})

	t.Run("tier filter never widens", func(t *testing.T) {
		white := decode[[]domain.SubmissionEdge](t, env.do(t, http.MethodGet, "/api/catalog?belt=white", ""))
		all := decode[[]domain.SubmissionEdge](t, env.do(t, http.MethodGet, "/api/catalog", ""))
		assert.Less(t, len(white), len(all))
		for _, e := range white {
			assert.Equal(t, domain.BeltWhite, e.Belt)
		}
	})

	t.Run("unknown belt is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/catalog/submissions?belt=green", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("submission map highlights the selected position", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/catalog/graph?belt=blue&position=mount-top", "")
		require.Equal(t, http.StatusOK, rec.Code)
		m := decode[domain.SubmissionMap](t, rec)
		assert.Equal(t, "mount-top", m.Selected)
		assert.Contains(t, m.Highlight, "Ezekiel Choke")
	})
}

func TestTapRoutes(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, http.MethodPost, "/api/taps/Armbar", `{"date":"2026-01-02","note":"from mount"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, domain.TapEntry{Date: "2026-01-02", Note: "from mount"}, decode[domain.TapEntry](t, rec))

	t.Run("bad date is 400", func(t *testing.T) {
		rec := env.do(t, http.MethodPost, "/api/taps/Armbar", `{"date":"yesterday"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("log and stats", func(t *testing.T) {
		log := decode[domain.TapLog](t, env.do(t, http.MethodGet, "/api/taps", ""))
		assert.Equal(t, 1, log.Count("Armbar"))

		stats := decode[domain.TapStats](t, env.do(t, http.MethodGet, "/api/taps/stats", ""))
		assert.Equal(t, 1, stats.TotalTaps)
		assert.Equal(t, "Armbar", stats.TopMove)
	})

	t.Run("delete by index", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodDelete, "/api/taps/Armbar/first", "").Code)
		assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, "/api/taps/Armbar/0", "").Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/taps/Armbar/0", "").Code)
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, "/api/taps/Armbar", "").Code)
	})

	t.Run("raw storage", func(t *testing.T) {
		assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/storage/theme", "").Code)
		assert.Equal(t, http.StatusNoContent, env.do(t, http.MethodPut, "/api/storage/theme", "dark").Code)
		rec := env.do(t, http.MethodGet, "/api/storage/theme", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "dark", rec.Body.String())

		rec = env.do(t, http.MethodPut, "/api/storage/"+domain.TapListKey, `{"Armbar":"nope"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestTapRateLimit(t *testing.T) {
	env := newTestEnv(t, 1)

	assert.Equal(t, http.StatusCreated, env.do(t, http.MethodPost, "/api/taps/Kimura", `{}`).Code)

	rec := env.do(t, http.MethodPost, "/api/taps/Kimura", `{}`)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))

	log, err := env.taps.Log(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 1, log.Count("Kimura"))
}

func TestTimerRoute(t *testing.T) {
	env := newTestEnv(t, 0)

	t.Run("reads the state at elapsed", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/api/timer?work=2m&rest=30s&rounds=2&elapsed=2m10s", "")
		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[TimerResponse](t, rec)
		assert.Equal(t, 4*time.Minute+30*time.Second, resp.Total)
		assert.Equal(t, timer.State{Phase: timer.PhaseRest, Round: 1, Remaining: 20 * time.Second}, resp.State)
	})

	t.Run("defaults apply", func(t *testing.T) {
		resp := decode[TimerResponse](t, env.do(t, http.MethodGet, "/api/timer", ""))
		assert.Equal(t, timer.DefaultPlan(), resp.Plan)
		assert.Equal(t, timer.PhaseWork, resp.State.Phase)
	})

	t.Run("invalid plans are 400", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/timer?rounds=0", "").Code)
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/timer?rounds=100000000", "").Code)
		assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/timer?work=long", "").Code)
	})
}

func TestExportAndHealth(t *testing.T) {
	env := newTestEnv(t, 0)

	rec := env.do(t, http.MethodGet, "/api/export/toml", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/toml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "closed-guard-bottom")

	assert.Equal(t, http.StatusBadRequest, env.do(t, http.MethodGet, "/api/export/xml", "").Code)

	health := decode[map[string]interface{}](t, env.do(t, http.MethodGet, "/healthz", ""))
	assert.Equal(t, "ok", health["status"])
	assert.Equal(t, loader.EmbeddedSource, health["source"])
}

func TestMiddleware(t *testing.T) {
	env := newTestEnv(t, 0)

	t.Run("recover turns panics into 500", func(t *testing.T) {
		rec := env.do(t, http.MethodGet, "/panic", "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "boom", decode[ErrorResponse](t, rec).Details)
	})

	t.Run("cors preflight", func(t *testing.T) {
		rec := env.do(t, http.MethodOptions, "/api/taps", "")
		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("metrics count by route pattern", func(t *testing.T) {
		counter := metrics.HTTPRequests.WithLabelValues("GET /healthz", "2xx")
		before := testutil.ToFloat64(counter)
		env.do(t, http.MethodGet, "/healthz", "")
		assert.Equal(t, before+1, testutil.ToFloat64(counter))
	})
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&domain.PositionNotFoundError{ID: "x"}, http.StatusNotFound},
		{service.ErrSessionNotFound, http.StatusNotFound},
		{&domain.StackIndexError{Index: 3, Len: 1}, http.StatusBadRequest},
		{domain.ErrUnknownBelt, http.StatusBadRequest},
		{domain.ErrNotViewing, http.StatusConflict},
		{assert.AnError, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}
