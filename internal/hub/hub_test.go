package hub

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

type namedEvent struct {
	Type string `json:"type"`
}

func (e namedEvent) EventName() string { return e.Type }

func readUntil(t *testing.T, r *bufio.Reader, prefix string) string {
	t.Helper()
	for {
		line, err := r.ReadString('\n')
		require.NoError(t, err)
		if strings.HasPrefix(line, prefix) {
			return strings.TrimSpace(line)
		}
	}
}

func TestHubStream(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := New(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Run(ctx) }()

	srv := httptest.NewServer(h)

	reqCtx, reqCancel := context.WithCancel(context.Background())
	req, err := http.NewRequestWithContext(reqCtx, http.MethodGet, srv.URL, nil)
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	body := bufio.NewReader(resp.Body)
	readUntil(t, body, ": connected")
	require.Eventually(t, func() bool { return h.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	t.Run("named events carry an event field", func(t *testing.T) {
		h.Broadcast(namedEvent{Type: "tap_logged"})
		assert.Equal(t, "event: tap_logged", readUntil(t, body, "event:"))
		assert.Equal(t, `data: {"type":"tap_logged"}`, readUntil(t, body, "data:"))
	})

	t.Run("plain values are data only", func(t *testing.T) {
		h.Broadcast(map[string]int{"n": 1})
		assert.Equal(t, `data: {"n":1}`, readUntil(t, body, "data:"))
	})

	reqCancel()
	resp.Body.Close()
	require.Eventually(t, func() bool { return h.ClientCount() == 0 }, time.Second, 5*time.Millisecond)

	srv.Close()
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)
}

func TestHubStopped(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.ErrorIs(t, h.Run(ctx), context.Canceled)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/events", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestForward(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := New(nil)
	events := make(chan namedEvent, 1)
	events <- namedEvent{Type: "dataset_reloaded"}
	close(events)

	require.NoError(t, Forward[namedEvent](context.Background(), h, events))
	assert.Len(t, h.broadcast, 1)
}
