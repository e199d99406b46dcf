package ws

import (
	"context"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/couchcryptid/storm-weather-engine/internal/observability"
	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHub(t *testing.T) (*Hub, *httptest.Server, *observability.Metrics) {
	t.Helper()
	metrics := observability.NewMetricsForTesting()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)
	return hub, srv, metrics
}

func dial(t *testing.T, srv *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + query
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func waitForClients(t *testing.T, hub *Hub, n int) {
	t.Helper()
	require.Eventually(t, func() bool { return hub.Clients() == n }, 2*time.Second, 5*time.Millisecond)
}

func read(t *testing.T, conn *websocket.Conn) string {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, b, err := conn.ReadMessage()
	require.NoError(t, err)
	return string(b)
}

func event(location, body string) domain.OutputEvent {
	return domain.OutputEvent{Key: []byte(location), Value: []byte(body)}
}

func TestHub_BroadcastsToAllClients(t *testing.T) {
	hub, srv, metrics := newTestHub(t)
	a := dial(t, srv, "/")
	b := dial(t, srv, "/")
	waitForClients(t, hub, 2)
	assert.InDelta(t, 2, testutil.ToFloat64(metrics.FeedClients), 0)

	require.NoError(t, hub.LoadBatch(context.Background(), []domain.OutputEvent{event("harbor", `{"seq":1}`)}))

	assert.JSONEq(t, `{"seq":1}`, read(t, a))
	assert.JSONEq(t, `{"seq":1}`, read(t, b))
}

func TestHub_ZoneFilter(t *testing.T) {
	hub, srv, _ := newTestHub(t)
	conn := dial(t, srv, "/?zone=peak")
	waitForClients(t, hub, 1)

	require.NoError(t, hub.LoadBatch(context.Background(), []domain.OutputEvent{
		event("harbor", `{"seq":1}`),
		event("peak", `{"seq":2}`),
	}))

	assert.JSONEq(t, `{"seq":2}`, read(t, conn))
}

func TestHub_UnregistersOnDisconnect(t *testing.T) {
	hub, srv, metrics := newTestHub(t)
	conn := dial(t, srv, "/")
	waitForClients(t, hub, 1)

	require.NoError(t, conn.Close())
	waitForClients(t, hub, 0)
	assert.InDelta(t, 0, testutil.ToFloat64(metrics.FeedClients), 0)
}

func TestHub_CloseDisconnectsClients(t *testing.T) {
	hub, srv, _ := newTestHub(t)
	conn := dial(t, srv, "/")
	waitForClients(t, hub, 1)

	hub.Close()
	assert.Equal(t, 0, hub.Clients())

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	_, _, err := conn.ReadMessage()
	require.Error(t, err)
	assert.True(t, websocket.IsCloseError(err, websocket.CloseGoingAway))
}

func TestHub_LoadBatchWithoutClients(t *testing.T) {
	hub, _, _ := newTestHub(t)
	require.NoError(t, hub.LoadBatch(context.Background(), []domain.OutputEvent{event("harbor", "{}")}))
}

func TestHub_PingsKeepPassiveClientConnected(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
	hub.pingInterval = 20 * time.Millisecond
	hub.pongWait = 100 * time.Millisecond
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)

	conn := dial(t, srv, "/")
	var pings atomic.Int32
	conn.SetPingHandler(func(data string) error {
		pings.Add(1)
		return conn.WriteControl(websocket.PongMessage, []byte(data), time.Now().Add(time.Second))
	})
	received := make(chan string, 1)
	go func() {
		for {
			_, b, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- string(b)
		}
	}()
	waitForClients(t, hub, 1)

	// Several pong waits pass without the client sending anything itself.
	time.Sleep(400 * time.Millisecond)
	assert.Equal(t, 1, hub.Clients())
	assert.Positive(t, pings.Load())

	require.NoError(t, hub.LoadBatch(context.Background(), []domain.OutputEvent{event("harbor", `{"seq":7}`)}))
	select {
	case got := <-received:
		assert.JSONEq(t, `{"seq":7}`, got)
	case <-time.After(2 * time.Second):
		t.Fatal("change not delivered")
	}
}

func TestHub_DropsClientThatStopsAnswering(t *testing.T) {
	metrics := observability.NewMetricsForTesting()
	hub := NewHub(slog.New(slog.NewTextHandler(io.Discard, nil)), metrics)
	hub.pingInterval = 20 * time.Millisecond
	hub.pongWait = 100 * time.Millisecond
	srv := httptest.NewServer(hub.Handler())
	t.Cleanup(srv.Close)

	// The client never reads, so pings go unanswered.
	dial(t, srv, "/")
	waitForClients(t, hub, 1)
	waitForClients(t, hub, 0)
}
