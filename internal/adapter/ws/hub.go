package ws

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/storm-weather-engine/internal/domain"
	"github.com/couchcryptid/storm-weather-engine/internal/observability"
	"github.com/gorilla/websocket"
)

const (
	clientBuffer = 256
	writeTimeout = 5 * time.Second
	pongWait     = 60 * time.Second
	pingInterval = pongWait * 9 / 10
)

// Hub fans published changes out to websocket clients. It implements
// pipeline.BatchLoader; a slow client misses messages rather than stalling
// the pipeline.
type Hub struct {
	logger   *slog.Logger
	metrics  *observability.Metrics
	upgrader websocket.Upgrader
	nextID   atomic.Uint64

	// A client that answers no ping within pongWait is dropped.
	pingInterval time.Duration
	pongWait     time.Duration

	mu      sync.Mutex
	clients map[*client]struct{}
	closed  bool
}

type client struct {
	id   string
	zone string
	out  chan []byte
}

// NewHub creates an empty hub.
func NewHub(logger *slog.Logger, metrics *observability.Metrics) *Hub {
	return &Hub{
		logger:  logger,
		metrics: metrics,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
		clients:      make(map[*client]struct{}),
		pingInterval: pingInterval,
		pongWait:     pongWait,
	}
}

// LoadBatch sends each event to every client subscribed to its location.
func (h *Hub) LoadBatch(_ context.Context, events []domain.OutputEvent) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	for c := range h.clients {
		for _, ev := range events {
			if c.zone != "" && c.zone != string(ev.Key) {
				continue
			}
			select {
			case c.out <- ev.Value:
			default:
				h.logger.Debug("feed client lagging, dropping change", "client", c.id, "location", string(ev.Key))
			}
		}
	}
	return nil
}

// Clients returns the number of connected clients.
func (h *Hub) Clients() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.closed = true
	for c := range h.clients {
		close(c.out)
		delete(h.clients, c)
	}
	h.metrics.FeedClients.Set(0)
}

func (h *Hub) register(c *client) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return false
	}
	h.clients[c] = struct{}{}
	h.metrics.FeedClients.Set(float64(len(h.clients)))
	return true
}

func (h *Hub) unregister(c *client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[c]; !ok {
		return
	}
	delete(h.clients, c)
	close(c.out)
	h.metrics.FeedClients.Set(float64(len(h.clients)))
}

// Handler upgrades the request and streams changes as text frames. An
// optional ?zone= restricts the stream to one location.
func (h *Hub) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			h.logger.Warn("feed upgrade failed", "error", err)
			return
		}
		defer conn.Close()

		c := &client{
			id:   fmt.Sprintf("F%d", h.nextID.Add(1)),
			zone: strings.TrimSpace(r.URL.Query().Get("zone")),
			out:  make(chan []byte, clientBuffer),
		}
		if !h.register(c) {
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
			return
		}
		h.logger.Info("feed client connected", "client", c.id, "zone", c.zone)
		defer h.logger.Info("feed client disconnected", "client", c.id)

		writeDone := make(chan struct{})
		go func() {
			defer close(writeDone)
			ping := time.NewTicker(h.pingInterval)
			defer ping.Stop()
			for {
				select {
				case b, ok := <-c.out:
					if !ok {
						_ = conn.WriteControl(websocket.CloseMessage,
							websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(time.Second))
						return
					}
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
						return
					}
				case <-ping.C:
					_ = conn.SetWriteDeadline(time.Now().Add(writeTimeout))
					if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
						return
					}
				}
			}
		}()

		// Inbound frames are ignored; reading surfaces the client's close
		// and runs the pong handler.
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(h.pongWait))
		})
		for {
			_ = conn.SetReadDeadline(time.Now().Add(h.pongWait))
			if _, _, err := conn.NextReader(); err != nil {
				break
			}
		}

		h.unregister(c)
		select {
		case <-writeDone:
		case <-time.After(500 * time.Millisecond):
		}
	}
}
