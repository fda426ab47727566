// Package ws pushes snapshots and notices to browser clients over WebSocket
// and answers their viewport updates.
package ws

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/sf-incident-map/internal/debounce"
	"github.com/couchcryptid/sf-incident-map/internal/domain"
	"github.com/couchcryptid/sf-incident-map/internal/observability"
)

// Message types.
const (
	TypeSnapshot = "snapshot"
	TypeNotice   = "notice"
	TypeViewport = "viewport"
	TypeView     = "view"
)

const (
	writeWait    = 10 * time.Second
	maxFrameSize = 64 << 10
)

// Message is the envelope for every frame in either direction.
type Message struct {
	Type     string                `json:"type"`
	Snapshot *domain.SnapshotEvent `json:"snapshot,omitempty"`
	Message  string                `json:"message,omitempty"`
	View     *domain.ViewState     `json:"view,omitempty"`
	Radius   *float64              `json:"radius,omitempty"`
}

// Options configures a Hub.
type Options struct {
	Debounce       time.Duration
	Constraints    domain.ViewConstraints
	Scale          domain.RadiusScale
	AllowedOrigins []string
	Clock          clockwork.Clock
}

// Hub tracks connected clients. It implements pipeline.Publisher and
// pipeline.Notifier.
type Hub struct {
	opts     Options
	upgrader websocket.Upgrader
	metrics  *observability.Metrics
	logger   *slog.Logger

	mu      sync.Mutex
	clients map[*client]struct{}
	last    *domain.SnapshotEvent
}

type client struct {
	conn      *websocket.Conn
	writeMu   sync.Mutex
	debouncer *debounce.Debouncer
}

// NewHub creates an empty hub.
func NewHub(opts Options, metrics *observability.Metrics, logger *slog.Logger) *Hub {
	if opts.Clock == nil {
		opts.Clock = clockwork.NewRealClock()
	}
	h := &Hub{
		opts:    opts,
		metrics: metrics,
		logger:  logger,
		clients: make(map[*client]struct{}),
	}
	h.upgrader = websocket.Upgrader{CheckOrigin: h.checkOrigin}
	return h
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" || len(h.opts.AllowedOrigins) == 0 || slices.Contains(h.opts.AllowedOrigins, "*") {
		return true
	}
	return slices.Contains(h.opts.AllowedOrigins, origin)
}

// ServeHTTP upgrades the request and serves the client until it disconnects.
// A newly connected client immediately receives the latest snapshot.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "error", err, "remote", r.RemoteAddr)
		return
	}
	conn.SetReadLimit(maxFrameSize)
	// Hijacked connections keep the server's request read deadline.
	_ = conn.SetReadDeadline(time.Time{})

	c := &client{
		conn:      conn,
		debouncer: debounce.New(h.opts.Debounce, debounce.WithClock(h.opts.Clock)),
	}
	last := h.register(c)
	if last != nil {
		if err := c.send(Message{Type: TypeSnapshot, Snapshot: last}); err != nil {
			h.drop(c)
			return
		}
	}

	h.readLoop(c)
}

func (h *Hub) register(c *client) *domain.SnapshotEvent {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
	h.metrics.WSClients.Set(float64(len(h.clients)))
	h.logger.Debug("websocket client connected", "remote", c.conn.RemoteAddr().String(), "clients", len(h.clients))
	return h.last
}

func (h *Hub) drop(c *client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	h.metrics.WSClients.Set(float64(len(h.clients)))
	h.mu.Unlock()

	if ok {
		c.debouncer.Stop()
		_ = c.conn.Close()
	}
}

func (h *Hub) readLoop(c *client) {
	defer h.drop(c)
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Debug("websocket read failed", "error", err)
			}
			return
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			h.logger.Debug("ignoring malformed websocket frame", "error", err)
			continue
		}
		if msg.Type != TypeViewport || msg.View == nil {
			continue
		}

		view := *msg.View
		c.debouncer.Trigger(func() { h.answerViewport(c, view) })
	}
}

func (h *Hub) answerViewport(c *client, view domain.ViewState) {
	clamped := h.opts.Constraints.Clamp(view)
	radius := domain.PointRadius(clamped.Zoom, h.opts.Scale)
	if err := c.send(Message{Type: TypeView, View: &clamped, Radius: &radius}); err != nil {
		h.logger.Debug("websocket view reply failed", "error", err)
		h.drop(c)
	}
}

// Publish sends the snapshot summary to every client and remembers it for
// clients that connect later.
func (h *Hub) Publish(_ context.Context, event domain.SnapshotEvent) error {
	h.mu.Lock()
	h.last = &event
	h.mu.Unlock()

	h.broadcast(Message{Type: TypeSnapshot, Snapshot: &event})
	return nil
}

// Notify sends a user-facing notice to every client.
func (h *Hub) Notify(_ context.Context, message string) {
	h.broadcast(Message{Type: TypeNotice, Message: message})
}

func (h *Hub) broadcast(msg Message) {
	for _, c := range h.snapshotClients() {
		if err := c.send(msg); err != nil {
			h.logger.Debug("websocket broadcast failed", "type", msg.Type, "error", err)
			h.drop(c)
		}
	}
}

func (h *Hub) snapshotClients() []*client {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		out = append(out, c)
	}
	return out
}

// Len reports the number of connected clients.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Close disconnects every client.
func (h *Hub) Close() {
	for _, c := range h.snapshotClients() {
		c.writeMu.Lock()
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(time.Second))
		c.writeMu.Unlock()
		h.drop(c)
	}
}

func (c *client) send(msg Message) error {
	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.conn.WriteJSON(msg)
}
