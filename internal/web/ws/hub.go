// Package ws serves room events over websockets. A socket may follow any
// number of rooms; subscription is independent of room membership.
package ws

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"

	"github.com/mcoot/music-roulette/internal/model"
	"github.com/mcoot/music-roulette/internal/notify"
)

// SnapshotSource reads the current state of a room
type SnapshotSource interface {
	Snapshot(ctx context.Context, code model.RoomCode) (model.Snapshot, error)
}

// Config holds socket settings
type Config struct {
	// MessagesPerSecond and Burst bound inbound messages per socket
	MessagesPerSecond float64
	Burst             int
	// AllowedOrigins restricts the upgrade; empty allows any origin
	AllowedOrigins []string
}

// DefaultConfig returns sensible defaults for sockets
func DefaultConfig() Config {
	return Config{
		MessagesPerSecond: 5,
		Burst:             10,
	}
}

// Hub tracks which sockets follow which rooms
type Hub struct {
	source   SnapshotSource
	cfg      Config
	logger   *slog.Logger
	upgrader websocket.Upgrader

	mu    sync.RWMutex
	rooms map[model.RoomCode]map[*Client]struct{}
	conns map[*Client]struct{}
}

// NewHub creates a new Hub
func NewHub(source SnapshotSource, cfg Config, logger *slog.Logger) *Hub {
	h := &Hub{
		source: source,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "ws")),
		rooms:  make(map[model.RoomCode]map[*Client]struct{}),
		conns:  make(map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     h.checkOrigin,
	}
	return h
}

var _ notify.Notifier = (*Hub)(nil)

func (h *Hub) checkOrigin(r *http.Request) bool {
	if len(h.cfg.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	for _, allowed := range h.cfg.AllowedOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}
	return false
}

// ServeHTTP upgrades the connection and serves it until it closes
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		h.logger.Warn("ws upgrade failed", slog.String("error", err.Error()))
		return
	}

	client := newClient(h, conn, rate.NewLimiter(rate.Limit(h.cfg.MessagesPerSecond), h.cfg.Burst))

	h.mu.Lock()
	h.conns[client] = struct{}{}
	total := len(h.conns)
	h.mu.Unlock()
	h.logger.Info("ws client connected", slog.Int("total_clients", total))

	go client.writePump()
	client.readPump()

	h.drop(client)
	h.logger.Info("ws client disconnected",
		slog.Duration("connection_duration", time.Since(client.connectedAt)))
}

// handle processes one inbound frame
func (h *Hub) handle(ctx context.Context, c *Client, msg ClientMessage) {
	var ref RoomRef
	if len(msg.Data) == 0 || decodeStrict(msg.Data, &ref) != nil || ref.Code == "" {
		c.queue(errorFrame(ErrCodeBadMessage))
		return
	}
	code := model.NormalizeCode(ref.Code)

	switch msg.Type {
	case MsgJoin:
		// Subscribe before reading so a change in between is still delivered;
		// clients ignore snapshots older than one they have seen
		added := h.subscribe(c, code)
		snap, err := h.source.Snapshot(ctx, code)
		if err != nil {
			if added {
				h.unsubscribe(c, code)
			}
			c.queue(errorFrame(errorCode(err)))
			return
		}
		if data, err := encode(model.StateEvent(snap)); err == nil {
			c.queue(data)
		}

	case MsgSubscribe:
		h.subscribe(c, code)

	case MsgUnsubscribe:
		h.unsubscribe(c, code)

	case MsgBroadcast:
		snap, err := h.source.Snapshot(ctx, code)
		if err != nil {
			c.queue(errorFrame(errorCode(err)))
			return
		}
		h.Notify(ctx, code, snap)

	default:
		c.queue(errorFrame(ErrCodeBadMessage))
	}
}

// subscribe reports whether c was not already following code
func (h *Hub) subscribe(c *Client, code model.RoomCode) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	subs, ok := h.rooms[code]
	if !ok {
		subs = make(map[*Client]struct{})
		h.rooms[code] = subs
	}
	if _, ok := subs[c]; ok {
		return false
	}
	subs[c] = struct{}{}
	return true
}

func (h *Hub) unsubscribe(c *Client, code model.RoomCode) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c, code)
}

func (h *Hub) removeLocked(c *Client, code model.RoomCode) {
	subs, ok := h.rooms[code]
	if !ok {
		return
	}
	delete(subs, c)
	if len(subs) == 0 {
		delete(h.rooms, code)
	}
}

// drop forgets a closed client and releases its writer
func (h *Hub) drop(c *Client) {
	h.mu.Lock()
	for code := range h.rooms {
		h.removeLocked(c, code)
	}
	delete(h.conns, c)
	h.mu.Unlock()
	c.close()
}

// Notify sends a room:state event to every subscriber of code
func (h *Hub) Notify(ctx context.Context, code model.RoomCode, snap model.Snapshot) {
	data, err := encode(model.StateEvent(snap))
	if err != nil {
		h.logger.Error("ws failed to encode snapshot",
			slog.String("code", string(code)),
			slog.Any("error", err))
		return
	}
	h.fanOut(code, data)
}

// NotifyDeleted sends a room:deleted event and drops every subscription
func (h *Hub) NotifyDeleted(ctx context.Context, code model.RoomCode) {
	data, err := encode(model.DeletedEvent(code))
	if err == nil {
		h.fanOut(code, data)
	}

	h.mu.Lock()
	delete(h.rooms, code)
	h.mu.Unlock()
}

func (h *Hub) fanOut(code model.RoomCode, data []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.rooms[code] {
		c.queue(data)
	}
}

// Subscribers returns how many sockets follow code
func (h *Hub) Subscribers(code model.RoomCode) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[code])
}

// ClientCount returns the number of open sockets
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns)
}

// CloseAll disconnects every socket
func (h *Hub) CloseAll() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.conns))
	for c := range h.conns {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	for _, c := range clients {
		_ = c.conn.Close()
	}
}

func errorCode(err error) string {
	var domainErr *model.Error
	if errors.As(err, &domainErr) {
		return domainErr.Code
	}
	return "INTERNAL_ERROR"
}
