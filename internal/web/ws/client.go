package ws

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"golang.org/x/time/rate"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 4096

	// Buffer size for outgoing messages
	sendBufferSize = 64
)

// Client is one websocket connection
type Client struct {
	hub         *Hub
	conn        *websocket.Conn
	limiter     *rate.Limiter
	send        chan []byte
	connectedAt time.Time

	mu     sync.Mutex
	closed bool
}

func newClient(hub *Hub, conn *websocket.Conn, limiter *rate.Limiter) *Client {
	return &Client{
		hub:         hub,
		conn:        conn,
		limiter:     limiter,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// queue hands a frame to the writer. A client whose buffer is full has
// fallen behind and is disconnected; readPump then fails and the hub drops it.
func (c *Client) queue(data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	select {
	case c.send <- data:
	default:
		c.hub.logger.Warn("ws client too slow, disconnecting",
			slog.Int("buffered", len(c.send)))
		c.closed = true
		close(c.send)
		_ = c.conn.Close()
	}
}

func (c *Client) close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

// readPump decodes inbound frames until the connection fails
func (c *Client) readPump() {
	defer c.conn.Close()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("ws read error", slog.String("error", err.Error()))
			}
			return
		}

		if !c.limiter.Allow() {
			c.queue(errorFrame(ErrCodeRateLimited))
			continue
		}

		var msg ClientMessage
		if err := decodeStrict(data, &msg); err != nil {
			c.queue(errorFrame(ErrCodeBadMessage))
			continue
		}
		c.hub.handle(context.Background(), c, msg)
	}
}

// writePump is the only goroutine that writes to the connection
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func decodeStrict(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	return dec.Decode(v)
}
