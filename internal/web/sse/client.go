package sse

import (
	"net/http"
	"time"

	"github.com/mcoot/music-roulette/internal/api/apierr"
	"github.com/mcoot/music-roulette/internal/model"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client represents a connected SSE client
type Client struct {
	hub         *Hub
	playerID    model.PlayerID
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE client. playerID may be empty for spectators.
func NewClient(hub *Hub, playerID model.PlayerID) *Client {
	return &Client{
		hub:         hub,
		playerID:    playerID,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

// ServeSSE streams events for a registered client until the request ends
// or the hub closes, and unregisters the client on return. initial, if
// non-nil, runs after registration and its output is written first, so no
// change between the two is lost.
func ServeSSE(w http.ResponseWriter, r *http.Request, client *Client, initial func() ([]byte, error)) {
	defer client.hub.Unregister(client)

	// Check if SSE is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	var first []byte
	if initial != nil {
		msg, err := initial()
		if err != nil {
			writeInitialError(w, err)
			return
		}
		first = msg
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering
	// Streams outlive the server's write timeout
	_ = http.NewResponseController(w).SetWriteDeadline(time.Time{})
	w.WriteHeader(http.StatusOK)

	if first != nil {
		if _, err := w.Write(first); err != nil {
			return
		}
	}
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

func writeInitialError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}
