package sse

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/mcoot/music-roulette/internal/model"
	"github.com/mcoot/music-roulette/internal/notify"
)

// Broadcaster turns room changes into SSE events
type Broadcaster struct {
	hubManager *HubManager
	logger     *slog.Logger
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

var _ notify.Notifier = (*Broadcaster)(nil)

// Notify sends a room:state event carrying the snapshot
func (b *Broadcaster) Notify(ctx context.Context, code model.RoomCode, snap model.Snapshot) {
	hub := b.hubManager.GetHub(code)
	if hub == nil {
		return
	}

	msg, err := EncodeEvent(model.StateEvent(snap))
	if err != nil {
		b.logger.Error("sse failed to encode snapshot",
			slog.String("code", string(code)),
			slog.Any("error", err))
		return
	}
	hub.Broadcast(msg)
}

// NotifyDeleted sends a room:deleted event and tears the hub down, which
// ends every open stream for the room
func (b *Broadcaster) NotifyDeleted(ctx context.Context, code model.RoomCode) {
	hub := b.hubManager.GetHub(code)
	if hub == nil {
		return
	}

	msg, err := EncodeEvent(model.DeletedEvent(code))
	if err == nil {
		hub.Broadcast(msg)
	}
	b.hubManager.RemoveHub(code)
}

// EncodeEvent formats an event as an SSE message named after its type
func EncodeEvent(event model.Event) ([]byte, error) {
	data, err := json.Marshal(event.Data)
	if err != nil {
		return nil, err
	}
	return formatSSEMessage(string(event.Type), string(data)), nil
}
