// Package redis mirrors room events onto Redis pub/sub so processes outside
// this server can follow rooms.
package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/music-roulette/internal/model"
	"github.com/mcoot/music-roulette/internal/notify"
)

// Publisher publishes room events as JSON to one channel per room
type Publisher struct {
	client *redis.Client
	cfg    Config
	logger *slog.Logger
}

// New creates a Publisher on an existing client
func New(client *redis.Client, cfg Config, logger *slog.Logger) *Publisher {
	return &Publisher{
		client: client,
		cfg:    cfg,
		logger: logger.With(slog.String("component", "redis_publisher")),
	}
}

var _ notify.Notifier = (*Publisher)(nil)

// Channel returns the channel a room's events are published to
func (p *Publisher) Channel(code model.RoomCode) string {
	return fmt.Sprintf("%s:%s", p.cfg.ChannelPrefix, code)
}

// Notify publishes a room:state event
func (p *Publisher) Notify(ctx context.Context, code model.RoomCode, snap model.Snapshot) {
	p.publish(ctx, code, model.StateEvent(snap))
}

// NotifyDeleted publishes a room:deleted event
func (p *Publisher) NotifyDeleted(ctx context.Context, code model.RoomCode) {
	p.publish(ctx, code, model.DeletedEvent(code))
}

// publish failures are logged and dropped; they never fail the operation
func (p *Publisher) publish(ctx context.Context, code model.RoomCode, event model.Event) {
	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Error("failed to encode event",
			slog.String("code", string(code)),
			slog.String("error", err.Error()))
		return
	}
	if err := p.client.Publish(ctx, p.Channel(code), data).Err(); err != nil {
		p.logger.Warn("failed to publish event",
			slog.String("code", string(code)),
			slog.String("type", string(event.Type)),
			slog.String("error", err.Error()))
	}
}
