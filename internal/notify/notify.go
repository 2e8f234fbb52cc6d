// Package notify fans room changes out to subscribers. Transports implement
// Notifier; the registry never calls it directly, handlers do after each
// successful mutation.
package notify

import (
	"context"

	"github.com/mcoot/music-roulette/internal/model"
)

// Notifier delivers room changes to every current subscriber of a code
type Notifier interface {
	// Notify delivers a fresh snapshot
	Notify(ctx context.Context, code model.RoomCode, snap model.Snapshot)
	// NotifyDeleted tells subscribers to discard state for the code
	NotifyDeleted(ctx context.Context, code model.RoomCode)
}

// Multi fans out to several notifiers in order
type Multi []Notifier

// Notify implements Notifier
func (m Multi) Notify(ctx context.Context, code model.RoomCode, snap model.Snapshot) {
	for _, n := range m {
		n.Notify(ctx, code, snap)
	}
}

// NotifyDeleted implements Notifier
func (m Multi) NotifyDeleted(ctx context.Context, code model.RoomCode) {
	for _, n := range m {
		n.NotifyDeleted(ctx, code)
	}
}

// Nop discards all notifications
type Nop struct{}

func (Nop) Notify(context.Context, model.RoomCode, model.Snapshot) {}

func (Nop) NotifyDeleted(context.Context, model.RoomCode) {}

var (
	_ Notifier = Multi(nil)
	_ Notifier = Nop{}
)
