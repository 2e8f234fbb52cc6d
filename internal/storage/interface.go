package storage

import (
	"context"

	"github.com/mcoot/music-roulette/internal/model"
)

// Storage defines the interface for room persistence.
// Implementations must not share memory with callers: rooms are copied on
// the way in and on the way out.
type Storage interface {
	SaveRoom(ctx context.Context, room *model.Room) error
	GetRoom(ctx context.Context, code model.RoomCode) (*model.Room, error)
	DeleteRoom(ctx context.Context, code model.RoomCode) error
	RoomExists(ctx context.Context, code model.RoomCode) (bool, error)
	CountRooms(ctx context.Context) (int, error)
	ListRoomCodes(ctx context.Context) ([]model.RoomCode, error)
}
