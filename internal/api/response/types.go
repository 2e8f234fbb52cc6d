package response

import (
	"github.com/mcoot/music-roulette/internal/model"
)

// Player is the caller's own identity, returned on create and join
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	IsHost bool   `json:"isHost"`
}

// PlayerFromModel converts a model.Player to a response Player
func PlayerFromModel(p model.Player) Player {
	return Player{
		ID:     string(p.ID),
		Name:   p.Name,
		IsHost: p.IsHost,
	}
}

// RoomResponse is returned by create and join
type RoomResponse struct {
	Player Player         `json:"player"`
	Room   model.Snapshot `json:"room"`
}

// LeaveResponse is returned by leave and kick. Room is omitted once deleted.
type LeaveResponse struct {
	Deleted bool            `json:"deleted"`
	Room    *model.Snapshot `json:"room,omitempty"`
}

// SubmissionResponse is returned by submit
type SubmissionResponse struct {
	SubmissionID string         `json:"submissionId"`
	Room         model.Snapshot `json:"room"`
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status string `json:"status"`
	Rooms  int    `json:"rooms"`
}
