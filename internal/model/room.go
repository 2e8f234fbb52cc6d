package model

import (
	"strings"
	"time"
)

const (
	// MinPlayersToStart is the smallest roster that can leave the lobby
	MinPlayersToStart = 3
	// MaxSongLength bounds submitted song text after trimming
	MaxSongLength = 200
)

// RoomCode is a human-readable identifier for joining rooms
type RoomCode string

// NormalizeCode uppercases and trims a user-supplied room code
func NormalizeCode(code string) RoomCode {
	return RoomCode(strings.ToUpper(strings.TrimSpace(code)))
}

// SubmissionID uniquely identifies a submission
type SubmissionID string

// Submission is one song entry contributed during the submitting phase.
// PlayerID is a reference only; the player may since have left.
type Submission struct {
	ID          SubmissionID
	PlayerID    PlayerID
	Song        string
	SubmittedAt time.Time
}

// Room represents one game session
type Room struct {
	Code        RoomCode
	Phase       Phase
	Players     []Player // Join order
	Submissions []Submission
	Config      RoomConfig
	Version     int // Incremented on every mutation
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// GetHost returns the current host, or nil if none
func (r *Room) GetHost() *Player {
	for i := range r.Players {
		if r.Players[i].IsHost {
			return &r.Players[i]
		}
	}
	return nil
}

// IsHost reports whether playerID is the room's host
func (r *Room) IsHost(playerID PlayerID) bool {
	host := r.GetHost()
	return host != nil && host.ID == playerID
}

// GetPlayer returns the player with the given ID, or nil if not found
func (r *Room) GetPlayer(playerID PlayerID) *Player {
	for i := range r.Players {
		if r.Players[i].ID == playerID {
			return &r.Players[i]
		}
	}
	return nil
}

// NameTaken reports whether a case-insensitively equal name is already present
func (r *Room) NameTaken(name string) bool {
	for _, p := range r.Players {
		if SameName(p.Name, name) {
			return true
		}
	}
	return false
}

// RemovePlayer removes a player, migrating the host flag to the earliest
// remaining joiner when the host leaves. It reports whether the player was
// present and, if the host moved, the new host's ID.
func (r *Room) RemovePlayer(playerID PlayerID) (removed bool, newHost PlayerID) {
	for i, p := range r.Players {
		if p.ID != playerID {
			continue
		}
		r.Players = append(r.Players[:i], r.Players[i+1:]...)
		if p.IsHost && len(r.Players) > 0 {
			r.Players[0].IsHost = true
			newHost = r.Players[0].ID
		}
		r.Config = r.Config.Reclamp(len(r.Players))
		return true, newHost
	}
	return false, ""
}

// SubmissionCount returns how many songs a player has submitted
func (r *Room) SubmissionCount(playerID PlayerID) int {
	n := 0
	for _, s := range r.Submissions {
		if s.PlayerID == playerID {
			n++
		}
	}
	return n
}

// Advance moves the room to the next phase
func (r *Room) Advance(target Phase) error {
	if !r.Phase.CanTransitionTo(target) {
		return ErrInvalidPhase
	}
	r.Phase = target
	return nil
}

// Clone returns a deep copy of the room
func (r *Room) Clone() *Room {
	out := *r
	out.Players = append([]Player(nil), r.Players...)
	out.Submissions = append([]Submission(nil), r.Submissions...)
	return &out
}
