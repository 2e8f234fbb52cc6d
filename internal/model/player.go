package model

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	// MinNameLength and MaxNameLength bound display names after trimming
	MinNameLength = 1
	MaxNameLength = 32
)

// PlayerID uniquely identifies a player across the system
type PlayerID string

// Player represents a room participant
type Player struct {
	ID       PlayerID
	Name     string
	IsHost   bool
	JoinedAt time.Time
}

// NormalizeName trims a display name and checks its length
func NormalizeName(name string) (string, error) {
	trimmed := strings.TrimSpace(name)
	n := utf8.RuneCountInString(trimmed)
	if n < MinNameLength || n > MaxNameLength {
		return "", ErrInvalidName
	}
	return trimmed, nil
}

// SameName reports whether two display names collide within a room
func SameName(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
