package model

// Bounds for room configuration values
const (
	MinSongsPerPlayer = 1
	MaxSongsPerPlayer = 10

	MinVotingRoundSeconds = 0 // 0 means the host advances manually
	MaxVotingRoundSeconds = 300

	MinSongsToPlay = 1
	MaxSongsToPlay = 100
)

// RoomConfig holds the host-configurable game parameters
type RoomConfig struct {
	NumSongsPerPlayer         int
	TimePerVotingRoundSeconds int
	NumSongsToPlay            int
}

// DefaultRoomConfig returns the configuration a new room starts with
func DefaultRoomConfig() RoomConfig {
	return RoomConfig{
		NumSongsPerPlayer:         3,
		TimePerVotingRoundSeconds: 30,
		NumSongsToPlay:            10,
	}
}

// ConfigUpdate is a partial configuration change; nil fields are left as-is
type ConfigUpdate struct {
	NumSongsPerPlayer         *int
	TimePerVotingRoundSeconds *int
	NumSongsToPlay            *int
}

// Empty reports whether the update changes nothing
func (u ConfigUpdate) Empty() bool {
	return u.NumSongsPerPlayer == nil && u.TimePerVotingRoundSeconds == nil && u.NumSongsToPlay == nil
}

// SongsToPlayCap is the largest numSongsToPlay allowed for a roster size
func SongsToPlayCap(players, songsPerPlayer int) int {
	return max(1, players*songsPerPlayer)
}

// Apply returns a copy of c with u applied and every field clamped into range.
// numSongsToPlay is additionally capped by the roster size.
func (c RoomConfig) Apply(u ConfigUpdate, players int) RoomConfig {
	out := c
	if u.NumSongsPerPlayer != nil {
		out.NumSongsPerPlayer = clamp(*u.NumSongsPerPlayer, MinSongsPerPlayer, MaxSongsPerPlayer)
	}
	if u.TimePerVotingRoundSeconds != nil {
		out.TimePerVotingRoundSeconds = clamp(*u.TimePerVotingRoundSeconds, MinVotingRoundSeconds, MaxVotingRoundSeconds)
	}
	if u.NumSongsToPlay != nil {
		out.NumSongsToPlay = clamp(*u.NumSongsToPlay, MinSongsToPlay, MaxSongsToPlay)
	}
	return out.Reclamp(players)
}

// Reclamp caps NumSongsToPlay for the given roster size
func (c RoomConfig) Reclamp(players int) RoomConfig {
	c.NumSongsToPlay = min(c.NumSongsToPlay, SongsToPlayCap(players, c.NumSongsPerPlayer))
	if c.NumSongsToPlay < MinSongsToPlay {
		c.NumSongsToPlay = MinSongsToPlay
	}
	return c
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
