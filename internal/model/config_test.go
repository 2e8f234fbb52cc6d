package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func intPtr(v int) *int { return &v }

func TestConfigApplyClamps(t *testing.T) {
	tests := []struct {
		name    string
		start   RoomConfig
		update  ConfigUpdate
		players int
		want    RoomConfig
	}{
		{
			name:    "songs to play capped by roster",
			start:   RoomConfig{NumSongsPerPlayer: 3, TimePerVotingRoundSeconds: 30, NumSongsToPlay: 9},
			update:  ConfigUpdate{NumSongsToPlay: intPtr(50)},
			players: 3,
			want:    RoomConfig{NumSongsPerPlayer: 3, TimePerVotingRoundSeconds: 30, NumSongsToPlay: 9},
		},
		{
			name:    "songs per player above max",
			start:   DefaultRoomConfig(),
			update:  ConfigUpdate{NumSongsPerPlayer: intPtr(11)},
			players: 5,
			want:    RoomConfig{NumSongsPerPlayer: 10, TimePerVotingRoundSeconds: 30, NumSongsToPlay: 10},
		},
		{
			name:    "voting time below zero",
			start:   DefaultRoomConfig(),
			update:  ConfigUpdate{TimePerVotingRoundSeconds: intPtr(-1)},
			players: 5,
			want:    RoomConfig{NumSongsPerPlayer: 3, TimePerVotingRoundSeconds: 0, NumSongsToPlay: 10},
		},
		{
			name:    "songs to play floor",
			start:   DefaultRoomConfig(),
			update:  ConfigUpdate{NumSongsToPlay: intPtr(0)},
			players: 5,
			want:    RoomConfig{NumSongsPerPlayer: 3, TimePerVotingRoundSeconds: 30, NumSongsToPlay: 1},
		},
		{
			name:    "empty roster still allows one song",
			start:   DefaultRoomConfig(),
			update:  ConfigUpdate{},
			players: 0,
			want:    RoomConfig{NumSongsPerPlayer: 3, TimePerVotingRoundSeconds: 30, NumSongsToPlay: 1},
		},
		{
			name:    "lowering songs per player reclamps songs to play",
			start:   RoomConfig{NumSongsPerPlayer: 5, TimePerVotingRoundSeconds: 30, NumSongsToPlay: 20},
			update:  ConfigUpdate{NumSongsPerPlayer: intPtr(2)},
			players: 4,
			want:    RoomConfig{NumSongsPerPlayer: 2, TimePerVotingRoundSeconds: 30, NumSongsToPlay: 8},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.start.Apply(tt.update, tt.players))
		})
	}
}

func TestConfigUpdateEmpty(t *testing.T) {
	assert.True(t, ConfigUpdate{}.Empty())
	assert.False(t, ConfigUpdate{NumSongsToPlay: intPtr(3)}.Empty())
}

func TestSongsToPlayCap(t *testing.T) {
	assert.Equal(t, 1, SongsToPlayCap(0, 3))
	assert.Equal(t, 9, SongsToPlayCap(3, 3))
}
