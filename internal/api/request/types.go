package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBodyBytes bounds request bodies
const maxBodyBytes = 16 << 10

// CreateRoomRequest is the request body for creating a room
type CreateRoomRequest struct {
	Name string `json:"name"`
}

// JoinRoomRequest is the request body for joining a room
type JoinRoomRequest struct {
	Name string `json:"name"`
}

// PlayerRequest identifies the acting player for leave, kick and start.
// For kick it names the player being removed.
type PlayerRequest struct {
	PlayerID string `json:"playerId"`
}

// UpdateConfigRequest is the request body for changing room config.
// Omitted fields are left unchanged.
type UpdateConfigRequest struct {
	PlayerID                  string `json:"playerId"`
	NumSongsPerPlayer         *int   `json:"numSongsPerPlayer,omitempty"`
	TimePerVotingRoundSeconds *int   `json:"timePerVotingRoundSeconds,omitempty"`
	NumSongsToPlay            *int   `json:"numSongsToPlay,omitempty"`
}

// SubmitSongRequest is the request body for submitting a song
type SubmitSongRequest struct {
	PlayerID string `json:"playerId"`
	Song     string `json:"song"`
}

// Decode reads a single JSON object from the request body into v,
// rejecting unknown fields and trailing data
func Decode(r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(nil, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON object")
	}
	return nil
}
