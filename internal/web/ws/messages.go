package ws

import (
	"encoding/json"

	"github.com/mcoot/music-roulette/internal/model"
)

// Client message types
const (
	MsgJoin        = "room:join"        // Subscribe and receive the current state
	MsgSubscribe   = "room:subscribe"   // Subscribe only
	MsgUnsubscribe = "room:unsubscribe" // Stop receiving a room's events
	MsgBroadcast   = "room:broadcast"   // Ask the server to resend state to the room
)

// Error codes for rejected socket messages
const (
	ErrCodeBadMessage  = "INVALID_REQUEST"
	ErrCodeRateLimited = "RATE_LIMITED"
)

// ClientMessage is a frame sent by a socket client
type ClientMessage struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// RoomRef is the payload of every client message
type RoomRef struct {
	Code string `json:"code"`
}

func encode(event model.Event) ([]byte, error) {
	return json.Marshal(event)
}

func errorFrame(code string) []byte {
	data, _ := encode(model.Event{Type: model.EventError, Data: model.ErrorPayload{Code: code}})
	return data
}
