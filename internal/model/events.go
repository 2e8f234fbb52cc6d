package model

// EventType names the messages pushed to room subscribers
type EventType string

const (
	EventRoomState   EventType = "room:state"   // Payload: Snapshot
	EventRoomDeleted EventType = "room:deleted" // Payload: RoomDeletedPayload
	EventError       EventType = "error"        // Payload: ErrorPayload
)

// Event is the envelope used by every real-time transport
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// RoomDeletedPayload tells subscribers to discard local state for a room
type RoomDeletedPayload struct {
	Code RoomCode `json:"code"`
}

// ErrorPayload reports a rejected client message
type ErrorPayload struct {
	Code string `json:"code"`
}

// StateEvent wraps a snapshot for delivery
func StateEvent(s Snapshot) Event {
	return Event{Type: EventRoomState, Data: s}
}

// DeletedEvent builds the deletion signal for a room
func DeletedEvent(code RoomCode) Event {
	return Event{Type: EventRoomDeleted, Data: RoomDeletedPayload{Code: code}}
}
