package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/music-roulette/internal/model"
	"github.com/mcoot/music-roulette/internal/services/room"
	"github.com/mcoot/music-roulette/internal/web/sse"
)

// EventsHandler streams room events over SSE
type EventsHandler struct {
	controller room.ControllerInterface
	hubManager *sse.HubManager
	logger     *slog.Logger
}

// NewEventsHandler creates a new events handler
func NewEventsHandler(controller room.ControllerInterface, hubManager *sse.HubManager, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		controller: controller,
		hubManager: hubManager,
		logger:     logger,
	}
}

// Stream handles GET /api/v1/rooms/{code}/events. The first event is the
// current room state; later events follow each mutation.
func (h *EventsHandler) Stream(w http.ResponseWriter, r *http.Request) {
	code := roomCode(r)

	// Reject unknown rooms before creating a hub for them
	if _, err := h.controller.Snapshot(r.Context(), code); err != nil {
		WriteError(w, err)
		return
	}

	playerID := model.PlayerID(r.URL.Query().Get("playerId"))
	client := h.hubManager.Join(code, playerID)
	sse.ServeSSE(w, r, client, func() ([]byte, error) {
		snap, err := h.controller.Snapshot(r.Context(), code)
		if err != nil {
			return nil, err
		}
		return sse.EncodeEvent(model.StateEvent(snap))
	})
}
