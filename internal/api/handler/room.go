package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mcoot/music-roulette/internal/api/request"
	"github.com/mcoot/music-roulette/internal/api/response"
	"github.com/mcoot/music-roulette/internal/model"
	"github.com/mcoot/music-roulette/internal/notify"
	"github.com/mcoot/music-roulette/internal/services/room"
)

// OpObserver records registry operation outcomes
type OpObserver interface {
	ObserveOp(op string, err error)
}

type nopObserver struct{}

func (nopObserver) ObserveOp(string, error) {}

// RoomHandler handles room endpoints. Every successful mutation is pushed
// to the notifier before the response is written.
type RoomHandler struct {
	controller room.ControllerInterface
	notifier   notify.Notifier
	observer   OpObserver
	logger     *slog.Logger
}

// NewRoomHandler creates a new room handler. notifier and observer may be nil.
func NewRoomHandler(controller room.ControllerInterface, notifier notify.Notifier, observer OpObserver, logger *slog.Logger) *RoomHandler {
	if notifier == nil {
		notifier = notify.Nop{}
	}
	if observer == nil {
		observer = nopObserver{}
	}
	return &RoomHandler{
		controller: controller,
		notifier:   notifier,
		observer:   observer,
		logger:     logger,
	}
}

func roomCode(r *http.Request) model.RoomCode {
	return model.NormalizeCode(mux.Vars(r)["code"])
}

// requirePlayerID rejects a missing or blank playerId
func requirePlayerID(id string) (model.PlayerID, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", NewInvalidRequestError("playerId is required")
	}
	return model.PlayerID(id), nil
}

// fail records the failed operation and writes the error
func (h *RoomHandler) fail(w http.ResponseWriter, op string, err error) {
	h.observer.ObserveOp(op, err)
	WriteError(w, err)
}

// publish records success and fans the new state out
func (h *RoomHandler) publish(ctx context.Context, op string, code model.RoomCode, snap model.Snapshot) {
	h.observer.ObserveOp(op, nil)
	h.notifier.Notify(ctx, code, snap)
}

// Create handles POST /api/v1/rooms
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateRoomRequest
	if err := request.Decode(r, &req); err != nil {
		h.fail(w, "create", NewInvalidRequestError(err.Error()))
		return
	}

	player, snap, err := h.controller.CreateRoom(r.Context(), req.Name)
	if err != nil {
		h.fail(w, "create", err)
		return
	}

	h.publish(r.Context(), "create", snap.Code, snap)
	response.JSON(w, http.StatusCreated, response.RoomResponse{
		Player: response.PlayerFromModel(player),
		Room:   snap,
	})
}

// Get handles GET /api/v1/rooms/{code}
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	snap, err := h.controller.Snapshot(r.Context(), roomCode(r))
	if err != nil {
		WriteError(w, err)
		return
	}
	response.JSON(w, http.StatusOK, snap)
}

// Join handles POST /api/v1/rooms/{code}/join
func (h *RoomHandler) Join(w http.ResponseWriter, r *http.Request) {
	var req request.JoinRoomRequest
	if err := request.Decode(r, &req); err != nil {
		h.fail(w, "join", NewInvalidRequestError(err.Error()))
		return
	}

	code := roomCode(r)
	player, snap, err := h.controller.JoinRoom(r.Context(), code, req.Name)
	if err != nil {
		h.fail(w, "join", err)
		return
	}

	h.publish(r.Context(), "join", code, snap)
	response.JSON(w, http.StatusOK, response.RoomResponse{
		Player: response.PlayerFromModel(player),
		Room:   snap,
	})
}

// Leave handles POST /api/v1/rooms/{code}/leave
func (h *RoomHandler) Leave(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "leave", h.controller.LeaveOrDelete)
}

// Kick handles POST /api/v1/rooms/{code}/kick. The body names the player
// being removed; kicking is not restricted to the host.
func (h *RoomHandler) Kick(w http.ResponseWriter, r *http.Request) {
	h.remove(w, r, "kick", h.controller.KickPlayer)
}

type removeFunc func(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (room.RemoveResult, error)

func (h *RoomHandler) remove(w http.ResponseWriter, r *http.Request, op string, fn removeFunc) {
	var req request.PlayerRequest
	if err := request.Decode(r, &req); err != nil {
		h.fail(w, op, NewInvalidRequestError(err.Error()))
		return
	}
	playerID, err := requirePlayerID(req.PlayerID)
	if err != nil {
		h.fail(w, op, err)
		return
	}

	code := roomCode(r)
	result, err := fn(r.Context(), code, playerID)
	if err != nil {
		h.fail(w, op, err)
		return
	}

	h.observer.ObserveOp(op, nil)
	switch {
	case result.Deleted:
		h.notifier.NotifyDeleted(r.Context(), code)
		response.JSON(w, http.StatusOK, response.LeaveResponse{Deleted: true})
	case result.Removed:
		h.notifier.Notify(r.Context(), code, result.Snapshot)
		response.JSON(w, http.StatusOK, response.LeaveResponse{Room: &result.Snapshot})
	default:
		// Unknown player: nothing changed, nothing to push
		response.JSON(w, http.StatusOK, response.LeaveResponse{Room: &result.Snapshot})
	}
}

// UpdateConfig handles POST /api/v1/rooms/{code}/config
func (h *RoomHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	var req request.UpdateConfigRequest
	if err := request.Decode(r, &req); err != nil {
		h.fail(w, "config", NewInvalidRequestError(err.Error()))
		return
	}
	playerID, err := requirePlayerID(req.PlayerID)
	if err != nil {
		h.fail(w, "config", err)
		return
	}

	update := model.ConfigUpdate{
		NumSongsPerPlayer:         req.NumSongsPerPlayer,
		TimePerVotingRoundSeconds: req.TimePerVotingRoundSeconds,
		NumSongsToPlay:            req.NumSongsToPlay,
	}
	if update.Empty() {
		h.fail(w, "config", NewInvalidRequestError("no config fields given"))
		return
	}

	code := roomCode(r)
	snap, err := h.controller.UpdateConfig(r.Context(), code, playerID, update)
	if err != nil {
		h.fail(w, "config", err)
		return
	}

	h.publish(r.Context(), "config", code, snap)
	response.JSON(w, http.StatusOK, snap)
}

// Start handles POST /api/v1/rooms/{code}/start
func (h *RoomHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req request.PlayerRequest
	if err := request.Decode(r, &req); err != nil {
		h.fail(w, "start", NewInvalidRequestError(err.Error()))
		return
	}
	playerID, err := requirePlayerID(req.PlayerID)
	if err != nil {
		h.fail(w, "start", err)
		return
	}

	code := roomCode(r)
	snap, err := h.controller.StartGame(r.Context(), code, playerID)
	if err != nil {
		h.fail(w, "start", err)
		return
	}

	h.publish(r.Context(), "start", code, snap)
	response.JSON(w, http.StatusOK, snap)
}

// Submit handles POST /api/v1/rooms/{code}/submit
func (h *RoomHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req request.SubmitSongRequest
	if err := request.Decode(r, &req); err != nil {
		h.fail(w, "submit", NewInvalidRequestError(err.Error()))
		return
	}
	playerID, err := requirePlayerID(req.PlayerID)
	if err != nil {
		h.fail(w, "submit", err)
		return
	}

	code := roomCode(r)
	sub, snap, err := h.controller.SubmitSong(r.Context(), code, playerID, req.Song)
	if err != nil {
		h.fail(w, "submit", err)
		return
	}

	h.publish(r.Context(), "submit", code, snap)
	response.JSON(w, http.StatusCreated, response.SubmissionResponse{
		SubmissionID: string(sub.ID),
		Room:         snap,
	})
}
