package room

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/mcoot/music-roulette/internal/dependencies/clock"
	"github.com/mcoot/music-roulette/internal/dependencies/random"
	"github.com/mcoot/music-roulette/internal/model"
	"github.com/mcoot/music-roulette/internal/storage"
)

// errUnchanged lets a mutation report success without touching the room
var errUnchanged = errors.New("room unchanged")

// RemoveResult reports the outcome of a leave or kick
type RemoveResult struct {
	// Removed is false when the player was not in the room
	Removed bool
	// Deleted is true when the room was torn down because it emptied
	Deleted bool
	// NewHost is set when the host flag moved to another player
	NewHost model.PlayerID
	// Snapshot is the post-operation state; zero when Deleted
	Snapshot model.Snapshot
}

// Controller is the room registry: it owns every room and applies all
// mutations under a per-code lock
type Controller struct {
	storage storage.Storage
	locks   *keyedMutex
	clock   clock.Clock
	random  random.Random
	logger  *slog.Logger
}

// NewController creates a new room Controller
func NewController(
	storage storage.Storage,
	clock clock.Clock,
	random random.Random,
	logger *slog.Logger,
) *Controller {
	return &Controller{
		storage: storage,
		locks:   newKeyedMutex(),
		clock:   clock,
		random:  random,
		logger:  logger.With(slog.String("component", "room")),
	}
}

// CreateRoom creates a new room in the lobby phase with the named player as host
func (c *Controller) CreateRoom(ctx context.Context, hostName string) (model.Player, model.Snapshot, error) {
	name, err := model.NormalizeName(hostName)
	if err != nil {
		return model.Player{}, model.Snapshot{}, err
	}

	code, unlock, err := c.reserveCode(ctx)
	if err != nil {
		return model.Player{}, model.Snapshot{}, err
	}
	defer unlock()

	now := c.clock.Now()
	host := model.Player{
		ID:       model.PlayerID(c.random.ID()),
		Name:     name,
		IsHost:   true,
		JoinedAt: now,
	}

	room := &model.Room{
		Code:        code,
		Phase:       model.PhaseLobby,
		Players:     []model.Player{host},
		Submissions: []model.Submission{},
		Config:      model.DefaultRoomConfig().Reclamp(1),
		Version:     1,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return model.Player{}, model.Snapshot{}, err
	}

	c.logger.Info("room created", codeAttr(code), playerAttr(host.ID))
	return host, model.Project(room), nil
}

// Snapshot returns the current projection of a room
func (c *Controller) Snapshot(ctx context.Context, code model.RoomCode) (model.Snapshot, error) {
	code = model.NormalizeCode(string(code))

	unlock := c.locks.Lock(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return model.Snapshot{}, err
	}
	return model.Project(room), nil
}

// JoinRoom adds a non-host player to a room that is still in the lobby
func (c *Controller) JoinRoom(ctx context.Context, code model.RoomCode, playerName string) (model.Player, model.Snapshot, error) {
	name, err := model.NormalizeName(playerName)
	if err != nil {
		return model.Player{}, model.Snapshot{}, err
	}

	var player model.Player
	room, _, err := c.mutate(ctx, code, func(room *model.Room) error {
		if room.Phase != model.PhaseLobby {
			return model.ErrGameInProgress
		}
		if room.NameTaken(name) {
			return model.ErrNameTaken
		}

		player = model.Player{
			ID:       model.PlayerID(c.random.ID()),
			Name:     name,
			IsHost:   false,
			JoinedAt: c.clock.Now(),
		}
		room.Players = append(room.Players, player)
		room.Config = room.Config.Reclamp(len(room.Players))
		return nil
	})
	if err != nil {
		return model.Player{}, model.Snapshot{}, err
	}

	c.logger.Info("player joined", codeAttr(room.Code), playerAttr(player.ID))
	return player, model.Project(room), nil
}

// LeaveOrDelete removes a player who is leaving voluntarily. Unknown players
// are ignored. The room is deleted once its last player leaves.
func (c *Controller) LeaveOrDelete(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (RemoveResult, error) {
	return c.removePlayer(ctx, code, playerID, "player left")
}

// KickPlayer removes a player from a room. Host migration and deletion follow
// the same rules as a voluntary leave.
func (c *Controller) KickPlayer(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (RemoveResult, error) {
	return c.removePlayer(ctx, code, playerID, "player kicked")
}

func (c *Controller) removePlayer(ctx context.Context, code model.RoomCode, playerID model.PlayerID, msg string) (RemoveResult, error) {
	var result RemoveResult
	room, deleted, err := c.mutate(ctx, code, func(room *model.Room) error {
		removed, newHost := room.RemovePlayer(playerID)
		if !removed {
			return errUnchanged
		}
		result.Removed = true
		result.NewHost = newHost
		return nil
	})
	if err != nil {
		return RemoveResult{}, err
	}

	if result.Removed {
		c.logger.Info(msg, codeAttr(model.NormalizeCode(string(code))), playerAttr(playerID))
	}
	if result.NewHost != "" {
		c.logger.Info("host migrated", codeAttr(room.Code), slog.String("new_host", string(result.NewHost)))
	}
	if deleted {
		result.Deleted = true
		return result, nil
	}
	result.Snapshot = model.Project(room)
	return result, nil
}

// StartGame moves a room from the lobby into the submitting phase
func (c *Controller) StartGame(ctx context.Context, code model.RoomCode, requester model.PlayerID) (model.Snapshot, error) {
	room, _, err := c.mutate(ctx, code, func(room *model.Room) error {
		if !room.IsHost(requester) {
			return model.ErrNotHost
		}
		if room.Phase != model.PhaseLobby {
			return model.ErrInvalidPhase
		}
		if len(room.Players) < model.MinPlayersToStart {
			return model.ErrNotEnoughPlayers
		}
		return room.Advance(model.PhaseSubmitting)
	})
	if err != nil {
		return model.Snapshot{}, err
	}

	c.logger.Info("game started", codeAttr(room.Code), slog.Int("players", len(room.Players)))
	return model.Project(room), nil
}

// UpdateConfig applies a partial configuration change as a single unit.
// Values outside their bounds are clamped rather than rejected.
func (c *Controller) UpdateConfig(ctx context.Context, code model.RoomCode, requester model.PlayerID, update model.ConfigUpdate) (model.Snapshot, error) {
	room, _, err := c.mutate(ctx, code, func(room *model.Room) error {
		if !room.IsHost(requester) {
			return model.ErrNotHost
		}
		next := room.Config.Apply(update, len(room.Players))
		if next == room.Config {
			return errUnchanged
		}
		room.Config = next
		return nil
	})
	if err != nil {
		return model.Snapshot{}, err
	}

	c.logger.Info("room config updated", codeAttr(room.Code),
		slog.Int("songs_per_player", room.Config.NumSongsPerPlayer),
		slog.Int("voting_seconds", room.Config.TimePerVotingRoundSeconds),
		slog.Int("songs_to_play", room.Config.NumSongsToPlay))
	return model.Project(room), nil
}

// SetNumSongs sets how many songs each player may submit
func (c *Controller) SetNumSongs(ctx context.Context, code model.RoomCode, requester model.PlayerID, value int) (model.Snapshot, error) {
	return c.UpdateConfig(ctx, code, requester, model.ConfigUpdate{NumSongsPerPlayer: &value})
}

// SetVotingTime sets the voting round length in seconds (0 = manual advance)
func (c *Controller) SetVotingTime(ctx context.Context, code model.RoomCode, requester model.PlayerID, value int) (model.Snapshot, error) {
	return c.UpdateConfig(ctx, code, requester, model.ConfigUpdate{TimePerVotingRoundSeconds: &value})
}

// SetNumSongsToPlay sets how many songs will be played
func (c *Controller) SetNumSongsToPlay(ctx context.Context, code model.RoomCode, requester model.PlayerID, value int) (model.Snapshot, error) {
	return c.UpdateConfig(ctx, code, requester, model.ConfigUpdate{NumSongsToPlay: &value})
}

// SubmitSong records a song for a player during the submitting phase
func (c *Controller) SubmitSong(ctx context.Context, code model.RoomCode, playerID model.PlayerID, song string) (model.Submission, model.Snapshot, error) {
	song = strings.TrimSpace(song)
	if song == "" || utf8.RuneCountInString(song) > model.MaxSongLength {
		return model.Submission{}, model.Snapshot{}, model.ErrInvalidSong
	}

	var submission model.Submission
	room, _, err := c.mutate(ctx, code, func(room *model.Room) error {
		if room.Phase != model.PhaseSubmitting {
			return model.ErrInvalidPhase
		}
		if room.GetPlayer(playerID) == nil {
			return model.ErrNotInRoom
		}
		if room.SubmissionCount(playerID) >= room.Config.NumSongsPerPlayer {
			return model.ErrLimitReached
		}

		submission = model.Submission{
			ID:          model.SubmissionID(c.random.ID()),
			PlayerID:    playerID,
			Song:        song,
			SubmittedAt: c.clock.Now(),
		}
		room.Submissions = append(room.Submissions, submission)
		return nil
	})
	if err != nil {
		return model.Submission{}, model.Snapshot{}, err
	}

	c.logger.Info("song submitted", codeAttr(room.Code), playerAttr(playerID),
		slog.Int("count", room.SubmissionCount(playerID)))
	return submission, model.Project(room), nil
}

// Count returns the number of live rooms
func (c *Controller) Count(ctx context.Context) (int, error) {
	return c.storage.CountRooms(ctx)
}

// ListRooms returns snapshots of every live room, ordered by code
func (c *Controller) ListRooms(ctx context.Context) ([]model.Snapshot, error) {
	codes, err := c.storage.ListRoomCodes(ctx)
	if err != nil {
		return nil, err
	}
	snapshots := make([]model.Snapshot, 0, len(codes))
	for _, code := range codes {
		snap, err := c.Snapshot(ctx, code)
		if errors.Is(err, model.ErrRoomNotFound) {
			continue // Deleted since listing
		}
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, snap)
	}
	return snapshots, nil
}

// mutate runs fn against a private copy of the room while holding the code's
// lock. The copy is saved only if fn succeeds; a room left without players is
// deleted instead. It returns the resulting room and whether it was deleted.
func (c *Controller) mutate(ctx context.Context, code model.RoomCode, fn func(*model.Room) error) (*model.Room, bool, error) {
	code = model.NormalizeCode(string(code))

	unlock := c.locks.Lock(code)
	defer unlock()

	room, err := c.storage.GetRoom(ctx, code)
	if err != nil {
		return nil, false, err
	}

	if err := fn(room); err != nil {
		if errors.Is(err, errUnchanged) {
			return room, false, nil
		}
		return nil, false, err
	}

	if len(room.Players) == 0 {
		if err := c.storage.DeleteRoom(ctx, code); err != nil {
			return nil, false, err
		}
		c.logger.Info("room deleted", codeAttr(code))
		return room, true, nil
	}

	room.Version++
	room.UpdatedAt = c.clock.Now()
	if err := c.storage.SaveRoom(ctx, room); err != nil {
		return nil, false, err
	}
	return room, false, nil
}

func codeAttr(code model.RoomCode) slog.Attr {
	return slog.String("code", string(code))
}

func playerAttr(id model.PlayerID) slog.Attr {
	return slog.String("player_id", string(id))
}

// ControllerInterface is the registry contract consumed by transports
type ControllerInterface interface {
	CreateRoom(ctx context.Context, hostName string) (model.Player, model.Snapshot, error)
	Snapshot(ctx context.Context, code model.RoomCode) (model.Snapshot, error)
	JoinRoom(ctx context.Context, code model.RoomCode, playerName string) (model.Player, model.Snapshot, error)
	LeaveOrDelete(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (RemoveResult, error)
	KickPlayer(ctx context.Context, code model.RoomCode, playerID model.PlayerID) (RemoveResult, error)
	StartGame(ctx context.Context, code model.RoomCode, requester model.PlayerID) (model.Snapshot, error)
	UpdateConfig(ctx context.Context, code model.RoomCode, requester model.PlayerID, update model.ConfigUpdate) (model.Snapshot, error)
	SetNumSongs(ctx context.Context, code model.RoomCode, requester model.PlayerID, value int) (model.Snapshot, error)
	SetVotingTime(ctx context.Context, code model.RoomCode, requester model.PlayerID, value int) (model.Snapshot, error)
	SetNumSongsToPlay(ctx context.Context, code model.RoomCode, requester model.PlayerID, value int) (model.Snapshot, error)
	SubmitSong(ctx context.Context, code model.RoomCode, playerID model.PlayerID, song string) (model.Submission, model.Snapshot, error)
}

var _ ControllerInterface = (*Controller)(nil)
