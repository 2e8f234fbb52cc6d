package factory

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/music-roulette/internal/model"
	redisstorage "github.com/mcoot/music-roulette/internal/storage/redis"
)

type IntegrationSuite struct {
	suite.Suite
	app *TestApp
	ctx context.Context
}

func TestIntegrationSuite(t *testing.T) {
	suite.Run(t, new(IntegrationSuite))
}

func (s *IntegrationSuite) SetupTest() {
	s.app = NewTestApp()
	s.ctx = context.Background()
}

func (s *IntegrationSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

// newRoom creates a room hosted by Alice with the given joiners
func (s *IntegrationSuite) newRoom(code string, joiners ...string) (model.RoomCode, model.Player, []model.Player) {
	s.app.MockRandom.QueueString(code)
	alice, snap, err := s.app.RoomController.CreateRoom(s.ctx, "Alice")
	s.Require().NoError(err)

	players := make([]model.Player, 0, len(joiners))
	for _, name := range joiners {
		p, _, err := s.app.RoomController.JoinRoom(s.ctx, snap.Code, name)
		s.Require().NoError(err)
		players = append(players, p)
	}
	return snap.Code, alice, players
}

// Test: a full lobby starts and then refuses late joiners
func (s *IntegrationSuite) TestStartGameLocksRoster() {
	code, alice, _ := s.newRoom("ROOMAA", "Bob", "Carol")

	snap, err := s.app.RoomController.StartGame(s.ctx, code, alice.ID)
	s.Require().NoError(err)
	s.Equal(model.PhaseSubmitting, snap.Phase)
	s.Len(snap.Players, 3)

	_, _, err = s.app.RoomController.JoinRoom(s.ctx, code, "Dave")
	s.ErrorIs(err, model.ErrGameInProgress)
}

// Test: kicking the host migrates to the earliest remaining joiner
func (s *IntegrationSuite) TestKickHostMigrates() {
	code, alice, players := s.newRoom("ROOMBB", "Bob", "Carol")

	result, err := s.app.RoomController.KickPlayer(s.ctx, code, alice.ID)
	s.Require().NoError(err)
	s.True(result.Removed)
	s.False(result.Deleted)
	s.Equal(players[0].ID, result.NewHost)
	s.Len(result.Snapshot.Players, 2)
	s.Equal("Bob", result.Snapshot.Host().Name)
}

// Test: the last player leaving deletes the room
func (s *IntegrationSuite) TestLastLeaveDeletesRoom() {
	code, alice, _ := s.newRoom("ROOMCC")

	result, err := s.app.RoomController.LeaveOrDelete(s.ctx, code, alice.ID)
	s.Require().NoError(err)
	s.True(result.Deleted)

	_, err = s.app.RoomController.Snapshot(s.ctx, code)
	s.ErrorIs(err, model.ErrRoomNotFound)

	count, err := s.app.RoomController.Count(s.ctx)
	s.Require().NoError(err)
	s.Zero(count)
}

// Test: submissions stop at the per-player limit
func (s *IntegrationSuite) TestSubmissionLimit() {
	code, alice, _ := s.newRoom("ROOMDD", "Bob", "Carol")
	_, err := s.app.RoomController.SetNumSongs(s.ctx, code, alice.ID, 3)
	s.Require().NoError(err)
	_, err = s.app.RoomController.StartGame(s.ctx, code, alice.ID)
	s.Require().NoError(err)

	for _, song := range []string{"One", "Two", "Three"} {
		_, _, err := s.app.RoomController.SubmitSong(s.ctx, code, alice.ID, song)
		s.Require().NoError(err)
	}

	_, _, err = s.app.RoomController.SubmitSong(s.ctx, code, alice.ID, "Four")
	s.ErrorIs(err, model.ErrLimitReached)

	snap, err := s.app.RoomController.Snapshot(s.ctx, code)
	s.Require().NoError(err)
	s.Equal(3, snap.SubmissionCounts[alice.ID])
}

// Test: songs-to-play is clamped by the pool size
func (s *IntegrationSuite) TestNumSongsToPlayClamped() {
	code, alice, _ := s.newRoom("ROOMEE", "Bob", "Carol")
	_, err := s.app.RoomController.SetNumSongs(s.ctx, code, alice.ID, 3)
	s.Require().NoError(err)

	snap, err := s.app.RoomController.SetNumSongsToPlay(s.ctx, code, alice.ID, 50)
	s.Require().NoError(err)
	s.Equal(9, snap.NumSongsToPlay)
}

// Test: the wired metrics see the registry and transports
func (s *IntegrationSuite) TestMetricsWired() {
	s.newRoom("ROOMFF", "Bob")
	s.Zero(s.app.subscriberCount())

	families, err := s.app.Registry.Gather()
	s.Require().NoError(err)

	var rooms float64 = -1
	for _, mf := range families {
		if mf.GetName() == "roulette_rooms_active" {
			rooms = mf.GetMetric()[0].GetGauge().GetValue()
		}
	}
	s.Equal(float64(1), rooms)
}

func TestNewRejectsUnknownStorage(t *testing.T) {
	_, err := New(Config{StorageType: "sqlite"})
	if err == nil {
		t.Fatal("expected error for unknown storage type")
	}
}

func TestNewRedisRequiresConfig(t *testing.T) {
	_, err := New(Config{StorageType: StorageTypeRedis})
	if err == nil {
		t.Fatal("expected error without RedisConfig")
	}
}

func TestNewMemoryRejectsPublishEvents(t *testing.T) {
	_, err := New(Config{PublishEvents: true})
	if err == nil {
		t.Fatal("expected error for PublishEvents on memory storage")
	}
}

type RedisAppSuite struct {
	suite.Suite
	mini *miniredis.Miniredis
	app  *App
	ctx  context.Context
}

func TestRedisAppSuite(t *testing.T) {
	suite.Run(t, new(RedisAppSuite))
}

func (s *RedisAppSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.ctx = context.Background()

	cfg := redisstorage.DefaultConfig()
	cfg.URL = "redis://" + s.mini.Addr()

	app, err := New(Config{
		StorageType:   StorageTypeRedis,
		RedisConfig:   &cfg,
		PublishEvents: true,
	})
	s.Require().NoError(err)
	s.app = app
}

func (s *RedisAppSuite) TearDownTest() {
	s.NoError(s.app.Close())
}

func (s *RedisAppSuite) TestRoomsPersistInRedis() {
	_, snap, err := s.app.RoomController.CreateRoom(s.ctx, "Alice")
	s.Require().NoError(err)

	s.True(s.mini.Exists("roulette:room:" + string(snap.Code)))

	got, err := s.app.RoomController.Snapshot(s.ctx, snap.Code)
	s.Require().NoError(err)
	s.Equal(snap.Code, got.Code)
	s.Equal("Alice", got.Host().Name)
}

func (s *RedisAppSuite) TestNotifierPublishesToRedis() {
	s.Require().NotNil(s.app.Publisher)

	_, snap, err := s.app.RoomController.CreateRoom(s.ctx, "Alice")
	s.Require().NoError(err)

	client := redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	defer client.Close()

	sub := client.Subscribe(s.ctx, s.app.Publisher.Channel(snap.Code))
	defer sub.Close()
	_, err = sub.Receive(s.ctx)
	s.Require().NoError(err)

	s.app.Notifier.Notify(s.ctx, snap.Code, snap)

	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()
	msg, err := sub.ReceiveMessage(ctx)
	s.Require().NoError(err)

	var event struct {
		Type string          `json:"type"`
		Data json.RawMessage `json:"data"`
	}
	s.Require().NoError(json.Unmarshal([]byte(msg.Payload), &event))
	s.Equal(string(model.EventRoomState), event.Type)
}
