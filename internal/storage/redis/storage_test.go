package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/music-roulette/internal/model"
)

type StorageSuite struct {
	suite.Suite
	mini    *miniredis.Miniredis
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())

	client := redis.NewClient(&redis.Options{
		Addr: s.mini.Addr(),
	})

	cfg := DefaultConfig()
	cfg.RoomTTL = time.Hour

	s.storage = NewWithClient(client, cfg)
	s.ctx = context.Background()
}

func (s *StorageSuite) TearDownTest() {
	if s.storage != nil {
		_ = s.storage.Close()
	}
	if s.mini != nil {
		s.mini.Close()
	}
}

func (s *StorageSuite) newRoom(code model.RoomCode) *model.Room {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.Room{
		Code:  code,
		Phase: model.PhaseSubmitting,
		Players: []model.Player{
			{ID: "p1", Name: "Alice", IsHost: true, JoinedAt: now},
			{ID: "p2", Name: "Bob", JoinedAt: now},
		},
		Submissions: []model.Submission{
			{ID: "s1", PlayerID: "p2", Song: "Song A", SubmittedAt: now},
		},
		Config:    model.DefaultRoomConfig(),
		Version:   4,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *StorageSuite) TestSaveAndGetRoom() {
	room := s.newRoom("ABC234")

	err := s.storage.SaveRoom(s.ctx, room)
	s.Require().NoError(err)

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Equal(room, retrieved)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NOPE99")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestSaveRoomSetsTTL() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("ABC234")))

	ttl := s.mini.TTL(roomKey("ABC234"))
	s.Equal(time.Hour, ttl)
}

func (s *StorageSuite) TestDeleteRoom() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("ABC234")))

	s.Require().NoError(s.storage.DeleteRoom(s.ctx, "ABC234"))

	exists, err := s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(exists)

	count, err := s.storage.CountRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(0, count)
}

func (s *StorageSuite) TestRoomExists() {
	exists, err := s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.False(exists)

	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("ABC234")))

	exists, err = s.storage.RoomExists(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.True(exists)
}

func (s *StorageSuite) TestListRoomCodesSorted() {
	for _, code := range []model.RoomCode{"ZZZ222", "AAA222", "MMM222"} {
		s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom(code)))
	}

	codes, err := s.storage.ListRoomCodes(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.RoomCode{"AAA222", "MMM222", "ZZZ222"}, codes)
}

func (s *StorageSuite) TestExpiredRoomsArePruned() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("ABC234")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("XYZ789")))

	s.mini.FastForward(2 * time.Hour)
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("XYZ789")))

	codes, err := s.storage.ListRoomCodes(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.RoomCode{"XYZ789"}, codes)

	members, err := s.mini.Members(roomIndexKey())
	s.Require().NoError(err)
	s.Equal([]string{"XYZ789"}, members)
}
