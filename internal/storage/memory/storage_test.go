package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/mcoot/music-roulette/internal/model"
)

type StorageSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestStorageSuite(t *testing.T) {
	suite.Run(t, new(StorageSuite))
}

func (s *StorageSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *StorageSuite) newRoom(code model.RoomCode) *model.Room {
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	return &model.Room{
		Code:  code,
		Phase: model.PhaseLobby,
		Players: []model.Player{
			{ID: "p1", Name: "Alice", IsHost: true, JoinedAt: now},
		},
		Config:    model.DefaultRoomConfig(),
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
	s.Equal(room.Code, retrieved.Code)
	s.Equal(room.Players, retrieved.Players)
}

func (s *StorageSuite) TestGetRoomNotFound() {
	_, err := s.storage.GetRoom(s.ctx, "NOPE22")
	s.ErrorIs(err, model.ErrRoomNotFound)
}

func (s *StorageSuite) TestSavedRoomIsCopied() {
	room := s.newRoom("ABC234")
	s.Require().NoError(s.storage.SaveRoom(s.ctx, room))

	// Mutating the caller's copy after save must not leak into storage
	room.Players[0].Name = "Mallory"
	room.Players = append(room.Players, model.Player{ID: "p2", Name: "Bob"})

	retrieved, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.Len(retrieved.Players, 1)
	s.Equal("Alice", retrieved.Players[0].Name)
}

func (s *StorageSuite) TestRetrievedRoomIsCopied() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("ABC234")))

	first, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	first.Players[0].IsHost = false
	first.Submissions = append(first.Submissions, model.Submission{ID: "s1", PlayerID: "p1"})

	second, err := s.storage.GetRoom(s.ctx, "ABC234")
	s.Require().NoError(err)
	s.True(second.Players[0].IsHost)
	s.Empty(second.Submissions)
}

func (s *StorageSuite) TestDeleteRoom() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("ABC234")))

	err := s.storage.DeleteRoom(s.ctx, "ABC234")
	s.Require().NoError(err)

	_, err = s.storage.GetRoom(s.ctx, "ABC234")
	s.ErrorIs(err, model.ErrRoomNotFound)

	// Deleting again is fine
	s.NoError(s.storage.DeleteRoom(s.ctx, "ABC234"))
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

func (s *StorageSuite) TestCountAndListRooms() {
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("ZZZ999")))
	s.Require().NoError(s.storage.SaveRoom(s.ctx, s.newRoom("AAA222")))

	count, err := s.storage.CountRooms(s.ctx)
	s.Require().NoError(err)
	s.Equal(2, count)

	codes, err := s.storage.ListRoomCodes(s.ctx)
	s.Require().NoError(err)
	s.Equal([]model.RoomCode{"AAA222", "ZZZ999"}, codes)
}
