package redis

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/music-roulette/internal/model"
	"github.com/mcoot/music-roulette/internal/testutil"
)

type PublisherSuite struct {
	suite.Suite
	mini      *miniredis.Miniredis
	client    *redis.Client
	publisher *Publisher
	ctx       context.Context
}

func TestPublisherSuite(t *testing.T) {
	suite.Run(t, new(PublisherSuite))
}

func (s *PublisherSuite) SetupTest() {
	s.mini = miniredis.RunT(s.T())
	s.client = redis.NewClient(&redis.Options{Addr: s.mini.Addr()})
	s.publisher = New(s.client, DefaultConfig(), testutil.NopLogger())
	s.ctx = context.Background()
}

func (s *PublisherSuite) TearDownTest() {
	_ = s.client.Close()
	s.mini.Close()
}

func (s *PublisherSuite) subscribe(code model.RoomCode) *redis.PubSub {
	sub := s.client.Subscribe(s.ctx, s.publisher.Channel(code))
	// Wait for the subscription to be confirmed before publishing
	_, err := sub.Receive(s.ctx)
	s.Require().NoError(err)
	return sub
}

func (s *PublisherSuite) receive(sub *redis.PubSub) map[string]any {
	ctx, cancel := context.WithTimeout(s.ctx, 2*time.Second)
	defer cancel()

	msg, err := sub.ReceiveMessage(ctx)
	s.Require().NoError(err)

	var decoded map[string]any
	s.Require().NoError(json.Unmarshal([]byte(msg.Payload), &decoded))
	return decoded
}

func (s *PublisherSuite) TestChannelName() {
	s.Equal("roulette:events:ABC234", s.publisher.Channel("ABC234"))
}

func (s *PublisherSuite) TestNotifyPublishesState() {
	sub := s.subscribe("ABC234")
	defer sub.Close()

	s.publisher.Notify(s.ctx, "ABC234", model.Snapshot{
		Code:             "ABC234",
		Phase:            model.PhaseLobby,
		Version:          2,
		Players:          []model.PlayerView{{ID: "p1", Name: "Alice", IsHost: true}},
		SubmissionCounts: map[model.PlayerID]int{"p1": 0},
	})

	event := s.receive(sub)
	s.Equal("room:state", event["type"])
	data := event["data"].(map[string]any)
	s.Equal("ABC234", data["code"])
	s.Equal(float64(2), data["version"])
}

func (s *PublisherSuite) TestNotifyDeletedPublishesDeletion() {
	sub := s.subscribe("ABC234")
	defer sub.Close()

	s.publisher.NotifyDeleted(s.ctx, "ABC234")

	event := s.receive(sub)
	s.Equal("room:deleted", event["type"])
	s.Equal("ABC234", event["data"].(map[string]any)["code"])
}

func (s *PublisherSuite) TestPublishFailureDoesNotPanic() {
	s.mini.Close()

	s.NotPanics(func() {
		s.publisher.Notify(s.ctx, "ABC234", model.Snapshot{Code: "ABC234"})
	})
}

func TestPublishFailureIsLogged(t *testing.T) {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr(), MaxRetries: -1})
	defer client.Close()

	logger, logs := testutil.CaptureLogger()
	publisher := New(client, DefaultConfig(), logger)

	mini.Close()
	publisher.NotifyDeleted(context.Background(), "ABC234")

	if msgs := logs.Messages(); len(msgs) != 1 || msgs[0] != "failed to publish event" {
		t.Errorf("logged %v, want one publish failure", msgs)
	}
}
