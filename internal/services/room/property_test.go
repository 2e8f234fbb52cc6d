package room

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/music-roulette/internal/dependencies/mocks"
	"github.com/mcoot/music-roulette/internal/dependencies/random"
	"github.com/mcoot/music-roulette/internal/model"
	"github.com/mcoot/music-roulette/internal/storage/memory"
	"github.com/mcoot/music-roulette/internal/testutil"
)

// checkInvariants asserts the roster and config rules that every
// operation must preserve
func checkInvariants(t *testing.T, snap model.Snapshot) {
	t.Helper()

	hosts := 0
	names := make(map[string]bool)
	for _, p := range snap.Players {
		if p.IsHost {
			hosts++
		}
		for seen := range names {
			assert.False(t, model.SameName(seen, p.Name), "duplicate name %q", p.Name)
		}
		names[p.Name] = true
	}
	assert.Equal(t, 1, hosts, "room must have exactly one host")

	assert.GreaterOrEqual(t, snap.NumSongsPerPlayer, model.MinSongsPerPlayer)
	assert.LessOrEqual(t, snap.NumSongsPerPlayer, model.MaxSongsPerPlayer)
	assert.GreaterOrEqual(t, snap.TimePerVotingRoundSeconds, model.MinVotingRoundSeconds)
	assert.LessOrEqual(t, snap.TimePerVotingRoundSeconds, model.MaxVotingRoundSeconds)
	assert.GreaterOrEqual(t, snap.NumSongsToPlay, model.MinSongsToPlay)
	assert.LessOrEqual(t, snap.NumSongsToPlay, model.MaxSongsToPlay)
	assert.LessOrEqual(t, snap.NumSongsToPlay,
		model.SongsToPlayCap(len(snap.Players), snap.NumSongsPerPlayer))

	assert.Len(t, snap.SubmissionCounts, len(snap.Players))
	for _, p := range snap.Players {
		_, ok := snap.SubmissionCounts[p.ID]
		assert.True(t, ok, "missing submission count for %s", p.ID)
	}
}

func TestRandomOperationSequencesPreserveInvariants(t *testing.T) {
	names := []string{"Alice", "bob", "Carol", "dave", "ALICE", "Eve", "BOB", "Frank"}

	for seed := range uint64(25) {
		t.Run(fmt.Sprintf("seed_%d", seed), func(t *testing.T) {
			rng := rand.New(rand.NewPCG(seed, seed*31+7))
			ctx := context.Background()
			clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
			controller := NewController(memory.New(), clock, random.New(), testutil.NopLogger())

			host, snap, err := controller.CreateRoom(ctx, "Host")
			require.NoError(t, err)
			code := snap.Code
			known := []model.PlayerID{host.ID, "ghost"}
			lastPhase := snap.Phase
			lastVersion := snap.Version

			for step := range 200 {
				current, err := controller.Snapshot(ctx, code)
				if errors.Is(err, model.ErrRoomNotFound) {
					return
				}
				require.NoError(t, err)

				pick := known[rng.IntN(len(known))]
				requester := pick
				if h := current.Host(); h != nil && rng.IntN(2) == 0 {
					requester = h.ID
				}

				switch rng.IntN(8) {
				case 0, 1:
					p, _, err := controller.JoinRoom(ctx, code, names[rng.IntN(len(names))])
					if err == nil {
						known = append(known, p.ID)
					} else {
						assert.True(t, errors.Is(err, model.ErrNameTaken) || errors.Is(err, model.ErrGameInProgress), "step %d: %v", step, err)
					}
				case 2:
					_, err = controller.LeaveOrDelete(ctx, code, pick)
					require.NoError(t, err)
				case 3:
					_, err = controller.KickPlayer(ctx, code, pick)
					require.NoError(t, err)
				case 4:
					_, _ = controller.StartGame(ctx, code, requester)
				case 5:
					_, _ = controller.SetNumSongs(ctx, code, requester, rng.IntN(30)-10)
				case 6:
					_, _ = controller.SetNumSongsToPlay(ctx, code, requester, rng.IntN(150)-20)
				case 7:
					before := current.SubmissionCounts[pick]
					_, after, err := controller.SubmitSong(ctx, code, pick, fmt.Sprintf("song %d", step))
					if err == nil {
						assert.Equal(t, before+1, after.SubmissionCounts[pick])
						assert.LessOrEqual(t, after.SubmissionCounts[pick], after.NumSongsPerPlayer)
					}
				}

				next, err := controller.Snapshot(ctx, code)
				if errors.Is(err, model.ErrRoomNotFound) {
					return
				}
				require.NoError(t, err)
				checkInvariants(t, next)

				assert.False(t, next.Phase.CanTransitionTo(lastPhase), "phase regressed from %s to %s", lastPhase, next.Phase)
				assert.GreaterOrEqual(t, next.Version, lastVersion)
				lastPhase = next.Phase
				lastVersion = next.Version
			}
		})
	}
}

func TestConcurrentJoinsWithSameNameAdmitOne(t *testing.T) {
	ctx := context.Background()
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	controller := NewController(memory.New(), clock, random.New(), testutil.NopLogger())

	_, snap, err := controller.CreateRoom(ctx, "Host")
	require.NoError(t, err)

	const attempts = 32
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := range attempts {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, errs[i] = controller.JoinRoom(ctx, snap.Code, "Bob")
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, model.ErrNameTaken)
	}
	assert.Equal(t, 1, succeeded)

	final, err := controller.Snapshot(ctx, snap.Code)
	require.NoError(t, err)
	assert.Len(t, final.Players, 2)
	assert.Equal(t, 1+1, final.Version)
}

func TestConcurrentSubmitsRespectLimit(t *testing.T) {
	ctx := context.Background()
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	controller := NewController(memory.New(), clock, random.New(), testutil.NopLogger())

	host, snap, err := controller.CreateRoom(ctx, "Host")
	require.NoError(t, err)
	_, _, err = controller.JoinRoom(ctx, snap.Code, "Bob")
	require.NoError(t, err)
	_, _, err = controller.JoinRoom(ctx, snap.Code, "Carol")
	require.NoError(t, err)
	_, err = controller.StartGame(ctx, snap.Code, host.ID)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, _ = controller.SubmitSong(ctx, snap.Code, host.ID, fmt.Sprintf("song %d", i))
		}()
	}
	wg.Wait()

	final, err := controller.Snapshot(ctx, snap.Code)
	require.NoError(t, err)
	assert.Equal(t, final.NumSongsPerPlayer, final.SubmissionCounts[host.ID])
}

func TestConcurrentOperationsOnDifferentRooms(t *testing.T) {
	ctx := context.Background()
	clock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	controller := NewController(memory.New(), clock, random.New(), testutil.NopLogger())

	const rooms = 10
	var wg sync.WaitGroup
	for i := range rooms {
		wg.Add(1)
		go func() {
			defer wg.Done()
			host, snap, err := controller.CreateRoom(ctx, fmt.Sprintf("Host%d", i))
			if !assert.NoError(t, err) {
				return
			}
			for j := range 4 {
				_, _, err := controller.JoinRoom(ctx, snap.Code, fmt.Sprintf("P%d", j))
				assert.NoError(t, err)
			}
			_, err = controller.LeaveOrDelete(ctx, snap.Code, host.ID)
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	listed, err := controller.ListRooms(ctx)
	require.NoError(t, err)
	require.Len(t, listed, rooms)
	for _, snap := range listed {
		checkInvariants(t, snap)
		assert.Len(t, snap.Players, 4)
		assert.Equal(t, "P0", snap.Host().Name)
	}
}
