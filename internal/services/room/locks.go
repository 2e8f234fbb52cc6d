package room

import (
	"sync"

	"github.com/mcoot/music-roulette/internal/model"
)

// keyedMutex serializes work per room code. Entries exist only while some
// goroutine holds or waits on them, so the map does not grow with churn.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[model.RoomCode]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[model.RoomCode]*refMutex)}
}

// Lock acquires the lock for code and returns its release function
func (k *keyedMutex) Lock(code model.RoomCode) (unlock func()) {
	k.mu.Lock()
	m, ok := k.locks[code]
	if !ok {
		m = &refMutex{}
		k.locks[code] = m
	}
	m.refs++
	k.mu.Unlock()

	m.Lock()

	return func() {
		m.Unlock()
		k.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(k.locks, code)
		}
		k.mu.Unlock()
	}
}

// size returns the number of live lock entries
func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
