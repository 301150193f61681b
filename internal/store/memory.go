// internal/store/memory.go
//
// In-memory implementation of the Store interface.
// Games live only as long as the process: there is no durable game state.
//
// Characteristics:
//   - Stores *game.Game objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - Delete and Reap close the removed games so their timers stop.
//   - Get returns ErrNotFound for unknown IDs.

package store

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/pairs/internal/game"
)

// ErrNotFound is returned by Get for unknown game IDs.
var ErrNotFound = errors.New("not found")

// Store defines the session interface for games.
type Store interface {
	// Save adds or replaces a game.
	Save(ctx context.Context, g *game.Game) error

	// Get retrieves a game by ID.
	Get(ctx context.Context, id string) (*game.Game, error)

	// Delete closes and removes a game. Unknown IDs are ignored.
	Delete(ctx context.Context, id string) error

	// Len reports how many games are held.
	Len() int
}

// Memory is an in-memory map-based Store.
type Memory struct {
	mu    sync.RWMutex
	games map[string]*game.Game
}

// NewMemoryStore constructs an empty Memory store.
func NewMemoryStore() *Memory {
	return &Memory{games: make(map[string]*game.Game)}
}

// Save adds or replaces the game. A replaced game is closed.
func (m *Memory) Save(ctx context.Context, g *game.Game) error {
	m.mu.Lock()
	prev := m.games[g.ID]
	m.games[g.ID] = g
	m.mu.Unlock()

	if prev != nil && prev != g {
		prev.Close()
	}
	return nil
}

// Get looks up a game by ID.
func (m *Memory) Get(ctx context.Context, id string) (*game.Game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if g, ok := m.games[id]; ok {
		return g, nil
	}
	return nil, ErrNotFound
}

// Delete closes and removes the game.
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	g, ok := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()

	if ok {
		g.Close()
	}
	return nil
}

// Len reports the number of stored games.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// CloseAll closes and drops every game.
func (m *Memory) CloseAll() {
	m.mu.Lock()
	games := m.games
	m.games = make(map[string]*game.Game)
	m.mu.Unlock()

	for _, g := range games {
		g.Close()
	}
}

// Reap removes games idle for longer than idle. It checks every idle/2 until
// ctx is done and returns the context error.
func (m *Memory) Reap(ctx context.Context, clock quartz.Clock, idle time.Duration) error {
	if idle <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}
	w := clock.TickerFunc(ctx, idle/2, func() error {
		m.reapOnce(clock.Now().Add(-idle))
		return nil
	}, "store", "reap")
	return w.Wait()
}

func (m *Memory) reapOnce(cutoff time.Time) int {
	var stale []*game.Game

	m.mu.Lock()
	for id, g := range m.games {
		if g.LastActive().Before(cutoff) {
			delete(m.games, id)
			stale = append(stale, g)
		}
	}
	m.mu.Unlock()

	for _, g := range stale {
		g.Close()
		log.Debug().Str("gameId", g.ID).Msg("reaped idle game")
	}
	return len(stale)
}
