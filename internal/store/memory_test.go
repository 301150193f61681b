package store

import (
	"context"
	"testing"
	"time"

	"github.com/coder/quartz"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/robalobadob/pairs/internal/game"
)

func newGame(t *testing.T, clock quartz.Clock) *game.Game {
	t.Helper()
	g, err := game.New(game.Options{Symbols: []game.Symbol{"a", "b"}, Cards: 4, Clock: clock})
	require.NoError(t, err)
	return g
}

func TestSaveGetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	g := newGame(t, quartz.NewMock(t))

	require.NoError(t, s.Save(ctx, g))
	assert.Equal(t, 1, s.Len())

	got, err := s.Get(ctx, g.ID)
	require.NoError(t, err)
	assert.Same(t, g, got)

	require.NoError(t, s.Delete(ctx, g.ID))
	_, err = s.Get(ctx, g.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, s.Len())

	// Deleted games are closed and ignore flips.
	out, err := g.Flip(0)
	require.NoError(t, err)
	assert.Equal(t, game.OutcomeIgnored, out)

	assert.NoError(t, s.Delete(ctx, "missing"))
}

func TestReapOnceRemovesIdleGames(t *testing.T) {
	ctx := context.Background()
	mClock := quartz.NewMock(t)
	s := NewMemoryStore()

	stale := newGame(t, mClock)
	require.NoError(t, s.Save(ctx, stale))

	mClock.Advance(5 * time.Minute).MustWait(ctx)
	fresh := newGame(t, mClock)
	require.NoError(t, s.Save(ctx, fresh))
	t.Cleanup(fresh.Close)

	n := s.reapOnce(mClock.Now().Add(-time.Minute))
	assert.Equal(t, 1, n)

	_, err := s.Get(ctx, stale.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Get(ctx, fresh.ID)
	assert.NoError(t, err)
}

func TestReapStopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewMemoryStore()

	done := make(chan error, 1)
	go func() { done <- s.Reap(ctx, quartz.NewMock(t), 0) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Reap did not return after cancel")
	}
}

func TestCloseAll(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i := 0; i < 3; i++ {
		require.NoError(t, s.Save(ctx, newGame(t, quartz.NewMock(t))))
	}
	s.CloseAll()
	assert.Zero(t, s.Len())
}
