package results

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), MemoryDSN)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecordAndLeaderboard(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	at := time.Date(2026, 10, 17, 12, 0, 0, 0, time.UTC)

	for _, r := range []Result{
		{GameID: "slow", Mode: "classic", Date: "2026-10-17", Cards: 16, Moves: 20, ElapsedSeconds: 90, FinishedAt: at},
		{GameID: "fast", Mode: "classic", Date: "2026-10-17", Cards: 16, Moves: 30, ElapsedSeconds: 40, FinishedAt: at},
		{GameID: "tidy", Mode: "classic", Date: "2026-10-17", Cards: 16, Moves: 18, ElapsedSeconds: 40, FinishedAt: at},
		{GameID: "daily", Mode: "daily", Date: "2026-10-17", Cards: 16, Moves: 16, ElapsedSeconds: 10, FinishedAt: at},
		{GameID: "old", Mode: "classic", Date: "2026-10-16", Cards: 16, Moves: 16, ElapsedSeconds: 5, FinishedAt: at},
	} {
		require.NoError(t, s.Record(ctx, r))
	}

	top, err := s.Leaderboard(ctx, "classic", "2026-10-17", 10)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, []string{"tidy", "fast", "slow"}, []string{top[0].GameID, top[1].GameID, top[2].GameID})
	assert.True(t, at.Equal(top[0].FinishedAt))

	all, err := s.Leaderboard(ctx, "classic", "", 2)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "old", all[0].GameID)

	daily, err := s.Leaderboard(ctx, "daily", "2026-10-17", 0)
	require.NoError(t, err)
	require.Len(t, daily, 1)
}

func TestRecordIsIdempotent(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	r := Result{GameID: "g1", Mode: "classic", Date: "2026-10-17", Cards: 4, Moves: 4, ElapsedSeconds: 3, FinishedAt: time.Now()}

	require.NoError(t, s.Record(ctx, r))
	require.NoError(t, s.Record(ctx, r))

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestMigrationsRunOnceOnFileDatabase(t *testing.T) {
	ctx := context.Background()
	dsn := filepath.Join(t.TempDir(), "data", "results.db")

	s, err := Open(ctx, dsn)
	require.NoError(t, err)
	require.NoError(t, s.Record(ctx, Result{GameID: "g", Mode: "classic", Date: "2026-10-17", FinishedAt: time.Now()}))
	require.NoError(t, s.Close())

	s, err = Open(ctx, dsn)
	require.NoError(t, err)
	defer s.Close()

	n, err := s.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	var applied int
	require.NoError(t, s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM _migrations`).Scan(&applied))
	assert.Equal(t, 1, applied)
}
