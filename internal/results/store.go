package results

import (
	"context"
	"database/sql"
	"time"
)

// Result is one finished game.
type Result struct {
	GameID         string    `json:"gameId"`
	Mode           string    `json:"mode"`
	Date           string    `json:"date"`
	Cards          int       `json:"cards"`
	Moves          int       `json:"moves"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	FinishedAt     time.Time `json:"finishedAt"`
}

// Store records finished games and ranks them.
type Store struct{ db *sql.DB }

// Open opens the database at dsn and applies migrations.
func Open(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		dsn = MemoryDSN
	}
	db, err := openDB(dsn)
	if err != nil {
		return nil, err
	}
	if err := migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// Record inserts a result. Recording the same game twice is a no-op.
func (s *Store) Record(ctx context.Context, r Result) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO results(game_id, mode, date, cards, moves, elapsed_seconds, finished_at)
		 VALUES(?,?,?,?,?,?,?)`,
		r.GameID, r.Mode, r.Date, r.Cards, r.Moves, r.ElapsedSeconds, r.FinishedAt.UTC().Format(time.RFC3339),
	)
	return err
}

// Leaderboard returns the fastest results for mode, optionally restricted to a
// date ("" means all dates). Ties break on moves, then finish time.
func (s *Store) Leaderboard(ctx context.Context, mode, date string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT game_id, mode, date, cards, moves, elapsed_seconds, finished_at
		   FROM results
		  WHERE mode=? AND (?='' OR date=?)
		  ORDER BY elapsed_seconds ASC, moves ASC, finished_at ASC, id ASC
		  LIMIT ?`, mode, date, date, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Result, 0, limit)
	for rows.Next() {
		var r Result
		var finished string
		if err := rows.Scan(&r.GameID, &r.Mode, &r.Date, &r.Cards, &r.Moves, &r.ElapsedSeconds, &finished); err != nil {
			return nil, err
		}
		r.FinishedAt, _ = time.Parse(time.RFC3339, finished)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Count returns the number of recorded results.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM results`).Scan(&n)
	return n, err
}
