package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"
)

// OpenPostgres connects to the remote leaderboard database and makes sure
// the leaderboard table exists.
func OpenPostgres(ctx context.Context, url string, maxOpen, maxIdle int) (*sql.DB, error) {
	db, err := sql.Open("postgres", url)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	if maxOpen > 0 {
		db.SetMaxOpenConns(maxOpen)
	}
	if maxIdle > 0 {
		db.SetMaxIdleConns(maxIdle)
	}
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	if _, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS leaderboard (
			id SERIAL PRIMARY KEY,
			username TEXT NOT NULL,
			score INTEGER NOT NULL,
			survival_time DOUBLE PRECISION NOT NULL,
			cost DOUBLE PRECISION NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create leaderboard table: %w", err)
	}

	return db, nil
}

// PostgresScoreStore is the shared remote leaderboard.
type PostgresScoreStore struct {
	db *sql.DB
}

// NewPostgresScoreStore creates a remote score store.
func NewPostgresScoreStore(db *sql.DB) *PostgresScoreStore {
	return &PostgresScoreStore{db: db}
}

// Insert adds an entry to the remote leaderboard.
func (s *PostgresScoreStore) Insert(ctx context.Context, entry ScoreEntry) error {
	query := `
		INSERT INTO leaderboard (username, score, survival_time, cost, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.db.ExecContext(ctx, query,
		entry.Username,
		entry.Score,
		entry.SurvivalDays,
		entry.Cost,
		entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert score: %w", err)
	}
	return nil
}

// Top returns the n highest remote scores.
func (s *PostgresScoreStore) Top(ctx context.Context, n int) ([]ScoreEntry, error) {
	query := `
		SELECT username, score, survival_time, cost, created_at
		FROM leaderboard
		ORDER BY score DESC, created_at ASC
		LIMIT $1
	`
	rows, err := s.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query leaderboard: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		if err := rows.Scan(&e.Username, &e.Score, &e.SurvivalDays, &e.Cost, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan score: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Ensure PostgresScoreStore implements ScoreStore
var _ ScoreStore = (*PostgresScoreStore)(nil)
