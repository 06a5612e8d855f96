package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// LocalScoreLimit is how many entries the offline leaderboard keeps.
const LocalScoreLimit = 10

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event EventRecord) error {
	payload := string(event.Payload)
	if payload == "" {
		payload = "null"
	}

	query := `
		INSERT INTO mission_events (id, mission_id, timestamp, event_type, severity, actor_id, message, payload, game_day)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := r.db.ExecContext(ctx, query,
		event.ID, event.MissionID, event.Timestamp, event.EventType, event.Severity,
		event.ActorID, event.Message, payload, event.GameDay,
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

const selectEvents = `SELECT id, mission_id, timestamp, event_type, severity, actor_id, message, payload, game_day FROM mission_events`

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]EventRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var events []EventRecord
	for rows.Next() {
		var e EventRecord
		var payload string
		err := rows.Scan(
			&e.ID, &e.MissionID, &e.Timestamp, &e.EventType, &e.Severity,
			&e.ActorID, &e.Message, &payload, &e.GameDay,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		if payload != "null" {
			e.Payload = []byte(payload)
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetByMission(ctx context.Context, missionID string) ([]EventRecord, error) {
	return r.getMany(ctx, selectEvents+` WHERE mission_id = ? ORDER BY timestamp ASC, rowid ASC`, missionID)
}

func (r *SQLiteEventRepository) GetByGameDay(ctx context.Context, missionID string, day int) ([]EventRecord, error) {
	return r.getMany(ctx, selectEvents+` WHERE mission_id = ? AND game_day = ? ORDER BY timestamp ASC, rowid ASC`, missionID, day)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, missionID string, eventType string) ([]EventRecord, error) {
	return r.getMany(ctx, selectEvents+` WHERE mission_id = ? AND event_type = ? ORDER BY timestamp ASC, rowid ASC`, missionID, eventType)
}

var _ EventRepository = (*SQLiteEventRepository)(nil)

// ---------------------------------------------------------
// SQLiteScoreStore
// ---------------------------------------------------------

// SQLiteScoreStore is the offline leaderboard. It keeps only the best
// LocalScoreLimit entries.
type SQLiteScoreStore struct {
	db *sql.DB
}

func NewSQLiteScoreStore(db *sql.DB) *SQLiteScoreStore {
	return &SQLiteScoreStore{db: db}
}

// Insert stores the entry and prunes everything below the top ten.
func (s *SQLiteScoreStore) Insert(ctx context.Context, entry ScoreEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO local_scores (username, score, survival_time, cost, created_at) VALUES (?, ?, ?, ?, ?)`,
		entry.Username, entry.Score, entry.SurvivalDays, entry.Cost, entry.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert local score: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM local_scores WHERE id NOT IN (
			SELECT id FROM local_scores ORDER BY score DESC, id ASC LIMIT ?
		)`, LocalScoreLimit)
	if err != nil {
		return fmt.Errorf("failed to prune local scores: %w", err)
	}

	return tx.Commit()
}

// Top returns up to n entries, highest score first, earlier entries
// winning ties.
func (s *SQLiteScoreStore) Top(ctx context.Context, n int) ([]ScoreEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT username, score, survival_time, cost, created_at FROM local_scores ORDER BY score DESC, id ASC LIMIT ?`, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query local scores: %w", err)
	}
	defer rows.Close()

	var entries []ScoreEntry
	for rows.Next() {
		var e ScoreEntry
		if err := rows.Scan(&e.Username, &e.Score, &e.SurvivalDays, &e.Cost, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan local score: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

var _ ScoreStore = (*SQLiteScoreStore)(nil)
