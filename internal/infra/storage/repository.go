// Package storage provides the persistence layer for the habitat server.
// This package implements the repository pattern to keep the engine pure.
package storage

import (
	"context"
	"encoding/json"
	"time"
)

// EventRecord mirrors a mission log event for persistence.
type EventRecord struct {
	ID        string          `json:"id" db:"id"`
	MissionID string          `json:"mission_id" db:"mission_id"`
	Timestamp time.Time       `json:"timestamp" db:"timestamp"`
	EventType string          `json:"event_type" db:"event_type"`
	Severity  string          `json:"severity" db:"severity"`
	ActorID   string          `json:"actor_id" db:"actor_id"`
	Message   string          `json:"message" db:"message"`
	Payload   json.RawMessage `json:"payload,omitempty" db:"payload"`
	GameDay   int             `json:"game_day" db:"game_day"`
}

// EventRepository defines the interface for mission log persistence.
type EventRepository interface {
	// Append adds an event to the mission ledger.
	Append(ctx context.Context, event EventRecord) error

	// GetByMission retrieves every event of a mission in order.
	GetByMission(ctx context.Context, missionID string) ([]EventRecord, error)

	// GetByGameDay retrieves the events of one mission day.
	GetByGameDay(ctx context.Context, missionID string, day int) ([]EventRecord, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, missionID string, eventType string) ([]EventRecord, error)
}

// ScoreEntry is one finished mission on the leaderboard.
type ScoreEntry struct {
	Username     string    `json:"username" db:"username"`
	Score        int       `json:"score" db:"score"`
	SurvivalDays float64   `json:"survival_days" db:"survival_time"`
	Cost         float64   `json:"cost" db:"cost"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// ScoreStore persists leaderboard entries.
type ScoreStore interface {
	// Insert stores an entry.
	Insert(ctx context.Context, entry ScoreEntry) error

	// Top returns the n best entries, highest score first.
	Top(ctx context.Context, n int) ([]ScoreEntry, error)
}
