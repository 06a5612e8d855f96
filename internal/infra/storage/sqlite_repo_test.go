package storage

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/MRamiBalles/BioHome/server/internal/events"
	"github.com/MRamiBalles/BioHome/server/internal/platform/metrics"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "nested", "biohome.db"))
	if err != nil {
		t.Fatalf("InitSQLite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestEventRepositoryRoundTrip(t *testing.T) {
	// Setup
	ctx := context.Background()
	repo := NewSQLiteEventRepository(openTestDB(t))
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	recs := []EventRecord{
		{ID: "e1", MissionID: "m1", Timestamp: base, EventType: "MISSION_LAUNCHED", Severity: "success", Message: "launch", GameDay: 0},
		{ID: "e2", MissionID: "m1", Timestamp: base.Add(time.Second), EventType: "SOLAR_FLARE", Severity: "error", Message: "flare", GameDay: 3, Payload: []byte(`{"energy":-20}`)},
		{ID: "e3", MissionID: "m1", Timestamp: base.Add(2 * time.Second), EventType: "SOLAR_FLARE", Severity: "error", Message: "flare", GameDay: 4},
		{ID: "e4", MissionID: "m2", Timestamp: base, EventType: "SOLAR_FLARE", Severity: "error", Message: "other mission", GameDay: 3},
	}

	// Act
	for _, r := range recs {
		if err := repo.Append(ctx, r); err != nil {
			t.Fatalf("Append(%s): %v", r.ID, err)
		}
	}
	all, err := repo.GetByMission(ctx, "m1")
	if err != nil {
		t.Fatalf("GetByMission: %v", err)
	}
	day3, _ := repo.GetByGameDay(ctx, "m1", 3)
	flares, _ := repo.GetByEventType(ctx, "m1", "SOLAR_FLARE")

	// Assert
	if len(all) != 3 || all[0].ID != "e1" || all[2].ID != "e3" {
		t.Fatalf("unexpected mission events: %+v", all)
	}
	if string(all[1].Payload) != `{"energy":-20}` {
		t.Errorf("payload not preserved: %s", all[1].Payload)
	}
	if all[0].Payload != nil {
		t.Errorf("empty payload should read back nil, got %s", all[0].Payload)
	}
	if !all[1].Timestamp.Equal(base.Add(time.Second)) {
		t.Errorf("timestamp not preserved: %v", all[1].Timestamp)
	}
	if len(day3) != 1 || day3[0].ID != "e2" {
		t.Errorf("GetByGameDay: %+v", day3)
	}
	if len(flares) != 2 {
		t.Errorf("GetByEventType: expected 2, got %d", len(flares))
	}
}

func TestLocalScoresKeepTopTen(t *testing.T) {
	// Setup
	ctx := context.Background()
	store := NewSQLiteScoreStore(openTestDB(t))

	// Act
	for i := 1; i <= 15; i++ {
		entry := ScoreEntry{
			Username:     fmt.Sprintf("pilot-%02d", i),
			Score:        i * 10,
			SurvivalDays: float64(i),
			Cost:         900,
			CreatedAt:    time.Now(),
		}
		if err := store.Insert(ctx, entry); err != nil {
			t.Fatalf("Insert: %v", err)
		}
	}
	top, err := store.Top(ctx, 100)

	// Assert
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	if len(top) != LocalScoreLimit {
		t.Fatalf("Expected %d entries, got %d", LocalScoreLimit, len(top))
	}
	if top[0].Score != 150 || top[9].Score != 60 {
		t.Errorf("wrong entries kept: first=%d last=%d", top[0].Score, top[9].Score)
	}
	if top[0].Username != "pilot-15" || top[0].SurvivalDays != 15 {
		t.Errorf("fields not preserved: %+v", top[0])
	}
}

func TestLocalScoresTopN(t *testing.T) {
	ctx := context.Background()
	store := NewSQLiteScoreStore(openTestDB(t))
	store.Insert(ctx, ScoreEntry{Username: "a", Score: 5, CreatedAt: time.Now()})
	store.Insert(ctx, ScoreEntry{Username: "b", Score: 5, CreatedAt: time.Now()})
	store.Insert(ctx, ScoreEntry{Username: "c", Score: 9, CreatedAt: time.Now()})

	top, _ := store.Top(ctx, 2)

	if len(top) != 2 || top[0].Username != "c" || top[1].Username != "a" {
		t.Errorf("unexpected order %+v", top)
	}
}

func TestEventPersisterWritesThrough(t *testing.T) {
	// Setup
	repo := NewSQLiteEventRepository(openTestDB(t))
	m := metrics.NewCollector()
	p := NewEventPersister(repo, "mission-1", m)
	event := events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      events.EventTypeExperimentCompleted,
		Severity:  events.SeveritySuccess,
		Message:   `Experiment "Hydroponic Yield" completed!`,
		GameDay:   12,
		Payload:   "Hydroponic Yield",
	}

	// Act
	err := p.Append(event)

	// Assert
	if err != nil {
		t.Fatalf("Append: %v", err)
	}
	stored, _ := repo.GetByMission(context.Background(), "mission-1")
	if len(stored) != 1 || stored[0].Message != event.Message || string(stored[0].Payload) != `"Hydroponic Yield"` {
		t.Errorf("unexpected stored event %+v", stored)
	}
	if m.EventsWritten != 1 {
		t.Errorf("Expected 1 recorded write, got %d", m.EventsWritten)
	}
}
