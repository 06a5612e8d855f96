package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MRamiBalles/BioHome/server/internal/events"
	"github.com/MRamiBalles/BioHome/server/internal/platform/metrics"
)

// EventPersister writes mission log events through to an EventRepository.
// It satisfies events.EventPersister.
type EventPersister struct {
	repo      EventRepository
	missionID string
	timeout   time.Duration
	metrics   *metrics.Collector
}

// NewEventPersister binds a repository to one mission.
func NewEventPersister(repo EventRepository, missionID string, m *metrics.Collector) *EventPersister {
	if m == nil {
		m = metrics.Get()
	}
	return &EventPersister{repo: repo, missionID: missionID, timeout: 5 * time.Second, metrics: m}
}

// Append stores one event, recording its write latency.
func (p *EventPersister) Append(event events.GameEvent) error {
	record, err := ToRecord(p.missionID, event)
	if err != nil {
		p.metrics.RecordEventWrite(0, err)
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	start := time.Now()
	err = p.repo.Append(ctx, record)
	p.metrics.RecordEventWrite(time.Since(start), err)
	return err
}

// ToRecord converts a mission log event to its stored form.
func ToRecord(missionID string, event events.GameEvent) (EventRecord, error) {
	record := EventRecord{
		ID:        event.ID,
		MissionID: missionID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		Severity:  string(event.Severity),
		ActorID:   event.ActorID,
		Message:   event.Message,
		GameDay:   event.GameDay,
	}
	if event.Payload != nil {
		payload, err := json.Marshal(event.Payload)
		if err != nil {
			return EventRecord{}, fmt.Errorf("failed to marshal payload: %w", err)
		}
		record.Payload = payload
	}
	return record, nil
}

var _ events.EventPersister = (*EventPersister)(nil)
