package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/MRamiBalles/BioHome/server/internal/events"
)

// Reconstructor rebuilds a mission summary from the persisted log. The
// in-memory log only holds the last fifty lines; this reads them all.
type Reconstructor struct {
	eventRepo EventRepository
}

// NewReconstructor creates a new mission reconstructor.
func NewReconstructor(eventRepo EventRepository) *Reconstructor {
	return &Reconstructor{eventRepo: eventRepo}
}

// RecapEvent is one line of the mission timeline.
type RecapEvent struct {
	Day       int    `json:"day"`
	EventType string `json:"event_type"`
	Summary   string `json:"summary"`
	Impact    string `json:"impact"` // "POSITIVE", "NEGATIVE", "NEUTRAL"
}

// MissionRecap is the debrief of one mission.
type MissionRecap struct {
	MissionID   string         `json:"mission_id"`
	Events      int            `json:"events"`
	LastDay     int            `json:"last_day"`
	Launched    bool           `json:"launched"`
	Outcome     string         `json:"outcome"`
	Score       int            `json:"score"`
	Experiments []string       `json:"experiments_completed"`
	Hazards     map[string]int `json:"hazards"`
	Timeline    []RecapEvent   `json:"timeline"`
}

// outcomePayload is what the engine attaches to the final event.
type outcomePayload struct {
	Score int `json:"score"`
}

// BuildRecap summarises a mission from sinceDay onwards.
func (r *Reconstructor) BuildRecap(ctx context.Context, missionID string, sinceDay int) (*MissionRecap, error) {
	all, err := r.eventRepo.GetByMission(ctx, missionID)
	if err != nil {
		return nil, fmt.Errorf("failed to load mission events: %w", err)
	}

	recap := &MissionRecap{
		MissionID: missionID,
		Outcome:   "none",
		Hazards:   make(map[string]int),
	}

	for _, e := range all {
		if e.GameDay < sinceDay {
			continue
		}
		recap.Events++
		if e.GameDay > recap.LastDay {
			recap.LastDay = e.GameDay
		}
		r.applyEvent(recap, e)

		recap.Timeline = append(recap.Timeline, RecapEvent{
			Day:       e.GameDay,
			EventType: e.EventType,
			Summary:   e.Message,
			Impact:    determineImpact(e),
		})
	}

	return recap, nil
}

// applyEvent folds one event into the recap counters.
func (r *Reconstructor) applyEvent(recap *MissionRecap, e EventRecord) {
	switch events.EventType(e.EventType) {
	case events.EventTypeMissionLaunched:
		recap.Launched = true
	case events.EventTypeExperimentCompleted:
		var name string
		if err := json.Unmarshal(e.Payload, &name); err == nil && name != "" {
			recap.Experiments = append(recap.Experiments, name)
		}
	case events.EventTypeSolarFlare, events.EventTypeEquipmentFailure, events.EventTypeAsteroidPass,
		events.EventTypeHullBreach, events.EventTypeSpacewalkRadiation:
		recap.Hazards[e.EventType]++
	case events.EventTypeMissionSuccess, events.EventTypeMissionFailure:
		recap.Outcome = "failure"
		if e.EventType == string(events.EventTypeMissionSuccess) {
			recap.Outcome = "success"
		}
		var p outcomePayload
		if err := json.Unmarshal(e.Payload, &p); err == nil {
			recap.Score = p.Score
		}
	}
}

// determineImpact classifies the event by its severity.
func determineImpact(e EventRecord) string {
	switch events.Severity(e.Severity) {
	case events.SeveritySuccess:
		return "POSITIVE"
	case events.SeverityWarning, events.SeverityError:
		return "NEGATIVE"
	default:
		return "NEUTRAL"
	}
}
