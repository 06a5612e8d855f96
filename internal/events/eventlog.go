// Package events provides the mission log: an ordered record of everything
// notable that happens aboard the habitat, displayed as "Day N: msg".
package events

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of a mission event.
type EventType string

const (
	EventTypeModulePlaced        EventType = "MODULE_PLACED"
	EventTypeCrewAdded           EventType = "CREW_ADDED"
	EventTypeCrewRemoved         EventType = "CREW_REMOVED"
	EventTypeMissionLaunched     EventType = "MISSION_LAUNCHED"
	EventTypeSpeedChanged        EventType = "SPEED_CHANGED"
	EventTypeSolarFlare          EventType = "SOLAR_FLARE"
	EventTypeEquipmentFailure    EventType = "EQUIPMENT_FAILURE"
	EventTypeAsteroidPass        EventType = "ASTEROID_PASS"
	EventTypePlanetAlignment     EventType = "PLANET_ALIGNMENT"
	EventTypeExperimentCompleted EventType = "EXPERIMENT_COMPLETED"
	EventTypeSpacewalkStarted    EventType = "SPACEWALK_STARTED"
	EventTypeSpacewalkEnded      EventType = "SPACEWALK_ENDED"
	EventTypeSpacewalkRadiation  EventType = "SPACEWALK_RADIATION"
	EventTypeHullBreach          EventType = "HULL_BREACH"
	EventTypeCrewLost            EventType = "CREW_LOST"
	EventTypeMissionSuccess      EventType = "MISSION_SUCCESS"
	EventTypeMissionFailure      EventType = "MISSION_FAILURE"
	EventTypeCommandRejected     EventType = "COMMAND_REJECTED"
)

// Severity drives how the renderer colours a log line.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// DefaultCapacity is how many events the in-memory log keeps.
const DefaultCapacity = 50

// GameEvent is an immutable record of something that happened.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	Severity  Severity    `json:"severity"`
	ActorID   string      `json:"actor_id,omitempty"`
	Message   string      `json:"message"`
	GameDay   int         `json:"game_day"`
	Payload   interface{} `json:"payload,omitempty"`
}

// Line renders the event as shown in the mission log.
func (e GameEvent) Line() string {
	return fmt.Sprintf("Day %d: %s", e.GameDay, e.Message)
}

// EventPersister defines how an event is durably stored.
type EventPersister interface {
	Append(event GameEvent) error
}

// EventLog keeps the most recent events in memory and writes every event
// through to an optional persister.
type EventLog struct {
	mu        sync.RWMutex
	events    []GameEvent
	capacity  int
	total     int
	persister EventPersister
	onError   func(error)
}

// NewEventLog creates a log holding at most capacity events.
// A non-positive capacity selects DefaultCapacity.
func NewEventLog(capacity int, persister EventPersister) *EventLog {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &EventLog{
		events:    make([]GameEvent, 0, capacity),
		capacity:  capacity,
		persister: persister,
	}
}

// OnPersistError registers a callback for failed write-throughs.
func (el *EventLog) OnPersistError(fn func(error)) {
	el.mu.Lock()
	el.onError = fn
	el.mu.Unlock()
}

// Record builds and appends an event, returning it.
func (el *EventLog) Record(t EventType, sev Severity, day int, message string, payload interface{}) GameEvent {
	event := GameEvent{
		ID:        GenerateEventID(),
		Timestamp: time.Now(),
		Type:      t,
		Severity:  sev,
		Message:   message,
		GameDay:   day,
		Payload:   payload,
	}
	el.Append(event)
	return event
}

// Append adds an event, evicting the oldest once the log is full.
func (el *EventLog) Append(event GameEvent) {
	el.mu.Lock()
	defer el.mu.Unlock()

	if len(el.events) == el.capacity {
		copy(el.events, el.events[1:])
		el.events = el.events[:len(el.events)-1]
	}
	el.events = append(el.events, event)
	el.total++

	if el.persister != nil {
		onError := el.onError
		go func(e GameEvent) {
			if err := el.persister.Append(e); err != nil && onError != nil {
				onError(err)
			}
		}(event)
	}
}

// Recent returns a copy of the retained events, oldest first.
func (el *EventLog) Recent() []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()
	out := make([]GameEvent, len(el.events))
	copy(out, el.events)
	return out
}

// Lines returns the retained events formatted for display.
func (el *EventLog) Lines() []string {
	recent := el.Recent()
	lines := make([]string, len(recent))
	for i, e := range recent {
		lines[i] = e.Line()
	}
	return lines
}

// GetByDay returns retained events from a specific mission day.
func (el *EventLog) GetByDay(day int) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.GameDay == day {
			result = append(result, e)
		}
	}
	return result
}

// GetByType returns retained events of one type.
func (el *EventLog) GetByType(t EventType) []GameEvent {
	el.mu.RLock()
	defer el.mu.RUnlock()

	var result []GameEvent
	for _, e := range el.events {
		if e.Type == t {
			result = append(result, e)
		}
	}
	return result
}

// Total returns how many events were ever appended, including evicted ones.
func (el *EventLog) Total() int {
	el.mu.RLock()
	defer el.mu.RUnlock()
	return el.total
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
