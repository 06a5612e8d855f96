package events

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

type chanPersister struct {
	got chan GameEvent
	err error
}

func (p *chanPersister) Append(e GameEvent) error {
	p.got <- e
	return p.err
}

func TestLogKeepsLastFifty(t *testing.T) {
	// Setup
	el := NewEventLog(DefaultCapacity, nil)

	// Act
	for i := 0; i < 60; i++ {
		el.Record(EventTypeModulePlaced, SeverityInfo, i, fmt.Sprintf("event %d", i), nil)
	}

	// Assert
	recent := el.Recent()
	if len(recent) != 50 {
		t.Fatalf("Expected 50 retained events, got %d", len(recent))
	}
	if recent[0].Message != "event 10" || recent[49].Message != "event 59" {
		t.Errorf("wrong window retained: first=%q last=%q", recent[0].Message, recent[49].Message)
	}
	if el.Total() != 60 {
		t.Errorf("Total: expected 60 got %d", el.Total())
	}
}

func TestLineFormat(t *testing.T) {
	e := GameEvent{GameDay: 12, Message: "Engineer has begun spacewalk for external repairs"}

	if e.Line() != "Day 12: Engineer has begun spacewalk for external repairs" {
		t.Errorf("unexpected line %q", e.Line())
	}
}

func TestRecordWritesThrough(t *testing.T) {
	p := &chanPersister{got: make(chan GameEvent, 1), err: errors.New("disk full")}
	el := NewEventLog(5, p)
	errs := make(chan error, 1)
	el.OnPersistError(func(err error) { errs <- err })

	e := el.Record(EventTypeSolarFlare, SeverityError, 3, "flare", nil)

	select {
	case got := <-p.got:
		if got.ID != e.ID || got.ID == "" {
			t.Errorf("persisted event mismatch: %q vs %q", got.ID, e.ID)
		}
	case <-time.After(time.Second):
		t.Fatalf("persister was not called")
	}
	select {
	case <-errs:
	case <-time.After(time.Second):
		t.Fatalf("persist error callback was not called")
	}
}

func TestQueriesFilter(t *testing.T) {
	el := NewEventLog(10, nil)
	el.Record(EventTypeSolarFlare, SeverityError, 1, "a", nil)
	el.Record(EventTypePlanetAlignment, SeveritySuccess, 2, "b", nil)
	el.Record(EventTypeSolarFlare, SeverityError, 2, "c", nil)

	if n := len(el.GetByDay(2)); n != 2 {
		t.Errorf("GetByDay(2): expected 2 got %d", n)
	}
	if n := len(el.GetByType(EventTypeSolarFlare)); n != 2 {
		t.Errorf("GetByType: expected 2 got %d", n)
	}
	if lines := el.Lines(); lines[1] != "Day 2: b" {
		t.Errorf("Lines()[1]: got %q", lines[1])
	}
}
