package engine

import (
	"testing"

	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	"github.com/MRamiBalles/BioHome/server/internal/events"
	apperrors "github.com/MRamiBalles/BioHome/server/internal/platform/errors"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
)

func walkingState(t *testing.T, rng Rand) (*SimState, *SpacewalkSystem, *events.EventLog) {
	t.Helper()
	el := events.NewEventLog(20, nil)
	ss := NewSpacewalkSystem(el, logger.Discard(), rng)
	s := stateWith(nil, []habitat.Role{habitat.RoleDoctor, habitat.RoleEngineer})
	s.Phase = PhaseSimulation
	if err := ss.Start(s); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return s, ss, el
}

func TestSpacewalkEndsWhenTimeRunsOut(t *testing.T) {
	// Setup
	s, ss, el := walkingState(t, &scriptedRand{})

	// Act
	ss.OnTick(s, 119.5)

	// Assert
	if !s.Spacewalk.Active {
		t.Fatalf("spacewalk ended early with %vs left", s.Spacewalk.Remaining)
	}

	// Act
	ss.OnTick(s, 0.5)

	// Assert
	if s.Spacewalk.Active {
		t.Errorf("spacewalk still active at 0s remaining")
	}
	if s.Crew[1].CurrentTask != "" {
		t.Errorf("engineer still tasked: %q", s.Crew[1].CurrentTask)
	}
	if !logContains(el, "Engineer has returned from spacewalk") {
		t.Errorf("return not logged: %v", el.Lines())
	}
}

func TestSpacewalkEndsWhenEngineerDies(t *testing.T) {
	// Setup: radiation hits, hull holds.
	rng := &scriptedRand{floats: []float64{0.0, 0.5}}
	s, ss, el := walkingState(t, rng)
	s.Crew[1].Health = 5

	// Act
	ss.OnTick(s, 1)

	// Assert
	if s.Crew[1].Health != 0 {
		t.Errorf("Expected engineer health 0, got %v", s.Crew[1].Health)
	}
	if s.Spacewalk.Active {
		t.Errorf("spacewalk should end on death")
	}
	lines := el.Lines()
	if lines[len(lines)-1] != "Day 0: Engineer lost in space! Mission critical!" {
		t.Errorf("unexpected final line %q", lines[len(lines)-1])
	}
	if !logContains(el, "Spacewalk: Radiation exposure detected!") {
		t.Errorf("radiation not logged")
	}
}

func TestSpacewalkHullBreachCostsOxygen(t *testing.T) {
	rng := &scriptedRand{floats: []float64{0.9, 0.001}}
	s, ss, el := walkingState(t, rng)

	ss.OnTick(s, 1)

	if s.Resources.Oxygen != 11 {
		t.Errorf("Expected oxygen 11, got %v", s.Resources.Oxygen)
	}
	if !logContains(el, "Spacewalk: Hull breach detected! O2 leak!") {
		t.Errorf("breach not logged")
	}
	if !s.Spacewalk.Active {
		t.Errorf("breach alone should not end the spacewalk")
	}
}

func TestEndSpacewalkIsIdempotent(t *testing.T) {
	s, ss, el := walkingState(t, &scriptedRand{})

	ss.End(s)
	ss.End(s)
	ss.End(s)

	if n := len(el.GetByType(events.EventTypeSpacewalkEnded)); n != 1 {
		t.Errorf("Expected 1 end event, got %d", n)
	}
	if s.Spacewalk != (habitat.Spacewalk{}) {
		t.Errorf("session not reset: %+v", s.Spacewalk)
	}
}

func TestStartSpacewalkRejections(t *testing.T) {
	el := events.NewEventLog(10, nil)
	ss := NewSpacewalkSystem(el, logger.Discard(), &scriptedRand{})

	build := stateWith(nil, []habitat.Role{habitat.RoleEngineer})
	if err := ss.Start(build); !apperrors.Is(err, apperrors.ErrorTypeConflict) {
		t.Errorf("build phase: expected conflict, got %v", err)
	}

	noEngineer := stateWith(nil, []habitat.Role{habitat.RolePilot})
	noEngineer.Phase = PhaseSimulation
	if err := ss.Start(noEngineer); err == nil || err.Error() != "No Engineer available for spacewalk" {
		t.Errorf("no engineer: got %v", err)
	}

	s, ss2, _ := walkingState(t, &scriptedRand{})
	if err := ss2.Start(s); !apperrors.Is(err, apperrors.ErrorTypeConflict) {
		t.Errorf("second start: expected conflict, got %v", err)
	}
}

func TestNoSecondSpacewalkAfterEngineerLost(t *testing.T) {
	// Setup: radiation kills the Engineer on the first walk.
	rng := &scriptedRand{floats: []float64{0.0, 0.5}}
	s, ss, el := walkingState(t, rng)
	s.Crew[1].Health = 5
	ss.OnTick(s, 1)

	// Act
	err := ss.Start(s)

	// Assert
	if !apperrors.Is(err, apperrors.ErrorTypeConflict) {
		t.Fatalf("expected conflict for a dead Engineer, got %v", err)
	}
	if s.Spacewalk.Active {
		t.Errorf("spacewalk started with a dead Engineer")
	}
	if n := len(el.GetByType(events.EventTypeSpacewalkStarted)); n != 1 {
		t.Errorf("Expected 1 start event, got %d", n)
	}
}

func TestSpacewalkStatus(t *testing.T) {
	s, ss, _ := walkingState(t, &scriptedRand{})
	ss.OnTick(s, 20)

	st := ss.Status(s)

	if !st.Active || st.Remaining != 100 || st.MemberIndex != 1 || st.MemberHealth != 100 {
		t.Errorf("unexpected status %+v", st)
	}
	ss.End(s)
	if st := ss.Status(s); st.Active || st.MemberIndex != -1 {
		t.Errorf("idle status wrong: %+v", st)
	}
}
