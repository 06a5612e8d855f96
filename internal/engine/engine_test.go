package engine

import (
	"math"
	"testing"

	"github.com/MRamiBalles/BioHome/server/internal/domain/grid"
	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	apperrors "github.com/MRamiBalles/BioHome/server/internal/platform/errors"
)

func TestLaunchRequiresCrewAndModules(t *testing.T) {
	// Setup
	noCrew := newTestEngine(t, nil)
	noCrew.PlaceModule(habitat.ModuleSolarPanels, 0, 0)
	noModules := newTestEngine(t, nil)
	noModules.AddCrew(habitat.RoleEngineer)

	// Act
	errCrew := noCrew.Launch()
	errModules := noModules.Launch()

	// Assert
	if errCrew == nil || errCrew.Error() != "Cannot launch without crew members" {
		t.Errorf("no crew: got %v", errCrew)
	}
	if errModules == nil || errModules.Error() != "Cannot launch without life support components" {
		t.Errorf("no modules: got %v", errModules)
	}
	if noCrew.Phase() != PhaseBuild || noModules.Phase() != PhaseBuild {
		t.Errorf("rejected launch changed phase")
	}
}

func TestLaunchStartsMission(t *testing.T) {
	e := newTestEngine(t, nil)
	e.AddCrew(habitat.RoleEngineer)
	e.PlaceModule(habitat.ModuleCrewQuarters, 30, 20)

	if err := e.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}

	if e.Phase() != PhaseSimulation || e.state.Days != 0 {
		t.Errorf("unexpected state after launch: %s day %v", e.Phase(), e.state.Days)
	}
	if e.state.Crew[0].Position != (grid.Point{X: 35, Y: 25}) {
		t.Errorf("crew not moved to quarters: %v", e.state.Crew[0].Position)
	}
	if !logContains(e.eventLog, "Mission launched! Beginning journey to Mars...") {
		t.Errorf("launch not logged")
	}
	if err := e.Launch(); !apperrors.Is(err, apperrors.ErrorTypeConflict) {
		t.Errorf("second launch: expected conflict, got %v", err)
	}
}

func TestTickIgnoredOutsideRunningMission(t *testing.T) {
	e := newTestEngine(t, nil)
	e.Tick(3600)
	if e.state.Days != 0 || e.state.Resources != habitat.InitialResources() {
		t.Errorf("tick advanced a mission in build phase")
	}

	e = launchedEngine(t, nil)
	e.Pause()
	e.Tick(3600)
	if e.state.Days != 0 {
		t.Errorf("tick advanced a paused mission")
	}

	e.Resume()
	e.Tick(3600)
	if e.state.Days == 0 {
		t.Errorf("tick did not advance after resume")
	}
}

func TestTickIgnoresNonFiniteDelta(t *testing.T) {
	for _, d := range []float64{math.Inf(1), math.Inf(-1), math.NaN(), 0, -5} {
		e := launchedEngine(t, nil)
		before := e.Snapshot()

		e.Tick(d)

		after := e.Snapshot()
		if after.Days != before.Days || after.Resources != before.Resources || after.Phase != PhaseSimulation {
			t.Errorf("delta %v changed the mission: %+v -> %+v", d, before.Resources, after.Resources)
		}
	}
}

func TestHugeDeltaKeepsStateDefined(t *testing.T) {
	// Setup
	e := launchedEngine(t, nil)

	// Act
	e.Tick(1e300)

	// Assert
	r := e.Snapshot().Resources
	for name, v := range map[string]float64{
		"oxygen": r.Oxygen, "co2": r.CO2, "food": r.Food, "water": r.Water,
		"energy": r.Energy, "temperature": r.Temperature, "humidity": r.Humidity, "health": r.Health,
	} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			t.Errorf("%s is not finite: %v", name, v)
		}
	}
	if e.Phase() != PhaseOver {
		t.Errorf("expected the mission to end, got phase %s", e.Phase())
	}
	if score := e.Score(); score < 0 {
		t.Errorf("score overflowed: %d", score)
	}
}

func TestTickAdvancesDaysBySpeed(t *testing.T) {
	e := launchedEngine(t, nil)
	if err := e.SetSpeed(24); err != nil {
		t.Fatalf("SetSpeed: %v", err)
	}

	e.Tick(3600)

	if e.state.Days != 1 {
		t.Errorf("Expected 1 day at 24x over an hour, got %v", e.state.Days)
	}
}

func TestSetSpeedRejectsNonPositive(t *testing.T) {
	e := newTestEngine(t, nil)
	for _, m := range []float64{0, -2} {
		if err := e.SetSpeed(m); !apperrors.Is(err, apperrors.ErrorTypeValidation) {
			t.Errorf("SetSpeed(%v): expected validation error, got %v", m, err)
		}
	}
	if e.state.Speed != 1 {
		t.Errorf("rejected speed changed state: %v", e.state.Speed)
	}
}

func TestMissionFailsWhenHealthReachesZero(t *testing.T) {
	// Setup
	e := launchedEngine(t, nil)
	e.state.Resources.Food = 0
	e.state.Resources.Health = 1

	// Act
	e.Tick(3600)
	days := e.state.Days
	e.Tick(3600)

	// Assert
	if e.state.Phase != PhaseOver || e.state.Outcome != OutcomeFailure {
		t.Fatalf("expected failure, got %s/%s", e.state.Phase, e.state.Outcome)
	}
	if e.state.Days != days {
		t.Errorf("ticks continued after the mission ended")
	}
	if !logContains(e.eventLog, "Mission Failed") {
		t.Errorf("failure not logged")
	}
}

func TestMissionSucceedsOnArrivalWithResearchDone(t *testing.T) {
	// Setup
	e := launchedEngine(t, nil)
	e.state.Days = 179.9
	e.SetSpeed(86400)

	// Act: a one-second tick moves one day and a sliver of research.
	e.Tick(1)

	// Assert
	if e.state.Phase != PhaseSimulation {
		t.Fatalf("mission ended before research was done")
	}

	for i := range e.state.Experiments {
		e.state.Experiments[i].Progress = 1
		e.state.Experiments[i].Completed = true
	}
	e.Tick(1)

	if e.state.Phase != PhaseOver || e.state.Outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %s/%s", e.state.Phase, e.state.Outcome)
	}
	if !logContains(e.eventLog, "Mission Successful!") {
		t.Errorf("success not logged")
	}
}

func TestScore(t *testing.T) {
	e := launchedEngine(t, nil)
	e.state.Days = 100
	e.state.TotalCost = 1000
	for i := 0; i < 5; i++ {
		e.state.Experiments[i].Completed = true
	}

	if got := e.Score(); got != 500 {
		t.Errorf("Expected score 500, got %d", got)
	}

	e.state.TotalCost = 0
	if got := e.Score(); got != 0 {
		t.Errorf("zero cost should score 0, got %d", got)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	// Setup
	e := launchedEngine(t, nil)

	// Act
	snap := e.Snapshot()
	snap.Modules[0].Active = false
	snap.Crew[0].Health = 1
	snap.Experiments[0].Progress = 0.9

	// Assert
	if !e.state.Modules[0].Active || e.state.Crew[0].Health != 100 || e.state.Experiments[0].Progress != 0 {
		t.Errorf("mutating the snapshot changed engine state")
	}
	if snap.Phase != PhaseSimulation || snap.TotalCost != 813 || len(snap.Log) == 0 {
		t.Errorf("unexpected snapshot %+v", snap)
	}
	if snap.Spacewalk.MemberIndex != -1 {
		t.Errorf("idle spacewalk should report index -1")
	}
}

func TestFindPathAroundModules(t *testing.T) {
	e := newTestEngine(t, nil)
	e.PlaceModule(habitat.ModuleSolarPanels, 5, 0)

	path := e.FindPath(grid.Point{X: 0, Y: 0}, grid.Point{X: 20, Y: 0})

	if len(path) == 0 {
		t.Fatalf("expected a route around the panels")
	}
	for _, p := range path {
		if e.state.Grid.IsBlocked(p.X, p.Y) {
			t.Fatalf("path crosses blocked cell %v", p)
		}
	}
	if len(path) != 21+2*6 {
		t.Errorf("Expected a 33-cell detour, got %d", len(path))
	}
}
