package engine

import (
	"strings"
	"testing"

	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	"github.com/MRamiBalles/BioHome/server/internal/events"
	"github.com/MRamiBalles/BioHome/server/internal/platform/config"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
)

// scriptedRand replays fixed draws. Once a script runs out, Float64 returns
// a value that never triggers a hazard and Intn returns 0.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.999999
	}
	v := r.floats[0]
	r.floats = r.floats[1:]
	return v
}

func (r *scriptedRand) Intn(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	v := r.ints[0]
	r.ints = r.ints[1:]
	return v % n
}

func newTestEngine(t *testing.T, rng Rand) *Engine {
	t.Helper()
	if rng == nil {
		rng = &scriptedRand{}
	}
	cfg := config.DefaultSimulation()
	return New(cfg, rng, events.NewEventLog(events.DefaultCapacity, nil), logger.Discard())
}

// launchedEngine returns a running mission with an Engineer and one
// experiment module.
func launchedEngine(t *testing.T, rng Rand) *Engine {
	t.Helper()
	e := newTestEngine(t, rng)
	if _, err := e.AddCrew(habitat.RoleEngineer); err != nil {
		t.Fatalf("AddCrew: %v", err)
	}
	if _, err := e.PlaceModule(habitat.ModuleExperiment, 0, 0); err != nil {
		t.Fatalf("PlaceModule: %v", err)
	}
	if err := e.Launch(); err != nil {
		t.Fatalf("Launch: %v", err)
	}
	return e
}

func logContains(el *events.EventLog, msg string) bool {
	for _, line := range el.Lines() {
		if strings.HasSuffix(line, msg) {
			return true
		}
	}
	return false
}
