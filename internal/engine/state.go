package engine

import (
	"github.com/MRamiBalles/BioHome/server/internal/domain/grid"
	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
)

// Phase is the mission lifecycle stage.
type Phase string

const (
	PhaseBuild      Phase = "build"
	PhaseSimulation Phase = "simulation"
	PhaseOver       Phase = "over"
)

// Outcome is how the mission ended.
type Outcome string

const (
	OutcomeNone    Outcome = "none"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// SimState is the complete mutable state of one mission. It is owned by the
// Engine and passed to each subsystem by pointer; nothing else holds it.
type SimState struct {
	Phase       Phase
	Outcome     Outcome
	Days        float64
	MissionDays float64
	Speed       float64
	Paused      bool

	TotalCost float64
	TotalMass float64

	Resources   habitat.Resources
	Modules     []*habitat.Module
	Crew        []*habitat.CrewMember
	Experiments []habitat.Experiment
	Spacewalk   habitat.Spacewalk
	Grid        *grid.OccupancyGrid
}

// NewSimState builds the pre-launch state on a width x height grid.
func NewSimState(width, height int, baseCost, missionDays float64, initial habitat.Resources) *SimState {
	return &SimState{
		Phase:       PhaseBuild,
		Outcome:     OutcomeNone,
		MissionDays: missionDays,
		Speed:       1,
		TotalCost:   baseCost,
		Resources:   initial,
		Experiments: habitat.NewExperiments(),
		Grid:        grid.NewOccupancyGrid(width, height),
	}
}

// Day is the whole mission day shown in log lines.
func (s *SimState) Day() int {
	return int(s.Days)
}

// CountActive returns how many active modules of type t are installed.
func (s *SimState) CountActive(t habitat.ModuleType) int {
	n := 0
	for _, m := range s.Modules {
		if m.Active && m.Type == t {
			n++
		}
	}
	return n
}

// ModulesOfType returns installed modules of type t in placement order.
func (s *SimState) ModulesOfType(t habitat.ModuleType) []*habitat.Module {
	var out []*habitat.Module
	for _, m := range s.Modules {
		if m.Type == t {
			out = append(out, m)
		}
	}
	return out
}

// MemberIndex returns the roster index of the crew member with id, or -1.
func (s *SimState) MemberIndex(id string) int {
	for i, c := range s.Crew {
		if c.ID == id {
			return i
		}
	}
	return -1
}
