package engine

import (
	"fmt"
	"math"

	"github.com/MRamiBalles/BioHome/server/internal/domain/grid"
	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	"github.com/MRamiBalles/BioHome/server/internal/domain/rules"
	"github.com/MRamiBalles/BioHome/server/internal/events"
	"github.com/MRamiBalles/BioHome/server/internal/platform/config"
	apperrors "github.com/MRamiBalles/BioHome/server/internal/platform/errors"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
)

// Engine is the mission orchestrator. It owns the SimState, routes commands
// to the subsystems and runs them in a fixed order every tick.
type Engine struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	cfg      config.SimulationConfig
	state    *SimState

	// Sub-systems
	resourceSystem   *ResourceSystem
	eventSystem      *EventSystem
	experimentSystem *ExperimentSystem
	spacewalkSystem  *SpacewalkSystem
	crewSystem       *CrewSystem

	tickCount int64
}

// New builds an engine in the build phase. A nil eventLog gets an in-memory
// log sized by cfg.LogCapacity.
func New(cfg config.SimulationConfig, rng Rand, eventLog *events.EventLog, log *logger.Logger) *Engine {
	if eventLog == nil {
		eventLog = events.NewEventLog(cfg.LogCapacity, nil)
	}
	if log == nil {
		log = logger.Discard()
	}
	if rng == nil {
		rng = NewRand(cfg.Seed)
	}
	log = log.With("component", "engine")

	state := NewSimState(cfg.GridWidth, cfg.GridHeight, cfg.BaseCost, cfg.MissionDays, cfg.InitialResources)
	if cfg.StartSpeed > 0 {
		state.Speed = cfg.StartSpeed
	}

	return &Engine{
		eventLog: eventLog,
		logger:   log,
		cfg:      cfg,
		state:    state,

		resourceSystem:   NewResourceSystem(log),
		eventSystem:      NewEventSystem(eventLog, log, rng),
		experimentSystem: NewExperimentSystem(eventLog, log),
		spacewalkSystem:  NewSpacewalkSystem(eventLog, log, rng),
		crewSystem:       NewCrewSystem(eventLog, log, rng),
	}
}

// Phase returns the current mission phase.
func (e *Engine) Phase() Phase {
	return e.state.Phase
}

// reject writes a refused command to the mission log and returns err.
func (e *Engine) reject(err error) error {
	e.eventLog.Record(events.EventTypeCommandRejected, events.SeverityError, e.state.Day(), err.Error(), nil)
	return err
}

// AddCrew hires a member. An empty role picks a random free one.
func (e *Engine) AddCrew(role habitat.Role) (*habitat.CrewMember, error) {
	if e.state.Phase == PhaseOver {
		return nil, e.reject(apperrors.Conflictf("mission is over"))
	}
	m, err := e.crewSystem.AddMember(e.state, role)
	if err != nil {
		return nil, e.reject(err)
	}
	return m, nil
}

// RemoveCrew dismisses the member at roster index.
func (e *Engine) RemoveCrew(index int) error {
	if e.state.Phase == PhaseOver {
		return e.reject(apperrors.Conflictf("mission is over"))
	}
	if _, err := e.crewSystem.RemoveMember(e.state, index, e.spacewalkSystem); err != nil {
		return e.reject(err)
	}
	return nil
}

// Launch leaves the build phase. The crew move into their quarters and the
// mission clock starts at day 0.
func (e *Engine) Launch() error {
	s := e.state
	if s.Phase != PhaseBuild {
		return e.reject(apperrors.Conflictf("mission already launched"))
	}
	if len(s.Crew) == 0 {
		return e.reject(apperrors.Validation("Cannot launch without crew members"))
	}
	if len(s.Modules) == 0 {
		return e.reject(apperrors.Validation("Cannot launch without life support components"))
	}

	e.crewSystem.AssignQuarters(s)
	s.Days = 0
	s.Paused = false
	s.Phase = PhaseSimulation

	e.eventLog.Record(events.EventTypeMissionLaunched, events.SeveritySuccess, 0,
		"Mission launched! Beginning journey to Mars...", nil)
	e.logger.Info("mission launched", "crew", len(s.Crew), "modules", len(s.Modules), "cost", s.TotalCost)
	return nil
}

// StartSpacewalk sends the Engineer outside.
func (e *Engine) StartSpacewalk() error {
	if err := e.spacewalkSystem.Start(e.state); err != nil {
		return e.reject(err)
	}
	return nil
}

// EndSpacewalk recalls the Engineer. It is a no-op while idle.
func (e *Engine) EndSpacewalk() {
	e.spacewalkSystem.End(e.state)
}

// SetSpeed sets the time multiplier. It must be positive and finite.
func (e *Engine) SetSpeed(m float64) error {
	if !(m > 0) || math.IsInf(m, 0) {
		return e.reject(apperrors.Validationf("speed multiplier must be positive, got %v", m))
	}
	e.state.Speed = m
	e.eventLog.Record(events.EventTypeSpeedChanged, events.SeverityInfo, e.state.Day(),
		fmt.Sprintf("Time speed set to %gx", m), m)
	return nil
}

// Pause stops ticks from advancing the mission.
func (e *Engine) Pause() error {
	if e.state.Phase != PhaseSimulation {
		return apperrors.Conflictf("nothing to pause outside the mission")
	}
	e.state.Paused = true
	return nil
}

// Resume lets ticks advance the mission again.
func (e *Engine) Resume() error {
	if e.state.Phase != PhaseSimulation {
		return apperrors.Conflictf("nothing to resume outside the mission")
	}
	e.state.Paused = false
	return nil
}

// FindPath routes between two cells around installed modules.
func (e *Engine) FindPath(from, to grid.Point) []grid.Point {
	return e.state.Grid.FindPath(from, to)
}

// Tick advances the mission by deltaSeconds of real time. It does nothing
// unless the mission is running and unpaused, or when the delta is not a
// positive finite number.
func (e *Engine) Tick(deltaSeconds float64) {
	s := e.state
	if s.Phase != PhaseSimulation || s.Paused || !(deltaSeconds > 0) || math.IsInf(deltaSeconds, 1) {
		return
	}
	e.tickCount++

	s.Days += deltaSeconds * s.Speed / 86400
	e.resourceSystem.OnTick(s, deltaSeconds)
	e.eventSystem.OnTick(s)
	e.experimentSystem.OnTick(s, deltaSeconds)
	e.resourceSystem.ApplyHealth(s, deltaSeconds)
	e.spacewalkSystem.OnTick(s, deltaSeconds)

	e.checkOutcome()
}

// checkOutcome ends the mission on crew loss or on arrival with all
// research done.
func (e *Engine) checkOutcome() {
	s := e.state
	switch {
	case s.Resources.Health <= 0:
		e.finish(OutcomeFailure, events.EventTypeMissionFailure, events.SeverityError, "Mission Failed")
	case habitat.CountCompleted(s.Experiments) == len(s.Experiments) && s.Days >= s.MissionDays:
		e.finish(OutcomeSuccess, events.EventTypeMissionSuccess, events.SeveritySuccess, "Mission Successful!")
	}
}

func (e *Engine) finish(outcome Outcome, t events.EventType, sev events.Severity, msg string) {
	s := e.state
	s.Phase = PhaseOver
	s.Outcome = outcome
	s.Paused = true
	score := e.Score()
	e.eventLog.Record(t, sev, s.Day(), msg, map[string]interface{}{
		"score":         score,
		"survival_days": s.Days,
		"cost":          s.TotalCost,
	})
	e.logger.Info("mission over", "outcome", string(outcome), "days", s.Days, "score", score)
}

// Score is floor(days × completed experiments / total cost × 1000).
func (e *Engine) Score() int {
	s := e.state
	return rules.MissionScore(s.Days, habitat.CountCompleted(s.Experiments), s.TotalCost)
}

// Snapshot is a deep copy of the mission for rendering and transport.
type Snapshot struct {
	Tick        int64                `json:"tick"`
	Phase       Phase                `json:"phase"`
	Outcome     Outcome              `json:"outcome"`
	Days        float64              `json:"days"`
	Day         int                  `json:"day"`
	MissionDays float64              `json:"mission_days"`
	Speed       float64              `json:"speed"`
	Paused      bool                 `json:"paused"`
	TotalCost   float64              `json:"total_cost"`
	TotalMass   float64              `json:"total_mass"`
	Score       int                  `json:"score"`
	Resources   habitat.Resources    `json:"resources"`
	Production  Production           `json:"production"`
	Violations  rules.Violations     `json:"violations"`
	Modules     []habitat.Module     `json:"modules"`
	Crew        []habitat.CrewMember `json:"crew"`
	Experiments []habitat.Experiment `json:"experiments"`
	Completed   int                  `json:"completed"`
	Spacewalk   SpacewalkStatus      `json:"spacewalk"`
	GridWidth   int                  `json:"grid_width"`
	GridHeight  int                  `json:"grid_height"`
	Log         []string             `json:"log"`
}

// Snapshot copies the state. The result shares nothing with the engine.
func (e *Engine) Snapshot() Snapshot {
	s := e.state

	modules := make([]habitat.Module, len(s.Modules))
	for i, m := range s.Modules {
		modules[i] = *m
	}
	crew := make([]habitat.CrewMember, len(s.Crew))
	for i, c := range s.Crew {
		crew[i] = *c
	}
	experiments := make([]habitat.Experiment, len(s.Experiments))
	copy(experiments, s.Experiments)

	return Snapshot{
		Tick:        e.tickCount,
		Phase:       s.Phase,
		Outcome:     s.Outcome,
		Days:        s.Days,
		Day:         s.Day(),
		MissionDays: s.MissionDays,
		Speed:       s.Speed,
		Paused:      s.Paused,
		TotalCost:   s.TotalCost,
		TotalMass:   s.TotalMass,
		Score:       e.Score(),
		Resources:   s.Resources,
		Production:  Totals(s),
		Violations:  rules.CheckThresholds(s.Resources),
		Modules:     modules,
		Crew:        crew,
		Experiments: experiments,
		Completed:   habitat.CountCompleted(s.Experiments),
		Spacewalk:   e.spacewalkSystem.Status(s),
		GridWidth:   s.Grid.Width(),
		GridHeight:  s.Grid.Height(),
		Log:         e.eventLog.Lines(),
	}
}
