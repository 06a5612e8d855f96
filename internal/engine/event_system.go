package engine

import (
	"fmt"

	"github.com/MRamiBalles/BioHome/server/internal/events"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
)

// EventKind is one of the random space events.
type EventKind int

const (
	EventSolarFlare EventKind = iota
	EventEquipmentFailure
	EventAsteroidPass
	EventPlanetAlignment

	eventKindCount
)

// Event tuning.
const (
	EventChancePerDay    = 0.15
	AsteroidImpactChance = 0.3

	SolarFlareEnergyLoss = 20.0
	SolarFlareHealthLoss = 5.0
	AsteroidHealthLoss   = 10.0
	AlignmentEnergyGain  = 10.0
)

func (k EventKind) String() string {
	switch k {
	case EventSolarFlare:
		return "Solar Flare"
	case EventEquipmentFailure:
		return "Equipment Failure"
	case EventAsteroidPass:
		return "Asteroid Pass"
	case EventPlanetAlignment:
		return "Planet Alignment"
	}
	return fmt.Sprintf("EventKind(%d)", int(k))
}

// EventEffect describes what an applied event did.
type EventEffect struct {
	Kind     EventKind
	Type     events.EventType
	Severity events.Severity
	Message  string
	// Module is the index of the failed module, or -1.
	Module int
}

// ApplyEvent applies one event kind to the state. The only randomness it
// consumes is the module pick for a failure and the impact roll for an
// asteroid pass. The state is clamped before returning.
func ApplyEvent(kind EventKind, s *SimState, rng Rand) EventEffect {
	effect := EventEffect{Kind: kind, Module: -1}
	r := &s.Resources

	switch kind {
	case EventSolarFlare:
		r.Energy -= SolarFlareEnergyLoss
		r.Health -= SolarFlareHealthLoss
		effect.Type = events.EventTypeSolarFlare
		effect.Severity = events.SeverityError
		effect.Message = "Solar flare damaged solar panels and exposed crew to radiation"

	case EventEquipmentFailure:
		effect.Type = events.EventTypeEquipmentFailure
		if len(s.Modules) == 0 {
			break
		}
		idx := rng.Intn(len(s.Modules))
		m := s.Modules[idx]
		m.Active = false
		effect.Module = idx
		effect.Severity = events.SeverityWarning
		effect.Message = fmt.Sprintf("%s has failed and needs repair", m.Type)

	case EventAsteroidPass:
		effect.Type = events.EventTypeAsteroidPass
		if rng.Float64() < AsteroidImpactChance {
			r.Health -= AsteroidHealthLoss
			effect.Severity = events.SeverityError
			effect.Message = "Asteroid impact caused hull damage"
		} else {
			effect.Severity = events.SeveritySuccess
			effect.Message = "Successfully navigated through asteroid field"
		}

	case EventPlanetAlignment:
		r.Energy += AlignmentEnergyGain
		effect.Type = events.EventTypePlanetAlignment
		effect.Severity = events.SeveritySuccess
		effect.Message = "Planetary gravity assist provided energy boost"
	}

	r.Clamp()
	return effect
}

// EventSystem rolls for random events each tick.
type EventSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	rng      Rand
}

// NewEventSystem creates the random event roller.
func NewEventSystem(eventLog *events.EventLog, log *logger.Logger, rng Rand) *EventSystem {
	return &EventSystem{eventLog: eventLog, logger: log, rng: rng}
}

// OnTick rolls once against 0.15·speed/86400 and applies a uniformly chosen
// event on a hit. It reports the effect and whether one fired.
func (es *EventSystem) OnTick(s *SimState) (EventEffect, bool) {
	if es.rng.Float64() >= EventChancePerDay*s.Speed/86400 {
		return EventEffect{}, false
	}

	kind := EventKind(es.rng.Intn(int(eventKindCount)))
	effect := ApplyEvent(kind, s, es.rng)

	if effect.Message != "" {
		es.eventLog.Record(effect.Type, effect.Severity, s.Day(), effect.Message, nil)
	}
	es.logger.Event(string(effect.Type), "SPACE", kind.String())
	return effect, true
}
