package engine

import (
	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	"github.com/MRamiBalles/BioHome/server/internal/events"
	apperrors "github.com/MRamiBalles/BioHome/server/internal/platform/errors"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
)

// Spacewalk hazards, as chance per real second.
const (
	RadiationChancePerSecond  = 0.05
	HullBreachChancePerSecond = 0.01
	RadiationDamage           = 5.0
	HullBreachO2Loss          = 10.0
)

// SpacewalkStatus is the EVA panel readout.
type SpacewalkStatus struct {
	Active       bool    `json:"active"`
	Remaining    float64 `json:"remaining"`
	MemberIndex  int     `json:"member_index"`
	MemberHealth float64 `json:"member_health"`
}

// SpacewalkSystem runs the single Engineer EVA session.
type SpacewalkSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	rng      Rand
}

// NewSpacewalkSystem creates the EVA state machine.
func NewSpacewalkSystem(eventLog *events.EventLog, log *logger.Logger, rng Rand) *SpacewalkSystem {
	return &SpacewalkSystem{eventLog: eventLog, logger: log, rng: rng}
}

// Start sends the Engineer outside for SpacewalkDuration seconds.
func (ss *SpacewalkSystem) Start(s *SimState) error {
	if s.Spacewalk.Active {
		return apperrors.Conflictf("spacewalk already in progress")
	}
	if s.Phase != PhaseSimulation {
		return apperrors.Conflictf("spacewalks are only possible during the mission")
	}
	idx := FindRole(s, habitat.RoleEngineer)
	if idx < 0 {
		return apperrors.Conflictf("No Engineer available for spacewalk")
	}
	if !s.Crew[idx].IsAlive() {
		return apperrors.Conflictf("Engineer is incapacitated and cannot go outside")
	}

	member := s.Crew[idx]
	s.Spacewalk.Begin(member.ID)
	member.CurrentTask = "spacewalk"
	ss.eventLog.Record(events.EventTypeSpacewalkStarted, events.SeveritySuccess, s.Day(),
		"Engineer has begun spacewalk for external repairs", nil)
	ss.logger.Event("SPACEWALK_STARTED", member.ID, "remaining 120s")
	return nil
}

// End brings the Engineer back inside. Calling it while idle does nothing.
func (ss *SpacewalkSystem) End(s *SimState) {
	if !s.Spacewalk.Active {
		return
	}
	if idx := s.MemberIndex(s.Spacewalk.CrewID); idx >= 0 {
		s.Crew[idx].CurrentTask = ""
	}
	s.Spacewalk.Reset()
	ss.eventLog.Record(events.EventTypeSpacewalkEnded, events.SeveritySuccess, s.Day(),
		"Engineer has returned from spacewalk", nil)
}

// OnTick counts the session down and rolls for hazards. The session ends
// once time runs out or the Engineer's health reaches zero.
func (ss *SpacewalkSystem) OnTick(s *SimState, deltaSeconds float64) {
	if !s.Spacewalk.Active {
		return
	}
	idx := s.MemberIndex(s.Spacewalk.CrewID)
	if idx < 0 {
		s.Spacewalk.Reset()
		return
	}
	member := s.Crew[idx]

	s.Spacewalk.Remaining -= deltaSeconds

	if ss.rng.Float64() < RadiationChancePerSecond*deltaSeconds {
		member.Damage(RadiationDamage)
		ss.eventLog.Record(events.EventTypeSpacewalkRadiation, events.SeverityWarning, s.Day(),
			"Spacewalk: Radiation exposure detected!", member.ID)
	}
	if ss.rng.Float64() < HullBreachChancePerSecond*deltaSeconds {
		s.Resources.Oxygen -= HullBreachO2Loss
		s.Resources.Clamp()
		ss.eventLog.Record(events.EventTypeHullBreach, events.SeverityError, s.Day(),
			"Spacewalk: Hull breach detected! O2 leak!", nil)
	}

	if s.Spacewalk.Remaining <= 0 || !member.IsAlive() {
		ss.End(s)
		if !member.IsAlive() {
			ss.eventLog.Record(events.EventTypeCrewLost, events.SeverityError, s.Day(),
				"Engineer lost in space! Mission critical!", member.ID)
			ss.logger.Error("engineer lost during spacewalk", "crew_id", member.ID, "day", s.Day())
		}
	}
}

// Status reports the EVA panel values. MemberIndex is -1 while idle.
func (ss *SpacewalkSystem) Status(s *SimState) SpacewalkStatus {
	st := SpacewalkStatus{MemberIndex: -1}
	if !s.Spacewalk.Active {
		return st
	}
	st.Active = true
	st.Remaining = s.Spacewalk.Remaining
	if st.Remaining < 0 {
		st.Remaining = 0
	}
	if idx := s.MemberIndex(s.Spacewalk.CrewID); idx >= 0 {
		st.MemberIndex = idx
		st.MemberHealth = s.Crew[idx].Health
	}
	return st
}
