package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/MRamiBalles/BioHome/server/internal/domain/grid"
	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	"github.com/MRamiBalles/BioHome/server/internal/events"
	apperrors "github.com/MRamiBalles/BioHome/server/internal/platform/errors"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
)

// CrewCost is added to the mission cost per member, in millions.
const CrewCost = 10.0

// CrewSystem manages the roster: hiring, dismissal and berth assignment.
type CrewSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
	rng      Rand
}

// NewCrewSystem creates the crew registry.
func NewCrewSystem(eventLog *events.EventLog, log *logger.Logger, rng Rand) *CrewSystem {
	return &CrewSystem{eventLog: eventLog, logger: log, rng: rng}
}

// AddMember hires a crew member. An empty role picks a random free one.
func (cs *CrewSystem) AddMember(s *SimState, role habitat.Role) (*habitat.CrewMember, error) {
	if len(s.Crew) >= habitat.MaxCrew {
		return nil, apperrors.Conflictf("Maximum crew size reached (%d members)", habitat.MaxCrew)
	}

	free := FreeRoles(s)
	if len(free) == 0 {
		return nil, apperrors.Conflictf("All crew roles already assigned")
	}

	if role == "" {
		role = free[cs.rng.Intn(len(free))]
	} else {
		if !role.Valid() {
			return nil, apperrors.Validationf("unknown crew role %q", role)
		}
		if HasRole(s, role) {
			return nil, apperrors.Conflictf("%s is already assigned", role)
		}
	}

	member := habitat.NewCrewMember(uuid.NewString(), role)
	s.Crew = append(s.Crew, member)
	s.TotalCost += CrewCost

	cs.eventLog.Record(events.EventTypeCrewAdded, events.SeveritySuccess, s.Day(),
		fmt.Sprintf("Added %s to crew", role), member.ID)
	return member, nil
}

// RemoveMember dismisses the member at index and refunds their cost.
// A member out on a spacewalk is brought back first.
func (cs *CrewSystem) RemoveMember(s *SimState, index int, walks *SpacewalkSystem) (*habitat.CrewMember, error) {
	if index < 0 || index >= len(s.Crew) {
		return nil, apperrors.Validationf("invalid crew index %d", index)
	}

	member := s.Crew[index]
	if s.Spacewalk.Active && s.Spacewalk.CrewID == member.ID {
		walks.End(s)
	}

	s.Crew = append(s.Crew[:index], s.Crew[index+1:]...)
	s.TotalCost -= CrewCost

	cs.eventLog.Record(events.EventTypeCrewRemoved, events.SeverityInfo, s.Day(),
		fmt.Sprintf("Removed %s from crew", member.Role), member.ID)
	return member, nil
}

// AssignQuarters moves member i to the centre of quarters[i % n], or to
// the origin when no crew quarters are installed.
func (cs *CrewSystem) AssignQuarters(s *SimState) {
	quarters := s.ModulesOfType(habitat.ModuleCrewQuarters)
	for i, member := range s.Crew {
		if len(quarters) == 0 {
			member.Position = grid.Point{}
			continue
		}
		member.Position = quarters[i%len(quarters)].Center()
	}
}

// FindRole returns the roster index of the member holding role, or -1.
func FindRole(s *SimState, role habitat.Role) int {
	for i, c := range s.Crew {
		if c.Role == role {
			return i
		}
	}
	return -1
}

// HasRole reports whether a member with role is aboard.
func HasRole(s *SimState, role habitat.Role) bool {
	return FindRole(s, role) >= 0
}

// RoleBonus returns the role's bonus value if it is aboard, else 0.
func RoleBonus(s *SimState, role habitat.Role) float64 {
	if !HasRole(s, role) {
		return 0
	}
	return habitat.BonusFor(role).Value
}

// FreeRoles lists unassigned roles in roster order.
func FreeRoles(s *SimState) []habitat.Role {
	var free []habitat.Role
	for _, r := range habitat.Roles {
		if !HasRole(s, r) {
			free = append(free, r)
		}
	}
	return free
}
