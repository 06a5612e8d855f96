package habitat

import "github.com/MRamiBalles/BioHome/server/internal/domain/grid"

// SpacewalkDuration is the length of an EVA in real seconds.
const SpacewalkDuration = 120.0

// Spacewalk is the single external-activity session. The zero value is idle.
type Spacewalk struct {
	Active    bool        `json:"active"`
	CrewID    string      `json:"crew_id,omitempty"`
	Remaining float64     `json:"remaining"` // seconds
	Target    *grid.Point `json:"target,omitempty"`
}

// Begin starts a session for the given crew member.
func (s *Spacewalk) Begin(crewID string) {
	s.Active = true
	s.CrewID = crewID
	s.Remaining = SpacewalkDuration
	s.Target = nil
}

// Reset returns the session to idle.
func (s *Spacewalk) Reset() {
	*s = Spacewalk{}
}
