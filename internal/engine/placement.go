package engine

import (
	"fmt"

	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	"github.com/MRamiBalles/BioHome/server/internal/domain/rules"
	"github.com/MRamiBalles/BioHome/server/internal/events"
	apperrors "github.com/MRamiBalles/BioHome/server/internal/platform/errors"
)

// ErrInvalidPlacement is the message shown for any rejected placement.
const ErrInvalidPlacement = "Invalid position for component placement"

// ValidatePlacement checks that a module of type t fits at (x, y) without
// touching state. The returned error names the reason.
func ValidatePlacement(s *SimState, x, y int, t habitat.ModuleType) error {
	spec, ok := habitat.Lookup(t)
	if !ok {
		return apperrors.Validationf("unknown module type %q", t)
	}

	rect := rules.Rect{X: x, Y: y, W: spec.Width, H: spec.Height}
	if !rules.FitsWithin(rect, s.Grid.Width(), s.Grid.Height()) {
		return apperrors.Validationf("%s: %s at (%d,%d) is out of bounds", ErrInvalidPlacement, t, x, y)
	}
	for _, m := range s.Modules {
		other := rules.Rect{X: m.X, Y: m.Y, W: m.Width, H: m.Height}
		if rules.Overlaps(rect, other) {
			return apperrors.Conflictf("%s: %s at (%d,%d) overlaps %s at (%d,%d)",
				ErrInvalidPlacement, t, x, y, m.Type, m.X, m.Y)
		}
	}
	return nil
}

// PlaceModule installs a module after validation, blocking its footprint
// on the grid and adding its cost and mass.
func (e *Engine) PlaceModule(t habitat.ModuleType, x, y int) (*habitat.Module, error) {
	s := e.state
	if s.Phase != PhaseBuild {
		return nil, apperrors.Conflictf("modules can only be placed before launch")
	}
	if err := ValidatePlacement(s, x, y, t); err != nil {
		return nil, err
	}

	m, _ := habitat.NewModule(t, x, y)
	spec := m.Spec()
	s.Modules = append(s.Modules, m)
	s.Grid.AddObstacle(x, y, m.Width, m.Height)
	s.TotalCost += spec.Cost
	s.TotalMass += spec.Mass

	e.eventLog.Record(events.EventTypeModulePlaced, events.SeverityInfo, s.Day(),
		fmt.Sprintf("Placed %s at (%d, %d)", t, x, y), *m)
	return m, nil
}

// ModuleAt returns the module covering cell (x, y).
func (e *Engine) ModuleAt(x, y int) (*habitat.Module, bool) {
	for _, m := range e.state.Modules {
		if m.Contains(x, y) {
			return m, true
		}
	}
	return nil, false
}
