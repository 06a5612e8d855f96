package engine

import (
	"math"
	"testing"

	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	apperrors "github.com/MRamiBalles/BioHome/server/internal/platform/errors"
)

func TestPlaceModuleMarksFootprintAndRejectsOverlap(t *testing.T) {
	// Setup
	e := newTestEngine(t, nil)

	// Act
	m, err := e.PlaceModule(habitat.ModuleWaterRecycler, 10, 5)

	// Assert
	if err != nil {
		t.Fatalf("PlaceModule: %v", err)
	}
	if got := e.state.Grid.BlockedCount(); got != 8*6 {
		t.Errorf("Expected 48 blocked cells, got %d", got)
	}
	for x := 0; x < e.state.Grid.Width(); x++ {
		for y := 0; y < e.state.Grid.Height(); y++ {
			if e.state.Grid.IsBlocked(x, y) != m.Contains(x, y) {
				t.Fatalf("cell (%d,%d): blocked=%v footprint=%v", x, y, e.state.Grid.IsBlocked(x, y), m.Contains(x, y))
			}
		}
	}

	// Every cell of the footprint rejects a 1-cell-overlapping placement.
	small, _ := habitat.Lookup(habitat.ModuleAlgaeSmall)
	for x := m.X; x < m.X+m.Width; x++ {
		for y := m.Y; y < m.Y+m.Height; y++ {
			px := x - small.Width + 1
			py := y - small.Height + 1
			if px < 0 || py < 0 {
				continue
			}
			if err := ValidatePlacement(e.state, px, py, habitat.ModuleAlgaeSmall); err == nil {
				t.Fatalf("placement at (%d,%d) overlapping (%d,%d) was accepted", px, py, x, y)
			}
		}
	}
	if len(e.state.Modules) != 1 {
		t.Errorf("rejected placements mutated the module list: %d", len(e.state.Modules))
	}
}

func TestPlaceModuleCostAndMass(t *testing.T) {
	e := newTestEngine(t, nil)

	if _, err := e.PlaceModule(habitat.ModuleSolarPanels, 0, 0); err != nil {
		t.Fatalf("PlaceModule: %v", err)
	}
	if _, err := e.PlaceModule(habitat.ModuleAlgaeLarge, 12, 0); err != nil {
		t.Fatalf("adjacent placement rejected: %v", err)
	}

	if e.state.TotalCost != 808 {
		t.Errorf("Expected cost 808, got %v", e.state.TotalCost)
	}
	if e.state.TotalMass != 1.6 {
		t.Errorf("Expected mass 1.6, got %v", e.state.TotalMass)
	}
}

func TestPlaceModuleRejections(t *testing.T) {
	tests := []struct {
		name string
		typ  habitat.ModuleType
		x, y int
		kind apperrors.ErrorType
	}{
		{"unknown type", "warp-core", 0, 0, apperrors.ErrorTypeValidation},
		{"negative x", habitat.ModuleHydroponics, -1, 0, apperrors.ErrorTypeValidation},
		{"past right edge", habitat.ModuleSolarPanels, 89, 0, apperrors.ErrorTypeValidation},
		{"past bottom edge", habitat.ModuleCrewQuarters, 0, 41, apperrors.ErrorTypeValidation},
		{"x near max int", habitat.ModuleAlgaeSmall, math.MaxInt - 2, 0, apperrors.ErrorTypeValidation},
		{"y near max int", habitat.ModuleAlgaeSmall, 0, math.MaxInt - 1, apperrors.ErrorTypeValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestEngine(t, nil)
			_, err := e.PlaceModule(tt.typ, tt.x, tt.y)
			if err == nil {
				t.Fatalf("expected rejection")
			}
			if apperrors.GetType(err) != tt.kind {
				t.Errorf("expected %s error, got %s", tt.kind, apperrors.GetType(err))
			}
			if e.state.Grid.BlockedCount() != 0 || len(e.state.Modules) != 0 {
				t.Errorf("rejected placement mutated state")
			}
		})
	}
}

func TestPlaceModuleOnlyBeforeLaunch(t *testing.T) {
	e := launchedEngine(t, nil)

	_, err := e.PlaceModule(habitat.ModuleHydroponics, 50, 30)

	if !apperrors.Is(err, apperrors.ErrorTypeConflict) {
		t.Errorf("expected conflict after launch, got %v", err)
	}
}

func TestModuleAt(t *testing.T) {
	e := newTestEngine(t, nil)
	e.PlaceModule(habitat.ModuleThermalControl, 20, 20)

	if m, ok := e.ModuleAt(25, 25); !ok || m.Type != habitat.ModuleThermalControl {
		t.Errorf("expected thermal-control under (25,25)")
	}
	if _, ok := e.ModuleAt(26, 20); ok {
		t.Errorf("(26,20) is outside the footprint")
	}
}
