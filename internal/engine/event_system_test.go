package engine

import (
	"testing"

	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	"github.com/MRamiBalles/BioHome/server/internal/events"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
)

func TestApplyEventEffects(t *testing.T) {
	t.Run("solar flare", func(t *testing.T) {
		s := stateWith(nil, nil)

		effect := ApplyEvent(EventSolarFlare, s, &scriptedRand{})

		if s.Resources.Energy != 0 {
			t.Errorf("energy should clamp at 0, got %v", s.Resources.Energy)
		}
		if s.Resources.Health != 95 {
			t.Errorf("Expected health 95, got %v", s.Resources.Health)
		}
		if effect.Message != "Solar flare damaged solar panels and exposed crew to radiation" {
			t.Errorf("unexpected message %q", effect.Message)
		}
	})

	t.Run("equipment failure picks a module", func(t *testing.T) {
		s := stateWith([]habitat.ModuleType{habitat.ModuleAlgaeSmall, habitat.ModuleSolarPanels}, nil)

		effect := ApplyEvent(EventEquipmentFailure, s, &scriptedRand{ints: []int{1}})

		if s.Modules[1].Active || !s.Modules[0].Active {
			t.Errorf("expected only module 1 to fail")
		}
		if effect.Module != 1 || effect.Message != "solar-panels has failed and needs repair" {
			t.Errorf("unexpected effect %+v", effect)
		}
	})

	t.Run("equipment failure without modules", func(t *testing.T) {
		s := stateWith(nil, nil)
		before := s.Resources

		effect := ApplyEvent(EventEquipmentFailure, s, &scriptedRand{})

		if effect.Message != "" || effect.Module != -1 || s.Resources != before {
			t.Errorf("expected a no-op, got %+v", effect)
		}
	})

	t.Run("asteroid impact", func(t *testing.T) {
		s := stateWith(nil, nil)

		effect := ApplyEvent(EventAsteroidPass, s, &scriptedRand{floats: []float64{0.1}})

		if s.Resources.Health != 90 || effect.Message != "Asteroid impact caused hull damage" {
			t.Errorf("expected impact, got health %v msg %q", s.Resources.Health, effect.Message)
		}
	})

	t.Run("asteroid miss", func(t *testing.T) {
		s := stateWith(nil, nil)

		effect := ApplyEvent(EventAsteroidPass, s, &scriptedRand{floats: []float64{0.3}})

		if s.Resources.Health != 100 || effect.Message != "Successfully navigated through asteroid field" {
			t.Errorf("expected miss, got health %v msg %q", s.Resources.Health, effect.Message)
		}
	})

	t.Run("planet alignment", func(t *testing.T) {
		s := stateWith(nil, nil)
		s.Resources.Energy = 95

		ApplyEvent(EventPlanetAlignment, s, &scriptedRand{})

		if s.Resources.Energy != 100 {
			t.Errorf("energy should clamp at 100, got %v", s.Resources.Energy)
		}
	})
}

func TestEventSystemRoll(t *testing.T) {
	// Setup: at speed 86400 the per-tick chance is 0.15.
	el := events.NewEventLog(10, nil)
	rng := &scriptedRand{floats: []float64{0.2, 0.1}, ints: []int{3}}
	es := NewEventSystem(el, logger.Discard(), rng)
	s := stateWith(nil, nil)
	s.Speed = 86400

	// Act
	_, missed := es.OnTick(s)
	effect, hit := es.OnTick(s)

	// Assert
	if missed {
		t.Errorf("0.2 should not trigger at chance 0.15")
	}
	if !hit || effect.Kind != EventPlanetAlignment {
		t.Fatalf("expected planet alignment, got %v %+v", hit, effect)
	}
	if s.Resources.Energy != 17.5 {
		t.Errorf("Expected energy 17.5, got %v", s.Resources.Energy)
	}
	if !logContains(el, "Planetary gravity assist provided energy boost") {
		t.Errorf("event not written to mission log: %v", el.Lines())
	}
}

func TestEventKindString(t *testing.T) {
	if EventAsteroidPass.String() != "Asteroid Pass" {
		t.Errorf("got %q", EventAsteroidPass.String())
	}
	if EventKind(9).String() != "EventKind(9)" {
		t.Errorf("got %q", EventKind(9).String())
	}
}
