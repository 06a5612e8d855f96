package engine

import (
	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	"github.com/MRamiBalles/BioHome/server/internal/domain/rules"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
)

// Production is the summed hourly output of every active module.
type Production struct {
	Oxygen          float64 `json:"oxygen"`
	Food            float64 `json:"food"`
	Recycling       float64 `json:"recycling"`
	EnergyProduced  float64 `json:"energy_produced"`
	EnergyUsed      float64 `json:"energy_used"`
	TempControl     float64 `json:"temp_control"`
	HumidityControl float64 `json:"humidity_control"`
}

// ResourceSystem applies module production and crew consumption to the
// life-support scalars, then derives collective health from them.
type ResourceSystem struct {
	logger       *logger.Logger
	wasViolating bool
}

// NewResourceSystem creates the life-support balance system.
func NewResourceSystem(log *logger.Logger) *ResourceSystem {
	return &ResourceSystem{logger: log}
}

// Totals sums the catalog rates of active modules. Only hydroponics bays
// feed the food stock; the food-processor's catalog rate is not counted.
func Totals(s *SimState) Production {
	var p Production
	for _, m := range s.Modules {
		if !m.Active {
			continue
		}
		spec := m.Spec()
		p.Oxygen += spec.O2Production
		p.Recycling += spec.WaterRecycling
		p.EnergyProduced += spec.EnergyProduction
		p.EnergyUsed += spec.EnergyUsage
		p.TempControl += spec.TempControl
		p.HumidityControl += spec.HumidityControl
		if m.Type == habitat.ModuleHydroponics {
			p.Food += spec.FoodProduction
		}
	}
	return p
}

// OnTick advances the resource balance by deltaSeconds of real time.
func (rs *ResourceSystem) OnTick(s *SimState, deltaSeconds float64) {
	h := deltaSeconds / 3600
	crew := float64(len(s.Crew))
	p := Totals(s)
	r := &s.Resources

	o2 := p.Oxygen * h
	r.Oxygen += o2 - crew*habitat.O2DecayPerCrew*h
	r.CO2 += crew*habitat.CO2GrowthPerCrew*h - 0.1*o2
	r.Food += p.Food*h - crew*habitat.FoodDecayPerCrew*h
	// Recycling scales the standing stock, so water compounds.
	r.Water += r.Water*p.Recycling*h - crew*habitat.WaterDecayPerCrew*h
	r.Energy += p.EnergyProduced*h - p.EnergyUsed*h

	r.Temperature = regulate(r.Temperature, habitat.TempTarget, p.TempControl*h)
	r.Humidity = regulate(r.Humidity, habitat.HumidityTarget, p.HumidityControl*h)

	r.Clamp()
}

// ApplyHealth moves collective health by the life-support rule.
func (rs *ResourceSystem) ApplyHealth(s *SimState, deltaSeconds float64) {
	h := deltaSeconds / 3600
	s.Resources.Health += rules.HealthChange(s.Resources, h, RoleBonus(s, habitat.RoleDoctor))
	s.Resources.Clamp()

	violating := rules.CheckThresholds(s.Resources).Any()
	if violating != rs.wasViolating && rs.logger != nil {
		if violating {
			rs.logger.Warn("life support out of range", "day", s.Day(), "health", s.Resources.Health)
		} else {
			rs.logger.Info("life support back in range", "day", s.Day())
		}
	}
	rs.wasViolating = violating
}

// regulate moves v toward target by at most control. Without control the
// value holds.
func regulate(v, target, control float64) float64 {
	if !(control > 0) {
		return v
	}
	switch {
	case v > target:
		if v-control < target {
			return target
		}
		return v - control
	case v < target:
		if v+control > target {
			return target
		}
		return v + control
	}
	return v
}
