// Package rules contains the pure calculation logic for habitat mechanics.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import "github.com/MRamiBalles/BioHome/server/internal/domain/habitat"

// Health penalties and recovery, in % per hour.
const (
	LowOxygenPenalty = 5.0
	HighCO2Penalty   = 2.0
	LowFoodPenalty   = 10.0
	LowWaterPenalty  = 5.0
	RecoveryRate     = 1.0
)

// Violations lists which life-support thresholds are currently broken.
type Violations struct {
	LowOxygen bool `json:"low_oxygen"`
	HighCO2   bool `json:"high_co2"`
	LowFood   bool `json:"low_food"`
	LowWater  bool `json:"low_water"`
}

// Any reports whether at least one threshold is broken.
func (v Violations) Any() bool {
	return v.LowOxygen || v.HighCO2 || v.LowFood || v.LowWater
}

// CheckThresholds compares resources against the life-support limits.
func CheckThresholds(r habitat.Resources) Violations {
	return Violations{
		LowOxygen: r.Oxygen < habitat.O2Min,
		HighCO2:   r.CO2 > habitat.CO2Max,
		LowFood:   r.Food < habitat.FoodMin,
		LowWater:  r.Water < habitat.WaterMin,
	}
}

// HealthChange returns the health delta for a tick of the given length.
// Penalties stack; recovery applies only when no threshold is broken.
// recoveryBonus scales recovery (0.2 => +20%).
func HealthChange(r habitat.Resources, hours, recoveryBonus float64) float64 {
	v := CheckThresholds(r)
	if !v.Any() {
		return RecoveryRate * (1 + recoveryBonus) * hours
	}

	change := 0.0
	if v.LowOxygen {
		change -= LowOxygenPenalty * hours
	}
	if v.HighCO2 {
		change -= HighCO2Penalty * hours
	}
	if v.LowFood {
		change -= LowFoodPenalty * hours
	}
	if v.LowWater {
		change -= LowWaterPenalty * hours
	}
	return change
}
