package habitat

import "math"

// Life-support thresholds. Health decays while any is violated.
const (
	O2Min    = 20.0
	O2Max    = 25.0
	CO2Min   = 0.1
	CO2Max   = 0.5
	FoodMin  = 2500.0
	FoodMax  = 3500.0
	WaterMin = 2.0
	WaterMax = 3.0

	TempTarget     = 22.5
	HumidityTarget = 50.0
)

// Per-crew consumption rates, per hour.
const (
	O2DecayPerCrew    = 0.5
	CO2GrowthPerCrew  = 0.2
	FoodDecayPerCrew  = 125.0
	WaterDecayPerCrew = 0.104
)

// Bounds is an inclusive physical range.
type Bounds struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

var (
	OxygenBounds      = Bounds{0, 30}
	CO2Bounds         = Bounds{0, 5}
	FoodBounds        = Bounds{0, 10000}
	WaterBounds       = Bounds{0, 50}
	EnergyBounds      = Bounds{0, 100}
	TemperatureBounds = Bounds{0, 50}
	HumidityBounds    = Bounds{0, 100}
	HealthBounds      = Bounds{0, 100}
)

// Resources is the habitat's eight life-support scalars.
type Resources struct {
	Oxygen      float64 `json:"oxygen" yaml:"oxygen"`           // %
	CO2         float64 `json:"co2" yaml:"co2"`                 // %
	Food        float64 `json:"food" yaml:"food"`               // kcal stock
	Water       float64 `json:"water" yaml:"water"`             // L stock
	Energy      float64 `json:"energy" yaml:"energy"`           // kWh stock
	Temperature float64 `json:"temperature" yaml:"temperature"` // °C
	Humidity    float64 `json:"humidity" yaml:"humidity"`       // %
	Health      float64 `json:"health" yaml:"health"`           // %
}

// InitialResources returns the launch-day resource state.
func InitialResources() Resources {
	return Resources{
		Oxygen:      21.0,
		CO2:         0.3,
		Food:        2500,
		Water:       2.5,
		Energy:      7.5,
		Temperature: 22.5,
		Humidity:    50.0,
		Health:      100.0,
	}
}

// Clamp forces every scalar back into its physical range.
func (r *Resources) Clamp() {
	r.Oxygen = OxygenBounds.clamp(r.Oxygen)
	r.CO2 = CO2Bounds.clamp(r.CO2)
	r.Food = FoodBounds.clamp(r.Food)
	r.Water = WaterBounds.clamp(r.Water)
	r.Energy = EnergyBounds.clamp(r.Energy)
	r.Temperature = TemperatureBounds.clamp(r.Temperature)
	r.Humidity = HumidityBounds.clamp(r.Humidity)
	r.Health = HealthBounds.clamp(r.Health)
}

// Contains reports whether v lies within the bounds.
func (b Bounds) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

func (b Bounds) clamp(v float64) float64 {
	return Clamp(v, b.Min, b.Max)
}

// Clamp limits v to [lo, hi]. NaN maps to lo.
func Clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
