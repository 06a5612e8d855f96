// Package habitat defines the domain entities of the BioHome habitat:
// installed modules, crew, life-support resources and experiments.
// This package is PURE and must NOT import any infrastructure packages.
package habitat

import "github.com/MRamiBalles/BioHome/server/internal/domain/grid"

// ModuleType identifies a catalog entry.
type ModuleType string

const (
	ModuleAlgaeSmall        ModuleType = "algae-small"
	ModuleAlgaeLarge        ModuleType = "algae-large"
	ModuleHydroponics       ModuleType = "hydroponics"
	ModuleWaterRecycler     ModuleType = "water-recycler"
	ModuleSolarPanels       ModuleType = "solar-panels"
	ModuleFoodProcessor     ModuleType = "food-processor"
	ModuleThermalControl    ModuleType = "thermal-control"
	ModuleHumidityRegulator ModuleType = "humidity-reg"
	ModuleCrewQuarters      ModuleType = "crew-quarters"
	ModuleExperiment        ModuleType = "experiment-module"
)

// ModuleTypes lists every catalog entry in palette order.
var ModuleTypes = []ModuleType{
	ModuleAlgaeSmall,
	ModuleAlgaeLarge,
	ModuleHydroponics,
	ModuleWaterRecycler,
	ModuleSolarPanels,
	ModuleFoodProcessor,
	ModuleThermalControl,
	ModuleHumidityRegulator,
	ModuleCrewQuarters,
	ModuleExperiment,
}

// ModuleSpec is the static data for one module type. Rates are per hour.
type ModuleSpec struct {
	Type             ModuleType `json:"type"`
	Width            int        `json:"width"`
	Height           int        `json:"height"`
	Cost             float64    `json:"cost"` // millions
	Mass             float64    `json:"mass"` // tons
	EnergyUsage      float64    `json:"energy_usage"`
	EnergyProduction float64    `json:"energy_production,omitempty"`
	O2Production     float64    `json:"o2_production,omitempty"`
	FoodProduction   float64    `json:"food_production,omitempty"`
	WaterRecycling   float64    `json:"water_recycling,omitempty"`
	TempControl      float64    `json:"temp_control,omitempty"`
	HumidityControl  float64    `json:"humidity_control,omitempty"`
	CrewCapacity     int        `json:"crew_capacity,omitempty"`
	ExperimentRate   float64    `json:"experiment_rate,omitempty"`
}

var catalog = map[ModuleType]ModuleSpec{
	ModuleAlgaeSmall: {
		Type: ModuleAlgaeSmall, Width: 5, Height: 3, Cost: 5, Mass: 0.5,
		EnergyUsage: 0.5, O2Production: 0.0372,
	},
	ModuleAlgaeLarge: {
		Type: ModuleAlgaeLarge, Width: 6, Height: 3, Cost: 7, Mass: 0.8,
		EnergyUsage: 1.0, O2Production: 0.0745,
	},
	ModuleHydroponics: {
		Type: ModuleHydroponics, Width: 5, Height: 3, Cost: 2, Mass: 0.3,
		EnergyUsage: 0.047, FoodProduction: 77,
	},
	ModuleWaterRecycler: {
		Type: ModuleWaterRecycler, Width: 8, Height: 6, Cost: 3, Mass: 1.2,
		EnergyUsage: 0.2, WaterRecycling: 0.95,
	},
	ModuleSolarPanels: {
		Type: ModuleSolarPanels, Width: 12, Height: 6, Cost: 1, Mass: 0.8,
		EnergyProduction: 0.5,
	},
	ModuleFoodProcessor: {
		Type: ModuleFoodProcessor, Width: 8, Height: 6, Cost: 4, Mass: 1.5,
		EnergyUsage: 0.3, FoodProduction: 400,
	},
	ModuleThermalControl: {
		Type: ModuleThermalControl, Width: 6, Height: 6, Cost: 2, Mass: 0.8,
		EnergyUsage: 0.1, TempControl: 1.0,
	},
	ModuleHumidityRegulator: {
		Type: ModuleHumidityRegulator, Width: 6, Height: 4, Cost: 1.5, Mass: 0.4,
		EnergyUsage: 0.05, HumidityControl: 1.0,
	},
	ModuleCrewQuarters: {
		Type: ModuleCrewQuarters, Width: 10, Height: 10, Cost: 10, Mass: 2.0,
		EnergyUsage: 0.2, CrewCapacity: 1,
	},
	ModuleExperiment: {
		Type: ModuleExperiment, Width: 8, Height: 8, Cost: 3, Mass: 1.0,
		EnergyUsage: 0.2, ExperimentRate: 1.0,
	},
}

// Lookup returns the catalog entry for a module type.
func Lookup(t ModuleType) (ModuleSpec, bool) {
	spec, ok := catalog[t]
	return spec, ok
}

// Catalog returns every catalog entry in palette order.
func Catalog() []ModuleSpec {
	specs := make([]ModuleSpec, 0, len(ModuleTypes))
	for _, t := range ModuleTypes {
		specs = append(specs, catalog[t])
	}
	return specs
}

// Module is a placed instance of a catalog entry.
type Module struct {
	Type       ModuleType `json:"type"`
	X          int        `json:"x"`
	Y          int        `json:"y"`
	Width      int        `json:"width"`
	Height     int        `json:"height"`
	Active     bool       `json:"active"`
	Efficiency float64    `json:"efficiency"`
}

// NewModule creates an active module of the given type at (x, y).
// Returns false if the type is not in the catalog.
func NewModule(t ModuleType, x, y int) (*Module, bool) {
	spec, ok := catalog[t]
	if !ok {
		return nil, false
	}
	return &Module{
		Type:       t,
		X:          x,
		Y:          y,
		Width:      spec.Width,
		Height:     spec.Height,
		Active:     true,
		Efficiency: 1.0,
	}, true
}

// Spec returns the catalog entry backing this module.
func (m *Module) Spec() ModuleSpec {
	return catalog[m.Type]
}

// Center returns the centre cell of the footprint.
func (m *Module) Center() grid.Point {
	return grid.Point{X: m.X + m.Width/2, Y: m.Y + m.Height/2}
}

// Contains reports whether the cell lies under the footprint.
func (m *Module) Contains(x, y int) bool {
	return x >= m.X && x < m.X+m.Width && y >= m.Y && y < m.Y+m.Height
}
