package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// LoadScenario overlays the YAML file at path onto base. Fields absent from
// the file keep their base value.
func LoadScenario(path string, base SimulationConfig) (SimulationConfig, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return base, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	return ParseScenario(f, base)
}

// ParseScenario overlays YAML bytes onto base.
func ParseScenario(data []byte, base SimulationConfig) (SimulationConfig, error) {
	sim := base
	if err := yaml.Unmarshal(data, &sim); err != nil {
		return base, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if err := sim.validate(); err != nil {
		return base, fmt.Errorf("invalid scenario: %w", err)
	}
	return sim, nil
}
