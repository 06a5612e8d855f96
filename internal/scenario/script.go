// Package scenario runs scripted missions headlessly: a list of commands,
// a stretch of simulated time and a set of expectations on the result.
package scenario

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/MRamiBalles/BioHome/server/internal/network"
	"github.com/MRamiBalles/BioHome/server/internal/platform/config"
)

//go:embed scripts/*.yaml
var builtin embed.FS

// Step is one command, in the same shape clients send over the wire.
type Step struct {
	Type        string                 `yaml:"type"`
	Payload     map[string]interface{} `yaml:"payload,omitempty"`
	ExpectError string                 `yaml:"expect_error,omitempty"`
}

// Request converts the step to a network request.
func (s Step) Request() (network.Request, error) {
	req := network.Request{Type: s.Type}
	if len(s.Payload) > 0 {
		raw, err := json.Marshal(s.Payload)
		if err != nil {
			return req, fmt.Errorf("step %s: %w", s.Type, err)
		}
		req.Payload = raw
	}
	return req, nil
}

// Run is how much real time to feed the engine after the steps.
type Run struct {
	Seconds float64 `yaml:"seconds"`
	Step    float64 `yaml:"step"`
}

// Expect lists the checks applied once the run ends. Zero values are
// not checked.
type Expect struct {
	Phase        string   `yaml:"phase,omitempty"`
	Outcome      string   `yaml:"outcome,omitempty"`
	MinDays      float64  `yaml:"min_days,omitempty"`
	MaxDays      float64  `yaml:"max_days,omitempty"`
	MinCompleted int      `yaml:"min_completed,omitempty"`
	MinHealth    *float64 `yaml:"min_health,omitempty"`
	MaxHealth    *float64 `yaml:"max_health,omitempty"`
	LogContains  []string `yaml:"log_contains,omitempty"`
}

// Script is one scripted mission.
type Script struct {
	Name        string                  `yaml:"name"`
	Description string                  `yaml:"description"`
	Simulation  config.SimulationConfig `yaml:"simulation"`
	Steps       []Step                  `yaml:"steps"`
	Run         Run                     `yaml:"run"`
	Expect      Expect                  `yaml:"expect"`
}

// Parse decodes a script. Simulation fields it omits keep the defaults.
func Parse(data []byte) (*Script, error) {
	s := &Script{Simulation: config.DefaultSimulation()}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("script has no name")
	}
	if err := s.Simulation.Validate(); err != nil {
		return nil, fmt.Errorf("script %s: %w", s.Name, err)
	}
	if s.Run.Seconds < 0 || (s.Run.Seconds > 0 && s.Run.Step <= 0) {
		return nil, fmt.Errorf("script %s: run needs a positive step", s.Name)
	}
	return s, nil
}

// Load reads a script file.
func Load(file string) (*Script, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read script %s: %w", file, err)
	}
	return Parse(data)
}

// Builtin returns the scripts shipped with the binary, sorted by name.
func Builtin() ([]*Script, error) {
	files, err := fs.Glob(builtin, "scripts/*.yaml")
	if err != nil {
		return nil, err
	}
	sort.Strings(files)

	scripts := make([]*Script, 0, len(files))
	for _, f := range files {
		data, err := builtin.ReadFile(f)
		if err != nil {
			return nil, err
		}
		s, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", path.Base(f), err)
		}
		scripts = append(scripts, s)
	}
	return scripts, nil
}
