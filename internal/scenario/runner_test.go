package scenario

import (
	"context"
	"strings"
	"testing"
)

func TestBuiltinScriptsParse(t *testing.T) {
	scripts, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	if len(scripts) != 5 {
		t.Fatalf("Expected 5 builtin scripts, got %d", len(scripts))
	}
	if scripts[0].Name != "launch-checks" {
		t.Errorf("Expected scripts sorted by file name, first is %s", scripts[0].Name)
	}
	// Omitted simulation fields keep their defaults.
	if scripts[0].Simulation.MissionDays != 180 || scripts[0].Simulation.Seed != 1 {
		t.Errorf("unexpected simulation overlay %+v", scripts[0].Simulation)
	}
}

func TestBuiltinScriptsPass(t *testing.T) {
	scripts, err := Builtin()
	if err != nil {
		t.Fatalf("Builtin: %v", err)
	}
	for _, res := range NewRunner(nil).RunAll(context.Background(), scripts) {
		if !res.Passed {
			t.Errorf("%s failed: %s", res.Name, strings.Join(res.Failures, "; "))
		}
	}
}

func TestParseRejectsBadScripts(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"no name", "steps: []"},
		{"bad grid", "name: x\nsimulation: {grid_width: 0}"},
		{"run without step", "name: x\nrun: {seconds: 5}"},
		{"not yaml", "name: [unclosed"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Parse([]byte(tt.yaml)); err == nil {
				t.Errorf("Expected parse error")
			}
		})
	}
}

func TestRunScriptReportsFailures(t *testing.T) {
	// Setup
	s, err := Parse([]byte(`
name: wrong-expectations
steps:
  - type: LAUNCH
  - type: ADD_CREW
    expect_error: never happens
expect:
  phase: over
  outcome: success
  log_contains: ["Mission Successful!"]
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	// Act
	res := NewRunner(nil).RunScript(context.Background(), s)

	// Assert
	if res.Passed {
		t.Fatalf("Expected failure")
	}
	if len(res.Failures) != 5 {
		t.Errorf("Expected 5 failures, got %d: %v", len(res.Failures), res.Failures)
	}
	if !strings.Contains(res.Failures[0], "Cannot launch without crew members") {
		t.Errorf("first failure should name the rejected launch: %s", res.Failures[0])
	}
}

func TestRunScriptStopsWhenMissionEnds(t *testing.T) {
	s, _ := Parse([]byte(`
name: quick-death
simulation: {seed: 9}
steps:
  - {type: ADD_CREW}
  - {type: ADD_CREW}
  - {type: ADD_CREW}
  - {type: PLACE_MODULE, payload: {type: solar-panels, x: 0, y: 0}}
  - {type: LAUNCH}
run: {seconds: 1000000, step: 60}
expect: {outcome: failure}
`))

	res := NewRunner(nil).RunScript(context.Background(), s)

	if !res.Passed {
		t.Fatalf("failed: %v", res.Failures)
	}
	if res.Ticks >= 1000000/60 {
		t.Errorf("Expected the run to stop at mission end, ran %d ticks", res.Ticks)
	}
	if !strings.Contains(res.Summary(), "failure after") {
		t.Errorf("unexpected summary %q", res.Summary())
	}
}
