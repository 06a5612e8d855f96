package scenario

import (
	"context"
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"

	"github.com/MRamiBalles/BioHome/server/internal/engine"
	"github.com/MRamiBalles/BioHome/server/internal/events"
	"github.com/MRamiBalles/BioHome/server/internal/network"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
)

// Result captures the outcome of one script.
type Result struct {
	Name     string
	Passed   bool
	Failures []string
	Final    engine.Snapshot
	Ticks    int
}

// Summary is a one-line human description of the final state.
func (r Result) Summary() string {
	return fmt.Sprintf("%s after %s days, health %.1f%%, %d/%d experiments, cost $%sM, score %s (%s ticks)",
		r.Final.Outcome,
		humanize.FormatFloat("#,###.##", r.Final.Days),
		r.Final.Resources.Health,
		r.Final.Completed, len(r.Final.Experiments),
		humanize.Commaf(r.Final.TotalCost),
		humanize.Comma(int64(r.Final.Score)),
		humanize.Comma(int64(r.Ticks)),
	)
}

// inline runs commands on the caller's goroutine. The harness owns its
// engine outright, so no frame loop is needed.
type inline struct {
	engine *engine.Engine
}

func (x inline) Do(ctx context.Context, fn engine.Command) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fn(x.engine)
}

// Runner executes scripts.
type Runner struct {
	logger *logger.Logger
}

// NewRunner creates a script runner.
func NewRunner(log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Discard()
	}
	return &Runner{logger: log.With("component", "scenario")}
}

// RunScript plays one script against a fresh engine.
func (r *Runner) RunScript(ctx context.Context, s *Script) Result {
	res := Result{Name: s.Name}
	el := events.NewEventLog(s.Simulation.LogCapacity, nil)
	eng := engine.New(s.Simulation, engine.NewRand(s.Simulation.Seed), el, r.logger)
	exec := inline{engine: eng}

	for i, step := range s.Steps {
		req, err := step.Request()
		if err != nil {
			res.fail("step %d: %v", i+1, err)
			continue
		}
		_, err = network.Execute(ctx, exec, req)
		switch {
		case step.ExpectError == "" && err != nil:
			res.fail("step %d (%s) failed: %v", i+1, step.Type, err)
		case step.ExpectError != "" && err == nil:
			res.fail("step %d (%s) should have failed with %q", i+1, step.Type, step.ExpectError)
		case step.ExpectError != "" && !strings.Contains(err.Error(), step.ExpectError):
			res.fail("step %d (%s) failed with %q, want %q", i+1, step.Type, err, step.ExpectError)
		}
	}

	if s.Run.Seconds > 0 {
		for elapsed := 0.0; elapsed < s.Run.Seconds; elapsed += s.Run.Step {
			if ctx.Err() != nil {
				res.fail("cancelled: %v", ctx.Err())
				break
			}
			if eng.Phase() == engine.PhaseOver {
				break
			}
			eng.Tick(s.Run.Step)
			res.Ticks++
		}
	}

	res.Final = eng.Snapshot()
	res.check(s.Expect, el)
	res.Passed = len(res.Failures) == 0

	r.logger.Info("script finished", "name", s.Name, "passed", res.Passed, "summary", res.Summary())
	return res
}

// RunAll plays every script in order.
func (r *Runner) RunAll(ctx context.Context, scripts []*Script) []Result {
	results := make([]Result, 0, len(scripts))
	for _, s := range scripts {
		results = append(results, r.RunScript(ctx, s))
	}
	return results
}

func (res *Result) fail(format string, args ...interface{}) {
	res.Failures = append(res.Failures, fmt.Sprintf(format, args...))
}

func (res *Result) check(x Expect, el *events.EventLog) {
	f := res.Final
	if x.Phase != "" && string(f.Phase) != x.Phase {
		res.fail("phase is %s, want %s", f.Phase, x.Phase)
	}
	if x.Outcome != "" && string(f.Outcome) != x.Outcome {
		res.fail("outcome is %s, want %s", f.Outcome, x.Outcome)
	}
	if x.MinDays > 0 && f.Days < x.MinDays {
		res.fail("survived %.2f days, want at least %.2f", f.Days, x.MinDays)
	}
	if x.MaxDays > 0 && f.Days > x.MaxDays {
		res.fail("ran %.2f days, want at most %.2f", f.Days, x.MaxDays)
	}
	if f.Completed < x.MinCompleted {
		res.fail("%d experiments completed, want at least %d", f.Completed, x.MinCompleted)
	}
	if x.MinHealth != nil && f.Resources.Health < *x.MinHealth {
		res.fail("health %.1f below %.1f", f.Resources.Health, *x.MinHealth)
	}
	if x.MaxHealth != nil && f.Resources.Health > *x.MaxHealth {
		res.fail("health %.1f above %.1f", f.Resources.Health, *x.MaxHealth)
	}
	lines := strings.Join(el.Lines(), "\n")
	for _, want := range x.LogContains {
		if !strings.Contains(lines, want) {
			res.fail("log is missing %q", want)
		}
	}
}
