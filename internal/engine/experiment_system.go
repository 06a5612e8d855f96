package engine

import (
	"fmt"

	"github.com/MRamiBalles/BioHome/server/internal/domain/habitat"
	"github.com/MRamiBalles/BioHome/server/internal/events"
	"github.com/MRamiBalles/BioHome/server/internal/platform/logger"
)

// ExperimentSystem advances research while experiment modules run.
type ExperimentSystem struct {
	eventLog *events.EventLog
	logger   *logger.Logger
}

// NewExperimentSystem creates the experiment tracker.
func NewExperimentSystem(eventLog *events.EventLog, log *logger.Logger) *ExperimentSystem {
	return &ExperimentSystem{eventLog: eventLog, logger: log}
}

// OnTick gives every incomplete experiment n·h/24 progress, where n is the
// number of active experiment modules. It returns the names completed by
// this tick.
func (xs *ExperimentSystem) OnTick(s *SimState, deltaSeconds float64) []string {
	n := s.CountActive(habitat.ModuleExperiment)
	if n == 0 {
		return nil
	}
	amount := float64(n) * (deltaSeconds / 3600) / 24

	var completed []string
	for i := range s.Experiments {
		exp := &s.Experiments[i]
		if !exp.Advance(amount) {
			continue
		}
		completed = append(completed, exp.Name)
		xs.eventLog.Record(events.EventTypeExperimentCompleted, events.SeveritySuccess, s.Day(),
			fmt.Sprintf("Experiment %q completed!", exp.Name), exp.Name)
		xs.logger.Info("experiment completed", "name", exp.Name, "day", s.Day())
	}
	return completed
}
