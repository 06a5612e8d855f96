package habitat

// ExperimentNames are the five research tasks of every mission.
var ExperimentNames = []string{
	"Algae Growth Rate",
	"Hydroponic Yield",
	"Water Recycling Efficiency",
	"Crew Psychological Health",
	"Radiation Shielding Effectiveness",
}

// Experiment is a long-running research task.
type Experiment struct {
	Name      string  `json:"name"`
	Progress  float64 `json:"progress"` // 0-1
	Completed bool    `json:"completed"`
}

// NewExperiments returns the mission's experiments with no progress.
func NewExperiments() []Experiment {
	exps := make([]Experiment, len(ExperimentNames))
	for i, name := range ExperimentNames {
		exps[i] = Experiment{Name: name}
	}
	return exps
}

// Advance adds progress and reports whether this call completed the experiment.
// Completed experiments do not move.
func (e *Experiment) Advance(amount float64) bool {
	if e.Completed {
		return false
	}
	e.Progress += amount
	if e.Progress >= 1 {
		e.Progress = 1
		e.Completed = true
		return true
	}
	return false
}

// CountCompleted returns how many experiments are done.
func CountCompleted(exps []Experiment) int {
	n := 0
	for _, e := range exps {
		if e.Completed {
			n++
		}
	}
	return n
}
