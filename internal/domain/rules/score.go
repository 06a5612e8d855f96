package rules

import "math"

// MissionScore computes floor(days * completed / cost * 1000).
// A non-positive cost scores zero; the result saturates at math.MaxInt.
func MissionScore(survivalDays float64, completedExperiments int, totalCost float64) int {
	if totalCost <= 0 {
		return 0
	}
	score := math.Floor(survivalDays * float64(completedExperiments) / totalCost * 1000)
	switch {
	case math.IsNaN(score) || score <= 0:
		return 0
	case score >= math.MaxInt:
		return math.MaxInt
	}
	return int(score)
}
