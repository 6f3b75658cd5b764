package pipeline

import (
	"math"

	"github.com/theirongolddev/weightlog/internal/model"
)

// Summarize derives headline progress from the latest observation.
// log must be non-empty; callers show an empty state instead.
func Summarize(log model.Log, goal model.GoalConfig) model.Summary {
	latest, _ := log.Latest()
	current := latest.Weight

	s := model.Summary{
		LatestDate:    latest.Date,
		CurrentWeight: current,
		TotalLost:     round1(goal.StartWeight - current),
		Remaining:     round1(current - goal.GoalWeight),
	}

	if span := goal.StartWeight - goal.GoalWeight; span > 0 {
		s.Progress = clamp01((goal.StartWeight - current) / span)
	}

	s.ProjectedToday = ProjectAt(goal, latest.Date)
	s.AheadBy = round1(s.ProjectedToday - current)
	return s
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
