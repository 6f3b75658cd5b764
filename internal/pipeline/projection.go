package pipeline

import (
	"iter"
	"math"
	"time"

	"github.com/theirongolddev/weightlog/internal/model"
)

// floorEpsilon absorbs float error when locating the first day on the floor.
const floorEpsilon = 1e-9

// Project yields one ProjectionPoint per calendar day from goal.StartDate
// through the given date, inclusive. The sequence is empty when through
// precedes the start date. Each range over the result recomputes from
// scratch.
func Project(goal model.GoalConfig, through time.Time) iter.Seq[model.ProjectionPoint] {
	return func(yield func(model.ProjectionPoint) bool) {
		start := model.Day(goal.StartDate)
		days := model.DaysBetween(start, through)
		for i := 0; i <= days; i++ {
			p := model.ProjectionPoint{
				Date:   start.AddDate(0, 0, i),
				Weight: projectedWeight(goal, i),
			}
			if !yield(p) {
				return
			}
		}
	}
}

// ProjectedWeights collects Project into a slice.
func ProjectedWeights(goal model.GoalConfig, through time.Time) []model.ProjectionPoint {
	var out []model.ProjectionPoint
	for p := range Project(goal, through) {
		out = append(out, p)
	}
	return out
}

// ProjectAt returns the trajectory weight on date. Dates before the start
// date report the start weight.
func ProjectAt(goal model.GoalConfig, date time.Time) float64 {
	i := model.DaysBetween(goal.StartDate, date)
	if i < 0 {
		i = 0
	}
	return projectedWeight(goal, i)
}

// GoalReachedDate returns the first date on which the trajectory sits on
// the goal weight. ok is false when the rate never gets there.
func GoalReachedDate(goal model.GoalConfig) (time.Time, bool) {
	daily := goal.DailyLossRate()
	span := goal.StartWeight - goal.GoalWeight
	if span <= 0 {
		return model.Day(goal.StartDate), true
	}
	if daily <= 0 {
		return time.Time{}, false
	}
	days := int(math.Ceil(span/daily - floorEpsilon))
	return model.Day(goal.StartDate).AddDate(0, 0, days), true
}

func projectedWeight(goal model.GoalConfig, day int) float64 {
	return math.Max(goal.GoalWeight, goal.StartWeight-float64(day)*goal.DailyLossRate())
}
