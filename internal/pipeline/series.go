package pipeline

import (
	"slices"
	"time"

	"github.com/theirongolddev/weightlog/internal/model"
)

// Series is everything a chart needs: the logged weights, the projected
// trajectory up to the latest logged date, and the goal reference line.
type Series struct {
	Observed   model.Log
	Projection []model.ProjectionPoint
	GoalWeight float64
}

// SeriesRow joins observed and projected weight for one date.
type SeriesRow struct {
	Date       time.Time
	Observed   *float64
	Projected  *float64
	Difference *float64 // observed - projected, rounded to 0.1
}

// BuildSeries merges the log with the projection through the log's latest
// date. An empty log yields an empty projection.
func BuildSeries(log model.Log, goal model.GoalConfig) Series {
	s := Series{Observed: log, GoalWeight: goal.GoalWeight}
	if latest, ok := log.Latest(); ok {
		s.Projection = ProjectedWeights(goal, latest.Date)
	}
	return s
}

// Bounds returns the min and max weight across all series, including the
// goal line.
func (s Series) Bounds() (lo, hi float64) {
	lo, hi = s.GoalWeight, s.GoalWeight
	for _, o := range s.Observed {
		lo = min(lo, o.Weight)
		hi = max(hi, o.Weight)
	}
	for _, p := range s.Projection {
		lo = min(lo, p.Weight)
		hi = max(hi, p.Weight)
	}
	return lo, hi
}

// DateRange returns the earliest and latest date across both series.
// ok is false when both are empty.
func (s Series) DateRange() (first, last time.Time, ok bool) {
	consider := func(d time.Time) {
		if !ok || d.Before(first) {
			first = d
		}
		if !ok || d.After(last) {
			last = d
		}
		ok = true
	}
	for _, o := range s.Observed {
		consider(o.Date)
	}
	for _, p := range s.Projection {
		consider(p.Date)
	}
	return first, last, ok
}

// Rows returns one row per date present in either series, ascending.
func (s Series) Rows() []SeriesRow {
	byDay := make(map[time.Time]*SeriesRow)
	var order []time.Time
	row := func(d time.Time) *SeriesRow {
		if r, ok := byDay[d]; ok {
			return r
		}
		r := &SeriesRow{Date: d}
		byDay[d] = r
		order = append(order, d)
		return r
	}

	for _, p := range s.Projection {
		w := p.Weight
		row(p.Date).Projected = &w
	}
	for _, o := range s.Observed {
		w := o.Weight
		row(o.Date).Observed = &w
	}

	slices.SortFunc(order, func(a, b time.Time) int { return a.Compare(b) })

	rows := make([]SeriesRow, 0, len(order))
	for _, d := range order {
		r := byDay[d]
		if r.Observed != nil && r.Projected != nil {
			diff := round1(*r.Observed - *r.Projected)
			r.Difference = &diff
		}
		rows = append(rows, *r)
	}
	return rows
}
