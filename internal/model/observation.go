// Package model defines domain types for weightlog observations and goals.
package model

import (
	"sort"
	"time"
)

// DateLayout is the ISO layout used for persisted and API dates.
const DateLayout = "2006-01-02"

// DisplayDateLayout is the day-first layout used in user-facing messages.
const DisplayDateLayout = "02-01-2006"

// Observation is a single weight measurement for one calendar date.
type Observation struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"weight"`
}

// Log is the ordered collection of observations, unique by date and
// strictly ascending.
type Log []Observation

// Day normalizes t to its calendar date at 00:00 UTC, keeping the
// year/month/day as seen in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Today returns the current local calendar date.
func Today() time.Time {
	return Day(time.Now())
}

// DaysBetween returns the number of whole calendar days from a to b.
// Negative when b precedes a.
func DaysBetween(a, b time.Time) int {
	return int(Day(b).Sub(Day(a)).Hours() / 24)
}

// NormalizeLog returns a Log built from obs with one entry per date (the
// last occurrence wins) sorted ascending by date. obs is not modified.
func NormalizeLog(obs []Observation) Log {
	if len(obs) == 0 {
		return Log{}
	}

	byDay := make(map[time.Time]int, len(obs))
	out := make(Log, 0, len(obs))
	for _, o := range obs {
		o.Date = Day(o.Date)
		if idx, ok := byDay[o.Date]; ok {
			out[idx] = o
			continue
		}
		byDay[o.Date] = len(out)
		out = append(out, o)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Date.Before(out[j].Date)
	})
	return out
}

// Len returns the number of observations.
func (l Log) Len() int { return len(l) }

// IsEmpty reports whether the log has no observations.
func (l Log) IsEmpty() bool { return len(l) == 0 }

// Latest returns the observation with the latest date.
// ok is false for an empty log.
func (l Log) Latest() (Observation, bool) {
	if len(l) == 0 {
		return Observation{}, false
	}
	return l[len(l)-1], true
}

// First returns the observation with the earliest date.
func (l Log) First() (Observation, bool) {
	if len(l) == 0 {
		return Observation{}, false
	}
	return l[0], true
}

// Lookup returns the observation recorded for date, if any.
func (l Log) Lookup(date time.Time) (Observation, bool) {
	day := Day(date)
	i := sort.Search(len(l), func(i int) bool { return !l[i].Date.Before(day) })
	if i < len(l) && l[i].Date.Equal(day) {
		return l[i], true
	}
	return Observation{}, false
}

// Weights returns the weights in date order.
func (l Log) Weights() []float64 {
	out := make([]float64, len(l))
	for i, o := range l {
		out[i] = o.Weight
	}
	return out
}

// Equal reports whether two logs hold the same observations in order.
func (l Log) Equal(other Log) bool {
	if len(l) != len(other) {
		return false
	}
	for i := range l {
		if !l[i].Date.Equal(other[i].Date) || l[i].Weight != other[i].Weight {
			return false
		}
	}
	return true
}
