// Package pipeline holds the weightlog computations: merging new
// observations into the log, summarizing progress, and projecting the
// goal trajectory.
package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/theirongolddev/weightlog/internal/model"
)

// ErrWeightOutOfRange is returned by ValidateWeight for weights outside the
// accepted input range.
var ErrWeightOutOfRange = errors.New("weight out of range")

// Upsert returns a new Log with (date, weight) merged in. Any existing
// observation for the same calendar date is replaced; the result is
// ascending by date. log itself is left untouched.
func Upsert(log model.Log, date time.Time, weight float64) model.Log {
	merged := make([]model.Observation, 0, len(log)+1)
	merged = append(merged, log...)
	merged = append(merged, model.Observation{Date: model.Day(date), Weight: weight})
	return model.NormalizeLog(merged)
}

// ValidateWeight checks w against the inclusive [lo, hi] input range.
func ValidateWeight(w, lo, hi float64) error {
	if w < lo || w > hi {
		return fmt.Errorf("%w: %.1f kg (allowed %.1f-%.1f)", ErrWeightOutOfRange, w, lo, hi)
	}
	return nil
}

// FilterByTime returns the observations dated within [since, until].
// A zero since or until leaves that side open.
func FilterByTime(log model.Log, since, until time.Time) model.Log {
	out := make(model.Log, 0, len(log))
	for _, o := range log {
		if !since.IsZero() && o.Date.Before(model.Day(since)) {
			continue
		}
		if !until.IsZero() && o.Date.After(model.Day(until)) {
			continue
		}
		out = append(out, o)
	}
	return out
}
