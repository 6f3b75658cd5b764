// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/weightlog/internal/model"
)

// FormatWeight formats a weight in kilograms with one decimal.
// e.g., 101.94 -> "101.9 kg"
func FormatWeight(kg float64) string {
	return fmt.Sprintf("%.1f kg", kg)
}

// FormatDelta formats a signed weight difference.
// e.g., 0.3 -> "+0.3 kg", -1.25 -> "-1.3 kg", 0 -> "±0.0 kg"
func FormatDelta(kg float64) string {
	r := math.Round(kg*10) / 10
	switch {
	case r > 0:
		return fmt.Sprintf("+%.1f kg", r)
	case r < 0:
		return fmt.Sprintf("-%.1f kg", -r)
	default:
		return "±0.0 kg"
	}
}

// FormatDate formats a date day-first, as used in confirmations.
// e.g., 2025-07-08 -> "08-07-2025"
func FormatDate(t time.Time) string {
	return t.Format(model.DisplayDateLayout)
}

// FormatISODate formats a date as YYYY-MM-DD.
func FormatISODate(t time.Time) string {
	return t.Format(model.DateLayout)
}

// FormatPercent formats a 0-1 float as a percentage string.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatDays formats a day count.
// e.g., 1 -> "1 day", 146 -> "146 days"
func FormatDays(n int) string {
	if n == 1 || n == -1 {
		return fmt.Sprintf("%d day", n)
	}
	return fmt.Sprintf("%d days", n)
}

// ParseDate accepts YYYY-MM-DD or DD-MM-YYYY and returns the civil date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{model.DateLayout, model.DisplayDateLayout} {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q (want YYYY-MM-DD or DD-MM-YYYY)", s)
}

// ParseWeight parses a weight, accepting a decimal comma.
// e.g., "101,9" -> 101.9
func ParseWeight(s string) (float64, error) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "kg"))
	s = strings.Replace(s, ",", ".", 1)
	w, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(w) || math.IsInf(w, 0) {
		return 0, fmt.Errorf("invalid weight %q", s)
	}
	return w, nil
}
