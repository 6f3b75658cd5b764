package model

import "time"

// GoalConfig fixes the target trajectory: where the user started, where
// they want to end up, and how fast.
type GoalConfig struct {
	StartWeight    float64
	GoalWeight     float64
	StartDate      time.Time
	WeeklyLossRate float64
}

// DailyLossRate is the weekly rate spread evenly over seven days.
func (g GoalConfig) DailyLossRate() float64 {
	return g.WeeklyLossRate / 7
}

// ProjectionPoint is one day of the idealized trajectory.
type ProjectionPoint struct {
	Date   time.Time `json:"date"`
	Weight float64   `json:"projected_weight"`
}

// Summary is the headline progress derived from the latest observation.
type Summary struct {
	LatestDate    time.Time `json:"latest_date"`
	CurrentWeight float64   `json:"current_weight"`
	TotalLost     float64   `json:"total_lost"`
	Remaining     float64   `json:"remaining"`

	// Progress is the covered fraction of the start-to-goal distance, in [0, 1].
	Progress float64 `json:"progress"`
	// ProjectedToday is the trajectory weight on LatestDate.
	ProjectedToday float64 `json:"projected_today"`
	// AheadBy is ProjectedToday minus CurrentWeight; positive is ahead of schedule.
	AheadBy float64 `json:"ahead_by"`
}
