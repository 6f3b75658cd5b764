package tui

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/theirongolddev/weightlog/internal/cli"
	"github.com/theirongolddev/weightlog/internal/config"
	"github.com/theirongolddev/weightlog/internal/model"
	"github.com/theirongolddev/weightlog/internal/pipeline"
	"github.com/theirongolddev/weightlog/internal/tui/theme"

	"github.com/charmbracelet/huh"
)

// LogValues holds the raw text of the log-weight form.
type LogValues struct {
	Weight string
	Date   string
}

// NewLogValues pre-fills the form with date and, when known, the latest
// logged weight.
func NewLogValues(date time.Time, latest float64) LogValues {
	v := LogValues{Date: cli.FormatISODate(date)}
	if latest > 0 {
		v.Weight = strconv.FormatFloat(latest, 'f', 1, 64)
	}
	return v
}

// Parse validates the form values against in.
func (v LogValues) Parse(in config.InputConfig) (time.Time, float64, error) {
	w, err := cli.ParseWeight(v.Weight)
	if err != nil {
		return time.Time{}, 0, err
	}
	if err := pipeline.ValidateWeight(w, in.MinWeight, in.MaxWeight); err != nil {
		return time.Time{}, 0, err
	}
	d, err := cli.ParseDate(v.Date)
	if err != nil {
		return time.Time{}, 0, err
	}
	return d, w, nil
}

// NewLogForm builds the form used to record one weight.
func NewLogForm(vals *LogValues, in config.InputConfig) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Weight (kg)").
				Description(fmt.Sprintf("Between %.0f and %.0f", in.MinWeight, in.MaxWeight)).
				Placeholder("101.9").
				Value(&vals.Weight).
				Validate(func(s string) error {
					w, err := cli.ParseWeight(s)
					if err != nil {
						return err
					}
					return pipeline.ValidateWeight(w, in.MinWeight, in.MaxWeight)
				}),
			huh.NewInput().
				Title("Date").
				Description("YYYY-MM-DD or DD-MM-YYYY").
				Value(&vals.Date).
				Validate(func(s string) error {
					_, err := cli.ParseDate(s)
					return err
				}),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}

// SetupValues holds the raw text of the setup wizard.
type SetupValues struct {
	StartWeight string
	GoalWeight  string
	StartDate   string
	WeeklyRate  string
	Backend     string
	Theme       string
}

// NewSetupValues pre-fills the wizard from cfg.
func NewSetupValues(cfg config.Config) SetupValues {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return SetupValues{
		StartWeight: f(cfg.Goal.StartWeight),
		GoalWeight:  f(cfg.Goal.GoalWeight),
		StartDate:   cfg.Goal.StartDate,
		WeeklyRate:  f(cfg.Goal.WeeklyLossRate),
		Backend:     cfg.Storage.Backend,
		Theme:       cfg.Appearance.Theme,
	}
}

var errGoalAboveStart = errors.New("goal weight must be below start weight")

// Apply parses the wizard values into cfg.
func (v SetupValues) Apply(cfg *config.Config) error {
	start, err := cli.ParseWeight(v.StartWeight)
	if err != nil {
		return fmt.Errorf("start weight: %w", err)
	}
	goal, err := cli.ParseWeight(v.GoalWeight)
	if err != nil {
		return fmt.Errorf("goal weight: %w", err)
	}
	if goal >= start {
		return errGoalAboveStart
	}
	date, err := cli.ParseDate(v.StartDate)
	if err != nil {
		return fmt.Errorf("start date: %w", err)
	}
	rate, err := cli.ParseWeight(v.WeeklyRate)
	if err != nil || rate <= 0 {
		return errors.New("weekly loss rate: must be a positive number")
	}

	cfg.Goal = config.GoalSection{
		StartWeight:    start,
		GoalWeight:     goal,
		StartDate:      date.Format(model.DateLayout),
		WeeklyLossRate: rate,
	}
	if v.Backend != "" {
		cfg.Storage.Backend = v.Backend
	}
	if v.Theme != "" {
		cfg.Appearance.Theme = v.Theme
	}
	return nil
}

// NewSetupForm builds the goal and preferences wizard.
func NewSetupForm(vals *SetupValues, in config.InputConfig) *huh.Form {
	weight := func(s string) error {
		w, err := cli.ParseWeight(s)
		if err != nil {
			return err
		}
		return pipeline.ValidateWeight(w, in.MinWeight, in.MaxWeight)
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, t := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(t.Name, t.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to weightlog").
				Description("Set your starting point and goal.\nThe projection line follows this trajectory."),
			huh.NewInput().Title("Start weight (kg)").Value(&vals.StartWeight).Validate(weight),
			huh.NewInput().Title("Goal weight (kg)").Value(&vals.GoalWeight).Validate(weight),
			huh.NewInput().
				Title("Start date").
				Description("YYYY-MM-DD or DD-MM-YYYY").
				Value(&vals.StartDate).
				Validate(func(s string) error {
					_, err := cli.ParseDate(s)
					return err
				}),
			huh.NewInput().
				Title("Weekly loss rate (kg/week)").
				Value(&vals.WeeklyRate).
				Validate(func(s string) error {
					r, err := cli.ParseWeight(s)
					if err != nil {
						return err
					}
					if r <= 0 {
						return errors.New("must be positive")
					}
					return nil
				}),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Storage").
				Options(
					huh.NewOption("CSV file (gewicht_log.csv)", config.BackendCSV),
					huh.NewOption("SQLite database", config.BackendSQLite),
				).
				Value(&vals.Backend),
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&vals.Theme),
		),
	).WithTheme(huh.ThemeCharm()).WithShowHelp(true)
}
