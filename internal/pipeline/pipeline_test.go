package pipeline

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/theirongolddev/weightlog/internal/model"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(model.DateLayout, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func testGoal(t *testing.T) model.GoalConfig {
	t.Helper()
	return model.GoalConfig{
		StartWeight:    102.3,
		GoalWeight:     89.0,
		StartDate:      mustDate(t, "2025-07-07"),
		WeeklyLossRate: 0.64,
	}
}

func sampleLog(t *testing.T) model.Log {
	t.Helper()
	log := Upsert(nil, mustDate(t, "2025-07-07"), 102.3)
	return Upsert(log, mustDate(t, "2025-07-08"), 101.9)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestUpsert_Idempotent(t *testing.T) {
	base := sampleLog(t)
	d := mustDate(t, "2025-07-10")

	once := Upsert(base, d, 100.8)
	twice := Upsert(once, d, 100.8)
	if !once.Equal(twice) {
		t.Fatalf("upsert not idempotent: once=%v twice=%v", once, twice)
	}
}

func TestUpsert_OverwritesSameDate(t *testing.T) {
	log := Upsert(sampleLog(t), mustDate(t, "2025-07-08"), 105.0)

	if log.Len() != 2 {
		t.Fatalf("len = %d, want 2", log.Len())
	}
	o, ok := log.Lookup(mustDate(t, "2025-07-08"))
	if !ok {
		t.Fatal("2025-07-08 missing after overwrite")
	}
	if o.Weight != 105.0 {
		t.Fatalf("2025-07-08 weight = %.1f, want 105.0", o.Weight)
	}
}

func TestUpsert_KeepsAscendingOrder(t *testing.T) {
	var log model.Log
	for _, in := range []struct {
		day string
		w   float64
	}{
		{"2025-07-12", 100.1},
		{"2025-07-07", 102.3},
		{"2025-07-09", 101.4},
		{"2025-07-07", 102.0},
		{"2025-07-08", 101.9},
	} {
		log = Upsert(log, mustDate(t, in.day), in.w)
		for i := 1; i < log.Len(); i++ {
			if !log[i-1].Date.Before(log[i].Date) {
				t.Fatalf("after upsert %s: log not strictly ascending at %d: %v", in.day, i, log)
			}
		}
	}
	if log.Len() != 4 {
		t.Fatalf("len = %d, want 4", log.Len())
	}
	if first, _ := log.First(); first.Weight != 102.0 {
		t.Fatalf("first weight = %.1f, want 102.0", first.Weight)
	}
}

func TestUpsert_DoesNotMutateInput(t *testing.T) {
	base := sampleLog(t)
	before := append(model.Log(nil), base...)
	_ = Upsert(base, mustDate(t, "2025-07-08"), 99.9)
	if !base.Equal(before) {
		t.Fatalf("input log mutated: %v", base)
	}
}

func TestValidateWeight(t *testing.T) {
	if err := ValidateWeight(101.9, 60, 150); err != nil {
		t.Fatalf("ValidateWeight(101.9) = %v, want nil", err)
	}
	for _, w := range []float64{59.9, 150.1, 0, -1} {
		err := ValidateWeight(w, 60, 150)
		if !errors.Is(err, ErrWeightOutOfRange) {
			t.Errorf("ValidateWeight(%.1f) = %v, want ErrWeightOutOfRange", w, err)
		}
	}
}

func TestSummarize_Scenario(t *testing.T) {
	s := Summarize(sampleLog(t), testGoal(t))

	if s.CurrentWeight != 101.9 {
		t.Fatalf("CurrentWeight = %.2f, want 101.9", s.CurrentWeight)
	}
	if s.TotalLost != 0.4 {
		t.Fatalf("TotalLost = %v, want 0.4", s.TotalLost)
	}
	if s.Remaining != 12.9 {
		t.Fatalf("Remaining = %v, want 12.9", s.Remaining)
	}
	if !s.LatestDate.Equal(mustDate(t, "2025-07-08")) {
		t.Fatalf("LatestDate = %s, want 2025-07-08", s.LatestDate)
	}
	// 102.3 - 0.64/7 = 102.2086; ahead by 0.3
	if s.AheadBy != 0.3 {
		t.Fatalf("AheadBy = %v, want 0.3", s.AheadBy)
	}
}

func TestSummarize_ProgressClamped(t *testing.T) {
	goal := testGoal(t)

	above := Summarize(Upsert(nil, goal.StartDate, 104.0), goal)
	if above.Progress != 0 {
		t.Fatalf("Progress above start = %v, want 0", above.Progress)
	}
	below := Summarize(Upsert(nil, goal.StartDate, 85.0), goal)
	if below.Progress != 1 {
		t.Fatalf("Progress below goal = %v, want 1", below.Progress)
	}
	if below.Remaining != -4.0 {
		t.Fatalf("Remaining below goal = %v, want -4", below.Remaining)
	}
}

func TestProject_Scenario(t *testing.T) {
	goal := testGoal(t)
	points := ProjectedWeights(goal, mustDate(t, "2026-01-31"))

	if !approx(points[0].Weight, 102.3) {
		t.Fatalf("day 0 = %v, want 102.3", points[0].Weight)
	}
	if !approx(points[7].Weight, 101.66) {
		t.Fatalf("day 7 = %v, want 101.66", points[7].Weight)
	}
	if points[145].Weight <= 89.0 {
		t.Fatalf("day 145 = %v, want above 89.0", points[145].Weight)
	}
	for i := 146; i < len(points); i++ {
		if points[i].Weight != 89.0 {
			t.Fatalf("day %d = %v, want exactly 89.0", i, points[i].Weight)
		}
	}
	if !points[7].Date.Equal(mustDate(t, "2025-07-14")) {
		t.Fatalf("day 7 date = %s, want 2025-07-14", points[7].Date)
	}
}

func TestProject_MonotoneAndFloored(t *testing.T) {
	goal := testGoal(t)
	points := ProjectedWeights(goal, goal.StartDate.AddDate(1, 0, 0))

	for i := range points {
		if points[i].Weight < goal.GoalWeight {
			t.Fatalf("day %d = %v undershoots goal %v", i, points[i].Weight, goal.GoalWeight)
		}
		if i > 0 && points[i].Weight > points[i-1].Weight {
			t.Fatalf("day %d = %v rises above day %d = %v", i, points[i].Weight, i-1, points[i-1].Weight)
		}
	}
}

func TestProject_InclusiveCount(t *testing.T) {
	goal := testGoal(t)
	if n := len(ProjectedWeights(goal, goal.StartDate)); n != 1 {
		t.Fatalf("same-day projection has %d points, want 1", n)
	}
	if n := len(ProjectedWeights(goal, mustDate(t, "2025-07-08"))); n != 2 {
		t.Fatalf("two-day projection has %d points, want 2", n)
	}
}

func TestProject_EmptyBeforeStart(t *testing.T) {
	goal := testGoal(t)
	count := 0
	for range Project(goal, mustDate(t, "2025-07-01")) {
		count++
	}
	if count != 0 {
		t.Fatalf("projection before start yielded %d points, want 0", count)
	}
}

func TestProject_Restartable(t *testing.T) {
	goal := testGoal(t)
	seq := Project(goal, mustDate(t, "2025-07-20"))

	var first, second []model.ProjectionPoint
	for p := range seq {
		first = append(first, p)
	}
	for p := range seq {
		second = append(second, p)
	}
	if len(first) != 14 || len(second) != 14 {
		t.Fatalf("lengths = %d, %d; want 14, 14", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("point %d differs between passes: %+v vs %+v", i, first[i], second[i])
		}
	}

	// early break must not panic
	for range seq {
		break
	}
}

func TestGoalReachedDate(t *testing.T) {
	d, ok := GoalReachedDate(testGoal(t))
	if !ok {
		t.Fatal("GoalReachedDate returned !ok")
	}
	want := mustDate(t, "2025-07-07").AddDate(0, 0, 146)
	if !d.Equal(want) {
		t.Fatalf("GoalReachedDate = %s, want %s", d.Format(model.DateLayout), want.Format(model.DateLayout))
	}

	flat := testGoal(t)
	flat.WeeklyLossRate = 0
	if _, ok := GoalReachedDate(flat); ok {
		t.Fatal("zero loss rate should never reach the goal")
	}
}

func TestBuildSeriesRows(t *testing.T) {
	goal := testGoal(t)
	log := Upsert(sampleLog(t), mustDate(t, "2025-07-10"), 101.0)

	s := BuildSeries(log, goal)
	if len(s.Projection) != 4 {
		t.Fatalf("projection len = %d, want 4", len(s.Projection))
	}

	rows := s.Rows()
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4", len(rows))
	}
	if rows[2].Observed != nil {
		t.Fatalf("2025-07-09 has observed %v, want nil", *rows[2].Observed)
	}
	if rows[2].Projected == nil {
		t.Fatal("2025-07-09 missing projection")
	}
	if rows[1].Difference == nil || *rows[1].Difference != -0.3 {
		t.Fatalf("2025-07-08 difference = %v, want -0.3", rows[1].Difference)
	}

	lo, hi := s.Bounds()
	if lo != 89.0 || hi != 102.3 {
		t.Fatalf("Bounds = %v, %v; want 89.0, 102.3", lo, hi)
	}
}

func TestBuildSeries_EmptyLog(t *testing.T) {
	s := BuildSeries(nil, testGoal(t))
	if len(s.Projection) != 0 {
		t.Fatalf("projection len = %d, want 0", len(s.Projection))
	}
	if _, _, ok := s.DateRange(); ok {
		t.Fatal("DateRange on empty series returned ok")
	}
}

func TestFilterByTime(t *testing.T) {
	log := Upsert(sampleLog(t), mustDate(t, "2025-07-10"), 101.0)
	got := FilterByTime(log, mustDate(t, "2025-07-08"), time.Time{})
	if got.Len() != 2 {
		t.Fatalf("len = %d, want 2", got.Len())
	}
	got = FilterByTime(log, time.Time{}, mustDate(t, "2025-07-08"))
	if got.Len() != 2 {
		t.Fatalf("len = %d, want 2", got.Len())
	}
}
