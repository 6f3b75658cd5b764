package model

import (
	"testing"
	"time"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func TestNormalizeLog_LastWinsAndSorted(t *testing.T) {
	in := []Observation{
		{Date: mustDate(t, "2025-07-09"), Weight: 101.5},
		{Date: mustDate(t, "2025-07-07"), Weight: 102.3},
		{Date: mustDate(t, "2025-07-09"), Weight: 101.2},
		{Date: mustDate(t, "2025-07-08"), Weight: 101.9},
	}

	got := NormalizeLog(in)
	if got.Len() != 3 {
		t.Fatalf("len = %d, want 3", got.Len())
	}
	want := []float64{102.3, 101.9, 101.2}
	for i, w := range want {
		if got[i].Weight != w {
			t.Fatalf("got[%d].Weight = %.1f, want %.1f", i, got[i].Weight, w)
		}
		if i > 0 && !got[i-1].Date.Before(got[i].Date) {
			t.Fatalf("log not strictly ascending at %d", i)
		}
	}
	if in[0].Weight != 101.5 {
		t.Fatal("input slice was modified")
	}
}

func TestNormalizeLog_TruncatesTimeOfDay(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	in := []Observation{
		{Date: time.Date(2025, 7, 8, 7, 30, 0, 0, loc), Weight: 101.9},
		{Date: time.Date(2025, 7, 8, 21, 0, 0, 0, loc), Weight: 101.7},
	}
	got := NormalizeLog(in)
	if got.Len() != 1 {
		t.Fatalf("len = %d, want 1", got.Len())
	}
	if !got[0].Date.Equal(mustDate(t, "2025-07-08")) {
		t.Fatalf("date = %s, want 2025-07-08", got[0].Date)
	}
	if got[0].Weight != 101.7 {
		t.Fatalf("weight = %.1f, want 101.7", got[0].Weight)
	}
}

func TestLogLatestAndLookup(t *testing.T) {
	var empty Log
	if _, ok := empty.Latest(); ok {
		t.Fatal("Latest on empty log returned ok")
	}

	l := NormalizeLog([]Observation{
		{Date: mustDate(t, "2025-07-07"), Weight: 102.3},
		{Date: mustDate(t, "2025-07-08"), Weight: 101.9},
	})
	latest, ok := l.Latest()
	if !ok || latest.Weight != 101.9 {
		t.Fatalf("Latest = %+v, %v; want 101.9", latest, ok)
	}
	if o, ok := l.Lookup(mustDate(t, "2025-07-07")); !ok || o.Weight != 102.3 {
		t.Fatalf("Lookup(2025-07-07) = %+v, %v", o, ok)
	}
	if _, ok := l.Lookup(mustDate(t, "2025-07-10")); ok {
		t.Fatal("Lookup found a date that was never logged")
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"2025-07-07", "2025-07-07", 0},
		{"2025-07-07", "2025-07-14", 7},
		{"2025-07-07", "2025-07-01", -6},
		{"2025-10-25", "2025-10-27", 2}, // across a DST change in Europe
	}
	for _, tt := range tests {
		if got := DaysBetween(mustDate(t, tt.a), mustDate(t, tt.b)); got != tt.want {
			t.Errorf("DaysBetween(%s, %s) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}
