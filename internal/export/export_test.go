package export

import (
	"bytes"
	"image/png"
	"strconv"
	"testing"
	"time"

	"github.com/theirongolddev/weightlog/internal/model"
	"github.com/theirongolddev/weightlog/internal/pipeline"

	"github.com/xuri/excelize/v2"
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
	log := pipeline.Upsert(nil, mustDate(t, "2025-07-07"), 102.3)
	log = pipeline.Upsert(log, mustDate(t, "2025-07-08"), 101.9)
	return pipeline.Upsert(log, mustDate(t, "2025-07-15"), 101.1)
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, sampleLog(t)); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}

	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) != 1 || sheets[0] != SheetName {
		t.Fatalf("sheets = %v, want [%s]", sheets, SheetName)
	}

	rows, err := f.GetRows(SheetName, excelize.Options{RawCellValue: true})
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("rows = %d, want 4 (header + 3)", len(rows))
	}
	if rows[0][0] != "Datum" || rows[0][1] != "Gewicht" {
		t.Fatalf("header = %v, want [Datum Gewicht]", rows[0])
	}

	serial, err := strconv.ParseFloat(rows[2][0], 64)
	if err != nil {
		t.Fatalf("date cell %q is not a serial: %v", rows[2][0], err)
	}
	d, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		t.Fatalf("ExcelDateToTime: %v", err)
	}
	if got := d.Format(model.DateLayout); got != "2025-07-08" {
		t.Fatalf("row 2 date = %s, want 2025-07-08", got)
	}
	if rows[2][1] != "101.9" {
		t.Fatalf("row 2 weight = %q, want 101.9", rows[2][1])
	}
}

func TestWriteXLSX_EmptyLog(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteXLSX(&buf, nil); err != nil {
		t.Fatalf("WriteXLSX: %v", err)
	}
	f, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer func() { _ = f.Close() }()
	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("GetRows: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("rows = %d, want header only", len(rows))
	}
}

func TestRenderChartPNG(t *testing.T) {
	s := pipeline.BuildSeries(sampleLog(t), testGoal(t))

	var buf bytes.Buffer
	if err := RenderChartPNG(&buf, s, 640, 400); err != nil {
		t.Fatalf("RenderChartPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 640 || b.Dy() != 400 {
		t.Fatalf("size = %dx%d, want 640x400", b.Dx(), b.Dy())
	}
}

func TestRenderChartPNG_EmptySeriesDefaultSize(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderChartPNG(&buf, pipeline.Series{GoalWeight: 89}, 0, 0); err != nil {
		t.Fatalf("RenderChartPNG: %v", err)
	}
	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if b := img.Bounds(); b.Dx() != ChartWidth || b.Dy() != ChartHeight {
		t.Fatalf("size = %dx%d, want %dx%d", b.Dx(), b.Dy(), ChartWidth, ChartHeight)
	}
}

func TestNiceStep(t *testing.T) {
	tests := []struct {
		span float64
		want float64
	}{
		{14, 5},
		{6, 1},
		{30, 5},
		{600, 100},
		{0, 1},
	}
	for _, tt := range tests {
		if got := niceStep(tt.span, 6); got != tt.want {
			t.Errorf("niceStep(%v) = %v, want %v", tt.span, got, tt.want)
		}
	}
}
