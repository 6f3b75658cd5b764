package store

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
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

func sampleLog(t *testing.T) model.Log {
	t.Helper()
	return model.NormalizeLog([]model.Observation{
		{Date: mustDate(t, "2025-07-07"), Weight: 102.3},
		{Date: mustDate(t, "2025-07-08"), Weight: 101.9},
		{Date: mustDate(t, "2025-07-12"), Weight: 100.75},
	})
}

func writeFile(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "gewicht_log.csv")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestCSVStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "gewicht_log.csv")
	s := NewCSVStore(path, nil)

	want := sampleLog(t)
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got := s.Load()
	if !got.Equal(want) {
		t.Fatalf("Load = %v, want %v", got, want)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestCSVStore_FileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gewicht_log.csv")
	if err := NewCSVStore(path, nil).Save(sampleLog(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	want := "Datum,Gewicht\n2025-07-07,102.3\n2025-07-08,101.9\n2025-07-12,100.75\n"
	if string(data) != want {
		t.Fatalf("file = %q, want %q", data, want)
	}
}

func TestCSVStore_MissingFileIsEmpty(t *testing.T) {
	s := NewCSVStore(filepath.Join(t.TempDir(), "nope.csv"), nil)
	if got := s.Load(); !got.IsEmpty() {
		t.Fatalf("Load on missing file = %v, want empty", got)
	}
	h, err := s.Inspect()
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if h.Exists {
		t.Fatal("Inspect reports a missing file as existing")
	}
}

func TestCSVStore_ForeignFileIsEmpty(t *testing.T) {
	for name, body := range map[string]string{
		"wrong header": "date,kg\n2025-07-07,102.3\n",
		"binary":       "\x00\x01\x02garbage",
		"empty":        "",
	} {
		s := NewCSVStore(writeFile(t, body), nil)
		if got := s.Load(); !got.IsEmpty() {
			t.Errorf("%s: Load = %v, want empty", name, got)
		}
	}
}

func TestCSVStore_SkipsMalformedRows(t *testing.T) {
	path := writeFile(t, strings.Join([]string{
		"Datum,Gewicht",
		"2025-07-08 00:00:00,101.9",
		"not-a-date,100.0",
		"2025-07-07,zwaar",
		"2025-07-07,102.3",
		"2025-07-09",
		"2025-07-08,101.7",
	}, "\n")+"\n")
	s := NewCSVStore(path, nil)

	got := s.Load()
	if got.Len() != 2 {
		t.Fatalf("len = %d, want 2 (%v)", got.Len(), got)
	}
	if got[0].Weight != 102.3 || got[1].Weight != 101.7 {
		t.Fatalf("weights = %v, want [102.3 101.7]", got.Weights())
	}

	h, err := s.Inspect()
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if h.Rows != 6 || h.Valid != 3 || len(h.Warnings) != 3 {
		t.Fatalf("health = rows %d valid %d warnings %d, want 6/3/3", h.Rows, h.Valid, len(h.Warnings))
	}
	if h.Warnings[0].Line != 3 {
		t.Fatalf("first warning line = %d, want 3", h.Warnings[0].Line)
	}
}

func TestWriteCSV_Empty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	if buf.String() != "Datum,Gewicht\n" {
		t.Fatalf("output = %q", buf.String())
	}
}

func TestSQLiteStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gewicht_log.db")
	s, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = s.Close() }()

	if got := s.Load(); !got.IsEmpty() {
		t.Fatalf("fresh db Load = %v, want empty", got)
	}

	want := sampleLog(t)
	if err := s.Save(want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got := s.Load(); !got.Equal(want) {
		t.Fatalf("Load = %v, want %v", got, want)
	}

	shorter := want[:1]
	if err := s.Save(shorter); err != nil {
		t.Fatalf("Save shorter: %v", err)
	}
	h, err := s.Inspect()
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if h.Rows != 1 {
		t.Fatalf("rows = %d, want 1 after overwrite", h.Rows)
	}
}

func TestSQLiteStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gewicht_log.db")
	s, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Save(sampleLog(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}
	_ = s.Close()

	s2, err := OpenSQLite(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer func() { _ = s2.Close() }()
	if got := s2.Load(); got.Len() != 3 {
		t.Fatalf("reopened len = %d, want 3", got.Len())
	}
	h, err := s2.Inspect()
	if err != nil {
		t.Fatalf("Inspect: %v", err)
	}
	if h.Rows != 3 || h.Valid != 3 {
		t.Fatalf("health = %+v, want 3 rows all valid", h)
	}
}

func TestSQLiteStore_UnreadableIsEmpty(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "gewicht_log.db"), nil)
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := s.Save(sampleLog(t)); err != nil {
		t.Fatalf("Save: %v", err)
	}

	if _, err := s.db.Exec("DROP TABLE observations"); err != nil {
		t.Fatalf("drop table: %v", err)
	}
	if got := s.Load(); !got.IsEmpty() {
		t.Fatalf("Load without table = %v, want empty", got)
	}
	if _, err := s.Inspect(); err == nil {
		t.Fatal("Inspect without table returned no error")
	}

	_ = s.Close()
	if got := s.Load(); !got.IsEmpty() {
		t.Fatalf("Load on closed db = %v, want empty", got)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()

	s, err := Open("csv", filepath.Join(dir, "a.csv"), nil)
	if err != nil {
		t.Fatalf("Open csv: %v", err)
	}
	if _, ok := s.(*CSVStore); !ok {
		t.Fatalf("Open csv = %T, want *CSVStore", s)
	}

	s, err = Open("sqlite", filepath.Join(dir, "a.db"), nil)
	if err != nil {
		t.Fatalf("Open sqlite: %v", err)
	}
	defer func() { _ = s.Close() }()
	if _, ok := s.(Inspector); !ok {
		t.Fatalf("%T does not implement Inspector", s)
	}

	if _, err := Open("parquet", filepath.Join(dir, "a.pq"), nil); err == nil {
		t.Fatal("Open accepted an unknown backend")
	}
}
