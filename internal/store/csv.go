package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/theirongolddev/weightlog/internal/logger"
	"github.com/theirongolddev/weightlog/internal/model"
)

// CSV column names, kept compatible with existing gewicht_log.csv files.
const (
	ColumnDate   = "Datum"
	ColumnWeight = "Gewicht"
)

var errBadHeader = errors.New("unexpected header")

// dateLayouts are tried in order when reading the Datum column.
var dateLayouts = []string{
	model.DateLayout,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

// CSVStore keeps the log in a two-column CSV file.
type CSVStore struct {
	path string
	log  *logger.Logger
}

// NewCSVStore returns a store backed by the CSV file at path. The file is
// not touched until Load or Save.
func NewCSVStore(path string, log *logger.Logger) *CSVStore {
	if log == nil {
		log = logger.Nop()
	}
	return &CSVStore{path: path, log: log.With("store", "csv", "path", path)}
}

// Path returns the CSV file location.
func (s *CSVStore) Path() string { return s.path }

// Close is a no-op; the file is opened per operation.
func (s *CSVStore) Close() error { return nil }

// Load reads the file. Malformed rows are skipped; a missing file, an
// unreadable file or a foreign header yields an empty log.
func (s *CSVStore) Load() model.Log {
	f, err := os.Open(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("cannot open log, starting empty", "error", err)
		}
		return model.Log{}
	}
	defer func() { _ = f.Close() }()

	obs, warnings, _, err := readCSV(f)
	if err != nil {
		s.log.Warn("cannot read log, starting empty", "error", err)
		return model.Log{}
	}
	for _, w := range warnings {
		s.log.Warn("skipping malformed row", "line", w.Line, "content", w.Content, "error", w.Error)
	}
	return model.NormalizeLog(obs)
}

// Inspect reads the file and reports per-row problems.
func (s *CSVStore) Inspect() (Health, error) {
	h := Health{Path: s.path}
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return h, nil
		}
		return h, fmt.Errorf("opening log: %w", err)
	}
	defer func() { _ = f.Close() }()
	h.Exists = true

	obs, warnings, rows, err := readCSV(f)
	if err != nil {
		return h, fmt.Errorf("reading log: %w", err)
	}
	h.Rows = rows
	h.Valid = len(obs)
	h.Warnings = warnings
	return h, nil
}

// Save writes the full log to a temporary file and renames it over the
// target.
func (s *CSVStore) Save(log model.Log) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o750); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}

	tmp := s.path + ".tmp"
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600) //nolint:gosec // user-chosen path
	if err != nil {
		return fmt.Errorf("creating temp log: %w", err)
	}

	if err := WriteCSV(f, log); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return fmt.Errorf("writing log: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("closing temp log: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replacing log: %w", err)
	}
	s.log.Debug("saved log", "observations", log.Len())
	return nil
}

// WriteCSV writes log as Datum,Gewicht rows with a header.
func WriteCSV(w io.Writer, log model.Log) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{ColumnDate, ColumnWeight}); err != nil {
		return err
	}
	for _, o := range log {
		rec := []string{
			o.Date.Format(model.DateLayout),
			strconv.FormatFloat(o.Weight, 'f', -1, 64),
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// readCSV parses the file body. It returns the valid observations in file
// order, warnings for skipped rows and the number of data rows seen.
func readCSV(r io.Reader) ([]model.Observation, []ParseWarning, int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil, 0, nil
	}
	if err != nil {
		return nil, nil, 0, err
	}
	if len(header) < 2 ||
		strings.TrimPrefix(strings.TrimSpace(header[0]), "\ufeff") != ColumnDate ||
		strings.TrimSpace(header[1]) != ColumnWeight {
		return nil, nil, 0, fmt.Errorf("%w %q", errBadHeader, strings.Join(header, ","))
	}

	var (
		obs      []model.Observation
		warnings []ParseWarning
		rows     int
	)
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				rows++
				warnings = append(warnings, ParseWarning{Line: pe.Line, Error: pe.Err.Error()})
				continue
			}
			return nil, nil, 0, err
		}
		rows++
		line, _ := cr.FieldPos(0)

		o, perr := parseRecord(rec)
		if perr != nil {
			warnings = append(warnings, ParseWarning{
				Line:    line,
				Content: strings.Join(rec, ","),
				Error:   perr.Error(),
			})
			continue
		}
		obs = append(obs, o)
	}
	return obs, warnings, rows, nil
}

func parseRecord(rec []string) (model.Observation, error) {
	if len(rec) < 2 {
		return model.Observation{}, fmt.Errorf("expected 2 fields, got %d", len(rec))
	}
	date, err := parseDate(rec[0])
	if err != nil {
		return model.Observation{}, err
	}
	w, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64)
	if err != nil {
		return model.Observation{}, fmt.Errorf("invalid weight %q", rec[1])
	}
	return model.Observation{Date: date, Weight: w}, nil
}

func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.Day(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}
