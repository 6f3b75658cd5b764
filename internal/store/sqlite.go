package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/theirongolddev/weightlog/internal/logger"
	"github.com/theirongolddev/weightlog/internal/model"

	_ "modernc.org/sqlite" // register sqlite driver
)

// SQLiteStore keeps the log in a SQLite database, one row per day.
type SQLiteStore struct {
	db   *sql.DB
	path string
	log  *logger.Logger
}

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string, log *logger.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logger.Nop()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating store dir: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening store db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &SQLiteStore{db: db, path: path, log: log.With("store", "sqlite", "path", path)}, nil
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Load reads every row. Query failures yield an empty log; rows with an
// unparseable day are skipped.
func (s *SQLiteStore) Load() model.Log {
	obs, warnings, _, err := s.readAll()
	if err != nil {
		s.log.Warn("cannot read log, starting empty", "error", err)
		return model.Log{}
	}
	for _, w := range warnings {
		s.log.Warn("skipping malformed row", "line", w.Line, "content", w.Content, "error", w.Error)
	}
	return model.NormalizeLog(obs)
}

// Inspect reports row counts and undecodable rows.
func (s *SQLiteStore) Inspect() (Health, error) {
	h := Health{Path: s.path, Exists: true}
	obs, warnings, rows, err := s.readAll()
	if err != nil {
		return h, fmt.Errorf("reading log: %w", err)
	}
	h.Rows = rows
	h.Valid = len(obs)
	h.Warnings = warnings
	return h, nil
}

func (s *SQLiteStore) readAll() ([]model.Observation, []ParseWarning, int, error) {
	rows, err := s.db.Query("SELECT day, weight FROM observations ORDER BY day")
	if err != nil {
		return nil, nil, 0, err
	}
	defer func() { _ = rows.Close() }()

	var (
		obs      []model.Observation
		warnings []ParseWarning
		n        int
	)
	for rows.Next() {
		n++
		var day string
		var weight float64
		if err := rows.Scan(&day, &weight); err != nil {
			return nil, nil, 0, err
		}
		d, err := time.Parse(model.DateLayout, day)
		if err != nil {
			warnings = append(warnings, ParseWarning{
				Line:    n,
				Content: fmt.Sprintf("%s,%g", day, weight),
				Error:   fmt.Sprintf("invalid date %q", day),
			})
			continue
		}
		obs = append(obs, model.Observation{Date: d, Weight: weight})
	}
	return obs, warnings, n, rows.Err()
}

// Save replaces all rows with log in a single transaction.
func (s *SQLiteStore) Save(log model.Log) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning save: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.Exec("DELETE FROM observations"); err != nil {
		return fmt.Errorf("clearing observations: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO observations (day, weight) VALUES (?, ?)")
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, o := range log {
		if _, err := stmt.Exec(o.Date.Format(model.DateLayout), o.Weight); err != nil {
			return fmt.Errorf("inserting %s: %w", o.Date.Format(model.DateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing save: %w", err)
	}
	s.log.Debug("saved log", "observations", log.Len())
	return nil
}
