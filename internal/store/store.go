// Package store persists the weight observation log.
//
// Two backends implement Store: a flat CSV file (the default) and a SQLite
// database. Load never fails; a missing or unreadable backing yields an empty
// Log and a logged warning.
package store

import (
	"fmt"

	"github.com/theirongolddev/weightlog/internal/logger"
	"github.com/theirongolddev/weightlog/internal/model"
)

// Store reads and writes the full observation log.
type Store interface {
	// Load returns the persisted log, or an empty log when nothing usable exists.
	Load() model.Log
	// Save overwrites the backing with log.
	Save(log model.Log) error
	// Path returns the backing location.
	Path() string
	Close() error
}

// Inspector reports on the health of a store's backing without modifying it.
type Inspector interface {
	Inspect() (Health, error)
}

// ParseWarning describes a persisted row that could not be read.
type ParseWarning struct {
	Line    int    // 1-indexed row in the backing
	Content string // raw row
	Error   string
}

// Health summarizes a store's backing.
type Health struct {
	Path     string
	Exists   bool
	Rows     int
	Valid    int
	Warnings []ParseWarning
}

// Open returns the store for backend at path. A nil log discards warnings.
func Open(backend, path string, log *logger.Logger) (Store, error) {
	if log == nil {
		log = logger.Nop()
	}
	switch backend {
	case "", "csv":
		return NewCSVStore(path, log), nil
	case "sqlite":
		return OpenSQLite(path, log)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", backend)
	}
}
