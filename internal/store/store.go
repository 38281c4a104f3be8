// Package store persists the building hierarchy (buildings, floors,
// rooms), sensors with their reading history, and objects placed in the
// AR scene. Reconstruction data loaded from COLMAP workspaces is held in
// memory only and is lost on restart.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"sync"

	"github.com/buildscan-data/buildscan/internal/colmap"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested entity does not exist.
var ErrNotFound = errors.New("not found")

type Store struct {
	db *sql.DB

	// mu guards the in-memory reconstruction data below.
	mu      sync.RWMutex
	cameras map[int]colmap.Camera
	images  map[int]ImageRecord
}

// Open opens (or creates) the database at path, runs pending migrations
// and seeds a demo building into an empty database. Use ":memory:" for
// an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}
	// modernc sqlite gives every pooled connection its own view of an
	// in-memory database, and concurrent writers contend on file locks,
	// so a single connection serves both cases.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:      db,
		cameras: make(map[int]colmap.Camera),
		images:  make(map[int]ImageRecord),
	}
	if err := s.migrateUp(); err != nil {
		db.Close()
		return nil, err
	}
	if err := s.seedIfEmpty(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}
