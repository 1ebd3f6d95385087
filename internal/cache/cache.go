// Package cache memoizes pipeline results in versioned SQLite files keyed by path.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"fieldtrack/internal/logger"
	"fieldtrack/internal/model"
	"fieldtrack/internal/repository"
	"fieldtrack/internal/repository/sqlite"
)

// Options select a cache file. Read enables loading; results are written whenever Path is set.
type Options struct {
	Path string
	Read bool
}

// Store loads cached results or computes and stores them. Stored values are returned verbatim,
// without checking them against the current inputs.
type Store struct {
	logger *logger.Logger
}

func New(logger *logger.Logger) *Store {
	return &Store{logger: logger}
}

type codec[T any] struct {
	kind model.SnapshotKind
	load func(*sqlite.DB) (T, error)
	save func(*sqlite.DB, T, string) error
}

var tracksCodec = codec[*model.TrackTable]{
	kind: model.SnapshotTracks,
	load: func(db *sqlite.DB) (*model.TrackTable, error) { return sqlite.NewTrackRepository(db).LoadTable() },
	save: func(db *sqlite.DB, t *model.TrackTable, runID string) error {
		return sqlite.NewTrackRepository(db).SaveTable(t, runID)
	},
}

var motionCodec = codec[model.CameraMotion]{
	kind: model.SnapshotMotion,
	load: func(db *sqlite.DB) (model.CameraMotion, error) { return sqlite.NewMotionRepository(db).LoadMotion() },
	save: func(db *sqlite.DB, m model.CameraMotion, runID string) error {
		return sqlite.NewMotionRepository(db).SaveMotion(m, runID)
	},
}

// Tracks returns the cached track table, or computes and stores it. hit reports a cache load.
func (s *Store) Tracks(opts Options, runID string, compute func() (*model.TrackTable, error)) (*model.TrackTable, bool, error) {
	return loadOrCompute(s.logger, tracksCodec, opts, runID, compute)
}

// Motion returns the cached camera motion, or computes and stores it. hit reports a cache load.
func (s *Store) Motion(opts Options, runID string, compute func() (model.CameraMotion, error)) (model.CameraMotion, bool, error) {
	return loadOrCompute(s.logger, motionCodec, opts, runID, compute)
}

func loadOrCompute[T any](log *logger.Logger, c codec[T], opts Options, runID string, compute func() (T, error)) (T, bool, error) {
	if opts.Read && opts.Path != "" {
		if v, ok := load(log, c, opts.Path); ok {
			return v, true, nil
		}
	}

	v, err := compute()
	if err != nil {
		var zero T
		return zero, false, err
	}

	if opts.Path != "" {
		if err := store(c, opts.Path, runID, v); err != nil {
			log.Error("Cache write %s (%s) failed: %v", opts.Path, c.kind, err)
		} else {
			log.Info("Stored %s in cache %s", c.kind, opts.Path)
		}
	}
	return v, false, nil
}

// load treats a missing, unreadable, incompatible or empty file as a miss.
func load[T any](log *logger.Logger, c codec[T], path string) (T, bool) {
	var zero T
	if _, err := os.Stat(path); err != nil {
		return zero, false
	}

	db, err := sqlite.New(path)
	if err != nil {
		log.Warning("Cache %s unusable, recomputing %s: %v", path, c.kind, err)
		return zero, false
	}
	defer db.Close()

	v, err := c.load(db)
	if errors.Is(err, repository.ErrNotFound) {
		log.Info("Cache %s holds no %s snapshot", path, c.kind)
		return zero, false
	}
	if err != nil {
		log.Warning("Cache %s: failed to load %s, recomputing: %v", path, c.kind, err)
		return zero, false
	}
	log.Info("Loaded %s from cache %s", c.kind, path)
	return v, true
}

// store replaces the snapshot, recreating the file when it cannot be opened at the current schema.
func store[T any](c codec[T], path, runID string, v T) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache directory: %w", err)
		}
	}

	db, err := sqlite.New(path)
	if err != nil {
		if rmErr := Remove(path); rmErr != nil {
			return fmt.Errorf("%w (remove failed: %v)", err, rmErr)
		}
		if db, err = sqlite.New(path); err != nil {
			return err
		}
	}
	defer db.Close()

	return c.save(db, v, runID)
}

// Snapshot returns the metadata of the result of a kind stored at path, or
// repository.ErrNotFound when the path is unset, missing or holds no such result.
func (s *Store) Snapshot(path string, kind model.SnapshotKind) (*model.Snapshot, error) {
	if path == "" {
		return nil, repository.ErrNotFound
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("%s: %w", path, repository.ErrNotFound)
	}
	db, err := sqlite.New(path)
	if err != nil {
		return nil, err
	}
	defer db.Close()
	return sqlite.NewSnapshotRepository(db).GetSnapshot(kind)
}

// Remove deletes a cache file and its SQLite sidecar files.
func Remove(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	return nil
}
