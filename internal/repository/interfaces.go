package repository

import (
	"errors"

	"fieldtrack/internal/model"
)

// ErrNotFound is returned when the store holds no snapshot of the requested kind.
var ErrNotFound = errors.New("snapshot not found")

// TrackRepository persists fully populated track tables.
type TrackRepository interface {
	// Create operations
	SaveTable(table *model.TrackTable, runID string) error

	// Read operations
	LoadTable() (*model.TrackTable, error)
}

// MotionRepository persists camera motion tracks.
type MotionRepository interface {
	// Create operations
	SaveMotion(motion model.CameraMotion, runID string) error

	// Read operations
	LoadMotion() (model.CameraMotion, error)
}

// SnapshotRepository reads snapshot metadata.
type SnapshotRepository interface {
	GetSnapshot(kind model.SnapshotKind) (*model.Snapshot, error)
}
