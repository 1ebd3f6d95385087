package sqlite

import (
	"fmt"

	"github.com/golang/geo/r2"

	"fieldtrack/internal/model"
)

// MotionRepository implements repository.MotionRepository for SQLite.
type MotionRepository struct {
	db *DB
}

// NewMotionRepository creates a new SQLite camera motion repository.
func NewMotionRepository(db *DB) *MotionRepository {
	return &MotionRepository{db: db}
}

// SaveMotion replaces the stored motion track.
func (r *MotionRepository) SaveMotion(motion model.CameraMotion, runID string) error {
	r.db.Lock()
	defer r.db.Unlock()

	tx, err := r.db.Conn().Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM camera_motion`); err != nil {
		return fmt.Errorf("failed to clear camera motion: %w", err)
	}

	stmt, err := tx.Prepare(`INSERT INTO camera_motion (frame, dx, dy) VALUES (?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for frame, m := range motion {
		if _, err := stmt.Exec(frame, m.X, m.Y); err != nil {
			return fmt.Errorf("failed to insert motion for frame %d: %w", frame, err)
		}
	}

	if err := putSnapshot(tx, model.SnapshotMotion, runID, len(motion)); err != nil {
		return err
	}
	return tx.Commit()
}

// LoadMotion returns the stored motion track.
func (r *MotionRepository) LoadMotion() (model.CameraMotion, error) {
	r.db.RLock()
	defer r.db.RUnlock()

	snap, err := getSnapshot(r.db.Conn(), model.SnapshotMotion)
	if err != nil {
		return nil, err
	}

	rows, err := r.db.Conn().Query(`SELECT frame, dx, dy FROM camera_motion ORDER BY frame`)
	if err != nil {
		return nil, fmt.Errorf("failed to query camera motion: %w", err)
	}
	defer rows.Close()

	motion := model.NewCameraMotion(snap.FrameCount)
	for rows.Next() {
		var frame int
		var p r2.Point
		if err := rows.Scan(&frame, &p.X, &p.Y); err != nil {
			return nil, fmt.Errorf("failed to scan camera motion: %w", err)
		}
		if frame < 0 || frame >= len(motion) {
			return nil, fmt.Errorf("camera motion frame %d outside [0,%d)", frame, len(motion))
		}
		motion[frame] = p
	}
	return motion, rows.Err()
}
