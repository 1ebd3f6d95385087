package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"fieldtrack/internal/model"
	"fieldtrack/internal/repository"
)

// SnapshotRepository implements repository.SnapshotRepository for SQLite.
type SnapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new SQLite snapshot repository.
func NewSnapshotRepository(db *DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

// GetSnapshot returns the metadata of the stored snapshot of a kind.
func (r *SnapshotRepository) GetSnapshot(kind model.SnapshotKind) (*model.Snapshot, error) {
	r.db.RLock()
	defer r.db.RUnlock()
	return getSnapshot(r.db.Conn(), kind)
}

type querier interface {
	QueryRow(query string, args ...any) *sql.Row
}

func getSnapshot(q querier, kind model.SnapshotKind) (*model.Snapshot, error) {
	s := model.Snapshot{Kind: kind}
	err := q.QueryRow(`
		SELECT run_id, frame_count, created_at FROM snapshots WHERE kind = ?
	`, string(kind)).Scan(&s.RunID, &s.FrameCount, &s.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", kind, repository.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshot: %w", err)
	}
	return &s, nil
}

func putSnapshot(tx *sql.Tx, kind model.SnapshotKind, runID string, frameCount int) error {
	_, err := tx.Exec(`
		INSERT INTO snapshots (kind, run_id, frame_count, created_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(kind) DO UPDATE SET
			run_id = excluded.run_id,
			frame_count = excluded.frame_count,
			created_at = excluded.created_at
	`, string(kind), runID, frameCount)
	if err != nil {
		return fmt.Errorf("failed to store snapshot: %w", err)
	}
	return nil
}
