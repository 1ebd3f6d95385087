package model

import "time"

// SnapshotKind names what a cache snapshot holds.
type SnapshotKind string

const (
	SnapshotTracks SnapshotKind = "tracks"
	SnapshotMotion SnapshotKind = "motion"
)

// Snapshot describes one stored pipeline result.
type Snapshot struct {
	Kind       SnapshotKind `json:"kind"`
	RunID      string       `json:"run_id"`
	FrameCount int          `json:"frame_count"`
	CreatedAt  time.Time    `json:"created_at"`
}
