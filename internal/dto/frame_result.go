package dto

import "time"

// Point is a 2D coordinate in pixels or meters depending on the field.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// ObjectState is one tracked object in one frame as sent to viewers.
type ObjectState struct {
	Category  string     `json:"category"`
	TrackID   int        `json:"track_id"`
	BBox      [4]float64 `json:"bbox"`
	Position  *Point     `json:"position,omitempty"`
	Adjusted  *Point     `json:"adjusted,omitempty"`
	Projected *Point     `json:"projected,omitempty"`
	Speed     *float64   `json:"speed_kmh,omitempty"`
	Distance  *float64   `json:"distance_m,omitempty"`
}

// FrameResult carries everything the overlay needs to draw one frame.
type FrameResult struct {
	Frame        int           `json:"frame"`
	FrameCount   int           `json:"frame_count"`
	CameraMotion Point         `json:"camera_motion"`
	Objects      []ObjectState `json:"objects"`
}

// SnapshotInfo describes one stored cache entry.
type SnapshotInfo struct {
	Kind       string    `json:"kind"`
	RunID      string    `json:"run_id"`
	FrameCount int       `json:"frame_count"`
	CreatedAt  time.Time `json:"created_at"`
}

// RunInfo describes the loaded analysis.
type RunInfo struct {
	RunID        string         `json:"run_id"`
	FrameCount   int            `json:"frame_count"`
	Categories   []string       `json:"categories"`
	MotionCached bool           `json:"motion_cached"`
	TracksCached bool           `json:"tracks_cached"`
	Snapshots    []SnapshotInfo `json:"snapshots,omitempty"`
}
