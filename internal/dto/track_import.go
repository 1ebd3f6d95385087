package dto

// TrackImport is the detection and tracking engine's output: category name to per-frame
// maps of track id (as a string key) to the tracked box.
type TrackImport map[string][]map[string]ImportedTrack

// ImportedTrack is one box as left, top, right, bottom pixels.
type ImportedTrack struct {
	BBox [4]float64 `json:"bbox"`
}
