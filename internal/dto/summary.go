package dto

// TrackSummary aggregates the kinematic output of one track.
type TrackSummary struct {
	Category   string  `json:"category"`
	TrackID    int     `json:"track_id"`
	MaxSpeed   float64 `json:"max_speed_kmh"`
	Distance   float64 `json:"distance_m"`
	FirstFrame int     `json:"first_frame"`
	LastFrame  int     `json:"last_frame"`
}

// SpeedSample is one point of a track's speed chart.
type SpeedSample struct {
	Frame int     `json:"frame"`
	Speed float64 `json:"speed_kmh"`
}
