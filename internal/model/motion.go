package model

import "github.com/golang/geo/r2"

// CameraMotion holds the per-frame camera displacement in pixels. Entry 0 is always zero.
type CameraMotion []r2.Point

// NewCameraMotion returns an all-zero motion track.
func NewCameraMotion(frameCount int) CameraMotion {
	return make(CameraMotion, frameCount)
}

// At returns the displacement of a frame, zero when out of range.
func (m CameraMotion) At(frame int) r2.Point {
	if frame < 0 || frame >= len(m) {
		return r2.Point{}
	}
	return m[frame]
}
