// Package egomotion estimates per-frame camera pan from background features tracked with sparse optical flow.
package egomotion

import (
	"errors"
	"fmt"
	"io"

	"github.com/golang/geo/r2"

	"fieldtrack/internal/logger"
	"fieldtrack/internal/model"
)

// Frame is one grayscale video frame owned by the estimator until closed.
type Frame interface {
	Close() error
}

// Source yields frames in order and returns io.EOF after the last one.
type Source interface {
	Next() (Frame, error)
}

// FeatureTracker detects background features and propagates them onto the next frame.
// Track returns one position per input point and whether the flow for that point was found.
type FeatureTracker interface {
	Detect(frame Frame) ([]r2.Point, error)
	Track(prev, next Frame, points []r2.Point) ([]r2.Point, []bool, error)
}

type Estimator struct {
	tracker     FeatureTracker
	minDistance float64
	logger      *logger.Logger
}

// NewEstimator builds an estimator that treats displacements up to minDistance pixels as a still camera.
func NewEstimator(tracker FeatureTracker, minDistance float64, logger *logger.Logger) (*Estimator, error) {
	if tracker == nil {
		return nil, errors.New("feature tracker is required")
	}
	if minDistance < 0 {
		return nil, fmt.Errorf("minimum motion distance must not be negative, got %v", minDistance)
	}
	return &Estimator{tracker: tracker, minDistance: minDistance, logger: logger}, nil
}

// Estimate consumes the source and returns one displacement per frame, frame 0 being zero.
func (e *Estimator) Estimate(src Source) (model.CameraMotion, error) {
	prev, err := src.Next()
	if errors.Is(err, io.EOF) {
		return model.CameraMotion{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read first frame: %w", err)
	}
	defer func() { prev.Close() }()

	features, err := e.tracker.Detect(prev)
	if err != nil {
		return nil, fmt.Errorf("detect initial features: %w", err)
	}

	motion := model.CameraMotion{{}}
	moving := 0
	for {
		frame, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read frame %d: %w", len(motion), err)
		}

		var shift r2.Point
		redetect := len(features) == 0
		if !redetect {
			tracked, found, err := e.tracker.Track(prev, frame, features)
			if err != nil {
				e.logger.Warning("Optical flow failed on frame %d: %v", len(motion), err)
			} else {
				shift, redetect = Step(features, tracked, found, e.minDistance)
			}
		}

		if redetect {
			detected, err := e.tracker.Detect(frame)
			if err != nil {
				e.logger.Warning("Feature detection failed on frame %d: %v", len(motion), err)
			} else {
				features = detected
			}
		}
		if shift != (r2.Point{}) {
			moving++
		}

		motion = append(motion, shift)
		prev.Close()
		prev = frame
	}

	e.logger.Info("Camera motion: %d frames, %d with significant pan", len(motion), moving)
	return motion, nil
}

// Step picks the matched pair with the largest displacement. It returns old minus new for that pair
// and true when the displacement exceeds minDistance; otherwise zero and false.
// found may be nil, in which case every pair counts as matched.
func Step(old, tracked []r2.Point, found []bool, minDistance float64) (r2.Point, bool) {
	var best r2.Point
	maxDistance := 0.0
	for i := range old {
		if i >= len(tracked) {
			break
		}
		if found != nil && (i >= len(found) || !found[i]) {
			continue
		}
		d := old[i].Sub(tracked[i])
		if n := d.Norm(); n > maxDistance {
			maxDistance = n
			best = d
		}
	}
	if maxDistance > minDistance {
		return best, true
	}
	return r2.Point{}, false
}
