// Package kinematics derives windowed speed and running distance from projected trajectories.
package kinematics

import (
	"errors"
	"fmt"

	"fieldtrack/internal/logger"
	"fieldtrack/internal/model"
)

var (
	ErrInvalidFrameRate   = errors.New("frame rate must be positive")
	ErrInvalidFrameWindow = errors.New("frame window must be at least one frame")
)

// msToKmh converts meters per second to kilometers per hour.
const msToKmh = 3.6

type Config struct {
	FrameWindow int
	FrameRate   float64
	Excluded    []model.Category
}

// DefaultConfig matches a 24 fps broadcast sampled in five-frame windows.
func DefaultConfig() Config {
	return Config{
		FrameWindow: 5,
		FrameRate:   24,
		Excluded:    []model.Category{model.CategoryBall, model.CategoryReferees},
	}
}

// Estimator writes Speed (km/h) and Distance (m) from Projected. It never touches excluded categories.
type Estimator struct {
	window   int
	fps      float64
	excluded map[model.Category]bool
	logger   *logger.Logger
}

func New(cfg Config, logger *logger.Logger) (*Estimator, error) {
	if cfg.FrameRate <= 0 {
		return nil, fmt.Errorf("%w: %v", ErrInvalidFrameRate, cfg.FrameRate)
	}
	if cfg.FrameWindow < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidFrameWindow, cfg.FrameWindow)
	}
	excluded := make(map[model.Category]bool, len(cfg.Excluded))
	for _, c := range cfg.Excluded {
		excluded[c] = true
	}
	return &Estimator{window: cfg.FrameWindow, fps: cfg.FrameRate, excluded: excluded, logger: logger}, nil
}

// Includes reports whether the category takes part in kinematic estimation.
func (e *Estimator) Includes(c model.Category) bool {
	return !e.excluded[c]
}

// Apply processes every included category of the table.
func (e *Estimator) Apply(table *model.TrackTable) {
	for _, c := range table.Categories() {
		e.ApplyCategory(table, c)
	}
}

// ApplyCategory processes one category. Distances accumulate per track id across the whole sequence.
func (e *Estimator) ApplyCategory(table *model.TrackTable, c model.Category) {
	if !e.Includes(c) {
		return
	}
	frames := table.Frames(c)
	last := len(frames) - 1
	total := make(map[int]float64)
	windows := 0

	for start := 0; start <= last; start += e.window {
		end := min(start+e.window, last)
		if end <= start {
			continue
		}
		elapsed := float64(end-start) / e.fps

		for _, id := range frames[start].TrackIDs() {
			endRec, ok := frames[end][id]
			if !ok {
				continue
			}
			from, to := frames[start][id].Projected, endRec.Projected
			if from == nil || to == nil {
				continue
			}

			distance := to.Sub(*from).Norm()
			speed := distance / elapsed * msToKmh
			total[id] += distance
			windows++

			for f := start; f < end; f++ {
				rec, ok := frames[f][id]
				if !ok {
					continue
				}
				s, d := speed, total[id]
				rec.Speed = &s
				rec.Distance = &d
			}
		}
	}

	e.logger.Info("Kinematics: %s processed %d track windows over %d frames", c, windows, len(frames))
}
