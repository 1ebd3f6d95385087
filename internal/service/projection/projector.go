// Package projection maps compensated pixel positions onto field coordinates in meters.
package projection

import (
	"errors"
	"fmt"
	"math"

	"github.com/golang/geo/r2"
	"gonum.org/v1/gonum/mat"

	"fieldtrack/internal/model"
)

var (
	ErrEmptyCalibration = errors.New("calibration has no vertices")
	ErrVertexMismatch   = errors.New("pixel and target vertex counts differ")
	ErrVertexCount      = errors.New("perspective calibration needs exactly four vertices")
)

// Calibration pairs the pixel quadrilateral with the field rectangle corners, vertex by vertex.
type Calibration struct {
	Pixel  []r2.Point
	Target []r2.Point
}

// CourtTarget returns the field rectangle in the winding used by the default pixel quadrilateral.
func CourtTarget(length, width float64) []r2.Point {
	return []r2.Point{
		{X: 0, Y: width},
		{X: 0, Y: 0},
		{X: length, Y: 0},
		{X: length, Y: width},
	}
}

// Projector applies a fixed homography to points inside the calibrated region.
type Projector struct {
	polygon []r2.Point
	h       [9]float64
}

// New solves the homography for the calibration and rejects malformed vertex sets.
func New(cal Calibration) (*Projector, error) {
	if len(cal.Pixel) == 0 || len(cal.Target) == 0 {
		return nil, ErrEmptyCalibration
	}
	if len(cal.Pixel) != len(cal.Target) {
		return nil, fmt.Errorf("%w: %d pixel, %d target", ErrVertexMismatch, len(cal.Pixel), len(cal.Target))
	}
	if len(cal.Pixel) != 4 {
		return nil, fmt.Errorf("%w: got %d", ErrVertexCount, len(cal.Pixel))
	}

	a := mat.NewDense(8, 8, nil)
	b := mat.NewVecDense(8, nil)
	for i := 0; i < 4; i++ {
		x, y := cal.Pixel[i].X, cal.Pixel[i].Y
		u, v := cal.Target[i].X, cal.Target[i].Y
		a.SetRow(2*i, []float64{x, y, 1, 0, 0, 0, -u * x, -u * y})
		a.SetRow(2*i+1, []float64{0, 0, 0, x, y, 1, -v * x, -v * y})
		b.SetVec(2*i, u)
		b.SetVec(2*i+1, v)
	}

	var sol mat.VecDense
	if err := sol.SolveVec(a, b); err != nil {
		return nil, fmt.Errorf("solve perspective transform: %w", err)
	}

	p := &Projector{polygon: append([]r2.Point(nil), cal.Pixel...)}
	for i := 0; i < 8; i++ {
		p.h[i] = sol.AtVec(i)
	}
	p.h[8] = 1
	return p, nil
}

// Project maps a pixel point to field coordinates. ok is false outside the calibrated region.
func (p *Projector) Project(pt r2.Point) (r2.Point, bool) {
	probe := r2.Point{X: math.Trunc(pt.X), Y: math.Trunc(pt.Y)}
	if !insideOrOnBoundary(p.polygon, probe) {
		return r2.Point{}, false
	}
	return p.transform(pt), true
}

func (p *Projector) transform(pt r2.Point) r2.Point {
	h := p.h
	w := h[6]*pt.X + h[7]*pt.Y + h[8]
	return r2.Point{
		X: (h[0]*pt.X + h[1]*pt.Y + h[2]) / w,
		Y: (h[3]*pt.X + h[4]*pt.Y + h[5]) / w,
	}
}

// AddProjections sets Projected from Adjusted on the given categories (all when none are given).
// Records outside the region keep a nil Projected.
func AddProjections(table *model.TrackTable, p *Projector, categories ...model.Category) {
	if len(categories) == 0 {
		categories = table.Categories()
	}
	for _, c := range categories {
		table.EachInCategory(c, func(_, _ int, rec *model.TrackRecord) {
			rec.Projected = nil
			if rec.Adjusted == nil {
				return
			}
			if out, ok := p.Project(*rec.Adjusted); ok {
				rec.Projected = &out
			}
		})
	}
}
