// Package anchor reduces bounding boxes to the single point used for motion measurements.
package anchor

import (
	"github.com/golang/geo/r2"

	"fieldtrack/internal/model"
)

// Resolve returns the ball's centroid, or the bottom-centre of the box for every other category.
func Resolve(c model.Category, bbox r2.Rect) r2.Point {
	if c == model.CategoryBall {
		return bbox.Center()
	}
	return r2.Point{X: bbox.X.Center(), Y: bbox.Y.Hi}
}

// AddPositions sets Position on every record of the given categories (all when none are given).
func AddPositions(table *model.TrackTable, categories ...model.Category) {
	if len(categories) == 0 {
		categories = table.Categories()
	}
	for _, c := range categories {
		table.EachInCategory(c, func(_, _ int, rec *model.TrackRecord) {
			p := Resolve(c, rec.BBox)
			rec.Position = &p
		})
	}
}
