package projection

import (
	"math"

	"github.com/golang/geo/r2"
)

const edgeEpsilon = 1e-9

// insideOrOnBoundary is an even-odd crossing test that also accepts points on an edge.
func insideOrOnBoundary(polygon []r2.Point, pt r2.Point) bool {
	n := len(polygon)
	inside := false
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := polygon[j], polygon[i]
		if onSegment(a, b, pt) {
			return true
		}
		if (b.Y > pt.Y) != (a.Y > pt.Y) {
			x := (a.X-b.X)*(pt.Y-b.Y)/(a.Y-b.Y) + b.X
			if pt.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

func onSegment(a, b, pt r2.Point) bool {
	ab, ap := b.Sub(a), pt.Sub(a)
	if math.Abs(ab.Cross(ap)) > edgeEpsilon*math.Max(1, ab.Norm()) {
		return false
	}
	return pt.X >= math.Min(a.X, b.X)-edgeEpsilon && pt.X <= math.Max(a.X, b.X)+edgeEpsilon &&
		pt.Y >= math.Min(a.Y, b.Y)-edgeEpsilon && pt.Y <= math.Max(a.Y, b.Y)+edgeEpsilon
}
