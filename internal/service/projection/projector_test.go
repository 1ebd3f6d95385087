package projection

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldtrack/internal/model"
)

var (
	pixelQuad = []r2.Point{{X: 110, Y: 1035}, {X: 265, Y: 275}, {X: 910, Y: 260}, {X: 1640, Y: 915}}
	court     = CourtTarget(23.32, 68)
)

func newDefaultProjector(t *testing.T) *Projector {
	t.Helper()
	p, err := New(Calibration{Pixel: pixelQuad, Target: court})
	require.NoError(t, err)
	return p
}

func TestProject_VerticesMapToCourtCorners(t *testing.T) {
	p := newDefaultProjector(t)

	for i, vertex := range pixelQuad {
		got, ok := p.Project(vertex)
		require.True(t, ok, "vertex %d should be inside", i)
		assert.InDelta(t, court[i].X, got.X, 1e-3, "vertex %d x", i)
		assert.InDelta(t, court[i].Y, got.Y, 1e-3, "vertex %d y", i)
	}
}

func TestProject_OutsideRegionIsUndefined(t *testing.T) {
	p := newDefaultProjector(t)

	for _, pt := range []r2.Point{{X: 0, Y: 0}, {X: 1900, Y: 100}, {X: 50, Y: 1070}} {
		_, ok := p.Project(pt)
		assert.False(t, ok, "%v should be outside", pt)
	}
}

func TestProject_InsideIsWithinCourt(t *testing.T) {
	p := newDefaultProjector(t)

	got, ok := p.Project(r2.Point{X: 730, Y: 600})
	require.True(t, ok)
	assert.True(t, got.X > 0 && got.X < 23.32, "x %f", got.X)
	assert.True(t, got.Y > 0 && got.Y < 68, "y %f", got.Y)
}

func TestProject_IsDeterministic(t *testing.T) {
	p := newDefaultProjector(t)
	a, _ := p.Project(r2.Point{X: 800.25, Y: 512.75})
	b, _ := p.Project(r2.Point{X: 800.25, Y: 512.75})
	assert.Equal(t, a, b)
}

func TestNew_RejectsBadCalibration(t *testing.T) {
	tests := []struct {
		name string
		cal  Calibration
		want error
	}{
		{"empty", Calibration{}, ErrEmptyCalibration},
		{"empty target", Calibration{Pixel: pixelQuad}, ErrEmptyCalibration},
		{"mismatch", Calibration{Pixel: pixelQuad[:3], Target: court}, ErrVertexMismatch},
		{"triangle", Calibration{Pixel: pixelQuad[:3], Target: court[:3]}, ErrVertexCount},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cal)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestNew_RejectsDegenerateQuad(t *testing.T) {
	_, err := New(Calibration{Pixel: make([]r2.Point, 4), Target: court})
	assert.Error(t, err)
}

func TestInsideOrOnBoundary(t *testing.T) {
	square := []r2.Point{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}

	tests := []struct {
		pt   r2.Point
		want bool
	}{
		{r2.Point{X: 5, Y: 5}, true},
		{r2.Point{X: 0, Y: 5}, true},
		{r2.Point{X: 10, Y: 10}, true},
		{r2.Point{X: 5, Y: 0}, true},
		{r2.Point{X: 11, Y: 5}, false},
		{r2.Point{X: -1, Y: -1}, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, insideOrOnBoundary(square, tt.pt), "%v", tt.pt)
	}
}

func TestAddProjections(t *testing.T) {
	p := newDefaultProjector(t)
	table := model.NewTrackTable(1, model.CategoryPlayers)
	inside := r2.Point{X: 910, Y: 260}
	outside := r2.Point{X: 0, Y: 0}
	require.NoError(t, table.Set(model.CategoryPlayers, 0, 1, &model.TrackRecord{Adjusted: &inside}))
	require.NoError(t, table.Set(model.CategoryPlayers, 0, 2, &model.TrackRecord{Adjusted: &outside}))
	require.NoError(t, table.Set(model.CategoryPlayers, 0, 3, &model.TrackRecord{}))

	AddProjections(table, p)

	rec, _ := table.Get(model.CategoryPlayers, 0, 1)
	require.NotNil(t, rec.Projected)
	assert.InDelta(t, 23.32, rec.Projected.X, 1e-3)
	assert.InDelta(t, 0, rec.Projected.Y, 1e-3)

	rec, _ = table.Get(model.CategoryPlayers, 0, 2)
	assert.Nil(t, rec.Projected)
	rec, _ = table.Get(model.CategoryPlayers, 0, 3)
	assert.Nil(t, rec.Projected)
}
