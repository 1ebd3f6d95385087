package kinematics

import (
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldtrack/internal/dto"
	"fieldtrack/internal/logger"
	"fieldtrack/internal/model"
)

// constantVelocityTable places one track per category moving along x at v m/s.
func constantVelocityTable(t *testing.T, frames int, fps, v float64, categories ...model.Category) *model.TrackTable {
	t.Helper()
	table := model.NewTrackTable(frames, categories...)
	for _, c := range categories {
		for f := 0; f < frames; f++ {
			p := r2.Point{X: v * float64(f) / fps, Y: 10}
			require.NoError(t, table.Set(c, f, 1, &model.TrackRecord{Projected: &p}))
		}
	}
	return table
}

func newEstimator(t *testing.T, cfg Config) *Estimator {
	t.Helper()
	e, err := New(cfg, logger.Discard())
	require.NoError(t, err)
	return e
}

func TestApply_ConstantVelocity(t *testing.T) {
	const v = 6.0
	cfg := DefaultConfig()
	table := constantVelocityTable(t, 11, cfg.FrameRate, v, model.CategoryPlayers)

	newEstimator(t, cfg).Apply(table)

	windowDistance := float64(cfg.FrameWindow) / cfg.FrameRate * v
	for f := 0; f < 10; f++ {
		rec, _ := table.Get(model.CategoryPlayers, f, 1)
		require.NotNil(t, rec.Speed, "frame %d", f)
		assert.InDelta(t, v*3.6, *rec.Speed, 1e-9, "frame %d", f)

		windows := float64(f/cfg.FrameWindow + 1)
		assert.InDelta(t, windows*windowDistance, *rec.Distance, 1e-9, "frame %d", f)
	}

	last, _ := table.Get(model.CategoryPlayers, 10, 1)
	assert.Nil(t, last.Speed)
	assert.Nil(t, last.Distance)
}

func TestApply_ClampsFinalWindow(t *testing.T) {
	cfg := DefaultConfig()
	table := model.NewTrackTable(8, model.CategoryPlayers)
	xs := []float64{0, 1, 2, 3, 4, 5, 5.5, 6}
	for f, x := range xs {
		p := r2.Point{X: x}
		require.NoError(t, table.Set(model.CategoryPlayers, f, 3, &model.TrackRecord{Projected: &p}))
	}

	newEstimator(t, cfg).Apply(table)

	// second window is [5,7): 1m over 2 frames
	for _, f := range []int{5, 6} {
		rec, _ := table.Get(model.CategoryPlayers, f, 3)
		require.NotNil(t, rec.Speed)
		assert.InDelta(t, 1/(2/24.0)*3.6, *rec.Speed, 1e-9)
		assert.InDelta(t, 6, *rec.Distance, 1e-9)
	}
	rec, _ := table.Get(model.CategoryPlayers, 7, 3)
	assert.Nil(t, rec.Speed)
}

func TestApply_ExcludedCategoriesUntouched(t *testing.T) {
	cfg := DefaultConfig()
	table := constantVelocityTable(t, 12, cfg.FrameRate, 3, model.CategoryBall, model.CategoryReferees, model.CategoryPlayers)

	newEstimator(t, cfg).Apply(table)

	for _, c := range []model.Category{model.CategoryBall, model.CategoryReferees} {
		table.EachInCategory(c, func(frame, id int, rec *model.TrackRecord) {
			assert.Nil(t, rec.Speed, "%s frame %d", c, frame)
			assert.Nil(t, rec.Distance, "%s frame %d", c, frame)
		})
	}
	rec, _ := table.Get(model.CategoryPlayers, 0, 1)
	assert.NotNil(t, rec.Speed)
}

func TestApply_SkipsUndefinedProjectionAndMissingEndpoint(t *testing.T) {
	table := model.NewTrackTable(6, model.CategoryPlayers)
	for f := 0; f < 6; f++ {
		p := r2.Point{X: float64(f)}
		// track 1 leaves the calibrated region at the window end
		rec1 := &model.TrackRecord{Projected: &p}
		if f == 5 {
			rec1.Projected = nil
		}
		require.NoError(t, table.Set(model.CategoryPlayers, f, 1, rec1))
		// track 2 is never projected
		require.NoError(t, table.Set(model.CategoryPlayers, f, 2, &model.TrackRecord{}))
		// track 3 disappears before the window end
		if f < 4 {
			q := r2.Point{X: float64(f)}
			require.NoError(t, table.Set(model.CategoryPlayers, f, 3, &model.TrackRecord{Projected: &q}))
		}
	}

	newEstimator(t, DefaultConfig()).Apply(table)

	table.Each(func(c model.Category, frame, id int, rec *model.TrackRecord) {
		assert.Nil(t, rec.Speed, "frame %d track %d", frame, id)
		assert.Nil(t, rec.Distance, "frame %d track %d", frame, id)
	})
}

func TestApply_OnlyStampsFramesWhereTrackExists(t *testing.T) {
	table := model.NewTrackTable(6, model.CategoryPlayers)
	for _, f := range []int{0, 2, 5} {
		p := r2.Point{X: float64(f)}
		require.NoError(t, table.Set(model.CategoryPlayers, f, 8, &model.TrackRecord{Projected: &p}))
	}

	newEstimator(t, DefaultConfig()).Apply(table)

	for _, f := range []int{0, 2} {
		rec, _ := table.Get(model.CategoryPlayers, f, 8)
		require.NotNil(t, rec.Speed)
		assert.InDelta(t, 5/(5/24.0)*3.6, *rec.Speed, 1e-9)
	}
	_, ok := table.Get(model.CategoryPlayers, 1, 8)
	assert.False(t, ok)
}

func TestNew_RejectsInvalidConfig(t *testing.T) {
	_, err := New(Config{FrameWindow: 5, FrameRate: 0}, logger.Discard())
	assert.ErrorIs(t, err, ErrInvalidFrameRate)

	_, err = New(Config{FrameWindow: 5, FrameRate: -1}, logger.Discard())
	assert.ErrorIs(t, err, ErrInvalidFrameRate)

	_, err = New(Config{FrameWindow: 0, FrameRate: 24}, logger.Discard())
	assert.ErrorIs(t, err, ErrInvalidFrameWindow)
}

func TestSummarize(t *testing.T) {
	cfg := DefaultConfig()
	table := constantVelocityTable(t, 11, cfg.FrameRate, 6, model.CategoryPlayers, model.CategoryBall)
	newEstimator(t, cfg).Apply(table)

	got := Summarize(table)
	want := []dto.TrackSummary{{
		Category:   "players",
		TrackID:    1,
		MaxSpeed:   21.6,
		Distance:   2.5,
		FirstFrame: 0,
		LastFrame:  9,
	}}
	if diff := cmp.Diff(want, got, cmpApprox()); diff != "" {
		t.Errorf("Summarize mismatch (-want +got):\n%s", diff)
	}

	series := SpeedSeries(table, model.CategoryPlayers, 1)
	assert.Len(t, series, 10)
	assert.Empty(t, SpeedSeries(table, model.CategoryBall, 1))
}

func cmpApprox() cmp.Option {
	return cmp.Comparer(func(a, b float64) bool {
		d := a - b
		return d < 1e-9 && d > -1e-9
	})
}
