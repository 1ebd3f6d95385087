package egomotion

import (
	"errors"
	"io"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldtrack/internal/logger"
	"fieldtrack/internal/model"
)

type fakeFrame struct {
	index  int
	closed bool
}

func (f *fakeFrame) Close() error {
	f.closed = true
	return nil
}

type fakeSource struct {
	frames []*fakeFrame
	next   int
}

func newFakeSource(n int) *fakeSource {
	s := &fakeSource{}
	for i := 0; i < n; i++ {
		s.frames = append(s.frames, &fakeFrame{index: i})
	}
	return s
}

func (s *fakeSource) Next() (Frame, error) {
	if s.next >= len(s.frames) {
		return nil, io.EOF
	}
	f := s.frames[s.next]
	s.next++
	return f, nil
}

// scriptedTracker moves every feature by -shift[frame] so that old minus new equals shift[frame].
type scriptedTracker struct {
	features []r2.Point
	shift    map[int]r2.Point
	lost     map[int]bool
	failOn   map[int]bool
	detected []int
}

func (s *scriptedTracker) Detect(frame Frame) ([]r2.Point, error) {
	s.detected = append(s.detected, frame.(*fakeFrame).index)
	return append([]r2.Point(nil), s.features...), nil
}

func (s *scriptedTracker) Track(_, next Frame, points []r2.Point) ([]r2.Point, []bool, error) {
	idx := next.(*fakeFrame).index
	if s.failOn[idx] {
		return nil, nil, errors.New("flow diverged")
	}
	out := make([]r2.Point, len(points))
	found := make([]bool, len(points))
	for i, p := range points {
		out[i] = p.Sub(s.shift[idx])
		found[i] = !s.lost[idx]
	}
	return out, found, nil
}

func estimate(t *testing.T, tracker FeatureTracker, frames int) (model.CameraMotion, *fakeSource) {
	t.Helper()
	e, err := NewEstimator(tracker, 5, logger.Discard())
	require.NoError(t, err)
	src := newFakeSource(frames)
	motion, err := e.Estimate(src)
	require.NoError(t, err)
	return motion, src
}

func TestEstimate_ThresholdGating(t *testing.T) {
	tracker := &scriptedTracker{
		features: []r2.Point{{X: 10, Y: 10}, {X: 950, Y: 400}},
		shift: map[int]r2.Point{
			1: {X: 3, Y: 4},  // exactly at the threshold: still
			2: {X: 12, Y: 0}, // pan
			3: {X: 1, Y: 1},  // jitter
		},
	}

	motion, src := estimate(t, tracker, 4)

	want := model.CameraMotion{{}, {}, {X: 12, Y: 0}, {}}
	if diff := cmp.Diff(want, motion); diff != "" {
		t.Errorf("motion mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, []int{0, 2}, tracker.detected, "only the initial frame and the panning frame re-detect")
	for _, f := range src.frames {
		assert.True(t, f.closed, "frame %d should be closed", f.index)
	}
}

func TestEstimate_ZeroMatchesYieldZeroMotion(t *testing.T) {
	tracker := &scriptedTracker{
		features: []r2.Point{{X: 5, Y: 5}},
		shift:    map[int]r2.Point{1: {X: 40, Y: 40}, 2: {X: 40}},
		lost:     map[int]bool{1: true},
		failOn:   map[int]bool{2: true},
	}

	motion, _ := estimate(t, tracker, 3)

	assert.Equal(t, model.CameraMotion{{}, {}, {}}, motion)
	assert.Equal(t, []int{0}, tracker.detected)
}

func TestEstimate_EmptyFeatureSetRedetects(t *testing.T) {
	tracker := &scriptedTracker{}

	motion, _ := estimate(t, tracker, 3)

	assert.Len(t, motion, 3)
	assert.Equal(t, []int{0, 1, 2}, tracker.detected)
}

func TestEstimate_EmptySource(t *testing.T) {
	motion, _ := estimate(t, &scriptedTracker{}, 0)
	assert.Empty(t, motion)
}

func TestNewEstimator_Validation(t *testing.T) {
	_, err := NewEstimator(nil, 5, logger.Discard())
	assert.Error(t, err)
	_, err = NewEstimator(&scriptedTracker{}, -1, logger.Discard())
	assert.Error(t, err)
}

func TestStep(t *testing.T) {
	old := []r2.Point{{X: 0, Y: 0}, {X: 100, Y: 100}, {X: 50, Y: 50}}

	tests := []struct {
		name     string
		tracked  []r2.Point
		found    []bool
		want     r2.Point
		redetect bool
	}{
		{
			name:    "below threshold",
			tracked: []r2.Point{{X: 1, Y: 1}, {X: 102, Y: 100}, {X: 50, Y: 53}},
		},
		{
			name:     "largest pair wins",
			tracked:  []r2.Point{{X: 1, Y: 1}, {X: 110, Y: 100}, {X: 50, Y: 56}},
			want:     r2.Point{X: -10, Y: 0},
			redetect: true,
		},
		{
			name:     "lost pairs ignored",
			tracked:  []r2.Point{{X: 1, Y: 1}, {X: 110, Y: 100}, {X: 50, Y: 56}},
			found:    []bool{true, false, true},
			want:     r2.Point{X: 0, Y: -6},
			redetect: true,
		},
		{
			name:    "no matches",
			tracked: []r2.Point{{X: 90}, {X: 0}, {X: 0}},
			found:   []bool{false, false, false},
		},
		{
			name: "no tracked points",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, redetect := Step(old, tt.tracked, tt.found, 5)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.redetect, redetect)
		})
	}
}
