package egomotion

import (
	"fmt"
	"image"

	"github.com/golang/geo/r2"
	"gocv.io/x/gocv"
)

// Strip is a half-open column range [Start, End) searched for background features.
type Strip struct {
	Start int
	End   int
}

// TrackerConfig holds corner detection and Lucas-Kanade parameters.
type TrackerConfig struct {
	MaxCorners    int
	QualityLevel  float64
	MinDistance   float64
	Strips        []Strip
	Window        int
	MaxLevel      int
	MaxIterations int
	Epsilon       float64
}

// DefaultTrackerConfig searches the left and right border strips of a 1920px broadcast frame.
func DefaultTrackerConfig() TrackerConfig {
	return TrackerConfig{
		MaxCorners:    100,
		QualityLevel:  0.3,
		MinDistance:   3,
		Strips:        []Strip{{Start: 0, End: 20}, {Start: 900, End: 1050}},
		Window:        15,
		MaxLevel:      2,
		MaxIterations: 10,
		Epsilon:       0.03,
	}
}

// MatFrame is a grayscale gocv frame.
type MatFrame struct {
	gocv.Mat
}

func (f *MatFrame) Close() error {
	return f.Mat.Close()
}

// GocvTracker runs Shi-Tomasi corner detection inside the mask strips and pyramidal LK flow.
type GocvTracker struct {
	cfg      TrackerConfig
	criteria gocv.TermCriteria
}

func NewGocvTracker(cfg TrackerConfig) (*GocvTracker, error) {
	if cfg.MaxCorners < 1 {
		return nil, fmt.Errorf("max corners must be positive, got %d", cfg.MaxCorners)
	}
	if len(cfg.Strips) == 0 {
		return nil, fmt.Errorf("at least one mask strip is required")
	}
	if cfg.Window < 3 {
		return nil, fmt.Errorf("flow window must be at least 3, got %d", cfg.Window)
	}
	return &GocvTracker{
		cfg:      cfg,
		criteria: gocv.NewTermCriteria(gocv.Count|gocv.EPS, cfg.MaxIterations, cfg.Epsilon),
	}, nil
}

func asMat(f Frame) (gocv.Mat, error) {
	mf, ok := f.(*MatFrame)
	if !ok {
		return gocv.Mat{}, fmt.Errorf("unsupported frame type %T", f)
	}
	if mf.Empty() {
		return gocv.Mat{}, fmt.Errorf("empty frame")
	}
	return mf.Mat, nil
}

// Detect returns up to MaxCorners features, taken in turn from each strip's quality-ordered corners.
func (t *GocvTracker) Detect(frame Frame) ([]r2.Point, error) {
	img, err := asMat(frame)
	if err != nil {
		return nil, err
	}

	var perStrip [][]r2.Point
	for _, s := range clampStrips(t.cfg.Strips, img.Cols()) {
		region := img.Region(image.Rect(s.Start, 0, s.End, img.Rows()))
		corners := gocv.NewMat()
		if err := gocv.GoodFeaturesToTrack(region, &corners, t.cfg.MaxCorners, t.cfg.QualityLevel, t.cfg.MinDistance); err != nil {
			corners.Close()
			region.Close()
			return nil, fmt.Errorf("detect corners in strip %d-%d: %w", s.Start, s.End, err)
		}

		points := make([]r2.Point, 0, corners.Rows())
		for i := 0; i < corners.Rows(); i++ {
			v := corners.GetVecfAt(i, 0)
			points = append(points, r2.Point{X: float64(v[0]) + float64(s.Start), Y: float64(v[1])})
		}
		corners.Close()
		region.Close()
		perStrip = append(perStrip, points)
	}

	return interleave(perStrip, t.cfg.MaxCorners), nil
}

// Track propagates points from prev onto next with pyramidal Lucas-Kanade flow.
func (t *GocvTracker) Track(prev, next Frame, points []r2.Point) ([]r2.Point, []bool, error) {
	prevImg, err := asMat(prev)
	if err != nil {
		return nil, nil, err
	}
	nextImg, err := asMat(next)
	if err != nil {
		return nil, nil, err
	}
	if len(points) == 0 {
		return nil, nil, nil
	}

	prevPts := gocv.NewMatWithSize(len(points), 2, gocv.MatTypeCV32F)
	defer prevPts.Close()
	for i, p := range points {
		prevPts.SetFloatAt(i, 0, float32(p.X))
		prevPts.SetFloatAt(i, 1, float32(p.Y))
	}

	nextPts := gocv.NewMat()
	defer nextPts.Close()
	status := gocv.NewMat()
	defer status.Close()
	flowErr := gocv.NewMat()
	defer flowErr.Close()

	if err := gocv.CalcOpticalFlowPyrLKWithParams(prevImg, nextImg, prevPts, nextPts, &status, &flowErr,
		image.Pt(t.cfg.Window, t.cfg.Window), t.cfg.MaxLevel, t.criteria, 0, 1e-4); err != nil {
		return nil, nil, fmt.Errorf("optical flow for %d points: %w", len(points), err)
	}

	if nextPts.Rows() != len(points) || status.Rows() != len(points) {
		return nil, nil, fmt.Errorf("optical flow returned %d points for %d inputs", nextPts.Rows(), len(points))
	}

	tracked := make([]r2.Point, len(points))
	found := make([]bool, len(points))
	for i := range points {
		tracked[i] = r2.Point{X: float64(nextPts.GetFloatAt(i, 0)), Y: float64(nextPts.GetFloatAt(i, 1))}
		found[i] = status.GetUCharAt(i, 0) == 1
	}
	return tracked, found, nil
}

// clampStrips limits strips to the frame width and drops the empty ones.
func clampStrips(strips []Strip, width int) []Strip {
	out := make([]Strip, 0, len(strips))
	for _, s := range strips {
		start, end := max(s.Start, 0), min(s.End, width)
		if end > start {
			out = append(out, Strip{Start: start, End: end})
		}
	}
	return out
}

// interleave merges per-strip lists round-robin so the best corners of every strip come first.
func interleave(lists [][]r2.Point, limit int) []r2.Point {
	var out []r2.Point
	for i := 0; len(out) < limit; i++ {
		added := false
		for _, l := range lists {
			if i < len(l) && len(out) < limit {
				out = append(out, l[i])
				added = true
			}
		}
		if !added {
			break
		}
	}
	return out
}
