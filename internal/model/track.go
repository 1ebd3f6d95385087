package model

import (
	"errors"
	"fmt"
	"sort"

	"github.com/golang/geo/r1"
	"github.com/golang/geo/r2"
)

// ErrFrameCountMismatch is returned when a category does not cover every frame.
var ErrFrameCountMismatch = errors.New("category frame count does not match table")

// TrackRecord holds one object's state in one frame. Nil fields are not populated yet.
type TrackRecord struct {
	BBox      r2.Rect
	Position  *r2.Point
	Adjusted  *r2.Point
	Projected *r2.Point
	Speed     *float64
	Distance  *float64
}

// NewBBox builds a pixel bounding box from its left, top, right and bottom edges.
func NewBBox(left, top, right, bottom float64) r2.Rect {
	return r2.Rect{X: r1.Interval{Lo: left, Hi: right}, Y: r1.Interval{Lo: top, Hi: bottom}}
}

// FrameTracks maps track ids to records for one frame of one category.
type FrameTracks map[int]*TrackRecord

// TrackIDs returns the ids present in the frame in ascending order.
func (f FrameTracks) TrackIDs() []int {
	ids := make([]int, 0, len(f))
	for id := range f {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// TrackTable is the per-category, per-frame record store every stage enriches in place.
type TrackTable struct {
	frameCount int
	frames     map[Category][]FrameTracks
}

// NewTrackTable creates a table with frameCount empty frames for each category.
func NewTrackTable(frameCount int, categories ...Category) *TrackTable {
	t := &TrackTable{
		frameCount: frameCount,
		frames:     make(map[Category][]FrameTracks, len(categories)),
	}
	for _, c := range categories {
		t.AddCategory(c)
	}
	return t
}

// AddCategory registers an empty category if it is not present yet.
func (t *TrackTable) AddCategory(c Category) {
	if _, ok := t.frames[c]; ok {
		return
	}
	frames := make([]FrameTracks, t.frameCount)
	for i := range frames {
		frames[i] = FrameTracks{}
	}
	t.frames[c] = frames
}

// FrameCount returns the number of frames every category covers.
func (t *TrackTable) FrameCount() int {
	return t.frameCount
}

// Categories returns the table's categories sorted by name.
func (t *TrackTable) Categories() []Category {
	out := make([]Category, 0, len(t.frames))
	for c := range t.frames {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// HasCategory reports whether the category exists in the table.
func (t *TrackTable) HasCategory(c Category) bool {
	_, ok := t.frames[c]
	return ok
}

// Frames returns the frame list of a category, or nil when it is absent.
func (t *TrackTable) Frames(c Category) []FrameTracks {
	return t.frames[c]
}

// Frame returns the tracks of one category in one frame.
func (t *TrackTable) Frame(c Category, frame int) FrameTracks {
	frames := t.frames[c]
	if frame < 0 || frame >= len(frames) {
		return nil
	}
	return frames[frame]
}

// Set stores a record, creating the category on first use.
func (t *TrackTable) Set(c Category, frame, trackID int, rec *TrackRecord) error {
	if frame < 0 || frame >= t.frameCount {
		return fmt.Errorf("frame %d out of range [0,%d)", frame, t.frameCount)
	}
	t.AddCategory(c)
	t.frames[c][frame][trackID] = rec
	return nil
}

// Get looks up one record.
func (t *TrackTable) Get(c Category, frame, trackID int) (*TrackRecord, bool) {
	tracks := t.Frame(c, frame)
	if tracks == nil {
		return nil, false
	}
	rec, ok := tracks[trackID]
	return rec, ok
}

// EachInCategory visits the records of one category by frame, then track id.
func (t *TrackTable) EachInCategory(c Category, fn func(frame, trackID int, rec *TrackRecord)) {
	for frame, tracks := range t.frames[c] {
		for _, id := range tracks.TrackIDs() {
			fn(frame, id, tracks[id])
		}
	}
}

// Each visits every record in a deterministic order.
func (t *TrackTable) Each(fn func(c Category, frame, trackID int, rec *TrackRecord)) {
	for _, c := range t.Categories() {
		t.EachInCategory(c, func(frame, trackID int, rec *TrackRecord) {
			fn(c, frame, trackID, rec)
		})
	}
}

// Len returns the total number of records.
func (t *TrackTable) Len() int {
	n := 0
	for _, frames := range t.frames {
		for _, tracks := range frames {
			n += len(tracks)
		}
	}
	return n
}

// Validate checks that every category covers exactly FrameCount frames.
func (t *TrackTable) Validate() error {
	for c, frames := range t.frames {
		if len(frames) != t.frameCount {
			return fmt.Errorf("%w: %s has %d frames, table has %d", ErrFrameCountMismatch, c, len(frames), t.frameCount)
		}
		for i, tracks := range frames {
			for id, rec := range tracks {
				if rec == nil {
					return fmt.Errorf("%s frame %d track %d: nil record", c, i, id)
				}
			}
		}
	}
	return nil
}
