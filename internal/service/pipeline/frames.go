package pipeline

import (
	"github.com/golang/geo/r2"

	"fieldtrack/internal/dto"
	"fieldtrack/internal/model"
)

// BuildFrame collects every object of one frame for the overlay.
func BuildFrame(table *model.TrackTable, motion model.CameraMotion, frame int) dto.FrameResult {
	m := motion.At(frame)
	out := dto.FrameResult{
		Frame:        frame,
		FrameCount:   table.FrameCount(),
		CameraMotion: dto.Point{X: m.X, Y: m.Y},
		Objects:      []dto.ObjectState{},
	}
	for _, c := range table.Categories() {
		tracks := table.Frame(c, frame)
		for _, id := range tracks.TrackIDs() {
			rec := tracks[id]
			out.Objects = append(out.Objects, dto.ObjectState{
				Category:  string(c),
				TrackID:   id,
				BBox:      [4]float64{rec.BBox.X.Lo, rec.BBox.Y.Lo, rec.BBox.X.Hi, rec.BBox.Y.Hi},
				Position:  toPoint(rec.Position),
				Adjusted:  toPoint(rec.Adjusted),
				Projected: toPoint(rec.Projected),
				Speed:     rec.Speed,
				Distance:  rec.Distance,
			})
		}
	}
	return out
}

func toPoint(p *r2.Point) *dto.Point {
	if p == nil {
		return nil
	}
	return &dto.Point{X: p.X, Y: p.Y}
}
