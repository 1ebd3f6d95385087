package kinematics

import (
	"sort"

	"fieldtrack/internal/dto"
	"fieldtrack/internal/model"
)

// Summarize reports max speed and final distance for every track that received kinematic data.
func Summarize(table *model.TrackTable) []dto.TrackSummary {
	var out []dto.TrackSummary
	for _, c := range table.Categories() {
		index := make(map[int]int)
		table.EachInCategory(c, func(frame, id int, rec *model.TrackRecord) {
			if rec.Speed == nil || rec.Distance == nil {
				return
			}
			i, ok := index[id]
			if !ok {
				i = len(out)
				index[id] = i
				out = append(out, dto.TrackSummary{Category: string(c), TrackID: id, FirstFrame: frame})
			}
			s := &out[i]
			s.MaxSpeed = max(s.MaxSpeed, *rec.Speed)
			s.Distance = max(s.Distance, *rec.Distance)
			s.LastFrame = frame
		})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Category != out[j].Category {
			return out[i].Category < out[j].Category
		}
		return out[i].TrackID < out[j].TrackID
	})
	return out
}

// SpeedSeries returns the per-frame speed of one track, skipping frames without data.
func SpeedSeries(table *model.TrackTable, c model.Category, trackID int) []dto.SpeedSample {
	var out []dto.SpeedSample
	for frame, tracks := range table.Frames(c) {
		if rec, ok := tracks[trackID]; ok && rec.Speed != nil {
			out = append(out, dto.SpeedSample{Frame: frame, Speed: *rec.Speed})
		}
	}
	return out
}
