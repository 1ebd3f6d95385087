package handler

import (
	"fmt"
	"net/http"

	"fieldtrack/internal/dto"
	"fieldtrack/internal/logger"
	"fieldtrack/internal/service/pipeline"
)

// GetRunHandler describes the loaded analysis.
func GetRunHandler(manager *pipeline.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := currentResult(w, manager)
		if res == nil {
			return
		}
		writeJSON(w, logger, res.Info())
	}
}

// GetFrameHandler returns every object of one frame, selected with ?frame=N.
func GetFrameHandler(manager *pipeline.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := currentResult(w, manager)
		if res == nil {
			return
		}
		frame := atoiDefault(r.URL.Query().Get("frame"), 0)
		if frame >= res.Table.FrameCount() {
			http.Error(w, fmt.Sprintf("frame %d out of range", frame), http.StatusBadRequest)
			return
		}
		writeJSON(w, logger, pipeline.BuildFrame(res.Table, res.Motion, frame))
	}
}

// GetMotionHandler returns the per-frame camera displacement.
func GetMotionHandler(manager *pipeline.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := currentResult(w, manager)
		if res == nil {
			return
		}
		out := make([]dto.Point, len(res.Motion))
		for i, m := range res.Motion {
			out[i] = dto.Point{X: m.X, Y: m.Y}
		}
		writeJSON(w, logger, out)
	}
}

// GetSummaryHandler returns max speed and total distance per track.
func GetSummaryHandler(manager *pipeline.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := currentResult(w, manager)
		if res == nil {
			return
		}
		summary := res.Summary
		if summary == nil {
			summary = []dto.TrackSummary{}
		}
		writeJSON(w, logger, summary)
	}
}
