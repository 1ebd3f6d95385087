package handler

import (
	"bytes"
	"fmt"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"fieldtrack/internal/logger"
	"fieldtrack/internal/model"
	"fieldtrack/internal/service/kinematics"
	"fieldtrack/internal/service/pipeline"
)

// SpeedChartHandler renders a track's speed over time as an HTML line chart.
// Query params: category (default players), track (required).
func SpeedChartHandler(manager *pipeline.Manager, logger *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		res := currentResult(w, manager)
		if res == nil {
			return
		}

		q := r.URL.Query()
		category := model.CategoryPlayers
		if name := q.Get("category"); name != "" {
			c, err := model.ParseCategory(name)
			if err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			category = c
		}
		trackID := atoiDefault(q.Get("track"), -1)
		if trackID < 0 {
			http.Error(w, "track is required", http.StatusBadRequest)
			return
		}

		samples := kinematics.SpeedSeries(res.Table, category, trackID)
		if len(samples) == 0 {
			http.Error(w, fmt.Sprintf("no speed data for %s track %d", category, trackID), http.StatusNotFound)
			return
		}

		frames := make([]int, 0, len(samples))
		speeds := make([]opts.LineData, 0, len(samples))
		for _, s := range samples {
			frames = append(frames, s.Frame)
			speeds = append(speeds, opts.LineData{Value: s.Speed})
		}

		line := charts.NewLine()
		line.SetGlobalOptions(
			charts.WithInitializationOpts(opts.Initialization{PageTitle: "Track speed", Width: "100%", Height: "600px"}),
			charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("%s #%d", category, trackID), Subtitle: "run " + res.RunID}),
			charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
			charts.WithXAxisOpts(opts.XAxis{Name: "frame", NameLocation: "middle", NameGap: 25}),
			charts.WithYAxisOpts(opts.YAxis{Name: "km/h"}),
		)
		line.SetXAxis(frames).AddSeries("speed", speeds)

		var buf bytes.Buffer
		if err := line.Render(&buf); err != nil {
			logger.Error("Failed to render speed chart: %v", err)
			http.Error(w, "failed to render chart", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(buf.Bytes())
	}
}
