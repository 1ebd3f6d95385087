package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"text/tabwriter"

	"fieldtrack/internal/app"
	"fieldtrack/internal/config"
	"fieldtrack/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	flag.StringVar(&cfg.VideoPath, "video", cfg.VideoPath, "Input video")
	flag.StringVar(&cfg.TracksPath, "tracks", cfg.TracksPath, "Track JSON produced by the tracker")
	flag.StringVar(&cfg.MotionCachePath, "motion-cache", cfg.MotionCachePath, "Camera motion cache file")
	flag.StringVar(&cfg.TracksCachePath, "tracks-cache", cfg.TracksCachePath, "Enriched track cache file")
	flag.BoolVar(&cfg.UseCache, "use-cache", cfg.UseCache, "Load results from the cache files when present")
	flag.Parse()

	log.SetFlags(0)
	lg := logger.NewLogger(cfg)
	defer lg.Close()

	application, err := app.New(cfg, lg)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	res, err := application.Analyze()
	if err != nil {
		log.Fatalf("Analysis failed: %v", err)
	}

	fmt.Printf("Run %s: %d frames (motion cached: %t, tracks cached: %t)\n\n",
		res.RunID, res.Table.FrameCount(), res.MotionCached, res.TracksCached)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(w, "category\ttrack\tfirst\tlast\tdistance (m)\tmax speed (km/h)\t")
	for _, s := range res.Summary {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%.1f\t%.1f\t\n", s.Category, s.TrackID, s.FirstFrame, s.LastFrame, s.Distance, s.MaxSpeed)
	}
	w.Flush()
}
