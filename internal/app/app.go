package app

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"fieldtrack/internal/cache"
	"fieldtrack/internal/config"
	"fieldtrack/internal/logger"
	"fieldtrack/internal/model"
	"fieldtrack/internal/routes"
	"fieldtrack/internal/service/egomotion"
	"fieldtrack/internal/service/kinematics"
	"fieldtrack/internal/service/pipeline"
	"fieldtrack/internal/service/projection"
	"fieldtrack/internal/service/video"
	"fieldtrack/internal/service/websocket"
)

type App struct {
	config     *config.Config
	logger     *logger.Logger
	hubService *websocket.HubService
	manager    *pipeline.Manager
	session    string
}

// NewApp loads the environment configuration and builds the application around it.
func NewApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	return New(cfg, logger.NewLogger(cfg))
}

// New wires the pipeline services for cfg.
func New(cfg *config.Config, log *logger.Logger) (*App, error) {
	trackerCfg := egomotion.TrackerConfig{
		MaxCorners:    cfg.MaxCorners,
		QualityLevel:  cfg.QualityLevel,
		MinDistance:   cfg.MinFeatureDistance,
		Window:        cfg.FlowWindow,
		MaxLevel:      cfg.FlowMaxLevel,
		MaxIterations: cfg.FlowMaxIterations,
		Epsilon:       cfg.FlowEpsilon,
	}
	for _, s := range cfg.MaskStrips {
		trackerCfg.Strips = append(trackerCfg.Strips, egomotion.Strip{Start: s.Start, End: s.End})
	}
	tracker, err := egomotion.NewGocvTracker(trackerCfg)
	if err != nil {
		return nil, fmt.Errorf("feature tracker: %w", err)
	}
	estimator, err := egomotion.NewEstimator(tracker, cfg.MinMotionDistance, log)
	if err != nil {
		return nil, fmt.Errorf("camera motion estimator: %w", err)
	}

	projector, err := projection.New(projection.Calibration{
		Pixel:  cfg.PixelVertices,
		Target: projection.CourtTarget(cfg.CourtLength, cfg.CourtWidth),
	})
	if err != nil {
		return nil, fmt.Errorf("field projector: %w", err)
	}

	excluded := make([]model.Category, 0, len(cfg.KinematicsExcluded))
	for _, name := range cfg.KinematicsExcluded {
		c, err := model.ParseCategory(name)
		if err != nil {
			return nil, fmt.Errorf("KINEMATICS_EXCLUDED: %w", err)
		}
		excluded = append(excluded, c)
	}
	kin, err := kinematics.New(kinematics.Config{
		FrameWindow: cfg.FrameWindow,
		FrameRate:   cfg.FrameRate,
		Excluded:    excluded,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("kinematics: %w", err)
	}

	hub := websocket.NewHubService(log)
	mng := pipeline.NewManager(estimator, projector, kin, cache.New(log), hub, cfg, log)

	return &App{
		config:     cfg,
		logger:     log,
		hubService: hub,
		manager:    mng,
		session:    uuid.NewString(),
	}, nil
}

// Input reads the configured video and track file, with both caches enabled when UseCache is set.
func Input(cfg *config.Config, log *logger.Logger) pipeline.Input {
	return pipeline.Input{
		OpenVideo: func() (pipeline.VideoSource, error) {
			r, err := video.Open(cfg.VideoPath)
			if err != nil {
				return nil, err
			}
			checkFrameRate(log, cfg.VideoPath, r.FPS(), r.FrameCount(), cfg.FrameRate)
			return r, nil
		},
		LoadTracks: func() (*model.TrackTable, error) {
			return pipeline.LoadTrackTable(cfg.TracksPath)
		},
		MotionCache: cache.Options{Path: cfg.MotionCachePath, Read: cfg.UseCache},
		TracksCache: cache.Options{Path: cfg.TracksCachePath, Read: cfg.UseCache},
	}
}

// checkFrameRate warns when the container's frame rate differs from the one used for speeds.
func checkFrameRate(log *logger.Logger, path string, fps float64, frames int, configured float64) {
	log.Info("Video %s: %d frames at %.2f fps", path, frames, fps)
	if fps > 0 && math.Abs(fps-configured) > 0.01 {
		log.Warning("Video %s reports %.2f fps but FRAME_RATE is %.2f; speeds use FRAME_RATE", path, fps, configured)
	}
}

// Analyze runs the pipeline once over the configured inputs.
func (a *App) Analyze() (*pipeline.Result, error) {
	return a.manager.Run(Input(a.config, a.logger))
}

func (a *App) Run() error {
	defer a.logger.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start background services
	go a.hubService.Run(ctx)
	go a.manager.Replay(ctx, a.config.FrameRate)
	go func() {
		if _, err := a.Analyze(); err != nil {
			a.logger.Error("Analysis failed: %v", err)
		}
	}()

	// Setup routes
	router := routes.SetupRoutes(a.manager, a.config, a.logger, a.session)
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: router,
	}

	fmt.Printf("fieldtrack server\n")
	fmt.Printf("URL: http://localhost:%d\n", a.config.Port)
	fmt.Printf("Video: %s\n", a.config.VideoPath)
	fmt.Printf("Tracks: %s\n", a.config.TracksPath)
	a.logger.Info("Listening on %s", server.Addr)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
