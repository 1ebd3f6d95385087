// Package pipeline runs the analysis stages in order and keeps the latest result for viewers.
package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"fieldtrack/internal/cache"
	"fieldtrack/internal/config"
	"fieldtrack/internal/dto"
	"fieldtrack/internal/logger"
	"fieldtrack/internal/model"
	"fieldtrack/internal/repository"
	"fieldtrack/internal/service/anchor"
	"fieldtrack/internal/service/compensator"
	"fieldtrack/internal/service/egomotion"
	"fieldtrack/internal/service/kinematics"
	"fieldtrack/internal/service/projection"
	"fieldtrack/internal/service/websocket"
)

// VideoSource is a frame source that owns an open file.
type VideoSource interface {
	egomotion.Source
	Close() error
}

// Input describes one analysis. The video and the track file are opened only when a cache misses.
type Input struct {
	OpenVideo   func() (VideoSource, error)
	LoadTracks  func() (*model.TrackTable, error)
	MotionCache cache.Options
	TracksCache cache.Options
}

// Result is the enriched track table with the camera motion it was compensated with.
type Result struct {
	RunID        string
	Table        *model.TrackTable
	Motion       model.CameraMotion
	Summary      []dto.TrackSummary
	MotionCached bool
	TracksCached bool
	// Snapshots describes the cache entries the result was loaded from or written to.
	Snapshots []model.Snapshot
}

// Info describes the result for the API.
func (r *Result) Info() dto.RunInfo {
	info := dto.RunInfo{
		RunID:        r.RunID,
		FrameCount:   r.Table.FrameCount(),
		MotionCached: r.MotionCached,
		TracksCached: r.TracksCached,
	}
	for _, c := range r.Table.Categories() {
		info.Categories = append(info.Categories, string(c))
	}
	for _, snap := range r.Snapshots {
		info.Snapshots = append(info.Snapshots, dto.SnapshotInfo{
			Kind:       string(snap.Kind),
			RunID:      snap.RunID,
			FrameCount: snap.FrameCount,
			CreatedAt:  snap.CreatedAt,
		})
	}
	return info
}

type Manager struct {
	estimator        *egomotion.Estimator
	projector        *projection.Projector
	kinematics       *kinematics.Estimator
	cache            *cache.Store
	websocketService *websocket.HubService
	logger           *logger.Logger
	numWorkers       int

	mu     sync.RWMutex
	result *Result
}

func NewManager(
	estimator *egomotion.Estimator,
	projector *projection.Projector,
	kinematicsEstimator *kinematics.Estimator,
	store *cache.Store,
	websocketService *websocket.HubService,
	config *config.Config,
	logger *logger.Logger,
) *Manager {
	return &Manager{
		estimator:        estimator,
		projector:        projector,
		kinematics:       kinematicsEstimator,
		cache:            store,
		websocketService: websocketService,
		logger:           logger,
		numWorkers:       max(config.ProcessingWorkers, 1),
	}
}

func (m *Manager) GetWebsocketService() *websocket.HubService {
	return m.websocketService
}

// Result returns the latest analysis, or nil before the first run completes.
func (m *Manager) Result() *Result {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.result
}

// Publish makes res the result served to viewers.
func (m *Manager) Publish(res *Result) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.result = res
}

// Run estimates camera motion, then enriches the track table: anchor, compensation,
// projection, kinematics. Each stage finishes for every category before the next starts.
func (m *Manager) Run(in Input) (*Result, error) {
	runID := uuid.NewString()
	m.logger.Info("Run %s started", runID)

	motion, motionHit, err := m.cache.Motion(in.MotionCache, runID, func() (model.CameraMotion, error) {
		return m.estimateMotion(in.OpenVideo)
	})
	if err != nil {
		return nil, fmt.Errorf("camera motion: %w", err)
	}

	table, tracksHit, err := m.cache.Tracks(in.TracksCache, runID, func() (*model.TrackTable, error) {
		if in.LoadTracks == nil {
			return nil, errors.New("no track source configured")
		}
		table, err := in.LoadTracks()
		if err != nil {
			return nil, err
		}
		if err := m.process(table, motion); err != nil {
			return nil, err
		}
		return table, nil
	})
	if err != nil {
		return nil, fmt.Errorf("track table: %w", err)
	}

	res := &Result{
		RunID:        runID,
		Table:        table,
		Motion:       motion,
		Summary:      kinematics.Summarize(table),
		MotionCached: motionHit,
		TracksCached: tracksHit,
		Snapshots:    m.snapshots(in),
	}

	m.Publish(res)

	m.logger.Info("Run %s finished: %d frames, %d records, %d summarized tracks",
		runID, table.FrameCount(), table.Len(), len(res.Summary))
	return res, nil
}

// snapshots reads the metadata of both cache files; absent entries are skipped.
func (m *Manager) snapshots(in Input) []model.Snapshot {
	var out []model.Snapshot
	for _, c := range []struct {
		path string
		kind model.SnapshotKind
	}{
		{in.MotionCache.Path, model.SnapshotMotion},
		{in.TracksCache.Path, model.SnapshotTracks},
	} {
		snap, err := m.cache.Snapshot(c.path, c.kind)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			m.logger.Warning("Cache %s: failed to read %s snapshot: %v", c.path, c.kind, err)
			continue
		}
		out = append(out, *snap)
	}
	return out
}

func (m *Manager) estimateMotion(open func() (VideoSource, error)) (model.CameraMotion, error) {
	if open == nil {
		return nil, errors.New("no video source configured")
	}
	src, err := open()
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return m.estimator.Estimate(src)
}

func (m *Manager) process(table *model.TrackTable, motion model.CameraMotion) error {
	if len(motion) != table.FrameCount() {
		return fmt.Errorf("video has %d frames, track table has %d", len(motion), table.FrameCount())
	}

	stages := []struct {
		name string
		run  func(model.Category) error
	}{
		{"anchor", func(c model.Category) error {
			anchor.AddPositions(table, c)
			return nil
		}},
		{"compensate", func(c model.Category) error {
			return compensator.Apply(table, motion, c)
		}},
		{"project", func(c model.Category) error {
			projection.AddProjections(table, m.projector, c)
			return nil
		}},
		{"kinematics", func(c model.Category) error {
			m.kinematics.ApplyCategory(table, c)
			return nil
		}},
	}

	categories := table.Categories()
	for _, s := range stages {
		if err := m.runStage(s.name, categories, s.run); err != nil {
			return err
		}
	}
	return nil
}

// runStage hands categories to a bounded pool of workers and waits for all of them.
func (m *Manager) runStage(name string, categories []model.Category, run func(model.Category) error) error {
	queue := make(chan model.Category, len(categories))
	for _, c := range categories {
		queue <- c
	}
	close(queue)

	var (
		wg       sync.WaitGroup
		errMu    sync.Mutex
		firstErr error
	)
	for i := 0; i < min(m.numWorkers, len(categories)); i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for c := range queue {
				if err := run(c); err != nil {
					m.logger.Error("Stage %s worker %d: %s failed: %v", name, workerID, c, err)
					errMu.Lock()
					if firstErr == nil {
						firstErr = fmt.Errorf("%s %s: %w", name, c, err)
					}
					errMu.Unlock()
				}
			}
		}(i)
	}
	wg.Wait()
	return firstErr
}
