// Package service wires the pitch-control engine to the frame queue, the
// worker pool and the result store, and implements the dependencies of the
// HTTP API.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/footmetricx/pitchctl/internal/adapters/mq/queue"
	workerpool "github.com/footmetricx/pitchctl/internal/adapters/mq/worker"
	"github.com/footmetricx/pitchctl/internal/adapters/repository"
	"github.com/footmetricx/pitchctl/internal/domain/dedupe"
	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
	"github.com/footmetricx/pitchctl/pkg/logger"
	"github.com/footmetricx/pitchctl/pkg/metrics"
)

// Service implements the API dependencies for the pitch-control system.
type Service struct {
	mu sync.RWMutex

	// Core components
	engine  *engineAdapter
	store   *repository.MemoryStore
	deduper dedupe.Deduper
	queue   *queue.InMemoryQueue
	pool    *workerpool.Pool

	// Configuration
	params        pitchcontrol.Params
	workerCount   int
	queueSize     int
	dedupeSize    int
	gridRetention int

	// State
	started bool

	logger logger.Logger
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum number of pending frames.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the number of frame keys remembered for deduplication.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithGridRetention sets how many grids are kept per match.
func WithGridRetention(n int) Option {
	return func(s *Service) {
		s.gridRetention = n
	}
}

// WithParams sets the engine parameters. They are validated by Start.
func WithParams(p pitchcontrol.Params) Option {
	return func(s *Service) {
		s.params = p
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		params:        pitchcontrol.DefaultParams(),
		workerCount:   runtime.NumCPU(),
		queueSize:     10000,
		dedupeSize:    100000,
		gridRetention: 500,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start validates the engine parameters and starts the service components.
// A stopped service may be started again; it begins with an empty store.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get().Named("service")
	}

	engine, err := pitchcontrol.New(s.params)
	if err != nil {
		return fmt.Errorf("create engine: %w", err)
	}
	s.engine = &engineAdapter{engine: engine}

	s.store = repository.NewMemoryStore(ctx, repository.WithGridRetention(s.gridRetention))
	s.deduper = dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(s.dedupeSize))
	s.queue = queue.NewInMemoryQueue(
		queue.WithCapacity(s.queueSize),
		queue.WithBufferSize(s.queueSize),
	)
	s.pool = workerpool.NewPool(s.workerCount, s.queue, s.engine, s.store)
	s.pool.Start(ctx)

	cols, rows := engine.GridDims()
	s.started = true
	s.logger.Info(ctx, "pitch-control service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queue_size", s.queueSize),
		logger.Int("dedupe_size", s.dedupeSize),
		logger.Int("grid_cols", cols),
		logger.Int("grid_rows", rows),
	)
	return nil
}

// Stop drains the queue and shuts the service down.
func (s *Service) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}
	ctx := context.Background()
	s.logger.Info(ctx, "stopping pitch-control service...")

	s.pool.Stop()
	_ = s.queue.Close()
	_ = s.store.Close()

	s.started = false
	s.logger.Info(ctx, "pitch-control service stopped",
		logger.Int64("processed", s.pool.Stats().Processed))
}

func (s *Service) running() (*engineAdapter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.engine, nil
}

// Params returns the engine parameters.
func (s *Service) Params() pitchcontrol.Params {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.params
}

// Compute evaluates a frame synchronously without storing it.
func (s *Service) Compute(ctx context.Context, frame *model.Frame) (*pitchcontrol.Grid, pitchcontrol.ZoneSummary, error) {
	engine, err := s.running()
	if err != nil {
		return nil, pitchcontrol.ZoneSummary{}, err
	}
	return engine.Compute(ctx, frame)
}

// CompareFrames reports how home control changes between two frames.
func (s *Service) CompareFrames(_ context.Context, original, modified *model.Frame) (pitchcontrol.SpaceCreation, error) {
	engine, err := s.running()
	if err != nil {
		return pitchcontrol.SpaceCreation{}, err
	}
	sc, err := engine.engine.CompareFrames(original, modified)
	if err != nil {
		return pitchcontrol.SpaceCreation{}, err
	}
	metrics.RecordSpaceCreation()
	return sc, nil
}

// Submit queues a frame for asynchronous computation. It reports duplicate
// when the frame key was already accepted.
func (s *Service) Submit(ctx context.Context, frame model.Frame) (duplicate bool, err error) { //nolint:gocritic // hugeParam: frame is copied into the queue
	if frame.MatchID == "" {
		return false, ErrMissingMatch
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return false, ErrNotStarted
	}

	key := frame.Key()
	if s.deduper.SeenAndRecord(ctx, key) {
		metrics.RecordFrameDuplicate()
		s.logger.Debug(ctx, "duplicate frame", logger.String("frame", key.String()))
		return true, nil
	}

	if err := s.queue.TryEnqueue(ctx, model.FrameJob{Frame: frame, Received: time.Now()}); err != nil {
		s.deduper.Unrecord(ctx, key)
		if queue.IsBackpressure(err) {
			return false, fmt.Errorf("%s: %w", key, ErrBackpressure)
		}
		return false, fmt.Errorf("%s: %w: %w", key, ErrUnavailable, err)
	}
	return false, nil
}

func (s *Service) readStore() (*repository.MemoryStore, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}

// Frame returns a stored frame result.
func (s *Service) Frame(ctx context.Context, key model.FrameKey) (repository.FrameResult, error) {
	store, err := s.readStore()
	if err != nil {
		return repository.FrameResult{}, err
	}
	return store.Get(ctx, key)
}

// MatchSummary aggregates every processed frame of a match.
func (s *Service) MatchSummary(ctx context.Context, matchID string) (repository.MatchSummary, error) {
	store, err := s.readStore()
	if err != nil {
		return repository.MatchSummary{}, err
	}
	return store.MatchSummary(ctx, matchID)
}

// TopFrames returns the frames in which team held the largest share.
func (s *Service) TopFrames(ctx context.Context, matchID string, team model.Team, n int) ([]repository.DominanceEntry, error) {
	store, err := s.readStore()
	if err != nil {
		return nil, err
	}
	return store.TopFrames(ctx, matchID, team, n)
}

// Timeline returns the per-frame control shares of a match.
func (s *Service) Timeline(ctx context.Context, matchID string) ([]repository.TimelinePoint, error) {
	store, err := s.readStore()
	if err != nil {
		return nil, err
	}
	return store.Timeline(ctx, matchID)
}

// Matches lists known match ids.
func (s *Service) Matches(ctx context.Context) []string {
	store, err := s.readStore()
	if err != nil {
		return nil
	}
	return store.Matches(ctx)
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]any{
		"started":     s.started,
		"workerCount": s.workerCount,
		"queueSize":   s.queueSize,
		"dedupeSize":  s.dedupeSize,
	}
	if !s.started {
		return stats
	}

	frames, matches, grids := s.store.Sizes()
	pool := s.pool.Stats()
	stats["queueLength"] = s.queue.Len(ctx)
	stats["dedupeEntries"] = s.deduper.Size()
	stats["storedFrames"] = frames
	stats["matches"] = matches
	stats["retainedGrids"] = grids
	stats["processed"] = pool.Processed
	stats["invalid"] = pool.Invalid
	stats["failed"] = pool.Failed

	metrics.UpdateStoreSize(frames, matches, grids)
	return stats
}
