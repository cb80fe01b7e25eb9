// Package worker drains the frame queue, runs the pitch-control engine on
// every job and hands the outcome to a recorder.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
	"github.com/footmetricx/pitchctl/pkg/logger"
	"github.com/footmetricx/pitchctl/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU(); the engine is CPU bound
	poolShutdownTimeout     = 30 * time.Second
)

// Job abstracts what workers read off the queue.
type Job = model.FrameJob

// Computer evaluates a frame.
type Computer interface {
	Compute(ctx context.Context, frame *model.Frame) (*pitchcontrol.Grid, pitchcontrol.ZoneSummary, error)
}

// Recorder stores the outcome of a job.
type Recorder interface {
	Record(ctx context.Context, job Job, grid *pitchcontrol.Grid, summary pitchcontrol.ZoneSummary) error
	// RecordInvalid flags a frame the engine rejected. Such frames are not
	// retried; they only count against their match.
	RecordInvalid(ctx context.Context, job Job, reason string) error
}

// Queue defines how workers receive jobs.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Job
}

// Worker processes jobs using the provided interfaces.
type Worker interface {
	// Run starts the worker loop until ctx is canceled or the queue is drained.
	Run(ctx context.Context)

	// Shutdown stops the worker after the job in flight.
	Shutdown(ctx context.Context) error
}

// Counters aggregates job outcomes across workers.
type Counters struct {
	Processed atomic.Int64
	Invalid   atomic.Int64
	Failed    atomic.Int64
}

// InMemoryWorker implements Worker.
type InMemoryWorker struct {
	queue    Queue
	computer Computer
	recorder Recorder
	name     string
	counters *Counters

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker(queue Queue, computer Computer, recorder Recorder, opts ...Option) *InMemoryWorker {
	w := &InMemoryWorker{
		queue:    queue,
		computer: computer,
		recorder: recorder,
		name:     "worker",
		counters: &Counters{},
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}
	for _, opt := range opts {
		opt(w)
	}
	if w.name != "worker" {
		w.logger = w.logger.With(logger.String("worker", w.name))
	}
	return w
}

// Run starts the worker loop.
func (w *InMemoryWorker) Run(ctx context.Context) {
	defer close(w.done)

	jobs := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.processJob(ctx, job); err != nil {
				w.logger.Error(ctx, "error processing frame", logger.Error(err))
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker) Done() <-chan struct{} { return w.done }

// Shutdown gracefully stops the worker.
func (w *InMemoryWorker) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processJob handles a single frame.
func (w *InMemoryWorker) processJob(ctx context.Context, job Job) error { //nolint:gocritic // hugeParam: Job is passed by value for channel semantics
	start := time.Now()
	defer func() {
		metrics.RecordWorkerProcessingLatency(float64(time.Since(start).Microseconds()) / 1000)
	}()

	key := job.Frame.Key()
	grid, summary, err := w.computer.Compute(ctx, &job.Frame)
	if err != nil {
		var invalid *pitchcontrol.InvalidFrameError
		if errors.As(err, &invalid) {
			w.counters.Invalid.Add(1)
			w.logger.Warn(ctx, "frame rejected",
				logger.String("frame", key.String()),
				logger.String("field", invalid.Field),
				logger.String("reason", invalid.Reason),
			)
			if rerr := w.recorder.RecordInvalid(ctx, job, invalid.Reason); rerr != nil {
				return w.fail("record_error", fmt.Errorf("flag invalid frame %s: %w", key, rerr))
			}
			return nil
		}
		return w.fail("compute_error", fmt.Errorf("compute frame %s: %w", key, err))
	}

	if err := w.recorder.Record(ctx, job, grid, summary); err != nil {
		return w.fail("record_error", fmt.Errorf("record frame %s: %w", key, err))
	}
	w.counters.Processed.Add(1)
	return nil
}

func (w *InMemoryWorker) fail(kind string, err error) error {
	w.counters.Failed.Add(1)
	metrics.RecordWorkerError()
	metrics.RecordErrorByComponent("worker", kind)
	return err
}

// Pool manages multiple workers.
type Pool struct {
	workers  []*InMemoryWorker
	queue    Queue
	counters *Counters

	mu      sync.Mutex
	started bool
	stopped bool
	cancel  context.CancelFunc

	logger logger.Logger
}

// PoolStats is a snapshot of pool activity.
type PoolStats struct {
	Workers   int   `json:"workers"`
	Processed int64 `json:"processed"`
	Invalid   int64 `json:"invalid"`
	Failed    int64 `json:"failed"`
}

// NewPool creates a new worker pool. A workerCount below one selects a
// multiple of the CPU count.
func NewPool(workerCount int, queue Queue, computer Computer, recorder Recorder) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers:  make([]*InMemoryWorker, workerCount),
		queue:    queue,
		counters: &Counters{},
		logger:   logger.Get().Named("worker-pool"),
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(
			queue,
			computer,
			recorder,
			WithName("worker-"+strconv.Itoa(i)),
			WithCounters(pool.counters),
		)
	}
	return pool
}

// Start starts all workers in the pool. Calling Start twice is a no-op.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	for _, w := range p.workers {
		go w.Run(ctx)
	}
	metrics.UpdateWorkerActiveCount(len(p.workers))
	p.logger.Info(ctx, "worker pool started", logger.Int("workers", len(p.workers)))
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() PoolStats {
	return PoolStats{
		Workers:   len(p.workers),
		Processed: p.counters.Processed.Load(),
		Invalid:   p.counters.Invalid.Load(),
		Failed:    p.counters.Failed.Load(),
	}
}

// Stop shuts the pool down with the default timeout.
func (p *Pool) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), poolShutdownTimeout)
	defer cancel()
	_ = p.Shutdown(ctx)
}

// Shutdown closes the queue and waits for workers to drain it. Workers still
// running when ctx expires are cancelled.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	if p.stopped || !p.started {
		p.stopped = true
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	p.mu.Unlock()
	defer p.cancel()

	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	var timedOut int
	for _, w := range p.workers {
		select {
		case <-w.Done():
		case <-ctx.Done():
			timedOut++
		}
	}
	metrics.UpdateWorkerActiveCount(0)

	if timedOut > 0 {
		p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("workers", timedOut))
		return fmt.Errorf("%d workers still busy: %w", timedOut, ctx.Err())
	}
	p.logger.Info(ctx, "worker pool stopped", logger.Int64("processed", p.counters.Processed.Load()))
	return nil
}
