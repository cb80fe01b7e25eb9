package repository

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
	"github.com/footmetricx/pitchctl/pkg/metrics"
	"gonum.org/v1/gonum/stat"
)

const (
	defaultGridRetention         = 500
	defaultMetricsUpdateInterval = 5 * time.Second
)

type matchFrames struct {
	frames map[int64]*FrameResult
	grids  []int64 // frame ids holding a grid, oldest first
}

// MemoryStore keeps results in per-match maps guarded by one RWMutex.
type MemoryStore struct {
	mu      sync.RWMutex
	matches map[string]*matchFrames
	frames  int
	grids   int

	gridRetention         int
	metricsUpdateInterval time.Duration

	wg       sync.WaitGroup
	stopOnce sync.Once
	stopChan chan struct{}
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore constructs a store and starts its metrics updater, which
// runs until ctx is done or Close is called.
func NewMemoryStore(ctx context.Context, opts ...Option) *MemoryStore {
	s := &MemoryStore{
		matches:               make(map[string]*matchFrames),
		gridRetention:         defaultGridRetention,
		metricsUpdateInterval: defaultMetricsUpdateInterval,
		stopChan:              make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.startMetricsUpdater(ctx)
	return s
}

// Close stops the metrics updater.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stopChan) })
	s.wg.Wait()
	return nil
}

// Record implements Store.Record.
func (s *MemoryStore) Record(_ context.Context, job model.FrameJob, grid *pitchcontrol.Grid, summary pitchcontrol.ZoneSummary) error { //nolint:gocritic // hugeParam: mirrors queue payload
	res := newResult(&job)
	res.Summary = summary
	res.Grid = grid

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(res)
	return nil
}

// RecordInvalid implements Store.RecordInvalid.
func (s *MemoryStore) RecordInvalid(_ context.Context, job model.FrameJob, reason string) error { //nolint:gocritic // hugeParam: mirrors queue payload
	if reason == "" {
		return fmt.Errorf("record invalid frame %s: empty reason", job.Frame.Key())
	}
	res := newResult(&job)
	res.Invalid = true
	res.Reason = reason

	s.mu.Lock()
	defer s.mu.Unlock()
	s.put(res)
	return nil
}

func newResult(job *model.FrameJob) *FrameResult {
	computed := job.Received
	if computed.IsZero() {
		computed = time.Now()
	}
	dir := job.Frame.HomeAttacks
	if dir == "" {
		dir = model.AttacksRight
	}
	return &FrameResult{
		Key:         job.Frame.Key(),
		Timestamp:   job.Frame.Timestamp,
		Ball:        job.Frame.Ball,
		HomeAttacks: dir,
		ComputedAt:  computed,
	}
}

// put must be called with s.mu held for writing.
func (s *MemoryStore) put(res *FrameResult) {
	m, ok := s.matches[res.Key.MatchID]
	if !ok {
		m = &matchFrames{frames: make(map[int64]*FrameResult)}
		s.matches[res.Key.MatchID] = m
	}

	if prev, exists := m.frames[res.Key.FrameID]; exists {
		if prev.Grid != nil {
			m.grids = slices.DeleteFunc(m.grids, func(id int64) bool { return id == res.Key.FrameID })
			s.grids--
		}
	} else {
		s.frames++
	}
	m.frames[res.Key.FrameID] = res

	if res.Grid != nil {
		m.grids = append(m.grids, res.Key.FrameID)
		s.grids++
		for s.gridRetention > 0 && len(m.grids) > s.gridRetention {
			m.frames[m.grids[0]].Grid = nil
			m.grids = m.grids[1:]
			s.grids--
		}
	}
}

// Get implements Store.Get.
func (s *MemoryStore) Get(_ context.Context, key model.FrameKey) (FrameResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[key.MatchID]
	if !ok {
		return FrameResult{}, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	res, ok := m.frames[key.FrameID]
	if !ok {
		return FrameResult{}, fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return *res, nil
}

// valid returns the valid results of a match ordered by frame id.
// Must be called with s.mu held.
func (m *matchFrames) valid() []*FrameResult {
	out := make([]*FrameResult, 0, len(m.frames))
	for _, r := range m.frames {
		if !r.Invalid {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key.FrameID < out[j].Key.FrameID })
	return out
}

// MatchSummary implements Store.MatchSummary.
func (s *MemoryStore) MatchSummary(_ context.Context, matchID string) (MatchSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[matchID]
	if !ok {
		return MatchSummary{}, fmt.Errorf("%s: %w", matchID, ErrMatchNotFound)
	}

	sum := MatchSummary{MatchID: matchID}
	for _, r := range m.frames {
		if r.Invalid {
			if sum.InvalidByReason == nil {
				sum.InvalidByReason = make(map[string]int)
			}
			sum.InvalidFrames++
			sum.InvalidByReason[r.Reason]++
		}
	}

	frames := m.valid()
	sum.Frames = len(frames)
	if len(frames) == 0 {
		return sum, nil
	}
	sum.FirstFrame = frames[0].Key.FrameID
	sum.LastFrame = frames[len(frames)-1].Key.FrameID

	col := func(f func(*pitchcontrol.ZoneSummary) float64) []float64 {
		out := make([]float64, len(frames))
		for i, r := range frames {
			out[i] = f(&r.Summary)
		}
		return out
	}

	sum.HomePct, sum.HomePctStdDev = stat.MeanStdDev(col(func(z *pitchcontrol.ZoneSummary) float64 { return z.Home.OverallPct }), nil)
	if len(frames) == 1 {
		sum.HomePctStdDev = 0
	}
	sum.AwayPct = stat.Mean(col(func(z *pitchcontrol.ZoneSummary) float64 { return z.Away.OverallPct }), nil)
	sum.NeutralPct = stat.Mean(col(func(z *pitchcontrol.ZoneSummary) float64 { return z.NeutralPct }), nil)
	sum.BallControl = stat.Mean(col(func(z *pitchcontrol.ZoneSummary) float64 { return z.BallControl }), nil)
	sum.Home = thirdMeans(frames, func(z *pitchcontrol.ZoneSummary) pitchcontrol.TeamZones { return z.Home })
	sum.Away = thirdMeans(frames, func(z *pitchcontrol.ZoneSummary) pitchcontrol.TeamZones { return z.Away })
	return sum, nil
}

func thirdMeans(frames []*FrameResult, team func(*pitchcontrol.ZoneSummary) pitchcontrol.TeamZones) ThirdMeans {
	var def, mid, att []float64
	for _, r := range frames {
		z := team(&r.Summary)
		def = append(def, z.Defensive.MeanControl)
		mid = append(mid, z.Middle.MeanControl)
		att = append(att, z.Attacking.MeanControl)
	}
	return ThirdMeans{
		Defensive: stat.Mean(def, nil),
		Middle:    stat.Mean(mid, nil),
		Attacking: stat.Mean(att, nil),
	}
}

// TopFrames implements Store.TopFrames.
func (s *MemoryStore) TopFrames(_ context.Context, matchID string, team model.Team, n int) ([]DominanceEntry, error) {
	if n <= 0 {
		return nil, fmt.Errorf("%d: %w", n, ErrInvalidLimit)
	}

	s.mu.RLock()
	m, ok := s.matches[matchID]
	if !ok {
		s.mu.RUnlock()
		return nil, fmt.Errorf("%s: %w", matchID, ErrMatchNotFound)
	}
	frames := m.valid()
	entries := make([]DominanceEntry, len(frames))
	for i, r := range frames {
		entries[i] = DominanceEntry{
			FrameID:   r.Key.FrameID,
			Timestamp: r.Timestamp,
			Team:      team,
			Share:     r.Summary.Share(team),
		}
	}
	s.mu.RUnlock()

	sortEntries(entries)
	assignRanksWithTies(entries)
	if len(entries) > n {
		entries = entries[:n]
	}
	return entries, nil
}

// sortEntries orders entries by share (descending) then frame id (ascending).
func sortEntries(entries []DominanceEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Share != entries[j].Share {
			return entries[i].Share > entries[j].Share
		}
		return entries[i].FrameID < entries[j].FrameID
	})
}

// assignRanksWithTies gives equal shares the same rank; ranks stay consecutive.
func assignRanksWithTies(entries []DominanceEntry) {
	rank := 0
	for i := range entries {
		if i == 0 || entries[i].Share != entries[i-1].Share {
			rank++
		}
		entries[i].Rank = rank
	}
}

// Timeline implements Store.Timeline.
func (s *MemoryStore) Timeline(_ context.Context, matchID string) ([]TimelinePoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	m, ok := s.matches[matchID]
	if !ok {
		return nil, fmt.Errorf("%s: %w", matchID, ErrMatchNotFound)
	}
	frames := m.valid()
	points := make([]TimelinePoint, len(frames))
	for i, r := range frames {
		points[i] = TimelinePoint{
			FrameID:     r.Key.FrameID,
			Timestamp:   r.Timestamp,
			HomePct:     r.Summary.Home.OverallPct,
			AwayPct:     r.Summary.Away.OverallPct,
			BallControl: r.Summary.BallControl,
		}
	}
	return points, nil
}

// Count implements Store.Count.
func (s *MemoryStore) Count(_ context.Context) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames
}

// Matches implements Store.Matches.
func (s *MemoryStore) Matches(_ context.Context) []string {
	s.mu.RLock()
	ids := make([]string, 0, len(s.matches))
	for id := range s.matches {
		ids = append(ids, id)
	}
	s.mu.RUnlock()
	slices.Sort(ids)
	return ids
}

// Sizes returns the number of stored frames, matches and retained grids.
func (s *MemoryStore) Sizes() (frames, matches, grids int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.frames, len(s.matches), s.grids
}

func (s *MemoryStore) startMetricsUpdater(ctx context.Context) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ticker := time.NewTicker(s.metricsUpdateInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stopChan:
				return
			case <-ticker.C:
				s.updateMetrics()
			}
		}
	}()
}

func (s *MemoryStore) updateMetrics() {
	metrics.UpdateStoreSize(s.Sizes())
}
