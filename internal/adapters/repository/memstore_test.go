package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
)

// floatEqual compares two float64 values with a small tolerance for floating-point precision
func floatEqual(a, b float64) bool {
	const tolerance = 1e-10
	return math.Abs(a-b) < tolerance
}

func job(match string, frame int64) model.FrameJob {
	return model.FrameJob{
		Frame: model.Frame{
			MatchID:   match,
			FrameID:   frame,
			Timestamp: time.Duration(frame) * 40 * time.Millisecond,
		},
		Received: time.Unix(1700000000, 0),
	}
}

func summary(homePct, awayPct float64) pitchcontrol.ZoneSummary {
	s := pitchcontrol.ZoneSummary{NeutralPct: 100 - homePct - awayPct, BallControl: (homePct - awayPct) / 100, Cells: 10}
	s.Home.OverallPct = homePct
	s.Away.OverallPct = awayPct
	s.Home.Middle.MeanControl = (homePct - awayPct) / 100
	s.Away.Middle.MeanControl = -s.Home.Middle.MeanControl
	return s
}

func testGrid(t *testing.T) *pitchcontrol.Grid {
	t.Helper()
	f := &model.Frame{
		Home: []model.PlayerSample{{Position: model.Vec2{X: 1, Y: 1}}},
		Away: []model.PlayerSample{{Position: model.Vec2{X: 9, Y: 4}}},
	}
	g, _, err := pitchcontrol.Compute(f, 1, model.Pitch{Length: 10, Width: 5})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return g
}

func TestMemoryStore_BasicOperations(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	defer store.Close()

	if count := store.Count(ctx); count != 0 {
		t.Errorf("expected count 0, got %d", count)
	}

	grid := testGrid(t)
	if err := store.Record(ctx, job("m1", 1), grid, summary(60, 30)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	res, err := store.Get(ctx, model.FrameKey{MatchID: "m1", FrameID: 1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Grid != grid {
		t.Error("expected the grid to be retained")
	}
	if res.HomeAttacks != model.AttacksRight {
		t.Errorf("expected default direction right, got %q", res.HomeAttacks)
	}
	if res.Timestamp != 40*time.Millisecond {
		t.Errorf("expected timestamp 40ms, got %v", res.Timestamp)
	}
	if !floatEqual(res.Summary.Home.OverallPct, 60) {
		t.Errorf("expected home pct 60, got %f", res.Summary.Home.OverallPct)
	}

	if _, err := store.Get(ctx, model.FrameKey{MatchID: "m1", FrameID: 2}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := store.Get(ctx, model.FrameKey{MatchID: "nope", FrameID: 1}); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	// re-recording replaces without growing the count
	if err := store.Record(ctx, job("m1", 1), nil, summary(10, 80)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count := store.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}
	if _, _, grids := store.Sizes(); grids != 0 {
		t.Errorf("expected 0 grids after replacement, got %d", grids)
	}
}

func TestMemoryStore_InvalidFrames(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	defer store.Close()

	_ = store.Record(ctx, job("m1", 1), nil, summary(50, 50))
	if err := store.RecordInvalid(ctx, job("m1", 2), pitchcontrol.ReasonEmptyTeam); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_ = store.RecordInvalid(ctx, job("m1", 3), pitchcontrol.ReasonNonFinite)
	_ = store.RecordInvalid(ctx, job("m1", 4), pitchcontrol.ReasonNonFinite)

	if err := store.RecordInvalid(ctx, job("m1", 5), ""); err == nil {
		t.Error("expected an error for an empty reason")
	}

	res, err := store.Get(ctx, model.FrameKey{MatchID: "m1", FrameID: 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !res.Invalid || res.Reason != pitchcontrol.ReasonEmptyTeam {
		t.Errorf("expected flagged frame, got %+v", res)
	}

	sum, err := store.MatchSummary(ctx, "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Frames != 1 || sum.InvalidFrames != 3 {
		t.Errorf("expected 1 valid and 3 invalid frames, got %d and %d", sum.Frames, sum.InvalidFrames)
	}
	if sum.InvalidByReason[pitchcontrol.ReasonNonFinite] != 2 {
		t.Errorf("expected 2 non_finite frames, got %v", sum.InvalidByReason)
	}

	points, _ := store.Timeline(ctx, "m1")
	if len(points) != 1 {
		t.Errorf("expected invalid frames to be left off the timeline, got %d points", len(points))
	}
}

func TestMemoryStore_MatchSummary(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	defer store.Close()

	if _, err := store.MatchSummary(ctx, "m1"); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}

	_ = store.Record(ctx, job("m1", 5), nil, summary(40, 40))
	sum, _ := store.MatchSummary(ctx, "m1")
	if sum.HomePctStdDev != 0 {
		t.Errorf("expected zero spread for a single frame, got %f", sum.HomePctStdDev)
	}

	_ = store.Record(ctx, job("m1", 3), nil, summary(60, 20))
	_ = store.Record(ctx, job("m1", 9), nil, summary(20, 60))

	sum, err := store.MatchSummary(ctx, "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.Frames != 3 || sum.FirstFrame != 3 || sum.LastFrame != 9 {
		t.Errorf("unexpected frame range: %+v", sum)
	}
	if !floatEqual(sum.HomePct, 40) || !floatEqual(sum.AwayPct, 40) || !floatEqual(sum.NeutralPct, 20) {
		t.Errorf("unexpected means: home %f away %f neutral %f", sum.HomePct, sum.AwayPct, sum.NeutralPct)
	}
	if !floatEqual(sum.HomePctStdDev, 20) {
		t.Errorf("expected sample stddev 20, got %f", sum.HomePctStdDev)
	}
	if !floatEqual(sum.Home.Middle, 0) || !floatEqual(sum.Away.Middle, 0) {
		t.Errorf("expected balanced middle third, got %f / %f", sum.Home.Middle, sum.Away.Middle)
	}
	if sum.InvalidByReason != nil {
		t.Errorf("expected no invalid reasons, got %v", sum.InvalidByReason)
	}
}

func TestMemoryStore_TopFrames(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	defer store.Close()

	_ = store.Record(ctx, job("m1", 1), nil, summary(30, 60))
	_ = store.Record(ctx, job("m1", 2), nil, summary(70, 20))
	_ = store.Record(ctx, job("m1", 3), nil, summary(70, 25))
	_ = store.Record(ctx, job("m1", 4), nil, summary(50, 40))
	_ = store.RecordInvalid(ctx, job("m1", 5), pitchcontrol.ReasonOutOfBounds)

	entries, err := store.TopFrames(ctx, "m1", model.Home, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []struct {
		rank  int
		frame int64
	}{{1, 2}, {1, 3}, {2, 4}}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, w := range want {
		if entries[i].Rank != w.rank || entries[i].FrameID != w.frame {
			t.Errorf("entry %d: expected rank %d frame %d, got %+v", i, w.rank, w.frame, entries[i])
		}
	}

	away, _ := store.TopFrames(ctx, "m1", model.Away, 10)
	if len(away) != 4 || away[0].FrameID != 1 || away[0].Team != model.Away {
		t.Errorf("unexpected away ranking: %+v", away)
	}

	if _, err := store.TopFrames(ctx, "m1", model.Home, 0); !errors.Is(err, ErrInvalidLimit) {
		t.Errorf("expected ErrInvalidLimit, got %v", err)
	}
	if _, err := store.TopFrames(ctx, "m2", model.Home, 1); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestMemoryStore_Timeline(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx)
	defer store.Close()

	for _, id := range []int64{7, 2, 5} {
		_ = store.Record(ctx, job("m1", id), nil, summary(float64(id), 0))
	}
	points, err := store.Timeline(ctx, "m1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i, id := range []int64{2, 5, 7} {
		if points[i].FrameID != id || !floatEqual(points[i].HomePct, float64(id)) {
			t.Errorf("point %d: expected frame %d, got %+v", i, id, points[i])
		}
	}
	if _, err := store.Timeline(ctx, "m2"); !errors.Is(err, ErrMatchNotFound) {
		t.Errorf("expected ErrMatchNotFound, got %v", err)
	}
}

func TestMemoryStore_GridRetention(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx, WithGridRetention(2))
	defer store.Close()

	grid := testGrid(t)
	for i := int64(1); i <= 4; i++ {
		_ = store.Record(ctx, job("m1", i), grid, summary(50, 50))
	}
	_ = store.Record(ctx, job("m2", 1), grid, summary(50, 50))

	frames, matches, grids := store.Sizes()
	if frames != 5 || matches != 2 || grids != 3 {
		t.Errorf("expected 5 frames, 2 matches, 3 grids; got %d, %d, %d", frames, matches, grids)
	}
	for i := int64(1); i <= 4; i++ {
		res, err := store.Get(ctx, model.FrameKey{MatchID: "m1", FrameID: i})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if kept := res.Grid != nil; kept != (i > 2) {
			t.Errorf("frame %d: grid kept = %v", i, kept)
		}
		if !floatEqual(res.Summary.Home.OverallPct, 50) {
			t.Errorf("frame %d: summary lost", i)
		}
	}
	if got := store.Matches(ctx); len(got) != 2 || got[0] != "m1" || got[1] != "m2" {
		t.Errorf("unexpected matches: %v", got)
	}
}

func TestMemoryStore_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore(ctx, WithMetricsUpdateInterval(time.Millisecond))
	defer store.Close()

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			match := fmt.Sprintf("m%d", g%2)
			for i := 0; i < 100; i++ {
				_ = store.Record(ctx, job(match, int64(g*100+i)), nil, summary(50, 40))
				_, _ = store.MatchSummary(ctx, match)
			}
		}(g)
	}
	wg.Wait()

	if count := store.Count(ctx); count != 800 {
		t.Errorf("expected 800 frames, got %d", count)
	}
	if err := store.Close(); err != nil {
		t.Errorf("expected idempotent close, got %v", err)
	}
}
