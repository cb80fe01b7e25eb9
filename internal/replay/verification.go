package replay

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/footmetricx/pitchctl/internal/adapters/repository"
	"github.com/footmetricx/pitchctl/pkg/logger"
)

// ErrVerification is returned when the service's aggregates disagree with
// what was submitted.
var ErrVerification = errors.New("verification failed")

// Report is what a replay run observed.
type Report struct {
	Summary      repository.MatchSummary     `json:"summary"`
	HomeTop      []repository.DominanceEntry `json:"home_top"`
	AwayTop      []repository.DominanceEntry `json:"away_top"`
	TimelineSize int                         `json:"timeline_size"`
	Stats        Stats                       `json:"stats"`
}

// waitForProcessing polls the match summary until every accepted frame has
// been processed or the wait times out.
func waitForProcessing(ctx context.Context, client *HTTPClient, config *Config, want int) (repository.MatchSummary, error) {
	url := fmt.Sprintf("%s/matches/%s/summary", config.BaseURL, config.MatchID)
	deadline := time.Now().Add(config.WaitTimeout)
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	var last repository.MatchSummary
	for {
		var s repository.MatchSummary
		status, err := client.getJSON(ctx, url, &s)
		switch {
		case err == nil:
			last = s
			if s.Frames+s.InvalidFrames >= want {
				return s, nil
			}
		case status != http.StatusNotFound:
			return last, err
		}
		if time.Now().After(deadline) {
			return last, fmt.Errorf("%w: %d of %d frames processed after %s",
				ErrVerification, last.Frames+last.InvalidFrames, want, config.WaitTimeout)
		}
		select {
		case <-ctx.Done():
			return last, ctx.Err()
		case <-ticker.C:
		}
	}
}

// verifyResults checks the aggregates the service reports for the match.
func verifyResults(ctx context.Context, client *HTTPClient, config *Config, stats *Stats) (*Report, error) {
	log := logger.Named("replay")
	log.Info(ctx, "verifying results")

	// Duplicates count as well: they were accepted by an earlier run.
	want := stats.Accepted + stats.Duplicate
	summary, err := waitForProcessing(ctx, client, config, want)
	if err != nil {
		return nil, err
	}
	stats.Processed = summary.Frames
	stats.Invalid = summary.InvalidFrames

	if summary.Frames+summary.InvalidFrames != want {
		return nil, fmt.Errorf("%w: service holds %d frames, %d were acknowledged",
			ErrVerification, summary.Frames+summary.InvalidFrames, want)
	}
	if summary.Frames > 0 {
		total := summary.HomePct + summary.AwayPct + summary.NeutralPct
		if math.Abs(total-percentMultiplier) > pctTolerance {
			return nil, fmt.Errorf("%w: mean shares sum to %.6f%%", ErrVerification, total)
		}
	}

	report := &Report{Summary: summary}
	base := fmt.Sprintf("%s/matches/%s", config.BaseURL, config.MatchID)
	for team, dst := range map[string]*[]repository.DominanceEntry{"home": &report.HomeTop, "away": &report.AwayTop} {
		url := fmt.Sprintf("%s/dominance?team=%s&limit=%d", base, team, config.Top)
		if _, err := client.getJSON(ctx, url, dst); err != nil {
			return nil, err
		}
		if err := verifyDominance(*dst); err != nil {
			return nil, fmt.Errorf("%s: %w", team, err)
		}
	}

	var timeline []repository.TimelinePoint
	if _, err := client.getJSON(ctx, base+"/timeline", &timeline); err != nil {
		return nil, err
	}
	if len(timeline) != summary.Frames {
		return nil, fmt.Errorf("%w: timeline has %d points for %d frames", ErrVerification, len(timeline), summary.Frames)
	}
	report.TimelineSize = len(timeline)

	log.Info(ctx, "results verified",
		logger.Int("frames", summary.Frames),
		logger.Int("invalid", summary.InvalidFrames),
		logger.Float64("homePct", summary.HomePct),
		logger.Float64("awayPct", summary.AwayPct))
	return report, nil
}

// verifyDominance checks that entries are ordered by share with
// non-decreasing ranks.
func verifyDominance(entries []repository.DominanceEntry) error {
	for i := 1; i < len(entries); i++ {
		prev, cur := entries[i-1], entries[i]
		if cur.Share > prev.Share {
			return fmt.Errorf("%w: entry %d share %.3f above entry %d share %.3f",
				ErrVerification, i, cur.Share, i-1, prev.Share)
		}
		if cur.Rank < prev.Rank {
			return fmt.Errorf("%w: rank decreases at entry %d", ErrVerification, i)
		}
	}
	return nil
}
