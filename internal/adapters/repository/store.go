// Package repository holds per-match pitch-control results in memory.
package repository

import (
	"context"
	"time"

	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
)

// FrameResult is the stored outcome of one frame.
type FrameResult struct {
	Key         model.FrameKey
	Timestamp   time.Duration
	Ball        model.Vec2
	HomeAttacks model.Direction
	Summary     pitchcontrol.ZoneSummary
	// Grid is nil for invalid frames and for frames past the retention window.
	Grid       *pitchcontrol.Grid
	Invalid    bool
	Reason     string
	ComputedAt time.Time
}

// ThirdMeans holds the mean control per third from one team's perspective.
type ThirdMeans struct {
	Defensive float64 `json:"defensive_third"`
	Middle    float64 `json:"middle_third"`
	Attacking float64 `json:"attacking_third"`
}

// MatchSummary aggregates every valid frame of a match.
type MatchSummary struct {
	MatchID         string         `json:"match_id"`
	Frames          int            `json:"frames"`
	InvalidFrames   int            `json:"invalid_frames"`
	InvalidByReason map[string]int `json:"invalid_by_reason,omitempty"`
	FirstFrame      int64          `json:"first_frame"`
	LastFrame       int64          `json:"last_frame"`
	HomePct         float64        `json:"home_pct"`
	HomePctStdDev   float64        `json:"home_pct_stddev"`
	AwayPct         float64        `json:"away_pct"`
	NeutralPct      float64        `json:"neutral_pct"`
	Home            ThirdMeans     `json:"home"`
	Away            ThirdMeans     `json:"away"`
	BallControl     float64        `json:"ball_control"`
}

// DominanceEntry is one row of a team's most dominant frames.
type DominanceEntry struct {
	Rank      int           `json:"rank"`
	FrameID   int64         `json:"frame_id"`
	Timestamp time.Duration `json:"timestamp"`
	Team      model.Team    `json:"team"`
	Share     float64       `json:"share_pct"`
}

// TimelinePoint is one frame on a match's control timeline.
type TimelinePoint struct {
	FrameID     int64         `json:"frame_id"`
	Timestamp   time.Duration `json:"timestamp"`
	HomePct     float64       `json:"home_pct"`
	AwayPct     float64       `json:"away_pct"`
	BallControl float64       `json:"ball_control"`
}

// Store provides read/write access to computed frames.
type Store interface {
	// Record stores a computed frame, replacing any earlier result for its key.
	Record(ctx context.Context, job model.FrameJob, grid *pitchcontrol.Grid, summary pitchcontrol.ZoneSummary) error
	// RecordInvalid flags a frame the engine rejected.
	RecordInvalid(ctx context.Context, job model.FrameJob, reason string) error

	// Get returns one frame. Returns ErrNotFound if the frame is unknown.
	Get(ctx context.Context, key model.FrameKey) (FrameResult, error)

	// MatchSummary aggregates a match. Returns ErrMatchNotFound if unknown.
	MatchSummary(ctx context.Context, matchID string) (MatchSummary, error)

	// TopFrames returns the n frames in which team held the largest share of
	// the pitch, highest first.
	TopFrames(ctx context.Context, matchID string, team model.Team, n int) ([]DominanceEntry, error)

	// Timeline returns every valid frame of a match ordered by frame id.
	Timeline(ctx context.Context, matchID string) ([]TimelinePoint, error)

	// Count returns the number of stored frames, valid or not.
	Count(ctx context.Context) int

	// Matches returns the known match ids in lexical order.
	Matches(ctx context.Context) []string
}
