package replay

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/footmetricx/pitchctl/internal/domain/types"
	"github.com/footmetricx/pitchctl/pkg/logger"
	"github.com/google/uuid"
)

// File permission constants.
const (
	directoryPermission = 0o750
	filePermission      = 0o600
)

// Run executes a complete replay: generate, submit, wait, verify.
func Run(ctx context.Context, config *Config) (*Report, error) {
	if config.MatchID == "" {
		config.MatchID = "replay-" + uuid.NewString()
	}
	if config.Workers < 1 {
		config.Workers = 1
	}
	if config.Top < 1 {
		config.Top = defaultTop
	}
	if config.WaitTimeout <= 0 {
		config.WaitTimeout = defaultWaitTimeout
	}
	stats := &Stats{StartTime: time.Now()}
	log := logger.Named("replay")

	log.Info(ctx, "starting replay",
		logger.String("baseURL", config.BaseURL),
		logger.String("matchID", config.MatchID),
		logger.Int("frames", config.Frames),
		logger.Int("workers", config.Workers),
		logger.Duration("timeout", config.Timeout))

	client := newHTTPClient(config.Timeout)
	if err := checkServiceHealth(ctx, client, config); err != nil {
		return nil, fmt.Errorf("service health check failed: %w", err)
	}

	frames, err := GenerateFrames(ctx, config, stats)
	if err != nil {
		return nil, fmt.Errorf("frame generation failed: %w", err)
	}

	if config.OutputFile != "" {
		if err := saveFramesToFile(config.OutputFile, frames); err != nil {
			log.Warn(ctx, "failed to save frames to file", logger.Error(err))
		} else {
			log.Info(ctx, "frames saved to file", logger.String("filename", config.OutputFile))
		}
	}

	if err := submitFrames(ctx, config, frames, stats); err != nil {
		return nil, fmt.Errorf("frame submission failed: %w", err)
	}

	report, err := verifyResults(ctx, client, config, stats)
	if err != nil {
		return nil, fmt.Errorf("result verification failed: %w", err)
	}

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	displayFinalStats(ctx, stats)
	report.Stats = *stats
	return report, nil
}

// checkServiceHealth verifies the service is running.
func checkServiceHealth(ctx context.Context, client *HTTPClient, config *Config) error {
	resp, err := client.Get(ctx, config.BaseURL+"/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	_, _ = readResponseBody(resp)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("service health check failed with status: %d", resp.StatusCode)
	}
	return nil
}

// saveFramesToFile writes the generated frames as a JSON array.
func saveFramesToFile(filename string, frames []types.Frame) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, directoryPermission); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	data, err := json.MarshalIndent(frames, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal frames: %w", err)
	}
	if err := os.WriteFile(filename, data, filePermission); err != nil {
		return fmt.Errorf("failed to write %s: %w", filename, err)
	}
	return nil
}

// displayFinalStats logs the final run statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate, framesPerSecond float64
	if stats.Submitted > 0 {
		successRate = float64(stats.Accepted) / float64(stats.Submitted) * percentMultiplier
	}
	if stats.Duration > 0 {
		framesPerSecond = float64(stats.Submitted) / stats.Duration.Seconds()
	}

	logger.Named("replay").Info(ctx, "final statistics",
		logger.Int("framesGenerated", stats.FramesGenerated),
		logger.Int("submitted", stats.Submitted),
		logger.Int("accepted", stats.Accepted),
		logger.Int("duplicate", stats.Duplicate),
		logger.Int("failed", stats.Failed),
		logger.Int("processed", stats.Processed),
		logger.Int("invalid", stats.Invalid),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate),
		logger.Float64("framesPerSecond", framesPerSecond))
}
