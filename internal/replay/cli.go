// Package replay drives a running pitch-control service with a synthetic
// match and checks the aggregates it reports.
package replay

import (
	"fmt"
	"io"
	"os"

	"github.com/footmetricx/pitchctl/pkg/logger"
)

// SetupLogging configures logging to the console and, when logFile is set,
// to that file as well.
func SetupLogging(logFile, format string, verbose bool) error {
	var w io.Writer = os.Stdout
	if logFile != "" {
		file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, filePermission)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		w = io.MultiWriter(os.Stdout, file)
	}
	if err := logger.InitWith(w, format); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	if verbose {
		return logger.SetLevelString("debug")
	}
	return nil
}

// ShowHelp prints usage information for the replay tool.
func ShowHelp() {
	os.Stdout.WriteString(`pitchctl frame replay
=====================

Generates a synthetic match, submits every frame concurrently to a running
pitch-control service and verifies the match summary it reports.

Usage:
  go run ./cmd/frame-replay [options]

Options:
  -url string        Base URL of the service (default "http://localhost:9080")
  -match string      Match id (default: replay-<uuid>)
  -frames int        Number of frames to generate (default 1500)
  -fps float         Frame rate of the synthetic match (default 5)
  -seed uint         Seed of the synthetic match (default 1)
  -workers int       Number of concurrent submitters (default CPU cores * 2)
  -top int           Dominance entries fetched per team (default 10)
  -timeout duration  HTTP request timeout (default 30s)
  -wait duration     Time allowed for processing (default 2m)
  -output string     Output file for generated frames
                     (default: generated_frames_TIMESTAMP.json)
  -log string        Also write logs to this file
  -format string     Log format: text or json (default "text")
  -verbose           Enable debug logging
  -help              Show this help message

Examples:
  go run ./cmd/frame-replay -frames 5000 -workers 16
  go run ./cmd/frame-replay -seed 7 -output frames.json
`)
}
