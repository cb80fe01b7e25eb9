// Command frame-replay replays a synthetic match against a running
// pitch-control service and verifies what it reports.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/footmetricx/pitchctl/internal/replay"
)

// Default configuration constants.
const (
	defaultFrames     = 1500
	defaultFrameRate  = 5.0
	defaultTop        = 10
	defaultWorkers    = 2 // multiplier for runtime.NumCPU()
	defaultTimeout    = 30 * time.Second
	defaultWait       = 2 * time.Minute
	defaultRunTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL    = flag.String("url", "http://localhost:9080", "Base URL of the service")
		matchID    = flag.String("match", "", "Match id (default: replay-<uuid>)")
		frames     = flag.Int("frames", defaultFrames, "Number of frames to generate")
		frameRate  = flag.Float64("fps", defaultFrameRate, "Frame rate of the synthetic match")
		seed       = flag.Uint64("seed", 1, "Seed of the synthetic match")
		workers    = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent submitters")
		top        = flag.Int("top", defaultTop, "Dominance entries fetched per team")
		timeout    = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		wait       = flag.Duration("wait", defaultWait, "Time allowed for processing")
		outputFile = flag.String("output", "", "Output file for generated frames (default: generated_frames_TIMESTAMP.json)")
		logFile    = flag.String("log", "", "Also write logs to this file")
		logFormat  = flag.String("format", "text", "Log format: text or json")
		verbose    = flag.Bool("verbose", false, "Enable verbose logging")
		help       = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		replay.ShowHelp()
		return
	}

	if err := replay.SetupLogging(*logFile, *logFormat, *verbose); err != nil {
		fmt.Fprintln(os.Stderr, "Failed to setup logging:", err)
		os.Exit(1)
	}

	if *outputFile == "" {
		*outputFile = fmt.Sprintf("generated_frames_%s.json", time.Now().Format("20060102_150405"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, defaultRunTimeout)
	defer cancel()

	config := &replay.Config{
		BaseURL:     *baseURL,
		MatchID:     *matchID,
		Frames:      *frames,
		FrameRate:   *frameRate,
		Seed:        *seed,
		Workers:     *workers,
		Top:         *top,
		Timeout:     *timeout,
		WaitTimeout: *wait,
		OutputFile:  *outputFile,
		Verbose:     *verbose,
	}

	if _, err := replay.Run(ctx, config); err != nil {
		fmt.Fprintln(os.Stderr, "Replay failed:", err)
		cancel()
		os.Exit(1) //nolint:gocritic // exitAfterDefer: cancel is called explicitly
	}
}
