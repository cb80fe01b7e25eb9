// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - Provide New() to build a Config with defaults.
// - Load layers a YAML file and PITCHCTL_* environment variables on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"runtime"

	"github.com/footmetricx/pitchctl/internal/domain/model"
	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the in-memory frame queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of engine workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many frame keys are remembered for deduplication.
	DedupeSize int `koanf:"dedupe_size"`

	// GridRetention caps the control grids kept per match; 0 keeps all.
	GridRetention int `koanf:"grid_retention"`

	// MaxDominanceLimit caps GET /matches/{id}/dominance?limit.
	MaxDominanceLimit int `koanf:"max_dominance_limit"`

	// Engine parameters.
	PitchLength     float64 `koanf:"pitch_length"`
	PitchWidth      float64 `koanf:"pitch_width"`
	GridResolution  float64 `koanf:"grid_resolution"`
	ReactionTime    float64 `koanf:"reaction_time"`
	MaxAcceleration float64 `koanf:"max_acceleration"`
	MaxSpeed        float64 `koanf:"max_speed"`
	SigmoidWidth    float64 `koanf:"sigmoid_width"`
	SaturationTime  float64 `koanf:"saturation_time"`
	BoundsMargin    float64 `koanf:"bounds_margin"`
}

// New creates a Config holding the defaults.
func New() *Config {
	p := pitchcontrol.DefaultParams()
	return &Config{
		LogLevel:          "info",
		LogFormat:         "text",
		Addr:              ":9080",
		QueueSize:         10_000,
		WorkerCount:       runtime.NumCPU(),
		DedupeSize:        100_000,
		GridRetention:     500,
		MaxDominanceLimit: 100,
		PitchLength:       p.Pitch.Length,
		PitchWidth:        p.Pitch.Width,
		GridResolution:    p.GridResolution,
		ReactionTime:      p.ReactionTime,
		MaxAcceleration:   p.MaxAcceleration,
		MaxSpeed:          p.MaxSpeed,
		SigmoidWidth:      p.SigmoidWidth,
		SaturationTime:    p.SaturationTime,
		BoundsMargin:      p.BoundsMargin,
	}
}

// Params returns the engine parameters described by c.
func (c *Config) Params() pitchcontrol.Params {
	return pitchcontrol.Params{
		Pitch:           model.Pitch{Length: c.PitchLength, Width: c.PitchWidth},
		GridResolution:  c.GridResolution,
		ReactionTime:    c.ReactionTime,
		MaxAcceleration: c.MaxAcceleration,
		MaxSpeed:        c.MaxSpeed,
		SigmoidWidth:    c.SigmoidWidth,
		SaturationTime:  c.SaturationTime,
		BoundsMargin:    c.BoundsMargin,
	}
}
