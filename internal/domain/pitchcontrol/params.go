package pitchcontrol

import (
	"fmt"
	"math"

	"github.com/footmetricx/pitchctl/internal/domain/model"
)

// Default model constants. They are tuning values, not calibrated truths.
const (
	DefaultGridResolution  = 1.0  // m
	DefaultReactionTime    = 0.7  // s
	DefaultMaxAcceleration = 7.0  // m/s²
	DefaultMaxSpeed        = 5.0  // m/s
	DefaultSigmoidWidth    = 0.45 // s
	DefaultSaturationTime  = 10.0 // s
	DefaultBoundsMargin    = 10.0 // m

	// MaxGridCells caps the grid size; 5 cm cells on a full pitch fit.
	MaxGridCells = 1 << 22
)

// Params configures the time-to-reach influence model and the grid.
type Params struct {
	Pitch           model.Pitch `json:"pitch"`
	GridResolution  float64     `json:"grid_resolution"`
	ReactionTime    float64     `json:"reaction_time"`
	MaxAcceleration float64     `json:"max_acceleration"`
	MaxSpeed        float64     `json:"max_speed"`
	SigmoidWidth    float64     `json:"sigmoid_width"`
	SaturationTime  float64     `json:"saturation_time"`
	BoundsMargin    float64     `json:"bounds_margin"`
}

// DefaultParams returns the parameters used when nothing is configured.
func DefaultParams() Params {
	return Params{
		Pitch:           model.StandardPitch,
		GridResolution:  DefaultGridResolution,
		ReactionTime:    DefaultReactionTime,
		MaxAcceleration: DefaultMaxAcceleration,
		MaxSpeed:        DefaultMaxSpeed,
		SigmoidWidth:    DefaultSigmoidWidth,
		SaturationTime:  DefaultSaturationTime,
		BoundsMargin:    DefaultBoundsMargin,
	}
}

// Validate returns a *ConfigurationError for the first unusable parameter.
func (p Params) Validate() error {
	positive := []struct {
		name  string
		value float64
	}{
		{"pitch_length", p.Pitch.Length},
		{"pitch_width", p.Pitch.Width},
		{"grid_resolution", p.GridResolution},
		{"reaction_time", p.ReactionTime},
		{"max_acceleration", p.MaxAcceleration},
		{"max_speed", p.MaxSpeed},
		{"sigmoid_width", p.SigmoidWidth},
		{"saturation_time", p.SaturationTime},
	}
	for _, c := range positive {
		if !(c.value > 0) || math.IsInf(c.value, 0) {
			return &ConfigurationError{Param: c.name, Value: c.value}
		}
	}
	if p.BoundsMargin < 0 || math.IsNaN(p.BoundsMargin) || math.IsInf(p.BoundsMargin, 0) {
		return &ConfigurationError{Param: "bounds_margin", Value: p.BoundsMargin}
	}
	// Counted in float64 so tiny resolutions cannot overflow int.
	cells := math.Ceil(p.Pitch.Length/p.GridResolution) * math.Ceil(p.Pitch.Width/p.GridResolution)
	if cells > MaxGridCells {
		return &ConfigurationError{Param: "grid_resolution", Value: p.GridResolution,
			Detail: fmt.Sprintf("grid of %.0f cells exceeds %d", cells, MaxGridCells)}
	}
	return nil
}

// Option adjusts Params.
type Option func(*Params)

// WithPitch sets the pitch dimensions.
func WithPitch(pitch model.Pitch) Option {
	return func(p *Params) { p.Pitch = pitch }
}

// WithGridResolution sets the target cell size in meters.
func WithGridResolution(meters float64) Option {
	return func(p *Params) { p.GridResolution = meters }
}

// WithReactionTime sets the reaction delay in seconds.
func WithReactionTime(seconds float64) Option {
	return func(p *Params) { p.ReactionTime = seconds }
}

// WithMaxAcceleration sets the acceleration cap in m/s².
func WithMaxAcceleration(a float64) Option {
	return func(p *Params) { p.MaxAcceleration = a }
}

// WithMaxSpeed sets the top running speed in m/s.
func WithMaxSpeed(v float64) Option {
	return func(p *Params) { p.MaxSpeed = v }
}

// WithSigmoidWidth sets the logistic width in seconds.
func WithSigmoidWidth(seconds float64) Option {
	return func(p *Params) { p.SigmoidWidth = seconds }
}

// WithSaturationTime sets the time-to-reach beyond which influence is zero.
func WithSaturationTime(seconds float64) Option {
	return func(p *Params) { p.SaturationTime = seconds }
}

// WithBoundsMargin sets how far outside the pitch a position may lie.
func WithBoundsMargin(meters float64) Option {
	return func(p *Params) { p.BoundsMargin = meters }
}
