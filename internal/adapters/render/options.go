package render

import (
	"github.com/footmetricx/pitchctl/internal/domain/model"
	"gonum.org/v1/plot/vg"
)

// Option applies a configuration option to a render call.
type Option func(*settings)

type settings struct {
	title    string
	subtitle string
	width    vg.Length
	height   vg.Length
	ball     *model.Vec2
	min, max float64
}

func newSettings(opts []Option) settings {
	s := settings{
		title:  "Pitch control",
		width:  10.5 * vg.Inch,
		height: 6.8 * vg.Inch,
		min:    -1,
		max:    1,
	}
	for _, opt := range opts {
		opt(&s)
	}
	return s
}

// WithTitle sets the chart title.
func WithTitle(title string) Option {
	return func(s *settings) {
		if title != "" {
			s.title = title
		}
	}
}

// WithSubtitle sets a second title line (HTML charts only).
func WithSubtitle(subtitle string) Option {
	return func(s *settings) {
		s.subtitle = subtitle
	}
}

// WithSize sets the PNG canvas size.
func WithSize(width, height vg.Length) Option {
	return func(s *settings) {
		if width > 0 && height > 0 {
			s.width, s.height = width, height
		}
	}
}

// WithBall marks the ball position on the heatmap.
func WithBall(ball model.Vec2) Option {
	return func(s *settings) {
		s.ball = &ball
	}
}

// WithRange sets the colour scale bounds. Difference maps use [-2, 2].
func WithRange(lo, hi float64) Option {
	return func(s *settings) {
		if lo < hi {
			s.min, s.max = lo, hi
		}
	}
}
