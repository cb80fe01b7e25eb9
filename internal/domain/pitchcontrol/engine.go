// Package pitchcontrol estimates spatial dominance from a tracking frame.
//
// For every grid cell it models how quickly each player can reach the cell
// centre, turns those arrival times into logistic influence values relative
// to the fastest arrival, and normalises the per-team sums onto [-1, 1].
// The computation is a pure function of the frame and the parameters: an
// Engine holds no mutable state and may be shared between goroutines.
package pitchcontrol

import (
	"math"

	"github.com/footmetricx/pitchctl/internal/domain/model"
)

// degenerateTotal is the influence sum below which a cell is neutral.
const degenerateTotal = 1e-12

// Engine evaluates frames against a fixed parameter set.
type Engine struct {
	params Params
	cols   int
	rows   int
}

// New validates params and returns an Engine.
func New(params Params) (*Engine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	cols, rows := gridDims(params.Pitch, params.GridResolution)
	return &Engine{params: params, cols: cols, rows: rows}, nil
}

// NewWithOptions builds an Engine from DefaultParams adjusted by opts.
func NewWithOptions(opts ...Option) (*Engine, error) {
	p := DefaultParams()
	for _, opt := range opts {
		opt(&p)
	}
	return New(p)
}

// Params returns the engine's parameters.
func (e *Engine) Params() Params { return e.params }

// GridDims returns the column and row count of grids produced by e.
func (e *Engine) GridDims() (cols, rows int) { return e.cols, e.rows }

// Compute evaluates one frame. Malformed frames yield an *InvalidFrameError;
// numeric degeneracies inside the grid resolve to neutral control.
func (e *Engine) Compute(frame *model.Frame) (*Grid, ZoneSummary, error) {
	if err := validateFrame(frame, e.params); err != nil {
		return nil, ZoneSummary{}, err
	}

	grid := newGrid(e.params.Pitch, e.cols, e.rows, make([]float64, e.cols*e.rows))
	data := grid.values.RawMatrix().Data

	home := make([]float64, len(frame.Home))
	away := make([]float64, len(frame.Away))
	for row := 0; row < e.rows; row++ {
		for col := 0; col < e.cols; col++ {
			c := grid.Center(col, row)
			arrivalTimes(frame.Home, c, e.params, home)
			arrivalTimes(frame.Away, c, e.params, away)
			data[row*e.cols+col] = e.cellControl(home, away)
		}
	}

	dir := frame.HomeAttacks
	if dir == "" {
		dir = model.AttacksRight
	}
	return grid, Summarize(grid, frame.Ball, dir), nil
}

// Compute is the one-shot form: it evaluates frame on a pitch at the given
// resolution, with the remaining parameters taken from DefaultParams and opts.
func Compute(frame *model.Frame, resolution float64, pitch model.Pitch, opts ...Option) (*Grid, ZoneSummary, error) {
	opts = append(opts, WithGridResolution(resolution), WithPitch(pitch))
	e, err := NewWithOptions(opts...)
	if err != nil {
		return nil, ZoneSummary{}, err
	}
	return e.Compute(frame)
}

func arrivalTimes(players []model.PlayerSample, target model.Vec2, p Params, out []float64) {
	for i := range players {
		out[i] = TimeToReach(players[i].Position, players[i].Velocity, target, p)
	}
}

// cellControl reduces per-player arrival times at one cell to a control value.
func (e *Engine) cellControl(home, away []float64) float64 {
	sat := e.params.SaturationTime

	fastest := math.Inf(1)
	for _, t := range home {
		fastest = math.Min(fastest, t)
	}
	for _, t := range away {
		fastest = math.Min(fastest, t)
	}
	if fastest > sat {
		return 0
	}

	sumHome := e.teamInfluence(home, fastest)
	sumAway := e.teamInfluence(away, fastest)
	total := sumHome + sumAway
	if total < degenerateTotal {
		return 0
	}
	return (sumHome - sumAway) / total
}

func (e *Engine) teamInfluence(times []float64, fastest float64) float64 {
	var sum float64
	for _, t := range times {
		if t > e.params.SaturationTime {
			continue
		}
		sum += Influence(t, fastest, e.params.SigmoidWidth)
	}
	return sum
}
