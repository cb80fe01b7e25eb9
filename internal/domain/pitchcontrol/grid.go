package pitchcontrol

import (
	"errors"
	"math"

	"github.com/footmetricx/pitchctl/internal/domain/model"
	"gonum.org/v1/gonum/mat"
)

// Grid is a fixed-resolution raster of control values covering the pitch.
// Rows run along y (width), columns along x (length). Values lie in [-1, 1]:
// +1 is full home control, -1 full away control, 0 neutral.
type Grid struct {
	pitch  model.Pitch
	cellW  float64
	cellH  float64
	values *mat.Dense
}

// ErrGridShape is returned when two grids of different geometry are combined.
var ErrGridShape = errors.New("grid shapes differ")

// gridDims returns the column/row counts for a pitch at a target resolution.
func gridDims(pitch model.Pitch, resolution float64) (cols, rows int) {
	cols = int(math.Ceil(pitch.Length / resolution))
	rows = int(math.Ceil(pitch.Width / resolution))
	return max(cols, 1), max(rows, 1)
}

func newGrid(pitch model.Pitch, cols, rows int, data []float64) *Grid {
	return &Grid{
		pitch:  pitch,
		cellW:  pitch.Length / float64(cols),
		cellH:  pitch.Width / float64(rows),
		values: mat.NewDense(rows, cols, data),
	}
}

// Dims returns the number of columns (x) and rows (y).
func (g *Grid) Dims() (cols, rows int) {
	r, c := g.values.Dims()
	return c, r
}

// Pitch returns the pitch the grid covers.
func (g *Grid) Pitch() model.Pitch { return g.pitch }

// CellSize returns the cell width (x) and height (y) in meters.
func (g *Grid) CellSize() (w, h float64) { return g.cellW, g.cellH }

// At returns the control value of a cell.
func (g *Grid) At(col, row int) float64 { return g.values.At(row, col) }

// Center returns the pitch coordinates of a cell centre.
func (g *Grid) Center(col, row int) model.Vec2 {
	return model.Vec2{
		X: (float64(col) + 0.5) * g.cellW,
		Y: (float64(row) + 0.5) * g.cellH,
	}
}

// CellOf returns the cell containing p, clamped to the grid.
func (g *Grid) CellOf(p model.Vec2) (col, row int) {
	cols, rows := g.Dims()
	col = clampIndex(int(math.Floor(p.X/g.cellW)), cols)
	row = clampIndex(int(math.Floor(p.Y/g.cellH)), rows)
	return col, row
}

// ValueAt returns the control value of the cell containing p.
func (g *Grid) ValueAt(p model.Vec2) float64 {
	col, row := g.CellOf(p)
	return g.At(col, row)
}

// XCoords returns the x coordinate of every column centre.
func (g *Grid) XCoords() []float64 {
	cols, _ := g.Dims()
	xs := make([]float64, cols)
	for i := range xs {
		xs[i] = (float64(i) + 0.5) * g.cellW
	}
	return xs
}

// YCoords returns the y coordinate of every row centre.
func (g *Grid) YCoords() []float64 {
	_, rows := g.Dims()
	ys := make([]float64, rows)
	for j := range ys {
		ys[j] = (float64(j) + 0.5) * g.cellH
	}
	return ys
}

// Rows returns a copy of the values as rows (one slice per y).
func (g *Grid) Rows() [][]float64 {
	_, rows := g.Dims()
	out := make([][]float64, rows)
	for j := range out {
		out[j] = mat.Row(nil, j, g.values)
	}
	return out
}

// Values returns a row-major copy of every cell value.
func (g *Grid) Values() []float64 {
	raw := g.values.RawMatrix()
	out := make([]float64, 0, raw.Rows*raw.Cols)
	for j := 0; j < raw.Rows; j++ {
		out = append(out, raw.Data[j*raw.Stride:j*raw.Stride+raw.Cols]...)
	}
	return out
}

// Equal reports whether two grids cover the same pitch with identical values.
func (g *Grid) Equal(o *Grid) bool {
	if g == nil || o == nil {
		return g == o
	}
	return g.pitch == o.pitch && mat.Equal(g.values, o.values)
}

// Sub returns g − o cell by cell. The result is a difference map and may
// range over [-2, 2].
func (g *Grid) Sub(o *Grid) (*Grid, error) {
	gc, gr := g.Dims()
	oc, or := o.Dims()
	if gc != oc || gr != or || g.pitch != o.pitch {
		return nil, ErrGridShape
	}
	var diff mat.Dense
	diff.Sub(g.values, o.values)
	return &Grid{pitch: g.pitch, cellW: g.cellW, cellH: g.cellH, values: &diff}, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}
