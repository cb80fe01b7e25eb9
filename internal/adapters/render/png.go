// Package render draws control grids and match timelines as PNG images
// (gonum/plot) and interactive HTML charts (go-echarts).
package render

import (
	"errors"
	"fmt"
	"image/color"
	"io"

	"github.com/footmetricx/pitchctl/internal/domain/pitchcontrol"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
)

// ErrEmptyGrid is returned when there is nothing to draw.
var ErrEmptyGrid = errors.New("render: empty grid")

const paletteColors = 255

// gridXYZ adapts a control grid to plotter.GridXYZ.
type gridXYZ struct {
	g *pitchcontrol.Grid
}

func (x gridXYZ) Dims() (c, r int)   { return x.g.Dims() }
func (x gridXYZ) Z(c, r int) float64 { return x.g.At(c, r) }
func (x gridXYZ) X(c int) float64    { return x.g.Center(c, 0).X }
func (x gridXYZ) Y(r int) float64    { return x.g.Center(0, r).Y }

// PNG writes a heatmap of g. Home control is red, away control blue.
func PNG(w io.Writer, g *pitchcontrol.Grid, opts ...Option) error {
	if g == nil {
		return ErrEmptyGrid
	}
	s := newSettings(opts)

	cm := moreland.SmoothBlueRed()
	cm.SetMin(s.min)
	cm.SetMax(s.max)

	hm := plotter.NewHeatMap(gridXYZ{g: g}, cm.Palette(paletteColors))
	hm.Min, hm.Max = s.min, s.max

	p := plot.New()
	p.Title.Text = s.title
	p.X.Label.Text = "x (m)"
	p.Y.Label.Text = "y (m)"
	pitch := g.Pitch()
	p.X.Min, p.X.Max = 0, pitch.Length
	p.Y.Min, p.Y.Max = 0, pitch.Width
	p.Add(hm)

	for _, x := range []float64{pitch.Length / 3, 2 * pitch.Length / 3} {
		line, err := plotter.NewLine(plotter.XYs{{X: x, Y: 0}, {X: x, Y: pitch.Width}})
		if err != nil {
			return fmt.Errorf("render: third line: %w", err)
		}
		line.Color = color.Gray{Y: 64}
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
		p.Add(line)
	}

	if s.ball != nil {
		ball, err := plotter.NewScatter(plotter.XYs{{X: s.ball.X, Y: s.ball.Y}})
		if err != nil {
			return fmt.Errorf("render: ball marker: %w", err)
		}
		ball.GlyphStyle.Color = color.Black
		ball.GlyphStyle.Radius = vg.Points(4)
		ball.GlyphStyle.Shape = draw.CircleGlyph{}
		p.Add(ball)
	}

	wt, err := p.WriterTo(s.width, s.height, "png")
	if err != nil {
		return fmt.Errorf("render: png canvas: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("render: write png: %w", err)
	}
	return nil
}
