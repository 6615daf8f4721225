package render

import (
	"fmt"
	"image/color"
	"io"
	"math"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/ayusman/mudra/internal/handpose"
)

// Chart sizes for PNG output.
const (
	ChartWidth  = 10 * vg.Inch
	ChartHeight = 4 * vg.Inch
)

// PresenceChart plots left and right opacity per frame.
func PresenceChart(outputs []handpose.Output) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Presence"
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "opacity"
	p.X.Min, p.X.Max = 0, float64(max(len(outputs)-1, 1))
	p.Y.Min, p.Y.Max = handpose.MinOpacity, handpose.MaxOpacity

	left := make(plotter.XYs, len(outputs))
	right := make(plotter.XYs, len(outputs))
	for i, o := range outputs {
		left[i] = plotter.XY{X: float64(i), Y: o.Opacity.Left}
		right[i] = plotter.XY{X: float64(i), Y: o.Opacity.Right}
	}

	if err := addLine(p, "left", left, LeftColor, false); err != nil {
		return nil, err
	}
	if err := addLine(p, "right", right, RightColor, false); err != nil {
		return nil, err
	}
	return p, nil
}

// JitterChart plots the frame-to-frame wrist displacement of each side,
// raw (dashed) against smoothed (solid). Frames where either endpoint is
// missing are left out.
func JitterChart(outputs []handpose.Output) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "Wrist jitter"
	p.X.Label.Text = "frame"
	p.Y.Label.Text = "displacement"
	p.X.Min, p.X.Max = 0, float64(max(len(outputs)-1, 1))

	var rawL, rawR, smL, smR plotter.XYs
	for i := 1; i < len(outputs); i++ {
		prev, cur := outputs[i-1], outputs[i]
		x := float64(i)
		if d, ok := wristStep(prev.Raw.Left, cur.Raw.Left); ok {
			rawL = append(rawL, plotter.XY{X: x, Y: d})
		}
		if d, ok := wristStep(prev.Raw.Right, cur.Raw.Right); ok {
			rawR = append(rawR, plotter.XY{X: x, Y: d})
		}
		if d, ok := wristStep(prev.Smoothed.Left, cur.Smoothed.Left); ok {
			smL = append(smL, plotter.XY{X: x, Y: d})
		}
		if d, ok := wristStep(prev.Smoothed.Right, cur.Smoothed.Right); ok {
			smR = append(smR, plotter.XY{X: x, Y: d})
		}
	}

	lines := []struct {
		name   string
		pts    plotter.XYs
		dashed bool
	}{
		{"left raw", rawL, true},
		{"right raw", rawR, true},
		{"left smoothed", smL, false},
		{"right smoothed", smR, false},
	}
	for i, l := range lines {
		c := LeftColor
		if i%2 == 1 {
			c = RightColor
		}
		if err := addLine(p, l.name, l.pts, c, l.dashed); err != nil {
			return nil, err
		}
	}
	return p, nil
}

func wristStep(prev, cur []handpose.Keypoint) (float64, bool) {
	if len(prev) == 0 || len(cur) == 0 {
		return 0, false
	}
	a, b := prev[handpose.Wrist], cur[handpose.Wrist]
	d := math.Hypot(b.X-a.X, b.Y-a.Y)
	if math.IsNaN(d) || math.IsInf(d, 0) {
		return 0, false
	}
	return d, true
}

func addLine(p *plot.Plot, name string, pts plotter.XYs, c color.Color, dashed bool) error {
	if len(pts) == 0 {
		return nil
	}
	line, err := plotter.NewLine(pts)
	if err != nil {
		return fmt.Errorf("create %s line: %w", name, err)
	}
	line.Color = c
	line.Width = vg.Points(1.5)
	if dashed {
		line.Dashes = []vg.Length{vg.Points(4), vg.Points(3)}
	}
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

// WritePNG renders p as a PNG image to w.
func WritePNG(p *plot.Plot, w io.Writer) error {
	wt, err := p.WriterTo(ChartWidth, ChartHeight, "png")
	if err != nil {
		return fmt.Errorf("render chart: %w", err)
	}
	if _, err := wt.WriteTo(w); err != nil {
		return fmt.Errorf("write chart: %w", err)
	}
	return nil
}
