// Package render draws handpose output onto camera frames and charts
// replayed sessions.
package render

import (
	"fmt"
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/handpose"
)

// skeleton lists landmark index pairs to connect with lines.
var skeleton = [][2]int{
	{handpose.Wrist, handpose.ThumbCMC}, {handpose.ThumbCMC, handpose.ThumbMCP},
	{handpose.ThumbMCP, handpose.ThumbIP}, {handpose.ThumbIP, handpose.ThumbTip},
	{handpose.Wrist, handpose.IndexMCP}, {handpose.IndexMCP, handpose.IndexPIP},
	{handpose.IndexPIP, handpose.IndexDIP}, {handpose.IndexDIP, handpose.IndexTip},
	{handpose.IndexMCP, handpose.MiddleMCP}, {handpose.MiddleMCP, handpose.MiddlePIP},
	{handpose.MiddlePIP, handpose.MiddleDIP}, {handpose.MiddleDIP, handpose.MiddleTip},
	{handpose.MiddleMCP, handpose.RingMCP}, {handpose.RingMCP, handpose.RingPIP},
	{handpose.RingPIP, handpose.RingDIP}, {handpose.RingDIP, handpose.RingTip},
	{handpose.RingMCP, handpose.PinkyMCP}, {handpose.Wrist, handpose.PinkyMCP},
	{handpose.PinkyMCP, handpose.PinkyPIP}, {handpose.PinkyPIP, handpose.PinkyDIP},
	{handpose.PinkyDIP, handpose.PinkyTip},
}

var (
	LeftColor  = color.RGBA{R: 66, G: 135, B: 245, A: 255}
	RightColor = color.RGBA{R: 245, G: 96, B: 66, A: 255}
	textColor  = color.RGBA{R: 220, G: 220, B: 220, A: 255}
)

// Options controls how hands are drawn.
type Options struct {
	// Normalized means keypoints are in [0,1] image fractions and must be
	// scaled by the frame size. Otherwise they are pixels.
	Normalized bool
	// Thickness is the skeleton line width in pixels.
	Thickness int
	// Radius is the joint circle radius in pixels.
	Radius int
	// Diagnostics draws the diagnostic labels in the top-left corner.
	Diagnostics bool
}

// DefaultOptions returns options for normalized detector output.
func DefaultOptions() Options {
	return Options{
		Normalized:  true,
		Thickness:   2,
		Radius:      4,
		Diagnostics: true,
	}
}

// Overlay draws both hands of out onto img. Each side is blended with
// alpha = opacity/255, using the held pose when the hand has just been
// lost so it fades out instead of vanishing.
func Overlay(img *gocv.Mat, out handpose.Output, opts Options) {
	if img == nil || img.Empty() {
		return
	}

	drawSide(img, pick(out.Smoothed.Left, out.Held.Left), out.Opacity.Left, LeftColor, opts)
	drawSide(img, pick(out.Smoothed.Right, out.Held.Right), out.Opacity.Right, RightColor, opts)

	if opts.Diagnostics {
		drawDiagnostics(img, out.Diagnostics)
	}
}

func pick(smoothed, held []handpose.Keypoint) []handpose.Keypoint {
	if len(smoothed) > 0 {
		return smoothed
	}
	return held
}

func drawSide(img *gocv.Mat, kps []handpose.Keypoint, opacity float64, c color.RGBA, opts Options) {
	if len(kps) != handpose.NumLandmarks || opacity <= handpose.MinOpacity {
		return
	}

	layer := img.Clone()
	defer layer.Close()

	pts := Points(kps, img.Cols(), img.Rows(), opts.Normalized)
	for _, pair := range skeleton {
		gocv.Line(&layer, pts[pair[0]], pts[pair[1]], c, opts.Thickness)
	}
	for _, pt := range pts {
		gocv.Circle(&layer, pt, opts.Radius, c, -1)
	}

	alpha := min(opacity, handpose.MaxOpacity) / handpose.MaxOpacity
	gocv.AddWeighted(layer, alpha, *img, 1-alpha, 0, img)
}

func drawDiagnostics(img *gocv.Mat, diags []handpose.Diagnostic) {
	for i, d := range diags {
		text := fmt.Sprintf("%s: %v", d.Label, formatValue(d.Value))
		org := image.Pt(10, 20+18*i)
		gocv.PutText(img, text, org, gocv.FontHersheySimplex, 0.5, textColor, 1)
	}
}

func formatValue(v any) string {
	if f, ok := v.(float64); ok {
		return fmt.Sprintf("%.2f", f)
	}
	return fmt.Sprint(v)
}

// Points converts keypoints to pixel positions on a width x height frame.
func Points(kps []handpose.Keypoint, width, height int, normalized bool) []image.Point {
	pts := make([]image.Point, len(kps))
	for i, kp := range kps {
		x, y := kp.X, kp.Y
		if normalized {
			x *= float64(width)
			y *= float64(height)
		}
		pts[i] = image.Pt(int(x+0.5), int(y+0.5))
	}
	return pts
}
