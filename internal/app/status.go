package app

import (
	"fmt"
	"math"

	"github.com/ayusman/mudra/internal/handpose"
)

// Status summarises one side of u for display, e.g. "Left: front 100%".
// Orientation is taken from the smoothed pose, or the held pose while the
// hand fades out.
func (u Update) Status(side handpose.Handedness) string {
	opacity := u.Output.Opacity.Left
	kps, held := u.Output.Smoothed.Left, u.Output.Held.Left
	if side == handpose.Right {
		opacity = u.Output.Opacity.Right
		kps, held = u.Output.Smoothed.Right, u.Output.Held.Right
	}
	if len(kps) == 0 {
		kps = held
	}

	if opacity <= handpose.MinOpacity || len(kps) == 0 {
		return fmt.Sprintf("%s: not visible", side)
	}

	facing := "back"
	if handpose.IsFront(kps, side) {
		facing = "front"
	}
	pct := int(math.Round(opacity / handpose.MaxOpacity * 100))
	return fmt.Sprintf("%s: %s %d%%", side, facing, pct)
}
