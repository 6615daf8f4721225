package handpose

import "math"

// IsFront reports whether the palm of a hand faces the camera.
//
// The test looks at the lateral axis of the palm: the sign of the 2D cross
// product of wrist->index MCP and wrist->pinky MCP, in image coordinates
// with y pointing down. For an upright hand this is the same as comparing
// the x order of the index and pinky knuckles. Left and right hands are
// mirror images, so the sign that means "front" for one means "back" for
// the other.
//
// Too few keypoints, collinear landmarks, NaN coordinates or an unknown
// handedness all return false.
func IsFront(keypoints []Keypoint, handedness Handedness) bool {
	if len(keypoints) <= PinkyMCP {
		return false
	}

	cross := lateralCross(keypoints[Wrist], keypoints[IndexMCP], keypoints[PinkyMCP])
	if cross == 0 || math.IsNaN(cross) {
		return false
	}

	switch handedness {
	case Right:
		return cross < 0
	case Left:
		return cross > 0
	}
	return false
}

func lateralCross(wrist, index, pinky Keypoint) float64 {
	ax, ay := index.X-wrist.X, index.Y-wrist.Y
	bx, by := pinky.X-wrist.X, pinky.Y-wrist.Y
	return ax*by - ay*bx
}
