package handpose

import (
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const epsilon = 1e-9

// approx compares keypoints with floating-point tolerance.
var approx = cmp.Options{
	cmpopts.EquateApprox(0, epsilon),
	cmpopts.EquateEmpty(),
}

// flatHand returns a full hand with every landmark at height y.
func flatHand(y float64) []Keypoint {
	kps := make([]Keypoint, NumLandmarks)
	for i := range kps {
		kps[i] = Keypoint{X: float64(i) * 10, Y: y}
	}
	return kps
}

// openPalmRight is an upright right hand with the palm towards the camera.
func openPalmRight() []Keypoint {
	pts := [NumLandmarks][2]float64{
		{0.50, 0.80},
		{0.55, 0.75}, {0.62, 0.70}, {0.68, 0.65}, {0.73, 0.60},
		{0.55, 0.68}, {0.57, 0.55}, {0.58, 0.45}, {0.58, 0.35},
		{0.50, 0.66}, {0.50, 0.52}, {0.50, 0.40}, {0.50, 0.28},
		{0.45, 0.68}, {0.43, 0.55}, {0.42, 0.45}, {0.42, 0.35},
		{0.40, 0.70}, {0.37, 0.60}, {0.35, 0.50}, {0.34, 0.42},
	}
	kps := make([]Keypoint, NumLandmarks)
	for i, p := range pts {
		kps[i] = Keypoint{X: p[0], Y: p[1], Name: LandmarkNames[i]}
	}
	return kps
}

// mirrorX reflects keypoints about the y axis. Negation is exact, so the
// mirrored geometry has exactly the opposite orientation.
func mirrorX(kps []Keypoint) []Keypoint {
	out := make([]Keypoint, len(kps))
	for i, kp := range kps {
		out[i] = kp
		out[i].X = -kp.X
	}
	return out
}

// shifted returns kps moved by dx, dy.
func shifted(kps []Keypoint, dx, dy float64) []Keypoint {
	out := make([]Keypoint, len(kps))
	for i, kp := range kps {
		out[i] = kp
		out[i].X += dx
		out[i].Y += dy
	}
	return out
}

func rightHand(kps []Keypoint) Hand {
	return Hand{Keypoints: kps, Handedness: Right, Score: 0.9}
}

func leftHand(kps []Keypoint) Hand {
	return Hand{Keypoints: kps, Handedness: Left, Score: 0.8}
}
