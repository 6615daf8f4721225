// Package handpose turns raw per-frame hand detections into a stable,
// handedness-resolved stream: routing, bounded history, smoothing,
// front/back orientation and presence fade.
package handpose

import (
	"encoding/json"
	"strings"
)

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// LandmarkNames holds the canonical name of each landmark index.
var LandmarkNames = [NumLandmarks]string{
	"wrist",
	"thumb_cmc", "thumb_mcp", "thumb_ip", "thumb_tip",
	"index_finger_mcp", "index_finger_pip", "index_finger_dip", "index_finger_tip",
	"middle_finger_mcp", "middle_finger_pip", "middle_finger_dip", "middle_finger_tip",
	"ring_finger_mcp", "ring_finger_pip", "ring_finger_dip", "ring_finger_tip",
	"pinky_finger_mcp", "pinky_finger_pip", "pinky_finger_dip", "pinky_finger_tip",
}

// Keypoint is a single landmark position estimate. Z is optional because
// some detectors only report image-plane coordinates.
type Keypoint struct {
	X    float64  `json:"x"`
	Y    float64  `json:"y"`
	Z    *float64 `json:"z,omitempty"`
	Name string   `json:"name,omitempty"`
}

// Handedness labels a detected hand as left or right.
type Handedness string

const (
	Left  Handedness = "Left"
	Right Handedness = "Right"
)

// ParseHandedness converts a detector label to a Handedness.
// Matching is case-insensitive; ok is false for anything else.
func ParseHandedness(s string) (h Handedness, ok bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left":
		return Left, true
	case "right":
		return Right, true
	}
	return "", false
}

// UnmarshalJSON accepts any casing of "left" and "right". Other labels are
// kept verbatim and routed nowhere.
func (h *Handedness) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if parsed, ok := ParseHandedness(s); ok {
		*h = parsed
		return nil
	}
	*h = Handedness(s)
	return nil
}

// Valid reports whether h is Left or Right.
func (h Handedness) Valid() bool {
	return h == Left || h == Right
}

// Hand is one detector record for a visible hand.
type Hand struct {
	Keypoints  []Keypoint `json:"keypoints"`
	Handedness Handedness `json:"handedness"`
	Score      float64    `json:"score"`
}

// Frame is the routed per-frame snapshot. An empty side means the hand
// was not detected this frame.
type Frame struct {
	Left  []Keypoint `json:"left"`
	Right []Keypoint `json:"right"`
}

// Side returns the keypoints for the given handedness.
func (f Frame) Side(h Handedness) []Keypoint {
	if h == Left {
		return f.Left
	}
	if h == Right {
		return f.Right
	}
	return nil
}

// Smoothed is the per-frame smoothed estimate. Each side is either empty
// or exactly NumLandmarks long.
type Smoothed struct {
	Left  []Keypoint `json:"left"`
	Right []Keypoint `json:"right"`
}

// Float returns a pointer to v, for building keypoints with Z set.
func Float(v float64) *float64 {
	return &v
}
