package detector

import (
	"sync"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/handpose"
)

// MockDetector is a test implementation of the Detector interface.
// It allows tests to control the detection results.
type MockDetector struct {
	mu       sync.Mutex
	hands    []handpose.Hand
	sequence [][]handpose.Hand
	err      error
	calls    int
}

// NewMockDetector creates a new MockDetector instance.
func NewMockDetector() *MockDetector {
	return &MockDetector{}
}

// SetHands sets the hands that will be returned by every Detect call.
func (m *MockDetector) SetHands(hands []handpose.Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hands = hands
	m.sequence = nil
}

// SetSequence queues per-call results. Each Detect consumes one entry;
// once the queue is empty Detect falls back to the hands set by SetHands.
func (m *MockDetector) SetSequence(frames [][]handpose.Hand) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sequence = frames
}

// SetError sets the error that will be returned by Detect.
func (m *MockDetector) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// Calls returns how many times Detect has been called.
func (m *MockDetector) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Detect returns the pre-configured hands or error.
func (m *MockDetector) Detect(frame *gocv.Mat) ([]handpose.Hand, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if len(m.sequence) > 0 {
		next := m.sequence[0]
		m.sequence = m.sequence[1:]
		return next, nil
	}
	return m.hands, nil
}

// Close is a no-op for the mock detector.
func (m *MockDetector) Close() error {
	return nil
}

// openPalmRight holds normalized image coordinates of an upright right
// hand, palm towards the camera, all fingers extended.
var openPalmRight = [handpose.NumLandmarks][3]float64{
	{0.50, 0.80, 0.00}, // wrist

	{0.55, 0.75, 0.02}, // thumb
	{0.62, 0.70, 0.03},
	{0.68, 0.65, 0.03},
	{0.73, 0.60, 0.03},

	{0.55, 0.68, 0.00}, // index
	{0.57, 0.55, 0.00},
	{0.58, 0.45, 0.00},
	{0.58, 0.35, 0.00},

	{0.50, 0.66, 0.00}, // middle
	{0.50, 0.52, 0.00},
	{0.50, 0.40, 0.00},
	{0.50, 0.28, 0.00},

	{0.45, 0.68, 0.00}, // ring
	{0.43, 0.55, 0.00},
	{0.42, 0.45, 0.00},
	{0.42, 0.35, 0.00},

	{0.40, 0.70, 0.00}, // pinky
	{0.37, 0.60, 0.00},
	{0.35, 0.50, 0.00},
	{0.34, 0.42, 0.00},
}

// OpenPalm returns a preset hand of the given side with the palm facing
// the camera.
func OpenPalm(side handpose.Handedness) handpose.Hand {
	hand := handpose.Hand{
		Keypoints:  make([]handpose.Keypoint, handpose.NumLandmarks),
		Handedness: side,
		Score:      0.95,
	}
	for i, p := range openPalmRight {
		hand.Keypoints[i] = handpose.Keypoint{
			X:    p[0],
			Y:    p[1],
			Z:    handpose.Float(p[2]),
			Name: handpose.LandmarkNames[i],
		}
	}
	if side == handpose.Left {
		hand.Keypoints = Mirror(hand.Keypoints)
	}
	return hand
}

// BackOfHand returns a preset hand of the given side with the back of the
// hand facing the camera.
func BackOfHand(side handpose.Handedness) handpose.Hand {
	hand := OpenPalm(side)
	hand.Keypoints = Mirror(hand.Keypoints)
	hand.Score = 0.9
	return hand
}

// FlatHand returns a hand with all 21 landmarks on the horizontal line y.
func FlatHand(side handpose.Handedness, y float64) handpose.Hand {
	hand := handpose.Hand{
		Keypoints:  make([]handpose.Keypoint, handpose.NumLandmarks),
		Handedness: side,
		Score:      0.9,
	}
	for i := range hand.Keypoints {
		hand.Keypoints[i] = handpose.Keypoint{X: float64(i) * 10, Y: y}
	}
	return hand
}

// Mirror reflects normalized keypoints horizontally, as a selfie camera
// view does.
func Mirror(kps []handpose.Keypoint) []handpose.Keypoint {
	out := make([]handpose.Keypoint, len(kps))
	for i, kp := range kps {
		out[i] = kp
		out[i].X = 1 - kp.X
	}
	return out
}
