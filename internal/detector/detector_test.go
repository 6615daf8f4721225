package detector

import (
	"errors"
	"testing"

	"github.com/ayusman/mudra/internal/handpose"
)

func TestMockDetector(t *testing.T) {
	t.Run("returns empty hands by default", func(t *testing.T) {
		mock := NewMockDetector()

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if hands != nil {
			t.Errorf("expected nil hands, got %v", hands)
		}
	})

	t.Run("returns configured hands", func(t *testing.T) {
		mock := NewMockDetector()

		mock.SetHands([]handpose.Hand{
			OpenPalm(handpose.Right),
			OpenPalm(handpose.Left),
		})

		hands, err := mock.Detect(nil)

		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
		if len(hands) != 2 {
			t.Errorf("expected 2 hands, got %d", len(hands))
		}
	})

	t.Run("consumes sequence then falls back", func(t *testing.T) {
		mock := NewMockDetector()
		mock.SetHands([]handpose.Hand{OpenPalm(handpose.Right)})
		mock.SetSequence([][]handpose.Hand{
			nil,
			{OpenPalm(handpose.Left), OpenPalm(handpose.Right)},
		})

		want := []int{0, 2, 1, 1}
		for i, n := range want {
			hands, _ := mock.Detect(nil)
			if len(hands) != n {
				t.Errorf("call %d: expected %d hands, got %d", i, n, len(hands))
			}
		}
		if mock.Calls() != len(want) {
			t.Errorf("expected %d calls, got %d", len(want), mock.Calls())
		}
	})

	t.Run("returns configured error", func(t *testing.T) {
		mock := NewMockDetector()

		expectedErr := errors.New("detection failed")
		mock.SetError(expectedErr)

		hands, err := mock.Detect(nil)

		if err != expectedErr {
			t.Errorf("expected error %v, got %v", expectedErr, err)
		}
		if hands != nil {
			t.Errorf("expected nil hands when error is set, got %v", hands)
		}
	})

	t.Run("Close returns nil", func(t *testing.T) {
		mock := NewMockDetector()

		if err := mock.Close(); err != nil {
			t.Errorf("expected Close to return nil, got %v", err)
		}
	})

	t.Run("implements Detector interface", func(t *testing.T) {
		var _ Detector = (*MockDetector)(nil)
		var _ Detector = (*MediaPipeDetector)(nil)
	})
}

func TestFixtures(t *testing.T) {
	t.Run("open palm is front for both sides", func(t *testing.T) {
		for _, side := range []handpose.Handedness{handpose.Left, handpose.Right} {
			hand := OpenPalm(side)
			if hand.Handedness != side {
				t.Errorf("expected handedness %s, got %s", side, hand.Handedness)
			}
			if len(hand.Keypoints) != handpose.NumLandmarks {
				t.Fatalf("expected %d keypoints, got %d", handpose.NumLandmarks, len(hand.Keypoints))
			}
			if !handpose.IsFront(hand.Keypoints, side) {
				t.Errorf("%s open palm should be front", side)
			}
		}
	})

	t.Run("back of hand is back for both sides", func(t *testing.T) {
		for _, side := range []handpose.Handedness{handpose.Left, handpose.Right} {
			hand := BackOfHand(side)
			if handpose.IsFront(hand.Keypoints, side) {
				t.Errorf("%s back of hand should not be front", side)
			}
		}
	})

	t.Run("fingers are extended", func(t *testing.T) {
		hand := OpenPalm(handpose.Right)
		tips := []int{handpose.IndexTip, handpose.MiddleTip, handpose.RingTip, handpose.PinkyTip}
		for _, tip := range tips {
			mcp := tip - 3
			if ext := hand.Keypoints[mcp].Y - hand.Keypoints[tip].Y; ext < 0.2 {
				t.Errorf("finger %d not extended enough (extension: %f)", tip, ext)
			}
		}
	})

	t.Run("flat hand shares one height", func(t *testing.T) {
		hand := FlatHand(handpose.Right, 100)
		for i, kp := range hand.Keypoints {
			if kp.Y != 100 {
				t.Errorf("landmark %d: expected y 100, got %f", i, kp.Y)
			}
		}
	})
}

func TestConfig_FilterHands(t *testing.T) {
	low := OpenPalm(handpose.Left)
	low.Score = 0.2

	hands := []handpose.Hand{low, OpenPalm(handpose.Right), OpenPalm(handpose.Left), OpenPalm(handpose.Right)}

	cfg := Config{MaxHands: 2, MinConfidence: 0.5}
	got := cfg.filterHands(hands)

	if len(got) != 2 {
		t.Fatalf("expected 2 hands, got %d", len(got))
	}
	if got[0].Handedness != handpose.Right || got[1].Handedness != handpose.Left {
		t.Errorf("unexpected order: %s, %s", got[0].Handedness, got[1].Handedness)
	}

	if got := (Config{}).filterHands(hands); len(got) != len(hands) {
		t.Errorf("zero config should keep all hands, got %d", len(got))
	}
}

func TestParseResponse(t *testing.T) {
	t.Run("decodes hands", func(t *testing.T) {
		line := `{"hands":[{"handedness":"left","score":0.87,"points":[{"x":0.1,"y":0.2,"z":-0.01},{"x":0.3,"y":0.4}]}]}`

		hands, err := parseResponse([]byte(line))
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(hands) != 1 {
			t.Fatalf("expected 1 hand, got %d", len(hands))
		}

		h := hands[0]
		if h.Handedness != handpose.Left {
			t.Errorf("expected Left, got %s", h.Handedness)
		}
		if h.Score != 0.87 {
			t.Errorf("expected score 0.87, got %f", h.Score)
		}
		if len(h.Keypoints) != 2 {
			t.Fatalf("short detections must pass through, got %d keypoints", len(h.Keypoints))
		}
		if h.Keypoints[0].Z == nil || *h.Keypoints[0].Z != -0.01 {
			t.Errorf("expected z -0.01, got %v", h.Keypoints[0].Z)
		}
		if h.Keypoints[1].Z != nil {
			t.Errorf("expected missing z, got %v", *h.Keypoints[1].Z)
		}
		if h.Keypoints[0].Name != "wrist" {
			t.Errorf("expected wrist name, got %q", h.Keypoints[0].Name)
		}
	})

	t.Run("service error", func(t *testing.T) {
		if _, err := parseResponse([]byte(`{"error":"model not loaded"}`)); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		if _, err := parseResponse([]byte(`not json`)); err == nil {
			t.Error("expected error")
		}
	})
}
