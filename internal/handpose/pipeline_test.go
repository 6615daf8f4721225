package handpose

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPipeline_RightHandOnly(t *testing.T) {
	p := NewPipeline(Config{Window: 5})
	hand := rightHand(flatHand(100))

	var out Output
	for frame := 1; frame <= 10; frame++ {
		out = p.Process([]Hand{hand})

		if frame >= 5 {
			require.Len(t, out.Smoothed.Right, NumLandmarks, "frame %d", frame)
			for i, kp := range out.Smoothed.Right {
				assert.InDelta(t, 100.0, kp.Y, epsilon, "frame %d index %d", frame, i)
			}
		}
		assert.Empty(t, out.Smoothed.Left, "frame %d", frame)
	}

	assert.Equal(t, MaxOpacity, out.Opacity.Right)
	assert.Equal(t, 0.0, out.Opacity.Left)
}

func TestPipeline_HandLostAfterOneFrame(t *testing.T) {
	const window = 5
	p := NewPipeline(Config{Window: window})

	want := []float64{25.5, 51, 76.5, 102, 127.5, 102, 76.5, 51, 25.5, 0}

	var prev float64
	for frame := 1; frame <= 10; frame++ {
		var hands []Hand
		if frame == 1 {
			hands = []Hand{rightHand(flatHand(100))}
		}
		out := p.Process(hands)

		assert.InDelta(t, want[frame-1], out.Opacity.Right, epsilon, "frame %d", frame)
		if frame <= window {
			assert.Len(t, out.Smoothed.Right, NumLandmarks, "frame %d still has the hand in its window", frame)
			assert.GreaterOrEqual(t, out.Opacity.Right, prev, "frame %d ramps while smoothed", frame)
		} else {
			assert.Empty(t, out.Smoothed.Right, "frame %d window holds no hand", frame)
			assert.LessOrEqual(t, out.Opacity.Right, prev, "frame %d fades", frame)
			if out.Opacity.Right > 0 {
				assert.Len(t, out.Held.Right, NumLandmarks, "frame %d draws the held pose", frame)
			} else {
				assert.Empty(t, out.Held.Right, "frame %d dropped the held pose", frame)
			}
		}
		prev = out.Opacity.Right
	}
	assert.Equal(t, 0.0, prev)
}

func TestPipeline_PresenceFollowsSmoothedHand(t *testing.T) {
	p := NewPipeline(Config{Window: 2, FadeStep: 100})

	p.Process([]Hand{leftHand(flatHand(1))})
	out := p.Process(nil)
	require.Len(t, out.Smoothed.Left, NumLandmarks)
	assert.Equal(t, 200.0, out.Opacity.Left, "a miss inside the window keeps ramping")

	out = p.Process(nil)
	assert.Empty(t, out.Smoothed.Left)
	assert.Equal(t, 100.0, out.Opacity.Left)
	assert.Len(t, out.Held.Left, NumLandmarks, "held pose drawn while fading")
}

func TestPipeline_ConvergesUnderConstantInput(t *testing.T) {
	const window = 4
	p := NewPipeline(Config{Window: window})

	// fill the window with a different pose first
	for i := 0; i < window; i++ {
		p.Process([]Hand{leftHand(shifted(openPalmRight(), 0.3, 0.1))})
	}

	target := mirrorX(openPalmRight())
	var out Output
	for i := 0; i < window; i++ {
		out = p.Process([]Hand{leftHand(target)})
	}

	if diff := cmp.Diff(target, out.Smoothed.Left, approx); diff != "" {
		t.Errorf("smoothed left did not converge (-want +got):\n%s", diff)
	}
}

func TestPipeline_OutputLengths(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	inputs := [][]Hand{
		nil,
		{rightHand(flatHand(1))},
		{leftHand(flatHand(2)[:7]), rightHand(flatHand(1))},
		{{Keypoints: flatHand(3), Handedness: "unknown"}},
		{leftHand(append(flatHand(1), flatHand(1)...))},
		nil, nil, nil, nil, nil, nil,
	}

	for i, hands := range inputs {
		out := p.Process(hands)
		for _, side := range [][]Keypoint{out.Smoothed.Left, out.Smoothed.Right} {
			n := len(side)
			assert.True(t, n == 0 || n == NumLandmarks, "frame %d produced length %d", i, n)
		}
		assert.GreaterOrEqual(t, out.Opacity.Left, MinOpacity)
		assert.LessOrEqual(t, out.Opacity.Left, MaxOpacity)
	}
}

func TestPipeline_HeldPoseFadesOut(t *testing.T) {
	p := NewPipeline(Config{Window: 1, FadeStep: 100})

	p.Process([]Hand{leftHand(flatHand(5))})
	p.Process([]Hand{leftHand(flatHand(5))})

	out := p.Process(nil)
	assert.Empty(t, out.Smoothed.Left)
	assert.Equal(t, 100.0, out.Opacity.Left)
	require.Len(t, out.Held.Left, NumLandmarks, "held while still visible")

	out = p.Process(nil)
	assert.Equal(t, 0.0, out.Opacity.Left)
	assert.Empty(t, out.Held.Left, "dropped once invisible")
}

func TestPipeline_Diagnostics(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	hands := []Hand{
		rightHand(openPalmRight()),
		{Keypoints: flatHand(1), Handedness: "?", Score: 0.1},
		leftHand(openPalmRight()),
	}

	out := p.Process(hands)

	want := []Diagnostic{
		{Label: "Right accuracy", Value: 0.9},
		{Label: "Right is front", Value: true},
		{Label: "Left accuracy", Value: 0.8},
		{Label: "Left is front", Value: false},
	}
	assert.Equal(t, want, out.Diagnostics)

	assert.Empty(t, p.Process(nil).Diagnostics)
}

func TestPipeline_Reset(t *testing.T) {
	p := NewPipeline(DefaultConfig())
	p.Process([]Hand{rightHand(flatHand(1))})

	p.Reset()

	assert.Equal(t, PresenceState{}, p.Presence())
	assert.Empty(t, p.History().Right)
	out := p.Process(nil)
	assert.Empty(t, out.Smoothed.Right)
	assert.Empty(t, out.Held.Right)
}

func TestPipeline_InstancesAreIndependent(t *testing.T) {
	a := NewPipeline(DefaultConfig())
	b := NewPipeline(DefaultConfig())

	a.Process([]Hand{rightHand(flatHand(1))})

	assert.Equal(t, PresenceState{}, b.Presence())
	assert.Empty(t, b.History().Right)
}

func TestNewPipeline_Defaults(t *testing.T) {
	p := NewPipeline(Config{})
	assert.Equal(t, DefaultConfig(), p.Config())

	p = NewPipeline(Config{Window: 9, GapPolicy: GapHold})
	assert.Equal(t, 9, p.Config().Window)
	assert.Equal(t, GapHold, p.Config().GapPolicy)
	assert.Equal(t, DefaultFadeStep, p.Config().FadeStep)
}

func TestReplay(t *testing.T) {
	frames := [][]Hand{
		{rightHand(flatHand(1))},
		{rightHand(flatHand(3)), leftHand(flatHand(2))},
		nil,
	}

	outputs := Replay(frames, Config{Window: 2})

	require.Len(t, outputs, len(frames))
	p := NewPipeline(Config{Window: 2})
	for i, hands := range frames {
		want := p.Process(hands)
		if diff := cmp.Diff(want, outputs[i], approx); diff != "" {
			t.Errorf("frame %d mismatch (-want +got):\n%s", i, diff)
		}
	}
	assert.InDelta(t, 3.0, outputs[2].Smoothed.Right[0].Y, epsilon)
}
