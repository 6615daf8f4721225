package fixtures

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/handpose"
)

func TestSessions(t *testing.T) {
	assert.Equal(t, []string{"ambiguous", "appear_disappear", "jitter", "short_detection", "two_hands"}, Sessions())

	for _, name := range Sessions() {
		t.Run(name, func(t *testing.T) {
			frames, err := Session(name)
			require.NoError(t, err)
			require.NotEmpty(t, frames)
			for i, f := range frames {
				assert.Equal(t, i, f.Seq)
				assert.Equal(t, int64(i*66), f.TimestampMs)
			}
		})
	}
}

func TestSession_Missing(t *testing.T) {
	_, err := Session("nope")
	assert.Error(t, err)
}

// The sessions double as end-to-end checks of the pipeline.
func TestSessionReplays(t *testing.T) {
	replay := func(t *testing.T, name string) []handpose.Output {
		t.Helper()
		hands, err := SessionHands(name)
		require.NoError(t, err)
		return handpose.Replay(hands, handpose.DefaultConfig())
	}

	t.Run("appear_disappear", func(t *testing.T) {
		outs := replay(t, "appear_disappear")
		require.Len(t, outs, 20)

		assert.Equal(t, handpose.MaxOpacity, outs[9].Opacity.Right)
		assert.Equal(t, handpose.MinOpacity, outs[19].Opacity.Right)
		assert.Empty(t, outs[19].Smoothed.Right)
		assert.Empty(t, outs[19].Held.Right)
		for _, o := range outs {
			assert.Equal(t, handpose.MinOpacity, o.Opacity.Left)
		}
	})

	t.Run("two_hands", func(t *testing.T) {
		outs := replay(t, "two_hands")

		assert.Contains(t, outs[0].Diagnostics, handpose.Diagnostic{Label: "Left is front", Value: true})
		assert.Contains(t, outs[0].Diagnostics, handpose.Diagnostic{Label: "Right is front", Value: false})
		assert.Contains(t, outs[11].Diagnostics, handpose.Diagnostic{Label: "Right is front", Value: true})

		last := outs[len(outs)-1]
		assert.True(t, handpose.IsFront(last.Smoothed.Right, handpose.Right))
		assert.True(t, handpose.IsFront(last.Smoothed.Left, handpose.Left))
	})

	t.Run("jitter", func(t *testing.T) {
		hands, err := SessionHands("jitter")
		require.NoError(t, err)
		outs := handpose.Replay(hands, handpose.DefaultConfig())

		var rawSpread, smoothSpread float64
		for i := 1; i < len(outs); i++ {
			rawSpread += abs(outs[i].Raw.Right[handpose.Wrist].X - outs[i-1].Raw.Right[handpose.Wrist].X)
			smoothSpread += abs(outs[i].Smoothed.Right[handpose.Wrist].X - outs[i-1].Smoothed.Right[handpose.Wrist].X)
		}
		assert.Less(t, smoothSpread, rawSpread)
	})

	t.Run("ambiguous", func(t *testing.T) {
		hands, err := SessionHands("ambiguous")
		require.NoError(t, err)
		assert.Equal(t, []handpose.Handedness{handpose.Right}, handpose.Duplicates(hands[0]))

		outs := handpose.Replay(hands, handpose.DefaultConfig())
		// Last Right detection wins and the unknown label is dropped
		assert.Equal(t, hands[0][1].Keypoints, outs[0].Raw.Right)
		assert.Empty(t, outs[0].Raw.Left)
		assert.Len(t, outs[0].Diagnostics, 4)
	})

	t.Run("short_detection", func(t *testing.T) {
		outs := replay(t, "short_detection")

		// Short hands count as present but never produce a partial pose
		assert.Equal(t, 4*handpose.DefaultFadeStep, outs[3].Opacity.Left)
		for _, o := range outs[:4] {
			assert.Empty(t, o.Smoothed.Left)
		}
		assert.Len(t, outs[4].Smoothed.Left, handpose.NumLandmarks)
		assert.Len(t, outs[5].Smoothed.Left, handpose.NumLandmarks)
	})
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
