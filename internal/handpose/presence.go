package handpose

// Opacity bounds for PresenceState.
const (
	MinOpacity = 0.0
	MaxOpacity = 255.0
)

// DefaultFadeStep reaches full opacity from zero in ten frames.
const DefaultFadeStep = MaxOpacity / 10

// PresenceState holds the per-hand visibility fade used as draw opacity.
type PresenceState struct {
	Left  float64 `json:"left"`
	Right float64 `json:"right"`
}

// PresenceTracker ramps each hand's opacity by a fixed step per frame.
type PresenceTracker struct {
	// Step is the opacity change per frame. Non-positive values use
	// DefaultFadeStep.
	Step float64
}

// Update returns the state after one frame: a detected side moves up by
// Step, a missing side moves down by Step, both clamped to [0, 255].
func (t PresenceTracker) Update(leftDetected, rightDetected bool, state PresenceState) PresenceState {
	step := t.Step
	if step <= 0 {
		step = DefaultFadeStep
	}
	return PresenceState{
		Left:  ramp(state.Left, leftDetected, step),
		Right: ramp(state.Right, rightDetected, step),
	}
}

// UpdatePresence is Update with DefaultFadeStep.
func UpdatePresence(leftDetected, rightDetected bool, state PresenceState) PresenceState {
	return PresenceTracker{}.Update(leftDetected, rightDetected, state)
}

func ramp(v float64, up bool, step float64) float64 {
	if up {
		return min(MaxOpacity, max(MinOpacity, v)+step)
	}
	return max(MinOpacity, min(MaxOpacity, v)-step)
}
