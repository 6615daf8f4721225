package handpose

// DefaultWindow is the default smoothing window length in frames.
const DefaultWindow = 5

// Config holds the tunables of a Pipeline.
type Config struct {
	// Window is the number of trailing frames averaged per hand.
	Window int `json:"window_size"`
	// FadeStep is the opacity change per frame.
	FadeStep float64 `json:"fade_step"`
	// GapPolicy decides how frames without a hand enter the history.
	GapPolicy GapPolicy `json:"gap_policy"`
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		Window:    DefaultWindow,
		FadeStep:  DefaultFadeStep,
		GapPolicy: GapAppend,
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Window <= 0 {
		c.Window = d.Window
	}
	if c.FadeStep <= 0 {
		c.FadeStep = d.FadeStep
	}
	if c.GapPolicy == "" {
		c.GapPolicy = d.GapPolicy
	}
	return c
}

// Diagnostic is a display-only label/value pair.
type Diagnostic struct {
	Label string `json:"label"`
	Value any    `json:"value"`
}

// Output is everything a Pipeline produces for one frame.
type Output struct {
	Raw      Frame    `json:"raw"`
	Smoothed Smoothed `json:"smoothed"`
	// Held keeps the last smoothed pose of each side while its opacity fades
	// out, so a renderer can keep drawing a hand that just disappeared.
	Held        Smoothed      `json:"held"`
	Opacity     PresenceState `json:"opacity"`
	Diagnostics []Diagnostic  `json:"diagnostics"`
}

// Pipeline owns the per-instance state (history and presence) and runs
// one frame at a time. It is not safe for concurrent use; run one
// Pipeline per camera feed.
type Pipeline struct {
	config   Config
	history  *HistoryBuffer
	presence PresenceTracker
	state    PresenceState
	held     Smoothed
}

// NewPipeline creates a Pipeline. Zero fields of config use defaults.
func NewPipeline(config Config) *Pipeline {
	config = config.withDefaults()
	return &Pipeline{
		config:   config,
		history:  NewHistory(config.Window, config.GapPolicy),
		presence: PresenceTracker{Step: config.FadeStep},
	}
}

// Config returns the effective configuration.
func (p *Pipeline) Config() Config {
	return p.config
}

// Process runs one frame of detections through routing, history,
// smoothing, presence and diagnostics. It never fails; missing or short
// detections yield empty sides.
func (p *Pipeline) Process(hands []Hand) Output {
	raw := Route(hands)

	p.history.Push(raw)
	smoothed := Smooth(raw, p.history.Snapshot())

	// A hand still in the smoothing window counts as present, so opacity
	// keeps ramping until the window empties and only then fades out.
	p.state = p.presence.Update(len(smoothed.Left) > 0, len(smoothed.Right) > 0, p.state)
	p.held = Smoothed{
		Left:  hold(p.held.Left, smoothed.Left, p.state.Left),
		Right: hold(p.held.Right, smoothed.Right, p.state.Right),
	}

	return Output{
		Raw:         raw,
		Smoothed:    smoothed,
		Held:        p.held,
		Opacity:     p.state,
		Diagnostics: Diagnose(hands),
	}
}

// Presence returns the current opacity state.
func (p *Pipeline) Presence() PresenceState {
	return p.state
}

// History returns a snapshot of the smoothing window.
func (p *Pipeline) History() History {
	return p.history.Snapshot()
}

// Reset clears history, presence and held poses.
func (p *Pipeline) Reset() {
	p.history.Reset()
	p.state = PresenceState{}
	p.held = Smoothed{}
}

func hold(prev, cur []Keypoint, opacity float64) []Keypoint {
	if len(cur) > 0 {
		return cur
	}
	if opacity <= MinOpacity {
		return nil
	}
	return prev
}

// Diagnose returns one accuracy and one front/back entry per hand with a
// known handedness, in input order.
func Diagnose(hands []Hand) []Diagnostic {
	diags := make([]Diagnostic, 0, 2*len(hands))
	for _, h := range hands {
		if !h.Handedness.Valid() {
			continue
		}
		diags = append(diags,
			Diagnostic{Label: string(h.Handedness) + " accuracy", Value: h.Score},
			Diagnostic{Label: string(h.Handedness) + " is front", Value: IsFront(h.Keypoints, h.Handedness)},
		)
	}
	return diags
}

// Replay runs a recorded sequence of detections through a fresh Pipeline
// and returns one Output per frame.
func Replay(frames [][]Hand, config Config) []Output {
	p := NewPipeline(config)
	outputs := make([]Output, len(frames))
	for i, hands := range frames {
		outputs[i] = p.Process(hands)
	}
	return outputs
}
