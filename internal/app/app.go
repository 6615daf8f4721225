// Package app runs the camera to handpose pipeline and fans its output
// out to subscribers.
package app

import (
	"log"
	"sync"
	"time"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/handpose"
	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/store"
)

// subscriberBuffer is how many updates a slow subscriber may fall behind
// before updates to it are dropped.
const subscriberBuffer = 8

// Config holds configuration options for the application.
type Config struct {
	Store    *store.Store
	CameraID int
	FPS      int
	Mirror   bool
	Pipeline handpose.Config
	Detector detector.Config
	Render   render.Options
}

// Update is one processed frame as published to subscribers.
type Update struct {
	Seq         uint64          `json:"seq"`
	TimestampMs int64           `json:"timestamp_ms"`
	Output      handpose.Output `json:"output"`
}

// App is the main application that orchestrates capture, detection and
// the handpose pipeline.
type App struct {
	config   Config
	camera   capture.Camera
	detector detector.Detector
	enabled  bool
	mu       sync.RWMutex
	stopCh   chan struct{}

	// procMu serialises access to the pipeline, which is single-writer.
	procMu    sync.Mutex
	pipeline  *handpose.Pipeline
	seq       uint64
	recording *session

	subMu   sync.Mutex
	subs    map[int]chan Update
	nextSub int
	latest  Update
	jpeg    []byte

	now         func() time.Time
	newCamera   func(id int) capture.Camera
	newDetector func(detector.Config) (detector.Detector, error)
}

// New creates a new App instance with the given configuration.
func New(config Config) *App {
	if config.FPS <= 0 {
		config.FPS = capture.DefaultFPS
	}
	if config.Render == (render.Options{}) {
		config.Render = render.DefaultOptions()
	}
	if config.Detector == (detector.Config{}) {
		config.Detector = detector.DefaultConfig()
	}

	a := &App{
		config:      config,
		pipeline:    handpose.NewPipeline(config.Pipeline),
		subs:        make(map[int]chan Update),
		now:         time.Now,
		newCamera:   capture.NewCamera,
		newDetector: newMediaPipe,
	}
	a.camera = a.newCamera(config.CameraID)
	a.camera.SetMirror(config.Mirror)

	// Try MediaPipe first, fall back to mock detector
	if mp, err := a.newDetector(config.Detector); err == nil {
		a.detector = mp
		log.Println("Using MediaPipe hand detection")
	} else {
		log.Printf("MediaPipe not available (%v), using mock detector", err)
		a.detector = detector.NewMockDetector()
	}

	return a
}

// SetEnabled enables or disables detection. Disabling resets the
// pipeline so a later enable starts from an empty history.
func (a *App) SetEnabled(enabled bool) {
	a.mu.Lock()
	was := a.enabled
	a.enabled = enabled
	a.mu.Unlock()

	if was && !enabled {
		a.procMu.Lock()
		a.pipeline.Reset()
		a.procMu.Unlock()
	}
}

// IsEnabled returns whether detection is currently enabled.
func (a *App) IsEnabled() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.enabled
}

// SetDetector sets the hand detector implementation to use.
func (a *App) SetDetector(d detector.Detector) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.detector = d
}

// Detector returns the hand detector.
func (a *App) Detector() detector.Detector {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.detector
}

// SetCamera replaces the capture source. It must be called before Start.
func (a *App) SetCamera(c capture.Camera) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.camera = c
}

// Camera returns the camera instance.
func (a *App) Camera() capture.Camera {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.camera
}

// Store returns the configured store, which may be nil.
func (a *App) Store() *store.Store {
	return a.config.Store
}

// Reconfigure replaces the pipeline with a fresh one built from cfg.
// History and presence start over.
func (a *App) Reconfigure(cfg handpose.Config) {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	a.pipeline = handpose.NewPipeline(cfg)
	eff := a.pipeline.Config()
	log.Printf("pipeline reconfigured: window=%d fade_step=%g gap_policy=%s", eff.Window, eff.FadeStep, eff.GapPolicy)
}

// PipelineConfig returns the effective pipeline configuration.
func (a *App) PipelineConfig() handpose.Config {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	return a.pipeline.Config()
}

// Start opens the camera and begins the capture loop.
func (a *App) Start() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	// Don't start if already running
	if a.stopCh != nil {
		return nil
	}

	if err := a.startLoopLocked(a.camera, a.config.FPS); err != nil {
		return err
	}

	log.Println("Detection pipeline started")
	return nil
}

// startLoopLocked opens camera and runs the capture loop on it at fps.
// a.mu must be held.
func (a *App) startLoopLocked(camera capture.Camera, fps int) error {
	if err := camera.Open(); err != nil {
		return err
	}
	camera.SetFPS(fps)

	a.stopCh = make(chan struct{})
	go a.runPipeline(camera, fps, a.stopCh)
	return nil
}

// stopLoopLocked ends the capture loop, if any, and closes the camera.
// a.mu must be held.
func (a *App) stopLoopLocked() {
	if a.stopCh != nil {
		close(a.stopCh)
		a.stopCh = nil
	}

	if err := a.camera.Close(); err != nil {
		log.Printf("Error closing camera: %v", err)
	}
}

// Stop halts the capture loop, saves any active recording and releases
// resources.
func (a *App) Stop() {
	a.mu.Lock()
	a.stopLoopLocked()

	if a.detector != nil {
		if err := a.detector.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}
	a.mu.Unlock()

	if a.IsRecording() {
		if rec, err := a.StopRecording(); err != nil {
			log.Printf("Error saving recording: %v", err)
		} else {
			log.Printf("Saved recording %s (%d frames)", rec.ID, rec.FrameCount)
		}
	}

	a.subMu.Lock()
	for id, ch := range a.subs {
		close(ch)
		delete(a.subs, id)
	}
	a.subMu.Unlock()

	log.Println("Detection pipeline stopped")
}

// Subscribe registers for updates. The returned cancel func unsubscribes
// and closes the channel. Updates are dropped for subscribers that fall
// behind.
func (a *App) Subscribe() (<-chan Update, func()) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	id := a.nextSub
	a.nextSub++
	ch := make(chan Update, subscriberBuffer)
	a.subs[id] = ch

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			a.subMu.Lock()
			defer a.subMu.Unlock()
			if c, ok := a.subs[id]; ok {
				close(c)
				delete(a.subs, id)
			}
		})
	}
	return ch, cancel
}

// Latest returns the most recent update, if any frame was processed.
func (a *App) Latest() (Update, bool) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	return a.latest, a.latest.Seq > 0
}

// LatestJPEG returns the most recent annotated frame, or nil.
func (a *App) LatestJPEG() []byte {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	return a.jpeg
}

// IsRunning reports whether the capture loop is active.
func (a *App) IsRunning() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.stopCh != nil
}

func newMediaPipe(cfg detector.Config) (detector.Detector, error) {
	d, err := detector.NewMediaPipeDetector(cfg)
	if err != nil {
		return nil, err
	}
	return d, nil
}

func (a *App) publish(u Update) {
	a.subMu.Lock()
	defer a.subMu.Unlock()

	a.latest = u
	for _, ch := range a.subs {
		select {
		case ch <- u:
		default:
		}
	}
}

func (a *App) setJPEG(b []byte) {
	a.subMu.Lock()
	defer a.subMu.Unlock()
	a.jpeg = b
}
