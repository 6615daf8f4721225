package app

import (
	"fmt"
	"log"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/handpose"
)

// Settings are the parts of Config that can change while the app runs.
type Settings struct {
	CameraID int
	FPS      int
	Mirror   bool
	Pipeline handpose.Config
	Detector detector.Config
}

// Apply brings a running app in line with s. A new camera ID or FPS
// restarts the capture loop on the new device, new detector thresholds
// rebuild the detector, and a changed pipeline config starts the pipeline
// over. Unchanged parts are left alone.
//
// If the new camera cannot be opened the previous one is reopened and an
// error is returned before anything else is applied.
func (a *App) Apply(s Settings) error {
	if s.FPS <= 0 {
		s.FPS = capture.DefaultFPS
	}

	if err := a.applyCapture(s); err != nil {
		return err
	}
	a.applyDetector(s.Detector)

	if handpose.NewPipeline(s.Pipeline).Config() != a.PipelineConfig() {
		a.Reconfigure(s.Pipeline)
	}
	return nil
}

func (a *App) applyCapture(s Settings) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.camera.SetMirror(s.Mirror)
	a.config.Mirror = s.Mirror

	if s.CameraID == a.config.CameraID && s.FPS == a.config.FPS {
		return nil
	}

	prev := a.camera
	running := a.stopCh != nil
	if running {
		a.stopLoopLocked()
	}

	camera := prev
	if s.CameraID != a.config.CameraID {
		camera = a.newCamera(s.CameraID)
		camera.SetMirror(s.Mirror)
	}

	if running {
		if err := a.startLoopLocked(camera, s.FPS); err != nil {
			if camera != prev {
				if rerr := a.startLoopLocked(prev, a.config.FPS); rerr != nil {
					log.Printf("Error reopening camera %d: %v", a.config.CameraID, rerr)
				}
			}
			return fmt.Errorf("open camera %d: %w", s.CameraID, err)
		}
	} else {
		camera.SetFPS(s.FPS)
	}

	a.camera = camera
	a.config.CameraID = s.CameraID
	a.config.FPS = s.FPS
	log.Printf("capture switched to camera %d at %d fps", s.CameraID, s.FPS)
	return nil
}

// applyDetector swaps in a detector built for cfg. When none can be built
// the current one stays in use.
func (a *App) applyDetector(cfg detector.Config) {
	a.mu.Lock()
	if cfg == a.config.Detector {
		a.mu.Unlock()
		return
	}
	a.config.Detector = cfg
	a.mu.Unlock()

	d, err := a.newDetector(cfg)
	if err != nil {
		log.Printf("detector unchanged (%v)", err)
		return
	}

	a.mu.Lock()
	prev := a.detector
	a.detector = d
	a.mu.Unlock()

	if prev != nil {
		if err := prev.Close(); err != nil {
			log.Printf("Error closing detector: %v", err)
		}
	}
	log.Printf("detector rebuilt: max_hands=%d min_confidence=%g", cfg.MaxHands, cfg.MinConfidence)
}
