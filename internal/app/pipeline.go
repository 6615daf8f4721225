package app

import (
	"log"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/handpose"
	"github.com/ayusman/mudra/internal/render"
)

// runPipeline is the capture loop. Each tick it reads one frame, runs
// detection and the handpose pipeline, draws the overlay and publishes the
// result. Ticks are skipped while detection is disabled.
func (a *App) runPipeline(camera capture.Camera, fps int, stopCh <-chan struct{}) {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()

	for {
		select {
		case <-stopCh:
			return
		case <-ticker.C:
			if !a.IsEnabled() {
				continue
			}

			frame, err := camera.ReadFrame()
			if err != nil {
				log.Printf("Error reading frame: %v", err)
				continue
			}

			a.processFrame(frame)
			frame.Close()
		}
	}
}

// processFrame detects hands in frame, runs them through the pipeline and
// draws the result onto frame. A detector error counts as a frame with no
// hands so presence keeps fading.
func (a *App) processFrame(frame *gocv.Mat) Update {
	var hands []handpose.Hand
	if d := a.Detector(); d != nil {
		detected, err := d.Detect(frame)
		if err != nil {
			log.Printf("Error detecting hands: %v", err)
		} else {
			hands = detected
		}
	}

	u := a.ProcessHands(hands)

	render.Overlay(frame, u.Output, a.config.Render)
	if buf, err := gocv.IMEncode(".jpg", *frame); err != nil {
		log.Printf("Error encoding frame: %v", err)
	} else {
		jpeg := make([]byte, buf.Len())
		copy(jpeg, buf.GetBytes())
		buf.Close()
		a.setJPEG(jpeg)
	}

	return u
}

// ProcessHands runs one frame of detections through the pipeline,
// appends it to the active recording and publishes the update. It is the
// camera-free entry point used by the loop and by tests.
func (a *App) ProcessHands(hands []handpose.Hand) Update {
	a.procMu.Lock()
	defer a.procMu.Unlock()

	if dups := handpose.Duplicates(hands); len(dups) > 0 {
		log.Printf("ambiguous handedness %v in one frame, keeping the last detection", dups)
	}

	now := a.now()
	out := a.pipeline.Process(hands)
	a.seq++
	u := Update{
		Seq:         a.seq,
		TimestampMs: now.UnixMilli(),
		Output:      out,
	}

	if a.recording != nil {
		a.recording.add(now, hands)
	}

	a.publish(u)
	return u
}
