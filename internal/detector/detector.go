// Package detector provides hand detection interfaces and implementations
// that produce raw per-frame hand landmarks.
package detector

import (
	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/handpose"
)

// Detector defines the interface for hand detection implementations.
type Detector interface {
	// Detect analyzes a video frame and returns the hands visible in it,
	// in detector order. Returns an empty slice if no hands are detected.
	Detect(frame *gocv.Mat) ([]handpose.Hand, error)

	// Close releases any resources held by the detector.
	Close() error
}

// Config holds configuration options for hand detection.
type Config struct {
	// MaxHands is the maximum number of hands to detect (default: 2).
	MaxHands int

	// MinConfidence is the minimum detection confidence threshold (0.0-1.0).
	// Hands scoring below it are dropped.
	MinConfidence float64

	// MinTrackingConf is the minimum tracking confidence threshold (0.0-1.0).
	MinTrackingConf float64
}

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() Config {
	return Config{
		MaxHands:        2,
		MinConfidence:   0.5,
		MinTrackingConf: 0.5,
	}
}

// filterHands drops hands below the confidence threshold and keeps at most
// MaxHands of the remaining ones, preserving detector order.
func (c Config) filterHands(hands []handpose.Hand) []handpose.Hand {
	var kept []handpose.Hand
	for _, h := range hands {
		if h.Score < c.MinConfidence {
			continue
		}
		if c.MaxHands > 0 && len(kept) >= c.MaxHands {
			break
		}
		kept = append(kept, h)
	}
	return kept
}
