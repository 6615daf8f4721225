package app

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ayusman/mudra/internal/handpose"
	"github.com/ayusman/mudra/internal/store"
)

var (
	// ErrNotRecording is returned by StopRecording when no session is active.
	ErrNotRecording = errors.New("not recording")
	// ErrAlreadyRecording is returned by StartRecording during a session.
	ErrAlreadyRecording = errors.New("already recording")
	// ErrNoStore is returned when recording without a configured store.
	ErrNoStore = errors.New("no store configured")
)

// session buffers raw detections in memory until the recording stops.
type session struct {
	id     string
	name   string
	start  time.Time
	frames []store.RecordedFrame
}

func (s *session) add(now time.Time, hands []handpose.Hand) {
	s.frames = append(s.frames, store.RecordedFrame{
		Seq:         len(s.frames),
		TimestampMs: now.Sub(s.start).Milliseconds(),
		Hands:       hands,
	})
}

// StartRecording begins buffering every processed frame. It returns the
// ID the recording will be saved under. An empty name gets a
// timestamped default.
func (a *App) StartRecording(name string) (string, error) {
	if a.config.Store == nil {
		return "", ErrNoStore
	}

	a.procMu.Lock()
	defer a.procMu.Unlock()

	if a.recording != nil {
		return "", ErrAlreadyRecording
	}

	now := a.now()
	if name == "" {
		name = "Recording " + now.Format("2006-01-02 15:04:05")
	}
	a.recording = &session{
		id:    uuid.NewString(),
		name:  name,
		start: now,
	}
	return a.recording.id, nil
}

// StopRecording ends the active session and writes its frames to the
// store.
func (a *App) StopRecording() (*store.Recording, error) {
	a.procMu.Lock()
	s := a.recording
	a.recording = nil
	a.procMu.Unlock()

	if s == nil {
		return nil, ErrNotRecording
	}

	repo := a.config.Store.Recordings()
	rec := &store.Recording{ID: s.id, Name: s.name}
	if err := repo.Create(rec); err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	if err := repo.AppendFrames(rec.ID, s.frames); err != nil {
		return nil, fmt.Errorf("save frames: %w", err)
	}
	rec.FrameCount = len(s.frames)

	return rec, nil
}

// IsRecording reports whether a session is active.
func (a *App) IsRecording() bool {
	a.procMu.Lock()
	defer a.procMu.Unlock()
	return a.recording != nil
}
