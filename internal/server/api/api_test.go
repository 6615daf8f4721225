package api

import (
	"path/filepath"
	"testing"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/handpose"
	"github.com/ayusman/mudra/internal/store"
)

// newTestStore creates a new Store with a temporary database for testing.
func newTestStore(t *testing.T) *store.Store {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})

	return s
}

// seedRecording stores a right hand seen for three frames, then lost for two.
func seedRecording(t *testing.T, s *store.Store) *store.Recording {
	t.Helper()

	rec := &store.Recording{Name: "seeded"}
	if err := s.Recordings().Create(rec); err != nil {
		t.Fatalf("failed to create recording: %v", err)
	}

	hand := detector.OpenPalm(handpose.Right)
	frames := []store.RecordedFrame{
		{TimestampMs: 0, Hands: []handpose.Hand{hand}},
		{TimestampMs: 66, Hands: []handpose.Hand{hand}},
		{TimestampMs: 133, Hands: []handpose.Hand{hand}},
		{TimestampMs: 200},
		{TimestampMs: 266},
	}
	if err := s.Recordings().AppendFrames(rec.ID, frames); err != nil {
		t.Fatalf("failed to append frames: %v", err)
	}
	rec.FrameCount = len(frames)
	return rec
}
