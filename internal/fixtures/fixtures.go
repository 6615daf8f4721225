// Package fixtures provides recorded hand sessions for tests.
package fixtures

import (
	"embed"
	"encoding/json"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/ayusman/mudra/internal/handpose"
	"github.com/ayusman/mudra/internal/store"
)

//go:embed testdata/sessions/*.json
var sessionsFS embed.FS

const sessionDir = "testdata/sessions"

// Session loads a recorded session by name, e.g. "appear_disappear".
func Session(name string) ([]store.RecordedFrame, error) {
	data, err := sessionsFS.ReadFile(path.Join(sessionDir, name+".json"))
	if err != nil {
		return nil, fmt.Errorf("load session %s: %w", name, err)
	}

	var frames []store.RecordedFrame
	if err := json.Unmarshal(data, &frames); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", name, err)
	}
	for i := range frames {
		frames[i].Seq = i
	}

	return frames, nil
}

// SessionHands loads a session as the per-frame hand lists Replay takes.
func SessionHands(name string) ([][]handpose.Hand, error) {
	frames, err := Session(name)
	if err != nil {
		return nil, err
	}
	return store.HandSequence(frames), nil
}

// Sessions lists the available session names in sorted order.
func Sessions() []string {
	entries, err := sessionsFS.ReadDir(sessionDir)
	if err != nil {
		return nil
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".json"))
	}
	sort.Strings(names)
	return names
}
