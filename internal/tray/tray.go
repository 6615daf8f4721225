// Package tray provides a system tray interface for mudra.
package tray

import (
	"log"
	"sync"

	"github.com/getlantern/systray"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/handpose"
)

// Tray represents the system tray application.
type Tray struct {
	onToggle   func(enabled bool)
	onRecord   func(recording bool) error
	onSettings func()
	onQuit     func()
	enabled    bool
	recording  bool
	status     [2]string
	mu         sync.RWMutex

	// Menu items stored for later updates
	menuToggle *systray.MenuItem
	menuRecord *systray.MenuItem
	menuLeft   *systray.MenuItem
	menuRight  *systray.MenuItem
}

// New creates a new Tray instance with enabled state set to true by default.
func New() *Tray {
	return &Tray{
		enabled: true,
		status: [2]string{
			string(handpose.Left) + ": not visible",
			string(handpose.Right) + ": not visible",
		},
	}
}

// OnToggle sets the callback function to be called when the enabled state is toggled.
func (t *Tray) OnToggle(fn func(enabled bool)) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onToggle = fn
}

// OnRecord sets the callback called when recording is toggled. If it
// returns an error the menu keeps its previous state.
func (t *Tray) OnRecord(fn func(recording bool) error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onRecord = fn
}

// OnSettings sets the callback function to be called when the settings menu item is clicked.
func (t *Tray) OnSettings(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onSettings = fn
}

// OnQuit sets the callback function to be called when the quit menu item is clicked.
func (t *Tray) OnQuit(fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.onQuit = fn
}

// Run starts the system tray application.
// This function blocks until systray.Quit() is called.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// onReady is called when the system tray is ready.
// It sets up the menu structure.
func (t *Tray) onReady() {
	systray.SetTitle("Mudra")
	systray.SetTooltip("Mudra Hand Tracking")

	t.mu.Lock()
	t.menuToggle = systray.AddMenuItem(enabledTitle(t.enabled), "Toggle hand tracking")
	t.menuRecord = systray.AddMenuItem(recordTitle(t.recording), "Record raw detections")
	systray.AddSeparator()

	t.menuLeft = systray.AddMenuItem(t.status[0], "Left hand")
	t.menuLeft.Disable()
	t.menuRight = systray.AddMenuItem(t.status[1], "Right hand")
	t.menuRight.Disable()
	t.mu.Unlock()
	systray.AddSeparator()

	menuSettings := systray.AddMenuItem("Open Settings...", "Open settings in browser")
	systray.AddSeparator()

	menuQuit := systray.AddMenuItem("Quit", "Quit Mudra")

	// Handle menu item clicks in a separate goroutine
	go func() {
		for {
			select {
			case <-t.menuToggle.ClickedCh:
				t.handleToggle()
			case <-t.menuRecord.ClickedCh:
				t.handleRecord()
			case <-menuSettings.ClickedCh:
				t.handleSettings()
			case <-menuQuit.ClickedCh:
				t.handleQuit()
				return
			}
		}
	}()
}

// onExit is called when the system tray is about to exit.
func (t *Tray) onExit() {}

func enabledTitle(enabled bool) string {
	if enabled {
		return "● Enabled"
	}
	return "○ Disabled"
}

func recordTitle(recording bool) string {
	if recording {
		return "■ Stop Recording"
	}
	return "● Start Recording"
}

// handleToggle handles the toggle menu item click.
func (t *Tray) handleToggle() {
	t.mu.Lock()
	t.enabled = !t.enabled
	enabled := t.enabled

	if t.menuToggle != nil {
		t.menuToggle.SetTitle(enabledTitle(enabled))
	}

	callback := t.onToggle
	t.mu.Unlock()

	// Call the callback outside the lock to prevent deadlocks
	if callback != nil {
		callback(enabled)
	}
}

// handleRecord handles the record menu item click.
func (t *Tray) handleRecord() {
	t.mu.RLock()
	want := !t.recording
	callback := t.onRecord
	t.mu.RUnlock()

	if callback != nil {
		if err := callback(want); err != nil {
			log.Printf("tray: toggle recording: %v", err)
			return
		}
	}

	t.mu.Lock()
	t.recording = want
	if t.menuRecord != nil {
		t.menuRecord.SetTitle(recordTitle(want))
	}
	t.mu.Unlock()
}

// handleSettings handles the settings menu item click.
func (t *Tray) handleSettings() {
	t.mu.RLock()
	callback := t.onSettings
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}
}

// handleQuit handles the quit menu item click.
func (t *Tray) handleQuit() {
	t.mu.RLock()
	callback := t.onQuit
	t.mu.RUnlock()

	if callback != nil {
		callback()
	}

	systray.Quit()
}

// SetStatus updates the per-hand status lines, e.g. "Left: front 100%".
// Menu items are only touched when a line changes.
func (t *Tray) SetStatus(left, right string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if left != t.status[0] {
		t.status[0] = left
		if t.menuLeft != nil {
			t.menuLeft.SetTitle(left)
		}
	}
	if right != t.status[1] {
		t.status[1] = right
		if t.menuRight != nil {
			t.menuRight.SetTitle(right)
		}
	}
}

// Status returns the current per-hand status lines.
func (t *Tray) Status() (left, right string) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.status[0], t.status[1]
}

// Watch updates the status lines from updates until the channel closes.
func (t *Tray) Watch(updates <-chan app.Update) {
	for u := range updates {
		t.SetStatus(u.Status(handpose.Left), u.Status(handpose.Right))
	}
}

// IsEnabled returns the current enabled state.
func (t *Tray) IsEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.enabled
}

// IsRecording returns the current recording state.
func (t *Tray) IsRecording() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.recording
}

// Quit closes the tray, making Run return.
func (t *Tray) Quit() {
	systray.Quit()
}
