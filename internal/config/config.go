// Package config loads mudra's JSON configuration file.
//
// Every field is optional. Get* accessors return the built-in default for
// fields the file leaves out, so partial files are safe.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/ayusman/mudra/internal/detector"
	"github.com/ayusman/mudra/internal/handpose"
)

// Defaults for fields without a value.
const (
	DefaultCameraID      = 0
	DefaultFPS           = 15
	DefaultListen        = ":8080"
	DefaultMinConfidence = 0.5
	DefaultMaxHands      = 2
	DefaultDBFile        = "mudra.db"

	maxFileSize = 1 * 1024 * 1024 // 1MB
)

// Setting keys shared by the JSON file and the settings table.
const (
	KeyWindowSize    = "window_size"
	KeyFadeStep      = "fade_step"
	KeyGapPolicy     = "gap_policy"
	KeyCameraID      = "camera_id"
	KeyMirror        = "mirror"
	KeyFPS           = "fps"
	KeyMaxHands      = "max_hands"
	KeyMinConfidence = "min_confidence"
)

// Config is the root configuration.
type Config struct {
	// Pipeline
	WindowSize *int     `json:"window_size,omitempty"`
	FadeStep   *float64 `json:"fade_step,omitempty"`
	GapPolicy  *string  `json:"gap_policy,omitempty"` // "append" or "hold"

	// Capture
	CameraID *int  `json:"camera_id,omitempty"`
	Mirror   *bool `json:"mirror,omitempty"`
	FPS      *int  `json:"fps,omitempty"`

	// Detector
	MaxHands      *int     `json:"max_hands,omitempty"`
	MinConfidence *float64 `json:"min_confidence,omitempty"`

	// Service
	Listen *string `json:"listen,omitempty"`
	DBPath *string `json:"db_path,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrBool(v bool) *bool          { return &v }
func ptrString(v string) *string    { return &v }
func ptrInt(v int) *int             { return &v }

// Empty returns a Config with every field unset.
func Empty() *Config {
	return &Config{}
}

// Load reads a Config from a JSON file. The path must have a .json
// extension and the file must be under 1MB.
func Load(path string) (*Config, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Empty()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks the values that are set.
func (c *Config) Validate() error {
	if c.WindowSize != nil && *c.WindowSize < 1 {
		return fmt.Errorf("window_size must be at least 1, got %d", *c.WindowSize)
	}

	if c.FadeStep != nil {
		if *c.FadeStep <= 0 || *c.FadeStep > handpose.MaxOpacity {
			return fmt.Errorf("fade_step must be in (0, %g], got %g", handpose.MaxOpacity, *c.FadeStep)
		}
	}

	if c.GapPolicy != nil {
		if _, err := handpose.ParseGapPolicy(*c.GapPolicy); err != nil {
			return fmt.Errorf("gap_policy must be %q or %q: %w", handpose.GapAppend, handpose.GapHold, err)
		}
	}

	if c.CameraID != nil && *c.CameraID < 0 {
		return fmt.Errorf("camera_id must be non-negative, got %d", *c.CameraID)
	}

	if c.FPS != nil && (*c.FPS < 1 || *c.FPS > 120) {
		return fmt.Errorf("fps must be between 1 and 120, got %d", *c.FPS)
	}

	if c.MaxHands != nil && *c.MaxHands < 1 {
		return fmt.Errorf("max_hands must be at least 1, got %d", *c.MaxHands)
	}

	if c.MinConfidence != nil {
		if *c.MinConfidence < 0 || *c.MinConfidence > 1 {
			return fmt.Errorf("min_confidence must be between 0 and 1, got %f", *c.MinConfidence)
		}
	}

	return nil
}

// GetWindowSize returns the smoothing window or the default.
func (c *Config) GetWindowSize() int {
	if c.WindowSize == nil {
		return handpose.DefaultWindow
	}
	return *c.WindowSize
}

// GetFadeStep returns the presence fade step or the default.
func (c *Config) GetFadeStep() float64 {
	if c.FadeStep == nil {
		return handpose.DefaultFadeStep
	}
	return *c.FadeStep
}

// GetGapPolicy returns the history gap policy or the default.
func (c *Config) GetGapPolicy() handpose.GapPolicy {
	if c.GapPolicy == nil {
		return handpose.GapAppend
	}
	p, err := handpose.ParseGapPolicy(*c.GapPolicy)
	if err != nil {
		return handpose.GapAppend
	}
	return p
}

// GetCameraID returns the camera device or the default.
func (c *Config) GetCameraID() int {
	if c.CameraID == nil {
		return DefaultCameraID
	}
	return *c.CameraID
}

// GetMirror returns whether frames are mirrored. Mirroring is on by default.
func (c *Config) GetMirror() bool {
	if c.Mirror == nil {
		return true
	}
	return *c.Mirror
}

// GetFPS returns the capture rate or the default.
func (c *Config) GetFPS() int {
	if c.FPS == nil {
		return DefaultFPS
	}
	return *c.FPS
}

// GetMaxHands returns the detector hand limit or the default.
func (c *Config) GetMaxHands() int {
	if c.MaxHands == nil {
		return DefaultMaxHands
	}
	return *c.MaxHands
}

// GetMinConfidence returns the detector score threshold or the default.
func (c *Config) GetMinConfidence() float64 {
	if c.MinConfidence == nil {
		return DefaultMinConfidence
	}
	return *c.MinConfidence
}

// GetListen returns the HTTP listen address or the default.
func (c *Config) GetListen() string {
	if c.Listen == nil || *c.Listen == "" {
		return DefaultListen
	}
	return *c.Listen
}

// GetDBPath returns the database path. The default lives under
// ~/.mudra, falling back to the working directory.
func (c *Config) GetDBPath() string {
	if c.DBPath != nil && *c.DBPath != "" {
		return *c.DBPath
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return DefaultDBFile
	}
	return filepath.Join(home, ".mudra", DefaultDBFile)
}

// Pipeline returns the handpose pipeline configuration.
func (c *Config) Pipeline() handpose.Config {
	return handpose.Config{
		Window:    c.GetWindowSize(),
		FadeStep:  c.GetFadeStep(),
		GapPolicy: c.GetGapPolicy(),
	}
}

// Detector returns the hand detector configuration.
func (c *Config) Detector() detector.Config {
	cfg := detector.DefaultConfig()
	cfg.MaxHands = c.GetMaxHands()
	cfg.MinConfidence = c.GetMinConfidence()
	return cfg
}

// Settings returns the runtime-adjustable values as strings, keyed like
// the settings table.
func (c *Config) Settings() map[string]string {
	return map[string]string{
		KeyWindowSize:    strconv.Itoa(c.GetWindowSize()),
		KeyFadeStep:      strconv.FormatFloat(c.GetFadeStep(), 'g', -1, 64),
		KeyGapPolicy:     string(c.GetGapPolicy()),
		KeyCameraID:      strconv.Itoa(c.GetCameraID()),
		KeyMirror:        strconv.FormatBool(c.GetMirror()),
		KeyFPS:           strconv.Itoa(c.GetFPS()),
		KeyMaxHands:      strconv.Itoa(c.GetMaxHands()),
		KeyMinConfidence: strconv.FormatFloat(c.GetMinConfidence(), 'g', -1, 64),
	}
}

// ApplySettings overlays string settings, as stored in the settings table,
// onto c. Unknown keys are ignored. On error c is left unchanged.
func (c *Config) ApplySettings(settings map[string]string) error {
	next := *c
	for k, v := range settings {
		var err error
		switch k {
		case KeyWindowSize:
			next.WindowSize, err = parseInt(k, v)
		case KeyFadeStep:
			next.FadeStep, err = parseFloat(k, v)
		case KeyGapPolicy:
			next.GapPolicy = ptrString(v)
		case KeyCameraID:
			next.CameraID, err = parseInt(k, v)
		case KeyMirror:
			var b bool
			b, err = strconv.ParseBool(v)
			if err != nil {
				err = fmt.Errorf("invalid %s %q: %w", k, v, err)
			}
			next.Mirror = ptrBool(b)
		case KeyFPS:
			next.FPS, err = parseInt(k, v)
		case KeyMaxHands:
			next.MaxHands, err = parseInt(k, v)
		case KeyMinConfidence:
			next.MinConfidence, err = parseFloat(k, v)
		}
		if err != nil {
			return err
		}
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = next
	return nil
}

func parseInt(key, v string) (*int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return ptrInt(n), nil
}

func parseFloat(key, v string) (*float64, error) {
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return ptrFloat64(f), nil
}
