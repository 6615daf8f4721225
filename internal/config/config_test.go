package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ayusman/mudra/internal/handpose"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestEmptyConfigDefaults(t *testing.T) {
	cfg := Empty()

	assert.Equal(t, handpose.DefaultWindow, cfg.GetWindowSize())
	assert.Equal(t, handpose.DefaultFadeStep, cfg.GetFadeStep())
	assert.Equal(t, handpose.GapAppend, cfg.GetGapPolicy())
	assert.Equal(t, DefaultCameraID, cfg.GetCameraID())
	assert.True(t, cfg.GetMirror())
	assert.Equal(t, DefaultFPS, cfg.GetFPS())
	assert.Equal(t, DefaultMaxHands, cfg.GetMaxHands())
	assert.Equal(t, DefaultMinConfidence, cfg.GetMinConfidence())
	assert.Equal(t, DefaultListen, cfg.GetListen())
	assert.True(t, strings.HasSuffix(cfg.GetDBPath(), DefaultDBFile))
	assert.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := writeConfig(t, "mudra.json", `{"window_size": 8, "gap_policy": "hold", "mirror": false}`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 8, cfg.GetWindowSize())
		assert.Equal(t, handpose.GapHold, cfg.GetGapPolicy())
		assert.False(t, cfg.GetMirror())
		assert.Equal(t, handpose.DefaultFadeStep, cfg.GetFadeStep())
		assert.Equal(t, DefaultListen, cfg.GetListen())
	})

	t.Run("full file", func(t *testing.T) {
		path := writeConfig(t, "mudra.json", `{
			"window_size": 3,
			"fade_step": 51,
			"gap_policy": "append",
			"camera_id": 1,
			"mirror": true,
			"fps": 30,
			"max_hands": 1,
			"min_confidence": 0.7,
			"listen": "127.0.0.1:9000",
			"db_path": "/tmp/x.db"
		}`)

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, handpose.Config{Window: 3, FadeStep: 51, GapPolicy: handpose.GapAppend}, cfg.Pipeline())
		assert.Equal(t, 1, cfg.GetCameraID())
		assert.Equal(t, 30, cfg.GetFPS())
		assert.Equal(t, "127.0.0.1:9000", cfg.GetListen())
		assert.Equal(t, "/tmp/x.db", cfg.GetDBPath())

		det := cfg.Detector()
		assert.Equal(t, 1, det.MaxHands)
		assert.Equal(t, 0.7, det.MinConfidence)
	})

	t.Run("rejects non-json extension", func(t *testing.T) {
		path := writeConfig(t, "mudra.yaml", `{}`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), ".json extension")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
		assert.Error(t, err)
	})

	t.Run("oversized file", func(t *testing.T) {
		path := writeConfig(t, "big.json", `{"listen": "`+strings.Repeat("a", maxFileSize)+`"}`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "too large")
	})

	t.Run("malformed json", func(t *testing.T) {
		path := writeConfig(t, "bad.json", `{"window_size": }`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "parse")
	})

	t.Run("invalid values", func(t *testing.T) {
		path := writeConfig(t, "bad.json", `{"window_size": 0}`)
		_, err := Load(path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "window_size")
	})
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"fade step zero", Config{FadeStep: ptrFloat64(0)}, "fade_step"},
		{"fade step too large", Config{FadeStep: ptrFloat64(300)}, "fade_step"},
		{"unknown gap policy", Config{GapPolicy: ptrString("interpolate")}, "gap_policy"},
		{"negative camera", Config{CameraID: ptrInt(-1)}, "camera_id"},
		{"fps zero", Config{FPS: ptrInt(0)}, "fps"},
		{"no hands", Config{MaxHands: ptrInt(0)}, "max_hands"},
		{"confidence above one", Config{MinConfidence: ptrFloat64(1.5)}, "min_confidence"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}

	t.Run("boundaries are valid", func(t *testing.T) {
		cfg := Config{
			WindowSize:    ptrInt(1),
			FadeStep:      ptrFloat64(handpose.MaxOpacity),
			GapPolicy:     ptrString(""),
			MinConfidence: ptrFloat64(0),
			FPS:           ptrInt(120),
		}
		assert.NoError(t, cfg.Validate())
	})
}

func TestSettingsRoundTrip(t *testing.T) {
	src := Config{
		WindowSize: ptrInt(7),
		FadeStep:   ptrFloat64(12.75),
		GapPolicy:  ptrString("hold"),
		Mirror:     ptrBool(false),
	}

	dst := Empty()
	require.NoError(t, dst.ApplySettings(src.Settings()))

	assert.Equal(t, src.Pipeline(), dst.Pipeline())
	assert.False(t, dst.GetMirror())
	assert.Equal(t, src.Settings(), dst.Settings())
}

func TestApplySettings(t *testing.T) {
	t.Run("overlays known keys", func(t *testing.T) {
		cfg := &Config{WindowSize: ptrInt(3)}
		err := cfg.ApplySettings(map[string]string{
			KeyWindowSize:    "9",
			KeyMinConfidence: "0.25",
			"theme":          "dark",
		})
		require.NoError(t, err)
		assert.Equal(t, 9, cfg.GetWindowSize())
		assert.Equal(t, 0.25, cfg.GetMinConfidence())
	})

	t.Run("parse error leaves config unchanged", func(t *testing.T) {
		cfg := &Config{WindowSize: ptrInt(3)}
		err := cfg.ApplySettings(map[string]string{KeyWindowSize: "five"})
		require.Error(t, err)
		assert.Equal(t, 3, cfg.GetWindowSize())
	})

	t.Run("invalid value leaves config unchanged", func(t *testing.T) {
		cfg := &Config{GapPolicy: ptrString("hold")}
		err := cfg.ApplySettings(map[string]string{KeyGapPolicy: "bogus", KeyFPS: "10"})
		require.Error(t, err)
		assert.Equal(t, handpose.GapHold, cfg.GetGapPolicy())
		assert.Equal(t, DefaultFPS, cfg.GetFPS())
	})

	t.Run("bad bool", func(t *testing.T) {
		cfg := Empty()
		assert.Error(t, cfg.ApplySettings(map[string]string{KeyMirror: "sometimes"}))
		assert.True(t, cfg.GetMirror())
	})
}
