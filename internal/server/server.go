// Package server provides the HTTP server for mudra.
package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/handpose"
	"github.com/ayusman/mudra/internal/server/api"
	"github.com/ayusman/mudra/internal/store"
)

// Feed is the live source of pipeline updates and annotated frames.
// *app.App satisfies it.
type Feed interface {
	Subscribe() (<-chan app.Update, func())
	LatestJPEG() []byte
}

// Config holds the server configuration.
type Config struct {
	StaticDir string
	Store     *store.Store
	Feed      Feed
	Recorder  api.Recorder
	// Settings is the live configuration edited through /api/settings.
	Settings *config.Config
	// OnSettings applies an accepted settings update. An error rejects it.
	OnSettings func(config.Config) error
	// StreamInterval is the MJPEG frame interval. Zero means ~15 FPS.
	StreamInterval time.Duration
}

// Server represents the HTTP server for the mudra application.
type Server struct {
	config   Config
	mux      *http.ServeMux
	settings *api.SettingsHandler
	start    time.Time
}

// New creates a new Server with the given configuration.
func New(config Config) *Server {
	s := &Server{
		config: config,
		mux:    http.NewServeMux(),
		start:  time.Now(),
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all HTTP routes for the server.
func (s *Server) setupRoutes() {
	s.mux.HandleFunc("/api/health", s.handleHealth)

	s.settings = api.NewSettingsHandler(s.config.Store, s.config.Settings, s.config.OnSettings)
	s.mux.Handle("/api/settings", s.settings)

	// Register recording API handler if Store is configured
	if s.config.Store != nil {
		recordings := api.NewRecordingHandler(s.config.Store, s.config.Recorder, s.pipelineDefaults)
		s.mux.Handle("/api/recordings", recordings)
		s.mux.Handle("/api/recordings/", recordings)
	}

	if s.config.Feed != nil {
		s.mux.Handle("/api/handpose", NewHandposeHandler(s.config.Feed))
		s.mux.Handle("/api/stream", NewStreamHandler(s.config.Feed, s.config.StreamInterval))
	}

	// Serve static files if StaticDir is configured
	if s.config.StaticDir != "" {
		fs := http.FileServer(http.Dir(s.config.StaticDir))
		s.mux.Handle("/", fs)
	}
}

// pipelineDefaults is the configuration replays start from.
func (s *Server) pipelineDefaults() handpose.Config {
	cfg := s.settings.Current()
	return cfg.Pipeline()
}

// ServeHTTP implements the http.Handler interface.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

// handleHealth handles GET requests to /api/health.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	uptime := time.Since(s.start)

	response := map[string]interface{}{
		"status": "ok",
		"uptime": uptime.String(),
	}
	if s.config.Recorder != nil {
		response["recording"] = s.config.Recorder.IsRecording()
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		return
	}
}

// ListenAndServe starts the HTTP server on the given address.
func (s *Server) ListenAndServe(addr string) error {
	return http.ListenAndServe(addr, s)
}
