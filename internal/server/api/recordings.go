package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/handpose"
	"github.com/ayusman/mudra/internal/render"
	"github.com/ayusman/mudra/internal/store"
)

// maxImportBytes bounds the body of a recording import.
const maxImportBytes = 32 << 20

// Recorder controls live recording.
type Recorder interface {
	StartRecording(name string) (string, error)
	StopRecording() (*store.Recording, error)
	IsRecording() bool
}

// RecordingHandler handles HTTP requests for recording resources.
type RecordingHandler struct {
	store    *store.Store
	recorder Recorder
	defaults func() handpose.Config
}

// NewRecordingHandler creates a RecordingHandler. recorder may be nil, in
// which case live start/stop is unavailable. defaults supplies the
// pipeline configuration replays start from; nil means
// handpose.DefaultConfig.
func NewRecordingHandler(s *store.Store, recorder Recorder, defaults func() handpose.Config) *RecordingHandler {
	if defaults == nil {
		defaults = handpose.DefaultConfig
	}
	return &RecordingHandler{store: s, recorder: recorder, defaults: defaults}
}

// ServeHTTP routes requests under /api/recordings.
//
//	GET    /api/recordings
//	POST   /api/recordings
//	POST   /api/recordings/start
//	POST   /api/recordings/stop
//	GET    /api/recordings/{id}
//	DELETE /api/recordings/{id}
//	GET    /api/recordings/{id}/replay
//	GET    /api/recordings/{id}/chart.png
func (h *RecordingHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/recordings")
	path = strings.Trim(path, "/")

	if path == "" {
		switch r.Method {
		case http.MethodGet:
			h.list(w, r)
		case http.MethodPost:
			h.importRecording(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
		return
	}

	if path == "start" || path == "stop" {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if path == "start" {
			h.start(w, r)
		} else {
			h.stop(w, r)
		}
		return
	}

	id, sub, _ := strings.Cut(path, "/")
	switch sub {
	case "":
		switch r.Method {
		case http.MethodGet:
			h.get(w, r, id)
		case http.MethodDelete:
			h.delete(w, r, id)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	case "replay":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.replay(w, r, id)
	case "chart.png":
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		h.chart(w, r, id)
	default:
		http.NotFound(w, r)
	}
}

type importRequest struct {
	Name   string                `json:"name"`
	Frames []store.RecordedFrame `json:"frames"`
}

type startRequest struct {
	Name string `json:"name"`
}

type startResponse struct {
	ID string `json:"id"`
}

type listRecordingsResponse struct {
	Recordings []*store.Recording `json:"recordings"`
}

type recordingResponse struct {
	*store.Recording
	Frames []store.RecordedFrame `json:"frames"`
}

type replayResponse struct {
	Recording *store.Recording  `json:"recording"`
	Config    handpose.Config   `json:"config"`
	Outputs   []handpose.Output `json:"outputs"`
}

// list handles GET /api/recordings.
func (h *RecordingHandler) list(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.Recordings().List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list recordings")
		return
	}
	if recs == nil {
		recs = []*store.Recording{}
	}
	writeJSON(w, http.StatusOK, listRecordingsResponse{Recordings: recs})
}

// importRecording handles POST /api/recordings with a full frame list.
func (h *RecordingHandler) importRecording(w http.ResponseWriter, r *http.Request) {
	var req importRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxImportBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		writeError(w, http.StatusBadRequest, "Name is required")
		return
	}

	repo := h.store.Recordings()
	rec := &store.Recording{Name: req.Name}
	if err := repo.Create(rec); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to create recording")
		return
	}
	if err := repo.AppendFrames(rec.ID, req.Frames); err != nil {
		log.Printf("import recording %s: %v", rec.ID, err)
		repo.Delete(rec.ID)
		writeError(w, http.StatusInternalServerError, "Failed to save frames")
		return
	}
	rec.FrameCount = len(req.Frames)

	writeJSON(w, http.StatusCreated, rec)
}

// start handles POST /api/recordings/start.
func (h *RecordingHandler) start(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		writeError(w, http.StatusServiceUnavailable, "Live recording unavailable")
		return
	}

	var req startRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid JSON")
			return
		}
	}

	id, err := h.recorder.StartRecording(req.Name)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrAlreadyRecording):
			writeError(w, http.StatusConflict, "Already recording")
		case errors.Is(err, app.ErrNoStore):
			writeError(w, http.StatusServiceUnavailable, "Live recording unavailable")
		default:
			writeError(w, http.StatusInternalServerError, "Failed to start recording")
		}
		return
	}

	writeJSON(w, http.StatusCreated, startResponse{ID: id})
}

// stop handles POST /api/recordings/stop.
func (h *RecordingHandler) stop(w http.ResponseWriter, r *http.Request) {
	if h.recorder == nil {
		writeError(w, http.StatusServiceUnavailable, "Live recording unavailable")
		return
	}

	rec, err := h.recorder.StopRecording()
	if err != nil {
		if errors.Is(err, app.ErrNotRecording) {
			writeError(w, http.StatusConflict, "Not recording")
			return
		}
		log.Printf("stop recording: %v", err)
		writeError(w, http.StatusInternalServerError, "Failed to save recording")
		return
	}

	writeJSON(w, http.StatusOK, rec)
}

// get handles GET /api/recordings/{id} and returns the recording with its frames.
func (h *RecordingHandler) get(w http.ResponseWriter, r *http.Request, id string) {
	rec, frames, ok := h.load(w, id)
	if !ok {
		return
	}
	if frames == nil {
		frames = []store.RecordedFrame{}
	}
	writeJSON(w, http.StatusOK, recordingResponse{Recording: rec, Frames: frames})
}

// delete handles DELETE /api/recordings/{id}.
func (h *RecordingHandler) delete(w http.ResponseWriter, r *http.Request, id string) {
	if err := h.store.Recordings().Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recording not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "Failed to delete recording")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// replay handles GET /api/recordings/{id}/replay and runs the stored
// frames through a fresh pipeline.
func (h *RecordingHandler) replay(w http.ResponseWriter, r *http.Request, id string) {
	cfg, err := h.replayConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	rec, frames, ok := h.load(w, id)
	if !ok {
		return
	}

	outputs := handpose.Replay(store.HandSequence(frames), cfg)
	writeJSON(w, http.StatusOK, replayResponse{
		Recording: rec,
		Config:    handpose.NewPipeline(cfg).Config(),
		Outputs:   outputs,
	})
}

// chart handles GET /api/recordings/{id}/chart.png?kind=presence|jitter.
func (h *RecordingHandler) chart(w http.ResponseWriter, r *http.Request, id string) {
	cfg, err := h.replayConfig(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	_, frames, ok := h.load(w, id)
	if !ok {
		return
	}
	outputs := handpose.Replay(store.HandSequence(frames), cfg)

	chart := render.PresenceChart
	switch kind := r.URL.Query().Get("kind"); kind {
	case "", "presence":
	case "jitter":
		chart = render.JitterChart
	default:
		writeError(w, http.StatusBadRequest, "Unknown chart kind: "+kind)
		return
	}

	p, err := chart(outputs)
	if err != nil {
		log.Printf("chart %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, "Failed to build chart")
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if err := render.WritePNG(p, w); err != nil {
		log.Printf("chart %s: %v", id, err)
	}
}

// load fetches a recording and its frames, writing the error response
// itself when it fails.
func (h *RecordingHandler) load(w http.ResponseWriter, id string) (*store.Recording, []store.RecordedFrame, bool) {
	rec, err := h.store.Recordings().GetByID(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Recording not found")
			return nil, nil, false
		}
		writeError(w, http.StatusInternalServerError, "Failed to get recording")
		return nil, nil, false
	}

	frames, err := h.store.Recordings().Frames(id)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load frames")
		return nil, nil, false
	}

	return rec, frames, true
}

// replayConfig applies the window, fade_step and gap_policy query
// overrides to the handler's defaults.
func (h *RecordingHandler) replayConfig(r *http.Request) (handpose.Config, error) {
	cfg := h.defaults()
	q := r.URL.Query()

	if v := q.Get("window"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return cfg, errors.New("window must be a positive integer")
		}
		cfg.Window = n
	}
	if v := q.Get("fade_step"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 || f > handpose.MaxOpacity {
			return cfg, errors.New("fade_step must be in (0, 255]")
		}
		cfg.FadeStep = f
	}
	if v := q.Get("gap_policy"); v != "" {
		p, err := handpose.ParseGapPolicy(v)
		if err != nil {
			return cfg, err
		}
		cfg.GapPolicy = p
	}

	return cfg, nil
}
