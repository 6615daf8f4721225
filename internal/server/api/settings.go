package api

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/store"
)

// SettingsHandler reads and updates the runtime-adjustable settings.
// Updates are validated, handed to onChange and, once applied, persisted
// to the settings table.
type SettingsHandler struct {
	store    *store.Store
	mu       sync.Mutex
	cfg      *config.Config
	onChange func(config.Config) error
}

// NewSettingsHandler creates a SettingsHandler over cfg. onChange may be
// nil; when it returns an error the update is rejected and nothing is
// saved.
func NewSettingsHandler(s *store.Store, cfg *config.Config, onChange func(config.Config) error) *SettingsHandler {
	if cfg == nil {
		cfg = config.Empty()
	}
	return &SettingsHandler{store: s, cfg: cfg, onChange: onChange}
}

// Current returns a copy of the live settings. It is safe to call while
// updates are being served.
func (h *SettingsHandler) Current() config.Config {
	h.mu.Lock()
	defer h.mu.Unlock()
	return *h.cfg
}

// ServeHTTP handles GET and PUT /api/settings.
func (h *SettingsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.mu.Lock()
		settings := h.cfg.Settings()
		h.mu.Unlock()
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *SettingsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req map[string]any
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	values := make(map[string]string, len(req))
	for k, v := range req {
		switch v.(type) {
		case string, float64, bool:
			values[k] = fmt.Sprint(v)
		default:
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid value for %s", k))
			return
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	next := *h.cfg
	if err := next.ApplySettings(values); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if h.onChange != nil {
		if err := h.onChange(next); err != nil {
			log.Printf("apply settings: %v", err)
			writeError(w, http.StatusUnprocessableEntity, "Failed to apply settings: "+err.Error())
			return
		}
	}

	settings := next.Settings()
	if h.store != nil {
		persist := make(map[string]string, len(values))
		for k := range values {
			if v, ok := settings[k]; ok {
				persist[k] = v
			}
		}
		if err := h.store.Settings().SetAll(persist); err != nil {
			log.Printf("save settings: %v", err)
			writeError(w, http.StatusInternalServerError, "Failed to save settings")
			return
		}
	}

	*h.cfg = next

	writeJSON(w, http.StatusOK, settings)
}
