package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/sydlexius/audible-agent/internal/logging"
)

func (r *Router) handleGetLogging(w http.ResponseWriter, req *http.Request) {
	if r.logManager == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "logging manager not available"})
		return
	}
	writeJSON(w, http.StatusOK, r.logManager.Config())
}

// handleUpdateLogging applies a partial logging config at runtime. Fields
// left out keep their current values. Changes are not written back to the
// config file, so the next file reload replaces them.
func (r *Router) handleUpdateLogging(w http.ResponseWriter, req *http.Request) {
	if r.logManager == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "logging manager not available"})
		return
	}

	var cfg logging.Config
	if err := json.NewDecoder(http.MaxBytesReader(w, req.Body, 4<<10)).Decode(&cfg); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if err := cfg.Validate(); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	r.logManager.Reconfigure(cfg)
	applied := r.logManager.Config()
	r.logger.Info("logging reconfigured", slog.String("config", applied.String()))

	writeJSON(w, http.StatusOK, applied)
}
