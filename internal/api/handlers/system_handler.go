package handlers

import (
	"encoding/json"
	"net/http"

	"plantcare-be/internal/monitoring"
)

// SystemHandler exposes the latest host resource snapshot.
type SystemHandler struct {
	monitor *monitoring.SystemMonitor
}

// NewSystemHandler creates a new SystemHandler.
func NewSystemHandler(monitor *monitoring.SystemMonitor) *SystemHandler {
	return &SystemHandler{monitor: monitor}
}

// Get returns the most recent system snapshot.
func (h *SystemHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(h.monitor.Latest())
}
