package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adimka/admin-console-beta/internal/adapters/http/dto"
	"github.com/adimka/admin-console-beta/internal/domain"
	"github.com/adimka/admin-console-beta/internal/ports"
)

// StateHandler handles the read-only platform state endpoints. Reads go
// straight to the platform; they are not isolated from batches committing
// concurrently.
type StateHandler struct {
	batches ports.BatchService
}

// NewStateHandler creates a StateHandler backed by the given service.
func NewStateHandler(batches ports.BatchService) *StateHandler {
	return &StateHandler{batches: batches}
}

// GetComponent handles GET /api/v1/components/{name}.
func (h *StateHandler) GetComponent(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	running, err := h.batches.ComponentRunning(r.Context(), name)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ComponentStateResponse{Name: name, Running: running})
}

// GetFeature handles GET /api/v1/features/{name}.
func (h *StateHandler) GetFeature(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	installed, err := h.batches.FeatureInstalled(r.Context(), name)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.FeatureStateResponse{Name: name, Installed: installed})
}

// GetSettings handles GET /api/v1/settings?path=...
func (h *StateHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Fields: map[string]string{"path": "is required"},
		})
		return
	}

	settings, err := h.batches.Settings(r.Context(), path)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.SettingsResponse{Path: path, Settings: settings})
}

// GetService handles GET /api/v1/services/{pid}.
func (h *StateHandler) GetService(w http.ResponseWriter, r *http.Request) {
	pid := chi.URLParam(r, "pid")

	cfg, err := h.batches.ServiceConfig(r.Context(), pid)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ServiceConfigResponse{Pid: pid, Config: cfg})
}

// ListManagedServices handles GET /api/v1/services?factory=...
func (h *StateHandler) ListManagedServices(w http.ResponseWriter, r *http.Request) {
	factoryPid := r.URL.Query().Get("factory")
	if factoryPid == "" {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Fields: map[string]string{"factory": "is required"},
		})
		return
	}

	instances, err := h.batches.ManagedServiceConfigs(r.Context(), factoryPid)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ManagedServicesResponse{
		FactoryPid: factoryPid,
		Instances:  instances,
	})
}
