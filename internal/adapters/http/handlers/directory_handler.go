package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/adimka/admin-console-beta/internal/adapters/http/dto"
	"github.com/adimka/admin-console-beta/internal/domain"
	"github.com/adimka/admin-console-beta/internal/domain/directory"
	"github.com/adimka/admin-console-beta/internal/ports"
)

// DirectoryHandler handles directory connection test endpoints.
type DirectoryHandler struct {
	directories ports.DirectoryService
}

// NewDirectoryHandler creates a DirectoryHandler backed by the given service.
func NewDirectoryHandler(directories ports.DirectoryService) *DirectoryHandler {
	return &DirectoryHandler{directories: directories}
}

// TestDirectory handles POST /api/v1/directory/test/{probe} where probe is
// "connect" or "bind". Probe failures (unreachable host, bad credentials)
// are reported in the response body with 200; only invalid requests and
// suspended probing produce error statuses.
func (h *DirectoryHandler) TestDirectory(w http.ResponseWriter, r *http.Request) {
	probe := chi.URLParam(r, "probe")

	var fn func(r *http.Request, cfg directory.Config) (directory.ProbeResult, error)
	switch probe {
	case "connect":
		fn = func(r *http.Request, cfg directory.Config) (directory.ProbeResult, error) {
			return h.directories.TestConnect(r.Context(), cfg)
		}
	case "bind":
		fn = func(r *http.Request, cfg directory.Config) (directory.ProbeResult, error) {
			return h.directories.TestBind(r.Context(), cfg)
		}
	default:
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Fields: map[string]string{"probe": "must be one of: connect, bind"},
		})
		return
	}

	var req dto.DirectoryTestRequest
	if !decodeJSONBody(w, r, &req) {
		return
	}

	cfg, err := req.ToConfig()
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	result, err := fn(r, cfg)
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProbeResponse(probe, result))
}
