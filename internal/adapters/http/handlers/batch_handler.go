package handlers

import (
	"net/http"

	"github.com/adimka/admin-console-beta/internal/adapters/http/dto"
	"github.com/adimka/admin-console-beta/internal/ports"
)

// BatchHandler handles configuration batch endpoints.
type BatchHandler struct {
	batches ports.BatchService
}

// NewBatchHandler creates a BatchHandler backed by the given service.
func NewBatchHandler(batches ports.BatchService) *BatchHandler {
	return &BatchHandler{batches: batches}
}

// ApplyBatch handles POST /api/v1/batches. The whole batch is applied as one
// compensating transaction; the response reports the outcome of every change.
// A batch whose operations failed (and were rolled back) still returns 200 —
// the per-change outcomes carry the failure detail.
func (h *BatchHandler) ApplyBatch(w http.ResponseWriter, r *http.Request) {
	var req dto.BatchRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	report, err := h.batches.Apply(r.Context(), req.ToChangeRequests())
	if err != nil {
		dto.WriteErrorResponse(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToBatchResponse(report))
}
