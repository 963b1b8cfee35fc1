package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

// JobStatusReader looks up job status by id.
type JobStatusReader interface {
	GetStatus(ctx context.Context, id string) (*model.JobStatusResponse, error)
}

// JobHandlers provides HTTP handlers for job-related operations.
type JobHandlers struct {
	Jobs   JobStatusReader
	Logger *slog.Logger
}

// GetStatus handles GET /api/research/jobs/{job_id}.
func (h *JobHandlers) GetStatus(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.PathValue("job_id"))
	if id == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}

	status, err := h.Jobs.GetStatus(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, resolveLogger(h.Logger), err, "Failed to get job status")
		return
	}
	WriteJSON(w, http.StatusOK, status)
}
