package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

// ResearchStore is the research read and bulk-update surface.
type ResearchStore interface {
	ListByCompany(ctx context.Context, companyID int64) ([]model.ResearchResult, error)
	UpdateStatus(ctx context.Context, req model.BulkResearchStatusRequest) (model.BulkResearchStatusResult, error)
}

// UpdateStatusResponse is the body of PUT /api/research/status.
type UpdateStatusResponse struct {
	Message string `json:"message"`
	model.BulkResearchStatusResult
}

// ResearchHandlers serves stored research and research status updates.
type ResearchHandlers struct {
	Svc    ResearchStore
	Logger *slog.Logger
}

// UpdateStatus handles PUT /api/research/status.
func (h *ResearchHandlers) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req model.BulkResearchStatusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	res, err := h.Svc.UpdateStatus(r.Context(), req)
	if err != nil {
		writeServiceError(w, r, resolveLogger(h.Logger), err, "Failed to update research status")
		return
	}
	WriteJSON(w, http.StatusOK, UpdateStatusResponse{
		Message:                  "Research status updated successfully",
		BulkResearchStatusResult: res,
	})
}

// SnippetsByCompany handles GET /api/snippets/company/{company_id}.
func (h *ResearchHandlers) SnippetsByCompany(w http.ResponseWriter, r *http.Request) {
	companyID, ok := parsePathID(r, "company_id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid company id")
		return
	}

	results, err := h.Svc.ListByCompany(r.Context(), companyID)
	if err != nil {
		writeServiceError(w, r, resolveLogger(h.Logger), err, "Internal server error")
		return
	}
	WriteJSON(w, http.StatusOK, results)
}
