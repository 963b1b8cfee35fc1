package httpx

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

// Gate admits enrichment requests.
type Gate interface {
	RequestForPerson(ctx context.Context, personID int64) (*model.EnrichmentOutcome, error)
}

// EnrichResponse is the body of POST /api/enrich/{person_id}.
type EnrichResponse struct {
	Message    string                `json:"message"`
	IsExisting bool                  `json:"isExisting"`
	Data       *model.ResearchResult `json:"data,omitempty"`
	JobID      *string               `json:"jobId"`
}

// Response messages for the enrichment endpoint.
const (
	MsgResearchFound      = "Research found in database"
	MsgResearchStarted    = "Research job started"
	MsgResearchInProgress = "Research job already in progress"
)

// EnrichHandlers serves the enrichment trigger.
type EnrichHandlers struct {
	Gate   Gate
	Logger *slog.Logger
}

// Trigger returns stored research for the person or queues a research job.
func (h *EnrichHandlers) Trigger(w http.ResponseWriter, r *http.Request) {
	personID, ok := parsePathID(r, "person_id")
	if !ok {
		WriteError(w, http.StatusBadRequest, "Invalid person id")
		return
	}

	out, err := h.Gate.RequestForPerson(r.Context(), personID)
	if err != nil {
		writeServiceError(w, r, resolveLogger(h.Logger), err, "Failed to trigger research")
		return
	}

	if out.Existing != nil {
		WriteJSON(w, http.StatusOK, EnrichResponse{
			Message:    MsgResearchFound,
			IsExisting: true,
			Data:       out.Existing,
		})
		return
	}

	msg := MsgResearchStarted
	if out.InFlight {
		msg = MsgResearchInProgress
	}
	jobID := out.JobID
	WriteJSON(w, http.StatusAccepted, EnrichResponse{Message: msg, JobID: &jobID})
}
