package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
	apperrors "github.com/yuvrajjangir/AlphaAI-Backend/internal/errors"
)

// ResearchServiceOptions groups dependencies for ResearchService.
type ResearchServiceOptions struct {
	Repo   core.ResearchRepository
	Logger *slog.Logger
}

// ResearchService serves stored research results and the bulk status update.
type ResearchService struct {
	repo   core.ResearchRepository
	logger *slog.Logger
}

// NewResearchService constructs a ResearchService.
func NewResearchService(opts ResearchServiceOptions) (*ResearchService, error) {
	if opts.Repo == nil {
		return nil, errors.New("ResearchRepository is required")
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &ResearchService{repo: opts.Repo, logger: logger.With("component", "research_service")}, nil
}

// ListByCompany returns every stored result for the company, newest first.
// An empty result is reported as not found.
func (s *ResearchService) ListByCompany(ctx context.Context, companyID int64) ([]model.ResearchResult, error) {
	if companyID <= 0 {
		return nil, apperrors.ValidationField("company_id", "Invalid company ID")
	}
	results, err := s.repo.ListByCompany(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, apperrors.NotFound("No snippets found for this company")
	}
	return results, nil
}

// UpdateStatus sets research_status for the listed people. The completed status also
// deletes their stored results, which cannot be undone.
func (s *ResearchService) UpdateStatus(
	ctx context.Context,
	req model.BulkResearchStatusRequest,
) (model.BulkResearchStatusResult, error) {
	req.Normalize()
	if err := req.Validate(); err != nil {
		return model.BulkResearchStatusResult{}, apperrors.Validation(err.Error())
	}

	res, err := s.repo.UpdatePeopleStatus(ctx, req)
	if err != nil {
		return model.BulkResearchStatusResult{}, fmt.Errorf("update research status: %w", err)
	}

	s.logger.InfoContext(ctx, "research status updated",
		"status", req.Status,
		"people", len(req.PersonIDs),
		"updated", res.Updated,
		"deleted", res.Deleted,
	)
	return res, nil
}
