package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
	apperrors "github.com/yuvrajjangir/AlphaAI-Backend/internal/errors"
)

// inflightPlaceholder marks a key claimed by a request that has not yet learned its job id.
const inflightPlaceholder = "pending"

// EnrichmentServiceOptions groups dependencies for EnrichmentService.
type EnrichmentServiceOptions struct {
	People   core.PeopleRepository   // Required
	Research core.ResearchRepository // Required
	Jobs     *JobService             // Required
	// Inflight is the fast idempotency layer. When nil only the database index guards duplicates.
	Inflight    core.InflightStore
	InflightTTL time.Duration
	// ResearchTTL limits how old an existing result may be and still count. Zero means no limit.
	ResearchTTL time.Duration
	Logger      *slog.Logger
}

// EnrichmentService is the deduplication gate in front of the research queue.
type EnrichmentService struct {
	people      core.PeopleRepository
	research    core.ResearchRepository
	jobs        *JobService
	inflight    core.InflightStore
	inflightTTL time.Duration
	researchTTL time.Duration
	logger      *slog.Logger
	now         func() time.Time
}

// NewEnrichmentService constructs the gate.
func NewEnrichmentService(opts EnrichmentServiceOptions) (*EnrichmentService, error) {
	if opts.People == nil {
		return nil, errors.New("PeopleRepository is required")
	}
	if opts.Research == nil {
		return nil, errors.New("ResearchRepository is required")
	}
	if opts.Jobs == nil {
		return nil, errors.New("JobService is required")
	}
	ttl := opts.InflightTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &EnrichmentService{
		people:      opts.People,
		research:    opts.Research,
		jobs:        opts.Jobs,
		inflight:    opts.Inflight,
		inflightTTL: ttl,
		researchTTL: opts.ResearchTTL,
		logger:      logger.With("component", "enrichment_gate"),
		now:         time.Now,
	}, nil
}

// RequestForPerson resolves the person's company and runs the gate for that pair.
func (s *EnrichmentService) RequestForPerson(ctx context.Context, personID int64) (*model.EnrichmentOutcome, error) {
	if personID <= 0 {
		return nil, apperrors.ValidationField("person_id", "Invalid person ID")
	}
	person, err := s.people.GetPerson(ctx, personID)
	if err != nil {
		return nil, err
	}
	if person.CompanyID == nil {
		return nil, apperrors.Precondition("Person is not associated with a company")
	}
	if _, err := s.people.GetCompany(ctx, *person.CompanyID); err != nil {
		return nil, err
	}
	return s.admit(ctx, model.ResearchPayload{PersonID: person.ID, CompanyID: *person.CompanyID})
}

// RequestEnrichment returns the existing research for the pair, or the id of the job that will produce it.
func (s *EnrichmentService) RequestEnrichment(
	ctx context.Context,
	pair model.ResearchPayload,
) (*model.EnrichmentOutcome, error) {
	if err := pair.Validate(); err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	if _, err := s.people.GetPerson(ctx, pair.PersonID); err != nil {
		return nil, err
	}
	if _, err := s.people.GetCompany(ctx, pair.CompanyID); err != nil {
		return nil, err
	}
	return s.admit(ctx, pair)
}

func (s *EnrichmentService) admit(ctx context.Context, pair model.ResearchPayload) (*model.EnrichmentOutcome, error) {
	var notBefore time.Time
	if s.researchTTL > 0 {
		notBefore = s.now().Add(-s.researchTTL)
	}
	existing, err := s.research.Latest(ctx, pair.PersonID, pair.CompanyID, notBefore)
	if err != nil {
		return nil, fmt.Errorf("look up existing research: %w", err)
	}
	if existing != nil {
		s.logger.DebugContext(ctx, "existing research returned",
			"person_id", pair.PersonID, "company_id", pair.CompanyID, "research_id", existing.ID)
		return &model.EnrichmentOutcome{Existing: existing}, nil
	}

	if jobID, ok := s.claimOrLookup(ctx, pair); !ok {
		if outcome := s.confirmInFlight(ctx, pair, jobID); outcome != nil {
			return outcome, nil
		}
	}

	job, err := s.jobs.Enqueue(ctx, pair)
	switch {
	case err == nil:
		s.remember(ctx, pair, job.ID)
		s.logger.InfoContext(ctx, "research job enqueued",
			"job_id", job.ID, "person_id", pair.PersonID, "company_id", pair.CompanyID)
		return &model.EnrichmentOutcome{JobID: job.ID}, nil
	case apperrors.IsInflightConflict(err):
		inflight, findErr := s.jobs.FindInFlight(ctx, pair)
		if findErr != nil {
			return nil, fmt.Errorf("resolve in-flight job after conflict: %w", findErr)
		}
		s.remember(ctx, pair, inflight.ID)
		return &model.EnrichmentOutcome{JobID: inflight.ID, InFlight: true}, nil
	default:
		s.forget(ctx, pair)
		return nil, err
	}
}

// claimOrLookup tries to claim the pair's in-flight key. It reports true when the caller should
// enqueue, and otherwise returns the job id currently stored under the key (possibly empty).
func (s *EnrichmentService) claimOrLookup(ctx context.Context, pair model.ResearchPayload) (string, bool) {
	if s.inflight == nil {
		return "", true
	}
	acquired, err := s.inflight.Acquire(ctx, pair, inflightPlaceholder, s.inflightTTL)
	if err != nil {
		s.logger.WarnContext(ctx, "in-flight key unavailable, relying on database guard", "error", err)
		return "", true
	}
	if acquired {
		return "", true
	}
	value, err := s.inflight.Get(ctx, pair)
	if err != nil {
		s.logger.WarnContext(ctx, "read in-flight key", "error", err)
		return "", false
	}
	if value == inflightPlaceholder {
		return "", false
	}
	return value, false
}

// confirmInFlight checks the queue for the job a concurrent request created. A nil outcome means
// nothing is in flight any more and the caller should enqueue.
func (s *EnrichmentService) confirmInFlight(
	ctx context.Context,
	pair model.ResearchPayload,
	jobID string,
) *model.EnrichmentOutcome {
	if jobID != "" {
		job, err := s.jobs.GetByID(ctx, jobID)
		if err == nil && !job.State.Terminal() {
			return &model.EnrichmentOutcome{JobID: job.ID, InFlight: true}
		}
	}
	job, err := s.jobs.FindInFlight(ctx, pair)
	if err != nil {
		if !apperrors.IsNotFound(err) {
			s.logger.WarnContext(ctx, "find in-flight job", "error", err)
		}
		return nil
	}
	s.remember(ctx, pair, job.ID)
	return &model.EnrichmentOutcome{JobID: job.ID, InFlight: true}
}

func (s *EnrichmentService) remember(ctx context.Context, pair model.ResearchPayload, jobID string) {
	if s.inflight == nil {
		return
	}
	if err := s.inflight.Set(ctx, pair, jobID, s.inflightTTL); err != nil {
		s.logger.WarnContext(ctx, "store in-flight job id", "job_id", jobID, "error", err)
	}
}

func (s *EnrichmentService) forget(ctx context.Context, pair model.ResearchPayload) {
	if s.inflight == nil {
		return
	}
	if err := s.inflight.Release(ctx, pair); err != nil {
		s.logger.WarnContext(ctx, "release in-flight key", "error", err)
	}
}
