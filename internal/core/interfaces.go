package core

import (
	"context"
	"encoding/json"
	"time"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

// This file contains repository interface definitions (ports in hexagonal architecture).
// Service implementations depend on these interfaces, not on concrete data or adapter types.

// JobRepository defines the durable queue operations.
type JobRepository interface {
	Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error)
	GetByID(ctx context.Context, id string) (*model.Job, error)
	// FindInFlight returns the waiting or active research job for the pair, or a not-found error.
	FindInFlight(ctx context.Context, payload model.ResearchPayload) (*model.Job, error)
	ReserveNext(ctx context.Context, jobType model.JobType, leaseSeconds int) (*model.Job, error)
	// FailExpiredLeases fails active jobs whose final attempt outlived its lease and returns them.
	FailExpiredLeases(ctx context.Context, jobType model.JobType) ([]*model.Job, error)
	WaitForNotification(ctx context.Context, jobType model.JobType) error
	// SetProgress raises the stored progress of an active job and returns the stored value.
	SetProgress(ctx context.Context, id string, progress int) (int, error)
	Complete(ctx context.Context, id string, result json.RawMessage) (bool, error)
	// Fail records a failed attempt and returns the resulting state (waiting when a retry is scheduled).
	Fail(ctx context.Context, params model.FailJobParams) (model.JobState, error)
	Stats(ctx context.Context, jobType model.JobType) (*model.JobStats, error)
}

// DeleteOldJobsParams groups parameters for ReaperRepository.DeleteOldJobs.
type DeleteOldJobsParams struct {
	State     model.JobState
	MaxAge    time.Duration
	BatchSize int
}

// ReaperRepository defines queue housekeeping operations.
type ReaperRepository interface {
	FailStalePendingJobs(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error)
	DeleteOldJobs(ctx context.Context, params DeleteOldJobsParams) (int64, error)
}

// PeopleRepository reads the entities a research job refers to.
type PeopleRepository interface {
	GetPerson(ctx context.Context, id int64) (*model.Person, error)
	GetCompany(ctx context.Context, id int64) (*model.Company, error)
}

// ResearchRepository stores research results and search logs.
type ResearchRepository interface {
	// Latest returns the most recent result for the pair created at or after notBefore
	// (zero means no lower bound), or nil when there is none.
	Latest(ctx context.Context, personID, companyID int64, notBefore time.Time) (*model.ResearchResult, error)
	// Persist writes the result and its search log atomically.
	Persist(ctx context.Context, params model.PersistResearchParams) (*model.ResearchResult, error)
	ListByCompany(ctx context.Context, companyID int64) ([]model.ResearchResult, error)
	// UpdatePeopleStatus sets research_status and, for the completed status, deletes the people's results.
	UpdatePeopleStatus(ctx context.Context, req model.BulkResearchStatusRequest) (model.BulkResearchStatusResult, error)
}

// InflightStore holds short-lived idempotency keys for queued research.
type InflightStore interface {
	// Acquire sets the key for the pair when absent and reports whether this call set it.
	Acquire(ctx context.Context, pair model.ResearchPayload, value string, ttl time.Duration) (bool, error)
	// Get returns the stored value, or "" when the key is absent.
	Get(ctx context.Context, pair model.ResearchPayload) (string, error)
	Set(ctx context.Context, pair model.ResearchPayload, value string, ttl time.Duration) error
	Release(ctx context.Context, pair model.ResearchPayload) error
}

// ResearchProvider runs a free-form prompt against an external model and returns its raw text.
type ResearchProvider interface {
	Name() string
	Generate(ctx context.Context, prompt string) (string, error)
}

// ProgressPublisher delivers progress events to observers.
type ProgressPublisher interface {
	PublishProgress(ctx context.Context, ev model.ProgressEvent) error
}

// WorkerLock grants cluster-wide exclusivity to one worker.
type WorkerLock interface {
	// TryAcquire returns a release func when the lock was obtained.
	TryAcquire(ctx context.Context) (release func(), acquired bool, err error)
}

// WorkerHeartbeat records and reports worker liveness.
type WorkerHeartbeat interface {
	Beat(ctx context.Context, ttl time.Duration) error
	Alive(ctx context.Context) (bool, error)
}
