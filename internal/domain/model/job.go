// Package model defines the core data types shared by the enrichment queue, worker and HTTP surface.
package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// JobType represents the type of job to be executed.
//
//nolint:recvcheck // UnmarshalText needs pointer receiver, Valid needs value receiver
type JobType string

// JobState represents the lifecycle state of a job.
type JobState string

const (
	// JobTypeResearch is the only job type: one enrichment run for a (person, company) pair.
	JobTypeResearch JobType = "research"

	// JobStateWaiting indicates a job is queued (initially or for a scheduled retry).
	JobStateWaiting JobState = "waiting"
	// JobStateActive indicates the worker holds the job.
	JobStateActive JobState = "active"
	// JobStateCompleted indicates the job finished successfully. Terminal.
	JobStateCompleted JobState = "completed"
	// JobStateFailed indicates the job exhausted its attempts. Terminal.
	JobStateFailed JobState = "failed"
)

// DefaultMaxAttempts is the attempt cap applied when a request does not set one.
const DefaultMaxAttempts = 3

// UnmarshalText implements encoding.TextUnmarshaler for JobType to allow env parsing.
func (t *JobType) UnmarshalText(text []byte) error {
	v := strings.ToLower(strings.TrimSpace(string(text)))
	jt := JobType(v)
	if jt.Valid() {
		*t = jt
		return nil
	}
	return fmt.Errorf("invalid JobType: %q", v)
}

var (
	// ErrNoJobsAvailable is returned when no jobs are available for reservation.
	ErrNoJobsAvailable = errors.New("no jobs available")
	// ErrJobNotFound is returned when a job id does not exist.
	ErrJobNotFound = errors.New("job not found")
	// ErrJobNotActive is returned when a progress or outcome write targets a job that is not active.
	ErrJobNotActive = errors.New("job is not active")
)

// Valid returns true if the JobType is valid.
func (t JobType) Valid() bool {
	return t == JobTypeResearch
}

// Valid returns true if the JobState is valid.
func (s JobState) Valid() bool {
	return s == JobStateWaiting || s == JobStateActive || s == JobStateCompleted ||
		s == JobStateFailed
}

// Terminal reports whether no further transitions are possible from s.
func (s JobState) Terminal() bool {
	return s == JobStateCompleted || s == JobStateFailed
}

// Job represents a queued unit of enrichment work with its durable state.
type Job struct {
	ID             string          `json:"id"                         db:"id"`
	Type           JobType         `json:"type"                       db:"type"`
	State          JobState        `json:"state"                      db:"state"`
	Payload        json.RawMessage `json:"payload"                    db:"payload"`
	Progress       int             `json:"progress"                   db:"progress"`
	Result         json.RawMessage `json:"result,omitempty"           db:"result"`
	LastError      *string         `json:"last_error,omitempty"       db:"last_error"`
	AttemptsMade   int             `json:"attempts_made"              db:"attempts_made"`
	MaxAttempts    int             `json:"max_attempts"               db:"max_attempts"`
	ScheduledAt    time.Time       `json:"scheduled_at"               db:"scheduled_at"`
	StartedAt      *time.Time      `json:"started_at,omitempty"       db:"started_at"`
	FinishedAt     *time.Time      `json:"finished_at,omitempty"      db:"finished_at"`
	LeaseExpiresAt *time.Time      `json:"lease_expires_at,omitempty" db:"lease_expires_at"`
	CreatedAt      time.Time       `json:"created_at"                 db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"                 db:"updated_at"`
}

// ResearchPayload returns the decoded (person, company) pair carried by a research job.
func (j *Job) ResearchPayload() (ResearchPayload, error) {
	var p ResearchPayload
	if len(j.Payload) == 0 {
		return p, errors.New("job payload is empty")
	}
	if err := json.Unmarshal(j.Payload, &p); err != nil {
		return p, fmt.Errorf("decode research payload: %w", err)
	}
	return p, p.Validate()
}

// ResearchPayload identifies the pair a research job enriches.
type ResearchPayload struct {
	PersonID  int64 `json:"personId"`
	CompanyID int64 `json:"companyId"`
}

// Validate validates the payload ids.
func (p ResearchPayload) Validate() error {
	if p.PersonID <= 0 {
		return errors.New("personId must be positive")
	}
	if p.CompanyID <= 0 {
		return errors.New("companyId must be positive")
	}
	return nil
}

// CreateJobRequest represents a request to create a new job.
type CreateJobRequest struct {
	Type        JobType         `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	ScheduledAt *time.Time      `json:"scheduled_at,omitempty"`
	MaxAttempts int             `json:"max_attempts"`
}

// Validate validates the CreateJobRequest fields.
func (r *CreateJobRequest) Validate() error {
	if !r.Type.Valid() {
		return errors.New("invalid job type")
	}
	if len(r.Payload) == 0 {
		return errors.New("payload is required")
	}
	if r.MaxAttempts < 0 {
		return errors.New("max attempts must be >= 0")
	}
	return nil
}

// JobStats represents per-state job counts.
type JobStats struct {
	Waiting   int `json:"waiting"`
	Active    int `json:"active"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// FailJobParams carries the outcome of a failed attempt.
type FailJobParams struct {
	ID         string
	Error      string
	RetryDelay time.Duration
}

// JobStatusResponse is the read-only view served to polling clients.
type JobStatusResponse struct {
	ID         string          `json:"id"`
	State      JobState        `json:"state"`
	Progress   int             `json:"progress"`
	Payload    json.RawMessage `json:"payload"`
	Result     json.RawMessage `json:"result,omitempty"`
	Error      *string         `json:"error,omitempty"`
	Timestamps JobTimestamps   `json:"timestamps"`
	Attempts   JobAttempts     `json:"attempts"`
}

// JobTimestamps holds epoch milliseconds; unset phases are null.
type JobTimestamps struct {
	Created  int64  `json:"created"`
	Started  *int64 `json:"started"`
	Finished *int64 `json:"finished"`
}

// JobAttempts reports attempt usage.
type JobAttempts struct {
	Current int `json:"current"`
	Max     int `json:"max"`
}

// NewJobStatusResponse composes the status view from a job record.
func NewJobStatusResponse(j *Job) JobStatusResponse {
	resp := JobStatusResponse{
		ID:       j.ID,
		State:    j.State,
		Progress: j.Progress,
		Payload:  j.Payload,
		Timestamps: JobTimestamps{
			Created:  j.CreatedAt.UnixMilli(),
			Started:  epochMillis(j.StartedAt),
			Finished: epochMillis(j.FinishedAt),
		},
		Attempts: JobAttempts{Current: j.AttemptsMade, Max: j.MaxAttempts},
	}
	switch j.State {
	case JobStateCompleted:
		resp.Result = j.Result
	case JobStateFailed:
		resp.Error = j.LastError
	case JobStateWaiting, JobStateActive:
	}
	return resp
}

func epochMillis(t *time.Time) *int64 {
	if t == nil {
		return nil
	}
	ms := t.UnixMilli()
	return &ms
}

// ProgressEvent is an ephemeral bus message describing a job's progress.
type ProgressEvent struct {
	JobID     string    `json:"jobId"`
	Progress  int       `json:"progress"`
	State     JobState  `json:"state"`
	Timestamp time.Time `json:"-"`
}

// Terminal reports whether the event closes the job's progress stream.
func (e ProgressEvent) Terminal() bool {
	return e.State.Terminal()
}
