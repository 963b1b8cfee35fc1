package data

import (
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

var (
	// ErrJobNotFound is returned when a job is not found.
	ErrJobNotFound = model.ErrJobNotFound
	// ErrJobNotActive is returned when a progress or outcome write targets a job that is not active.
	ErrJobNotActive = model.ErrJobNotActive
)

// RepoConfig holds configuration options for the job repository.
type RepoConfig struct {
	Logger       *slog.Logger
	TimeProvider TimeProvider
}

// JobRepo is the Postgres-backed durable queue.
type JobRepo struct {
	DB           *sql.DB
	cfg          RepoConfig
	timeProvider TimeProvider
	logger       *slog.Logger
}

// NewJobRepo creates a new JobRepo instance with the given database connection and configuration.
func NewJobRepo(db *sql.DB, cfg RepoConfig) *JobRepo {
	tp := cfg.TimeProvider
	if tp == nil {
		tp = &RealTimeProvider{}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &JobRepo{
		DB:           db,
		cfg:          cfg,
		timeProvider: tp,
		logger:       logger.With("component", "job_repo"),
	}
}

const jobColumns = `
  id,
  type,
  state,
  payload,
  progress,
  result,
  last_error,
  attempts_made,
  max_attempts,
  scheduled_at,
  started_at,
  finished_at,
  lease_expires_at,
  created_at,
  updated_at
`

type jobRowData struct {
	job            model.Job
	payload        []byte
	result         []byte
	lastError      sql.NullString
	startedAt      sql.NullTime
	finishedAt     sql.NullTime
	leaseExpiresAt sql.NullTime
}

func (d *jobRowData) scanTargets() []any {
	return []any{
		&d.job.ID,
		&d.job.Type,
		&d.job.State,
		&d.payload,
		&d.job.Progress,
		&d.result,
		&d.lastError,
		&d.job.AttemptsMade,
		&d.job.MaxAttempts,
		&d.job.ScheduledAt,
		&d.startedAt,
		&d.finishedAt,
		&d.leaseExpiresAt,
		&d.job.CreatedAt,
		&d.job.UpdatedAt,
	}
}

func (d *jobRowData) apply() *model.Job {
	j := d.job
	j.Payload = cloneJSON(d.payload)
	j.Result = cloneJSON(d.result)
	j.LastError = cloneNullableString(d.lastError)
	j.StartedAt = cloneNullableTime(d.startedAt)
	j.FinishedAt = cloneNullableTime(d.finishedAt)
	j.LeaseExpiresAt = cloneNullableTime(d.leaseExpiresAt)
	return &j
}

// scanJob reads one job from a pgx row.
func scanJob(row pgx.Row) (*model.Job, error) {
	var d jobRowData
	if err := row.Scan(d.scanTargets()...); err != nil {
		return nil, err
	}
	return d.apply(), nil
}

func cloneJSON(raw []byte) json.RawMessage {
	if len(raw) == 0 {
		return nil
	}
	out := make([]byte, len(raw))
	copy(out, raw)
	return out
}

func cloneNullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

func cloneNullableTime(v sql.NullTime) *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
