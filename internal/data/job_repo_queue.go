package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/data/pgxutil"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

const (
	advisoryLockRequeueMajor = 1001
	jobChannelPrefix         = "job_added_"
	leaseExpiredError        = "lease expired before the attempt finished"
)

// JobChannel returns the LISTEN/NOTIFY channel that announces new jobs of jobType.
func JobChannel(jobType model.JobType) string {
	return jobChannelPrefix + string(jobType)
}

// Create inserts a waiting job and notifies listeners in the same transaction.
func (r *JobRepo) Create(ctx context.Context, req *model.CreateJobRequest) (*model.Job, error) {
	if req == nil {
		return nil, errors.New("create job request is required")
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := r.timeProvider.Now().UTC()
	scheduledAt := now
	if req.ScheduledAt != nil {
		scheduledAt = req.ScheduledAt.UTC()
	}
	maxAttempts := req.MaxAttempts
	if maxAttempts == 0 {
		maxAttempts = model.DefaultMaxAttempts
	}

	var created *model.Job
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			row := tx.QueryRow(ctx, `
				INSERT INTO jobs (id, type, state, payload, max_attempts, scheduled_at, created_at, updated_at)
				VALUES ($1, $2, 'waiting', $3, $4, $5, $6, $6)
				RETURNING `+jobColumns,
				uuid.NewString(), req.Type, []byte(req.Payload), maxAttempts, scheduledAt, now)
			job, err := scanJob(row)
			if err != nil {
				return err
			}
			if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, JobChannel(req.Type), job.ID); err != nil {
				return fmt.Errorf("notify job added: %w", err)
			}
			created = job
			return nil
		},
	})
	if err != nil {
		return nil, err
	}

	r.logger.DebugContext(ctx, "job created", "job_id", created.ID, "job_type", created.Type)
	return created, nil
}

// GetByID returns the job with the given id, or ErrJobNotFound.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*model.Job, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrJobNotFound
	}
	var job *model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var scanErr error
		job, scanErr = scanJob(conn.QueryRow(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = $1`, id))
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get job %s: %w", id, err)
	}
	return job, nil
}

// FindInFlight returns the waiting or active research job for the pair, or ErrJobNotFound.
func (r *JobRepo) FindInFlight(ctx context.Context, payload model.ResearchPayload) (*model.Job, error) {
	var job *model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		var scanErr error
		job, scanErr = scanJob(conn.QueryRow(ctx, `
			SELECT `+jobColumns+`
			FROM jobs
			WHERE type = $1
			  AND state IN ('waiting', 'active')
			  AND payload->>'personId' = $2
			  AND payload->>'companyId' = $3
			ORDER BY created_at DESC
			LIMIT 1`,
			model.JobTypeResearch,
			fmt.Sprint(payload.PersonID),
			fmt.Sprint(payload.CompanyID)))
		return scanErr
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrJobNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find in-flight job: %w", err)
	}
	return job, nil
}

// ReserveNext moves the oldest due waiting job to active, counts the attempt and
// leases it for leaseSeconds. Expired leases are recovered first.
// Returns model.ErrNoJobsAvailable when nothing is due.
func (r *JobRepo) ReserveNext(ctx context.Context, jobType model.JobType, leaseSeconds int) (*model.Job, error) {
	if !jobType.Valid() {
		return nil, fmt.Errorf("invalid job type: %s", jobType)
	}
	if leaseSeconds <= 0 {
		return nil, errors.New("lease seconds must be positive")
	}

	now := r.timeProvider.Now().UTC()
	var job *model.Job
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			if err := r.requeueExpired(ctx, tx, jobType, now); err != nil {
				return err
			}
			var scanErr error
			job, scanErr = scanJob(tx.QueryRow(ctx, `
				WITH next AS (
					SELECT id FROM jobs
					WHERE type = $1
					  AND state = 'waiting'
					  AND scheduled_at <= $2
					ORDER BY scheduled_at, created_at
					LIMIT 1
					FOR UPDATE SKIP LOCKED
				)
				UPDATE jobs j
				SET state = 'active',
				    attempts_made = j.attempts_made + 1,
				    started_at = $2,
				    lease_expires_at = $2 + make_interval(secs => $3),
				    updated_at = $2
				FROM next
				WHERE j.id = next.id
				RETURNING `+qualifiedJobColumns("j"),
				jobType, now, leaseSeconds))
			return scanErr
		},
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, model.ErrNoJobsAvailable
	}
	if err != nil {
		return nil, fmt.Errorf("reserve job: %w", err)
	}
	return job, nil
}

// requeueExpired returns active jobs whose lease lapsed to waiting while they have attempts
// left. Only one caller per job type does this at a time. Exhausted jobs are left for FailExpiredLeases.
func (r *JobRepo) requeueExpired(ctx context.Context, tx pgx.Tx, jobType model.JobType, now time.Time) error {
	locked, err := pgxutil.TryXactLock(ctx, tx, advisoryLockRequeueMajor, jobTypeLockKey(jobType))
	if err != nil || !locked {
		return err
	}
	tag, err := tx.Exec(ctx, `
		UPDATE jobs
		SET state = 'waiting',
		    last_error = $3,
		    lease_expires_at = NULL,
		    scheduled_at = $2,
		    updated_at = $2
		WHERE type = $1
		  AND state = 'active'
		  AND lease_expires_at < $2
		  AND attempts_made < max_attempts`,
		jobType, now, leaseExpiredError)
	if err != nil {
		return fmt.Errorf("requeue expired jobs: %w", err)
	}
	if n := tag.RowsAffected(); n > 0 {
		r.logger.WarnContext(ctx, "recovered jobs with expired leases", "job_type", jobType, "count", n)
	}
	return nil
}

// FailExpiredLeases marks active jobs whose last attempt outlived its lease as failed and
// returns them. Each job is returned to exactly one caller.
func (r *JobRepo) FailExpiredLeases(ctx context.Context, jobType model.JobType) ([]*model.Job, error) {
	if !jobType.Valid() {
		return nil, fmt.Errorf("invalid job type: %s", jobType)
	}
	now := r.timeProvider.Now().UTC()
	var failed []*model.Job
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `
			UPDATE jobs
			SET state = 'failed',
			    finished_at = $2,
			    last_error = $3,
			    lease_expires_at = NULL,
			    updated_at = $2
			WHERE type = $1
			  AND state = 'active'
			  AND lease_expires_at < $2
			  AND attempts_made >= max_attempts
			RETURNING `+jobColumns,
			jobType, now, leaseExpiredError)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			job, err := scanJob(rows)
			if err != nil {
				return err
			}
			failed = append(failed, job)
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("fail expired leases: %w", err)
	}
	if len(failed) > 0 {
		r.logger.WarnContext(ctx, "failed jobs whose last lease expired", "job_type", jobType, "count", len(failed))
	}
	return failed, nil
}

// SetProgress raises the progress of an active job. Lower values leave the stored value unchanged.
func (r *JobRepo) SetProgress(ctx context.Context, id string, progress int) (int, error) {
	if progress < 0 || progress > 100 {
		return 0, fmt.Errorf("progress must be between 0 and 100, got %d", progress)
	}
	var stored int
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		return conn.QueryRow(ctx, `
			UPDATE jobs
			SET progress = GREATEST(progress, $2), updated_at = $3
			WHERE id = $1 AND state = 'active'
			RETURNING progress`,
			id, progress, r.timeProvider.Now().UTC()).Scan(&stored)
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, ErrJobNotActive
	}
	if err != nil {
		return 0, fmt.Errorf("set progress for job %s: %w", id, err)
	}
	return stored, nil
}

// Complete marks an active job completed with its result and full progress.
// It reports false when the job was no longer active.
func (r *JobRepo) Complete(ctx context.Context, id string, result json.RawMessage) (bool, error) {
	now := r.timeProvider.Now().UTC()
	var affected int64
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		tag, err := conn.Exec(ctx, `
			UPDATE jobs
			SET state = 'completed',
			    progress = 100,
			    result = $2,
			    last_error = NULL,
			    lease_expires_at = NULL,
			    finished_at = $3,
			    updated_at = $3
			WHERE id = $1 AND state = 'active'`,
			id, nullableJSON(result), now)
		affected = tag.RowsAffected()
		return err
	})
	if err != nil {
		return false, fmt.Errorf("complete job %s: %w", id, err)
	}
	return affected > 0, nil
}

// Fail records a failed attempt. The job goes back to waiting after params.RetryDelay
// while attempts remain, and to failed otherwise. The resulting state is returned.
func (r *JobRepo) Fail(ctx context.Context, params model.FailJobParams) (model.JobState, error) {
	now := r.timeProvider.Now().UTC()
	var state model.JobState
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			var attemptsMade, maxAttempts int
			err := tx.QueryRow(ctx, `
				SELECT attempts_made, max_attempts
				FROM jobs
				WHERE id = $1 AND state = 'active'
				FOR UPDATE`, params.ID).Scan(&attemptsMade, &maxAttempts)
			if errors.Is(err, pgx.ErrNoRows) {
				return ErrJobNotActive
			}
			if err != nil {
				return err
			}

			state = model.JobStateFailed
			scheduledAt := now
			var finishedAt *time.Time
			if attemptsMade < maxAttempts {
				state = model.JobStateWaiting
				scheduledAt = now.Add(params.RetryDelay)
			} else {
				finishedAt = &now
			}

			_, err = tx.Exec(ctx, `
				UPDATE jobs
				SET state = $2,
				    last_error = $3,
				    scheduled_at = $4,
				    finished_at = $5,
				    lease_expires_at = NULL,
				    updated_at = $6
				WHERE id = $1`,
				params.ID, state, params.Error, scheduledAt, finishedAt, now)
			return err
		},
	})
	if errors.Is(err, ErrJobNotActive) {
		return "", ErrJobNotActive
	}
	if err != nil {
		return "", fmt.Errorf("fail job %s: %w", params.ID, err)
	}
	return state, nil
}

// Stats returns per-state counts for jobType.
func (r *JobRepo) Stats(ctx context.Context, jobType model.JobType) (*model.JobStats, error) {
	stats := &model.JobStats{}
	err := pgxutil.WithPgxConn(ctx, r.DB, func(conn *pgx.Conn) error {
		rows, err := conn.Query(ctx, `SELECT state, COUNT(*) FROM jobs WHERE type = $1 GROUP BY state`, jobType)
		if err != nil {
			return err
		}
		defer rows.Close()
		for rows.Next() {
			var state model.JobState
			var n int
			if err := rows.Scan(&state, &n); err != nil {
				return err
			}
			switch state {
			case model.JobStateWaiting:
				stats.Waiting = n
			case model.JobStateActive:
				stats.Active = n
			case model.JobStateCompleted:
				stats.Completed = n
			case model.JobStateFailed:
				stats.Failed = n
			}
		}
		return rows.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("job stats: %w", err)
	}
	return stats, nil
}

// WaitForNotification blocks until a job of jobType is announced or ctx ends.
func (r *JobRepo) WaitForNotification(ctx context.Context, jobType model.JobType) error {
	conn, err := r.DB.Conn(ctx)
	if err != nil {
		return fmt.Errorf("get conn: %w", err)
	}
	defer func() {
		if closeErr := conn.Close(); closeErr != nil && !errors.Is(closeErr, sql.ErrConnDone) {
			r.logger.Warn("failed to close listen connection", "error", closeErr)
		}
	}()

	channel := pgx.Identifier{JobChannel(jobType)}.Sanitize()
	return conn.Raw(func(dc any) error {
		std, ok := dc.(*stdlib.Conn)
		if !ok {
			return errors.New("unexpected driver connection type; expected *stdlib.Conn")
		}
		pgxConn := std.Conn()
		if _, err := pgxConn.Exec(ctx, "LISTEN "+channel); err != nil {
			return fmt.Errorf("listen %s: %w", channel, err)
		}
		defer func() {
			// Use a fresh context so UNLISTEN runs even when ctx is already done.
			unlistenCtx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()
			_, _ = pgxConn.Exec(unlistenCtx, "UNLISTEN "+channel)
		}()
		_, err := pgxConn.WaitForNotification(ctx)
		return err
	})
}

func qualifiedJobColumns(alias string) string {
	cols := strings.Split(strings.TrimSpace(jobColumns), ",")
	for i, c := range cols {
		cols[i] = alias + "." + strings.TrimSpace(c)
	}
	return strings.Join(cols, ", ")
}

func jobTypeLockKey(jobType model.JobType) int32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(jobType))
	return int32(h.Sum32()) //nolint:gosec // wraparound is fine for a lock key
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
