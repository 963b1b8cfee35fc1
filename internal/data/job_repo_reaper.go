package data

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/data/pgxutil"
)

// Advisory lock namespace for reaper operations: pg_try_advisory_xact_lock(major, minor).
const (
	advisoryLockReaperMajor       = 1000
	advisoryLockReaperFailPending = 1
	advisoryLockReaperDelete      = 2
)

const staleWaitingError = "Job timed out in waiting state"

// FailStalePendingJobs marks waiting jobs older than maxAge as failed, up to batchSize per call.
// It returns zero without touching anything when another reaper holds the lock.
func (r *JobRepo) FailStalePendingJobs(ctx context.Context, maxAge time.Duration, batchSize int) (int64, error) {
	if batchSize <= 0 {
		return 0, errors.New("batch size must be greater than zero")
	}

	var rowsAffected int64
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			locked, err := pgxutil.TryXactLock(ctx, tx, advisoryLockReaperMajor, advisoryLockReaperFailPending)
			if err != nil || !locked {
				return err
			}

			now := r.timeProvider.Now().UTC()
			tag, err := tx.Exec(ctx, `
				UPDATE jobs
				SET state = 'failed',
				    last_error = $4,
				    finished_at = $1,
				    updated_at = $1
				WHERE id IN (
					SELECT id FROM jobs
					WHERE state = 'waiting'
					  AND created_at < $2
					ORDER BY created_at
					LIMIT $3
				)`,
				now, now.Add(-maxAge), batchSize, staleWaitingError)
			if err != nil {
				return fmt.Errorf("fail stale waiting jobs: %w", err)
			}
			rowsAffected = tag.RowsAffected()
			return nil
		},
	})
	if err != nil {
		return 0, err
	}
	return rowsAffected, nil
}

// DeleteOldJobs deletes terminal jobs in params.State finished more than params.MaxAge ago,
// up to params.BatchSize per call.
func (r *JobRepo) DeleteOldJobs(ctx context.Context, params core.DeleteOldJobsParams) (int64, error) {
	if !params.State.Terminal() {
		return 0, fmt.Errorf("only terminal jobs can be deleted, got state %q", params.State)
	}
	if params.BatchSize <= 0 {
		return 0, errors.New("batch size must be greater than zero")
	}
	if params.MaxAge <= 0 {
		return 0, errors.New("max age must be greater than zero")
	}

	var rowsAffected int64
	err := pgxutil.WithPgxTx(ctx, r.DB, pgxutil.TxConfig{
		Fn: func(tx pgx.Tx) error {
			locked, err := pgxutil.TryXactLock(ctx, tx, advisoryLockReaperMajor, advisoryLockReaperDelete)
			if err != nil || !locked {
				return err
			}

			cutoff := r.timeProvider.Now().UTC().Add(-params.MaxAge)
			tag, err := tx.Exec(ctx, `
				DELETE FROM jobs
				WHERE id IN (
					SELECT id FROM jobs
					WHERE state = $1
					  AND COALESCE(finished_at, updated_at) < $2
					ORDER BY COALESCE(finished_at, updated_at)
					LIMIT $3
				)`,
				params.State, cutoff, params.BatchSize)
			if err != nil {
				return fmt.Errorf("delete old %s jobs: %w", params.State, err)
			}
			rowsAffected = tag.RowsAffected()
			return nil
		},
	})
	if err != nil {
		return 0, err
	}
	return rowsAffected, nil
}

var (
	_ core.ReaperRepository = (*JobRepo)(nil)
	_ core.JobRepository    = (*JobRepo)(nil)
)
