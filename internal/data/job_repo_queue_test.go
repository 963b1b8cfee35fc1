package data

import (
	"context"
	"database/sql"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
	apperrors "github.com/yuvrajjangir/AlphaAI-Backend/internal/errors"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/testutil"
)

func newTestJobRepo(db *sql.DB, now time.Time) (*JobRepo, *FixedTimeProvider) {
	tp := NewFixedTimeProvider(now)
	return NewJobRepo(db, RepoConfig{TimeProvider: tp}), tp
}

func TestJobRepo_CreateAndGet(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo, _ := newTestJobRepo(db, testutil.TestTime())

		job, err := repo.Create(ctx, testutil.ResearchJobRequest(7, 3))
		require.NoError(t, err)
		assert.NotEmpty(t, job.ID)
		assert.Equal(t, model.JobStateWaiting, job.State)
		assert.Zero(t, job.Progress)
		assert.Zero(t, job.AttemptsMade)
		assert.Equal(t, model.DefaultMaxAttempts, job.MaxAttempts)

		got, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, job.ID, got.ID)
		assert.JSONEq(t, `{"personId":7,"companyId":3}`, string(got.Payload))

		_, err = repo.GetByID(ctx, "00000000-0000-0000-0000-000000000000")
		require.ErrorIs(t, err, ErrJobNotFound)
		_, err = repo.GetByID(ctx, "not-a-uuid")
		require.ErrorIs(t, err, ErrJobNotFound)
	})
}

func TestJobRepo_CreateRejectsSecondInflightForPair(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo, _ := newTestJobRepo(db, testutil.TestTime())

		first, err := repo.Create(ctx, testutil.ResearchJobRequest(7, 3))
		require.NoError(t, err)

		_, err = repo.Create(ctx, testutil.ResearchJobRequest(7, 3))
		require.Error(t, err)
		assert.True(t, apperrors.IsInflightConflict(err))

		found, err := repo.FindInFlight(ctx, model.ResearchPayload{PersonID: 7, CompanyID: 3})
		require.NoError(t, err)
		assert.Equal(t, first.ID, found.ID)

		// A different pair is unaffected.
		other, err := repo.Create(ctx, testutil.ResearchJobRequest(8, 3))
		require.NoError(t, err)
		assert.NotEqual(t, first.ID, other.ID)
	})
}

func TestJobRepo_ReserveProgressComplete(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo, _ := newTestJobRepo(db, testutil.TestTime())

		created, err := repo.Create(ctx, testutil.ResearchJobRequest(7, 3))
		require.NoError(t, err)

		job, err := repo.ReserveNext(ctx, model.JobTypeResearch, 60)
		require.NoError(t, err)
		assert.Equal(t, created.ID, job.ID)
		assert.Equal(t, model.JobStateActive, job.State)
		assert.Equal(t, 1, job.AttemptsMade)
		require.NotNil(t, job.LeaseExpiresAt)
		assert.Equal(t, testutil.TestTime().Add(time.Minute), job.LeaseExpiresAt.UTC())

		_, err = repo.ReserveNext(ctx, model.JobTypeResearch, 60)
		require.ErrorIs(t, err, model.ErrNoJobsAvailable)

		stored, err := repo.SetProgress(ctx, job.ID, 50)
		require.NoError(t, err)
		assert.Equal(t, 50, stored)

		stored, err = repo.SetProgress(ctx, job.ID, 25)
		require.NoError(t, err)
		assert.Equal(t, 50, stored, "progress never decreases")

		ok, err := repo.Complete(ctx, job.ID, json.RawMessage(`{"success":true,"results":[],"count":0}`))
		require.NoError(t, err)
		assert.True(t, ok)

		done, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStateCompleted, done.State)
		assert.Equal(t, 100, done.Progress)
		assert.NotNil(t, done.FinishedAt)
		assert.JSONEq(t, `{"success":true,"results":[],"count":0}`, string(done.Result))

		ok, err = repo.Complete(ctx, job.ID, nil)
		require.NoError(t, err)
		assert.False(t, ok, "completing twice is a no-op")

		_, err = repo.SetProgress(ctx, job.ID, 75)
		require.ErrorIs(t, err, ErrJobNotActive)
	})
}

func TestJobRepo_FailRetriesThenTerminal(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo, tp := newTestJobRepo(db, testutil.TestTime())

		created, err := repo.Create(ctx, testutil.NewJobRequest().WithPair(7, 3).WithMaxAttempts(2).Build())
		require.NoError(t, err)

		job, err := repo.ReserveNext(ctx, model.JobTypeResearch, 60)
		require.NoError(t, err)

		state, err := repo.Fail(ctx, model.FailJobParams{ID: job.ID, Error: "provider down", RetryDelay: time.Second})
		require.NoError(t, err)
		assert.Equal(t, model.JobStateWaiting, state)

		// Not due until the delay has passed.
		_, err = repo.ReserveNext(ctx, model.JobTypeResearch, 60)
		require.ErrorIs(t, err, model.ErrNoJobsAvailable)

		tp.AddTime(time.Second)
		job, err = repo.ReserveNext(ctx, model.JobTypeResearch, 60)
		require.NoError(t, err)
		assert.Equal(t, created.ID, job.ID)
		assert.Equal(t, 2, job.AttemptsMade)

		state, err = repo.Fail(ctx, model.FailJobParams{ID: job.ID, Error: "provider down again", RetryDelay: 2 * time.Second})
		require.NoError(t, err)
		assert.Equal(t, model.JobStateFailed, state)

		failed, err := repo.GetByID(ctx, job.ID)
		require.NoError(t, err)
		assert.Equal(t, model.JobStateFailed, failed.State)
		require.NotNil(t, failed.LastError)
		assert.Equal(t, "provider down again", *failed.LastError)
		assert.NotNil(t, failed.FinishedAt)

		_, err = repo.Fail(ctx, model.FailJobParams{ID: job.ID, Error: "again"})
		require.ErrorIs(t, err, ErrJobNotActive)

		// A terminal job frees the pair for a new enqueue.
		_, err = repo.Create(ctx, testutil.ResearchJobRequest(7, 3))
		require.NoError(t, err)
	})
}

func TestJobRepo_ExpiredLeaseIsRecovered(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo, tp := newTestJobRepo(db, testutil.TestTime())

		created, err := repo.Create(ctx, testutil.ResearchJobRequest(7, 3))
		require.NoError(t, err)
		_, err = repo.ReserveNext(ctx, model.JobTypeResearch, 5)
		require.NoError(t, err)

		tp.AddTime(10 * time.Second)
		job, err := repo.ReserveNext(ctx, model.JobTypeResearch, 5)
		require.NoError(t, err)
		assert.Equal(t, created.ID, job.ID)
		assert.Equal(t, 2, job.AttemptsMade)
	})
}

func TestJobRepo_FailExpiredLeases(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo, tp := newTestJobRepo(db, testutil.TestTime())

		last, err := repo.Create(ctx, testutil.NewJobRequest().WithPair(7, 3).WithMaxAttempts(1).Build())
		require.NoError(t, err)
		retryable, err := repo.Create(ctx, testutil.NewJobRequest().WithPair(8, 3).WithMaxAttempts(3).Build())
		require.NoError(t, err)
		for range 2 {
			_, err = repo.ReserveNext(ctx, model.JobTypeResearch, 5)
			require.NoError(t, err)
		}

		tp.AddTime(10 * time.Second)
		failed, err := repo.FailExpiredLeases(ctx, model.JobTypeResearch)
		require.NoError(t, err)
		require.Len(t, failed, 1)
		assert.Equal(t, last.ID, failed[0].ID)
		assert.Equal(t, model.JobStateFailed, failed[0].State)
		require.NotNil(t, failed[0].LastError)
		assert.Equal(t, leaseExpiredError, *failed[0].LastError)

		// A second call returns nothing; the job is already terminal.
		again, err := repo.FailExpiredLeases(ctx, model.JobTypeResearch)
		require.NoError(t, err)
		assert.Empty(t, again)

		// The job with attempts left goes back to waiting instead.
		job, err := repo.ReserveNext(ctx, model.JobTypeResearch, 5)
		require.NoError(t, err)
		assert.Equal(t, retryable.ID, job.ID)
		assert.Equal(t, 2, job.AttemptsMade)
	})
}

func TestJobRepo_Stats(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		ctx := context.Background()
		repo, _ := newTestJobRepo(db, testutil.TestTime())

		for i := int64(1); i <= 3; i++ {
			_, err := repo.Create(ctx, testutil.ResearchJobRequest(i, 1))
			require.NoError(t, err)
		}
		job, err := repo.ReserveNext(ctx, model.JobTypeResearch, 60)
		require.NoError(t, err)
		_, err = repo.Complete(ctx, job.ID, nil)
		require.NoError(t, err)
		_, err = repo.ReserveNext(ctx, model.JobTypeResearch, 60)
		require.NoError(t, err)

		stats, err := repo.Stats(ctx, model.JobTypeResearch)
		require.NoError(t, err)
		assert.Equal(t, model.JobStats{Waiting: 1, Active: 1, Completed: 1}, *stats)
	})
}

func TestJobRepo_WaitForNotification(t *testing.T) {
	testutil.WithAutoDB(t, func(db *sql.DB) {
		repo, _ := newTestJobRepo(db, time.Now())

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		done := make(chan error, 1)
		go func() { done <- repo.WaitForNotification(ctx, model.JobTypeResearch) }()

		// Give LISTEN a moment to register before the insert.
		time.Sleep(200 * time.Millisecond)
		_, err := repo.Create(ctx, testutil.ResearchJobRequest(7, 3))
		require.NoError(t, err)

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-ctx.Done():
			t.Fatal("notification not received")
		}
	})
}

func TestJobChannel(t *testing.T) {
	assert.Equal(t, "job_added_research", JobChannel(model.JobTypeResearch))
}

func TestQualifiedJobColumns(t *testing.T) {
	cols := qualifiedJobColumns("j")
	assert.Contains(t, cols, "j.id, j.type, j.state")
	assert.Contains(t, cols, "j.updated_at")
}
