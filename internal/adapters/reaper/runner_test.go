package reaper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/yuvrajjangir/AlphaAI-Backend/config"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/mocks"
)

func TestNewRunner_RequiresStorage(t *testing.T) {
	_, err := NewRunner(RunnerOptions{Config: config.ReaperConfig{BatchSize: 10}})
	require.ErrorContains(t, err, "database connection is required")
}

func TestNewRunner_RejectsInvalidConfig(t *testing.T) {
	ctrl := gomock.NewController(t)
	_, err := NewRunner(RunnerOptions{Repo: mocks.NewMockReaperRepository(ctrl)})
	require.ErrorContains(t, err, "wire reaper service")
}

func TestRunner_RunsInitialPassAndStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockReaperRepository(ctrl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	repo.EXPECT().FailStalePendingJobs(gomock.Any(), time.Hour, 10).Return(int64(0), nil).MinTimes(1)
	repo.EXPECT().DeleteOldJobs(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, params core.DeleteOldJobsParams) (int64, error) {
			if params.State == model.JobStateFailed {
				cancel()
			}
			return 0, nil
		}).MinTimes(2)

	r, err := NewRunner(RunnerOptions{
		Repo: repo,
		Config: config.ReaperConfig{
			Interval:        20 * time.Millisecond,
			PendingMaxAge:   time.Hour,
			CompletedMaxAge: 24 * time.Hour,
			FailedMaxAge:    48 * time.Hour,
			BatchSize:       10,
		},
	})
	require.NoError(t, err)

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("reaper did not stop")
	}
}
