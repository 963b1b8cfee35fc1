package jobrunner

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/mock/gomock"

	domainjob "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/job"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/mocks"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/statsd"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/service"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newJobService(t *testing.T, repo *mocks.MockJobRepository) *service.JobService {
	t.Helper()
	repo.EXPECT().FailExpiredLeases(gomock.Any(), gomock.Any()).Return(nil, nil).AnyTimes()
	lease, err := domainjob.NewLeasePolicy(time.Minute, time.Second)
	require.NoError(t, err)
	svc, err := service.NewJobService(service.JobServiceOptions{Repo: repo, LeasePolicy: lease})
	require.NoError(t, err)
	return svc
}

func blockUntilDone(ctx context.Context, _ model.JobType) error {
	<-ctx.Done()
	return ctx.Err()
}

func runAsync(ctx context.Context, r *Runner) <-chan error {
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	return done
}

func waitDone(t *testing.T, done <-chan error) error {
	t.Helper()
	select {
	case err := <-done:
		return err
	case <-time.After(2 * time.Second):
		t.Fatal("runner did not stop")
		return nil
	}
}

func TestNewRunner_Validation(t *testing.T) {
	_, err := NewRunner(RunnerOptions{})
	require.Error(t, err)

	ctrl := gomock.NewController(t)
	_, err = NewRunner(RunnerOptions{Jobs: newJobService(t, mocks.NewMockJobRepository(ctrl))})
	require.Error(t, err)
}

func TestRunner_ProcessesJobsSequentially(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockJobRepository(ctrl)
	repo.EXPECT().WaitForNotification(gomock.Any(), model.JobTypeResearch).DoAndReturn(blockUntilDone).AnyTimes()

	queue := []*model.Job{
		{ID: "job-1", Type: model.JobTypeResearch, AttemptsMade: 1},
		{ID: "job-2", Type: model.JobTypeResearch, AttemptsMade: 1},
	}
	var mu sync.Mutex
	repo.EXPECT().ReserveNext(gomock.Any(), model.JobTypeResearch, 61).DoAndReturn(
		func(context.Context, model.JobType, int) (*model.Job, error) {
			mu.Lock()
			defer mu.Unlock()
			if len(queue) == 0 {
				return nil, model.ErrNoJobsAvailable
			}
			next := queue[0]
			queue = queue[1:]
			return next, nil
		}).AnyTimes()

	var (
		inFlight  atomic.Int32
		overlap   atomic.Bool
		processed = make(chan string, 2)
	)
	proc := ProcessorFunc(func(_ context.Context, job *model.Job) error {
		if inFlight.Add(1) > 1 {
			overlap.Store(true)
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		processed <- job.ID
		return nil
	})

	rec := statsd.NewRecorder()
	r, err := NewRunner(RunnerOptions{
		Jobs:         newJobService(t, repo),
		Processor:    proc,
		PollInterval: 10 * time.Millisecond,
		Metrics:      rec,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, r)

	assert.Equal(t, "job-1", <-processed)
	assert.Equal(t, "job-2", <-processed)
	cancel()
	require.NoError(t, waitDone(t, done))

	assert.False(t, overlap.Load())
	assert.Equal(t, int64(2), rec.CountTotal("job.transition",
		map[string]string{"transition": "reserve", "result": "success"}))
}

func TestRunner_StandsByUntilLockIsFree(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockJobRepository(ctrl)
	lock := mocks.NewMockWorkerLock(ctrl)
	repo.EXPECT().WaitForNotification(gomock.Any(), gomock.Any()).DoAndReturn(blockUntilDone).AnyTimes()

	var released atomic.Bool
	reserved := make(chan struct{}, 1)
	gomock.InOrder(
		lock.EXPECT().TryAcquire(gomock.Any()).Return(nil, false, nil).Times(2),
		lock.EXPECT().TryAcquire(gomock.Any()).Return(func() { released.Store(true) }, true, nil),
	)
	repo.EXPECT().ReserveNext(gomock.Any(), gomock.Any(), gomock.Any()).DoAndReturn(
		func(context.Context, model.JobType, int) (*model.Job, error) {
			select {
			case reserved <- struct{}{}:
			default:
			}
			return nil, model.ErrNoJobsAvailable
		}).AnyTimes()

	r, err := NewRunner(RunnerOptions{
		Jobs:              newJobService(t, repo),
		Processor:         ProcessorFunc(func(context.Context, *model.Job) error { return nil }),
		Lock:              lock,
		LockRetryInterval: 5 * time.Millisecond,
		PollInterval:      10 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, r)
	<-reserved
	cancel()
	require.NoError(t, waitDone(t, done))
	assert.True(t, released.Load())
}

func TestRunner_CancelDuringStandby(t *testing.T) {
	ctrl := gomock.NewController(t)
	lock := mocks.NewMockWorkerLock(ctrl)
	lock.EXPECT().TryAcquire(gomock.Any()).Return(nil, false, nil).MinTimes(1)

	r, err := NewRunner(RunnerOptions{
		Jobs:              newJobService(t, mocks.NewMockJobRepository(ctrl)),
		Processor:         ProcessorFunc(func(context.Context, *model.Job) error { return nil }),
		Lock:              lock,
		LockRetryInterval: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	require.NoError(t, r.Run(ctx))
}

func TestRunner_GivesUpWhenQueueUnreachable(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockJobRepository(ctrl)
	repo.EXPECT().WaitForNotification(gomock.Any(), gomock.Any()).DoAndReturn(blockUntilDone).AnyTimes()
	repo.EXPECT().ReserveNext(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("connection refused")).Times(maxReserveFailures)

	rec := statsd.NewRecorder()
	r, err := NewRunner(RunnerOptions{
		Jobs:         newJobService(t, repo),
		Processor:    ProcessorFunc(func(context.Context, *model.Job) error { return nil }),
		PollInterval: time.Millisecond,
		Metrics:      rec,
	})
	require.NoError(t, err)

	err = r.Run(context.Background())
	require.ErrorContains(t, err, "connection refused")
	assert.Equal(t, int64(maxReserveFailures), rec.CountTotal("job.transition",
		map[string]string{"transition": "reserve", "result": "error"}))
}

func TestRunner_RefreshesHeartbeat(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockJobRepository(ctrl)
	hb := mocks.NewMockWorkerHeartbeat(ctrl)
	repo.EXPECT().WaitForNotification(gomock.Any(), gomock.Any()).DoAndReturn(blockUntilDone).AnyTimes()
	repo.EXPECT().ReserveNext(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, model.ErrNoJobsAvailable).AnyTimes()

	var beats atomic.Int32
	hb.EXPECT().Beat(gomock.Any(), 30*time.Millisecond).DoAndReturn(
		func(context.Context, time.Duration) error {
			beats.Add(1)
			return nil
		}).MinTimes(2)

	r, err := NewRunner(RunnerOptions{
		Jobs:              newJobService(t, repo),
		Processor:         ProcessorFunc(func(context.Context, *model.Job) error { return nil }),
		Heartbeat:         hb,
		HeartbeatInterval: 10 * time.Millisecond,
		PollInterval:      5 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, r)
	require.Eventually(t, func() bool { return beats.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, waitDone(t, done))
}

func TestRunner_OutcomeErrorDoesNotStopLoop(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockJobRepository(ctrl)
	repo.EXPECT().WaitForNotification(gomock.Any(), gomock.Any()).DoAndReturn(blockUntilDone).AnyTimes()
	gomock.InOrder(
		repo.EXPECT().ReserveNext(gomock.Any(), gomock.Any(), gomock.Any()).Return(&model.Job{ID: "a"}, nil),
		repo.EXPECT().ReserveNext(gomock.Any(), gomock.Any(), gomock.Any()).Return(&model.Job{ID: "b"}, nil),
		repo.EXPECT().ReserveNext(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, model.ErrNoJobsAvailable).AnyTimes(),
	)

	seen := make(chan string, 2)
	r, err := NewRunner(RunnerOptions{
		Jobs: newJobService(t, repo),
		Processor: ProcessorFunc(func(_ context.Context, job *model.Job) error {
			seen <- job.ID
			return errors.New("db unavailable")
		}),
		PollInterval: 5 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := runAsync(ctx, r)
	assert.Equal(t, "a", <-seen)
	assert.Equal(t, "b", <-seen)
	cancel()
	require.NoError(t, waitDone(t, done))
}
