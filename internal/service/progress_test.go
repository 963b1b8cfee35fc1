package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainjob "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/job"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

func TestBusPublisher_TerminalEventDropsListeners(t *testing.T) {
	bus := domainjob.NewProgressBus()
	pub := NewBusPublisher(bus)
	var got []int
	bus.Subscribe("job-1", func(ev model.ProgressEvent) { got = append(got, ev.Progress) })

	ctx := context.Background()
	require.NoError(t, pub.PublishProgress(ctx, model.ProgressEvent{JobID: "job-1", Progress: 75, State: model.JobStateActive}))
	assert.Equal(t, 1, bus.Listeners("job-1"))

	require.NoError(t, pub.PublishProgress(ctx, model.ProgressEvent{JobID: "job-1", Progress: 100, State: model.JobStateCompleted}))
	assert.Zero(t, bus.Listeners("job-1"))

	require.NoError(t, pub.PublishProgress(ctx, model.ProgressEvent{JobID: "job-1", Progress: 100, State: model.JobStateCompleted}))
	assert.Equal(t, []int{75, 100}, got)
}

func TestBusPublisher_RetryEventKeepsListeners(t *testing.T) {
	bus := domainjob.NewProgressBus()
	pub := NewBusPublisher(bus)
	bus.Subscribe("job-1", func(model.ProgressEvent) {})

	require.NoError(t, pub.PublishProgress(context.Background(),
		model.ProgressEvent{JobID: "job-1", Progress: 50, State: model.JobStateWaiting}))
	assert.Equal(t, 1, bus.Listeners("job-1"))
}
