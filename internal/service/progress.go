package service

import (
	"context"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	domainjob "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/job"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

// BusPublisher delivers progress to the in-process bus. After a terminal event it drops
// every listener for the job, so streams that missed it cannot linger on a finished job.
type BusPublisher struct {
	bus *domainjob.ProgressBus
}

var _ core.ProgressPublisher = (*BusPublisher)(nil)

// NewBusPublisher wraps bus.
func NewBusPublisher(bus *domainjob.ProgressBus) *BusPublisher {
	return &BusPublisher{bus: bus}
}

// PublishProgress implements core.ProgressPublisher.
func (p *BusPublisher) PublishProgress(_ context.Context, ev model.ProgressEvent) error {
	p.bus.PublishEvent(ev)
	if ev.Terminal() {
		p.bus.UnsubscribeAll(ev.JobID)
	}
	return nil
}
