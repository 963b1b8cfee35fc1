// Package failurenotifier fans terminal research job failures out to alerting sinks.
package failurenotifier

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
	obserrors "github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/errors"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/notify"
)

const defaultDeliveryTimeout = 15 * time.Second

// SinkRegistration pairs a sink implementation with a human-readable name for logging.
type SinkRegistration struct {
	Name string
	Sink notify.Sink
}

// Options configures the failure notifier service.
type Options struct {
	Logger *slog.Logger
	Sinks  []SinkRegistration
	// Timeout bounds one fan-out. Delivery is detached from the caller's cancellation.
	Timeout time.Duration
}

// Service dispatches failure events to all registered sinks.
type Service struct {
	logger  *slog.Logger
	sinks   []SinkRegistration
	timeout time.Duration
}

// NewService constructs a failure notifier.
func NewService(opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var sinks []SinkRegistration
	for _, entry := range opts.Sinks {
		if entry.Sink == nil {
			continue
		}
		if entry.Name == "" {
			entry.Name = "sink"
		}
		sinks = append(sinks, entry)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultDeliveryTimeout
	}

	return &Service{
		logger:  logger.With("component", "failure_notifier"),
		sinks:   sinks,
		timeout: timeout,
	}
}

// PayloadFromJob builds the notification for a job that just failed terminally.
func PayloadFromJob(job *model.Job, cause error, occurredAt time.Time) notify.JobFailurePayload {
	payload := notify.JobFailurePayload{
		JobID:       job.ID,
		JobType:     string(job.Type),
		Attempts:    job.AttemptsMade,
		MaxAttempts: job.MaxAttempts,
		Severity:    notify.SeverityCritical,
		OccurredAt:  occurredAt,
	}
	if pair, err := job.ResearchPayload(); err == nil {
		payload.PersonID = pair.PersonID
		payload.CompanyID = pair.CompanyID
	}
	if cause != nil {
		payload.Error = cause.Error()
		payload.ErrorClass = obserrors.Classify(cause)
	}
	return payload
}

// NotifyJobFailure fans the payload out to all sinks and waits for them.
func (s *Service) NotifyJobFailure(ctx context.Context, payload notify.JobFailurePayload) {
	if s == nil || len(s.sinks) == 0 {
		return
	}

	if payload.Severity == "" {
		payload.Severity = notify.SeverityCritical
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	var wg sync.WaitGroup
	for _, entry := range s.sinks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := entry.Sink.SendJobFailure(ctx, payload); err != nil {
				s.logger.ErrorContext(ctx, "failure notifier delivery error",
					"sink", entry.Name,
					"job_id", payload.JobID,
					"error", err,
				)
			}
		}()
	}
	wg.Wait()
}

// Enabled reports whether the notifier has any active sinks.
func (s *Service) Enabled() bool {
	return s != nil && len(s.sinks) > 0
}
