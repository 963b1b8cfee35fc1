package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ServiceMode represents the available service modes.
type ServiceMode string

const (
	// ServiceModeHTTP runs the HTTP server.
	ServiceModeHTTP ServiceMode = "http"
	// ServiceModeWorker runs the research worker.
	ServiceModeWorker ServiceMode = "worker"
	// ServiceModeReaper runs the job reaper for cleanup.
	ServiceModeReaper ServiceMode = "reaper"
)

// ValidServiceModes returns all valid service mode names.
func ValidServiceModes() []ServiceMode {
	return []ServiceMode{
		ServiceModeHTTP,
		ServiceModeWorker,
		ServiceModeReaper,
	}
}

// ParseServices parses a comma-delimited string of service names and returns the enabled services.
// It validates that all service names are valid and returns an error if any are invalid.
func ParseServices(servicesStr string) (map[ServiceMode]bool, error) {
	services := make(map[ServiceMode]bool)

	if servicesStr == "" {
		return services, errors.New("at least one service must be specified")
	}

	for _, part := range strings.Split(servicesStr, ",") {
		serviceName := strings.TrimSpace(part)
		if serviceName == "" {
			continue
		}

		mode := ServiceMode(serviceName)
		switch mode {
		case ServiceModeHTTP, ServiceModeWorker, ServiceModeReaper:
			services[mode] = true
		default:
			return nil, fmt.Errorf(
				"invalid service name: %q (valid options: http, worker, reaper)",
				serviceName,
			)
		}
	}

	if len(services) == 0 {
		return nil, errors.New("at least one valid service must be specified")
	}

	return services, nil
}

// QueueConfig contains job queue and retry configuration.
type QueueConfig struct {
	// MaxAttempts is the total number of attempts a research job gets.
	MaxAttempts int `env:"QUEUE_MAX_ATTEMPTS" envDefault:"3"`

	// BackoffBase is the delay before the first retry.
	BackoffBase time.Duration `env:"QUEUE_BACKOFF_BASE" envDefault:"1s"`

	// BackoffMultiplier scales the delay for every following retry.
	BackoffMultiplier float64 `env:"QUEUE_BACKOFF_MULTIPLIER" envDefault:"2"`

	// PollInterval is how often the worker re-polls when no notification arrives.
	PollInterval time.Duration `env:"QUEUE_POLL_INTERVAL" envDefault:"1s"`

	// InflightTTL bounds the lifetime of the Redis idempotency key for a queued pair.
	InflightTTL time.Duration `env:"QUEUE_INFLIGHT_TTL" envDefault:"10m"`

	// HeartbeatInterval is how often the worker refreshes its liveness key.
	HeartbeatInterval time.Duration `env:"QUEUE_HEARTBEAT_INTERVAL" envDefault:"10s"`
}

// Sanitize applies guardrails to queue configuration values.
func (q *QueueConfig) Sanitize() {
	if q.MaxAttempts < 1 {
		q.MaxAttempts = 1
	}
	if q.BackoffBase < 0 {
		q.BackoffBase = 0
	}
	if q.BackoffMultiplier < 1 {
		q.BackoffMultiplier = 1
	}
	if q.PollInterval < 100*time.Millisecond {
		q.PollInterval = 100 * time.Millisecond
	}
	if q.InflightTTL < time.Minute {
		q.InflightTTL = time.Minute
	}
	if q.HeartbeatInterval < time.Second {
		q.HeartbeatInterval = time.Second
	}
}

// HeartbeatTTL is the lifetime of one heartbeat; three missed beats mark the worker down.
func (q QueueConfig) HeartbeatTTL() time.Duration {
	return 3 * q.HeartbeatInterval
}

// ReaperConfig contains job reaper service configuration.
type ReaperConfig struct {
	// Interval is the reaper tick interval.
	Interval time.Duration `env:"REAPER_INTERVAL" envDefault:"5m"`

	// PendingMaxAge is the maximum age for waiting jobs before they are marked as failed.
	PendingMaxAge time.Duration `env:"REAPER_PENDING_MAX_AGE" envDefault:"1h"`

	// CompletedMaxAge is the maximum age for completed jobs before deletion.
	CompletedMaxAge time.Duration `env:"REAPER_COMPLETED_MAX_AGE" envDefault:"24h"`

	// FailedMaxAge is the maximum age for failed jobs before deletion.
	FailedMaxAge time.Duration `env:"REAPER_FAILED_MAX_AGE" envDefault:"168h"` // 7 days

	// BatchSize is the maximum number of rows to process per operation.
	// Batching prevents long locks and I/O spikes on large tables.
	BatchSize int `env:"REAPER_BATCH_SIZE" envDefault:"1000"`
}

// Sanitize applies guardrails to reaper configuration values.
func (r *ReaperConfig) Sanitize() {
	// Enforce minimum intervals to prevent excessive database load
	if r.Interval < 1*time.Minute {
		r.Interval = 1 * time.Minute
	}
	if r.PendingMaxAge < 5*time.Minute {
		r.PendingMaxAge = 5 * time.Minute
	}
	if r.CompletedMaxAge < 1*time.Hour {
		r.CompletedMaxAge = 1 * time.Hour
	}
	if r.FailedMaxAge < 1*time.Hour {
		r.FailedMaxAge = 1 * time.Hour
	}

	if r.BatchSize < 1 {
		r.BatchSize = 1
	}
	if r.BatchSize > 10000 {
		r.BatchSize = 10000
	}
}
