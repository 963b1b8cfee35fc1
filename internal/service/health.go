package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

// Health statuses.
const (
	HealthStatusHealthy   = "healthy"
	HealthStatusUnhealthy = "unhealthy"
)

// Dependency states reported in a healthy report.
const (
	DependencyConnected = "connected"
	WorkerRunning       = "running"
	WorkerAbsent        = "absent"
	WorkerUnknown       = "unknown"
)

const defaultHealthTimeout = 3 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthCheckFunc checks one dependency.
type HealthCheckFunc func(ctx context.Context) error

// HealthServiceOptions groups dependencies for HealthService.
type HealthServiceOptions struct {
	DB        Pinger               // Required
	Redis     HealthCheckFunc      // Required
	Jobs      *JobService          // Required: queue counts
	Heartbeat core.WorkerHeartbeat // Optional: worker liveness, informational only
	Timeout   time.Duration
	Logger    *slog.Logger
}

// HealthServices lists per-dependency states.
type HealthServices struct {
	Database string `json:"database"`
	Redis    string `json:"redis"`
	Worker   string `json:"worker"`
}

// HealthReport is the /healthz body.
type HealthReport struct {
	Status    string          `json:"status"`
	Services  *HealthServices `json:"services,omitempty"`
	Queue     *model.JobStats `json:"queue,omitempty"`
	Error     string          `json:"error,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
}

// Healthy reports whether every required dependency answered.
func (r HealthReport) Healthy() bool {
	return r.Status == HealthStatusHealthy
}

// HealthService checks the database, Redis and the queue concurrently.
type HealthService struct {
	db        Pinger
	redis     HealthCheckFunc
	jobs      *JobService
	heartbeat core.WorkerHeartbeat
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

// NewHealthService constructs a HealthService.
func NewHealthService(opts HealthServiceOptions) (*HealthService, error) {
	switch {
	case opts.DB == nil:
		return nil, errors.New("database pinger is required")
	case opts.Redis == nil:
		return nil, errors.New("redis check is required")
	case opts.Jobs == nil:
		return nil, errors.New("JobService is required")
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultHealthTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &HealthService{
		db:        opts.DB,
		redis:     opts.Redis,
		jobs:      opts.Jobs,
		heartbeat: opts.Heartbeat,
		timeout:   timeout,
		logger:    logger.With("component", "health"),
		now:       time.Now,
	}, nil
}

// Check runs all checks. A failing database, Redis or queue check yields an unhealthy report.
func (s *HealthService) Check(ctx context.Context) HealthReport {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var (
		stats  *model.JobStats
		worker = WorkerUnknown
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.db.PingContext(gctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := s.redis(gctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		if stats, err = s.jobs.Stats(gctx); err != nil {
			return fmt.Errorf("queue: %w", err)
		}
		return nil
	})
	if s.heartbeat != nil {
		g.Go(func() error {
			alive, err := s.heartbeat.Alive(gctx)
			switch {
			case err != nil:
				s.logger.DebugContext(gctx, "worker heartbeat unavailable", "error", err)
			case alive:
				worker = WorkerRunning
			default:
				worker = WorkerAbsent
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		s.logger.WarnContext(ctx, "health check failed", "error", err)
		return HealthReport{Status: HealthStatusUnhealthy, Error: err.Error(), Timestamp: s.now().UTC()}
	}
	return HealthReport{
		Status: HealthStatusHealthy,
		Services: &HealthServices{
			Database: DependencyConnected,
			Redis:    DependencyConnected,
			Worker:   worker,
		},
		Queue:     stats,
		Timestamp: s.now().UTC(),
	}
}
