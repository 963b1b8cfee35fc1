package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"github.com/yuvrajjangir/AlphaAI-Backend/config"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/adapters/progressrelay"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/core"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/data"
	domainjob "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/job"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/notify/pagerduty"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/notify/slack"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/statsd"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/service"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/service/failurenotifier"
)

// ServiceContainer holds all application services.
type ServiceContainer struct {
	Jobs       *service.JobService
	Enrichment *service.EnrichmentService
	Research   *service.ResearchService
	Health     *service.HealthService
	Auth       *service.AuthService

	// Bus fans progress out to SSE clients of this process.
	Bus *domainjob.ProgressBus
	// Progress is what the worker publishes to: the local bus, or Redis when the relay is enabled.
	Progress core.ProgressPublisher

	Repos         *serviceRepositories
	Observability ObservabilityContainer
}

// ObservabilityContainer groups shared observability dependencies.
type ObservabilityContainer struct {
	MetricsSink     statsd.Sink
	MetricsClient   *statsd.Client
	FailureNotifier *failurenotifier.Service
}

// Close flushes buffered metrics.
func (o ObservabilityContainer) Close() error {
	if o.MetricsClient == nil {
		return nil
	}
	return o.MetricsClient.Close()
}

// ServiceDeps groups dependencies for service initialization.
type ServiceDeps struct {
	Config      *config.AppConfig
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger
}

// serviceRepositories groups data adapters backing service ports; no business rules here.
type serviceRepositories struct {
	DB        *sql.DB
	Redis     redis.UniversalClient
	Jobs      *data.JobRepo
	People    *data.PeopleRepo
	Research  *data.ResearchRepo
	Inflight  *data.RedisInflightRepo
	Heartbeat *data.RedisHeartbeatRepo
}

func buildRepositories(db *sql.DB, rdb redis.UniversalClient, logger *slog.Logger) *serviceRepositories {
	repos := &serviceRepositories{
		DB:       db,
		Redis:    rdb,
		Jobs:     data.NewJobRepo(db, data.RepoConfig{Logger: logger}),
		People:   data.NewPeopleRepo(db),
		Research: data.NewResearchRepo(db, logger),
	}
	if rdb != nil {
		repos.Inflight = data.NewRedisInflightRepo(rdb)
		repos.Heartbeat = data.NewRedisHeartbeatRepo(rdb)
	}
	return repos
}

// buildObservability configures metrics and notification adapters.
func buildObservability(logger *slog.Logger, cfg config.ObservabilityConfig) ObservabilityContainer {
	obs := ObservabilityContainer{}
	if cfg.Metrics.IsEnabled() {
		client, err := statsd.NewClient(statsd.Config{
			Enabled: true,
			Address: cfg.Metrics.StatsdAddress,
			Prefix:  cfg.Metrics.Prefix,
			Logger:  logger,
		})
		if err != nil {
			logger.Error("failed to initialise statsd client", "error", err)
		} else {
			obs.MetricsClient = client
			obs.MetricsSink = client
		}
	}
	obs.FailureNotifier = buildFailureNotifier(logger, cfg.FailureAlerts)
	return obs
}

func buildFailureNotifier(logger *slog.Logger, cfg config.FailureAlertConfig) *failurenotifier.Service {
	notifierLogger := logger.With("component", "failure_notifier")
	if !cfg.Enabled() {
		return failurenotifier.NewService(failurenotifier.Options{Logger: notifierLogger})
	}

	sinks := make([]failurenotifier.SinkRegistration, 0, 2)

	if cfg.SlackEnabled() {
		client, err := slack.NewClient(slack.Config{
			WebhookURL:      cfg.SlackWebhookURL,
			Channel:         cfg.SlackChannel,
			Timeout:         cfg.Timeout,
			RetryLimit:      cfg.RetryLimit,
			StatusURLPrefix: cfg.JobStatusURL,
		})
		if err != nil {
			logger.Error("failed to initialise slack notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "slack", Sink: client})
		}
	}

	if cfg.PagerDutyEnabled() {
		client, err := pagerduty.NewClient(pagerduty.Config{
			RoutingKey: cfg.PagerDutyRoutingKey,
			Component:  "research-worker",
			Timeout:    cfg.Timeout,
			RetryLimit: cfg.RetryLimit,
		})
		if err != nil {
			logger.Error("failed to initialise pagerduty notifier", "error", err)
		} else {
			sinks = append(sinks, failurenotifier.SinkRegistration{Name: "pagerduty", Sink: client})
		}
	}

	return failurenotifier.NewService(failurenotifier.Options{
		Logger:  notifierLogger,
		Sinks:   sinks,
		Timeout: cfg.Timeout * 2,
	})
}

func newJobService(
	repos *serviceRepositories,
	cfg *config.AppConfig,
	obs ObservabilityContainer,
	progress core.ProgressPublisher,
	logger *slog.Logger,
) (*service.JobService, error) {
	lease, err := domainjob.NewLeasePolicy(cfg.Research.AttemptTimeout, domainjob.DefaultLeaseMargin)
	if err != nil {
		return nil, fmt.Errorf("lease policy: %w", err)
	}
	return service.NewJobService(service.JobServiceOptions{
		Repo:        repos.Jobs,
		LeasePolicy: lease,
		Backoff: domainjob.BackoffPolicy{
			MaxAttempts: cfg.Queue.MaxAttempts,
			Base:        cfg.Queue.BackoffBase,
			Multiplier:  cfg.Queue.BackoffMultiplier,
		},
		Logger:          logger,
		Metrics:         obs.MetricsSink,
		FailureNotifier: obs.FailureNotifier,
		Progress:        progress,
		Inflight:        inflightStore(repos),
	})
}

// progressPublisher picks the worker's progress path. With the relay enabled every event
// goes through Redis and comes back into the local bus via the subscriber, so a combined
// http+worker process still delivers each event once.
//
//nolint:ireturn // callers depend on the publisher port.
func progressPublisher(cfg *config.AppConfig, bus *domainjob.ProgressBus, rdb redis.UniversalClient) core.ProgressPublisher {
	if cfg.ProgressRelayEnabled && rdb != nil {
		return progressrelay.NewPublisher(rdb)
	}
	return service.NewBusPublisher(bus)
}

// NewServices wires business services using repositories and observability adapters.
func NewServices(ctx context.Context, deps *ServiceDeps) (ServiceContainer, error) {
	if deps == nil || deps.Config == nil {
		return ServiceContainer{}, errors.New("service deps with config are required")
	}
	if deps.DB == nil {
		return ServiceContainer{}, errors.New("database is required")
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cfg := deps.Config

	repos := buildRepositories(deps.DB, deps.RedisClient, logger)
	obs := buildObservability(logger, cfg.Observability)

	bus := domainjob.NewProgressBus()
	progress := progressPublisher(cfg, bus, deps.RedisClient)
	jobs, err := newJobService(repos, cfg, obs, progress, logger)
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("job service: %w", err)
	}

	enrichment, err := service.NewEnrichmentService(service.EnrichmentServiceOptions{
		People:      repos.People,
		Research:    repos.Research,
		Jobs:        jobs,
		Inflight:    inflightStore(repos),
		InflightTTL: cfg.Queue.InflightTTL,
		ResearchTTL: cfg.Research.TTL,
		Logger:      logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("enrichment service: %w", err)
	}

	research, err := service.NewResearchService(service.ResearchServiceOptions{Repo: repos.Research, Logger: logger})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("research service: %w", err)
	}

	var heartbeat core.WorkerHeartbeat
	if repos.Heartbeat != nil {
		heartbeat = repos.Heartbeat
	}
	health, err := service.NewHealthService(service.HealthServiceOptions{
		DB:        deps.DB,
		Redis:     redisCheck(deps.RedisClient),
		Jobs:      jobs,
		Heartbeat: heartbeat,
		Logger:    logger,
	})
	if err != nil {
		return ServiceContainer{}, fmt.Errorf("health service: %w", err)
	}

	auth, err := BuildAuthService(ctx, AuthConfig{Auth: cfg.Auth, Logger: logger})
	if err != nil {
		return ServiceContainer{}, err
	}

	return ServiceContainer{
		Jobs:          jobs,
		Enrichment:    enrichment,
		Research:      research,
		Health:        health,
		Auth:          auth,
		Bus:           bus,
		Progress:      progress,
		Repos:         repos,
		Observability: obs,
	}, nil
}

// inflightStore keeps a nil repo from becoming a non-nil interface.
//
//nolint:ireturn // services depend on the port.
func inflightStore(repos *serviceRepositories) core.InflightStore {
	if repos == nil || repos.Inflight == nil {
		return nil
	}
	return repos.Inflight
}

func redisCheck(client redis.UniversalClient) service.HealthCheckFunc {
	return func(ctx context.Context) error {
		if client == nil {
			return errors.New("redis client not configured")
		}
		return client.Ping(ctx).Err()
	}
}
