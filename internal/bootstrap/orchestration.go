package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/yuvrajjangir/AlphaAI-Backend/config"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/adapters/jobrunner"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/adapters/progressrelay"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/adapters/reaper"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/data"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/research"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/service"
)

// ServiceOrchestrationConfig contains configuration for service orchestration.
type ServiceOrchestrationConfig struct {
	Config      *config.AppConfig
	Services    ServiceContainer
	DB          *sql.DB
	RedisClient redis.UniversalClient
	Logger      *slog.Logger

	// Signals overrides the OS signal source; tests use it to trigger shutdown.
	Signals <-chan os.Signal
}

const (
	// shutdownWaitTimeout is the maximum time to wait for services to stop gracefully.
	shutdownWaitTimeout = 15 * time.Second

	// serviceNameRelay is not a configurable mode; it follows http when the relay is enabled.
	serviceNameRelay = "progress relay"
)

type serviceStartupDeps struct {
	ctx             context.Context
	cfg             *ServiceOrchestrationConfig
	logger          *slog.Logger
	enabledServices map[config.ServiceMode]bool
	errCh           chan error
}

// backgroundService describes a startable background component.
type backgroundService struct {
	mode    config.ServiceMode
	name    string
	enabled bool
	start   func(context.Context) error
}

type backgroundServiceHandle struct {
	mode config.ServiceMode
	name string
	done <-chan struct{}
}

func startHTTPServerIfEnabled(deps *serviceStartupDeps) *http.Server {
	if deps == nil || deps.cfg == nil || !deps.enabledServices[config.ServiceModeHTTP] {
		return nil
	}
	return StartHTTPServer(&HTTPServerConfig{
		Config:   deps.cfg.Config,
		Services: deps.cfg.Services,
		Logger:   deps.logger,
	})
}

func launchBackground(ctx context.Context, deps *serviceStartupDeps, descriptor backgroundService) <-chan struct{} {
	if deps == nil || !descriptor.enabled {
		return nil
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := descriptor.start(ctx); err != nil {
			errMsg := fmt.Errorf("%s failed: %w", descriptor.name, err)
			select {
			case deps.errCh <- errMsg:
			case <-ctx.Done():
			default:
				deps.logger.WarnContext(ctx, "dropping background service error",
					"service", descriptor.name, "error", errMsg)
			}
		}
	}()

	deps.logger.InfoContext(ctx, "background service started", "service", descriptor.name, "mode", descriptor.mode)
	return done
}

func startBackgroundServices(deps *serviceStartupDeps, services []backgroundService) []backgroundServiceHandle {
	if deps == nil {
		return nil
	}
	handles := make([]backgroundServiceHandle, 0, len(services))
	for _, svc := range services {
		done := launchBackground(deps.ctx, deps, svc)
		if done == nil {
			continue
		}
		handles = append(handles, backgroundServiceHandle{mode: svc.mode, name: svc.name, done: done})
	}
	return handles
}

func newWorkerBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode:    config.ServiceModeWorker,
		name:    "research worker",
		enabled: deps.enabledServices[config.ServiceModeWorker],
		start: func(ctx context.Context) error {
			runner, err := buildJobRunner(ctx, deps.cfg, deps.logger)
			if err != nil {
				return err
			}
			return runner.Run(ctx)
		},
	}
}

func buildJobRunner(ctx context.Context, cfg *ServiceOrchestrationConfig, logger *slog.Logger) (*jobrunner.Runner, error) {
	appCfg := cfg.Config
	svcs := cfg.Services
	if svcs.Repos == nil {
		return nil, errors.New("repositories are not wired")
	}

	provider, err := BuildResearchProvider(ctx, appCfg.Research, logger)
	if err != nil {
		return nil, err
	}
	prompts, err := research.LoadPrompts(appCfg.Research.PromptsFile)
	if err != nil {
		return nil, fmt.Errorf("load prompts: %w", err)
	}

	worker, err := service.NewResearchWorker(service.ResearchWorkerOptions{
		Jobs:     svcs.Jobs,
		People:   svcs.Repos.People,
		Research: svcs.Repos.Research,
		Provider: provider,
		Prompts:  prompts,
		Progress: svcs.Progress,
		Inflight: inflightStore(svcs.Repos),
		Logger:   logger,
		Metrics:  svcs.Observability.MetricsSink,
	})
	if err != nil {
		return nil, fmt.Errorf("research worker: %w", err)
	}

	opts := jobrunner.RunnerOptions{
		Jobs:              svcs.Jobs,
		Processor:         worker,
		Logger:            logger,
		Lock:              data.NewPGWorkerLock(cfg.DB, 0, logger),
		HeartbeatInterval: appCfg.Queue.HeartbeatInterval,
		HeartbeatTTL:      appCfg.Queue.HeartbeatTTL(),
		PollInterval:      appCfg.Queue.PollInterval,
		Metrics:           svcs.Observability.MetricsSink,
	}
	if svcs.Repos.Heartbeat != nil {
		opts.Heartbeat = svcs.Repos.Heartbeat
	}
	return jobrunner.NewRunner(opts)
}

func newReaperBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode:    config.ServiceModeReaper,
		name:    "reaper",
		enabled: deps.enabledServices[config.ServiceModeReaper],
		start: func(ctx context.Context) error {
			opts := reaper.RunnerOptions{
				DB:      deps.cfg.DB,
				Config:  deps.cfg.Config.Reaper,
				Logger:  deps.logger,
				Metrics: deps.cfg.Services.Observability.MetricsSink,
			}
			if deps.cfg.Services.Repos != nil {
				opts.Repo = deps.cfg.Services.Repos.Jobs
			}
			runner, err := reaper.NewRunner(opts)
			if err != nil {
				return err
			}
			return runner.Run(ctx)
		},
	}
}

// newRelayBackgroundService feeds relayed worker events into this process's bus.
func newRelayBackgroundService(deps *serviceStartupDeps) backgroundService {
	return backgroundService{
		mode: config.ServiceModeHTTP,
		name: serviceNameRelay,
		enabled: deps.enabledServices[config.ServiceModeHTTP] &&
			deps.cfg.Config.ProgressRelayEnabled &&
			deps.cfg.RedisClient != nil,
		start: func(ctx context.Context) error {
			sub, err := progressrelay.NewSubscriber(progressrelay.SubscriberOptions{
				Client: deps.cfg.RedisClient,
				Sink:   service.NewBusPublisher(deps.cfg.Services.Bus),
				Logger: deps.logger,
			})
			if err != nil {
				return err
			}
			return sub.Run(ctx)
		},
	}
}

func buildBackgroundServices(deps *serviceStartupDeps) []backgroundService {
	if deps == nil || deps.cfg == nil || deps.cfg.Config == nil {
		return nil
	}
	return []backgroundService{
		newRelayBackgroundService(deps),
		newWorkerBackgroundService(deps),
		newReaperBackgroundService(deps),
	}
}

// ServiceStartupResult holds the results of starting all services.
type ServiceStartupResult struct {
	HTTPServer *http.Server
	Background []backgroundServiceHandle
}

func startServices(deps *serviceStartupDeps) ServiceStartupResult {
	return ServiceStartupResult{
		HTTPServer: startHTTPServerIfEnabled(deps),
		Background: startBackgroundServices(deps, buildBackgroundServices(deps)),
	}
}

// RunServicesWithShutdown starts all enabled services and manages their lifecycle.
// It blocks until a shutdown signal is received or a service fails.
func RunServicesWithShutdown(cfg *ServiceOrchestrationConfig) error {
	if cfg == nil {
		return errors.New("service orchestration config is required")
	}
	if cfg.Config == nil {
		return errors.New("service orchestration config missing AppConfig")
	}
	serviceCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	enabledServices, err := cfg.Config.GetEnabledServices()
	if err != nil {
		return fmt.Errorf("determine enabled services: %w", err)
	}
	errCh := make(chan error, errorChannelBufferSize(enabledServices))

	result := startServices(&serviceStartupDeps{
		ctx:             serviceCtx,
		cfg:             cfg,
		logger:          logger,
		enabledServices: enabledServices,
		errCh:           errCh,
	})

	signals := cfg.Signals
	if signals == nil {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)
		signals = quit
	}

	err = waitForShutdown(shutdownConfig{
		signals:         signals,
		cancel:          cancel,
		errCh:           errCh,
		httpServer:      result.HTTPServer,
		shutdownTimeout: cfg.Config.HTTP.ShutdownTimeout,
		logger:          logger,
		backgrounds:     result.Background,
	})
	if cerr := cfg.Services.Observability.Close(); cerr != nil {
		logger.Warn("close metrics client", "error", cerr)
	}
	return err
}

func errorChannelCapacity(enabled map[config.ServiceMode]bool) int {
	count := 0
	for _, mode := range config.ValidServiceModes() {
		if enabled[mode] {
			count++
		}
	}
	// The relay rides along with http.
	if enabled[config.ServiceModeHTTP] {
		count++
	}
	return count
}

func errorChannelBufferSize(enabled map[config.ServiceMode]bool) int {
	return errorChannelCapacity(enabled) + 1
}

type shutdownConfig struct {
	signals         <-chan os.Signal
	cancel          context.CancelFunc
	errCh           <-chan error
	httpServer      *http.Server
	shutdownTimeout time.Duration
	logger          *slog.Logger
	backgrounds     []backgroundServiceHandle
}

// waitForShutdown waits for a shutdown signal or a service error.
func waitForShutdown(cfg shutdownConfig) error {
	select {
	case sig := <-cfg.signals:
		cfg.logger.Info("shutting down services...", "signal", sig.String())
		cfg.cancel()
		return gracefulStop(cfg)
	case err := <-cfg.errCh:
		cfg.logger.Error("service error", "error", err)
		cfg.cancel()
		if stopErr := gracefulStop(cfg); stopErr != nil {
			cfg.logger.Error("graceful stop failed", "error", stopErr)
		}
		return err
	}
}

func gracefulStop(cfg shutdownConfig) error {
	var httpErr error
	if cfg.httpServer != nil {
		timeout := cfg.shutdownTimeout
		if timeout <= 0 {
			timeout = shutdownWaitTimeout
		}
		// The service context is already cancelled; shutdown gets its own deadline.
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		httpErr = ShutdownHTTPServer(ShutdownConfig{
			Context: shutdownCtx,
			Server:  cfg.httpServer,
			Logger:  cfg.logger,
		})
	}

	for _, svc := range cfg.backgrounds {
		waitForService(svc.done, svc.name, cfg.logger)
	}
	return httpErr
}

func waitForService(done <-chan struct{}, name string, logger *slog.Logger) {
	if done == nil {
		return
	}
	select {
	case <-done:
		logger.Info(name + " stopped")
	case <-time.After(shutdownWaitTimeout):
		logger.Warn("timeout waiting for " + name + " to stop")
	}
}
