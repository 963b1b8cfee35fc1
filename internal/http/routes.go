// Package httpx provides the HTTP API of the enrichment service.
package httpx

import (
	"log/slog"
	"net/http"
)

// RouterServices holds all the services needed by the HTTP router.
type RouterServices struct {
	Gate     Gate               // Required
	Jobs     JobStatusReader    // Required
	Research ResearchStore      // Required
	Health   HealthChecker      // Required
	Bus      ProgressSubscriber // Required
	Auth     Authenticator      // Optional: nil leaves /api open
	Logger   *slog.Logger
}

// NewRouter registers the API routes. Middleware (recovery, logging, compression) is applied by the caller.
func NewRouter(services RouterServices) *http.ServeMux {
	logger := resolveLogger(services.Logger)
	mux := http.NewServeMux()

	api := RequireAPIAuth(services.Auth, logger)
	registerAPIRoutes(mux, api, services, logger)

	health := &HealthHandlers{Svc: services.Health}
	mux.HandleFunc("GET /healthz", health.Health)
	mux.HandleFunc("HEAD /healthz", health.Health)
	mux.HandleFunc("/", func(w http.ResponseWriter, _ *http.Request) {
		WriteError(w, http.StatusNotFound, "Not found")
	})
	return mux
}

func registerAPIRoutes(
	mux *http.ServeMux,
	wrap func(http.Handler) http.Handler,
	services RouterServices,
	logger *slog.Logger,
) {
	enrich := &EnrichHandlers{Gate: services.Gate, Logger: logger}
	jobs := &JobHandlers{Jobs: services.Jobs, Logger: logger}
	research := &ResearchHandlers{Svc: services.Research, Logger: logger}
	events := &EventHandlers{Bus: services.Bus, Logger: logger}

	mux.Handle("POST /api/enrich/{person_id}", wrap(http.HandlerFunc(enrich.Trigger)))
	status := wrap(http.HandlerFunc(jobs.GetStatus))
	mux.Handle("GET /api/research/jobs/{job_id}", status)
	mux.Handle("GET /api/research/jobs/{$}", status)
	mux.Handle("PUT /api/research/status", wrap(http.HandlerFunc(research.UpdateStatus)))
	mux.Handle("GET /api/snippets/company/{company_id}", wrap(http.HandlerFunc(research.SnippetsByCompany)))
	// A blank id answers 400 rather than the 404 catch-all.
	stream := wrap(http.HandlerFunc(events.StreamJob))
	mux.Handle("GET /api/events/jobs/{job_id}", stream)
	mux.Handle("GET /api/events/jobs/{$}", stream)
}
