package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	domainauth "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/auth"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/metrics"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/statsd"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/service"
)

// Logging returns a middleware that logs HTTP requests and emits request metrics.
func Logging(logger *slog.Logger, sink statsd.Sink) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			const defaultHTTPStatus = 200
			ww := &respWriter{ResponseWriter: w, status: defaultHTTPStatus}
			next.ServeHTTP(ww, r)

			// The mux records the matched pattern on the request it was handed.
			route := r.Pattern
			if route == "" {
				route = "unmatched"
			}
			elapsed := time.Since(start)
			metrics.EmitHTTPRequest(sink, metrics.HTTPRequest{
				Method:   r.Method,
				Route:    route,
				Status:   ww.status,
				Duration: elapsed,
			})
			logger.Info("http",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", ww.status),
				slog.Duration("duration", elapsed),
			)
		})
	}
}

type respWriter struct {
	http.ResponseWriter
	status int
}

func (w *respWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *respWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

// Recover returns a middleware that recovers from panics and logs them.
func Recover(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					if err == http.ErrAbortHandler {
						panic(err)
					}
					logger.Error("panic",
						slog.Any("error", err),
						slog.String("path", r.URL.Path),
						slog.String("method", r.Method),
						slog.String("stack", string(debug.Stack())))
					WriteError(w, http.StatusInternalServerError, "Internal server error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// unauthorizedMessage is returned for every rejected credential.
const unauthorizedMessage = "Unauthorized: Invalid or missing API key"

// Authenticator resolves the caller of an API request.
type Authenticator interface {
	Required() bool
	Authenticate(ctx context.Context, creds service.Credentials) (domainauth.Principal, error)
}

// RequireAPIAuth returns a middleware that accepts a matching x-api-key header or a valid
// bearer token. When no method is configured every request passes.
func RequireAPIAuth(auth Authenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if auth == nil || !auth.Required() {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := auth.Authenticate(r.Context(), credentialsFromRequest(r))
			if err != nil {
				logger.DebugContext(r.Context(), "request rejected", "path", r.URL.Path, "error", err)
				WriteError(w, http.StatusUnauthorized, unauthorizedMessage)
				return
			}
			next.ServeHTTP(w, r.WithContext(SetPrincipalInContext(r.Context(), principal)))
		})
	}
}

func credentialsFromRequest(r *http.Request) service.Credentials {
	creds := service.Credentials{APIKey: strings.TrimSpace(r.Header.Get("x-api-key"))}
	if scheme, token, ok := strings.Cut(r.Header.Get("Authorization"), " "); ok && strings.EqualFold(scheme, "bearer") {
		creds.BearerToken = strings.TrimSpace(token)
	}
	return creds
}
