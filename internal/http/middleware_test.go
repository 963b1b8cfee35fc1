package httpx

import (
	"compress/gzip"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/auth"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/statsd"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/service"
)

const (
	contentEncodingGzip = "gzip"
	acceptEncodingGzip  = "gzip"
)

type compressionTestConfig struct {
	Handler        http.Handler
	Level          int
	MinSize        int
	AcceptEncoding string
	Method         string
}

func runCompressionTest(t *testing.T, cfg compressionTestConfig) *http.Response {
	t.Helper()

	method := cfg.Method
	if method == "" {
		method = http.MethodGet
	}
	wrapped := Compression(CompressionConfig{Level: cfg.Level, MinSize: cfg.MinSize})(cfg.Handler)
	req := httptest.NewRequest(method, "/", nil)
	if cfg.AcceptEncoding != "" {
		req.Header.Set("Accept-Encoding", cfg.AcceptEncoding)
	}
	rec := httptest.NewRecorder()
	wrapped.ServeHTTP(rec, req)
	return rec.Result()
}

func decompressGzipBody(t *testing.T, r io.Reader) string {
	t.Helper()
	gr, err := gzip.NewReader(r)
	require.NoError(t, err)
	defer gr.Close()
	b, err := io.ReadAll(gr)
	require.NoError(t, err)
	return string(b)
}

func jsonHandler(body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, body)
	})
}

func TestCompression(t *testing.T) {
	content := `{"items":[` + strings.Repeat(`{"productNames":["a","b"]},`, 200) + `{}]}`

	tests := []struct {
		name           string
		acceptEncoding string
		expectGzip     bool
		level          int
	}{
		{name: "client accepts gzip", acceptEncoding: "gzip, deflate", expectGzip: true, level: 6},
		{name: "client does not accept gzip", acceptEncoding: "deflate", level: 6},
		{name: "no accept-encoding header", level: 6},
		{name: "gzip disabled by q=0", acceptEncoding: "gzip;q=0, deflate", level: 6},
		{name: "fastest level", acceptEncoding: acceptEncodingGzip, expectGzip: true, level: 1},
		{name: "best level", acceptEncoding: acceptEncodingGzip, expectGzip: true, level: 9},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := runCompressionTest(t, compressionTestConfig{
				Handler:        jsonHandler(content),
				Level:          tt.level,
				AcceptEncoding: tt.acceptEncoding,
			})
			defer resp.Body.Close()

			if !tt.expectGzip {
				assert.NotEqual(t, contentEncodingGzip, resp.Header.Get("Content-Encoding"))
				b, err := io.ReadAll(resp.Body)
				require.NoError(t, err)
				assert.Equal(t, content, string(b))
				return
			}
			assert.Equal(t, contentEncodingGzip, resp.Header.Get("Content-Encoding"))
			assert.Equal(t, "Accept-Encoding", resp.Header.Get("Vary"))
			assert.Empty(t, resp.Header.Get("Content-Length"))
			assert.Equal(t, content, decompressGzipBody(t, resp.Body))
		})
	}
}

func TestCompression_SkipsStreamsAndHEAD(t *testing.T) {
	stream := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "data: {}\n\n")
	})
	resp := runCompressionTest(t, compressionTestConfig{Handler: stream, Level: 6, AcceptEncoding: acceptEncodingGzip})
	defer resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Content-Encoding"))

	head := runCompressionTest(t, compressionTestConfig{
		Handler:        jsonHandler(`{}`),
		Level:          6,
		AcceptEncoding: acceptEncodingGzip,
		Method:         http.MethodHead,
	})
	defer head.Body.Close()
	assert.Empty(t, head.Header.Get("Content-Encoding"))
}

func TestCompression_SmallBodyBelowMinSizeIsNotLost(t *testing.T) {
	resp := runCompressionTest(t, compressionTestConfig{
		Handler:        jsonHandler(`{"ok":true}`),
		Level:          6,
		MinSize:        1024,
		AcceptEncoding: acceptEncodingGzip,
	})
	defer resp.Body.Close()
	assert.Equal(t, `{"ok":true}`, decompressGzipBody(t, resp.Body))
}

func TestRecover(t *testing.T) {
	h := Recover(slog.New(slog.DiscardHandler))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}

func TestLogging_EmitsRouteMetrics(t *testing.T) {
	rec := statsd.NewRecorder()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/research/jobs/{job_id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	h := Logging(slog.New(slog.DiscardHandler), rec)(mux)

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/research/jobs/abc", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/elsewhere", nil))

	assert.Equal(t, int64(1), rec.CountTotal("http.requests", map[string]string{
		"route":        "GET /api/research/jobs/{job_id}",
		"status_class": "4xx",
	}))
	assert.Equal(t, int64(1), rec.CountTotal("http.requests", map[string]string{"route": "unmatched"}))
	assert.Len(t, rec.Named("http.request_duration"), 2)
}

type recordingAuth struct {
	required bool
	got      service.Credentials
	err      error
}

func (a *recordingAuth) Required() bool { return a.required }

func (a *recordingAuth) Authenticate(_ context.Context, creds service.Credentials) (domainauth.Principal, error) {
	a.got = creds
	if a.err != nil {
		return domainauth.Principal{}, a.err
	}
	return domainauth.Principal{Subject: "user-1", Method: domainauth.MethodBearer}, nil
}

func TestRequireAPIAuth(t *testing.T) {
	var seen domainauth.Principal
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen, _ = PrincipalFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})
	logger := slog.New(slog.DiscardHandler)

	t.Run("open when nothing configured", func(t *testing.T) {
		rec := httptest.NewRecorder()
		RequireAPIAuth(&recordingAuth{}, logger)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = httptest.NewRecorder()
		RequireAPIAuth(nil, logger)(next).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNoContent, rec.Code)
	})

	t.Run("bearer token reaches authenticator", func(t *testing.T) {
		auth := &recordingAuth{required: true}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer  tok-123 ")
		rec := httptest.NewRecorder()
		RequireAPIAuth(auth, logger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNoContent, rec.Code)
		assert.Equal(t, "tok-123", auth.got.BearerToken)
		assert.Empty(t, auth.got.APIKey)
		assert.Equal(t, "user-1", seen.Subject)
	})

	t.Run("rejection", func(t *testing.T) {
		auth := &recordingAuth{required: true, err: service.ErrUnauthorized}
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("x-api-key", "nope")
		rec := httptest.NewRecorder()
		RequireAPIAuth(auth, logger)(next).ServeHTTP(rec, req)

		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		assert.Equal(t, "nope", auth.got.APIKey)
		assert.JSONEq(t, `{"error":"`+unauthorizedMessage+`"}`, rec.Body.String())
	})
}

func TestAcceptsGzip(t *testing.T) {
	tests := map[string]bool{
		"":                    false,
		"gzip":                true,
		"GZIP;q=0.5":          true,
		"br, gzip;q=0":        false,
		"gzip; q=0.0, *":      false,
		"*":                   true,
		"*;q=0":               false,
		"deflate, identity":   false,
		"x-gzip-like, br;q=1": false,
	}
	for header, want := range tests {
		assert.Equal(t, want, acceptsGzip(header), header)
	}
}
