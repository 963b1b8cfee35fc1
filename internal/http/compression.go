package httpx

import (
	"bufio"
	"compress/gzip"
	"errors"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
)

// CompressionConfig holds configuration for the compression middleware.
type CompressionConfig struct {
	Level   int // gzip level 1-9; anything else falls back to the default level
	MinSize int // bytes buffered before the first compressed write; 0 writes through
	Logger  *slog.Logger
}

// text/event-stream is never compressed.
var compressibleTypes = map[string]bool{
	"application/json":         true,
	"application/problem+json": true,
	"application/xml":          true,
	"text/plain":               true,
	"text/html":                true,
	"text/csv":                 true,
}

// Compression gzips JSON and text responses for clients that accept it. HEAD
// requests, bodiless statuses and pre-encoded responses pass through untouched.
func Compression(cfg CompressionConfig) func(http.Handler) http.Handler {
	level := cfg.Level
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	pool := &sync.Pool{New: func() any {
		w, _ := gzip.NewWriterLevel(io.Discard, level)
		return w
	}}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.Method == http.MethodHead || !acceptsGzip(r.Header.Get("Accept-Encoding")) {
				next.ServeHTTP(w, r)
				return
			}
			w.Header().Add("Vary", "Accept-Encoding")

			gw := &gzipResponseWriter{ResponseWriter: w, pool: pool, minSize: cfg.MinSize}
			next.ServeHTTP(gw, r)
			if err := gw.finish(); err != nil {
				logger.ErrorContext(r.Context(), "finishing gzip response failed", "error", err)
			}
		})
	}
}

// acceptsGzip reports whether gzip (or *) is listed with a non-zero q-value.
func acceptsGzip(header string) bool {
	for _, part := range strings.Split(header, ",") {
		coding, params, _ := strings.Cut(strings.TrimSpace(part), ";")
		coding = strings.ToLower(strings.TrimSpace(coding))
		if coding != "gzip" && coding != "*" {
			continue
		}
		q := 1.0
		if k, v, ok := strings.Cut(strings.TrimSpace(params), "="); ok && strings.EqualFold(strings.TrimSpace(k), "q") {
			if parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
				q = parsed
			}
		}
		if coding == "gzip" || q > 0 {
			return q > 0
		}
	}
	return false
}

func isCompressible(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	return err == nil && compressibleTypes[mediaType]
}

type gzipResponseWriter struct {
	http.ResponseWriter
	pool    *sync.Pool
	minSize int

	wroteHeader bool
	gz          *gzip.Writer
	pending     []byte
}

func (w *gzipResponseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true

	h := w.Header()
	bodiless := status < http.StatusOK || status == http.StatusNoContent || status == http.StatusNotModified
	if !bodiless && h.Get("Content-Encoding") == "" && isCompressible(h.Get("Content-Type")) {
		w.gz = w.pool.Get().(*gzip.Writer)
		w.gz.Reset(w.ResponseWriter)
		h.Set("Content-Encoding", "gzip")
		h.Del("Content-Length")
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *gzipResponseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", http.DetectContentType(b))
		}
		w.WriteHeader(http.StatusOK)
	}
	if w.gz == nil {
		return w.ResponseWriter.Write(b)
	}
	if w.pending != nil || len(b) < w.minSize {
		w.pending = append(w.pending, b...)
		if len(w.pending) < w.minSize {
			return len(b), nil
		}
		_, err := w.gz.Write(w.pending)
		w.pending = nil
		return len(b), err
	}
	return w.gz.Write(b)
}

// finish writes any buffered bytes, closes the gzip stream and returns the writer to the pool.
func (w *gzipResponseWriter) finish() error {
	if w.gz == nil {
		return nil
	}
	var err error
	if len(w.pending) > 0 {
		_, err = w.gz.Write(w.pending)
		w.pending = nil
	}
	err = errors.Join(err, w.gz.Close())
	w.gz.Reset(io.Discard)
	w.pool.Put(w.gz)
	w.gz = nil
	return err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *gzipResponseWriter) Unwrap() http.ResponseWriter { return w.ResponseWriter }

func (w *gzipResponseWriter) Flush() {
	if w.gz != nil {
		if len(w.pending) > 0 {
			_, _ = w.gz.Write(w.pending)
			w.pending = nil
		}
		_ = w.gz.Flush()
	}
	_ = http.NewResponseController(w.ResponseWriter).Flush()
}

func (w *gzipResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	return http.NewResponseController(w.ResponseWriter).Hijack()
}
