package metrics

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/statsd"
)

func TestEmitJobLifecycle(t *testing.T) {
	rec := statsd.NewRecorder()

	EmitJobLifecycle(rec, JobMetric{
		JobType:    "research",
		Transition: TransitionFail,
		Result:     ResultRetry,
		Duration:   2 * time.Second,
		Attempt:    1,
		Err:        context.DeadlineExceeded,
	})

	counts := rec.Named("job.transition")
	require.Len(t, counts, 1)
	assert.Equal(t, map[string]string{
		"job_type":    "research",
		"transition":  "fail",
		"result":      "retry",
		"attempt":     "1",
		"error_class": "timeout",
	}, counts[0].Tags)

	timings := rec.Named("job.duration")
	require.Len(t, timings, 1)
	assert.Equal(t, 2*time.Second, timings[0].Duration)
}

func TestEmitJobLifecycle_NilSinkAndNoDuration(t *testing.T) {
	EmitJobLifecycle(nil, JobMetric{JobType: "research"})

	rec := statsd.NewRecorder()
	EmitJobLifecycle(rec, JobMetric{JobType: "research", Transition: TransitionReserve, Result: ResultNoop})
	assert.Empty(t, rec.Named("job.duration"))
	assert.NotContains(t, rec.Named("job.transition")[0].Tags, "error_class")
}

func TestEmitProviderCall(t *testing.T) {
	rec := statsd.NewRecorder()
	EmitProviderCall(rec, ProviderCall{Provider: "gemini", Stage: "company", Duration: time.Second})
	EmitProviderCall(rec, ProviderCall{Provider: "gemini", Stage: "person", Err: errors.New("boom")})

	samples := rec.Named("research.provider_call")
	require.Len(t, samples, 2)
	assert.Equal(t, ResultSuccess, samples[0].Tags["result"])
	assert.Equal(t, ResultError, samples[1].Tags["result"])
	assert.Equal(t, "errors_errorstring", samples[1].Tags["error_class"])
}

func TestEmitHTTPRequest(t *testing.T) {
	rec := statsd.NewRecorder()
	EmitHTTPRequest(rec, HTTPRequest{Method: http.MethodGet, Route: "/healthz", Status: http.StatusServiceUnavailable})

	assert.Equal(t, int64(1), rec.CountTotal("http.requests", map[string]string{"status_class": "5xx", "route": "/healthz"}))
	assert.Equal(t, "unknown", statusClass(0))
}

func TestEmitQueueDepth(t *testing.T) {
	rec := statsd.NewRecorder()
	EmitQueueDepth(rec, QueueDepth{JobType: "research", Waiting: 4, Failed: 1})

	byState := map[string]float64{}
	for _, s := range rec.Named("queue.depth") {
		byState[s.Tags["state"]] = s.Value
	}
	assert.Equal(t, map[string]float64{"waiting": 4, "active": 0, "completed": 0, "failed": 1}, byState)
}
