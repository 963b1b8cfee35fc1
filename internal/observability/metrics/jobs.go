// Package metrics holds the metric names and tag conventions shared by the worker, reaper and HTTP layer.
package metrics

import (
	"maps"
	"strconv"
	"time"

	obserrors "github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/errors"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/observability/statsd"
)

// Result constants for metric tagging.
const (
	ResultSuccess = "success"
	ResultError   = "error"
	ResultRetry   = "retry"
	ResultNoop    = "noop"
)

// Job transitions.
const (
	TransitionReserve  = "reserve"
	TransitionComplete = "complete"
	TransitionFail     = "fail"
)

// JobMetric captures details about a job lifecycle event for metric emission.
type JobMetric struct {
	JobType    string
	Transition string
	Result     string
	Duration   time.Duration
	Attempt    int
	Err        error
}

// EmitJobLifecycle emits standardised job lifecycle metrics.
func EmitJobLifecycle(sink statsd.Sink, in JobMetric) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"job_type":   in.JobType,
		"transition": in.Transition,
		"result":     in.Result,
	}
	if in.Attempt > 0 {
		tags["attempt"] = strconv.Itoa(in.Attempt)
	}

	if in.Err != nil && (in.Result == ResultError || in.Result == ResultRetry) {
		if class := obserrors.Classify(in.Err); class != "" {
			tags["error_class"] = class
		}
	}

	sink.Count("job.transition", 1, tags)

	if in.Duration > 0 {
		sink.Timing("job.duration", in.Duration, maps.Clone(tags))
	}
}

// ProviderCall describes one round-trip to the research provider.
type ProviderCall struct {
	Provider string
	Stage    string
	Duration time.Duration
	Err      error
}

// EmitProviderCall records the latency and outcome of a provider call.
func EmitProviderCall(sink statsd.Sink, in ProviderCall) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"provider": in.Provider,
		"stage":    in.Stage,
		"result":   ResultSuccess,
	}
	if in.Err != nil {
		tags["result"] = ResultError
		tags["error_class"] = obserrors.Classify(in.Err)
	}
	sink.Timing("research.provider_call", in.Duration, tags)
}

// HTTPRequest describes one served request. Route is the mux pattern, never the raw path.
type HTTPRequest struct {
	Method   string
	Route    string
	Status   int
	Duration time.Duration
}

// EmitHTTPRequest records the request counter and latency.
func EmitHTTPRequest(sink statsd.Sink, in HTTPRequest) {
	if sink == nil {
		return
	}
	tags := map[string]string{
		"method":       in.Method,
		"route":        in.Route,
		"status_class": statusClass(in.Status),
	}
	sink.Count("http.requests", 1, tags)
	sink.Timing("http.request_duration", in.Duration, maps.Clone(tags))
}

// QueueDepth reports per-state job counts.
type QueueDepth struct {
	JobType   string
	Waiting   int
	Active    int
	Completed int
	Failed    int
}

// EmitQueueDepth records one gauge per state.
func EmitQueueDepth(sink statsd.Sink, in QueueDepth) {
	if sink == nil {
		return
	}
	for state, n := range map[string]int{
		"waiting":   in.Waiting,
		"active":    in.Active,
		"completed": in.Completed,
		"failed":    in.Failed,
	} {
		sink.Gauge("queue.depth", float64(n), map[string]string{"job_type": in.JobType, "state": state})
	}
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
