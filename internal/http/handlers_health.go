package httpx

import (
	"context"
	"net/http"

	"github.com/yuvrajjangir/AlphaAI-Backend/internal/service"
)

// HealthChecker produces a health report.
type HealthChecker interface {
	Check(ctx context.Context) service.HealthReport
}

// HealthHandlers serves /healthz.
type HealthHandlers struct {
	Svc HealthChecker
}

// Health returns 200 when every dependency answered and 503 otherwise.
func (h *HealthHandlers) Health(w http.ResponseWriter, r *http.Request) {
	report := h.Svc.Check(r.Context())
	status := http.StatusOK
	if !report.Healthy() {
		status = http.StatusServiceUnavailable
	}
	if r.Method == http.MethodHead {
		w.WriteHeader(status)
		return
	}
	WriteJSON(w, status, report)
}
