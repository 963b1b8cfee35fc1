package httpx

import (
	"bytes"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	domainjob "github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/job"
	"github.com/yuvrajjangir/AlphaAI-Backend/internal/domain/model"
)

const defaultStreamBuffer = 16

// ProgressSubscriber registers per-job progress listeners.
type ProgressSubscriber interface {
	Subscribe(jobID string, fn domainjob.ProgressListener) (unsubscribe func())
}

// EventHandlers streams job progress as server-sent events.
type EventHandlers struct {
	Bus    ProgressSubscriber
	Logger *slog.Logger
	// BufferSize bounds the events queued for one slow client. Overflowing events are dropped.
	BufferSize int
}

// StreamJob handles GET /api/events/jobs/{job_id}.
// There is no replay: a client only sees events published after it connected.
func (h *EventHandlers) StreamJob(w http.ResponseWriter, r *http.Request) {
	jobID := strings.TrimSpace(r.PathValue("job_id"))
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "Job ID is required")
		return
	}
	logger := resolveLogger(h.Logger).With("job_id", jobID)

	rc := http.NewResponseController(w)
	if err := rc.SetWriteDeadline(time.Time{}); err != nil && !errors.Is(err, http.ErrNotSupported) {
		logger.WarnContext(r.Context(), "clear write deadline", "error", err)
	}

	size := h.BufferSize
	if size <= 0 {
		size = defaultStreamBuffer
	}
	events := make(chan model.ProgressEvent, size)
	unsubscribe := h.Bus.Subscribe(jobID, func(ev model.ProgressEvent) {
		select {
		case events <- ev:
		default:
			logger.Warn("progress stream buffer full, dropping event", "progress", ev.Progress)
		}
	})
	defer unsubscribe()

	hdr := w.Header()
	hdr.Set("Content-Type", "text/event-stream")
	hdr.Set("Cache-Control", "no-cache")
	hdr.Set("Connection", "keep-alive")
	hdr.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		logger.DebugContext(r.Context(), "flush stream headers", "error", err)
		return
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case ev := <-events:
			if err := writeEvent(w, ev); err != nil {
				return
			}
			if err := rc.Flush(); err != nil {
				return
			}
			if ev.Terminal() {
				return
			}
		}
	}
}

// writeEvent writes one "data: <json>\n\n" frame.
func writeEvent(w http.ResponseWriter, ev model.ProgressEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	var frame bytes.Buffer
	frame.Grow(len(payload) + 8)
	frame.WriteString("data: ")
	frame.Write(payload)
	frame.WriteString("\n\n")
	_, err = w.Write(frame.Bytes())
	return err
}
