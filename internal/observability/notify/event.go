// Package notify defines the payload and delivery helpers for research job failure notifications.
package notify

import (
	"context"
	"strconv"
	"time"
)

// Severity constants recognised by downstream sinks.
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
)

// JobFailurePayload describes a research job that failed on its last attempt.
type JobFailurePayload struct {
	JobID       string
	JobType     string
	PersonID    int64
	CompanyID   int64
	Attempts    int
	MaxAttempts int
	Error       string
	ErrorClass  string
	Severity    string
	OccurredAt  time.Time
	Metadata    map[string]string
}

// PairLabel renders the (person, company) pair for humans.
func (p JobFailurePayload) PairLabel() string {
	if p.PersonID == 0 && p.CompanyID == 0 {
		return ""
	}
	return "person " + strconv.FormatInt(p.PersonID, 10) + " / company " + strconv.FormatInt(p.CompanyID, 10)
}

// AttemptsLabel renders attempt usage as "made/max".
func (p JobFailurePayload) AttemptsLabel() string {
	if p.Attempts == 0 {
		return ""
	}
	if p.MaxAttempts == 0 {
		return strconv.Itoa(p.Attempts)
	}
	return strconv.Itoa(p.Attempts) + "/" + strconv.Itoa(p.MaxAttempts)
}

// Sink describes a destination capable of consuming job failure notifications.
type Sink interface {
	SendJobFailure(ctx context.Context, payload JobFailurePayload) error
}

// SinkFunc adapts a function to the Sink interface (useful for tests).
type SinkFunc func(ctx context.Context, payload JobFailurePayload) error

// SendJobFailure implements the Sink interface.
func (f SinkFunc) SendJobFailure(ctx context.Context, payload JobFailurePayload) error {
	if f == nil {
		return nil
	}
	return f(ctx, payload)
}
