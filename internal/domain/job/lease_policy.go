package job

import (
	"errors"
	"time"
)

// ErrInvalidAttemptTimeout indicates the per-attempt deadline is not positive.
var ErrInvalidAttemptTimeout = errors.New("attempt timeout must be positive")

// DefaultLeaseMargin is added to the attempt deadline so a lease never expires under a live attempt.
const DefaultLeaseMargin = 30 * time.Second

// LeasePolicy ties the reservation lease to the per-attempt execution deadline.
// An attempt is cancelled at AttemptTimeout; the lease outlives it by Margin so
// only a crashed worker leaves an expired lease behind.
type LeasePolicy struct {
	attemptTimeout time.Duration
	margin         time.Duration
}

// NewLeasePolicy constructs a LeasePolicy. A non-positive margin uses DefaultLeaseMargin.
func NewLeasePolicy(attemptTimeout, margin time.Duration) (*LeasePolicy, error) {
	if attemptTimeout <= 0 {
		return nil, ErrInvalidAttemptTimeout
	}
	if margin <= 0 {
		margin = DefaultLeaseMargin
	}
	return &LeasePolicy{attemptTimeout: attemptTimeout, margin: margin}, nil
}

// AttemptTimeout returns the deadline applied to each attempt.
func (p *LeasePolicy) AttemptTimeout() time.Duration {
	if p == nil {
		return 0
	}
	return p.attemptTimeout
}

// Lease returns the lease duration used when reserving a job.
func (p *LeasePolicy) Lease() time.Duration {
	if p == nil {
		return DefaultLeaseMargin
	}
	return p.attemptTimeout + p.margin
}

// LeaseSeconds returns Lease rounded up to whole seconds.
func (p *LeasePolicy) LeaseSeconds() int {
	lease := p.Lease()
	secs := int(lease / time.Second)
	if lease%time.Second != 0 {
		secs++
	}
	if secs < 1 {
		secs = 1
	}
	return secs
}
