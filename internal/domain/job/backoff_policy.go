// Package job holds queue policies and the in-process primitives the worker and HTTP layer share.
package job

import (
	"errors"
	"math"
	"time"
)

// Default retry policy values.
const (
	DefaultMaxAttempts = 3
	DefaultBackoffBase = time.Second
	DefaultMultiplier  = 2.0
)

// maxBackoffDelay caps computed delays so large attempt counts cannot overflow.
const maxBackoffDelay = time.Hour

var (
	// ErrInvalidMaxAttempts indicates the attempt cap is not positive.
	ErrInvalidMaxAttempts = errors.New("max attempts must be positive")
	// ErrInvalidBackoffBase indicates the base delay is negative.
	ErrInvalidBackoffBase = errors.New("backoff base must not be negative")
	// ErrInvalidMultiplier indicates the multiplier is below 1.
	ErrInvalidMultiplier = errors.New("backoff multiplier must be >= 1")
)

// BackoffPolicy decides how often and how long apart a failed job is retried.
type BackoffPolicy struct {
	MaxAttempts int
	Base        time.Duration
	Multiplier  float64
}

// DefaultBackoffPolicy returns 3 attempts with delays of 1s then 2s.
func DefaultBackoffPolicy() BackoffPolicy {
	return BackoffPolicy{
		MaxAttempts: DefaultMaxAttempts,
		Base:        DefaultBackoffBase,
		Multiplier:  DefaultMultiplier,
	}
}

// Validate reports configuration errors.
func (p BackoffPolicy) Validate() error {
	if p.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	if p.Base < 0 {
		return ErrInvalidBackoffBase
	}
	if p.Multiplier < 1 {
		return ErrInvalidMultiplier
	}
	return nil
}

// ShouldRetry reports whether another attempt is allowed after attemptsMade attempts.
func (p BackoffPolicy) ShouldRetry(attemptsMade int) bool {
	return attemptsMade < p.MaxAttempts
}

// Delay returns the wait before the next attempt, given the number of attempts made so far.
// The first retry waits Base, and every following retry multiplies the previous delay.
func (p BackoffPolicy) Delay(attemptsMade int) time.Duration {
	if attemptsMade <= 0 || p.Base <= 0 {
		return 0
	}
	factor := math.Pow(p.Multiplier, float64(attemptsMade-1))
	d := float64(p.Base) * factor
	if math.IsInf(d, 0) || d > float64(maxBackoffDelay) {
		return maxBackoffDelay
	}
	return time.Duration(d)
}
