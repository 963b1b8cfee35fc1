package auth

// Package auth contains domain-level types for request authentication.
// It is pure and free of framework/adapter concerns.

import "time"

// Method records how a caller proved its identity.
type Method string

const (
	MethodAPIKey Method = "api_key"
	MethodBearer Method = "bearer"
)

// Principal is the authenticated caller of an API request.
// Adapters map provider-specific claims into this shape.
type Principal struct {
	Subject   string
	Email     string
	Method    Method
	ExpiresAt time.Time // zero for API keys
}

// Expired reports whether the principal carries an expiry that has passed at now.
func (p Principal) Expired(now time.Time) bool {
	return !p.ExpiresAt.IsZero() && !now.Before(p.ExpiresAt)
}
