package domain

import (
	"errors"
	"fmt"
)

// ErrUnauthenticated is returned when the identity fetch answers 401.
// Authoritative: never retried, triggers the login redirect.
var ErrUnauthenticated = errors.New("unauthenticated")

// ErrProfileNotFound is returned when a profile fetch answers 404.
// Authoritative: never retried. It means "setup required", not "broken".
var ErrProfileNotFound = errors.New("profile not found")

// ErrUpstreamUnavailable is returned once transient retries are exhausted.
var ErrUpstreamUnavailable = errors.New("upstream unavailable")

// ErrNotificationNotFound is returned when a notification lookup misses.
var ErrNotificationNotFound = errors.New("notification not found")

// ErrInvalidRole is returned when a payload carries an unknown role.
var ErrInvalidRole = errors.New("invalid role")

// UpstreamError carries the HTTP detail of a failed upstream call.
type UpstreamError struct {
	Endpoint string
	Status   int
	Err      error
}

func (e *UpstreamError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("upstream %s: status %d", e.Endpoint, e.Status)
	}
	return fmt.Sprintf("upstream %s: %v", e.Endpoint, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// IsTerminal reports whether err is an authoritative fetch outcome that must
// not be retried and may be negative-cached.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrUnauthenticated) || errors.Is(err, ErrProfileNotFound)
}

// IsTransient reports whether err is presumed recoverable (network/5xx after
// local retries were exhausted).
func IsTransient(err error) bool {
	return errors.Is(err, ErrUpstreamUnavailable)
}
