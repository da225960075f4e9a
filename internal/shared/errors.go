package shared

import (
	"context"
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotImplemented = fmt.Errorf("not implemented")

	// Configuration errors
	ErrInvalidConfig = fmt.Errorf("invalid configuration")
	ErrConfigMissing = fmt.Errorf("service not configured")

	// Authentication errors
	ErrNotAuthenticated = fmt.Errorf("not authenticated")
	ErrTokenExpired     = fmt.Errorf("access token expired")

	// API and service errors
	ErrFetchFailed        = fmt.Errorf("fetch failed")
	ErrNotFound           = fmt.Errorf("not found")
	ErrParseSkip          = fmt.Errorf("item skipped")
	ErrServiceUnavailable = fmt.Errorf("service unavailable")

	// Input validation errors
	ErrInvalidInput    = fmt.Errorf("invalid input")
	ErrMissingArgument = fmt.Errorf("missing required argument")
	ErrInvalidArgument = fmt.Errorf("invalid argument")
)

// FetchError describes a failed upstream request.
//
// Status is zero when the request never produced a response.
type FetchError struct {
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	switch {
	case e.Status != 0:
		return fmt.Sprintf("%v: %s returned status %d", ErrFetchFailed, e.URL, e.Status)
	case e.Err != nil:
		return fmt.Sprintf("%v: %s: %v", ErrFetchFailed, e.URL, e.Err)
	default:
		return fmt.Sprintf("%v: %s", ErrFetchFailed, e.URL)
	}
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes every FetchError match [ErrFetchFailed].
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// Transient reports whether retrying the same request may succeed.
func (e *FetchError) Transient() bool {
	if e.Status == 0 {
		return !errors.Is(e.Err, context.Canceled) && !errors.Is(e.Err, context.DeadlineExceeded)
	}
	return e.Status == http.StatusTooManyRequests || e.Status >= 500
}

// IsTransient reports whether err is a [FetchError] worth retrying.
func IsTransient(err error) bool {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe.Transient()
	}
	return false
}
