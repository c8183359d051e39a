package omdb

import "errors"

// Fetch error taxonomy. NotFound and Malformed are terminal per item;
// RateLimited and Transient are retryable with backoff.
var (
	ErrNotFound    = errors.New("record not found")
	ErrRateLimited = errors.New("rate limited")
	ErrTransient   = errors.New("transient failure")
	ErrMalformed   = errors.New("malformed payload")
)

// Retryable reports whether an error should be retried with backoff.
func Retryable(err error) bool {
	return errors.Is(err, ErrRateLimited) || errors.Is(err, ErrTransient)
}

// Terminal reports whether an error is a permanent per-item outcome.
func Terminal(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, ErrMalformed)
}
