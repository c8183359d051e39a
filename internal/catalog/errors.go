package catalog

import (
	"errors"
	"fmt"
)

// ErrStorageUnavailable marks persistence-layer failures: connection loss,
// constraint violations, filesystem trouble. Callers must not treat these as
// silent drops; the write did not happen.
var ErrStorageUnavailable = errors.New("storage unavailable")

// ErrConflictUnresolved is reserved for a future multi-field conflict policy.
// The current merge rule resolves deterministically, so it is never returned.
var ErrConflictUnresolved = errors.New("conflict unresolved")

func storageErr(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrStorageUnavailable, op, err)
}
