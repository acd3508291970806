package session

import (
	"errors"
	"fmt"
)

var (
	// ErrNothingToPersist is returned by Persist on a write session that never created a batch.
	ErrNothingToPersist = errors.New("session: persist called before any batch was created")
	// ErrAlreadyPersisted is returned when the transaction was already committed.
	ErrAlreadyPersisted = errors.New("session: transaction already committed")
	ErrSessionReleased  = errors.New("session: already released")
	// ErrConcurrentUse is returned when initialization is re-entered while in progress.
	ErrConcurrentUse = errors.New("session: concurrent use of a single-owner session")
	ErrBatchExecuted = errors.New("session: batch already executed")
)

// IsUsageError reports whether err is a programming mistake rather than a storage failure.
func IsUsageError(err error) bool {
	return errors.Is(err, ErrNothingToPersist) ||
		errors.Is(err, ErrAlreadyPersisted) ||
		errors.Is(err, ErrSessionReleased) ||
		errors.Is(err, ErrConcurrentUse) ||
		errors.Is(err, ErrBatchExecuted)
}

// StatementError identifies the batch statement that aborted a batch.
type StatementError struct {
	Index int
	SQL   string
	Err   error
}

func (e *StatementError) Error() string {
	return fmt.Sprintf("session: batch statement %d failed: %v", e.Index, e.Err)
}

func (e *StatementError) Unwrap() error { return e.Err }
