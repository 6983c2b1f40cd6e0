package deploy

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyInProgress = errors.New("deployment already in progress")
	// ErrAlreadyRunning is reported when the panel refuses a start because a
	// job is active. It matches ErrAlreadyInProgress with errors.Is.
	ErrAlreadyRunning = fmt.Errorf("panel reports an active deployment: %w", ErrAlreadyInProgress)
	ErrTerminal       = errors.New("deployment already finished; reset required")
	ErrClosed         = errors.New("controller closed")
)

type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %s", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
