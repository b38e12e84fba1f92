package tunnel

import (
	"errors"
	"fmt"
)

// ErrConfigNotFound is returned when no configuration file can be located.
var ErrConfigNotFound = errors.New("config not found")

// ErrNotRunning is returned when Write or Terminate is called on a
// supervisor whose process has not been started. This is a programming
// error on the caller's side, reported rather than silently ignored.
var ErrNotRunning = errors.New("supervisor: process not running")

// ErrWriteDropped is returned when a prompt response could not be queued
// for the child (queue full or already closed). The session keeps running;
// callers surface this as a diagnostic line rather than failing.
var ErrWriteDropped = errors.New("supervisor: input write dropped")

// SpawnError reports that the child process could not be started: the
// executable was not found or the pseudo-terminal could not be allocated.
// It is always detected before the UI is shown.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }
