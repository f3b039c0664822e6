package executor

import (
	"errors"
	"fmt"
)

// ErrEmptyCommand is returned when no executable is given.
var ErrEmptyCommand = errors.New("command is required")

// SpawnError is returned when the executable cannot be launched.
type SpawnError struct {
	Cmd   string
	Cause error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("failed to start %s: %v", e.Cmd, e.Cause)
}

func (e *SpawnError) Unwrap() error { return e.Cause }

// SpawnFailed implements the behavioral interface for launch failures.
func (e *SpawnError) SpawnFailed() bool { return true }

// StreamError is returned when reading a process pipe fails.
// Data delivered before the failure stays valid.
type StreamError struct {
	Stream string // "stdout" or "stderr"
	Cause  error
}

func (e *StreamError) Error() string {
	return fmt.Sprintf("failed to read %s: %v", e.Stream, e.Cause)
}

func (e *StreamError) Unwrap() error { return e.Cause }

func (e *StreamError) IOError() bool { return true }
