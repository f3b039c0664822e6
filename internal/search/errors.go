package search

import (
	"fmt"
	"strings"
)

// ValidationError is returned when a search cannot be attempted as requested.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) InvalidInput() bool { return true }

// ToolNotFoundError is returned when neither search tool is on PATH.
type ToolNotFoundError struct {
	Tools []string
}

func (e *ToolNotFoundError) Error() string {
	return fmt.Sprintf("no search tool found on PATH (tried %s)", strings.Join(e.Tools, ", "))
}

func (e *ToolNotFoundError) SpawnFailed() bool { return true }

// InvalidGlobError is returned for an include pattern the baseline search
// cannot expand.
type InvalidGlobError struct {
	Pattern string
	Cause   error
}

func (e *InvalidGlobError) Error() string {
	return fmt.Sprintf("invalid include pattern %q: %v", e.Pattern, e.Cause)
}

func (e *InvalidGlobError) Unwrap() error { return e.Cause }

func (e *InvalidGlobError) InvalidInput() bool { return true }
