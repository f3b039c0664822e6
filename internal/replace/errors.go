package replace

import (
	"fmt"
	"strings"
)

// ValidationError is returned when a replace cannot be attempted.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) InvalidInput() bool { return true }

// FileError pairs a file with the error it failed with.
type FileError struct {
	Path  string
	Cause error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Cause)
}

func (e *FileError) Unwrap() error { return e.Cause }

// BackupError aggregates the backups that could not be written.
type BackupError struct {
	Failures []*FileError
}

func (e *BackupError) Error() string {
	return fmt.Sprintf("%d backups failed: %s", len(e.Failures), joinErrors(e.Failures))
}

func (e *BackupError) IOError() bool { return true }

// SubstitutionError is returned for a file the substitution command failed on.
type SubstitutionError struct {
	Path   string
	Stderr string
	Cause  error
}

func (e *SubstitutionError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("substitution failed for %s: %v: %s", e.Path, e.Cause, e.Stderr)
	}
	return fmt.Sprintf("substitution failed for %s: %v", e.Path, e.Cause)
}

func (e *SubstitutionError) Unwrap() error { return e.Cause }

func joinErrors(errs []*FileError) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "; ")
}
