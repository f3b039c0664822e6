package app

import (
	"context"
	"os"
	"time"

	"github.com/Cyclone1070/greplace/internal/replace"
	"github.com/Cyclone1070/greplace/internal/search"
	"github.com/Cyclone1070/greplace/internal/service/executor"
	"github.com/Cyclone1070/greplace/internal/workflow"
	"github.com/Cyclone1070/greplace/internal/workflow/loop"
)

// EventSink receives everything the application reports to its host.
// Emit is called on the control goroutine and must not block for long.
type EventSink interface {
	Emit(e workflow.Event)
}

// Prompter asks the user questions. Calls block the control goroutine until
// answered, so hosts must answer from another goroutine.
type Prompter interface {
	Confirm(ctx context.Context, question string, allowPreview bool) (replace.Decision, error)
	// Input asks for free text; initial pre-fills the answer.
	Input(ctx context.Context, prompt, initial string) (string, error)
	// Choose asks for one of items and returns its index, or -1 when dismissed.
	Choose(ctx context.Context, title string, items []string) (int, error)
}

type processRunner interface {
	Start(ctx context.Context, spec executor.Spec, h executor.Handlers) (search.Process, error)
}

type clock interface {
	Every(interval time.Duration, fn func()) loop.Timer
	After(d time.Duration, fn func()) loop.Timer
}

type toolLocator interface {
	LookPath(name string) (string, error)
}

type fileLister interface {
	Expand(pattern string) ([]string, error)
}

type commandRunner interface {
	Run(ctx context.Context, command []string, dir string, env []string) (*executor.Result, error)
}

// fileSystem covers replace backups and checksums plus history persistence.
type fileSystem interface {
	ReadFile(path string) ([]byte, error)
	CopyFile(src, dst string) error
	ChecksumFile(path string) (uint64, error)
	WriteFileAtomic(path string, content []byte, perm os.FileMode) error
	EnsureDirs(path string) error
}
