package search

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"github.com/Cyclone1070/greplace/internal/service/executor"
)

// Process is the part of a running search process the controller needs.
type Process interface {
	Kill() error
}

// ExecRunner adapts the streaming executor to the controller.
type ExecRunner struct {
	runner *executor.Runner
}

// NewExecRunner wraps r.
func NewExecRunner(r *executor.Runner) *ExecRunner {
	if r == nil {
		panic("runner is required")
	}
	return &ExecRunner{runner: r}
}

// Start launches spec with h.
func (e *ExecRunner) Start(ctx context.Context, spec executor.Spec, h executor.Handlers) (Process, error) {
	p, err := e.runner.Start(ctx, spec, h)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// PathLocator finds executables on PATH. It is consulted on every search so
// a tool installed or removed mid-session is picked up.
type PathLocator struct{}

// LookPath resolves name on PATH.
func (PathLocator) LookPath(name string) (string, error) {
	return exec.LookPath(name)
}

// searchEnv is the environment for search processes: the current one minus
// settings that would change the enhanced tool's output format.
func searchEnv() []string {
	env := os.Environ()
	out := env[:0:0]
	for _, kv := range env {
		if strings.HasPrefix(kv, "RIPGREP_CONFIG_PATH=") {
			continue
		}
		out = append(out, kv)
	}
	return out
}
