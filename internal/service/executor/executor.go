package executor

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sync"

	"github.com/Cyclone1070/greplace/internal/workflow/loop"
	"golang.org/x/sync/errgroup"
)

// readChunkSize is the pipe read size; chunks may split lines anywhere.
const readChunkSize = 32 * 1024

// Spec describes a process to launch.
type Spec struct {
	Command string
	Args    []string
	Dir     string
	Env     []string // nil inherits the current environment
}

// ExitStatus describes how a process terminated.
type ExitStatus struct {
	Code     int  // -1 when the process did not exit normally
	Signaled bool // terminated by a signal (including Kill)
	Err      error
}

// Handlers receive process events. Every handler runs on the dispatcher,
// never on the reader goroutines. Nil handlers are skipped.
type Handlers struct {
	OnStdout func(chunk []byte)
	OnStderr func(chunk []byte)
	// OnDrained fires once both pipes reached EOF or failed. err is the first
	// *StreamError, if any.
	OnDrained func(err error)
	// OnExit fires exactly once, after the OS process terminated. It may run
	// before or after OnDrained.
	OnExit func(status ExitStatus)
}

// Process is a handle to a started process.
type Process struct {
	cmd *exec.Cmd

	mu     sync.Mutex
	exited bool
	killed bool
}

// Kill terminates the process. It is a no-op once the process has exited or
// has already been killed.
func (p *Process) Kill() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.exited || p.killed {
		return nil
	}
	p.killed = true
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

// Pid returns the OS process id.
func (p *Process) Pid() int {
	return p.cmd.Process.Pid
}

// Exited reports whether the exit has been observed.
func (p *Process) Exited() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.exited
}

func (p *Process) markExited() {
	p.mu.Lock()
	p.exited = true
	p.mu.Unlock()
}

// Runner starts processes whose output is streamed to a dispatcher.
type Runner struct {
	dispatcher loop.Dispatcher
}

// NewRunner creates a Runner posting all handler calls to d.
func NewRunner(d loop.Dispatcher) *Runner {
	if d == nil {
		panic("dispatcher is required")
	}
	return &Runner{dispatcher: d}
}

// Start launches spec and streams its output to h.
// Stdout and stderr are plain OS pipes rather than exec's copying pipes, so
// waiting for the process never waits for the readers: exit and drainage are
// reported independently. Cancelling ctx kills the process.
func (r *Runner) Start(ctx context.Context, spec Spec, h Handlers) (*Process, error) {
	if spec.Command == "" {
		return nil, ErrEmptyCommand
	}

	cmd := exec.Command(spec.Command, spec.Args...)
	cmd.Dir = spec.Dir
	cmd.Env = spec.Env
	cmd.Stdin = nil

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return nil, &SpawnError{Cmd: spec.Command, Cause: err}
	}
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		closeAll(stdoutR, stdoutW)
		return nil, &SpawnError{Cmd: spec.Command, Cause: err}
	}
	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW

	if err := cmd.Start(); err != nil {
		closeAll(stdoutR, stdoutW, stderrR, stderrW)
		return nil, &SpawnError{Cmd: spec.Command, Cause: err}
	}
	// The child holds its own copies; ours must go for EOF to arrive.
	closeAll(stdoutW, stderrW)

	p := &Process{cmd: cmd}
	slog.Debug("process started", "cmd", spec.Command, "args", spec.Args, "dir", spec.Dir, "pid", cmd.Process.Pid)

	var g errgroup.Group
	g.Go(func() error { return r.pump(stdoutR, "stdout", h.OnStdout) })
	g.Go(func() error { return r.pump(stderrR, "stderr", h.OnStderr) })
	go func() {
		err := g.Wait()
		r.dispatcher.Post(func() {
			if h.OnDrained != nil {
				h.OnDrained(err)
			}
		})
	}()

	stopWatch := context.AfterFunc(ctx, func() { _ = p.Kill() })
	go func() {
		status := exitStatus(cmd.Wait())
		stopWatch()
		p.markExited()
		slog.Debug("process exited", "cmd", spec.Command, "pid", cmd.Process.Pid, "code", status.Code, "signaled", status.Signaled)
		r.dispatcher.Post(func() {
			if h.OnExit != nil {
				h.OnExit(status)
			}
		})
	}()

	return p, nil
}

// pump copies r to fn chunk by chunk until EOF.
func (r *Runner) pump(rd io.ReadCloser, stream string, fn func([]byte)) error {
	defer rd.Close()
	buf := make([]byte, readChunkSize)
	for {
		n, err := rd.Read(buf)
		if n > 0 && fn != nil {
			chunk := make([]byte, n)
			copy(chunk, buf[:n])
			r.dispatcher.Post(func() { fn(chunk) })
		}
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, os.ErrClosed) {
				return nil
			}
			return &StreamError{Stream: stream, Cause: err}
		}
	}
}

func exitStatus(err error) ExitStatus {
	if err == nil {
		return ExitStatus{Code: 0}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return ExitStatus{
			Code:     exitErr.ExitCode(),
			Signaled: !exitErr.Exited(),
			Err:      err,
		}
	}
	return ExitStatus{Code: -1, Err: err}
}

func closeAll(files ...*os.File) {
	for _, f := range files {
		_ = f.Close()
	}
}

// Result represents the outcome of a buffered command execution.
type Result struct {
	Stdout    string
	Stderr    string
	ExitCode  int
	Truncated bool
}

// OSCommandExecutor runs short-lived commands to completion and buffers
// their output. Used for substitution commands.
type OSCommandExecutor struct {
	maxOutputBytes int
}

// NewOSCommandExecutor creates an executor keeping at most maxOutputBytes per stream.
func NewOSCommandExecutor(maxOutputBytes int) *OSCommandExecutor {
	if maxOutputBytes < 1 {
		panic("maxOutputBytes must be positive")
	}
	return &OSCommandExecutor{maxOutputBytes: maxOutputBytes}
}

// Run executes a command and returns the result. It buffers output internally.
// A non-zero exit is reported both in Result.ExitCode and as an error.
func (f *OSCommandExecutor) Run(ctx context.Context, command []string, dir string, env []string) (*Result, error) {
	if len(command) == 0 {
		return nil, ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, command[0], command[1:]...)
	cmd.Dir = dir
	cmd.Env = env
	cmd.Stdin = nil

	stdout := NewCollector(f.maxOutputBytes, 8000)
	stderr := NewCollector(f.maxOutputBytes, 8000)
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Start(); err != nil {
		return nil, &SpawnError{Cmd: command[0], Cause: err}
	}

	err := cmd.Wait()
	return &Result{
		Stdout:    stdout.String(),
		Stderr:    stderr.String(),
		ExitCode:  exitStatus(err).Code,
		Truncated: stdout.Truncated() || stderr.Truncated(),
	}, err
}
