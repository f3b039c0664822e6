package executor

import (
	"context"
	"errors"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/Cyclone1070/greplace/internal/workflow/loop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func requireShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func startLoop(t *testing.T) *loop.Loop {
	t.Helper()
	l := loop.New(64)
	ctx, cancel := context.WithCancel(context.Background())
	go func() { _ = l.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		<-l.Done()
	})
	return l
}

// recorder collects handler calls. All calls arrive on the loop goroutine,
// the mutex only guards reads from the test goroutine.
type recorder struct {
	mu       sync.Mutex
	stdout   strings.Builder
	stderr   strings.Builder
	events   []string
	exits    int
	status   ExitStatus
	drainErr error
	done     chan struct{}
	pending  int
}

func newRecorder() *recorder {
	return &recorder{done: make(chan struct{}), pending: 2}
}

func (r *recorder) handlers() Handlers {
	return Handlers{
		OnStdout: func(chunk []byte) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.stdout.Write(chunk)
		},
		OnStderr: func(chunk []byte) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.stderr.Write(chunk)
		},
		OnDrained: func(err error) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.drainErr = err
			r.events = append(r.events, "drained")
			r.finishOne()
		},
		OnExit: func(status ExitStatus) {
			r.mu.Lock()
			defer r.mu.Unlock()
			r.exits++
			r.status = status
			r.events = append(r.events, "exit")
			r.finishOne()
		},
	}
}

func (r *recorder) finishOne() {
	r.pending--
	if r.pending == 0 {
		close(r.done)
	}
}

func (r *recorder) wait(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit and drain in time")
	}
}

func TestStart_StreamsOutputAndExitsOnce(t *testing.T) {
	requireShell(t)
	runner := NewRunner(startLoop(t))
	rec := newRecorder()

	_, err := runner.Start(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", `printf 'a\nb\n'; echo oops >&2`},
	}, rec.handlers())
	require.NoError(t, err)
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, "a\nb\n", rec.stdout.String())
	assert.Equal(t, "oops\n", rec.stderr.String())
	assert.Equal(t, 1, rec.exits)
	assert.Equal(t, 0, rec.status.Code)
	assert.NoError(t, rec.drainErr)
}

func TestStart_NonZeroExit(t *testing.T) {
	requireShell(t)
	runner := NewRunner(startLoop(t))
	rec := newRecorder()

	_, err := runner.Start(context.Background(), Spec{Command: "sh", Args: []string{"-c", "exit 3"}}, rec.handlers())
	require.NoError(t, err)
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 3, rec.status.Code)
	assert.False(t, rec.status.Signaled)
}

func TestStart_SpawnError(t *testing.T) {
	runner := NewRunner(loop.Immediate{})

	p, err := runner.Start(context.Background(), Spec{Command: "greplace-no-such-binary-xyz"}, Handlers{})

	assert.Nil(t, p)
	var spawnErr *SpawnError
	require.True(t, errors.As(err, &spawnErr))
	assert.Equal(t, "greplace-no-such-binary-xyz", spawnErr.Cmd)
	assert.True(t, spawnErr.SpawnFailed())
}

func TestStart_EmptyCommand(t *testing.T) {
	runner := NewRunner(loop.Immediate{})
	_, err := runner.Start(context.Background(), Spec{}, Handlers{})
	assert.ErrorIs(t, err, ErrEmptyCommand)
}

func TestKill_IsIdempotent(t *testing.T) {
	requireShell(t)
	runner := NewRunner(startLoop(t))
	rec := newRecorder()

	p, err := runner.Start(context.Background(), Spec{Command: "sleep", Args: []string{"10"}}, rec.handlers())
	require.NoError(t, err)

	assert.NoError(t, p.Kill())
	assert.NoError(t, p.Kill())
	rec.wait(t)

	assert.True(t, p.Exited())
	assert.NoError(t, p.Kill(), "kill after exit is a no-op")

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, 1, rec.exits)
	assert.True(t, rec.status.Signaled)
	assert.Equal(t, -1, rec.status.Code)
}

func TestStart_ContextCancelKills(t *testing.T) {
	requireShell(t)
	runner := NewRunner(startLoop(t))
	rec := newRecorder()
	ctx, cancel := context.WithCancel(context.Background())

	_, err := runner.Start(ctx, Spec{Command: "sleep", Args: []string{"10"}}, rec.handlers())
	require.NoError(t, err)
	cancel()
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.True(t, rec.status.Signaled)
}

func TestStart_ExitDoesNotWaitForDrain(t *testing.T) {
	requireShell(t)
	runner := NewRunner(startLoop(t))
	rec := newRecorder()

	// The background child keeps stdout open after the shell exits.
	_, err := runner.Start(context.Background(), Spec{
		Command: "sh",
		Args:    []string{"-c", "(sleep 0.3; echo late) & exit 0"},
	}, rec.handlers())
	require.NoError(t, err)
	rec.wait(t)

	rec.mu.Lock()
	defer rec.mu.Unlock()
	assert.Equal(t, []string{"exit", "drained"}, rec.events)
	assert.Equal(t, "late\n", rec.stdout.String())
}

func TestRun_Buffered(t *testing.T) {
	requireShell(t)
	exec := NewOSCommandExecutor(1024)

	t.Run("SimpleCommand", func(t *testing.T) {
		res, err := exec.Run(context.Background(), []string{"echo", "hello"}, "", nil)
		require.NoError(t, err)
		assert.Equal(t, "hello", strings.TrimSpace(res.Stdout))
		assert.Equal(t, 0, res.ExitCode)
	})

	t.Run("EmptyCommand", func(t *testing.T) {
		_, err := exec.Run(context.Background(), nil, "", nil)
		assert.ErrorIs(t, err, ErrEmptyCommand)
	})

	t.Run("NonZeroExit", func(t *testing.T) {
		res, err := exec.Run(context.Background(), []string{"sh", "-c", "echo bad >&2; exit 4"}, "", nil)
		assert.Error(t, err)
		assert.Equal(t, 4, res.ExitCode)
		assert.Equal(t, "bad", strings.TrimSpace(res.Stderr))
	})

	t.Run("Truncated", func(t *testing.T) {
		small := NewOSCommandExecutor(4)
		res, err := small.Run(context.Background(), []string{"echo", "123456789"}, "", nil)
		require.NoError(t, err)
		assert.True(t, res.Truncated)
		assert.Len(t, res.Stdout, 4)
	})
}

func TestCollector_FirstLine(t *testing.T) {
	c := NewCollector(100, 10)
	_, _ = c.Write([]byte("\n  rg: bad glob  \nmore\n"))
	assert.Equal(t, "rg: bad glob", c.FirstLine())

	c.Reset()
	assert.Equal(t, "", c.FirstLine())
	assert.False(t, c.Truncated())
}
