package replace

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Cyclone1070/greplace/internal/config"
	"github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/Cyclone1070/greplace/internal/service/executor"
	"github.com/Cyclone1070/greplace/internal/service/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Local mocks for engine tests

type mockPrompter struct {
	answers   []Decision
	questions []string
}

func (p *mockPrompter) Confirm(ctx context.Context, question string, allowPreview bool) (Decision, error) {
	p.questions = append(p.questions, question)
	if len(p.answers) == 0 {
		return DecisionCancel, nil
	}
	d := p.answers[0]
	p.answers = p.answers[1:]
	return d, nil
}

type mockNotifier struct {
	infos []string
	warns []string
}

func (n *mockNotifier) Info(text string) { n.infos = append(n.infos, text) }
func (n *mockNotifier) Warn(text string) { n.warns = append(n.warns, text) }

type mockPreviewSink struct {
	shown []*Preview
}

func (s *mockPreviewSink) ShowPreview(p *Preview) { s.shown = append(s.shown, p) }

type mockSearcher struct {
	calls []models.Options
}

func (s *mockSearcher) Research(opts models.Options) { s.calls = append(s.calls, opts) }

type mockRunner struct {
	calls [][]string
	run   func(command []string) (*executor.Result, error)
}

func (r *mockRunner) Run(ctx context.Context, command []string, dir string, env []string) (*executor.Result, error) {
	r.calls = append(r.calls, command)
	if r.run != nil {
		return r.run(command)
	}
	return &executor.Result{}, nil
}

// failingCopyFS fails backups for the listed absolute paths.
type failingCopyFS struct {
	*fs.OSFileSystem
	fail map[string]bool
}

func (f *failingCopyFS) CopyFile(src, dst string) error {
	if f.fail[src] {
		return os.ErrPermission
	}
	return f.OSFileSystem.CopyFile(src, dst)
}

type harness struct {
	dir      string
	engine   *Engine
	prompter *mockPrompter
	notifier *mockNotifier
	preview  *mockPreviewSink
	searcher *mockSearcher
}

type harnessOption func(*harness, *Deps)

func withRunner(r commandRunner) harnessOption {
	return func(h *harness, d *Deps) { d.Runner = r }
}

func newHarness(t *testing.T, answers []Decision, opts ...harnessOption) *harness {
	t.Helper()
	h := &harness{
		dir:      t.TempDir(),
		prompter: &mockPrompter{answers: answers},
		notifier: &mockNotifier{},
		preview:  &mockPreviewSink{},
		searcher: &mockSearcher{},
	}
	deps := Deps{
		FS:       fs.NewOSFileSystem(),
		Runner:   executor.NewOSCommandExecutor(64 * 1024),
		Prompter: h.prompter,
		Notifier: h.notifier,
		Preview:  h.preview,
		Searcher: h.searcher,
	}
	for _, o := range opts {
		o(h, &deps)
	}
	h.engine = NewEngine(config.DefaultConfig().Replace, h.dir, runtime.GOOS, deps)
	return h
}

func (h *harness) write(t *testing.T, name, body string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(h.dir, name), []byte(body), 0o644))
	return name
}

func (h *harness) read(t *testing.T, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(h.dir, name))
	require.NoError(t, err)
	return string(data)
}

func requireSubstitutionTool(t *testing.T) {
	t.Helper()
	tool := SubstituteCommand(runtime.GOOS, models.Options{}, "")[0]
	if _, err := exec.LookPath(tool); err != nil {
		t.Skipf("%s not available", tool)
	}
	if runtime.GOOS == "linux" {
		// BSD sed on a linux box would reject -i without a suffix.
		if out, err := exec.Command("sed", "--version").CombinedOutput(); err != nil || len(out) == 0 {
			t.Skip("GNU sed not available")
		}
	}
}

func locs(paths ...string) []models.MatchRecord {
	var out []models.MatchRecord
	for _, p := range paths {
		out = append(out, models.MatchRecord{Path: p, Line: 1, Column: 1})
	}
	return out
}

func TestExecuteReplace_Validation(t *testing.T) {
	tests := []struct {
		name string
		opts models.Options
		locs []models.MatchRecord
	}{
		{"EmptyQuery", models.Options{Replace: "bar"}, locs("a.txt")},
		{"EmptyReplacement", models.Options{Query: "foo"}, locs("a.txt")},
		{"NoLocations", models.Options{Query: "foo", Replace: "bar"}, nil},
		{"GroupNineWithWholeWord", models.Options{Query: "(a)", Replace: `x\9`, UseRegex: true, WholeWord: true}, locs("a.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, nil)

			_, err := h.engine.ExecuteReplace(context.Background(), tt.opts, tt.locs)

			var vErr *ValidationError
			require.True(t, errors.As(err, &vErr))
			assert.True(t, vErr.InvalidInput())
			assert.Empty(t, h.prompter.questions, "no confirmation asked")
			assert.Len(t, h.notifier.warns, 1)
		})
	}
}

func TestExecuteReplace_Cancel(t *testing.T) {
	runner := &mockRunner{}
	h := newHarness(t, []Decision{DecisionCancel}, withRunner(runner))
	name := h.write(t, "a.txt", "foo\n")

	report, err := h.engine.ExecuteReplace(context.Background(), models.Options{Query: "foo", Replace: "bar"}, locs(name, name))

	require.NoError(t, err)
	assert.Equal(t, DecisionCancel, report.Decision)
	assert.Equal(t, []string{`Replace "foo" with "bar" in 1 files?`}, h.prompter.questions)
	assert.Empty(t, runner.calls)
	assert.NoFileExists(t, filepath.Join(h.dir, "a.txt.bak"))
	assert.Empty(t, h.searcher.calls)
	assert.Equal(t, "foo\n", h.read(t, name))
}

func TestExecuteReplace_PreviewDoesNotWrite(t *testing.T) {
	runner := &mockRunner{}
	h := newHarness(t, []Decision{DecisionPreview}, withRunner(runner))
	name := h.write(t, "a.txt", "one foo\ntwo\nfoo foo\n")
	before, err := fs.NewOSFileSystem().ChecksumFile(filepath.Join(h.dir, name))
	require.NoError(t, err)

	report, err := h.engine.ExecuteReplace(context.Background(), models.Options{Query: "foo", Replace: "bar"}, locs(name))

	require.NoError(t, err)
	require.NotNil(t, report.Preview)
	assert.Empty(t, runner.calls)
	assert.NoFileExists(t, filepath.Join(h.dir, "a.txt.bak"))
	after, err := fs.NewOSFileSystem().ChecksumFile(filepath.Join(h.dir, name))
	require.NoError(t, err)
	assert.Equal(t, before, after)
	require.Len(t, h.preview.shown, 1)
}

func TestExecuteReplace_ConfirmedWithBackup(t *testing.T) {
	requireSubstitutionTool(t)
	h := newHarness(t, []Decision{DecisionConfirm})
	original := "say foo\nno match\nFoo foo\n"
	name := h.write(t, "a.txt", original)
	opts := models.Options{Query: "foo", Replace: "bar"}

	report, err := h.engine.ExecuteReplace(context.Background(), opts, locs(name))

	require.NoError(t, err)
	assert.Equal(t, original, h.read(t, "a.txt.bak"))
	assert.Equal(t, "say bar\nno match\nbar bar\n", h.read(t, name))
	assert.Equal(t, []string{name}, report.Replaced)
	assert.Equal(t, []string{filepath.Join(h.dir, "a.txt.bak")}, report.Backups)
	assert.Empty(t, report.Failed)
	assert.Equal(t, []models.Options{opts}, h.searcher.calls, "results refreshed")
	assert.Empty(t, h.notifier.warns)
}

func TestExecuteReplace_LiteralSpecialCharacters(t *testing.T) {
	requireSubstitutionTool(t)
	h := newHarness(t, []Decision{DecisionConfirm})
	name := h.write(t, "a.txt", "x = a.b*c[0] + aXbbc\n")

	_, err := h.engine.ExecuteReplace(context.Background(),
		models.Options{Query: "a.b*c[0]", Replace: `p/q&r\s`, CaseSensitive: true}, locs(name))

	require.NoError(t, err)
	assert.Equal(t, "x = p/q&r\\s + aXbbc\n", h.read(t, name))
}

func TestExecuteReplace_RegexGroups(t *testing.T) {
	requireSubstitutionTool(t)
	h := newHarness(t, []Decision{DecisionConfirm})
	name := h.write(t, "a.txt", "key=value\n")

	_, err := h.engine.ExecuteReplace(context.Background(),
		models.Options{Query: `([a-z]+)=([a-z]+)`, Replace: `\2:\1`, UseRegex: true, CaseSensitive: true}, locs(name))

	require.NoError(t, err)
	assert.Equal(t, "value:key\n", h.read(t, name))
}

func TestExecuteReplace_CaseSensitiveLeavesOtherCase(t *testing.T) {
	requireSubstitutionTool(t)
	h := newHarness(t, []Decision{DecisionConfirm})
	name := h.write(t, "a.txt", "Foo foo\n")

	_, err := h.engine.ExecuteReplace(context.Background(),
		models.Options{Query: "foo", Replace: "bar", CaseSensitive: true}, locs(name))

	require.NoError(t, err)
	assert.Equal(t, "Foo bar\n", h.read(t, name))
}

func TestExecuteReplace_BackupFailureDeclined(t *testing.T) {
	runner := &mockRunner{}
	h := newHarness(t, []Decision{DecisionConfirm, DecisionCancel}, withRunner(runner))
	a := h.write(t, "a.txt", "foo\n")
	b := h.write(t, "b.txt", "foo\n")
	h.engine.fs = &failingCopyFS{OSFileSystem: fs.NewOSFileSystem(), fail: map[string]bool{filepath.Join(h.dir, b): true}}

	_, err := h.engine.ExecuteReplace(context.Background(), models.Options{Query: "foo", Replace: "bar"}, locs(a, b))

	var backupErr *BackupError
	require.True(t, errors.As(err, &backupErr))
	require.Len(t, backupErr.Failures, 1)
	assert.Equal(t, b, backupErr.Failures[0].Path)
	assert.Len(t, h.prompter.questions, 2)
	assert.Empty(t, runner.calls, "no file touched")
	assert.Empty(t, h.searcher.calls)
	assert.Len(t, h.notifier.warns, 1)
}

func TestExecuteReplace_BackupFailureOverridden(t *testing.T) {
	runner := &mockRunner{}
	h := newHarness(t, []Decision{DecisionConfirm, DecisionConfirm}, withRunner(runner))
	a := h.write(t, "a.txt", "foo\n")
	h.engine.fs = &failingCopyFS{OSFileSystem: fs.NewOSFileSystem(), fail: map[string]bool{filepath.Join(h.dir, a): true}}

	report, err := h.engine.ExecuteReplace(context.Background(), models.Options{Query: "foo", Replace: "bar"}, locs(a))

	require.NoError(t, err)
	assert.Len(t, runner.calls, 1)
	assert.Empty(t, report.Backups)
}

func TestExecuteReplace_FailureDoesNotStopOtherFiles(t *testing.T) {
	h := newHarness(t, []Decision{DecisionConfirm})
	a := h.write(t, "a.txt", "foo\n")
	b := h.write(t, "b.txt", "foo\n")
	c := h.write(t, "c.txt", "foo\n")
	failPath := filepath.Join(h.dir, b)
	runner := &mockRunner{run: func(command []string) (*executor.Result, error) {
		path := command[len(command)-1]
		if path == failPath {
			return &executor.Result{ExitCode: 4, Stderr: "sed: couldn't open file\n"}, errors.New("exit status 4")
		}
		return &executor.Result{}, os.WriteFile(path, []byte("bar\n"), 0o644)
	}}
	h.engine.runner = runner
	h.engine.goos = "linux"

	report, err := h.engine.ExecuteReplace(context.Background(), models.Options{Query: "foo", Replace: "bar"}, locs(a, b, c))

	require.NoError(t, err)
	assert.Len(t, runner.calls, 3)
	assert.Equal(t, []string{a, c}, report.Replaced)
	require.Len(t, report.Failed, 1)
	assert.Equal(t, b, report.Failed[0].Path)
	assert.Equal(t, "sed: couldn't open file", report.Failed[0].Stderr)
	require.Len(t, h.notifier.warns, 1)
	assert.Contains(t, h.notifier.warns[0], "1 failed")
	assert.Len(t, h.searcher.calls, 1)
}

func TestExecuteReplace_UnchangedReported(t *testing.T) {
	runner := &mockRunner{}
	h := newHarness(t, []Decision{DecisionConfirm}, withRunner(runner))
	a := h.write(t, "a.txt", "foo\n")

	report, err := h.engine.ExecuteReplace(context.Background(), models.Options{Query: "foo", Replace: "bar"}, locs(a))

	require.NoError(t, err)
	assert.Equal(t, []string{a}, report.Unchanged)
	assert.Empty(t, report.Replaced)
	assert.Contains(t, h.notifier.infos[0], "1 unchanged")
}

func TestExecuteReplace_BackupDisabled(t *testing.T) {
	runner := &mockRunner{}
	h := newHarness(t, []Decision{DecisionConfirm}, withRunner(runner))
	h.engine.cfg.BackupEnabled = false
	a := h.write(t, "a.txt", "foo\n")

	report, err := h.engine.ExecuteReplace(context.Background(), models.Options{Query: "foo", Replace: "bar"}, locs(a))

	require.NoError(t, err)
	assert.Empty(t, report.Backups)
	assert.NoFileExists(t, filepath.Join(h.dir, "a.txt.bak"))
}
