// Package replace performs confirmed, backed-up bulk replacement across the
// files of the current search results, and its read-only preview.
package replace

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/Cyclone1070/greplace/internal/config"
	"github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/Cyclone1070/greplace/internal/service/executor"
)

// Decision is the answer to a confirmation prompt.
type Decision int

const (
	DecisionCancel Decision = iota
	DecisionConfirm
	DecisionPreview
)

func (d Decision) String() string {
	switch d {
	case DecisionConfirm:
		return "confirm"
	case DecisionPreview:
		return "preview"
	default:
		return "cancel"
	}
}

type fileSystem interface {
	ReadFile(path string) ([]byte, error)
	CopyFile(src, dst string) error
	ChecksumFile(path string) (uint64, error)
}

type commandRunner interface {
	Run(ctx context.Context, command []string, dir string, env []string) (*executor.Result, error)
}

type prompter interface {
	// Confirm asks a yes/no question; allowPreview offers the preview answer.
	Confirm(ctx context.Context, question string, allowPreview bool) (Decision, error)
}

type notifier interface {
	Info(text string)
	Warn(text string)
}

type previewSink interface {
	ShowPreview(p *Preview)
}

type searcher interface {
	Research(opts models.Options)
}

// Deps are the collaborators of an Engine. All are required.
type Deps struct {
	FS       fileSystem
	Runner   commandRunner
	Prompter prompter
	Notifier notifier
	Preview  previewSink
	Searcher searcher
}

// Plan is the set of files a replace will touch.
type Plan struct {
	Query       string
	Replacement string
	Files       []string
}

// Report summarises an executed replace.
type Report struct {
	Plan      Plan
	Decision  Decision
	Backups   []string
	Replaced  []string
	Unchanged []string
	Failed    []*SubstitutionError
	Preview   *Preview
}

// Engine runs replacements. Files are processed one at a time.
type Engine struct {
	cfg  config.ReplaceConfig
	dir  string
	goos string

	fs       fileSystem
	runner   commandRunner
	prompter prompter
	notify   notifier
	preview  previewSink
	searcher searcher
}

// NewEngine creates an engine for files relative to dir, substituting with
// the command for goos.
func NewEngine(cfg config.ReplaceConfig, dir, goos string, deps Deps) *Engine {
	if deps.FS == nil {
		panic("fs is required")
	}
	if deps.Runner == nil {
		panic("runner is required")
	}
	if deps.Prompter == nil {
		panic("prompter is required")
	}
	if deps.Notifier == nil {
		panic("notifier is required")
	}
	if deps.Preview == nil {
		panic("preview is required")
	}
	if deps.Searcher == nil {
		panic("searcher is required")
	}
	return &Engine{
		cfg:      cfg,
		dir:      dir,
		goos:     goos,
		fs:       deps.FS,
		runner:   deps.Runner,
		prompter: deps.Prompter,
		notify:   deps.Notifier,
		preview:  deps.Preview,
		searcher: deps.Searcher,
	}
}

// NewPlan derives the distinct target files from match locations.
func NewPlan(opts models.Options, locations []models.MatchRecord) Plan {
	return Plan{Query: opts.Query, Replacement: opts.Replace, Files: models.DistinctPaths(locations)}
}

// ExecuteReplace replaces opts.Query with opts.Replace in every file of
// locations after confirmation. Backups, when enabled, are all written
// before the first file is modified. A failing file does not stop the rest.
// Afterwards the search is run again to refresh the results.
func (e *Engine) ExecuteReplace(ctx context.Context, opts models.Options, locations []models.MatchRecord) (*Report, error) {
	if err := validate(opts, locations); err != nil {
		e.notify.Warn(err.Error())
		return nil, err
	}
	plan := NewPlan(opts, locations)
	report := &Report{Plan: plan}

	question := fmt.Sprintf("Replace %q with %q in %d files?", plan.Query, plan.Replacement, len(plan.Files))
	decision, err := e.prompter.Confirm(ctx, question, true)
	if err != nil {
		return nil, err
	}
	report.Decision = decision

	switch decision {
	case DecisionPreview:
		p, err := e.PreviewReplace(ctx, opts, plan.Files)
		if err != nil {
			e.notify.Warn(err.Error())
			return report, err
		}
		report.Preview = p
		return report, nil
	case DecisionConfirm:
	default:
		e.notify.Info("Replace cancelled")
		return report, nil
	}

	if e.cfg.BackupEnabled {
		backups, err := e.backup(plan.Files)
		report.Backups = backups
		if err != nil {
			slog.Warn("backups failed", "error", err)
			proceed, perr := e.prompter.Confirm(ctx, fmt.Sprintf("%v. Replace without them?", err), false)
			if perr != nil {
				return report, perr
			}
			if proceed != DecisionConfirm {
				e.notify.Warn("Replace aborted: " + err.Error())
				return report, err
			}
		}
	}

	for _, path := range plan.Files {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		changed, err := e.substitute(ctx, opts, path)
		switch {
		case err != nil:
			report.Failed = append(report.Failed, err)
			slog.Warn("substitution failed", "path", path, "error", err)
		case changed:
			report.Replaced = append(report.Replaced, path)
		default:
			report.Unchanged = append(report.Unchanged, path)
		}
	}

	e.announce(report)
	e.searcher.Research(opts)
	return report, nil
}

func validate(opts models.Options, locations []models.MatchRecord) error {
	switch {
	case opts.Query == "":
		return &ValidationError{Reason: "search query is empty"}
	case opts.Replace == "":
		return &ValidationError{Reason: "replacement text is empty"}
	case len(locations) == 0:
		return &ValidationError{Reason: "no results to replace"}
	case opts.UseRegex && opts.WholeWord && referencesGroupNine(opts.Replace):
		return &ValidationError{Reason: `\9 is unavailable with whole word matching`}
	}
	return nil
}

// backup copies every file to <path>.<suffix>. It returns the backups
// written and a *BackupError for the rest.
func (e *Engine) backup(files []string) ([]string, error) {
	var written []string
	var failures []*FileError
	for _, path := range files {
		dst := e.abs(path) + "." + e.cfg.BackupSuffix
		if err := e.fs.CopyFile(e.abs(path), dst); err != nil {
			failures = append(failures, &FileError{Path: path, Cause: err})
			continue
		}
		written = append(written, dst)
	}
	if len(failures) > 0 {
		return written, &BackupError{Failures: failures}
	}
	return written, nil
}

// substitute runs the platform command on one file and reports whether the
// content changed.
func (e *Engine) substitute(ctx context.Context, opts models.Options, path string) (bool, *SubstitutionError) {
	abs := e.abs(path)
	before, err := e.fs.ChecksumFile(abs)
	if err != nil {
		return false, &SubstitutionError{Path: path, Cause: err}
	}

	cmd := SubstituteCommand(e.goos, opts, abs)
	res, err := e.runner.Run(ctx, cmd, e.dir, nil)
	if err != nil {
		subErr := &SubstitutionError{Path: path, Cause: err}
		if res != nil {
			subErr.Stderr = strings.TrimSpace(res.Stderr)
		}
		return false, subErr
	}

	after, err := e.fs.ChecksumFile(abs)
	if err != nil {
		return false, &SubstitutionError{Path: path, Cause: err}
	}
	return before != after, nil
}

func (e *Engine) announce(r *Report) {
	msg := fmt.Sprintf("Replaced in %d files", len(r.Replaced))
	if n := len(r.Unchanged); n > 0 {
		msg += fmt.Sprintf(", %d unchanged", n)
	}
	if n := len(r.Backups); n > 0 {
		msg += fmt.Sprintf(", %d backups (*.%s)", n, e.cfg.BackupSuffix)
	}
	if n := len(r.Failed); n > 0 {
		msg += fmt.Sprintf(", %d failed: %v", n, r.Failed[0])
		e.notify.Warn(msg)
	} else {
		e.notify.Info(msg)
	}
	slog.Info("replace finished", "query", r.Plan.Query, "files", len(r.Plan.Files), "replaced", len(r.Replaced), "unchanged", len(r.Unchanged), "failed", len(r.Failed))
}

func (e *Engine) abs(path string) string {
	if filepath.IsAbs(path) || e.dir == "" {
		return path
	}
	return filepath.Join(e.dir, path)
}
