package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/Cyclone1070/greplace/internal/replace"
	"github.com/Cyclone1070/greplace/internal/ui/services"
	"github.com/Cyclone1070/greplace/internal/workflow"
	"golang.org/x/term"
)

// printer is the headless event sink. Warnings go to errOut, previews to
// out. Progress notices during a search are only logged.
type printer struct {
	out       io.Writer
	errOut    io.Writer
	searching bool
}

func newPrinter(out, errOut io.Writer) *printer {
	return &printer{out: out, errOut: errOut}
}

// Emit runs on the control goroutine only.
func (p *printer) Emit(e workflow.Event) {
	switch e := e.(type) {
	case workflow.SearchStartedEvent:
		p.searching = true
	case workflow.SearchFinishedEvent:
		p.searching = false
	case workflow.MessageEvent:
		if e.Level == workflow.LevelWarn {
			fmt.Fprintf(p.errOut, "warning: %s\n", e.Text)
			return
		}
		if p.searching {
			slog.Debug("search progress", "message", e.Text)
			return
		}
		fmt.Fprintln(p.errOut, e.Text)
	case workflow.PreviewEvent:
		printPreview(p.out, e.Preview)
	}
}

func printPreview(w io.Writer, preview *replace.Preview) {
	if len(preview.Files) == 0 {
		fmt.Fprintln(w, "No changes.")
	}
	for _, f := range preview.Files {
		fmt.Fprintf(w, "%s\n%s\n", filepath.ToSlash(f.Path), services.FormatChanges(f.Lines, services.PlainMarker))
	}
	for _, path := range preview.Skipped {
		fmt.Fprintf(w, "skipped %s\n", filepath.ToSlash(path))
	}
}

// termPrompter asks questions on the terminal. Without a terminal it never
// blocks: confirmations are declined unless --yes was given.
type termPrompter struct {
	reader     *bufio.Reader
	fd         int
	out        io.Writer
	yes        bool
	preview    bool
	isTerminal func(fd int) bool
}

func newTermPrompter(in *os.File, out io.Writer, yes, preview bool) *termPrompter {
	return &termPrompter{
		reader:     bufio.NewReader(in),
		fd:         int(in.Fd()),
		out:        out,
		yes:        yes,
		preview:    preview,
		isTerminal: term.IsTerminal,
	}
}

func (p *termPrompter) Confirm(ctx context.Context, question string, allowPreview bool) (replace.Decision, error) {
	if p.preview && allowPreview {
		return replace.DecisionPreview, nil
	}
	if p.yes {
		return replace.DecisionConfirm, nil
	}
	if !p.isTerminal(p.fd) {
		fmt.Fprintln(p.out, "stdin is not a terminal: pass --yes to replace or --preview to review the changes")
		return replace.DecisionCancel, nil
	}

	hint := "[y/N]"
	if allowPreview {
		hint = "[y/N/p]"
	}
	fmt.Fprintf(p.out, "%s %s ", question, hint)
	answer, err := p.readLine(ctx)
	if err != nil {
		return replace.DecisionCancel, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return replace.DecisionConfirm, nil
	case "p", "preview":
		if allowPreview {
			return replace.DecisionPreview, nil
		}
	}
	return replace.DecisionCancel, nil
}

func (p *termPrompter) Input(ctx context.Context, prompt, initial string) (string, error) {
	if !p.isTerminal(p.fd) {
		return initial, nil
	}
	fmt.Fprint(p.out, prompt)
	answer, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if answer == "" {
		return initial, nil
	}
	return answer, nil
}

func (p *termPrompter) Choose(ctx context.Context, title string, items []string) (int, error) {
	if !p.isTerminal(p.fd) || len(items) == 0 {
		return -1, nil
	}
	fmt.Fprintln(p.out, title)
	for i, item := range items {
		fmt.Fprintf(p.out, "%3d  %s\n", i+1, item)
	}
	fmt.Fprint(p.out, "> ")
	answer, err := p.readLine(ctx)
	if err != nil {
		return -1, err
	}
	n, err := strconv.Atoi(answer)
	if err != nil || n < 1 || n > len(items) {
		return -1, nil
	}
	return n - 1, nil
}

// readLine reads one trimmed line. End of input counts as an empty answer.
func (p *termPrompter) readLine(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	line, err := p.reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.TrimSpace(line), nil
}
