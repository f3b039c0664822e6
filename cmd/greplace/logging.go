package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Cyclone1070/greplace/internal/config"
)

const logFile = "greplace.log"

// setupLogging installs the default slog logger. The TUI owns the terminal,
// so interactive runs log to a file; headless runs log to stderr only with
// --verbose. The returned func closes the log file.
func setupLogging(interactive, verbose bool, stderr io.Writer) (func(), error) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	if !interactive {
		w := io.Discard
		if verbose {
			w = stderr
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(w, opts)))
		return func() {}, nil
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, opts)))
	dir, err := config.Dir()
	if err != nil {
		return func() {}, fmt.Errorf("locate config dir: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return func() {}, fmt.Errorf("create config dir: %w", err)
	}
	f, err := os.OpenFile(filepath.Join(dir, logFile), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return func() {}, fmt.Errorf("open log file: %w", err)
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(f, opts)))
	return func() { _ = f.Close() }, nil
}
