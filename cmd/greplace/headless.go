package main

import (
	"context"
	"fmt"
	"io"
	"path/filepath"

	"github.com/Cyclone1070/greplace/internal/replace"
	"github.com/Cyclone1070/greplace/internal/search/models"
)

// runSearch searches once and prints the matches grouped by file.
func runSearch(ctx context.Context, deps Dependencies, opts models.Options, out io.Writer) error {
	rt := startHost(deps)
	defer rt.close()

	summary, started, err := rt.search(ctx, opts)
	if err != nil {
		return err
	}
	if !started {
		return nil
	}

	var locs []models.MatchRecord
	rt.call(func() { locs = rt.app.Results().AllLocations() })
	printMatches(out, locs)

	if summary.Matches == 0 && !summary.Cancelled {
		fmt.Fprintln(out, "No matches")
	}
	return nil
}

// runReplace searches for opts.Query and replaces it in every matching file.
func runReplace(ctx context.Context, deps Dependencies, opts models.Options, out io.Writer) error {
	rt := startHost(deps)
	defer rt.close()

	summary, started, err := rt.search(ctx, opts)
	if err != nil {
		return err
	}
	if !started || summary.Matches == 0 {
		fmt.Fprintln(out, "No matches")
		return nil
	}
	if summary.Cancelled {
		return context.Canceled
	}

	var report *replace.Report
	var searching bool
	rt.call(func() {
		report, err = rt.app.ExecuteReplace(ctx, opts)
		searching = rt.app.Searching()
	})
	if searching {
		// Results are refreshed after a replace; let that search settle.
		_, _, _ = rt.wait()
	}
	if err != nil {
		return err
	}
	if report != nil && len(report.Failed) > 0 {
		return fmt.Errorf("replace failed in %d of %d files", len(report.Failed), len(report.Plan.Files))
	}
	return nil
}

// printMatches prints records ripgrep-style: a path header per file, match
// lines as "N:text", context lines as "N-text" and "--" between
// non-adjacent windows.
func printMatches(w io.Writer, locs []models.MatchRecord) {
	path := ""
	last := 0
	for _, loc := range locs {
		if loc.Path != path {
			if path != "" {
				fmt.Fprintln(w)
			}
			fmt.Fprintln(w, filepath.ToSlash(loc.Path))
			path = loc.Path
			last = 0
		}

		lines := loc.Context
		if len(lines) == 0 {
			lines = []models.ContextLine{{Line: loc.Line, Content: loc.Text, IsMatch: true}}
		}
		for _, c := range lines {
			if c.Line <= last {
				continue
			}
			if last > 0 && c.Line > last+1 {
				fmt.Fprintln(w, "--")
			}
			sep := "-"
			if c.IsMatch {
				sep = ":"
			}
			fmt.Fprintf(w, "%d%s%s\n", c.Line, sep, c.Content)
			last = c.Line
		}
	}
}
