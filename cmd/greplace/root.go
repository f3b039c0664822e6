package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/Cyclone1070/greplace/internal/audit"
	"github.com/Cyclone1070/greplace/internal/config"
	"github.com/Cyclone1070/greplace/internal/search/models"
	"github.com/spf13/cobra"
)

// flags shared by every command.
type flags struct {
	dir           string
	include       string
	exclude       string
	caseSensitive bool
	regex         bool
	wholeWord     bool
	verbose       bool
	interactive   bool

	// replace only
	yes      bool
	preview  bool
	noBackup bool
}

func (f *flags) options(query, replacement string) models.Options {
	return models.Options{
		Query:         query,
		Replace:       replacement,
		Include:       f.include,
		Exclude:       f.exclude,
		CaseSensitive: f.caseSensitive,
		UseRegex:      f.regex,
		WholeWord:     f.wholeWord,
	}
}

// dependencyFactory builds the runtime collaborators for one invocation.
type dependencyFactory func(cfg *config.Config, f *flags, out, errOut io.Writer) (Dependencies, error)

func newRootCmd(factory dependencyFactory) *cobra.Command {
	f := &flags{}

	root := &cobra.Command{
		Use:   "greplace [query]",
		Short: "Interactive search and replace across a project",
		Long: `Search a project with ripgrep (or grep when ripgrep is missing), browse
the matches and replace across every matching file.

Without a subcommand greplace opens the interactive UI, searching for
query right away when one is given.`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(c *cobra.Command, args []string) error {
			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			return run(c, f, factory, func(ctx context.Context, _ *config.Config, deps Dependencies) error {
				return runInteractive(ctx, deps, f.options(query, ""))
			})
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&f.dir, "dir", "C", ".", "Directory to search")
	pf.StringVarP(&f.include, "include", "g", "", "Comma-separated globs of files to search")
	pf.StringVarP(&f.exclude, "exclude", "x", "", "Comma-separated globs of files to skip")
	pf.BoolVarP(&f.caseSensitive, "case-sensitive", "s", false, "Match case")
	pf.BoolVarP(&f.regex, "regex", "e", false, "Treat the query as a regular expression")
	pf.BoolVarP(&f.wholeWord, "word", "w", false, "Match whole words only")
	pf.BoolVarP(&f.verbose, "verbose", "v", false, "Log to stderr (headless commands)")

	root.AddCommand(newSearchCmd(f, factory), newReplaceCmd(f, factory))
	return root
}

func newSearchCmd(f *flags, factory dependencyFactory) *cobra.Command {
	return &cobra.Command{
		Use:   "search <query>",
		Short: "Print matches grouped by file",
		Long: `Print matches grouped by file, with context lines when ripgrep is used.

Examples:
  greplace search TODO
  greplace search -e 'func \w+Handler' -g '*.go'`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			return run(c, f, factory, func(ctx context.Context, _ *config.Config, deps Dependencies) error {
				return runSearch(ctx, deps, f.options(args[0], ""), c.OutOrStdout())
			})
		},
	}
}

func newReplaceCmd(f *flags, factory dependencyFactory) *cobra.Command {
	c := &cobra.Command{
		Use:   "replace <query> <replacement>",
		Short: "Replace a query across every matching file",
		Long: `Search for query, then replace it with replacement in every file with a
match. Asks for confirmation on a terminal; pass --yes otherwise.

Examples:
  greplace replace oldName newName -w
  greplace replace --preview 'v(\d+)' 'version$1' -e
  greplace replace foo bar --yes --no-backup`,
		Args: cobra.ExactArgs(2),
		RunE: func(c *cobra.Command, args []string) error {
			return run(c, f, factory, func(ctx context.Context, _ *config.Config, deps Dependencies) error {
				return runReplace(ctx, deps, f.options(args[0], args[1]), c.OutOrStdout())
			})
		},
	}
	c.Flags().BoolVarP(&f.yes, "yes", "y", false, "Replace without asking")
	c.Flags().BoolVarP(&f.preview, "preview", "p", false, "Show the changes without writing")
	c.Flags().BoolVar(&f.noBackup, "no-backup", false, "Do not keep backup copies")
	return c
}

// run loads configuration, installs logging and audit, and calls body.
func run(c *cobra.Command, f *flags, factory dependencyFactory, body func(context.Context, *config.Config, Dependencies) error) error {
	f.interactive = c.Parent() == nil

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(c.ErrOrStderr(), "Warning: failed to load config: %v\n", err)
		fmt.Fprintf(c.ErrOrStderr(), "Using default configuration.\n")
		cfg = config.DefaultConfig()
	}
	if f.noBackup {
		cfg.Replace.BackupEnabled = false
	}

	closeLog, err := setupLogging(f.interactive, f.verbose, c.ErrOrStderr())
	if err != nil {
		fmt.Fprintf(c.ErrOrStderr(), "Warning: logging unavailable: %v\n", err)
	}
	defer closeLog()

	if err := audit.Open(); err != nil {
		fmt.Fprintf(c.ErrOrStderr(), "Warning: audit log unavailable: %v\n", err)
	}
	defer audit.Close()

	dir, err := filepath.Abs(f.dir)
	if err != nil {
		return fmt.Errorf("resolve directory: %w", err)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		return fmt.Errorf("not a directory: %s", f.dir)
	}
	f.dir = dir

	deps, err := factory(cfg, f, c.OutOrStdout(), c.ErrOrStderr())
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(c.Context(), os.Interrupt)
	defer stop()
	return body(ctx, cfg, deps)
}
