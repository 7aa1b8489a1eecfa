package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/exmap-dev/exmap/internal/analyzer"
	"github.com/exmap-dev/exmap/internal/config"
)

// resolveRoot turns the optional positional path argument into an absolute
// directory path.
func resolveRoot(args []string, positional int) (string, error) {
	path := "."
	if len(args) > positional {
		path = args[positional]
	}

	rootPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path %q: %w", path, err)
	}
	info, err := os.Stat(rootPath)
	if err != nil {
		return "", fmt.Errorf("failed to access path %q: %w", path, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path %q is not a directory", path)
	}
	return rootPath, nil
}

// analyzerOptions merges config-file defaults with command flags. An
// explicitly set flag wins over the config file.
func analyzerOptions(cmd *cobra.Command, cfg *config.Config) (analyzer.Options, error) {
	opts := analyzer.Options{
		IncludeTests: cfg.Analysis.IncludeTests,
		Exclude:      cfg.Scan.Exclude,
		Workers:      cfg.Analysis.Workers,
	}
	if cfg.Analysis.InternalOnly != nil {
		opts.InternalOnly = *cfg.Analysis.InternalOnly
	}

	flags := cmd.Flags()
	if flags.Lookup("include-tests") != nil && flags.Changed("include-tests") {
		v, err := flags.GetBool("include-tests")
		if err != nil {
			return opts, err
		}
		opts.IncludeTests = v
	}
	if flags.Lookup("internal-only") != nil {
		v, err := flags.GetBool("internal-only")
		if err != nil {
			return opts, err
		}
		// Precedence: an explicit flag wins, then a configured value,
		// then the command's own flag default (the dot command defaults
		// internal-only on, analyze off).
		if flags.Changed("internal-only") || cfg.Analysis.InternalOnly == nil {
			opts.InternalOnly = v
		}
	}
	if flags.Lookup("exclude") != nil {
		extra, err := flags.GetStringSlice("exclude")
		if err != nil {
			return opts, err
		}
		opts.Exclude = append(opts.Exclude, extra...)
	}
	return opts, nil
}

// withProgress attaches a stderr progress bar to the run when stderr is a
// terminal. The bar is purely cosmetic; output streams stay clean.
func withProgress(opts analyzer.Options, total int) analyzer.Options {
	if total == 0 || !isatty.IsTerminal(os.Stderr.Fd()) {
		return opts
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("extracting"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
	opts.OnFile = func(string) { _ = bar.Add(1) }
	return opts
}

// reportIssues prints non-fatal per-file problems to stderr: the run
// continues, the user still sees what was skipped.
func reportIssues(issues []analyzer.Issue) {
	for _, issue := range issues {
		fmt.Fprintf(os.Stderr, "warning: %s: %s\n", issue.File, issue.Message)
	}
}
