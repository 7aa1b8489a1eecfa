package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/exmap-dev/exmap/internal/analyzer"
	"github.com/exmap-dev/exmap/internal/config"
	"github.com/exmap-dev/exmap/internal/fileutil"
	"github.com/exmap-dev/exmap/internal/render"
	"github.com/exmap-dev/exmap/internal/scanner"
)

// RunSummary is the machine-readable result of one analyze run.
type RunSummary struct {
	RootPath        string           `json:"root_path"`
	Modules         int              `json:"modules"`
	ModuleEdges     int              `json:"module_edges"`
	CallNodes       int              `json:"call_nodes"`
	CallEdges       int              `json:"call_edges"`
	ModuleCallEdges int              `json:"module_call_edges"`
	Issues          []analyzer.Issue `json:"issues,omitempty"`
	DurationMS      int64            `json:"duration_ms"`
}

func RunAnalyze(cmd *cobra.Command, args []string) error {
	rootPath, err := resolveRoot(args, 0)
	if err != nil {
		return err
	}
	cfg, err := config.Load(rootPath)
	if err != nil {
		return err
	}
	opts, err := analyzerOptions(cmd, cfg)
	if err != nil {
		return err
	}
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to read --out flag: %w", err)
	}
	asSummary, err := cmd.Flags().GetBool("summary")
	if err != nil {
		return fmt.Errorf("failed to read --summary flag: %w", err)
	}

	start := time.Now()

	// Pre-count for the progress bar; the walk is cheap next to parsing.
	files, err := scanner.Scan(rootPath, scanner.Options{
		IncludeTests: opts.IncludeTests,
		Exclude:      opts.Exclude,
	})
	if err != nil {
		return err
	}
	opts = withProgress(opts, len(files))

	result, issues, err := analyzer.Analyze(rootPath, opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	reportIssues(issues)

	if asSummary {
		return fileutil.PrintJSON(RunSummary{
			RootPath:        rootPath,
			Modules:         len(result.Modules),
			ModuleEdges:     len(result.ModuleEdges),
			CallNodes:       len(result.CallNodes),
			CallEdges:       len(result.CallEdges),
			ModuleCallEdges: len(result.ModuleCallEdges),
			Issues:          issues,
			DurationMS:      time.Since(start).Milliseconds(),
		})
	}

	if outPath != "" {
		data, err := render.MarshalJSON(result)
		if err != nil {
			return err
		}
		return fileutil.WriteIfChanged(outPath, data)
	}
	return render.EncodeJSON(os.Stdout, result)
}
