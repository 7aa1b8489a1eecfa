package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/exmap-dev/exmap/internal/analyzer"
	"github.com/exmap-dev/exmap/internal/config"
	"github.com/exmap-dev/exmap/internal/fileutil"
	"github.com/exmap-dev/exmap/internal/render"
)

func RunDot(cmd *cobra.Command, args []string) error {
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

	flavor, err := cmd.Flags().GetString("graph")
	if err != nil {
		return fmt.Errorf("failed to read --graph flag: %w", err)
	}
	prune, err := cmd.Flags().GetStringSlice("prune")
	if err != nil {
		return fmt.Errorf("failed to read --prune flag: %w", err)
	}
	prune = append(append([]string{}, cfg.Dot.Prune...), prune...)
	outPath, err := cmd.Flags().GetString("out")
	if err != nil {
		return fmt.Errorf("failed to read --out flag: %w", err)
	}

	result, issues, err := analyzer.Analyze(rootPath, opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	reportIssues(issues)

	dotOpts := render.DotOptions{Flavor: render.Flavor(flavor), Prune: prune}
	if outPath != "" {
		var buf bytes.Buffer
		if err := render.WriteDOT(&buf, result, dotOpts); err != nil {
			return err
		}
		return fileutil.WriteIfChanged(outPath, buf.Bytes())
	}
	return render.WriteDOT(os.Stdout, result, dotOpts)
}
