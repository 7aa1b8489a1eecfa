package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/exmap-dev/exmap/internal/analyzer"
	"github.com/exmap-dev/exmap/internal/config"
	"github.com/exmap-dev/exmap/internal/extract"
	"github.com/exmap-dev/exmap/internal/fileutil"
	"github.com/exmap-dev/exmap/internal/query"
)

func RunCallers(cmd *cobra.Command, args []string) error {
	return runCallQuery(cmd, args, "callers", func(ix *query.Index, target extract.MFA) []extract.MFA {
		return ix.Callers(target)
	})
}

func RunCallees(cmd *cobra.Command, args []string) error {
	return runCallQuery(cmd, args, "callees", func(ix *query.Index, target extract.MFA) []extract.MFA {
		return ix.Callees(target)
	})
}

type callQueryResult struct {
	Target  string   `json:"target"`
	Kind    string   `json:"kind"`
	Matches []string `json:"matches"`
}

func runCallQuery(cmd *cobra.Command, args []string, kind string, lookup func(*query.Index, extract.MFA) []extract.MFA) error {
	rootPath, err := resolveRoot(args, 1)
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
	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to read --json flag: %w", err)
	}

	result, issues, err := analyzer.Analyze(rootPath, opts)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}
	reportIssues(issues)

	ix := query.NewIndex(result)
	targets := ix.Resolve(args[0])
	if len(targets) == 0 {
		return fmt.Errorf("no function matches %q", args[0])
	}

	seen := make(map[string]bool)
	var matches []string
	for _, target := range targets {
		for _, mfa := range lookup(ix, target) {
			if s := mfa.String(); !seen[s] {
				seen[s] = true
				matches = append(matches, s)
			}
		}
	}

	if asJSON {
		return fileutil.PrintJSON(callQueryResult{Target: args[0], Kind: kind, Matches: matches})
	}
	for _, m := range matches {
		fmt.Println(m)
	}
	return nil
}
