// Package cli defines the exmap command surface.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRootCommand builds the exmap command tree.
func NewRootCommand(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "exmap",
		Short: "Map module dependencies and call graphs of an Elixir codebase",
		Long: `Exmap statically analyzes an Elixir codebase: it extracts module
definitions, function signatures, call sites, and alias/import/use/require
directives, and derives dependency and call graphs for visualization.

Output is JSON (exmap analyze) or Graphviz DOT (exmap dot).`,
		SilenceUsage: true,
	}

	analyzeCmd := &cobra.Command{
		Use:   "analyze [path]",
		Short: "Analyze a codebase and print graph artifacts as JSON",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunAnalyze,
	}
	analyzeCmd.Flags().Bool("include-tests", false, "Include test/ trees and *_test.exs files")
	analyzeCmd.Flags().Bool("internal-only", false, "Restrict graphs to modules defined in the scanned set")
	analyzeCmd.Flags().StringSlice("exclude", nil, "Extra glob patterns to exclude from the scan")
	analyzeCmd.Flags().StringP("out", "o", "", "Write JSON to a file instead of stdout")
	analyzeCmd.Flags().Bool("summary", false, "Print a machine-readable run summary to stdout instead of artifacts")

	dotCmd := &cobra.Command{
		Use:   "dot [path]",
		Short: "Render one graph in Graphviz DOT syntax",
		Args:  cobra.MaximumNArgs(1),
		RunE:  RunDot,
	}
	dotCmd.Flags().String("graph", "modules", "Graph to render: modules|calls|modulecalls")
	dotCmd.Flags().StringSlice("prune", nil, "Qualified module names to exclude from the rendering")
	dotCmd.Flags().Bool("include-tests", false, "Include test/ trees and *_test.exs files")
	dotCmd.Flags().Bool("internal-only", true, "Restrict graphs to modules defined in the scanned set")
	dotCmd.Flags().StringSlice("exclude", nil, "Extra glob patterns to exclude from the scan")
	dotCmd.Flags().StringP("out", "o", "", "Write DOT to a file instead of stdout")

	callersCmd := &cobra.Command{
		Use:   "callers <Mod.fun/arity> [path]",
		Short: "Show functions that call a target",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  RunCallers,
	}
	callersCmd.Flags().Bool("json", false, "Print machine-readable results")
	callersCmd.Flags().Bool("include-tests", false, "Include test/ trees and *_test.exs files")

	calleesCmd := &cobra.Command{
		Use:   "callees <Mod.fun/arity> [path]",
		Short: "Show functions a target calls",
		Args:  cobra.RangeArgs(1, 2),
		RunE:  RunCallees,
	}
	calleesCmd.Flags().Bool("json", false, "Print machine-readable results")
	calleesCmd.Flags().Bool("include-tests", false, "Include test/ trees and *_test.exs files")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("exmap %s\n", version)
		},
	}

	rootCmd.AddCommand(
		analyzeCmd,
		dotCmd,
		callersCmd,
		calleesCmd,
		versionCmd,
	)

	return rootCmd
}
