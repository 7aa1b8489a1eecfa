// Package analyzer wires the scanner, parser, extractor, and graph builder
// into the single analysis entry point.
package analyzer

import (
	"os"
	"path/filepath"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/exmap-dev/exmap/internal/extract"
	"github.com/exmap-dev/exmap/internal/graph"
	"github.com/exmap-dev/exmap/internal/scanner"
	"github.com/exmap-dev/exmap/internal/syntax"
)

// Options configures one analysis run.
type Options struct {
	IncludeTests bool
	InternalOnly bool
	Exclude      []string
	// Workers caps parallel per-file extraction; 0 means NumCPU.
	Workers int
	// OnFile, when set, is called once per file after it has been
	// processed. Used for progress reporting.
	OnFile func(path string)
}

// Issue is a non-fatal per-file problem. No issue ever aborts a run; the
// file simply contributes zero records.
type Issue struct {
	File     string `json:"file"`
	Severity string `json:"severity"` // warning | error
	Message  string `json:"message"`
}

// Analyze scans root, extracts a module record per defmodule, and folds the
// records into the graph artifacts. Per-file extraction fans out across
// workers; results are reassembled in scan order so output stays
// deterministic.
func Analyze(root string, opts Options) (*graph.Result, []Issue, error) {
	files, err := scanner.Scan(root, scanner.Options{
		IncludeTests: opts.IncludeTests,
		Exclude:      opts.Exclude,
	})
	if err != nil {
		return nil, nil, err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	perFile := make([][]extract.Module, len(files))
	perFileIssue := make([]*Issue, len(files))

	var g errgroup.Group
	g.SetLimit(workers)
	for i, file := range files {
		i, file := i, file
		g.Go(func() error {
			perFile[i], perFileIssue[i] = processFile(root, file)
			if opts.OnFile != nil {
				opts.OnFile(file)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}

	var records []extract.Module
	var issues []Issue
	for i := range files {
		records = append(records, perFile[i]...)
		if perFileIssue[i] != nil {
			issues = append(issues, *perFileIssue[i])
		}
	}
	sort.Slice(issues, func(i, j int) bool {
		if issues[i].File != issues[j].File {
			return issues[i].File < issues[j].File
		}
		return issues[i].Message < issues[j].Message
	})

	return graph.Build(records, graph.Options{InternalOnly: opts.InternalOnly}), issues, nil
}

// processFile reads, parses, and extracts one file. Tree-sitter parsers are
// not goroutine-safe, so each call gets its own.
func processFile(root, file string) ([]extract.Module, *Issue) {
	content, err := os.ReadFile(filepath.Join(root, file))
	if err != nil {
		return nil, &Issue{File: file, Severity: "warning", Message: "unreadable: " + err.Error()}
	}

	tree, err := syntax.NewParser().Parse(content)
	if err != nil {
		return nil, &Issue{File: file, Severity: "error", Message: "parse failed: " + err.Error()}
	}

	return extract.ExtractModules(tree, file), nil
}
