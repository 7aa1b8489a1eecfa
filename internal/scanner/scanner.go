// Package scanner discovers Elixir source files under a root directory.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	ignore "github.com/sabhiram/go-gitignore"
)

// Options controls file discovery.
type Options struct {
	// IncludeTests keeps test/ trees and *_test.exs files in the scan.
	IncludeTests bool
	// Exclude holds doublestar glob patterns matched against paths
	// relative to the root.
	Exclude []string
}

var sourceExtensions = map[string]bool{
	".ex":  true,
	".exs": true,
}

var skipDirs = map[string]bool{
	".git":         true,
	".hg":          true,
	".svn":         true,
	"_build":       true,
	"deps":         true,
	".elixir_ls":   true,
	"node_modules": true,
	"cover":        true,
	".exmap":       true,
}

// Scan returns the relative paths of all Elixir sources under root, sorted.
// A root with no matches yields an empty slice, not an error; unreadable
// subtrees are skipped and the walk continues.
func Scan(root string, opts Options) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, &os.PathError{Op: "scan", Path: root, Err: os.ErrInvalid}
	}

	gi := loadGitignore(root)
	files := make([]string, 0)

	err = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			if d != nil && d.IsDir() && path != root {
				return filepath.SkipDir
			}
			return nil
		}

		name := d.Name()
		if d.IsDir() {
			if path == root {
				return nil
			}
			if skipDirs[name] {
				return filepath.SkipDir
			}
			if !opts.IncludeTests && name == "test" {
				return filepath.SkipDir
			}
			return nil
		}

		if !sourceExtensions[strings.ToLower(filepath.Ext(name))] {
			return nil
		}
		if !opts.IncludeTests && strings.HasSuffix(name, "_test.exs") {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gi != nil && gi.MatchesPath(rel) {
			return nil
		}
		for _, pattern := range opts.Exclude {
			if ok, _ := doublestar.Match(pattern, rel); ok {
				return nil
			}
		}

		files = append(files, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files)
	return files, nil
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
