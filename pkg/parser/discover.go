package parser

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Discover expands log sources into a deduplicated, sorted list of regular
// files. A source may be a file, a directory (walked recursively) or a glob
// pattern. Only files whose base name starts with prefix are kept, and base
// names listed in exclude are skipped.
func Discover(sources []string, prefix string, exclude []string) ([]string, error) {
	excluded := make(map[string]bool, len(exclude))
	for _, name := range exclude {
		excluded[name] = true
	}

	keep := func(path string) bool {
		base := filepath.Base(path)
		return strings.HasPrefix(base, prefix) && !excluded[base]
	}

	seen := make(map[string]bool)
	var result []string
	add := func(path string) {
		if !seen[path] && keep(path) {
			seen[path] = true
			result = append(result, path)
		}
	}

	for _, source := range sources {
		matches, err := filepath.Glob(source)
		if err != nil {
			return nil, fmt.Errorf("invalid glob pattern %q: %w", source, err)
		}
		if len(matches) == 0 {
			// Not a pattern match; stat it literally for a useful error
			matches = []string{source}
		}

		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, fmt.Errorf("log source %s: %w", match, err)
			}

			if !info.IsDir() {
				if info.Mode().IsRegular() {
					add(match)
				}
				continue
			}

			err = filepath.WalkDir(match, func(path string, d fs.DirEntry, err error) error {
				if err != nil {
					return err
				}
				if d.Type().IsRegular() {
					add(path)
				}
				return nil
			})
			if err != nil {
				return nil, fmt.Errorf("walking %s: %w", match, err)
			}
		}
	}

	// Sort for deterministic discovery order
	sort.Strings(result)

	return result, nil
}
