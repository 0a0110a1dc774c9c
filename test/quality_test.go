package test

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

// getProjectRoot returns the project root directory based on this test file's location.
func getProjectRoot() string {
	_, filename, _, ok := runtime.Caller(0)
	if !ok {
		return "."
	}
	return filepath.Dir(filepath.Dir(filename))
}

// projectTestFiles lists the module's own test files. Hidden directories and
// directories ignored by the go tool are left out.
func projectTestFiles(t *testing.T) []string {
	t.Helper()
	var files []string
	err := filepath.WalkDir(getProjectRoot(), func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			name := d.Name()
			if path != getProjectRoot() && (strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") || name == "vendor" || name == "testdata") {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, "_test.go") && !strings.HasSuffix(path, "quality_test.go") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Failed to walk directory: %v", err)
	}
	return files
}

// TestNoSkippedTests ensures no test files contain t.Skip() calls.
// Tests should either pass or fail, never skip.
func TestNoSkippedTests(t *testing.T) {
	forbidden := []string{"t.Skip(", "t.SkipNow(", "testing.Short()"}

	var violations []string
	for _, path := range projectTestFiles(t) {
		f, err := os.Open(path)
		if err != nil {
			t.Fatalf("Failed to open %s: %v", path, err)
		}

		scanner := bufio.NewScanner(f)
		lineNum := 0
		for scanner.Scan() {
			lineNum++
			line := scanner.Text()
			if strings.HasPrefix(strings.TrimSpace(line), "//") {
				continue
			}
			for _, pattern := range forbidden {
				if strings.Contains(line, pattern) {
					violations = append(violations, fmt.Sprintf("%s:%d: contains %q", path, lineNum, pattern))
				}
			}
		}
		_ = f.Close()

		if err := scanner.Err(); err != nil {
			t.Fatalf("Error scanning %s: %v", path, err)
		}
	}

	for _, v := range violations {
		t.Error(v)
	}
}

// TestEveryPackageHasTests ensures each package under pkg/ ships a test file.
func TestEveryPackageHasTests(t *testing.T) {
	tested := map[string]bool{}
	for _, path := range projectTestFiles(t) {
		tested[filepath.Dir(path)] = true
	}

	entries, err := os.ReadDir(filepath.Join(getProjectRoot(), "pkg"))
	if err != nil {
		t.Fatalf("Failed to read pkg/: %v", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(getProjectRoot(), "pkg", e.Name())
		if !tested[dir] {
			t.Errorf("package %s has no tests", e.Name())
		}
	}
}
