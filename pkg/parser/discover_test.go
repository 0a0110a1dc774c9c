package parser

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte("x\n"), 0644))
}

func TestDiscover_DirectoryWithPrefix(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "server.log"))
	touch(t, filepath.Join(dir, "node2", "server.log.1"))
	touch(t, filepath.Join(dir, "poib.log"))
	touch(t, filepath.Join(dir, "serverLogDetails.log"))

	files, err := Discover([]string{dir}, "server", []string{"serverLogDetails.log"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join(dir, "node2", "server.log.1"),
		filepath.Join(dir, "server.log"),
	}, files)
}

func TestDiscover_GlobAndDedup(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.log"))
	touch(t, filepath.Join(dir, "b.log"))
	touch(t, filepath.Join(dir, "c.txt"))

	files, err := Discover([]string{
		filepath.Join(dir, "*.log"),
		filepath.Join(dir, "a.log"),
	}, "", nil)
	require.NoError(t, err)

	assert.Equal(t, []string{filepath.Join(dir, "a.log"), filepath.Join(dir, "b.log")}, files)
}

func TestDiscover_Missing(t *testing.T) {
	_, err := Discover([]string{filepath.Join(t.TempDir(), "nope")}, "", nil)
	assert.Error(t, err)
}

func TestDiscover_InvalidPattern(t *testing.T) {
	_, err := Discover([]string{"[invalid"}, "", nil)
	assert.Error(t, err)
}

func TestDiscover_NoMatches(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "poib.log"))

	files, err := Discover([]string{dir}, "server", nil)
	require.NoError(t, err)
	assert.Empty(t, files)
}
