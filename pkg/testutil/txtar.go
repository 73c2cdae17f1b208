// Package testutil materialises txtar fixtures for tests that need real
// modules on disk.
package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/tools/txtar"
)

// WriteArchive parses a txtar archive and writes its files under a fresh
// temporary directory, returning the directory.
func WriteArchive(t testing.TB, archive string) string {
	t.Helper()
	dir := t.TempDir()
	WriteArchiveTo(t, dir, archive)
	return dir
}

// WriteArchiveTo writes the files of a txtar archive under dir
func WriteArchiveTo(t testing.TB, dir, archive string) {
	t.Helper()
	ar := txtar.Parse([]byte(archive))
	require.NotEmpty(t, ar.Files, "archive has no files")
	for _, f := range ar.Files {
		path := filepath.Join(dir, filepath.FromSlash(f.Name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, f.Data, 0644))
	}
}

// ReadFile returns the content of dir/name as a string
func ReadFile(t testing.TB, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(name)))
	require.NoError(t, err)
	return string(data)
}
