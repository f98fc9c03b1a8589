package testutil

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/afero"
)

// FileTree represents a directory structure for testing. Values are either
// file content (string) or a nested FileTree.
type FileTree map[string]interface{}

// CreateFileTree recursively creates tree under basePath.
func CreateFileTree(t *testing.T, fs afero.Fs, basePath string, tree FileTree) {
	t.Helper()

	for name, content := range tree {
		fullPath := filepath.Join(basePath, name)

		switch v := content.(type) {
		case string:
			WriteFile(t, fs, fullPath, v)
		case FileTree:
			if err := fs.MkdirAll(fullPath, 0755); err != nil {
				t.Fatalf("Failed to create directory %s: %v", fullPath, err)
			}
			CreateFileTree(t, fs, fullPath, v)
		default:
			t.Fatalf("Invalid file tree content type for %s: %T", name, content)
		}
	}
}

// WriteFile writes content to path, creating parent directories.
func WriteFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	if err := fs.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create directory for %s: %v", path, err)
	}
	if err := afero.WriteFile(fs, path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write file %s: %v", path, err)
	}
}

// ReadFile returns the content of path, failing the test if it is unreadable.
func ReadFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(data)
}

// Exists reports whether path exists, failing the test on stat errors.
func Exists(t *testing.T, fs afero.Fs, path string) bool {
	t.Helper()
	_, err := fs.Stat(path)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	t.Fatalf("Failed to stat %s: %v", path, err)
	return false
}

// ErrSimulatedCrash is returned by FailingRenameFs.Rename.
var ErrSimulatedCrash = errors.New("simulated crash before replace")

// FailingRenameFs wraps a filesystem so that Rename always fails.
type FailingRenameFs struct {
	afero.Fs
}

// Rename implements afero.Fs.
func (f FailingRenameFs) Rename(oldname, newname string) error {
	return ErrSimulatedCrash
}
