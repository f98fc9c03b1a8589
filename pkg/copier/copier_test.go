// pkg/copier/copier_test.go
// TEST TYPE: Unit Test
// DEPENDENCIES: In-memory filesystem, real filesystem for symlinks
// PURPOSE: Test file and tree copies and the overwrite policy

package copier_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/arthur-debert/archwatch/pkg/copier"
	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/filesystem"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestCopy_File(t *testing.T) {
	fs := filesystem.NewMemory()
	writeFile(t, fs, "/home/u/docs/a.txt", "alpha")
	mtime := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, fs.Chtimes("/home/u/docs/a.txt", mtime, mtime))

	c := copier.New(fs, copier.Policy{Overwrite: true})
	stats, err := c.Copy(context.Background(), "/home/u/docs/a.txt", "/bk/docs/a.txt")
	require.NoError(t, err)

	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, int64(5), stats.Bytes)
	assert.Equal(t, "alpha", readFile(t, fs, "/bk/docs/a.txt"))

	info, err := fs.Stat("/bk/docs/a.txt")
	require.NoError(t, err)
	assert.True(t, info.ModTime().Equal(mtime))
}

func TestCopy_Tree(t *testing.T) {
	fs := filesystem.NewMemory()
	writeFile(t, fs, "/src/proj/readme.md", "readme")
	writeFile(t, fs, "/src/proj/sub/deep/main.go", "package main")
	require.NoError(t, fs.MkdirAll("/src/proj/empty", 0755))

	c := copier.New(fs, copier.Policy{Overwrite: true})
	stats, err := c.Copy(context.Background(), "/src/proj", "/bk/src/proj")
	require.NoError(t, err)

	assert.Equal(t, 2, stats.Files)
	assert.Equal(t, "readme", readFile(t, fs, "/bk/src/proj/readme.md"))
	assert.Equal(t, "package main", readFile(t, fs, "/bk/src/proj/sub/deep/main.go"))

	info, err := fs.Stat("/bk/src/proj/empty")
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestCopy_OverwritePolicy(t *testing.T) {
	tests := []struct {
		name        string
		overwrite   bool
		wantContent string
		wantSkipped int
	}{
		{"overwrite enabled replaces", true, "new", 0},
		{"overwrite disabled skips", false, "old", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := filesystem.NewMemory()
			writeFile(t, fs, "/src/f", "new")
			writeFile(t, fs, "/dst/f", "old")

			c := copier.New(fs, copier.Policy{Overwrite: tt.overwrite})
			stats, err := c.Copy(context.Background(), "/src/f", "/dst/f")
			require.NoError(t, err)

			assert.Equal(t, tt.wantSkipped, stats.Skipped)
			assert.Equal(t, tt.wantContent, readFile(t, fs, "/dst/f"))
		})
	}
}

func TestCopy_MissingSource(t *testing.T) {
	fs := filesystem.NewMemory()
	c := copier.New(fs, copier.Policy{})

	_, err := c.Copy(context.Background(), "/nope", "/dst")
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrFileAccess))
}

func TestCopy_CancelledContext(t *testing.T) {
	fs := filesystem.NewMemory()
	writeFile(t, fs, "/src/a", "a")
	writeFile(t, fs, "/src/b", "b")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := copier.New(fs, copier.Policy{Overwrite: true})
	_, err := c.Copy(ctx, "/src", "/dst")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestCopy_SymlinksOnDisk(t *testing.T) {
	dir := t.TempDir()
	fs := filesystem.NewOS()

	src := filepath.Join(dir, "src")
	writeFile(t, fs, filepath.Join(src, "real.txt"), "real")
	require.NoError(t, os.Symlink("real.txt", filepath.Join(src, "link.txt")))

	// A watched path that is itself a link to a directory is followed.
	linkedDir := filepath.Join(dir, "linked")
	require.NoError(t, os.Symlink(src, linkedDir))

	c := copier.New(fs, copier.Policy{Overwrite: true})

	dst := filepath.Join(dir, "dst")
	stats, err := c.Copy(context.Background(), src, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Files)
	assert.Equal(t, 1, stats.Symlinks)

	target, err := os.Readlink(filepath.Join(dst, "link.txt"))
	require.NoError(t, err)
	assert.Equal(t, "real.txt", target)

	viaLink := filepath.Join(dir, "dst-via-link")
	_, err = c.Copy(context.Background(), linkedDir, viaLink)
	require.NoError(t, err)
	assert.Equal(t, "real", readFile(t, fs, filepath.Join(viaLink, "real.txt")))
}

func TestStats_Add(t *testing.T) {
	s := copier.Stats{Files: 1, Bytes: 10}
	s.Add(copier.Stats{Files: 2, Dirs: 1, Skipped: 1, Bytes: 5})
	assert.Equal(t, copier.Stats{Files: 3, Dirs: 1, Skipped: 1, Bytes: 15}, s)
}

func TestCopy_DestinationInsideSource(t *testing.T) {
	fs := filesystem.NewMemory()
	writeFile(t, fs, "/home/u/a.txt", "a")
	writeFile(t, fs, "/home/u/backups/old.txt", "previous backup")

	c := copier.New(fs, copier.Policy{Overwrite: true})
	_, err := c.Copy(context.Background(), "/home/u", "/home/u/backups")
	require.NoError(t, err)

	assert.Equal(t, "a", readFile(t, fs, "/home/u/backups/a.txt"))
	exists, err := afero.DirExists(fs, "/home/u/backups/backups")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestCopy_PreserveLinks(t *testing.T) {
	dir := t.TempDir()
	fs := filesystem.NewOS()

	writeFile(t, fs, filepath.Join(dir, "real.txt"), "real")
	link := filepath.Join(dir, "link.txt")
	require.NoError(t, os.Symlink("real.txt", link))

	c := copier.New(fs, copier.Policy{Overwrite: true, PreserveLinks: true})
	dst := filepath.Join(dir, "out", "link.txt")
	stats, err := c.Copy(context.Background(), link, dst)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Symlinks)
	assert.Equal(t, 0, stats.Files)

	target, err := os.Readlink(dst)
	require.NoError(t, err)
	assert.Equal(t, "real.txt", target)
}
