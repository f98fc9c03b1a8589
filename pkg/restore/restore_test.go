// pkg/restore/restore_test.go
// TEST TYPE: Pipeline Tests
// DEPENDENCIES: In-memory filesystem, backup pipeline for round trips
// PURPOSE: Test manifest driven restore, overwrite policy and fallbacks

package restore_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/arthur-debert/archwatch/pkg/backup"
	"github.com/arthur-debert/archwatch/pkg/copier"
	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/filesystem"
	"github.com/arthur-debert/archwatch/pkg/manifest"
	"github.com/arthur-debert/archwatch/pkg/paths"
	"github.com/arthur-debert/archwatch/pkg/restore"
	"github.com/arthur-debert/archwatch/pkg/watchlist"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	home   = "/home/u"
	folder = "/tmp/bk"
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

func newResolver(t *testing.T) *paths.Resolver {
	t.Helper()
	r, err := paths.NewResolver(home)
	require.NoError(t, err)
	return r
}

// backupOf backs up the watched paths into folder and removes the originals.
func backupOf(t *testing.T, fs afero.Fs, files map[string]string, watched ...string) {
	t.Helper()
	for path, content := range files {
		writeFile(t, fs, path, content)
	}
	store := watchlist.New(fs, "/cfg/watchlists")
	require.NoError(t, store.Create("default"))
	for _, p := range watched {
		require.NoError(t, store.Append("default", p))
	}

	pipeline := backup.New(fs, store, newResolver(t), copier.New(fs, copier.Policy{Overwrite: true}))
	_, err := pipeline.Run(context.Background(), backup.Options{Watchlist: "default", Destination: folder})
	require.NoError(t, err)

	for _, p := range watched {
		require.NoError(t, fs.RemoveAll(p))
	}
}

func TestRun_RoundTrip(t *testing.T) {
	fs := filesystem.NewMemory()
	backupOf(t, fs, map[string]string{
		"/home/u/docs/a.txt":     "alpha",
		"/home/u/proj/main.go":   "package main",
		"/home/u/proj/sub/x.txt": "x",
		"/etc/hosts":             "hosts",
	}, "/home/u/docs/a.txt", "/home/u/proj", "/etc/hosts")

	result, err := restore.New(fs, newResolver(t)).Run(context.Background(), restore.Options{Source: folder})
	require.NoError(t, err)

	assert.Equal(t, "alpha", readFile(t, fs, "/home/u/docs/a.txt"))
	assert.Equal(t, "package main", readFile(t, fs, "/home/u/proj/main.go"))
	assert.Equal(t, "x", readFile(t, fs, "/home/u/proj/sub/x.txt"))
	assert.Equal(t, "hosts", readFile(t, fs, "/etc/hosts"))
	assert.Len(t, result.Restored, 4)
	assert.Empty(t, result.Skipped)
	assert.False(t, result.NoManifest)

	// Root-branch content never lands under home.
	exists, err := afero.Exists(fs, "/home/u/etc/hosts")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_OverwritePolicy(t *testing.T) {
	tests := []struct {
		name        string
		overwrite   bool
		wantContent string
		wantSkipped []string
	}{
		{name: "keep existing", overwrite: false, wantContent: "local edit", wantSkipped: []string{"/home/u/a.txt"}},
		{name: "overwrite", overwrite: true, wantContent: "from backup"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := filesystem.NewMemory()
			backupOf(t, fs, map[string]string{"/home/u/a.txt": "from backup"}, "/home/u/a.txt")
			writeFile(t, fs, "/home/u/a.txt", "local edit")

			result, err := restore.New(fs, newResolver(t)).Run(context.Background(), restore.Options{
				Source:    folder,
				Overwrite: tt.overwrite,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, readFile(t, fs, "/home/u/a.txt"))
			assert.Equal(t, tt.wantSkipped, result.Skipped)
		})
	}
}

func TestRun_WithRoot(t *testing.T) {
	fs := filesystem.NewMemory()
	backupOf(t, fs, map[string]string{
		"/home/u/a.txt": "alpha",
		"/etc/hosts":    "hosts",
	}, "/home/u/a.txt", "/etc/hosts")

	_, err := restore.New(fs, newResolver(t)).Run(context.Background(), restore.Options{
		Source: folder,
		Root:   "/sandbox",
	})
	require.NoError(t, err)

	assert.Equal(t, "alpha", readFile(t, fs, "/sandbox/home/u/a.txt"))
	assert.Equal(t, "hosts", readFile(t, fs, "/sandbox/etc/hosts"))
}

func TestRun_DryRun(t *testing.T) {
	fs := filesystem.NewMemory()
	backupOf(t, fs, map[string]string{
		"/home/u/a.txt": "alpha",
		"/home/u/b.txt": "beta",
	}, "/home/u/a.txt", "/home/u/b.txt")
	writeFile(t, fs, "/home/u/b.txt", "local")

	result, err := restore.New(fs, newResolver(t)).Run(context.Background(), restore.Options{
		Source: folder,
		DryRun: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"/home/u/a.txt"}, result.Restored)
	assert.Equal(t, []string{"/home/u/b.txt"}, result.Skipped)
	exists, err := afero.Exists(fs, "/home/u/a.txt")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_WithoutManifest(t *testing.T) {
	fs := filesystem.NewMemory()
	writeFile(t, fs, "/tmp/bk/notes.txt", "notes")
	writeFile(t, fs, "/tmp/bk/config/app.toml", "x = 1")
	writeFile(t, fs, "/tmp/bk/"+filesystem.StagePrefix+"notes.txt-123", "partial")

	result, err := restore.New(fs, newResolver(t)).Run(context.Background(), restore.Options{Source: folder})
	require.NoError(t, err)

	assert.True(t, result.NoManifest)
	assert.Equal(t, "notes", readFile(t, fs, "/home/u/notes.txt"))
	assert.Equal(t, "x = 1", readFile(t, fs, "/home/u/config/app.toml"))
	assert.Len(t, result.Restored, 2)
}

func TestRun_NestedEntries(t *testing.T) {
	fs := filesystem.NewMemory()
	writeFile(t, fs, "/tmp/bk/docs/a.txt", "alpha")
	writeFile(t, fs, "/tmp/bk/etc/hosts", "hosts")

	m := manifest.New(home)
	m.Upsert(manifest.Entry{Source: home, Path: ".", Branch: paths.BranchHome, Kind: manifest.KindDir})
	m.Upsert(manifest.Entry{Source: "/etc", Path: "./etc", Branch: paths.BranchRoot, Kind: manifest.KindDir})
	require.NoError(t, manifest.Save(fs, folder, m))

	result, err := restore.New(fs, newResolver(t)).Run(context.Background(), restore.Options{Source: folder})
	require.NoError(t, err)

	assert.Equal(t, "alpha", readFile(t, fs, "/home/u/docs/a.txt"))
	assert.Equal(t, "hosts", readFile(t, fs, "/etc/hosts"))
	assert.ElementsMatch(t, []string{"/home/u/docs/a.txt", "/etc/hosts"}, result.Restored)

	exists, err := afero.Exists(fs, "/home/u/"+manifest.FileName)
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRun_MissingEntry(t *testing.T) {
	fs := filesystem.NewMemory()
	m := manifest.New(home)
	m.Upsert(manifest.Entry{Source: "/home/u/gone.txt", Path: "./gone.txt", Branch: paths.BranchHome, Kind: manifest.KindFile})
	require.NoError(t, manifest.Save(fs, folder, m))

	result, err := restore.New(fs, newResolver(t)).Run(context.Background(), restore.Options{Source: folder})
	require.NoError(t, err)
	assert.Equal(t, []string{"./gone.txt"}, result.Missing)
	assert.Empty(t, result.Restored)
}

func TestRun_Errors(t *testing.T) {
	fs := filesystem.NewMemory()
	p := restore.New(fs, newResolver(t))

	_, err := p.Run(context.Background(), restore.Options{Source: "relative"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath))

	_, err = p.Run(context.Background(), restore.Options{Source: "/nowhere"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrBackupNotFound))

	require.NoError(t, fs.MkdirAll(folder, 0755))
	_, err = p.Run(context.Background(), restore.Options{Source: folder, Root: "sandbox"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath))

	require.NoError(t, afero.WriteFile(fs, manifest.Path(folder), []byte("version = 'x'"), 0644))
	_, err = p.Run(context.Background(), restore.Options{Source: folder})
	assert.True(t, errors.IsErrorCode(err, errors.ErrManifestInvalid))
}
