// pkg/backup/backup_test.go
// TEST TYPE: Pipeline Tests
// DEPENDENCIES: In-memory filesystem, watchlist store, copier
// PURPOSE: Test backup placement, missing path handling and the manifest

package backup_test

import (
	"context"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/arthur-debert/archwatch/pkg/backup"
	"github.com/arthur-debert/archwatch/pkg/copier"
	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/filesystem"
	"github.com/arthur-debert/archwatch/pkg/manifest"
	"github.com/arthur-debert/archwatch/pkg/paths"
	"github.com/arthur-debert/archwatch/pkg/watchlist"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	home = "/home/u"
	dest = "/tmp/bk"
)

type fixture struct {
	fs       afero.Fs
	store    watchlist.Store
	pipeline *backup.Pipeline
}

func setup(t *testing.T, files map[string]string, watched ...string) *fixture {
	t.Helper()
	fs := filesystem.NewMemory()
	for path, content := range files {
		require.NoError(t, fs.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0644))
	}

	store := watchlist.New(fs, "/cfg/watchlists")
	require.NoError(t, store.Create("default"))
	for _, p := range watched {
		require.NoError(t, store.Append("default", p))
	}

	resolver, err := paths.NewResolver(home)
	require.NoError(t, err)

	return &fixture{
		fs:       fs,
		store:    store,
		pipeline: backup.New(fs, store, resolver, copier.New(fs, copier.Policy{Overwrite: true})),
	}
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func TestRun_PlacesHomeAndRootPaths(t *testing.T) {
	f := setup(t, map[string]string{
		"/home/u/docs/a.txt":       "alpha",
		"/home/u/proj/src/main.go": "package main",
		"/etc/hosts":               "127.0.0.1 localhost",
	}, "/home/u/docs/a.txt", "/home/u/proj", "/etc/hosts")

	result, err := f.pipeline.Run(context.Background(), backup.Options{
		Watchlist:   "default",
		Destination: dest,
	})
	require.NoError(t, err)

	assert.Equal(t, "alpha", readFile(t, f.fs, "/tmp/bk/docs/a.txt"))
	assert.Equal(t, "package main", readFile(t, f.fs, "/tmp/bk/proj/src/main.go"))
	assert.Equal(t, "127.0.0.1 localhost", readFile(t, f.fs, "/tmp/bk/etc/hosts"))

	require.Len(t, result.Copied, 3)
	assert.Equal(t, "/home/u/docs/a.txt", result.Copied[0].Source)
	assert.Equal(t, "/tmp/bk/docs/a.txt", result.Copied[0].Destination)
	assert.Equal(t, paths.BranchHome, result.Copied[0].Classification.Branch)
	assert.Equal(t, manifest.KindDir, result.Copied[1].Kind)
	assert.Equal(t, paths.BranchRoot, result.Copied[2].Classification.Branch)
	assert.Equal(t, 3, result.Totals().Files)
	assert.Empty(t, result.Unwatched)
}

func TestRun_WatchBackupVanishScenario(t *testing.T) {
	const source = "/home/u/docs/a.txt"
	f := setup(t, map[string]string{source: "alpha"})

	require.NoError(t, f.store.Append("default", source))
	entries, err := f.store.Entries("default")
	require.NoError(t, err)
	assert.Equal(t, []string{source}, entries)

	opts := backup.Options{Watchlist: "default", Destination: dest}
	_, err = f.pipeline.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, "alpha", readFile(t, f.fs, filepath.Join(dest, "./docs/a.txt")))

	require.NoError(t, f.fs.Remove(source))

	opts.UnwatchMissing = true
	result, err := f.pipeline.Run(context.Background(), opts)
	require.NoError(t, err)
	assert.Equal(t, []string{source}, result.Unwatched)
	entries, err = f.store.Entries("default")
	require.NoError(t, err)
	assert.Empty(t, entries)

	// The watchlist still names the vanished path, as after a hand edit.
	list := "/cfg/watchlists/default"
	require.NoError(t, afero.WriteFile(f.fs, list, []byte(source+"\n"), 0644))

	opts.UnwatchMissing = false
	_, err = f.pipeline.Run(context.Background(), opts)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathMissing))
	assert.Equal(t, source+"\n", readFile(t, f.fs, list))
	assert.Equal(t, "alpha", readFile(t, f.fs, "/tmp/bk/docs/a.txt"))
}

func TestRun_WritesManifest(t *testing.T) {
	f := setup(t, map[string]string{
		"/home/u/docs/a.txt": "alpha",
		"/etc/hosts":         "hosts",
	}, "/home/u/docs/a.txt", "/etc/hosts")

	_, err := f.pipeline.Run(context.Background(), backup.Options{Watchlist: "default", Destination: dest})
	require.NoError(t, err)

	m, found, err := manifest.Load(f.fs, dest)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, home, m.Home)
	require.Len(t, m.Entries, 2)

	byPath := map[string]manifest.Entry{}
	for _, e := range m.Entries {
		byPath[e.Path] = e
	}
	assert.Equal(t, paths.BranchHome, byPath["./docs/a.txt"].Branch)
	assert.Equal(t, "/home/u/docs/a.txt", byPath["./docs/a.txt"].Source)
	assert.Equal(t, "default", byPath["./docs/a.txt"].Watchlist)
	assert.Equal(t, paths.BranchRoot, byPath["./etc/hosts"].Branch)
	assert.Equal(t, manifest.KindFile, byPath["./etc/hosts"].Kind)
}

func TestRun_MissingPathFails(t *testing.T) {
	f := setup(t, map[string]string{
		"/home/u/docs/a.txt": "alpha",
		"/home/u/gone.txt":   "soon gone",
	}, "/home/u/docs/a.txt", "/home/u/gone.txt")
	require.NoError(t, f.fs.Remove("/home/u/gone.txt"))

	result, err := f.pipeline.Run(context.Background(), backup.Options{Watchlist: "default", Destination: dest})
	require.Error(t, err)
	assert.True(t, errors.IsErrorCode(err, errors.ErrPathMissing))
	assert.Contains(t, err.Error(), "/home/u/gone.txt")
	assert.Contains(t, err.Error(), "default")

	// Earlier copies stay in place and are recorded.
	assert.Equal(t, "alpha", readFile(t, f.fs, "/tmp/bk/docs/a.txt"))
	assert.Equal(t, []string{"/home/u/gone.txt"}, result.Missing)
	m, found, err := manifest.Load(f.fs, dest)
	require.NoError(t, err)
	require.True(t, found)
	assert.Len(t, m.Entries, 1)

	// The watchlist is untouched.
	entries, err := f.store.Entries("default")
	require.NoError(t, err)
	assert.Equal(t, []string{"/home/u/docs/a.txt", "/home/u/gone.txt"}, entries)
}

func TestRun_UnwatchMissing(t *testing.T) {
	f := setup(t, map[string]string{
		"/home/u/docs/a.txt": "alpha",
		"/home/u/gone.txt":   "soon gone",
		"/home/u/b.txt":      "beta",
	}, "/home/u/docs/a.txt", "/home/u/gone.txt", "/home/u/b.txt")
	require.NoError(t, f.fs.Remove("/home/u/gone.txt"))

	result, err := f.pipeline.Run(context.Background(), backup.Options{
		Watchlist:      "default",
		Destination:    dest,
		UnwatchMissing: true,
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"/home/u/gone.txt"}, result.Unwatched)
	assert.Len(t, result.Copied, 2)
	assert.Equal(t, "beta", readFile(t, f.fs, "/tmp/bk/b.txt"))

	entries, err := f.store.Entries("default")
	require.NoError(t, err)
	assert.Equal(t, []string{"/home/u/docs/a.txt", "/home/u/b.txt"}, entries)
}

func TestRun_DryRun(t *testing.T) {
	f := setup(t, map[string]string{
		"/home/u/docs/a.txt": "alpha",
		"/home/u/gone.txt":   "soon gone",
	}, "/home/u/docs/a.txt", "/home/u/gone.txt")
	require.NoError(t, f.fs.Remove("/home/u/gone.txt"))

	result, err := f.pipeline.Run(context.Background(), backup.Options{
		Watchlist:      "default",
		Destination:    dest,
		UnwatchMissing: true,
		DryRun:         true,
	})
	require.NoError(t, err)

	require.Len(t, result.Planned, 1)
	assert.Equal(t, "/tmp/bk/docs/a.txt", result.Planned[0].Destination)
	assert.Equal(t, []string{"/home/u/gone.txt"}, result.Missing)
	assert.Empty(t, result.Copied)
	assert.Empty(t, result.Unwatched)

	exists, err := afero.Exists(f.fs, dest)
	require.NoError(t, err)
	assert.False(t, exists)

	entries, err := f.store.Entries("default")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestRun_ParallelJobs(t *testing.T) {
	files := map[string]string{}
	var watched []string
	for _, name := range []string{"a", "b", "c", "d", "e", "f", "g", "h"} {
		p := "/home/u/files/" + name + ".txt"
		files[p] = name
		watched = append(watched, p)
	}
	f := setup(t, files, watched...)

	var calls int32
	result, err := f.pipeline.Run(context.Background(), backup.Options{
		Watchlist:   "default",
		Destination: dest,
		Jobs:        4,
		Progress:    func(backup.Item) { atomic.AddInt32(&calls, 1) },
	})
	require.NoError(t, err)

	assert.Equal(t, int32(len(watched)), atomic.LoadInt32(&calls))
	require.Len(t, result.Copied, len(watched))
	for i, item := range result.Copied {
		assert.Equal(t, watched[i], item.Source, "copied items keep watchlist order")
		assert.Equal(t, filepath.Base(watched[i][:len(watched[i])-4]), readFile(t, f.fs, item.Destination))
	}
}

func TestRun_DuplicateEntriesCopiedOnce(t *testing.T) {
	f := setup(t, map[string]string{"/home/u/a.txt": "alpha"}, "/home/u/a.txt", "/home/u/a.txt")

	result, err := f.pipeline.Run(context.Background(), backup.Options{Watchlist: "default", Destination: dest})
	require.NoError(t, err)
	assert.Len(t, result.Copied, 1)
	assert.Equal(t, []string{"/home/u/a.txt"}, result.Duplicates)
}

func TestRun_Errors(t *testing.T) {
	f := setup(t, nil)

	_, err := f.pipeline.Run(context.Background(), backup.Options{Watchlist: "default", Destination: "relative/bk"})
	assert.True(t, errors.IsErrorCode(err, errors.ErrInvalidPath))

	_, err = f.pipeline.Run(context.Background(), backup.Options{Watchlist: "nope", Destination: dest})
	assert.True(t, errors.IsErrorCode(err, errors.ErrWatchlistNotFound))
}

func TestRun_EmptyWatchlist(t *testing.T) {
	f := setup(t, nil)

	result, err := f.pipeline.Run(context.Background(), backup.Options{Watchlist: "default", Destination: dest})
	require.NoError(t, err)
	assert.Empty(t, result.Copied)

	_, found, err := manifest.Load(f.fs, dest)
	require.NoError(t, err)
	assert.False(t, found)
}
