package commands

import (
	"github.com/arthur-debert/archwatch/pkg/config"
	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/paths"
	"github.com/arthur-debert/archwatch/pkg/watchlist"
	"github.com/spf13/afero"
)

// Env is what every command runs against.
type Env struct {
	FS     afero.Fs
	Paths  *paths.Paths
	Config *config.Config
	Store  watchlist.Store
}

// NewEnv wires a watchlist store over fs into the configured directories.
func NewEnv(fs afero.Fs, p *paths.Paths, cfg *config.Config) *Env {
	return &Env{
		FS:     fs,
		Paths:  p,
		Config: cfg,
		Store:  watchlist.New(fs, p.WatchlistsDir()),
	}
}

// Resolver returns the path resolver bound to the home directory.
func (e *Env) Resolver() *paths.Resolver {
	return e.Paths.Resolver()
}

// WatchlistName returns name, or the configured default watchlist when name
// is empty. The default watchlist is created on first use.
func (e *Env) WatchlistName(name string) (string, error) {
	if name != "" {
		return name, nil
	}
	name = e.Config.Watchlist.Default
	if _, err := e.Store.EnsureDefault(name); err != nil {
		return "", err
	}
	return name, nil
}

// BackupFolder resolves the backup folder: dir when given, then the
// configured folder, then the default one in the data directory. The result
// is absolute.
func (e *Env) BackupFolder(dir string) (string, error) {
	if dir == "" {
		dir = e.Config.Backup.Folder
	}
	if dir == "" {
		return e.Paths.DefaultBackupDir(), nil
	}
	if err := paths.ValidatePath(dir); err != nil {
		return "", errors.Wrapf(err, errors.ErrInvalidPath, "invalid backup folder %q", dir).
			WithDetail("path", dir)
	}
	return e.Resolver().Expand(dir), nil
}
