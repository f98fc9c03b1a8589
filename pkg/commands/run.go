package commands

import (
	"context"

	"github.com/arthur-debert/archwatch/pkg/backup"
	"github.com/arthur-debert/archwatch/pkg/copier"
	"github.com/arthur-debert/archwatch/pkg/restore"
)

// BackupOptions holds options for Backup. Unwatching and parallelism come
// from the configuration.
type BackupOptions struct {
	Watchlist   string
	Destination string
	DryRun      bool
	Progress    func(backup.Item)
	// Started, if set, is called with the number of entries before copying.
	Started func(entries int)
}

// Backup copies a watchlist into the backup folder.
func Backup(ctx context.Context, env *Env, opts BackupOptions) (*backup.Result, error) {
	name, err := env.WatchlistName(opts.Watchlist)
	if err != nil {
		return nil, err
	}
	dest, err := env.BackupFolder(opts.Destination)
	if err != nil {
		return nil, err
	}

	if opts.Started != nil {
		entries, err := env.Store.Entries(name)
		if err != nil {
			return nil, err
		}
		opts.Started(len(entries))
	}

	pipeline := backup.New(env.FS, env.Store, env.Resolver(), copier.New(env.FS, copier.Policy{Overwrite: true}))
	return pipeline.Run(ctx, backup.Options{
		Watchlist:      name,
		Destination:    dest,
		UnwatchMissing: env.Config.Backup.UnwatchMissing,
		DryRun:         opts.DryRun,
		Jobs:           env.Config.Backup.Jobs,
		Progress:       opts.Progress,
	})
}

// RestoreOptions holds options for Restore. Overwriting comes from the
// configuration.
type RestoreOptions struct {
	Source string
	Root   string
	DryRun bool
}

// Restore copies a backup folder back to the original locations.
func Restore(ctx context.Context, env *Env, opts RestoreOptions) (*restore.Result, error) {
	source, err := env.BackupFolder(opts.Source)
	if err != nil {
		return nil, err
	}
	root := opts.Root
	if root != "" {
		root = env.Resolver().Expand(root)
	}

	pipeline := restore.New(env.FS, env.Resolver())
	return pipeline.Run(ctx, restore.Options{
		Source:    source,
		Overwrite: env.Config.Restore.Overwrite,
		DryRun:    opts.DryRun,
		Root:      root,
	})
}
