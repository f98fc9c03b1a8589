package commands

import (
	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/filesystem"
	"github.com/arthur-debert/archwatch/pkg/logging"
	"github.com/arthur-debert/archwatch/pkg/paths"
)

// WatchOptions holds options for Watch.
type WatchOptions struct {
	// Watchlist defaults to the configured default watchlist.
	Watchlist string
	// Paths may be relative or start with "~"; they are expanded first.
	Paths  []string
	DryRun bool
}

// WatchResult lists what Watch did.
type WatchResult struct {
	Watchlist      string
	Added          []string
	AlreadyWatched []string
}

// Watch adds paths to a watchlist. Paths already watched are reported and
// left as they are. It stops at the first path that cannot be watched.
func Watch(env *Env, opts WatchOptions) (*WatchResult, error) {
	logger := logging.GetLogger("commands.watch")

	name, err := env.WatchlistName(opts.Watchlist)
	if err != nil {
		return nil, err
	}
	result := &WatchResult{Watchlist: name}

	for _, arg := range opts.Paths {
		path, err := expand(env, arg)
		if err != nil {
			return result, err
		}

		if err := checkExists(env, name, path); err != nil {
			return result, err
		}

		watched, err := env.Store.Contains(name, path)
		if err != nil {
			return result, err
		}
		if watched {
			logger.Debug().Str("watchlist", name).Str("path", path).Msg("Already watched")
			result.AlreadyWatched = append(result.AlreadyWatched, path)
			continue
		}

		if !opts.DryRun {
			if err := env.Store.Append(name, path); err != nil {
				return result, err
			}
		}
		result.Added = append(result.Added, path)
	}

	logger.Info().Str("watchlist", name).Int("added", len(result.Added)).Bool("dryRun", opts.DryRun).Msg("Watch finished")
	return result, nil
}

// UnwatchOptions holds options for Unwatch.
type UnwatchOptions struct {
	Watchlist string
	Paths     []string
	DryRun    bool
}

// UnwatchResult lists what Unwatch did.
type UnwatchResult struct {
	Watchlist  string
	Removed    []string
	NotWatched []string
}

// Unwatch drops paths from a watchlist. A path must still exist on disk;
// vanished paths are dropped with Prune.
func Unwatch(env *Env, opts UnwatchOptions) (*UnwatchResult, error) {
	logger := logging.GetLogger("commands.unwatch")

	name, err := env.WatchlistName(opts.Watchlist)
	if err != nil {
		return nil, err
	}
	result := &UnwatchResult{Watchlist: name}

	for _, arg := range opts.Paths {
		path, err := expand(env, arg)
		if err != nil {
			return result, err
		}

		if err := checkExists(env, name, path); err != nil {
			return result, err
		}

		watched, err := env.Store.Contains(name, path)
		if err != nil {
			return result, err
		}
		if !watched {
			result.NotWatched = append(result.NotWatched, path)
			continue
		}

		if !opts.DryRun {
			if err := env.Store.Remove(name, path); err != nil {
				return result, err
			}
		}
		result.Removed = append(result.Removed, path)
	}

	logger.Info().Str("watchlist", name).Int("removed", len(result.Removed)).Bool("dryRun", opts.DryRun).Msg("Unwatch finished")
	return result, nil
}

func expand(env *Env, arg string) (string, error) {
	if err := paths.ValidatePath(arg); err != nil {
		return "", err
	}
	return env.Resolver().Expand(arg), nil
}

// checkExists mirrors the store's on-disk check for dry runs and for
// telling missing paths apart from unwatched ones.
func checkExists(env *Env, name, path string) error {
	exists, err := filesystem.Exists(env.FS, path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path).WithDetail("path", path)
	}
	if !exists {
		return errors.Newf(errors.ErrUnwatchablePath, "cannot use %s with watchlist %q: path does not exist", path, name).
			WithDetail("path", path).
			WithDetail("watchlist", name)
	}
	return nil
}
