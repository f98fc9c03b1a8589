package commands

import (
	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/filesystem"
	"github.com/arthur-debert/archwatch/pkg/logging"
	"github.com/arthur-debert/archwatch/pkg/paths"
)

// ShowResult lists the entries of a watchlist.
type ShowResult struct {
	Watchlist string
	Entries   []ShowEntry
}

// ShowEntry is one watched path and where backups put it.
type ShowEntry struct {
	Path           string
	Exists         bool
	Classification paths.Classification
}

// Missing returns the entries whose path no longer exists.
func (r *ShowResult) Missing() []string {
	var missing []string
	for _, e := range r.Entries {
		if !e.Exists {
			missing = append(missing, e.Path)
		}
	}
	return missing
}

// Show returns the entries of a watchlist in file order.
func Show(env *Env, watchlistName string) (*ShowResult, error) {
	name, err := env.WatchlistName(watchlistName)
	if err != nil {
		return nil, err
	}

	entries, err := env.Store.Entries(name)
	if err != nil {
		return nil, err
	}

	result := &ShowResult{Watchlist: name, Entries: make([]ShowEntry, 0, len(entries))}
	for _, path := range entries {
		exists, err := filesystem.Exists(env.FS, path)
		if err != nil {
			return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path).WithDetail("path", path)
		}
		entry := ShowEntry{Path: path, Exists: exists}
		// Entries written by hand may not classify; show them anyway.
		if c, err := env.Resolver().Classify(path); err == nil {
			entry.Classification = c
		}
		result.Entries = append(result.Entries, entry)
	}
	return result, nil
}

// PruneResult lists the dropped paths.
type PruneResult struct {
	Watchlist string
	Removed   []string
}

// Prune drops every path that no longer exists from a watchlist.
func Prune(env *Env, watchlistName string, dryRun bool) (*PruneResult, error) {
	logger := logging.GetLogger("commands.prune")

	shown, err := Show(env, watchlistName)
	if err != nil {
		return nil, err
	}

	result := &PruneResult{Watchlist: shown.Watchlist}
	for _, path := range shown.Missing() {
		if !dryRun {
			if err := env.Store.RemoveLine(shown.Watchlist, path); err != nil {
				return result, err
			}
		}
		result.Removed = append(result.Removed, path)
	}

	logger.Info().Str("watchlist", shown.Watchlist).Int("removed", len(result.Removed)).Bool("dryRun", dryRun).Msg("Prune finished")
	return result, nil
}
