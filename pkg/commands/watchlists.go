package commands

import (
	"github.com/arthur-debert/archwatch/pkg/logging"
)

// ListResult holds the known watchlists.
type ListResult struct {
	Watchlists []WatchlistInfo
}

// WatchlistInfo describes one watchlist.
type WatchlistInfo struct {
	Name      string
	Entries   int
	IsDefault bool
}

// CreateWatchlist creates an empty watchlist.
func CreateWatchlist(env *Env, name string) error {
	logger := logging.GetLogger("commands.create")
	if err := env.Store.Create(name); err != nil {
		return err
	}
	logger.Info().Str("watchlist", name).Msg("Watchlist created")
	return nil
}

// DeleteWatchlist removes a watchlist. The watched paths are left alone.
func DeleteWatchlist(env *Env, name string) error {
	logger := logging.GetLogger("commands.delete")
	if err := env.Store.Delete(name); err != nil {
		return err
	}
	logger.Info().Str("watchlist", name).Msg("Watchlist deleted")
	return nil
}

// ListWatchlists returns every watchlist with its entry count.
func ListWatchlists(env *Env) (*ListResult, error) {
	names, err := env.Store.List()
	if err != nil {
		return nil, err
	}

	result := &ListResult{Watchlists: make([]WatchlistInfo, 0, len(names))}
	for _, name := range names {
		entries, err := env.Store.Entries(name)
		if err != nil {
			return nil, err
		}
		result.Watchlists = append(result.Watchlists, WatchlistInfo{
			Name:      name,
			Entries:   len(entries),
			IsDefault: name == env.Config.Watchlist.Default,
		})
	}
	return result, nil
}
