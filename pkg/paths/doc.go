// Package paths provides centralized path handling for archwatch.
//
// It handles:
//
//   - Home directory discovery (resolved once, then injected everywhere)
//   - XDG directory structure (config for watchlists, data for backups)
//   - Path expansion of user input (relative and ~ paths)
//   - Classification of absolute paths into backup folder locations
//   - Validation of watchlist names and watched paths
//
// # Environment Variables
//
//   - HOME: home directory, required
//   - ARCHWATCH_CONFIG_DIR: override config directory (default: $XDG_CONFIG_HOME/archwatch)
//   - ARCHWATCH_DATA_DIR: override data directory (default: $XDG_DATA_HOME/archwatch)
//
// # Backup Folder Layout
//
// A watched path is copied to <backup>/<classified path>. With HOME=/home/u:
//
//	/home/u/docs/a.txt  ->  ./docs/a.txt   (home branch)
//	/etc/hosts          ->  ./etc/hosts    (root branch)
//
// Both branches share the folder root, so the branch of every copied entry
// is recorded in the backup manifest to make the mapping reversible.
package paths
