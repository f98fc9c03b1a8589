package paths

import (
	"strings"

	"github.com/arthur-debert/archwatch/pkg/errors"
)

// ValidatePath checks that a path can be stored as a watchlist line.
// It checks for:
// - Empty paths
// - Null bytes
// - Line breaks (the watchlist format has no escaping)
// - Excessive path length
func ValidatePath(path string) error {
	if path == "" {
		return errors.New(errors.ErrInvalidPath, "path cannot be empty")
	}

	if strings.Contains(path, "\x00") {
		return errors.Newf(errors.ErrInvalidPath, "path %q contains null bytes", path).
			WithDetail("path", path)
	}

	if strings.ContainsAny(path, "\r\n") {
		return errors.Newf(errors.ErrInvalidPath, "path %q contains a line break", path).
			WithDetail("path", path)
	}

	if len(path) > 4096 {
		return errors.New(errors.ErrInvalidPath, "path exceeds maximum length").
			WithDetail("path", path)
	}

	return nil
}

// ValidateWatchlistName ensures a watchlist name is valid for use as a file name.
// Watchlist names must:
// - Not be empty
// - Not contain path separators
// - Not be reserved names (. or ..)
// - Not start with a dot (reserved for temporary files)
// - Not contain control characters
func ValidateWatchlistName(name string) error {
	if name == "" {
		return errors.New(errors.ErrInvalidName, "watchlist name cannot be empty")
	}

	if strings.ContainsAny(name, "/\\") {
		return errors.Newf(errors.ErrInvalidName, "watchlist name %q cannot contain path separators", name).
			WithDetail("watchlist", name)
	}

	if name == "." || name == ".." {
		return errors.New(errors.ErrInvalidName, "watchlist name cannot be '.' or '..'").
			WithDetail("watchlist", name)
	}

	if strings.HasPrefix(name, ".") {
		return errors.Newf(errors.ErrInvalidName, "watchlist name %q cannot start with a dot", name).
			WithDetail("watchlist", name)
	}

	for _, r := range name {
		if r < 32 || r == 127 {
			return errors.Newf(errors.ErrInvalidName, "watchlist name %q contains control characters", name).
				WithDetail("watchlist", name)
		}
	}

	return nil
}
