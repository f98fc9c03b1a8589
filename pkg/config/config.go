package config

import (
	_ "embed"
	"errors"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// Config is the resolved archwatch configuration.
type Config struct {
	Watchlist WatchlistConfig `koanf:"watchlist"`
	Backup    BackupConfig    `koanf:"backup"`
	Restore   RestoreConfig   `koanf:"restore"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// WatchlistConfig holds watchlist settings.
type WatchlistConfig struct {
	// Default is the watchlist used when a command names none.
	Default string `koanf:"default"`
}

// BackupConfig holds backup settings.
type BackupConfig struct {
	// Folder is the backup destination. Empty means the data directory.
	Folder         string `koanf:"folder"`
	UnwatchMissing bool   `koanf:"unwatch_missing"`
	Jobs           int    `koanf:"jobs"`
}

// RestoreConfig holds restore settings.
type RestoreConfig struct {
	Overwrite bool `koanf:"overwrite"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// File enables the log file under the XDG state directory.
	File bool `koanf:"file"`
}

// DefaultContent returns the embedded defaults, used as a commented
// template for new config files.
func DefaultContent() string {
	return string(defaultConfig)
}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}
