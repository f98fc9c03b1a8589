package paths

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/arthur-debert/archwatch/pkg/errors"
)

// Environment variable names
const (
	// EnvConfigDir overrides the XDG config directory for archwatch
	EnvConfigDir = "ARCHWATCH_CONFIG_DIR"

	// EnvDataDir overrides the XDG data directory for archwatch
	EnvDataDir = "ARCHWATCH_DATA_DIR"

	// EnvHome is the standard home directory variable
	EnvHome = "HOME"
)

// Default directories and files
const (
	// AppDirName is the directory name for archwatch-specific files
	AppDirName = "archwatch"

	// WatchlistsDir is the config subdirectory holding one file per watchlist
	WatchlistsDir = "watchlists"

	// BackupsDir is the data subdirectory used when no backup folder is given
	BackupsDir = "backups"

	// ConfigFileName is the user configuration file inside the config dir
	ConfigFileName = "config.toml"
)

// Options configures New. Empty fields are discovered from the environment.
type Options struct {
	Home      string
	ConfigDir string
	DataDir   string
}

// Paths holds the directories archwatch works with. It is resolved once at
// process start and never mutated afterwards.
type Paths struct {
	home      string
	configDir string
	dataDir   string
	resolver  *Resolver
}

// New creates a Paths instance. The home directory comes from opts, then
// $HOME, then os.UserHomeDir; a missing home directory is a fatal
// configuration error.
func New(opts Options) (*Paths, error) {
	home := opts.Home
	if home == "" {
		home = GetHomeDirectory()
	}
	if home == "" {
		return nil, errors.New(errors.ErrConfigValid, "cannot determine home directory: $HOME is not set")
	}

	resolver, err := NewResolver(home)
	if err != nil {
		return nil, err
	}

	p := &Paths{
		home:     resolver.Home(),
		resolver: resolver,
	}

	switch {
	case opts.ConfigDir != "":
		p.configDir = resolver.Expand(opts.ConfigDir)
	case os.Getenv(EnvConfigDir) != "":
		p.configDir = resolver.Expand(os.Getenv(EnvConfigDir))
	default:
		p.configDir = filepath.Join(xdg.ConfigHome, AppDirName)
	}

	switch {
	case opts.DataDir != "":
		p.dataDir = resolver.Expand(opts.DataDir)
	case os.Getenv(EnvDataDir) != "":
		p.dataDir = resolver.Expand(os.Getenv(EnvDataDir))
	default:
		p.dataDir = filepath.Join(xdg.DataHome, AppDirName)
	}

	return p, nil
}

// GetHomeDirectory returns $HOME, falling back to os.UserHomeDir.
// It returns an empty string when neither is available.
func GetHomeDirectory() string {
	if home := os.Getenv(EnvHome); home != "" {
		return home
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return home
}

// Home returns the home directory used for classification
func (p *Paths) Home() string {
	return p.home
}

// Resolver returns the path resolver bound to this home directory
func (p *Paths) Resolver() *Resolver {
	return p.resolver
}

// ConfigDir returns the XDG config directory for archwatch
func (p *Paths) ConfigDir() string {
	return p.configDir
}

// ConfigFilePath returns the default user configuration file
func (p *Paths) ConfigFilePath() string {
	return filepath.Join(p.configDir, ConfigFileName)
}

// WatchlistsDir returns the directory holding watchlist files
func (p *Paths) WatchlistsDir() string {
	return filepath.Join(p.configDir, WatchlistsDir)
}

// DataDir returns the XDG data directory for archwatch
func (p *Paths) DataDir() string {
	return p.dataDir
}

// DefaultBackupDir returns the backup folder used when none is configured
func (p *Paths) DefaultBackupDir() string {
	return filepath.Join(p.dataDir, BackupsDir)
}
