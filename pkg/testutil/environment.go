// pkg/testutil/environment.go
// DEPENDENCIES: None (base test utilities)
// PURPOSE: Orchestrate test environments with proper dependencies

package testutil

import (
	"path/filepath"
	"testing"

	"github.com/arthur-debert/archwatch/pkg/commands"
	"github.com/arthur-debert/archwatch/pkg/config"
	"github.com/arthur-debert/archwatch/pkg/filesystem"
	"github.com/arthur-debert/archwatch/pkg/paths"
	"github.com/spf13/afero"
)

// EnvType defines the type of test environment
type EnvType int

const (
	EnvMemoryOnly EnvType = iota // Pure in-memory, no real filesystem
	EnvIsolated                  // Real filesystem in temp directory
)

// TestEnvironment provides a complete test environment with all dependencies
type TestEnvironment struct {
	HomeDir   string
	ConfigDir string
	DataDir   string

	FS     afero.Fs
	Paths  *paths.Paths
	Config *config.Config
	Env    *commands.Env

	Type EnvType

	t *testing.T
}

// NewTestEnvironment creates a new test environment. The process environment
// points at it too, so code resolving paths on its own sees the same dirs.
func NewTestEnvironment(t *testing.T, envType EnvType) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{t: t, Type: envType}

	switch envType {
	case EnvMemoryOnly:
		env.HomeDir = "/home/u"
		env.ConfigDir = "/cfg"
		env.DataDir = "/data"
		env.FS = filesystem.NewMemory()
	case EnvIsolated:
		root := t.TempDir()
		env.HomeDir = filepath.Join(root, "home")
		env.ConfigDir = filepath.Join(root, "config")
		env.DataDir = filepath.Join(root, "data")
		env.FS = filesystem.NewOS()
	}

	t.Setenv("HOME", env.HomeDir)
	t.Setenv(paths.EnvConfigDir, env.ConfigDir)
	t.Setenv(paths.EnvDataDir, env.DataDir)
	t.Setenv(config.EnvPrefix+"LOGGING__FILE", "false")

	if err := env.FS.MkdirAll(env.HomeDir, 0755); err != nil {
		t.Fatalf("Failed to create home directory: %v", err)
	}

	p, err := paths.New(paths.Options{Home: env.HomeDir, ConfigDir: env.ConfigDir, DataDir: env.DataDir})
	if err != nil {
		t.Fatalf("Failed to create paths: %v", err)
	}
	env.Paths = p

	cfg, err := config.Load(config.LoadOptions{})
	if err != nil {
		t.Fatalf("Failed to load configuration: %v", err)
	}
	env.Config = cfg
	env.Env = commands.NewEnv(env.FS, p, cfg)

	return env
}

// Home joins rel onto the home directory.
func (env *TestEnvironment) Home(rel string) string {
	return filepath.Join(env.HomeDir, rel)
}

// WithFileTree creates tree under the home directory.
func (env *TestEnvironment) WithFileTree(tree FileTree) {
	env.t.Helper()
	CreateFileTree(env.t, env.FS, env.HomeDir, tree)
}
