package config

import (
	"os"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"

	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/logging"
	"github.com/arthur-debert/archwatch/pkg/paths"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// EnvPrefix prefixes every environment variable read as configuration.
const EnvPrefix = "ARCHWATCH_"

// configFileNames are tried in order inside the config directory.
var configFileNames = []string{"config.toml", "config.yaml", "config.yml"}

// LoadOptions tells Load where to look.
type LoadOptions struct {
	// ConfigDir is searched for config.toml, config.yaml or config.yml.
	ConfigDir string
	// File, when set, replaces the config directory lookup and must exist.
	File string
	// Overrides are flat dotted keys ("backup.jobs") applied last.
	Overrides map[string]interface{}
}

// Load builds the configuration from all layers.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Built-in defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "cannot load built-in defaults")
	}

	// 2. User file
	path, err := userConfigPath(opts)
	if err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), parserFor(path)); err != nil {
			return nil, errors.Wrapf(err, errors.ErrConfigParse, "cannot parse config file %s", path).
				WithDetail("path", path)
		}
		logger.Debug().Str("path", path).Msg("Loaded config file")
	}

	// 3. Environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot read environment")
	}

	// 4. Flag overrides
	if len(opts.Overrides) > 0 {
		if err := k.Load(confmap.Provider(opts.Overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "cannot apply overrides")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				autoCountHookFunc(),
				trimSpaceHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "cannot decode configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise fail deep inside a command.
func (c *Config) Validate() error {
	if err := paths.ValidateWatchlistName(c.Watchlist.Default); err != nil {
		return errors.Wrapf(err, errors.ErrConfigValid, "watchlist.default: %s", err.Error()).
			WithDetail("key", "watchlist.default")
	}
	if c.Backup.Jobs < 1 {
		return errors.Newf(errors.ErrConfigValid, "backup.jobs must be at least 1, got %d", c.Backup.Jobs).
			WithDetail("key", "backup.jobs")
	}
	return nil
}

func userConfigPath(opts LoadOptions) (string, error) {
	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return "", errors.Wrapf(err, errors.ErrConfigLoad, "cannot read config file %s", opts.File).
				WithDetail("path", opts.File)
		}
		return opts.File, nil
	}
	if opts.ConfigDir == "" {
		return "", nil
	}
	for _, name := range configFileNames {
		path := filepath.Join(opts.ConfigDir, name)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

func parserFor(path string) koanf.Parser {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser()
	default:
		return toml.Parser()
	}
}

// envKey maps ARCHWATCH_BACKUP__UNWATCH_MISSING to backup.unwatch_missing.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// autoCountHookFunc decodes the string "auto" into an int as the number of CPUs.
func autoCountHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Int {
			return data, nil
		}
		if strings.EqualFold(strings.TrimSpace(reflect.ValueOf(data).String()), "auto") {
			return runtime.NumCPU(), nil
		}
		return data, nil
	}
}

func trimSpaceHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String {
			return data, nil
		}
		return strings.TrimSpace(reflect.ValueOf(data).String()), nil
	}
}
