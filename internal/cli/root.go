package cli

import (
	"fmt"
	"os"

	"github.com/arthur-debert/archwatch/internal/version"
	"github.com/arthur-debert/archwatch/pkg/cobrax/topics"
	"github.com/arthur-debert/archwatch/pkg/commands"
	"github.com/arthur-debert/archwatch/pkg/config"
	"github.com/arthur-debert/archwatch/pkg/filesystem"
	"github.com/arthur-debert/archwatch/pkg/logging"
	"github.com/arthur-debert/archwatch/pkg/paths"
	"github.com/arthur-debert/archwatch/pkg/style"
	"github.com/rs/zerolog/log"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

const (
	// configKeyAnnotation ties a flag to the configuration key it overrides.
	configKeyAnnotation = "archwatch_config_key"
	// standaloneAnnotation marks commands that need no paths or configuration.
	standaloneAnnotation = "archwatch_standalone"
)

// app carries what the commands share once flags are parsed.
type app struct {
	verbosity  int
	dryRun     bool
	configFile string

	fs  afero.Fs
	env *commands.Env
}

// NewRootCmd creates and returns the root command
func NewRootCmd() *cobra.Command {
	return newRootCmd(filesystem.NewOS())
}

func newRootCmd(fs afero.Fs) *cobra.Command {
	a := &app{fs: fs}

	rootCmd := &cobra.Command{
		Use:     "archwatch",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if _, ok := cmd.Annotations[standaloneAnnotation]; ok {
				logging.Setup(logging.Options{Verbosity: a.verbosity})
				return nil
			}
			if err := a.setup(cmd); err != nil {
				return err
			}
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		DisableAutoGenTag: true,
	}

	// Global flags
	rootCmd.PersistentFlags().CountVarP(&a.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().BoolVar(&a.dryRun, "dry-run", false, MsgFlagDryRun)
	rootCmd.PersistentFlags().StringVar(&a.configFile, "config", "", MsgFlagConfig)

	rootCmd.AddGroup(&cobra.Group{ID: "watchlists", Title: "Watchlists:"})
	rootCmd.AddGroup(&cobra.Group{ID: "backups", Title: "Backups:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "Misc:"})

	rootCmd.AddCommand(newCreateCmd(a))
	rootCmd.AddCommand(newDeleteCmd(a))
	rootCmd.AddCommand(newListsCmd(a))
	rootCmd.AddCommand(newWatchCmd(a))
	rootCmd.AddCommand(newUnwatchCmd(a))
	rootCmd.AddCommand(newShowCmd(a))
	rootCmd.AddCommand(newPruneCmd(a))
	rootCmd.AddCommand(newBackupCmd(a))
	rootCmd.AddCommand(newRestoreCmd(a))
	rootCmd.AddCommand(newGenConfigCmd(a))
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())
	rootCmd.AddCommand(newManCmd())

	var renderer topics.Renderer = &topics.PlainRenderer{}
	if style.SupportsColor(os.Stdout) {
		renderer = topics.NewGlamourRenderer()
	}
	if _, err := topics.Install(rootCmd, helpTopics, "topics", topics.Options{
		Renderer:    renderer,
		Annotations: map[string]string{standaloneAnnotation: "true"},
	}); err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// setup resolves paths and configuration and starts logging. Shell
// completion skips PersistentPreRun, so completion functions call it too.
func (a *app) setup(cmd *cobra.Command) error {
	if a.env != nil {
		return nil
	}

	p, err := paths.New(paths.Options{})
	if err != nil {
		return fmt.Errorf(MsgErrInitPaths, err)
	}

	cfg, err := config.Load(config.LoadOptions{
		ConfigDir: p.ConfigDir(),
		File:      a.configFile,
		Overrides: flagOverrides(cmd),
	})
	if err != nil {
		return err
	}

	logging.Setup(logging.Options{
		Verbosity:   a.verbosity,
		FileLogging: cfg.Logging.File,
	})

	a.env = commands.NewEnv(a.fs, p, cfg)
	return nil
}

// flagOverrides collects the changed flags that carry a config key.
func flagOverrides(cmd *cobra.Command) map[string]interface{} {
	overrides := map[string]interface{}{}
	cmd.Flags().Visit(func(f *pflag.Flag) {
		if keys, ok := f.Annotations[configKeyAnnotation]; ok && len(keys) == 1 {
			overrides[keys[0]] = f.Value.String()
		}
	})
	return overrides
}

// bindConfig marks flag as an override of the configuration key.
func bindConfig(cmd *cobra.Command, flag, key string) {
	_ = cmd.Flags().SetAnnotation(flag, configKeyAnnotation, []string{key})
}

func (a *app) renderer(cmd *cobra.Command) *style.Renderer {
	return style.NewRenderer(cmd.OutOrStdout())
}

// watchlistNamesCompletion completes watchlist names for arguments and -w.
func (a *app) watchlistNamesCompletion(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
	if err := a.setup(cmd); err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	names, err := a.env.Store.List()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	return names, cobra.ShellCompDirectiveNoFileComp
}
