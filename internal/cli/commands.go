package cli

import (
	"fmt"
	"os"

	"github.com/arthur-debert/archwatch/internal/version"
	"github.com/arthur-debert/archwatch/pkg/backup"
	"github.com/arthur-debert/archwatch/pkg/commands"
	"github.com/arthur-debert/archwatch/pkg/config"
	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/filesystem"
	"github.com/arthur-debert/archwatch/pkg/style"
	"github.com/pterm/pterm"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

func newCreateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "create <name>",
		Short:   MsgCreateShort,
		GroupID: "watchlists",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := commands.CreateWatchlist(a.env, args[0]); err != nil {
				return err
			}
			a.printf(cmd, MsgWatchlistCreated, args[0])
			return nil
		},
	}
}

func newDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:               "delete <name>",
		Short:             MsgDeleteShort,
		GroupID:           "watchlists",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: a.watchlistNamesCompletion,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := commands.DeleteWatchlist(a.env, args[0]); err != nil {
				return err
			}
			a.printf(cmd, MsgWatchlistDeleted, args[0])
			return nil
		},
	}
}

func newListsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "lists",
		Short:   MsgListsShort,
		GroupID: "watchlists",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.ListWatchlists(a.env)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.renderer(cmd).RenderWatchlists(result))
			return nil
		},
	}
}

func newWatchCmd(a *app) *cobra.Command {
	var watchlist string
	cmd := &cobra.Command{
		Use:     "watch <path>...",
		Short:   MsgWatchShort,
		Example: MsgWatchExample,
		GroupID: "watchlists",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.Watch(a.env, commands.WatchOptions{
				Watchlist: watchlist,
				Paths:     args,
				DryRun:    a.dryRun,
			})
			if result != nil {
				fmt.Fprintln(cmd.OutOrStdout(), a.renderer(cmd).RenderWatch(result, a.dryRun))
			}
			return err
		},
	}
	a.watchlistFlag(cmd, &watchlist)
	return cmd
}

func newUnwatchCmd(a *app) *cobra.Command {
	var watchlist string
	cmd := &cobra.Command{
		Use:     "unwatch <path>...",
		Short:   MsgUnwatchShort,
		GroupID: "watchlists",
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.Unwatch(a.env, commands.UnwatchOptions{
				Watchlist: watchlist,
				Paths:     args,
				DryRun:    a.dryRun,
			})
			if result != nil {
				fmt.Fprintln(cmd.OutOrStdout(), a.renderer(cmd).RenderUnwatch(result, a.dryRun))
			}
			return err
		},
	}
	a.watchlistFlag(cmd, &watchlist)
	return cmd
}

func newShowCmd(a *app) *cobra.Command {
	var watchlist string
	cmd := &cobra.Command{
		Use:     "show",
		Short:   MsgShowShort,
		GroupID: "watchlists",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.Show(a.env, watchlist)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), a.renderer(cmd).RenderShow(result))
			return nil
		},
	}
	a.watchlistFlag(cmd, &watchlist)
	return cmd
}

func newPruneCmd(a *app) *cobra.Command {
	var watchlist string
	cmd := &cobra.Command{
		Use:     "prune",
		Short:   MsgPruneShort,
		GroupID: "watchlists",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.Prune(a.env, watchlist, a.dryRun)
			if result != nil {
				fmt.Fprintln(cmd.OutOrStdout(), a.renderer(cmd).RenderPrune(result, a.dryRun))
			}
			return err
		},
	}
	a.watchlistFlag(cmd, &watchlist)
	return cmd
}

func newBackupCmd(a *app) *cobra.Command {
	var (
		watchlist string
		dir       string
	)
	cmd := &cobra.Command{
		Use:     "backup",
		Short:   MsgBackupShort,
		Long:    MsgBackupLong,
		Example: MsgBackupExample,
		GroupID: "backups",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := commands.BackupOptions{
				Watchlist:   watchlist,
				Destination: dir,
				DryRun:      a.dryRun,
			}

			var bar *pterm.ProgressbarPrinter
			if !a.dryRun && style.IsTerminal(os.Stderr) {
				opts.Started = func(entries int) {
					if entries == 0 {
						return
					}
					started, err := pterm.DefaultProgressbar.
						WithTotal(entries).
						WithWriter(os.Stderr).
						WithRemoveWhenDone(true).
						Start(MsgBackingUp)
					if err != nil {
						log.Debug().Err(err).Msg("Progress bar unavailable")
						return
					}
					bar = started
				}
				opts.Progress = func(item backup.Item) {
					if bar != nil {
						bar.UpdateTitle(item.Source)
						bar.Increment()
					}
				}
			}

			result, err := commands.Backup(cmd.Context(), a.env, opts)
			if bar != nil {
				_, _ = bar.Stop()
			}
			if result != nil {
				fmt.Fprintln(cmd.OutOrStdout(), a.renderer(cmd).RenderBackup(result))
			}
			return err
		},
	}
	a.watchlistFlag(cmd, &watchlist)
	cmd.Flags().StringVarP(&dir, "dir", "d", "", MsgFlagBackupDir)
	cmd.Flags().Bool("unwatch-missing", true, MsgFlagUnwatchMissing)
	cmd.Flags().StringP("jobs", "j", "1", MsgFlagJobs)
	bindConfig(cmd, "unwatch-missing", "backup.unwatch_missing")
	bindConfig(cmd, "jobs", "backup.jobs")
	return cmd
}

func newRestoreCmd(a *app) *cobra.Command {
	var (
		dir  string
		root string
	)
	cmd := &cobra.Command{
		Use:     "restore",
		Short:   MsgRestoreShort,
		Long:    MsgRestoreLong,
		Example: MsgRestoreExample,
		GroupID: "backups",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := commands.Restore(cmd.Context(), a.env, commands.RestoreOptions{
				Source: dir,
				Root:   root,
				DryRun: a.dryRun,
			})
			if result != nil {
				fmt.Fprintln(cmd.OutOrStdout(), a.renderer(cmd).RenderRestore(result))
			}
			return err
		},
	}
	cmd.Flags().StringVarP(&dir, "dir", "d", "", MsgFlagBackupDir)
	cmd.Flags().StringVar(&root, "root", "", MsgFlagRoot)
	cmd.Flags().Bool("overwrite", false, MsgFlagOverwrite)
	bindConfig(cmd, "overwrite", "restore.overwrite")
	return cmd
}

func newGenConfigCmd(a *app) *cobra.Command {
	var write bool
	cmd := &cobra.Command{
		Use:     "genconfig",
		Short:   MsgGenConfigShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !write {
				fmt.Fprint(cmd.OutOrStdout(), config.DefaultContent())
				return nil
			}

			path := a.env.Paths.ConfigFilePath()
			exists, err := filesystem.Exists(a.env.FS, path)
			if err != nil {
				return err
			}
			if exists {
				return errors.Newf(errors.ErrInvalidInput, MsgErrConfigExist, path).WithDetail("path", path)
			}
			if a.dryRun {
				return nil
			}
			if err := a.env.FS.MkdirAll(a.env.Paths.ConfigDir(), 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", a.env.Paths.ConfigDir())
			}
			if err := writeFile(a, path, config.DefaultContent()); err != nil {
				return err
			}
			a.printf(cmd, MsgConfigWritten, path)
			return nil
		},
	}
	cmd.Flags().BoolVar(&write, "write", false, MsgFlagWrite)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Annotations: map[string]string{standaloneAnnotation: "true"},
		Short:       MsgVersionShort,
		GroupID:     "misc",
		Args:        cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, MsgVersionFormat, version.Version)
			if version.Commit != "" {
				fmt.Fprintf(out, MsgCommitFormat, version.Commit)
			}
			if version.Date != "" {
				fmt.Fprintf(out, MsgBuiltFormat, version.Date)
			}
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Annotations:           map[string]string{standaloneAnnotation: "true"},
		Short:                 MsgCompletionShort,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}

func newManCmd() *cobra.Command {
	return &cobra.Command{
		Use:         "man <dir>",
		Annotations: map[string]string{standaloneAnnotation: "true"},
		Short:       MsgManShort,
		GroupID:     "misc",
		Args:        cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(args[0], 0755); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create %s", args[0])
			}
			if err := doc.GenManTree(cmd.Root(), ManHeader(), args[0]); err != nil {
				return errors.Wrap(err, errors.ErrFileWrite, "cannot write man pages")
			}
			fmt.Fprintln(cmd.OutOrStdout(), style.NewRenderer(cmd.OutOrStdout()).Markup(fmt.Sprintf(MsgManWritten, args[0])))
			return nil
		},
	}
}

// ManHeader is the header shared by every generated man page.
func ManHeader() *doc.GenManHeader {
	return &doc.GenManHeader{
		Title:   "ARCHWATCH",
		Section: "1",
		Source:  "archwatch " + version.String(),
		Manual:  "archwatch manual",
	}
}

func (a *app) watchlistFlag(cmd *cobra.Command, target *string) {
	cmd.Flags().StringVarP(target, "watchlist", "w", "", MsgFlagWatchlist)
	_ = cmd.RegisterFlagCompletionFunc("watchlist", a.watchlistNamesCompletion)
}

func (a *app) printf(cmd *cobra.Command, format string, args ...interface{}) {
	fmt.Fprintln(cmd.OutOrStdout(), a.renderer(cmd).Markup(fmt.Sprintf(format, args...)))
}

func writeFile(a *app, path, content string) error {
	f, err := a.env.FS.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create %s", path).WithDetail("path", path)
	}
	if _, err := f.WriteString(content); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write %s", path).WithDetail("path", path)
	}
	return f.Close()
}
