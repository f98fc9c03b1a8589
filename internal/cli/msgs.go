package cli

import (
	"embed"
	"strings"

	"github.com/arthur-debert/archwatch/pkg/style"
)

// Short messages (one-liners)
const (
	// Command descriptions
	MsgRootShort       = "Back up the files you care about, wherever they live"
	MsgVersionShort    = "Print version information"
	MsgCreateShort     = "Create an empty watchlist"
	MsgDeleteShort     = "Delete a watchlist"
	MsgListsShort      = "List watchlists"
	MsgWatchShort      = "Add paths to a watchlist"
	MsgUnwatchShort    = "Remove paths from a watchlist"
	MsgShowShort       = "Show the paths of a watchlist"
	MsgPruneShort      = "Drop paths that no longer exist from a watchlist"
	MsgBackupShort     = "Copy a watchlist into the backup folder"
	MsgRestoreShort    = "Copy a backup folder back to the original locations"
	MsgGenConfigShort  = "Print or write the default configuration"
	MsgCompletionShort = "Generate shell completion script"
	MsgManShort        = "Generate man pages into a directory"

	// Status messages
	MsgWatchlistCreated = style.DoneMark + " created watchlist [bold]%s[/bold]"
	MsgWatchlistDeleted = style.DoneMark + " deleted watchlist [bold]%s[/bold]"
	MsgConfigWritten    = style.DoneMark + " wrote [path]%s[/path]"
	MsgManWritten       = style.DoneMark + " wrote man pages to [path]%s[/path]"
	MsgBackingUp        = "Backing up"

	// Error messages
	MsgErrInitPaths   = "failed to initialize paths: %w"
	MsgErrConfigExist = "config file %s already exists"

	// Flag descriptions
	MsgFlagVerbose        = "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)"
	MsgFlagDryRun         = "Preview changes without executing them"
	MsgFlagConfig         = "Config file (default is $XDG_CONFIG_HOME/archwatch/config.toml)"
	MsgFlagWatchlist      = "Watchlist to use (default from watchlist.default)"
	MsgFlagBackupDir      = "Backup folder (default from backup.folder)"
	MsgFlagUnwatchMissing = "Drop watched paths that no longer exist instead of failing"
	MsgFlagJobs           = "Number of paths copied at once, or \"auto\" for one per CPU"
	MsgFlagOverwrite      = "Replace files that already exist"
	MsgFlagRoot           = "Restore under this directory instead of /"
	MsgFlagWrite          = "Write the config file instead of printing it"

	// Version output
	MsgVersionFormat = "archwatch version %s\n"
	MsgCommitFormat  = "Commit: %s\n"
	MsgBuiltFormat   = "Built:  %s\n"
)

// Long messages from embedded files
var (
	//go:embed msgs/root-long.txt
	msgRootLongRaw string
	MsgRootLong    = strings.TrimSpace(msgRootLongRaw)

	//go:embed msgs/backup-long.txt
	msgBackupLongRaw string
	MsgBackupLong    = strings.TrimSpace(msgBackupLongRaw)

	//go:embed msgs/backup-example.txt
	msgBackupExampleRaw string
	MsgBackupExample    = strings.TrimRight(msgBackupExampleRaw, "\n")

	//go:embed msgs/restore-long.txt
	msgRestoreLongRaw string
	MsgRestoreLong    = strings.TrimSpace(msgRestoreLongRaw)

	//go:embed msgs/restore-example.txt
	msgRestoreExampleRaw string
	MsgRestoreExample    = strings.TrimRight(msgRestoreExampleRaw, "\n")

	//go:embed msgs/watch-example.txt
	msgWatchExampleRaw string
	MsgWatchExample    = strings.TrimRight(msgWatchExampleRaw, "\n")
)

// helpTopics holds the documents shown by "archwatch help <topic>".
//
//go:embed topics
var helpTopics embed.FS
