package style

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/arthur-debert/archwatch/pkg/backup"
	"github.com/arthur-debert/archwatch/pkg/commands"
	"github.com/arthur-debert/archwatch/pkg/paths"
	"github.com/arthur-debert/archwatch/pkg/restore"
	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"
)

// Renderer turns command results into text. Output is written as markup and
// either styled or stripped, depending on the renderer.
type Renderer struct {
	markup *MarkupParser
}

// NewTerminalRenderer creates a renderer with colors and text styles.
func NewTerminalRenderer() *Renderer {
	return &Renderer{markup: NewMarkupParser()}
}

// NewPlainRenderer creates a renderer without any styling.
func NewPlainRenderer() *Renderer {
	return &Renderer{markup: NewPlainParser()}
}

// NewRenderer picks the terminal renderer when w can show colors.
func NewRenderer(w io.Writer) *Renderer {
	if SupportsColor(w) {
		return NewTerminalRenderer()
	}
	return NewPlainRenderer()
}

// IsTerminal reports whether w is an interactive terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// SupportsColor reports whether styled output should be written to w.
// NO_COLOR disables colors even on a terminal.
func SupportsColor(w io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !IsTerminal(w) {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}

type lines struct {
	b strings.Builder
}

func (l *lines) add(format string, args ...interface{}) {
	fmt.Fprintf(&l.b, format, args...)
	l.b.WriteString("\n")
}

func (r *Renderer) finish(l *lines) string {
	return r.markup.Render(strings.TrimRight(l.b.String(), "\n"))
}

func dryRunNotice(l *lines, dryRun bool) {
	if dryRun {
		l.add("")
		l.add("[warning]DRY RUN[/warning] [muted]no changes were made[/muted]")
	}
}

func branchTag(b paths.Branch) string {
	switch b {
	case paths.BranchHome:
		return HomeMark
	case paths.BranchRoot:
		return RootMark
	default:
		return " "
	}
}

// RenderWatchlists renders the lists command.
func (r *Renderer) RenderWatchlists(result *commands.ListResult) string {
	var l lines
	if len(result.Watchlists) == 0 {
		l.add("[muted]No watchlists yet. Create one with: archwatch create <name>[/muted]")
		return r.finish(&l)
	}
	l.add("[subtitle]Watchlists[/subtitle]")
	for _, w := range result.Watchlists {
		marker := ""
		if w.IsDefault {
			marker = " [info](default)[/info]"
		}
		l.add("  [bold]%s[/bold]%s [muted]%d %s[/muted]", w.Name, marker, w.Entries, plural(w.Entries, "path", "paths"))
	}
	return r.finish(&l)
}

// RenderWatch renders the watch command.
func (r *Renderer) RenderWatch(result *commands.WatchResult, dryRun bool) string {
	var l lines
	for _, p := range result.Added {
		l.add(DoneMark+" watching [path]%s[/path] in [bold]%s[/bold]", p, result.Watchlist)
	}
	for _, p := range result.AlreadyWatched {
		l.add(NoteMark+" [path]%s[/path] [muted]already watched[/muted]", p)
	}
	dryRunNotice(&l, dryRun)
	return r.finish(&l)
}

// RenderUnwatch renders the unwatch command.
func (r *Renderer) RenderUnwatch(result *commands.UnwatchResult, dryRun bool) string {
	var l lines
	for _, p := range result.Removed {
		l.add(DoneMark+" no longer watching [path]%s[/path] in [bold]%s[/bold]", p, result.Watchlist)
	}
	for _, p := range result.NotWatched {
		l.add(NoteMark+" [path]%s[/path] [muted]was not watched[/muted]", p)
	}
	dryRunNotice(&l, dryRun)
	return r.finish(&l)
}

// RenderShow renders the show command.
func (r *Renderer) RenderShow(result *commands.ShowResult) string {
	var l lines
	l.add("[subtitle]%s[/subtitle]", result.Watchlist)
	if len(result.Entries) == 0 {
		l.add("  [muted]nothing watched[/muted]")
		return r.finish(&l)
	}
	for _, e := range result.Entries {
		if e.Exists {
			l.add("  %s [path]%s[/path]", branchTag(e.Classification.Branch), e.Path)
		} else {
			l.add("  "+MissingMark+" [path]%s[/path] [warning]missing[/warning]", e.Path)
		}
	}
	if missing := len(result.Missing()); missing > 0 {
		l.add("")
		l.add("[muted]%d missing %s, drop with: archwatch prune[/muted]", missing, plural(missing, "path", "paths"))
	}
	return r.finish(&l)
}

// RenderPrune renders the prune command.
func (r *Renderer) RenderPrune(result *commands.PruneResult, dryRun bool) string {
	var l lines
	if len(result.Removed) == 0 {
		l.add("[muted]Nothing to prune in %s[/muted]", result.Watchlist)
	}
	for _, p := range result.Removed {
		l.add(DroppedMark+" unwatched missing [path]%s[/path]", p)
	}
	dryRunNotice(&l, dryRun)
	return r.finish(&l)
}

// RenderBackup renders the outcome of a backup, also a failed one.
func (r *Renderer) RenderBackup(result *backup.Result) string {
	var l lines
	for _, item := range result.Planned {
		l.add(PlanMark+" [path]%s[/path] → [path]%s[/path]", item.Source, item.Destination)
	}
	for _, p := range result.Unwatched {
		l.add(DroppedMark+" unwatched missing [path]%s[/path]", p)
	}
	for _, p := range result.Missing {
		if result.DryRun {
			l.add(DroppedMark+" would unwatch missing [path]%s[/path]", p)
		}
	}

	if !result.DryRun {
		totals := result.Totals()
		l.add(DoneMark+" backed up %d %s from [bold]%s[/bold] to [path]%s[/path]",
			len(result.Copied), plural(len(result.Copied), "path", "paths"), result.Watchlist, result.Destination)
		l.add("  [muted]%d files, %s, %s[/muted]", totals.Files, humanBytes(totals.Bytes), result.Duration.Round(1e6))
	}
	dryRunNotice(&l, result.DryRun)
	return r.finish(&l)
}

// RenderRestore renders the outcome of a restore.
func (r *Renderer) RenderRestore(result *restore.Result) string {
	var l lines
	if result.NoManifest {
		l.add(DroppedMark+" [muted]no manifest in %s, restored everything under the home directory[/muted]", result.Source)
	}
	for _, p := range result.Skipped {
		l.add(NoteMark+" kept existing [path]%s[/path]", p)
	}
	for _, p := range result.Missing {
		l.add(MissingMark+" [path]%s[/path] [warning]missing from backup[/warning]", p)
	}
	verb := "restored"
	if result.DryRun {
		verb = "would restore"
	}
	l.add(DoneMark+" %s %d %s from [path]%s[/path]", verb, len(result.Restored),
		plural(len(result.Restored), "file", "files"), result.Source)
	if len(result.Skipped) > 0 {
		l.add("  [muted]%d existing %s kept, use --overwrite to replace[/muted]", len(result.Skipped),
			plural(len(result.Skipped), "file", "files"))
	}
	dryRunNotice(&l, result.DryRun)
	return r.finish(&l)
}

// RenderError renders an error for the terminal.
func (r *Renderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	return r.markup.Render("[error]Error:[/error] ") + err.Error()
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}

// Markup renders a markup string with this renderer's styling.
func (r *Renderer) Markup(text string) string {
	return r.markup.Render(text)
}
