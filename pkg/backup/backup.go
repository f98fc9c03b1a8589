// Package backup copies every path of a watchlist into a backup folder,
// at the location given by path classification.
package backup

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/arthur-debert/archwatch/pkg/copier"
	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/logging"
	"github.com/arthur-debert/archwatch/pkg/manifest"
	"github.com/arthur-debert/archwatch/pkg/paths"
	"github.com/arthur-debert/archwatch/pkg/watchlist"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"
)

// Options configures a backup run.
type Options struct {
	Watchlist   string
	Destination string
	// UnwatchMissing drops vanished paths from the watchlist instead of
	// failing the run.
	UnwatchMissing bool
	// DryRun plans the run without copying or unwatching anything.
	DryRun bool
	// Jobs bounds the number of entries copied at once. Values below 1 mean 1.
	Jobs int
	// Progress, if set, is called after every copied entry.
	Progress func(Item)
}

// Item is one watched path and where it goes.
type Item struct {
	Source         string
	Destination    string
	Classification paths.Classification
	Kind           manifest.Kind
	Stats          copier.Stats

	index int
}

// Result describes what a run did. On error it still lists the work that
// completed before the failure.
type Result struct {
	Watchlist   string
	Destination string
	DryRun      bool
	Copied      []Item
	Planned     []Item
	Unwatched   []string
	Missing     []string
	Duplicates  []string
	Duration    time.Duration
}

// Totals sums the copy stats of all copied items.
func (r *Result) Totals() copier.Stats {
	var total copier.Stats
	for _, item := range r.Copied {
		total.Add(item.Stats)
	}
	return total
}

// Pipeline runs backups.
type Pipeline struct {
	fs       afero.Fs
	store    watchlist.Store
	resolver *paths.Resolver
	copier   copier.Copier
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates a backup pipeline.
func New(fs afero.Fs, store watchlist.Store, resolver *paths.Resolver, c copier.Copier) *Pipeline {
	return &Pipeline{
		fs:       fs,
		store:    store,
		resolver: resolver,
		copier:   c,
		logger:   logging.GetLogger("backup"),
		now:      time.Now,
	}
}

// Run backs up every entry of the watchlist into the destination folder.
//
// Entries are read once up front, so unwatching vanished paths while the run
// is going does not disturb iteration. A vanished path either gets unwatched
// (UnwatchMissing) or stops the run with PathMissing; copies already made
// stay in place. Every entry copied before the run ends is recorded in the
// folder's manifest, including when the run fails.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	done := logging.LogOperationStart(p.logger, "backup")
	defer done()
	start := p.now()

	result := &Result{
		Watchlist:   opts.Watchlist,
		Destination: opts.Destination,
		DryRun:      opts.DryRun,
	}

	if opts.Destination == "" || !filepath.IsAbs(opts.Destination) {
		return result, errors.Newf(errors.ErrInvalidPath, "backup folder must be an absolute path, got %q", opts.Destination).
			WithDetail("path", opts.Destination)
	}
	dest := filepath.Clean(opts.Destination)

	entries, err := p.store.Entries(opts.Watchlist)
	if err != nil {
		return result, err
	}

	p.logger.Info().
		Str("watchlist", opts.Watchlist).
		Str("destination", dest).
		Int("entries", len(entries)).
		Bool("unwatchMissing", opts.UnwatchMissing).
		Bool("dryRun", opts.DryRun).
		Msg("Starting backup")

	jobs := opts.Jobs
	if jobs < 1 {
		jobs = 1
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	var (
		mu     sync.Mutex
		copied []Item
		runErr error
		seen   = make(map[string]bool, len(entries))
	)

	for i, entry := range entries {
		if gctx.Err() != nil {
			break
		}
		if seen[entry] {
			result.Duplicates = append(result.Duplicates, entry)
			continue
		}
		seen[entry] = true

		info, err := p.fs.Stat(entry)
		if err != nil && !os.IsNotExist(err) {
			runErr = errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", entry).WithDetail("path", entry)
			break
		}

		if err != nil {
			if !opts.UnwatchMissing {
				result.Missing = append(result.Missing, entry)
				runErr = errors.Newf(errors.ErrPathMissing,
					"watched path %s from watchlist %q no longer exists", entry, opts.Watchlist).
					WithDetail("path", entry).
					WithDetail("watchlist", opts.Watchlist)
				break
			}
			if opts.DryRun {
				result.Missing = append(result.Missing, entry)
				continue
			}
			if err := p.store.RemoveLine(opts.Watchlist, entry); err != nil {
				runErr = err
				break
			}
			p.logger.Info().Str("watchlist", opts.Watchlist).Str("path", entry).Msg("Unwatched missing path")
			result.Unwatched = append(result.Unwatched, entry)
			continue
		}

		c, err := p.resolver.Classify(entry)
		if err != nil {
			runErr = err
			break
		}

		item := Item{
			Source:         entry,
			Destination:    filepath.Join(dest, c.Path),
			Classification: c,
			Kind:           manifest.KindFile,
			index:          i,
		}
		if info.IsDir() {
			item.Kind = manifest.KindDir
		}

		if opts.DryRun {
			result.Planned = append(result.Planned, item)
			continue
		}

		g.Go(func() error {
			stats, err := p.copier.Copy(gctx, item.Source, item.Destination)
			if err != nil {
				return err
			}
			item.Stats = stats

			p.logger.Debug().
				Str("source", item.Source).
				Str("destination", item.Destination).
				Int("files", stats.Files).
				Msg("Backed up path")

			mu.Lock()
			defer mu.Unlock()
			copied = append(copied, item)
			if opts.Progress != nil {
				opts.Progress(item)
			}
			return nil
		})
	}

	copyErr := g.Wait()

	sort.Slice(copied, func(i, j int) bool { return copied[i].index < copied[j].index })
	result.Copied = copied

	if len(copied) > 0 {
		if err := p.record(dest, opts.Watchlist, copied); err != nil && copyErr == nil && runErr == nil {
			runErr = err
		}
	}

	switch {
	case runErr != nil:
		if copyErr != nil {
			p.logger.Warn().Err(copyErr).Msg("Copy failed while the run was already stopping")
		}
	case copyErr != nil:
		runErr = copyErr
	case ctx.Err() != nil:
		runErr = ctx.Err()
	}

	result.Duration = p.now().Sub(start)

	event := p.logger.Info()
	if runErr != nil {
		event = p.logger.Warn().Err(runErr)
	}
	event.
		Int("copied", len(result.Copied)).
		Int("unwatched", len(result.Unwatched)).
		Dur("duration", result.Duration).
		Msg("Backup finished")

	return result, runErr
}

// record upserts the copied items into the destination's manifest.
func (p *Pipeline) record(dest, watchlistName string, items []Item) error {
	m, found, err := manifest.Load(p.fs, dest)
	if err != nil {
		return err
	}
	if !found {
		m = manifest.New(p.resolver.Home())
	}
	if m.Home != p.resolver.Home() {
		p.logger.Warn().
			Str("manifestHome", m.Home).
			Str("home", p.resolver.Home()).
			Msg("Backup folder was written with a different home directory")
		m.Home = p.resolver.Home()
	}

	now := p.now()
	for _, item := range items {
		replaced := m.Upsert(manifest.Entry{
			Source:    item.Source,
			Path:      item.Classification.Path,
			Branch:    item.Classification.Branch,
			Kind:      item.Kind,
			Watchlist: watchlistName,
			BackedUp:  now,
		})
		if replaced != nil && replaced.Source != item.Source {
			p.logger.Warn().
				Str("path", item.Classification.Path).
				Str("previous", replaced.Source).
				Str("current", item.Source).
				Msg("Two watched paths share a backup location")
		}
	}
	m.Updated = now
	m.Version = manifest.CurrentVersion

	return manifest.Save(p.fs, dest, m)
}
