// Package restore copies the content of a backup folder back to the
// locations it was taken from.
package restore

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/arthur-debert/archwatch/pkg/copier"
	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/filesystem"
	"github.com/arthur-debert/archwatch/pkg/logging"
	"github.com/arthur-debert/archwatch/pkg/manifest"
	"github.com/arthur-debert/archwatch/pkg/paths"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Options configures a restore run.
type Options struct {
	// Source is the backup folder.
	Source string
	// Overwrite replaces files that already exist at their original location.
	Overwrite bool
	DryRun    bool
	// Root, when set, restores under this directory instead of "/".
	Root string
}

// Result describes what a run did.
type Result struct {
	Source   string
	DryRun   bool
	Restored []string
	Skipped  []string
	// Missing lists manifest entries absent from the backup folder.
	Missing []string
	// NoManifest is true when the folder had no manifest and every top-level
	// item was restored under the home directory.
	NoManifest bool
	Duration   time.Duration
}

// Pipeline runs restores.
type Pipeline struct {
	fs       afero.Fs
	resolver *paths.Resolver
	logger   zerolog.Logger
	now      func() time.Time
}

// New creates a restore pipeline.
func New(fs afero.Fs, resolver *paths.Resolver) *Pipeline {
	return &Pipeline{
		fs:       fs,
		resolver: resolver,
		logger:   logging.GetLogger("restore"),
		now:      time.Now,
	}
}

// Run restores every manifest entry of the backup folder. Each file found
// under an entry is mapped back through the entry's branch to its original
// absolute path.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	done := logging.LogOperationStart(p.logger, "restore")
	defer done()
	start := p.now()

	result := &Result{Source: opts.Source, DryRun: opts.DryRun}

	if err := p.checkOptions(opts); err != nil {
		return result, err
	}
	source := filepath.Clean(opts.Source)

	entries, err := p.entries(source, result)
	if err != nil {
		return result, err
	}

	c := copier.New(p.fs, copier.Policy{Overwrite: opts.Overwrite, PreserveLinks: true})
	for _, entry := range entries {
		base := filepath.Join(source, entry.Path)
		if _, err := filesystem.Lstat(p.fs, base); err != nil {
			if !os.IsNotExist(err) {
				return result, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", base).WithDetail("path", base)
			}
			p.logger.Warn().Str("path", entry.Path).Str("source", entry.Source).Msg("Manifest entry missing from backup folder")
			result.Missing = append(result.Missing, entry.Path)
			continue
		}

		err := afero.Walk(p.fs, base, func(path string, info os.FileInfo, walkErr error) error {
			if walkErr != nil {
				return errors.Wrapf(walkErr, errors.ErrFileAccess, "cannot read %s", path).WithDetail("path", path)
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if info.IsDir() || skipName(source, path) {
				return nil
			}

			rel, err := filepath.Rel(source, path)
			if err != nil {
				return errors.Wrapf(err, errors.ErrInternal, "cannot relate %s to %s", path, source)
			}
			// Nested entries (a watched home directory holds everything)
			// are restored by the most specific one.
			if owner(entries, rel) != entry.Path {
				return nil
			}
			target, err := p.resolver.Unclassify(paths.BackupRelative(entry.Branch, rel))
			if err != nil {
				return err
			}
			if opts.Root != "" {
				target = filepath.Join(opts.Root, target)
			}

			return p.restoreOne(ctx, c, path, target, opts, result)
		})
		if err != nil {
			result.Duration = p.now().Sub(start)
			return result, err
		}
	}

	result.Duration = p.now().Sub(start)
	p.logger.Info().
		Int("restored", len(result.Restored)).
		Int("skipped", len(result.Skipped)).
		Int("missing", len(result.Missing)).
		Dur("duration", result.Duration).
		Msg("Restore finished")
	return result, nil
}

func (p *Pipeline) checkOptions(opts Options) error {
	if opts.Source == "" || !filepath.IsAbs(opts.Source) {
		return errors.Newf(errors.ErrInvalidPath, "backup folder must be an absolute path, got %q", opts.Source).
			WithDetail("path", opts.Source)
	}
	if opts.Root != "" && !filepath.IsAbs(opts.Root) {
		return errors.Newf(errors.ErrInvalidPath, "restore root must be an absolute path, got %q", opts.Root).
			WithDetail("path", opts.Root)
	}

	info, err := p.fs.Stat(opts.Source)
	if err != nil || !info.IsDir() {
		return errors.Newf(errors.ErrBackupNotFound, "backup folder %s does not exist", opts.Source).
			WithDetail("path", opts.Source)
	}
	return nil
}

// entries returns the manifest entries of source sorted by path. A folder
// without manifest is read as if every top-level item came from home.
func (p *Pipeline) entries(source string, result *Result) ([]manifest.Entry, error) {
	m, found, err := manifest.Load(p.fs, source)
	if err != nil {
		return nil, err
	}

	if found {
		if m.Home != "" && m.Home != p.resolver.Home() {
			p.logger.Warn().
				Str("manifestHome", m.Home).
				Str("home", p.resolver.Home()).
				Msg("Backup was taken with a different home directory, restoring under the current one")
		}
		entries := append([]manifest.Entry(nil), m.Entries...)
		sort.SliceStable(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
		return entries, nil
	}

	p.logger.Warn().Str("source", source).Msg("No manifest found, restoring every item under the home directory")
	result.NoManifest = true

	infos, err := afero.ReadDir(p.fs, source)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read backup folder %s", source).
			WithDetail("path", source)
	}

	var entries []manifest.Entry
	for _, info := range infos {
		if skipName(source, filepath.Join(source, info.Name())) {
			continue
		}
		kind := manifest.KindFile
		if info.IsDir() {
			kind = manifest.KindDir
		}
		entries = append(entries, manifest.Entry{
			Path:   "./" + info.Name(),
			Branch: paths.BranchHome,
			Kind:   kind,
		})
	}
	return entries, nil
}

func (p *Pipeline) restoreOne(ctx context.Context, c copier.Copier, src, target string, opts Options, result *Result) error {
	if opts.DryRun {
		if !opts.Overwrite {
			if _, err := filesystem.Lstat(p.fs, target); err == nil {
				result.Skipped = append(result.Skipped, target)
				return nil
			}
		}
		result.Restored = append(result.Restored, target)
		return nil
	}

	stats, err := c.Copy(ctx, src, target)
	if err != nil {
		return err
	}
	if stats.Skipped > 0 {
		p.logger.Info().Str("path", target).Msg("Kept existing file")
		result.Skipped = append(result.Skipped, target)
		return nil
	}
	p.logger.Debug().Str("source", src).Str("path", target).Msg("Restored file")
	result.Restored = append(result.Restored, target)
	return nil
}

// owner returns the path of the most specific entry containing rel.
func owner(entries []manifest.Entry, rel string) string {
	c := paths.BackupRelative(paths.BranchHome, rel)
	best := ""
	for _, e := range entries {
		if (e.Path == "." || c.Path == e.Path || strings.HasPrefix(c.Path, e.Path+"/")) && len(e.Path) > len(best) {
			best = e.Path
		}
	}
	return best
}

// skipName reports whether path is bookkeeping of the backup folder rather
// than backed up content.
func skipName(source, path string) bool {
	name := filepath.Base(path)
	if strings.HasPrefix(name, filesystem.StagePrefix) {
		return true
	}
	return filepath.Dir(path) == source && name == manifest.FileName
}
