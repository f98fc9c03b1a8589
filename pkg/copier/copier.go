// Package copier implements the copy capability used by backup and restore:
// a single file is copied to its destination, a directory is copied
// recursively. Every destination file is staged and renamed into place.
package copier

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/filesystem"
	"github.com/arthur-debert/archwatch/pkg/logging"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Copier copies a file or a directory tree from src to dst.
type Copier interface {
	Copy(ctx context.Context, src, dst string) (Stats, error)
}

// Policy controls how files are copied.
type Policy struct {
	// Overwrite replaces existing destination files; when false they are skipped.
	Overwrite bool

	// PreserveLinks recreates a symlink src as a link instead of copying
	// what it points to.
	PreserveLinks bool
}

// Stats summarizes a copy.
type Stats struct {
	Files    int
	Dirs     int
	Symlinks int
	Skipped  int
	Bytes    int64
}

// Add accumulates other into s.
func (s *Stats) Add(other Stats) {
	s.Files += other.Files
	s.Dirs += other.Dirs
	s.Symlinks += other.Symlinks
	s.Skipped += other.Skipped
	s.Bytes += other.Bytes
}

// FSCopier copies within a single afero filesystem.
type FSCopier struct {
	fs     afero.Fs
	policy Policy
	logger zerolog.Logger
}

// New creates a copier over fs with the given overwrite policy.
func New(fs afero.Fs, policy Policy) *FSCopier {
	return &FSCopier{
		fs:     fs,
		policy: policy,
		logger: logging.GetLogger("copier"),
	}
}

// Copy copies src to dst, creating intermediate directories as needed.
// A src symlink is followed unless the policy preserves links; symlinks found
// inside a directory tree are always recreated as links.
func (c *FSCopier) Copy(ctx context.Context, src, dst string) (Stats, error) {
	var stats Stats

	if c.policy.PreserveLinks {
		if linfo, err := filesystem.Lstat(c.fs, src); err == nil && linfo.Mode()&os.ModeSymlink != 0 {
			err = c.copySymlink(src, dst, &stats)
			return stats, err
		}
	}

	info, err := c.fs.Stat(src)
	if err != nil {
		return stats, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", src).
			WithDetail("path", src)
	}

	if !info.IsDir() {
		err = c.copyFile(src, dst, info, &stats)
		return stats, err
	}

	// A symlinked directory is walked through its target.
	walkRoot := src
	if linfo, err := filesystem.Lstat(c.fs, src); err == nil && linfo.Mode()&os.ModeSymlink != 0 {
		walkRoot = src + string(filepath.Separator)
	}

	cleanDst := filepath.Clean(dst)
	err = afero.Walk(c.fs, walkRoot, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return errors.Wrapf(walkErr, errors.ErrFileAccess, "cannot read %s", path).
				WithDetail("path", path)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return errors.Wrapf(err, errors.ErrInternal, "cannot relate %s to %s", path, src)
		}
		target := filepath.Join(dst, rel)

		switch mode := info.Mode(); {
		case mode.IsDir() && isWithin(filepath.Clean(path), cleanDst):
			// The destination lives inside the tree being copied.
			c.logger.Debug().Str("path", path).Msg("Skipping copy destination inside source tree")
			return filepath.SkipDir
		case mode.IsDir():
			if err := c.fs.MkdirAll(target, mode.Perm()|0700); err != nil {
				return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory %s", target).
					WithDetail("path", target)
			}
			stats.Dirs++
			return nil
		case mode&os.ModeSymlink != 0:
			return c.copySymlink(path, target, &stats)
		case mode.IsRegular():
			return c.copyFile(path, target, info, &stats)
		default:
			c.logger.Debug().Str("path", path).Str("mode", mode.String()).Msg("Skipping special file")
			return nil
		}
	})
	return stats, err
}

func (c *FSCopier) copyFile(src, dst string, info os.FileInfo, stats *Stats) error {
	if !c.policy.Overwrite {
		exists, err := filesystem.Exists(c.fs, dst)
		if err != nil {
			return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", dst).WithDetail("path", dst)
		}
		if exists {
			c.logger.Debug().Str("path", dst).Msg("Destination exists, skipping")
			stats.Skipped++
			return nil
		}
	}

	in, err := c.fs.Open(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot open %s", src).WithDetail("path", src)
	}
	defer in.Close()

	n, err := filesystem.WriteAtomic(c.fs, dst, in, info.Mode().Perm())
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileCopy, "cannot copy %s to %s", src, dst).
			WithDetail("source", src).
			WithDetail("destination", dst)
	}

	if err := c.fs.Chtimes(dst, info.ModTime(), info.ModTime()); err != nil {
		c.logger.Debug().Err(err).Str("path", dst).Msg("Could not preserve modification time")
	}

	c.logger.Trace().Str("source", src).Str("destination", dst).Int64("bytes", n).Msg("Copied file")
	stats.Files++
	stats.Bytes += n
	return nil
}

func (c *FSCopier) copySymlink(src, dst string, stats *Stats) error {
	linker, ok := c.fs.(afero.Symlinker)
	if !ok {
		c.logger.Debug().Str("path", src).Msg("Filesystem has no symlink support, skipping link")
		stats.Skipped++
		return nil
	}

	target, err := linker.ReadlinkIfPossible(src)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read link %s", src).WithDetail("path", src)
	}

	if _, err := filesystem.Lstat(c.fs, dst); err == nil {
		if !c.policy.Overwrite {
			stats.Skipped++
			return nil
		}
		if err := c.fs.Remove(dst); err != nil {
			return errors.Wrapf(err, errors.ErrFileWrite, "cannot replace %s", dst).WithDetail("path", dst)
		}
	}

	if err := c.fs.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create directory %s", filepath.Dir(dst))
	}
	if err := linker.SymlinkIfPossible(target, dst); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create link %s", dst).WithDetail("path", dst)
	}
	stats.Symlinks++
	return nil
}

func isWithin(path, dir string) bool {
	return path == dir || strings.HasPrefix(path, dir+string(filepath.Separator))
}
