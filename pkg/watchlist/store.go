package watchlist

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/filesystem"
	"github.com/arthur-debert/archwatch/pkg/logging"
	"github.com/arthur-debert/archwatch/pkg/paths"
	"github.com/rs/zerolog"
	"github.com/spf13/afero"
)

// Store manages watchlists and their membership.
type Store interface {
	// Create makes a new, empty watchlist. It fails if the name is taken.
	Create(name string) error

	// Delete removes a watchlist.
	Delete(name string) error

	// List returns the names of all watchlists, sorted.
	List() ([]string, error)

	// Exists reports whether a watchlist is present.
	Exists(name string) (bool, error)

	// Entries returns the watched paths of a watchlist in file order.
	Entries(name string) ([]string, error)

	// Contains reports whether path is watched by the watchlist.
	Contains(name, path string) (bool, error)

	// Append adds an existing path to the end of a watchlist.
	Append(name, path string) error

	// Remove drops every line equal to path from a watchlist. The path must
	// exist on disk.
	Remove(name, path string) error

	// RemoveLine is Remove without the on-disk check, for paths that vanished.
	RemoveLine(name, path string) error

	// EnsureDefault creates the watchlist if it is missing and reports
	// whether it already existed.
	EnsureDefault(name string) (existed bool, err error)
}

const tmpSuffix = ".tmp"

type fileStore struct {
	fs     afero.Fs
	dir    string
	logger zerolog.Logger
}

// New creates a Store keeping one file per watchlist inside dir.
func New(fs afero.Fs, dir string) Store {
	return &fileStore{
		fs:     fs,
		dir:    dir,
		logger: logging.GetLogger("watchlist"),
	}
}

func (s *fileStore) path(name string) string {
	return filepath.Join(s.dir, name)
}

func (s *fileStore) tmpPath(name string) string {
	return filepath.Join(s.dir, "."+name+tmpSuffix)
}

// lookup validates name and fails when the watchlist is missing.
func (s *fileStore) lookup(name string) (string, error) {
	if err := paths.ValidateWatchlistName(name); err != nil {
		return "", err
	}
	file := s.path(name)
	exists, err := s.isFile(file)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", errors.Newf(errors.ErrWatchlistNotFound, "watchlist %q does not exist", name).
			WithDetail("watchlist", name)
	}
	return file, nil
}

func (s *fileStore) isFile(file string) (bool, error) {
	info, err := s.fs.Stat(file)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", file).WithDetail("path", file)
	}
	return !info.IsDir(), nil
}

// checkWatchable fails with UnwatchablePath when path is not on disk.
func (s *fileStore) checkWatchable(name, path string) error {
	if err := paths.ValidatePath(path); err != nil {
		return err
	}
	exists, err := filesystem.Exists(s.fs, path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot stat %s", path).WithDetail("path", path)
	}
	if !exists {
		return errors.Newf(errors.ErrUnwatchablePath, "cannot use %s with watchlist %q: path does not exist", path, name).
			WithDetail("path", path).
			WithDetail("watchlist", name)
	}
	return nil
}

func (s *fileStore) Create(name string) error {
	if err := paths.ValidateWatchlistName(name); err != nil {
		return err
	}

	if err := s.fs.MkdirAll(s.dir, 0755); err != nil {
		return errors.Wrapf(err, errors.ErrDirCreate, "cannot create watchlists directory %s", s.dir).
			WithDetail("path", s.dir)
	}

	// O_EXCL makes the existence check and the creation one step.
	f, err := s.fs.OpenFile(s.path(name), os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0644)
	if err != nil {
		if os.IsExist(err) {
			return errors.Newf(errors.ErrWatchlistExists, "watchlist %q already exists", name).
				WithDetail("watchlist", name)
		}
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create watchlist %q", name).
			WithDetail("watchlist", name)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot create watchlist %q", name)
	}

	s.logger.Info().Str("watchlist", name).Msg("Created watchlist")
	return nil
}

func (s *fileStore) Delete(name string) error {
	file, err := s.lookup(name)
	if err != nil {
		return err
	}
	if err := s.fs.Remove(file); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot delete watchlist %q", name).
			WithDetail("watchlist", name)
	}
	s.logger.Info().Str("watchlist", name).Msg("Deleted watchlist")
	return nil
}

func (s *fileStore) List() ([]string, error) {
	infos, err := afero.ReadDir(s.fs, s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read watchlists directory %s", s.dir).
			WithDetail("path", s.dir)
	}

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			continue
		}
		names = append(names, info.Name())
	}
	sort.Strings(names)
	return names, nil
}

func (s *fileStore) Exists(name string) (bool, error) {
	if err := paths.ValidateWatchlistName(name); err != nil {
		return false, err
	}
	return s.isFile(s.path(name))
}

func (s *fileStore) Entries(name string) ([]string, error) {
	file, err := s.lookup(name)
	if err != nil {
		return nil, err
	}

	f, err := s.fs.Open(file)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot open watchlist %q", name).
			WithDetail("watchlist", name)
	}
	defer f.Close()

	entries := []string{}
	err = scanLines(f, func(line string) error {
		if line != "" {
			entries = append(entries, line)
		}
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrFileAccess, "cannot read watchlist %q", name).
			WithDetail("watchlist", name)
	}
	return entries, nil
}

func (s *fileStore) Contains(name, path string) (bool, error) {
	entries, err := s.Entries(name)
	if err != nil {
		return false, err
	}
	for _, e := range entries {
		if e == path {
			return true, nil
		}
	}
	return false, nil
}

func (s *fileStore) Append(name, path string) error {
	file, err := s.lookup(name)
	if err != nil {
		return err
	}
	if err := s.checkWatchable(name, path); err != nil {
		return err
	}

	line := path + "\n"
	terminated, err := s.endsWithNewline(file)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileAccess, "cannot read watchlist %q", name).
			WithDetail("watchlist", name)
	}
	if !terminated {
		line = "\n" + line
	}

	f, err := s.fs.OpenFile(file, os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot open watchlist %q", name).
			WithDetail("watchlist", name)
	}
	if _, err := f.Write([]byte(line)); err != nil {
		_ = f.Close()
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot append to watchlist %q", name).
			WithDetail("watchlist", name)
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot append to watchlist %q", name)
	}

	s.logger.Debug().Str("watchlist", name).Str("path", path).Msg("Watched path")
	return nil
}

// endsWithNewline reports whether file is empty or ends with a newline.
// Hand-edited watchlists may lack the final one.
func (s *fileStore) endsWithNewline(file string) (bool, error) {
	f, err := s.fs.Open(file)
	if err != nil {
		return false, err
	}
	defer func() { _ = f.Close() }()

	info, err := f.Stat()
	if err != nil {
		return false, err
	}
	if info.Size() == 0 {
		return true, nil
	}
	last := make([]byte, 1)
	if _, err := f.ReadAt(last, info.Size()-1); err != nil {
		return false, err
	}
	return last[0] == '\n', nil
}

func (s *fileStore) Remove(name, path string) error {
	if _, err := s.lookup(name); err != nil {
		return err
	}
	if err := s.checkWatchable(name, path); err != nil {
		return err
	}
	return s.RemoveLine(name, path)
}

func (s *fileStore) RemoveLine(name, path string) error {
	file, err := s.lookup(name)
	if err != nil {
		return err
	}

	removed, err := s.rewriteWithout(file, s.tmpPath(name), path)
	if err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot remove %s from watchlist %q", path, name).
			WithDetail("watchlist", name).
			WithDetail("path", path)
	}

	s.logger.Debug().Str("watchlist", name).Str("path", path).Int("lines", removed).Msg("Unwatched path")
	return nil
}

// rewriteWithout copies file into tmp line by line, leaving out lines equal
// to drop, then renames tmp over file. Nothing touches file before the
// rename, and when no line matches file is left alone entirely.
func (s *fileStore) rewriteWithout(file, tmp, drop string) (removed int, err error) {
	in, err := s.fs.Open(file)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	out, err := s.fs.OpenFile(tmp, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = s.fs.Remove(tmp)
		}
	}()

	w := bufio.NewWriter(out)
	err = scanRawLines(in, func(raw string) error {
		if strings.TrimSuffix(raw, "\n") == drop {
			removed++
			return nil
		}
		_, werr := w.WriteString(raw)
		return werr
	})
	if err == nil {
		err = w.Flush()
	}
	if err == nil {
		err = out.Sync()
	}
	if closeErr := out.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return 0, err
	}

	if removed == 0 {
		err = s.fs.Remove(tmp)
		return 0, err
	}

	if err = s.fs.Rename(tmp, file); err != nil {
		return 0, err
	}
	return removed, nil
}

func (s *fileStore) EnsureDefault(name string) (bool, error) {
	exists, err := s.Exists(name)
	if err != nil {
		return false, err
	}
	if exists {
		return true, nil
	}
	if err := s.Create(name); err != nil {
		if errors.IsErrorCode(err, errors.ErrWatchlistExists) {
			return true, nil
		}
		return false, err
	}
	return false, nil
}

// scanLines calls fn with every line of r, newline stripped.
func scanLines(r io.Reader, fn func(line string) error) error {
	return scanRawLines(r, func(raw string) error {
		return fn(strings.TrimSuffix(raw, "\n"))
	})
}

// scanRawLines calls fn with every line of r including its terminating
// newline, if any. Lines are not length limited.
func scanRawLines(r io.Reader, fn func(raw string) error) error {
	br := bufio.NewReader(r)
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			if ferr := fn(raw); ferr != nil {
				return ferr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
