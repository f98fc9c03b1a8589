package filesystem

import (
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// NewOS returns the OS-backed filesystem
func NewOS() afero.Fs {
	return afero.NewOsFs()
}

// NewMemory returns an empty in-memory filesystem
func NewMemory() afero.Fs {
	return afero.NewMemMapFs()
}

// Exists reports whether name exists. Errors other than not-exist are returned.
func Exists(fs afero.Fs, name string) (bool, error) {
	_, err := fs.Stat(name)
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

// Lstat stats name without following a final symlink when the filesystem
// supports it, and falls back to Stat otherwise.
func Lstat(fs afero.Fs, name string) (os.FileInfo, error) {
	if l, ok := fs.(afero.Lstater); ok {
		info, _, err := l.LstatIfPossible(name)
		return info, err
	}
	return fs.Stat(name)
}

// StagePrefix marks temporary files created by WriteAtomic.
const StagePrefix = ".archwatch-stage-"

// WriteAtomic writes the content of r to name through a temporary file in
// the same directory that is renamed into place. Readers see either the
// previous file or the complete new one.
func WriteAtomic(fs afero.Fs, name string, r io.Reader, perm os.FileMode) (int64, error) {
	dir := filepath.Dir(name)
	if err := fs.MkdirAll(dir, 0755); err != nil {
		return 0, err
	}

	tmp, err := afero.TempFile(fs, dir, StagePrefix+filepath.Base(name)+"-*")
	if err != nil {
		return 0, err
	}
	tmpName := tmp.Name()

	n, err := io.Copy(tmp, r)
	if err == nil {
		err = tmp.Sync()
	}
	if closeErr := tmp.Close(); err == nil {
		err = closeErr
	}
	if err == nil {
		err = fs.Chmod(tmpName, perm)
	}
	if err == nil {
		err = fs.Rename(tmpName, name)
	}
	if err != nil {
		_ = fs.Remove(tmpName)
		return 0, err
	}
	return n, nil
}
