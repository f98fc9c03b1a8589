// Package manifest reads and writes the record kept at the root of a backup
// folder. Home-rooted and root-rooted paths share the folder root, so the
// manifest is what tells restore which branch each copied entry came from.
package manifest

import (
	"bytes"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/arthur-debert/archwatch/pkg/errors"
	"github.com/arthur-debert/archwatch/pkg/filesystem"
	"github.com/arthur-debert/archwatch/pkg/paths"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
)

// FileName is the manifest's name inside a backup folder.
const FileName = ".archwatch-manifest.toml"

// CurrentVersion is written into new manifests.
const CurrentVersion = 1

// Kind tells whether an entry was a single file or a directory tree.
type Kind string

const (
	KindFile Kind = "file"
	KindDir  Kind = "dir"
)

// Entry records one watched path copied into the folder.
type Entry struct {
	Source    string       `toml:"source"`
	Path      string       `toml:"path"`
	Branch    paths.Branch `toml:"branch"`
	Kind      Kind         `toml:"kind"`
	Watchlist string       `toml:"watchlist"`
	BackedUp  time.Time    `toml:"backed_up"`
}

// Classification returns the entry's location in the folder.
func (e Entry) Classification() paths.Classification {
	return paths.Classification{Branch: e.Branch, Path: e.Path}
}

// Manifest is the content of FileName.
type Manifest struct {
	Version int       `toml:"version"`
	Home    string    `toml:"home"`
	Updated time.Time `toml:"updated"`
	Entries []Entry   `toml:"entries"`
}

// New returns an empty manifest for the given home directory.
func New(home string) *Manifest {
	return &Manifest{Version: CurrentVersion, Home: home}
}

// Path returns the manifest location inside folder.
func Path(folder string) string {
	return filepath.Join(folder, FileName)
}

// Load reads the manifest of folder. found is false when the folder has none.
func Load(fs afero.Fs, folder string) (m *Manifest, found bool, err error) {
	data, err := afero.ReadFile(fs, Path(folder))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, nil
		}
		return nil, false, errors.Wrapf(err, errors.ErrFileAccess, "cannot read manifest in %s", folder).
			WithDetail("path", Path(folder))
	}

	m = &Manifest{}
	if err := toml.Unmarshal(data, m); err != nil {
		return nil, false, errors.Wrapf(err, errors.ErrManifestInvalid, "cannot parse manifest in %s", folder).
			WithDetail("path", Path(folder))
	}
	if err := m.validate(); err != nil {
		return nil, false, err
	}
	return m, true, nil
}

// Save writes m into folder, replacing any previous manifest atomically.
func Save(fs afero.Fs, folder string, m *Manifest) error {
	m.sort()
	data, err := toml.Marshal(m)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "cannot encode manifest")
	}
	if _, err := filesystem.WriteAtomic(fs, Path(folder), bytes.NewReader(data), 0644); err != nil {
		return errors.Wrapf(err, errors.ErrFileWrite, "cannot write manifest in %s", folder).
			WithDetail("path", Path(folder))
	}
	return nil
}

// Upsert records e, replacing an entry with the same Path. It returns the
// replaced entry, if any.
func (m *Manifest) Upsert(e Entry) (replaced *Entry) {
	for i := range m.Entries {
		if m.Entries[i].Path == e.Path {
			old := m.Entries[i]
			m.Entries[i] = e
			return &old
		}
	}
	m.Entries = append(m.Entries, e)
	return nil
}

func (m *Manifest) sort() {
	sort.SliceStable(m.Entries, func(i, j int) bool {
		return m.Entries[i].Path < m.Entries[j].Path
	})
}

func (m *Manifest) validate() error {
	if m.Version > CurrentVersion {
		return errors.Newf(errors.ErrManifestInvalid, "manifest version %d is newer than supported version %d",
			m.Version, CurrentVersion)
	}
	for _, e := range m.Entries {
		if e.Branch != paths.BranchHome && e.Branch != paths.BranchRoot {
			return errors.Newf(errors.ErrManifestInvalid, "manifest entry %q has unknown branch %q", e.Path, e.Branch).
				WithDetail("path", e.Path)
		}
	}
	return nil
}
