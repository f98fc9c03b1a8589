package paths

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/arthur-debert/archwatch/pkg/errors"
)

// Branch names one of the two namespaces inside a backup folder.
type Branch string

const (
	// BranchHome holds paths that lived under the home directory.
	BranchHome Branch = "home"
	// BranchRoot holds every other absolute path.
	BranchRoot Branch = "root"
)

// Classification is where an absolute path lands inside a backup folder.
// Path always starts with "." and is meant to be joined under the folder.
type Classification struct {
	Branch Branch
	Path   string
}

// Resolver expands and classifies paths relative to a fixed home directory.
type Resolver struct {
	home  string
	getwd func() (string, error)
}

// NewResolver creates a resolver for the given absolute home directory.
func NewResolver(home string) (*Resolver, error) {
	if home == "" || !filepath.IsAbs(home) {
		return nil, errors.Newf(errors.ErrConfigValid, "home directory must be an absolute path, got %q", home).
			WithDetail("home", home)
	}
	return &Resolver{
		home:  filepath.Clean(home),
		getwd: os.Getwd,
	}, nil
}

// Home returns the cleaned home directory.
func (r *Resolver) Home() string {
	return r.home
}

// Expand returns path in absolute form. Absolute input is returned as is,
// "~" and "~/..." are expanded against home, anything else is resolved
// against the working directory. Existence is not checked.
func (r *Resolver) Expand(path string) string {
	if filepath.IsAbs(path) {
		return path
	}

	if path == "~" {
		return r.home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(r.home, path[2:])
	}

	cwd, err := r.getwd()
	if err != nil {
		// No working directory to anchor on; hand back what we got and let
		// Classify reject it.
		return path
	}
	return filepath.Join(cwd, path)
}

// IsHomeRooted reports whether path is home itself or lies below it.
func (r *Resolver) IsHomeRooted(path string) bool {
	if r.home == "/" {
		return false
	}
	return path == r.home || strings.HasPrefix(path, r.home+"/")
}

// Classify maps an absolute path to its location inside a backup folder:
// home-rooted paths become "." + the subpath under home, other absolute
// paths become "." + the full path.
func (r *Resolver) Classify(path string) (Classification, error) {
	if r.IsHomeRooted(path) {
		return Classification{Branch: BranchHome, Path: "." + path[len(r.home):]}, nil
	}
	if strings.HasPrefix(path, "/") {
		return Classification{Branch: BranchRoot, Path: "." + path}, nil
	}
	return Classification{}, errors.Newf(errors.ErrInvalidPath,
		"cannot classify %q: path is neither under %s nor absolute", path, r.home).
		WithDetail("path", path)
}

// Unclassify is the inverse of Classify.
func (r *Resolver) Unclassify(c Classification) (string, error) {
	rel := c.Path
	if rel != "." && !strings.HasPrefix(rel, "./") {
		return "", errors.Newf(errors.ErrInvalidPath, "backup path %q is not dot-rooted", rel).
			WithDetail("path", rel)
	}

	switch c.Branch {
	case BranchHome:
		return r.home + rel[1:], nil
	case BranchRoot:
		if rel == "." {
			return "", errors.New(errors.ErrInvalidPath, "root branch path cannot be empty").
				WithDetail("path", rel)
		}
		return rel[1:], nil
	default:
		return "", errors.Newf(errors.ErrInvalidPath, "unknown backup branch %q", c.Branch).
			WithDetail("branch", string(c.Branch))
	}
}

// BackupRelative builds the Classification for a path found inside a backup
// folder, given as relative to the folder root.
func BackupRelative(branch Branch, rel string) Classification {
	rel = filepath.ToSlash(filepath.Clean(rel))
	if rel == "." {
		return Classification{Branch: branch, Path: "."}
	}
	return Classification{Branch: branch, Path: "./" + strings.TrimPrefix(rel, "./")}
}
