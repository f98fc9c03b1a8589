// Package testutil provides utilities for testing archwatch components.
//
// Key components:
//   - TestEnvironment: paths, configuration and command env over a filesystem
//   - FileTree: declarative file setup
//   - FailingRenameFs: a filesystem whose Rename always fails, to simulate a
//     crash between staging a file and replacing the original
//
// Most tests should use EnvMemoryOnly; EnvIsolated is for behavior afero's
// memory filesystem cannot show, such as symlinks.
package testutil
