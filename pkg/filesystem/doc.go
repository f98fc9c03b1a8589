// Package filesystem provides filesystem implementations for archwatch.
//
// Every component works against an afero.Fs: the OS filesystem in production
// and an in-memory filesystem in tests. The package also carries the staged
// write used wherever a file must be replaced atomically.
package filesystem
