// Package watchlist stores named watchlists, each a flat text file holding
// one absolute path per line, directly inside a single directory.
//
// The file is the only record of a watchlist: a watchlist exists if and only
// if its file exists. Appends are a single write at the end of the file.
// Removals stream the file into a dot-prefixed temporary file next to it and
// rename that over the original, so an interrupted removal leaves the
// original intact.
//
// There is no locking. Two processes changing the same watchlist at once can
// lose updates; archwatch is meant to be driven by one user at a time.
package watchlist
