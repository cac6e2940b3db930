// Package logstore is the injected file-store collaborator (spec §6.1):
// listing a table's commit log directory, opening commit/checkpoint files
// for reading, and qualifying paths into canonical URIs.
package logstore

import (
	"context"
	"io"
)

// Entry describes one object found by ListLog.
type Entry struct {
	Path string
	Size int64
}

// Store is the file-store contract the snapshot façade and the replay
// engine's canonicalizer depend on. Implementations must preserve
// URI-escaping on Qualify.
type Store interface {
	// ListLog lists every object under prefix, ordered by path, so commit
	// and checkpoint files sort by their zero-padded version number.
	ListLog(ctx context.Context, prefix string) ([]Entry, error)

	// OpenRead opens path for streaming read.
	OpenRead(ctx context.Context, path string) (io.ReadCloser, error)

	// Qualify resolves path into its canonical, scheme-and-authority
	// qualified form relative to this store's root.
	Qualify(path string) (string, error)
}
