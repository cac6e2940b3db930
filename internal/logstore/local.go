package logstore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"tablelog/internal/common"
)

// LocalStore is a Store backed by the local filesystem, adapted from the
// teacher's block.LocalFS: same getFullPath/path-traversal-safe join, same
// filepath.Walk listing, narrowed to read-only operations a log reader
// needs.
type LocalStore struct {
	root string
}

// NewLocalStore returns a LocalStore rooted at dir. dir must already exist.
func NewLocalStore(dir string) (*LocalStore, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, common.NewErrorWithCause(common.ErrTableNotFound, "table root not accessible", err)
	}
	if !info.IsDir() {
		return nil, common.ErrTableNotFoundf("table root %q is not a directory", dir)
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, common.ErrInvalidInputf("cannot resolve table root %q: %v", dir, err)
	}
	return &LocalStore{root: abs}, nil
}

func (l *LocalStore) getFullPath(p string) string {
	clean := filepath.Clean(p)
	clean = strings.TrimPrefix(clean, string(filepath.Separator))
	return filepath.Join(l.root, clean)
}

// ListLog lists every regular file under prefix, sorted lexicographically
// so zero-padded commit/checkpoint names sort in version order.
func (l *LocalStore) ListLog(ctx context.Context, prefix string) ([]Entry, error) {
	full := l.getFullPath(prefix)

	var out []Entry
	err := filepath.Walk(full, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(l.root, p)
		if err != nil {
			return err
		}
		out = append(out, Entry{Path: filepath.ToSlash(rel), Size: info.Size()})
		return nil
	})
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, common.NewErrorWithCause(common.ErrInternal, "list log directory failed", err).WithContext("prefix", prefix)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Path < out[j].Path })
	return out, nil
}

// OpenRead opens path for reading, returning TableNotFound if it does not
// exist.
func (l *LocalStore) OpenRead(ctx context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(l.getFullPath(path))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, common.NewErrorWithCause(common.ErrTableNotFound, "log file not found", err).WithContext("path", path)
		}
		return nil, common.NewErrorWithCause(common.ErrInternal, "open log file failed", err).WithContext("path", path)
	}
	return f, nil
}

// Qualify canonicalizes path against this store's root as a file:// URI.
func (l *LocalStore) Qualify(path string) (string, error) {
	return Canonicalize(l.root, path)
}
