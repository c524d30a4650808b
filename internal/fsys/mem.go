package fsys

import (
	"bytes"
	"context"
	"io"
	"sort"
	"time"

	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
)

// MemDir is the read-only fallback capability: a flat map of relative
// paths to raw bytes, produced by a one-shot file selection. It has no
// ongoing grant to re-check and no write path at all.
type MemDir struct {
	files   map[string][]byte
	created time.Time
}

// NewMemDir builds a read-only handle over an in-memory file set.
// Keys are relative paths (forward slashes, at most one folder deep).
func NewMemDir(files map[string][]byte) *MemDir {
	copied := make(map[string][]byte, len(files))
	for name, data := range files {
		copied[name] = bytes.Clone(data)
	}
	return &MemDir{files: copied, created: time.Now()}
}

// List enumerates the selected files in stable order.
func (d *MemDir) List(_ context.Context) ([]FileInfo, error) {
	out := make([]FileInfo, 0, len(d.files))
	for name, data := range d.files {
		out = append(out, FileInfo{
			RelPath: name,
			Size:    int64(len(data)),
			ModTime: d.created,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

type memReader struct {
	*bytes.Reader
}

func (memReader) Close() error { return nil }

// Open opens a selected file for reading.
func (d *MemDir) Open(_ context.Context, relPath string) (io.ReadSeekCloser, error) {
	data, ok := d.files[relPath]
	if !ok {
		return nil, apperrors.NotFoundf("no such file: %s", relPath)
	}
	return memReader{bytes.NewReader(data)}, nil
}

// ReadFile reads a selected file.
func (d *MemDir) ReadFile(_ context.Context, relPath string) ([]byte, error) {
	data, ok := d.files[relPath]
	if !ok {
		return nil, apperrors.NotFoundf("no such file: %s", relPath)
	}
	return bytes.Clone(data), nil
}

// WriteFile always fails: fallback sessions can never write back to the
// original source. Callers surface this so the UI can offer a download.
func (d *MemDir) WriteFile(_ context.Context, relPath string, _ []byte) error {
	return apperrors.ReadOnlyMode("cannot write " + relPath + " in fallback mode")
}

// QueryPermission reports read access, which a selected set always has.
func (d *MemDir) QueryPermission(write bool) error {
	if write {
		return apperrors.ReadOnlyMode("fallback selection has no write access")
	}
	return nil
}

// RequestPermission behaves like QueryPermission; there is no grant to
// re-request for a one-shot selection.
func (d *MemDir) RequestPermission(write bool) error {
	return d.QueryPermission(write)
}

// Root returns "" - in-memory sets have no filesystem root.
func (d *MemDir) Root() string { return "" }

// Writable reports that fallback handles never support writes.
func (d *MemDir) Writable() bool { return false }
