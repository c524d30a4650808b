// Package fsys wraps directory access behind a narrow capability interface.
//
// The rest of the application never touches the os package directly for
// library I/O; it sees only the operations the core needs (enumerate, read,
// write, permission probing). This keeps the reconciliation logic testable
// against the in-memory implementation and keeps the read-only fallback
// mode on exactly the same code path as native access.
package fsys

import (
	"context"
	"io"
	"time"
)

// FileInfo describes one enumerated file.
type FileInfo struct {
	// RelPath is the path relative to the managed root, using forward
	// slashes, including at most one subfolder level.
	RelPath string
	Size    int64
	ModTime time.Time
}

// DirFS is the capability handle to a managed directory (or a one-shot
// selected file set in fallback mode).
type DirFS interface {
	// List enumerates files in the root and exactly one level of
	// subdirectories. Hidden entries are skipped. Unreadable
	// subdirectories are skipped, not fatal.
	List(ctx context.Context) ([]FileInfo, error)

	// Open opens a file for reading by its relative path.
	Open(ctx context.Context, relPath string) (io.ReadSeekCloser, error)

	// ReadFile reads an entire file by its relative path.
	ReadFile(ctx context.Context, relPath string) ([]byte, error)

	// WriteFile overwrites (or creates) a file by its relative path.
	// Read-only implementations fail with a ReadOnlyMode error.
	WriteFile(ctx context.Context, relPath string, data []byte) error

	// QueryPermission reports whether the required access is currently
	// granted, without prompting or side effects.
	QueryPermission(write bool) error

	// RequestPermission re-probes access, returning a PermissionDenied
	// error if the grant has been revoked since acquisition.
	RequestPermission(write bool) error

	// Root returns the absolute root path, or "" for in-memory sets.
	Root() string

	// Writable reports whether this handle supports writes at all.
	Writable() bool
}
