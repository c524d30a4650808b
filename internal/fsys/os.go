package fsys

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sys/unix"

	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
)

// OSDir is the native read-write capability over an OS directory.
type OSDir struct {
	root string
}

// NewOSDir validates path and returns a read-write handle to it.
// Fails with Unsupported if the path is not a directory and AccessDenied
// if it cannot be read and written.
func NewOSDir(path string) (*OSDir, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.AccessDenied("cannot access directory").WithCause(err)
	}
	if !info.IsDir() {
		return nil, apperrors.Unsupportedf("not a directory: %s", path)
	}

	d := &OSDir{root: path}
	if err := d.QueryPermission(true); err != nil {
		return nil, err
	}
	return d, nil
}

// List enumerates the root plus exactly one subdirectory level. Files
// nested deeper are invisible, matching the scan contract. Hidden entries
// and unreadable subdirectories are skipped.
func (d *OSDir) List(ctx context.Context) ([]FileInfo, error) {
	entries, err := os.ReadDir(d.root)
	if err != nil {
		return nil, apperrors.AccessDenied("cannot read directory").WithCause(err)
	}

	var out []FileInfo
	appendFile := func(relPath string, entry os.DirEntry) {
		info, err := entry.Info()
		if err != nil {
			return
		}
		out = append(out, FileInfo{
			RelPath: relPath,
			Size:    info.Size(),
			ModTime: info.ModTime(),
		})
	}

	var subdirs []string
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		if entry.IsDir() {
			subdirs = append(subdirs, entry.Name())
			continue
		}
		appendFile(entry.Name(), entry)
	}

	// One level down, no deeper.
	for _, sub := range subdirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		subEntries, err := os.ReadDir(filepath.Join(d.root, sub))
		if err != nil {
			continue
		}
		for _, entry := range subEntries {
			if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
				continue
			}
			appendFile(sub+"/"+entry.Name(), entry)
		}
	}

	return out, nil
}

// Open opens a file for reading.
func (d *OSDir) Open(_ context.Context, relPath string) (io.ReadSeekCloser, error) {
	abs, err := d.resolve(relPath)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(abs) //#nosec G304 -- path is confined to the managed root by resolve
	if err != nil {
		return nil, err
	}
	return f, nil
}

// ReadFile reads an entire file.
func (d *OSDir) ReadFile(_ context.Context, relPath string) ([]byte, error) {
	abs, err := d.resolve(relPath)
	if err != nil {
		return nil, err
	}
	return os.ReadFile(abs) //#nosec G304 -- path is confined to the managed root by resolve
}

// WriteFile overwrites a file in the managed directory.
func (d *OSDir) WriteFile(_ context.Context, relPath string, data []byte) error {
	abs, err := d.resolve(relPath)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(abs); dir != d.root {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(abs, data, 0o644)
}

// QueryPermission probes current access without side effects.
func (d *OSDir) QueryPermission(write bool) error {
	mode := uint32(unix.R_OK)
	if write {
		mode |= unix.W_OK
	}
	if err := unix.Access(d.root, mode); err != nil {
		return apperrors.AccessDenied("directory access not granted").WithCause(err)
	}
	return nil
}

// RequestPermission re-probes access. The native grant can be revoked at
// any time outside our control (permissions changed, volume unmounted),
// so callers check before every session restore.
func (d *OSDir) RequestPermission(write bool) error {
	if err := d.QueryPermission(write); err != nil {
		return apperrors.PermissionDenied("directory access revoked").WithCause(err)
	}
	return nil
}

// Root returns the absolute root path.
func (d *OSDir) Root() string { return d.root }

// Writable reports that OS handles support writes.
func (d *OSDir) Writable() bool { return true }

// resolve maps a relative path onto the root, rejecting escapes.
func (d *OSDir) resolve(relPath string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(relPath))
	if cleaned == "." || strings.HasPrefix(cleaned, "..") || filepath.IsAbs(cleaned) {
		return "", apperrors.Validationf("invalid path: %s", relPath)
	}
	return filepath.Join(d.root, cleaned), nil
}
