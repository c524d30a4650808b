// Package metastore reads and writes library metadata across two tiers:
// a JSON file at the root of the managed directory and a local Badger
// backup under a fixed key.
//
// Precedence on read: for a read-write session the on-disk file - if it
// parses - is authoritative and replaces the backup, because the file
// travels with the folder when the user moves it between machines. The
// backup exists to survive the read-only mode's inability to write back
// to disk, so absent/corrupt disk data (or a read-only session) falls
// back to it, and an empty backup yields an empty library.
//
// Writes always land in the backup first, best-effort, then overwrite the
// disk file as a whole when the session is writable. Disk failures are
// soft: the in-memory state and the backup remain the fallback of record.
package metastore

import (
	"encoding/json/jsontext"
	"encoding/json/v2"
	"log/slog"

	"context"

	"github.com/soundvaultapp/soundvault-server/internal/domain"
	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
	"github.com/soundvaultapp/soundvault-server/internal/session"
	"github.com/soundvaultapp/soundvault-server/internal/store"
)

// MetadataFilename is the fixed sidecar name at the managed root.
// Users may inspect or move the file, so it is written pretty-printed.
const MetadataFilename = "soundvault.json"

// Store is the dual-tier metadata store.
type Store struct {
	backup *store.Store
	logger *slog.Logger
}

// New creates a metadata store over the given backup database.
func New(backup *store.Store, logger *slog.Logger) *Store {
	return &Store{backup: backup, logger: logger}
}

// Read loads the library snapshot for the session per the precedence
// rules above. It never fails on missing data; only an inactive session
// or a cancelled context is an error.
func (s *Store) Read(ctx context.Context, sess *session.DirectorySession) (*domain.LibrarySnapshot, error) {
	if !sess.Active() {
		return nil, apperrors.ErrNoActiveSession
	}

	if sess.Writable() {
		if snap := s.readDiskFile(ctx, sess); snap != nil {
			// Disk is authoritative: refresh the backup so the two
			// tiers agree for the rest of this session.
			if err := s.backup.SaveLibraryBackup(ctx, snap); err != nil {
				s.logger.Warn("failed to refresh library backup from disk", "error", err)
			}
			return snap, nil
		}
	}

	snap, err := s.backup.GetLibraryBackup(ctx)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return domain.EmptySnapshot(), nil
		}
		s.logger.Warn("failed to read library backup", "error", err)
		return domain.EmptySnapshot(), nil
	}
	return snap, nil
}

// Write persists a full snapshot: backup first (best-effort, storage
// errors must never block the caller), then the disk file when writable.
// A disk write failure is logged and surfaced as non-fatal.
func (s *Store) Write(ctx context.Context, snap *domain.LibrarySnapshot, sess *session.DirectorySession) error {
	if !sess.Active() {
		return apperrors.ErrNoActiveSession
	}

	if err := s.backup.SaveLibraryBackup(ctx, snap); err != nil {
		s.logger.Warn("failed to write library backup", "error", err)
	}

	if !sess.Writable() {
		return nil
	}

	data, err := json.Marshal(snap, jsontext.WithIndent("  "))
	if err != nil {
		return apperrors.Internal("failed to serialize library metadata").WithCause(err)
	}
	if err := sess.FS.WriteFile(ctx, MetadataFilename, data); err != nil {
		s.logger.Warn("failed to write metadata file, backup remains authoritative",
			"file", MetadataFilename, "error", err)
	}
	return nil
}

// readDiskFile returns the parsed on-disk snapshot, or nil when the file
// is absent or unreadable or does not parse.
func (s *Store) readDiskFile(ctx context.Context, sess *session.DirectorySession) *domain.LibrarySnapshot {
	data, err := sess.FS.ReadFile(ctx, MetadataFilename)
	if err != nil {
		return nil
	}
	var snap domain.LibrarySnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		s.logger.Warn("metadata file did not parse, falling back to local backup",
			"file", MetadataFilename, "error", err)
		return nil
	}
	if snap.Sounds == nil {
		snap.Sounds = []domain.PersistableSoundRecord{}
	}
	if snap.CustomCategories == nil {
		snap.CustomCategories = []string{}
	}
	return &snap
}
