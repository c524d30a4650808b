package store

import (
	"context"
	"time"

	"github.com/soundvaultapp/soundvault-server/internal/domain"
)

// SaveLibraryBackup overwrites the backup snapshot. This is the first leg
// of every metadata write: it must succeed (or fail) independently of the
// on-disk file so the in-memory library and the backup never diverge.
func (s *Store) SaveLibraryBackup(ctx context.Context, snap *domain.LibrarySnapshot) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set(keyLibraryBackup, snap)
}

// GetLibraryBackup loads the backup snapshot. Returns ErrNotFound when no
// backup has ever been written.
func (s *Store) GetLibraryBackup(ctx context.Context) (*domain.LibrarySnapshot, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var snap domain.LibrarySnapshot
	if err := s.get(keyLibraryBackup, &snap); err != nil {
		return nil, err
	}
	return &snap, nil
}

// SessionGrant is the durable record of a directory the user granted
// read-write access to. Only native sessions are recorded; fallback
// selections are session-scoped and never saved.
type SessionGrant struct {
	Root      string    `json:"root"`
	GrantedAt time.Time `json:"grantedAt"`
}

// SaveSessionGrant records the current directory grant.
func (s *Store) SaveSessionGrant(ctx context.Context, grant *SessionGrant) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.set(keySessionGrant, grant)
}

// GetSessionGrant loads the saved grant. Returns ErrNotFound when the
// user has never connected a directory or has explicitly disconnected.
func (s *Store) GetSessionGrant(ctx context.Context) (*SessionGrant, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var grant SessionGrant
	if err := s.get(keySessionGrant, &grant); err != nil {
		return nil, err
	}
	return &grant, nil
}

// DeleteSessionGrant clears the saved grant.
func (s *Store) DeleteSessionGrant(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.delete(keySessionGrant)
}
