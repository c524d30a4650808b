package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
	"github.com/soundvaultapp/soundvault-server/internal/fsys"
	"github.com/soundvaultapp/soundvault-server/internal/id"
	"github.com/soundvaultapp/soundvault-server/internal/store"
)

// timeNow is swappable in tests.
var timeNow = time.Now

// Manager acquires, restores and disconnects directory sessions. At most
// one session is active at a time; acquiring a new one invalidates the
// previous in-memory handle. The durable grant is only touched by an
// explicit disconnect or by a new RequestDirectory succeeding.
type Manager struct {
	store  *store.Store
	logger *slog.Logger

	mu      sync.Mutex
	current *DirectorySession
}

// NewManager creates a session manager backed by the grant store.
func NewManager(st *store.Store, logger *slog.Logger) *Manager {
	return &Manager{store: st, logger: logger}
}

// RequestDirectory connects a directory in read-write mode and durably
// records the grant so a later RestoreSession can reacquire it.
func (m *Manager) RequestDirectory(ctx context.Context, path string) (*DirectorySession, error) {
	dir, err := fsys.NewOSDir(path)
	if err != nil {
		return nil, err
	}

	grant := &store.SessionGrant{Root: dir.Root(), GrantedAt: timeNow()}
	if err := m.store.SaveSessionGrant(ctx, grant); err != nil {
		return nil, apperrors.Internal("failed to save session grant").WithCause(err)
	}

	sess := &DirectorySession{
		ID:   id.MustGenerate("ses"),
		Mode: ModeReadWrite,
		FS:   dir,
	}
	m.setCurrent(sess)
	m.logger.Info("directory connected", "root", dir.Root(), "session_id", sess.ID)
	return sess, nil
}

// RestoreSession reacquires the previously granted directory. Fails with
// NoSavedSession when nothing is stored and PermissionDenied when the
// grant has been revoked; on PermissionDenied the caller is expected to
// call DisconnectSession to clear the stale grant.
func (m *Manager) RestoreSession(ctx context.Context) (*DirectorySession, error) {
	grant, err := m.store.GetSessionGrant(ctx)
	if err != nil {
		if apperrors.Is(err, store.ErrNotFound) {
			return nil, apperrors.ErrNoSavedSession
		}
		return nil, apperrors.Internal("failed to load session grant").WithCause(err)
	}

	dir, err := fsys.NewOSDir(grant.Root)
	if err != nil {
		return nil, apperrors.PermissionDenied("saved directory no longer accessible").WithCause(err)
	}
	if err := dir.RequestPermission(true); err != nil {
		return nil, err
	}

	sess := &DirectorySession{
		ID:   id.MustGenerate("ses"),
		Mode: ModeReadWrite,
		FS:   dir,
	}
	m.setCurrent(sess)
	m.logger.Info("session restored", "root", grant.Root, "session_id", sess.ID)
	return sess, nil
}

// OpenFallback starts a read-only session over a one-shot file selection.
// The grant store is untouched: fallback sessions never survive a restart.
func (m *Manager) OpenFallback(files map[string][]byte) *DirectorySession {
	sess := &DirectorySession{
		ID:   id.MustGenerate("ses"),
		Mode: ModeReadOnly,
		FS:   fsys.NewMemDir(files),
	}
	m.setCurrent(sess)
	m.logger.Info("fallback session opened", "files", len(files), "session_id", sess.ID)
	return sess
}

// DisconnectSession clears both the in-memory session and the durable
// grant. Subsequent RestoreSession calls fail with NoSavedSession.
func (m *Manager) DisconnectSession(ctx context.Context) error {
	if err := m.store.DeleteSessionGrant(ctx); err != nil {
		return apperrors.Internal("failed to clear session grant").WithCause(err)
	}

	m.mu.Lock()
	prev := m.current
	m.current = nil
	m.mu.Unlock()

	if prev != nil {
		prev.invalidate()
		m.logger.Info("session disconnected", "session_id", prev.ID)
	}
	return nil
}

// Current returns the active session, or nil when disconnected.
func (m *Manager) Current() *DirectorySession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// setCurrent swaps in a new session, invalidating the previous handle.
func (m *Manager) setCurrent(sess *DirectorySession) {
	m.mu.Lock()
	prev := m.current
	m.current = sess
	m.mu.Unlock()

	if prev != nil {
		prev.invalidate()
	}
}
