// Package session owns directory access: acquiring a handle to a
// user-chosen folder, persisting the grant across restarts, restoring it,
// and the read-only fallback for one-shot file selections.
package session

import (
	"sync/atomic"

	"github.com/soundvaultapp/soundvault-server/internal/fsys"
)

// Mode is the session state. The lifecycle is an explicit state machine:
// Disconnected -> ReadWrite (RequestDirectory / RestoreSession),
// Disconnected -> ReadOnly (OpenFallback), any -> Disconnected
// (DisconnectSession or a newer session superseding this one).
type Mode string

// Session modes.
const (
	ModeDisconnected Mode = "disconnected"
	ModeReadWrite    Mode = "read-write"
	ModeReadOnly     Mode = "read-only"
)

// DirectorySession is the explicitly owned handle to the managed folder.
// It is constructed by the Manager and passed through the store, scanner
// and mutation layers rather than held as ambient state.
type DirectorySession struct {
	ID   string
	Mode Mode // written once at construction, immutable afterwards
	FS   fsys.DirFS

	invalidated atomic.Bool
}

// invalidate marks the handle unusable. The manager calls this when a
// newer session supersedes this one or on disconnect. Mode itself is
// never mutated, so handlers reading it concurrently only touch the
// atomic flag.
func (s *DirectorySession) invalidate() {
	s.invalidated.Store(true)
}

// Active reports whether the session can serve reads.
func (s *DirectorySession) Active() bool {
	return s != nil && !s.invalidated.Load() && s.Mode != ModeDisconnected && s.FS != nil
}

// Writable reports whether the session can serve writes.
func (s *DirectorySession) Writable() bool {
	return s.Active() && s.Mode == ModeReadWrite
}

// Root returns the managed root path, or "" for fallback sessions.
func (s *DirectorySession) Root() string {
	if !s.Active() {
		return ""
	}
	return s.FS.Root()
}
