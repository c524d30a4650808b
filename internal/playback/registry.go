// Package playback manages ephemeral playback references. Each scan (or
// upload) mints a fresh token per record; superseded tokens are revoked
// immediately so repeated rescans in a long-lived session do not leak
// resources. Tokens live only in this process and are never persisted.
package playback

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
	"github.com/soundvaultapp/soundvault-server/internal/fsys"
)

// URLPrefix is the route playback tokens resolve under.
const URLPrefix = "/api/v1/playback/"

type entry struct {
	recordID string
	fs       fsys.DirFS
	relPath  string
}

// Registry maps playback tokens to open-able files.
type Registry struct {
	logger *slog.Logger

	mu       sync.RWMutex
	tokens   map[string]entry
	byRecord map[string]string // recordID -> current token
}

// NewRegistry creates an empty registry.
func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:   logger,
		tokens:   make(map[string]entry),
		byRecord: make(map[string]string),
	}
}

// Mint issues a fresh token for a record, revoking the record's previous
// token if one exists. The old token is never reused: its backing handle
// may already be gone.
func (r *Registry) Mint(recordID string, fs fsys.DirFS, relPath string) string {
	token := uuid.NewString()

	r.mu.Lock()
	if old, ok := r.byRecord[recordID]; ok {
		delete(r.tokens, old)
	}
	r.tokens[token] = entry{recordID: recordID, fs: fs, relPath: relPath}
	r.byRecord[recordID] = token
	r.mu.Unlock()

	return token
}

// URL returns the route for a token.
func (r *Registry) URL(token string) string {
	return URLPrefix + token
}

// Open resolves a token to a readable stream and the relative path it
// serves (for content-type sniffing by extension).
func (r *Registry) Open(ctx context.Context, token string) (io.ReadSeekCloser, string, error) {
	r.mu.RLock()
	e, ok := r.tokens[token]
	r.mu.RUnlock()
	if !ok {
		return nil, "", apperrors.NotFound("unknown or revoked playback token")
	}

	rc, err := e.fs.Open(ctx, e.relPath)
	if err != nil {
		return nil, "", apperrors.NotFound("playback source unavailable").WithCause(err)
	}
	return rc, e.relPath, nil
}

// Revoke drops a single record's current token.
func (r *Registry) Revoke(recordID string) {
	r.mu.Lock()
	if token, ok := r.byRecord[recordID]; ok {
		delete(r.tokens, token)
		delete(r.byRecord, recordID)
	}
	r.mu.Unlock()
}

// RevokeAll drops every token, e.g. when a session is disconnected.
func (r *Registry) RevokeAll() {
	r.mu.Lock()
	n := len(r.tokens)
	r.tokens = make(map[string]entry)
	r.byRecord = make(map[string]string)
	r.mu.Unlock()

	if n > 0 {
		r.logger.Debug("revoked playback tokens", "count", n)
	}
}

// Len reports the number of live tokens.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tokens)
}
