// Package library holds the in-memory sound library and every mutation
// that can be applied to it. The service is the single writer: all state
// changes flow through it, get persisted through the metadata store, and
// are broadcast to connected clients.
package library

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/soundvaultapp/soundvault-server/internal/domain"
	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
	"github.com/soundvaultapp/soundvault-server/internal/id"
	"github.com/soundvaultapp/soundvault-server/internal/metastore"
	"github.com/soundvaultapp/soundvault-server/internal/normalize"
	"github.com/soundvaultapp/soundvault-server/internal/playback"
	"github.com/soundvaultapp/soundvault-server/internal/scanner"
	"github.com/soundvaultapp/soundvault-server/internal/search"
	"github.com/soundvaultapp/soundvault-server/internal/session"
	"github.com/soundvaultapp/soundvault-server/internal/sse"
	"github.com/soundvaultapp/soundvault-server/internal/tagger"
)

// Emitter broadcasts events to connected clients. Satisfied by the SSE
// manager; a no-op implementation serves tests and the scan CLI.
type Emitter interface {
	Emit(event any)
}

// NoopEmitter discards all events.
type NoopEmitter struct{}

// Emit implements Emitter.
func (NoopEmitter) Emit(any) {}

// Service owns the in-memory library state.
type Service struct {
	meta       *metastore.Store
	sessions   *session.Manager
	reconciler *scanner.Reconciler
	playback   *playback.Registry
	index      *search.SearchIndex
	tagger     *tagger.Client
	prober     scanner.DurationProber
	emitter    Emitter
	logger     *slog.Logger

	mu         sync.RWMutex
	sounds     []domain.SoundRecord
	categories *domain.CategorySet

	taggingMu     sync.Mutex
	taggingCancel context.CancelFunc

	taggingWG sync.WaitGroup
}

// NewService creates the library service. prober may be nil; tagger may
// be unconfigured.
func NewService(
	meta *metastore.Store,
	sessions *session.Manager,
	reconciler *scanner.Reconciler,
	registry *playback.Registry,
	index *search.SearchIndex,
	tagClient *tagger.Client,
	prober scanner.DurationProber,
	emitter Emitter,
	logger *slog.Logger,
) *Service {
	if emitter == nil {
		emitter = NoopEmitter{}
	}
	return &Service{
		meta:       meta,
		sessions:   sessions,
		reconciler: reconciler,
		playback:   registry,
		index:      index,
		tagger:     tagClient,
		prober:     prober,
		emitter:    emitter,
		logger:     logger,
		sounds:     []domain.SoundRecord{},
		categories: domain.NewCategorySet(nil),
	}
}

// Scan reconciles the connected folder against recorded metadata and
// replaces the in-memory library with the merged result. The write lock
// is held across the reconciler's read-merge-write: a mutation landing
// between the metadata read and the persisted merge would otherwise be
// silently overwritten by the stale snapshot.
func (s *Service) Scan(ctx context.Context) (*scanner.ScanResult, error) {
	sess := s.sessions.Current()
	if sess == nil || !sess.Active() {
		return nil, apperrors.ErrNoActiveSession
	}

	s.emitter.Emit(sse.NewScanStartedEvent())

	s.mu.Lock()
	result, err := s.reconciler.Scan(ctx, sess)
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.sounds = result.Records
	s.categories = domain.NewCategorySet(result.CustomCategories)
	s.mu.Unlock()

	s.refreshIndex()
	s.emitter.Emit(sse.NewScanCompleteEvent(result.Added, result.Removed, result.Errors))
	return result, nil
}

// Clear drops the in-memory library, e.g. after a disconnect.
func (s *Service) Clear() {
	s.mu.Lock()
	s.sounds = []domain.SoundRecord{}
	s.categories = domain.NewCategorySet(nil)
	s.mu.Unlock()

	s.playback.RevokeAll()
	s.refreshIndex()
}

// Sounds returns a copy of all records.
func (s *Service) Sounds() []domain.SoundRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.SoundRecord, len(s.sounds))
	copy(out, s.sounds)
	return out
}

// Sound returns one record by ID.
func (s *Service) Sound(soundID string) (domain.SoundRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.sounds {
		if rec.ID == soundID {
			return rec, nil
		}
	}
	return domain.SoundRecord{}, apperrors.NotFoundf("sound %s not found", soundID)
}

// Categories returns the combined default and custom category list.
func (s *Service) Categories() (all, custom []string) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.categories.All(), s.categories.Custom()
}

// AddSoundParams describes a new sound to write into the folder.
type AddSoundParams struct {
	Name     string
	Category string
	Data     []byte
	MimeType string
	Source   domain.Source
}

// AddSound writes the audio bytes into the connected folder and records
// the new sound. Fails in read-only mode: there is no folder to write to.
func (s *Service) AddSound(ctx context.Context, params AddSoundParams) (domain.SoundRecord, error) {
	sess := s.sessions.Current()
	if sess == nil || !sess.Active() {
		return domain.SoundRecord{}, apperrors.ErrNoActiveSession
	}
	if !sess.Writable() {
		return domain.SoundRecord{}, apperrors.ReadOnlyMode("cannot save sounds in read-only mode")
	}
	if len(params.Data) == 0 {
		return domain.SoundRecord{}, apperrors.Validation("sound data is empty")
	}
	if params.Source == "" {
		params.Source = domain.SourceUploaded
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	category := params.Category
	if category == "" {
		category = domain.CategoryUncategorized
	}
	if !s.categories.Contains(category) {
		return domain.SoundRecord{}, apperrors.Validationf("unknown category %q", category)
	}

	filename := s.availableFilenameLocked(params.Name, params.MimeType)
	if err := sess.FS.WriteFile(ctx, filename, params.Data); err != nil {
		return domain.SoundRecord{}, err
	}

	rec := domain.SoundRecord{
		ID:        id.MustGenerate("snd"),
		Name:      strings.TrimSpace(params.Name),
		Filename:  filename,
		Category:  category,
		Tags:      []string{},
		CreatedAt: time.Now(),
		Source:    params.Source,
	}
	if rec.Name == "" {
		rec.Name = normalize.DisplayName(filename)
	}

	if s.prober != nil && sess.Root() != "" {
		abs := filepath.Join(sess.Root(), filepath.FromSlash(filename))
		if seconds, err := s.prober.Probe(ctx, abs); err == nil {
			rec.Duration = seconds
		}
	}

	token := s.playback.Mint(rec.ID, sess.FS, filename)
	rec.URL = s.playback.URL(token)

	s.sounds = append(s.sounds, rec)
	if err := s.persistLocked(ctx, sess); err != nil {
		return domain.SoundRecord{}, err
	}

	if err := s.index.IndexDocument(search.FromRecord(rec)); err != nil {
		s.logger.Warn("failed to index new sound", "id", rec.ID, "error", err)
	}
	s.emitter.Emit(sse.NewSoundEvent(sse.EventSoundCreated, rec))
	s.logger.Info("sound added", "id", rec.ID, "filename", filename)
	return rec, nil
}

// UpdateSoundParams carries optional field updates. Nil means unchanged.
type UpdateSoundParams struct {
	Name            *string
	Category        *string
	Tags            *[]string
	IsFavorite      *bool
	CopyrightStatus *string
	CopyrightReason *string
}

// UpdateSound applies a partial update to a record and persists it.
func (s *Service) UpdateSound(ctx context.Context, soundID string, params UpdateSoundParams) (domain.SoundRecord, error) {
	sess := s.sessions.Current()
	if sess == nil || !sess.Active() {
		return domain.SoundRecord{}, apperrors.ErrNoActiveSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(soundID)
	if i < 0 {
		return domain.SoundRecord{}, apperrors.NotFoundf("sound %s not found", soundID)
	}

	rec := s.sounds[i]
	if params.Name != nil {
		name := strings.TrimSpace(*params.Name)
		if name == "" {
			return domain.SoundRecord{}, apperrors.Validation("name cannot be empty")
		}
		rec.Name = name
	}
	if params.Category != nil {
		if !s.categories.Contains(*params.Category) {
			return domain.SoundRecord{}, apperrors.Validationf("unknown category %q", *params.Category)
		}
		rec.Category = *params.Category
	}
	if params.Tags != nil {
		rec.Tags = *params.Tags
		if rec.Tags == nil {
			rec.Tags = []string{}
		}
	}
	if params.IsFavorite != nil {
		rec.IsFavorite = *params.IsFavorite
	}
	if params.CopyrightStatus != nil {
		rec.CopyrightStatus = *params.CopyrightStatus
	}
	if params.CopyrightReason != nil {
		rec.CopyrightReason = *params.CopyrightReason
	}

	s.sounds[i] = rec
	if err := s.persistLocked(ctx, sess); err != nil {
		return domain.SoundRecord{}, err
	}

	if err := s.index.IndexDocument(search.FromRecord(rec)); err != nil {
		s.logger.Warn("failed to reindex sound", "id", rec.ID, "error", err)
	}
	s.emitter.Emit(sse.NewSoundEvent(sse.EventSoundUpdated, rec))
	return rec, nil
}

// SetFavorite toggles the favorite flag on a record.
func (s *Service) SetFavorite(ctx context.Context, soundID string, favorite bool) (domain.SoundRecord, error) {
	return s.UpdateSound(ctx, soundID, UpdateSoundParams{IsFavorite: &favorite})
}

// MoveToCategory reassigns a record to another category.
func (s *Service) MoveToCategory(ctx context.Context, soundID, category string) (domain.SoundRecord, error) {
	return s.UpdateSound(ctx, soundID, UpdateSoundParams{Category: &category})
}

// CreateCategory adds a custom category.
func (s *Service) CreateCategory(ctx context.Context, name string) error {
	sess := s.sessions.Current()
	if sess == nil || !sess.Active() {
		return apperrors.ErrNoActiveSession
	}

	name = strings.TrimSpace(name)
	if name == "" {
		return apperrors.Validation("category name cannot be empty")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.categories.Add(name) {
		return apperrors.AlreadyExistsf("category %q already exists", name)
	}
	if err := s.persistLocked(ctx, sess); err != nil {
		s.categories.Remove(name)
		return err
	}

	s.emitter.Emit(sse.NewCategoryEvent(sse.EventCategoryCreated, name))
	s.logger.Info("category created", "name", name)
	return nil
}

// DeleteCategory removes a custom category. Records in it are reassigned
// to the default category in the same persisted snapshot, so no record is
// ever left pointing at a category that no longer exists.
func (s *Service) DeleteCategory(ctx context.Context, name string) error {
	sess := s.sessions.Current()
	if sess == nil || !sess.Active() {
		return apperrors.ErrNoActiveSession
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if domain.IsDefaultCategory(name) {
		return apperrors.Validationf("category %q is built in and cannot be deleted", name)
	}
	if !s.categories.Remove(name) {
		return apperrors.NotFoundf("category %q not found", name)
	}

	reassigned := []domain.SoundRecord{}
	for i := range s.sounds {
		if s.sounds[i].Category == name {
			s.sounds[i].Category = domain.CategoryUncategorized
			reassigned = append(reassigned, s.sounds[i])
		}
	}

	if err := s.persistLocked(ctx, sess); err != nil {
		return err
	}

	for _, rec := range reassigned {
		if err := s.index.IndexDocument(search.FromRecord(rec)); err != nil {
			s.logger.Warn("failed to reindex sound", "id", rec.ID, "error", err)
		}
		s.emitter.Emit(sse.NewSoundEvent(sse.EventSoundUpdated, rec))
	}
	s.emitter.Emit(sse.NewCategoryEvent(sse.EventCategoryDeleted, name))
	s.logger.Info("category deleted", "name", name, "reassigned", len(reassigned))
	return nil
}

// Search queries the index and resolves hits back to full records,
// preserving relevance order.
func (s *Service) Search(ctx context.Context, params search.SearchParams) ([]domain.SoundRecord, *search.SearchResult, error) {
	result, err := s.index.Search(ctx, params)
	if err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	byID := make(map[string]domain.SoundRecord, len(s.sounds))
	for _, rec := range s.sounds {
		byID[rec.ID] = rec
	}
	s.mu.RUnlock()

	records := make([]domain.SoundRecord, 0, len(result.Hits))
	for _, hit := range result.Hits {
		if rec, ok := byID[hit.ID]; ok {
			records = append(records, rec)
		}
	}
	return records, result, nil
}

// availableFilenameLocked derives a collision-free filename for a new
// sound: sanitized name plus MIME-derived extension, with " (n)" suffixes
// when the plain name is taken.
func (s *Service) availableFilenameLocked(name, mimeType string) string {
	stem := normalize.FileStem(name)
	// Trim the extension in its original case; only the appended
	// extension is normalized to lowercase.
	origExt := path.Ext(name)
	ext := strings.ToLower(origExt)
	if !scanner.IsAudio(name) {
		ext = scanner.ExtensionForMIME(mimeType)
	} else {
		stem = normalize.FileStem(strings.TrimSuffix(name, origExt))
	}

	taken := make(map[string]bool, len(s.sounds))
	for _, rec := range s.sounds {
		taken[strings.ToLower(rec.Filename)] = true
	}

	candidate := stem + ext
	for n := 1; taken[strings.ToLower(candidate)]; n++ {
		candidate = fmt.Sprintf("%s (%d)%s", stem, n, ext)
	}
	return candidate
}

// indexOfLocked finds a record position by ID. Caller holds the lock.
func (s *Service) indexOfLocked(soundID string) int {
	for i := range s.sounds {
		if s.sounds[i].ID == soundID {
			return i
		}
	}
	return -1
}

// persistLocked writes the current state through the metadata store.
// Caller holds the write lock.
func (s *Service) persistLocked(ctx context.Context, sess *session.DirectorySession) error {
	snap := domain.Snapshot(s.sounds, s.categories.Custom())
	return s.meta.Write(ctx, snap, sess)
}

// refreshIndex rebuilds the search index from the in-memory library.
func (s *Service) refreshIndex() {
	s.mu.RLock()
	docs := make([]*search.SoundDocument, 0, len(s.sounds))
	for _, rec := range s.sounds {
		docs = append(docs, search.FromRecord(rec))
	}
	s.mu.RUnlock()

	if err := s.index.Reset(docs); err != nil {
		s.logger.Warn("failed to refresh search index", "error", err)
	}
}
