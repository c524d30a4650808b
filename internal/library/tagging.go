package library

import (
	"context"
	"mime"
	"path"
	"slices"

	"github.com/soundvaultapp/soundvault-server/internal/domain"
	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
	"github.com/soundvaultapp/soundvault-server/internal/search"
	"github.com/soundvaultapp/soundvault-server/internal/sse"
)

// StartBatchTag kicks off tagging of all newly-detected records in a
// background goroutine. Items are processed strictly one at a time; the
// external service is rate-limited and a cancelled run must leave no
// half-applied item behind.
func (s *Service) StartBatchTag() error {
	if s.tagger == nil || !s.tagger.Configured() {
		return apperrors.Unsupported("tagging service is not configured")
	}

	sess := s.sessions.Current()
	if sess == nil || !sess.Active() {
		return apperrors.ErrNoActiveSession
	}

	s.taggingMu.Lock()
	defer s.taggingMu.Unlock()
	if s.taggingCancel != nil {
		return apperrors.Conflict("batch tagging already running")
	}

	ctx, cancel := context.WithCancel(context.Background())
	s.taggingCancel = cancel

	s.taggingWG.Add(1)
	go func() {
		defer s.taggingWG.Done()
		defer func() {
			s.taggingMu.Lock()
			s.taggingCancel = nil
			s.taggingMu.Unlock()
		}()
		s.runBatchTag(ctx)
	}()

	return nil
}

// CancelBatchTag stops a running batch between items. Returns NotFound
// when nothing is running.
func (s *Service) CancelBatchTag() error {
	s.taggingMu.Lock()
	defer s.taggingMu.Unlock()
	if s.taggingCancel == nil {
		return apperrors.NotFound("no batch tagging in progress")
	}
	s.taggingCancel()
	return nil
}

// TaggingInProgress reports whether a batch run is active.
func (s *Service) TaggingInProgress() bool {
	s.taggingMu.Lock()
	defer s.taggingMu.Unlock()
	return s.taggingCancel != nil
}

// runBatchTag processes every newly-detected record. Cancellation is
// checked between items, never mid-item: whatever completed stays
// applied and persisted. A failed suggestion leaves that record's
// synthesized defaults untouched and moves on.
func (s *Service) runBatchTag(ctx context.Context) {
	s.mu.RLock()
	pending := make([]string, 0)
	for _, rec := range s.sounds {
		if rec.IsNewlyDetected() {
			pending = append(pending, rec.ID)
		}
	}
	s.mu.RUnlock()

	total := len(pending)
	s.logger.Info("batch tagging started", "pending", total)

	done := 0
	for _, soundID := range pending {
		if ctx.Err() != nil {
			s.logger.Info("batch tagging cancelled", "done", done, "total", total)
			return
		}

		if err := s.tagOne(ctx, soundID); err != nil {
			if ctx.Err() != nil {
				s.logger.Info("batch tagging cancelled", "done", done, "total", total)
				return
			}
			s.logger.Warn("tagging failed, keeping defaults", "id", soundID, "error", err)
		}

		done++
		s.emitter.Emit(sse.NewTaggingProgressEvent(done, total, soundID))
	}

	s.logger.Info("batch tagging complete", "done", done, "total", total)
}

// tagOne asks the service about a single record and applies the
// suggestion. The sentinel tag is only cleared on success so a failed
// item remains a candidate for the next run.
func (s *Service) tagOne(ctx context.Context, soundID string) error {
	sess := s.sessions.Current()
	if sess == nil || !sess.Active() {
		return apperrors.ErrNoActiveSession
	}

	rec, err := s.Sound(soundID)
	if err != nil {
		return err
	}

	// Sample bytes are best-effort: the service can work from the
	// filename alone.
	sample, readErr := sess.FS.ReadFile(ctx, rec.Filename)
	if readErr != nil {
		sample = nil
	}
	mimeType := mime.TypeByExtension(path.Ext(rec.Filename))

	suggestion, err := s.tagger.Suggest(ctx, rec.Filename, sample, mimeType)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.indexOfLocked(soundID)
	if i < 0 {
		// Rescanned away mid-batch.
		return apperrors.NotFoundf("sound %s not found", soundID)
	}

	updated := s.sounds[i]
	if suggestion.Name != "" {
		updated.Name = suggestion.Name
	}
	if suggestion.Category != "" && s.categories.Contains(suggestion.Category) {
		updated.Category = suggestion.Category
	}
	tags := slices.DeleteFunc(slices.Clone(updated.Tags), func(t string) bool {
		return t == domain.TagNewlyDetected
	})
	for _, t := range suggestion.Tags {
		if t != "" && !slices.Contains(tags, t) {
			tags = append(tags, t)
		}
	}
	updated.Tags = tags
	s.sounds[i] = updated

	// Persist per item so a later cancellation loses nothing.
	if err := s.persistLocked(ctx, sess); err != nil {
		return err
	}

	if err := s.index.IndexDocument(search.FromRecord(updated)); err != nil {
		s.logger.Warn("failed to reindex sound", "id", updated.ID, "error", err)
	}
	s.emitter.Emit(sse.NewSoundEvent(sse.EventSoundUpdated, updated))
	return nil
}
