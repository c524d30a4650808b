// Package scanner discovers audio files in the managed directory and
// reconciles them against previously recorded metadata.
package scanner

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/soundvaultapp/soundvault-server/internal/domain"
	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
	"github.com/soundvaultapp/soundvault-server/internal/id"
	"github.com/soundvaultapp/soundvault-server/internal/metastore"
	"github.com/soundvaultapp/soundvault-server/internal/normalize"
	"github.com/soundvaultapp/soundvault-server/internal/playback"
	"github.com/soundvaultapp/soundvault-server/internal/session"
)

// ScanResult is the outcome of one reconciliation pass.
type ScanResult struct {
	Records          []domain.SoundRecord
	CustomCategories []string
	StartedAt        time.Time
	CompletedAt      time.Time
	Added            int
	Kept             int
	Removed          int
	Errors           int
}

// Reconciler merges the live file listing against recorded metadata to
// produce the canonical in-memory library, then persists the merged set.
type Reconciler struct {
	meta     *metastore.Store
	playback *playback.Registry
	prober   DurationProber
	logger   *slog.Logger
}

// NewReconciler creates a reconciler. prober may be nil to skip duration
// probing entirely (e.g. in tests).
func NewReconciler(meta *metastore.Store, registry *playback.Registry, prober DurationProber, logger *slog.Logger) *Reconciler {
	return &Reconciler{
		meta:     meta,
		playback: registry,
		prober:   prober,
		logger:   logger,
	}
}

// Scan enumerates the session's file set, merges it against the prior
// record set keyed by filename, and persists the merged library before
// returning it.
//
// Matching rules:
//   - filename seen before: the prior record keeps its identity and
//     fields; only the playback reference is reissued (the previous one
//     may already be revoked and is never reused);
//   - filename never seen: a new record is synthesized with a fresh ID,
//     the sentinel tag for batch tagging, and the default category;
//   - prior record whose file is gone: dropped. Removing the physical
//     file and rescanning is the deletion mechanism.
//
// Individual unreadable entries are absorbed as soft errors; the scan
// itself only fails when no session is active or the context is done.
func (r *Reconciler) Scan(ctx context.Context, sess *session.DirectorySession) (*ScanResult, error) {
	if !sess.Active() {
		return nil, apperrors.ErrNoActiveSession
	}

	result := &ScanResult{StartedAt: time.Now()}

	prior, err := r.meta.Read(ctx, sess)
	if err != nil {
		return nil, err
	}
	priorByFilename := make(map[string]domain.PersistableSoundRecord, len(prior.Sounds))
	for _, p := range prior.Sounds {
		priorByFilename[p.Filename] = p
	}

	files, err := sess.FS.List(ctx)
	if err != nil {
		return nil, err
	}

	r.logger.Info("scan started", "files", len(files), "prior_records", len(prior.Sounds))

	seen := make(map[string]bool, len(files))
	records := make([]domain.SoundRecord, 0, len(files))

	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !IsAudio(f.RelPath) || f.RelPath == metastore.MetadataFilename {
			continue
		}
		if seen[f.RelPath] {
			// One record per filename, no matter what the listing claims.
			continue
		}
		seen[f.RelPath] = true

		var rec domain.SoundRecord
		if p, ok := priorByFilename[f.RelPath]; ok {
			rec = p.ToRecord()
			result.Kept++
		} else {
			rec = r.synthesize(ctx, sess, f.RelPath, result)
			result.Added++
		}

		token := r.playback.Mint(rec.ID, sess.FS, f.RelPath)
		rec.URL = r.playback.URL(token)
		records = append(records, rec)
	}

	for filename, p := range priorByFilename {
		if !seen[filename] {
			r.playback.Revoke(p.ID)
			result.Removed++
		}
	}

	result.Records = records
	result.CustomCategories = prior.CustomCategories

	// Persist the merged set immediately so newly-detected and dropped
	// deltas survive even if the user never explicitly saves.
	snap := domain.Snapshot(records, prior.CustomCategories)
	if err := r.meta.Write(ctx, snap, sess); err != nil {
		return nil, err
	}

	result.CompletedAt = time.Now()
	r.logger.Info("scan complete",
		"duration", result.CompletedAt.Sub(result.StartedAt),
		"records", len(records),
		"added", result.Added,
		"removed", result.Removed,
		"errors", result.Errors,
	)
	return result, nil
}

// synthesize builds a record for a never-before-seen file.
func (r *Reconciler) synthesize(ctx context.Context, sess *session.DirectorySession, relPath string, result *ScanResult) domain.SoundRecord {
	rec := domain.SoundRecord{
		ID:        id.MustGenerate("snd"),
		Name:      normalize.DisplayName(relPath),
		Filename:  relPath,
		Category:  domain.CategoryUncategorized,
		Tags:      []string{domain.TagNewlyDetected},
		CreatedAt: time.Now(),
		Source:    domain.SourceUploaded,
	}

	if r.prober != nil && sess.Root() != "" {
		abs := filepath.Join(sess.Root(), filepath.FromSlash(relPath))
		seconds, err := r.prober.Probe(ctx, abs)
		if err != nil {
			// Soft warning: an unreadable or corrupt file stays in the
			// library with duration 0 rather than aborting the scan.
			r.logger.Warn("duration probe failed", "file", relPath, "error", err)
			result.Errors++
		} else {
			rec.Duration = seconds
		}
	}

	return rec
}
