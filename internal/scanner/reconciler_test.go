package scanner

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundvaultapp/soundvault-server/internal/domain"
	"github.com/soundvaultapp/soundvault-server/internal/metastore"
	"github.com/soundvaultapp/soundvault-server/internal/playback"
	"github.com/soundvaultapp/soundvault-server/internal/session"
	"github.com/soundvaultapp/soundvault-server/internal/store"
)

// stubProber returns a fixed duration, or an error when fail is set.
type stubProber struct {
	seconds float64
	fail    bool
}

func (p stubProber) Probe(context.Context, string) (float64, error) {
	if p.fail {
		return 0, errors.New("unreadable header")
	}
	return p.seconds, nil
}

type reconcilerFixture struct {
	reconciler *Reconciler
	sessions   *session.Manager
	registry   *playback.Registry
	root       string
}

func setupReconciler(t *testing.T, prober DurationProber) *reconcilerFixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	backup, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backup.Close() })

	meta := metastore.New(backup, logger)
	registry := playback.NewRegistry(logger)

	return &reconcilerFixture{
		reconciler: NewReconciler(meta, registry, prober, logger),
		sessions:   session.NewManager(backup, logger),
		registry:   registry,
		root:       t.TempDir(),
	}
}

func (f *reconcilerFixture) writeFile(t *testing.T, relPath string, data []byte) {
	t.Helper()
	abs := filepath.Join(f.root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, data, 0o644))
}

func (f *reconcilerFixture) connect(t *testing.T) *session.DirectorySession {
	t.Helper()
	sess, err := f.sessions.RequestDirectory(context.Background(), f.root)
	require.NoError(t, err)
	return sess
}

func recordByFilename(records []domain.SoundRecord, filename string) *domain.SoundRecord {
	for i := range records {
		if records[i].Filename == filename {
			return &records[i]
		}
	}
	return nil
}

func TestReconciler_FirstScanSynthesizesRecords(t *testing.T) {
	f := setupReconciler(t, stubProber{seconds: 2.5})
	f.writeFile(t, "kick.wav", []byte("a"))
	f.writeFile(t, "impacts/snare.wav", []byte("b"))
	f.writeFile(t, "notes.txt", []byte("not audio"))
	sess := f.connect(t)

	result, err := f.reconciler.Scan(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Added)
	assert.Equal(t, 0, result.Kept)
	assert.Equal(t, 0, result.Removed)
	require.Len(t, result.Records, 2)

	kick := recordByFilename(result.Records, "kick.wav")
	require.NotNil(t, kick)
	assert.True(t, strings.HasPrefix(kick.ID, "snd-"))
	assert.Equal(t, "Kick", kick.Name)
	assert.Equal(t, domain.CategoryUncategorized, kick.Category)
	assert.Equal(t, []string{domain.TagNewlyDetected}, kick.Tags)
	assert.Equal(t, 2.5, kick.Duration)
	assert.True(t, strings.HasPrefix(kick.URL, playback.URLPrefix))

	snare := recordByFilename(result.Records, "impacts/snare.wav")
	require.NotNil(t, snare)
	assert.Equal(t, "Snare", snare.Name)
}

func TestReconciler_ScanPersistsBeforeReturning(t *testing.T) {
	f := setupReconciler(t, nil)
	f.writeFile(t, "kick.wav", []byte("a"))
	sess := f.connect(t)

	_, err := f.reconciler.Scan(context.Background(), sess)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(f.root, metastore.MetadataFilename))
	require.NoError(t, err)
	assert.Contains(t, string(data), "kick.wav")
	assert.NotContains(t, string(data), `"url"`)
}

func TestReconciler_RescanKeepsIdentity(t *testing.T) {
	f := setupReconciler(t, nil)
	f.writeFile(t, "kick.wav", []byte("a"))
	sess := f.connect(t)
	ctx := context.Background()

	first, err := f.reconciler.Scan(ctx, sess)
	require.NoError(t, err)
	firstRec := recordByFilename(first.Records, "kick.wav")
	require.NotNil(t, firstRec)

	second, err := f.reconciler.Scan(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 0, second.Added)
	assert.Equal(t, 1, second.Kept)

	secondRec := recordByFilename(second.Records, "kick.wav")
	require.NotNil(t, secondRec)
	assert.Equal(t, firstRec.ID, secondRec.ID, "ID must be stable across rescans")
	assert.Equal(t, firstRec.Tags, secondRec.Tags)
	assert.NotEqual(t, firstRec.URL, secondRec.URL, "playback reference is reissued per scan")
}

func TestReconciler_RescanPreservesUserEdits(t *testing.T) {
	f := setupReconciler(t, nil)
	f.writeFile(t, "kick.wav", []byte("a"))
	sess := f.connect(t)
	ctx := context.Background()

	first, err := f.reconciler.Scan(ctx, sess)
	require.NoError(t, err)

	// Simulate a user edit persisted between scans.
	edited := first.Records
	edited[0].Name = "Big Kick"
	edited[0].Category = "impacts"
	edited[0].Tags = []string{"drum"}
	require.NoError(t, f.reconciler.meta.Write(ctx, domain.Snapshot(edited, nil), sess))

	second, err := f.reconciler.Scan(ctx, sess)
	require.NoError(t, err)
	rec := recordByFilename(second.Records, "kick.wav")
	require.NotNil(t, rec)
	assert.Equal(t, "Big Kick", rec.Name)
	assert.Equal(t, "impacts", rec.Category)
	assert.Equal(t, []string{"drum"}, rec.Tags)
}

func TestReconciler_RemovedFileDropsRecord(t *testing.T) {
	f := setupReconciler(t, nil)
	f.writeFile(t, "kick.wav", []byte("a"))
	f.writeFile(t, "snare.wav", []byte("b"))
	sess := f.connect(t)
	ctx := context.Background()

	first, err := f.reconciler.Scan(ctx, sess)
	require.NoError(t, err)
	require.Len(t, first.Records, 2)

	require.NoError(t, os.Remove(filepath.Join(f.root, "snare.wav")))

	second, err := f.reconciler.Scan(ctx, sess)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Removed)
	assert.Equal(t, 1, second.Kept)
	require.Len(t, second.Records, 1)
	assert.Equal(t, "kick.wav", second.Records[0].Filename)

	// The dropped record's playback token is revoked.
	assert.Equal(t, 1, f.registry.Len())
}

func TestReconciler_ProbeFailureIsSoft(t *testing.T) {
	f := setupReconciler(t, stubProber{fail: true})
	f.writeFile(t, "kick.wav", []byte("a"))
	sess := f.connect(t)

	result, err := f.reconciler.Scan(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Added)
	assert.Equal(t, 1, result.Errors)
	require.Len(t, result.Records, 1)
	assert.Equal(t, float64(0), result.Records[0].Duration)
}

func TestReconciler_FallbackScan(t *testing.T) {
	f := setupReconciler(t, stubProber{seconds: 9})
	sess := f.sessions.OpenFallback(map[string][]byte{
		"kick.wav":  []byte("a"),
		"notes.txt": []byte("x"),
	})

	result, err := f.reconciler.Scan(context.Background(), sess)
	require.NoError(t, err)

	assert.Equal(t, 1, result.Added)
	require.Len(t, result.Records, 1)
	// No filesystem root to probe against in fallback mode.
	assert.Equal(t, float64(0), result.Records[0].Duration)
	assert.True(t, strings.HasPrefix(result.Records[0].URL, playback.URLPrefix))
}

func TestReconciler_InactiveSession(t *testing.T) {
	f := setupReconciler(t, nil)
	sess := &session.DirectorySession{ID: "ses-x", Mode: session.ModeDisconnected}

	_, err := f.reconciler.Scan(context.Background(), sess)
	assert.Error(t, err)
}
