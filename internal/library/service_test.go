package library

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundvaultapp/soundvault-server/internal/domain"
	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
	"github.com/soundvaultapp/soundvault-server/internal/metastore"
	"github.com/soundvaultapp/soundvault-server/internal/playback"
	"github.com/soundvaultapp/soundvault-server/internal/scanner"
	"github.com/soundvaultapp/soundvault-server/internal/search"
	"github.com/soundvaultapp/soundvault-server/internal/session"
	"github.com/soundvaultapp/soundvault-server/internal/sse"
	"github.com/soundvaultapp/soundvault-server/internal/store"
	"github.com/soundvaultapp/soundvault-server/internal/tagger"
)

// captureEmitter records emitted events for assertions.
type captureEmitter struct {
	mu     sync.Mutex
	events []sse.Event
}

func (c *captureEmitter) Emit(event any) {
	e, ok := event.(sse.Event)
	if !ok {
		return
	}
	c.mu.Lock()
	c.events = append(c.events, e)
	c.mu.Unlock()
}

func (c *captureEmitter) types() []sse.EventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]sse.EventType, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.Type)
	}
	return out
}

type serviceFixture struct {
	svc      *Service
	sessions *session.Manager
	registry *playback.Registry
	emitter  *captureEmitter
	root     string
}

func setupService(t *testing.T, tagClient *tagger.Client) *serviceFixture {
	return setupServiceWithProber(t, tagClient, nil)
}

func setupServiceWithProber(t *testing.T, tagClient *tagger.Client, prober scanner.DurationProber) *serviceFixture {
	t.Helper()
	logger := slog.New(slog.DiscardHandler)

	backup, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = backup.Close() })

	meta := metastore.New(backup, logger)
	registry := playback.NewRegistry(logger)
	reconciler := scanner.NewReconciler(meta, registry, prober, logger)
	sessions := session.NewManager(backup, logger)

	index, err := search.NewSearchIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	if tagClient == nil {
		tagClient = tagger.New(tagger.Options{})
	}

	emitter := &captureEmitter{}
	svc := NewService(meta, sessions, reconciler, registry, index, tagClient, prober, emitter, logger)

	return &serviceFixture{
		svc:      svc,
		sessions: sessions,
		registry: registry,
		emitter:  emitter,
		root:     t.TempDir(),
	}
}

func (f *serviceFixture) writeFile(t *testing.T, relPath string, data []byte) {
	t.Helper()
	abs := filepath.Join(f.root, filepath.FromSlash(relPath))
	require.NoError(t, os.MkdirAll(filepath.Dir(abs), 0o755))
	require.NoError(t, os.WriteFile(abs, data, 0o644))
}

func (f *serviceFixture) connectAndScan(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	_, err := f.sessions.RequestDirectory(ctx, f.root)
	require.NoError(t, err)
	_, err = f.svc.Scan(ctx)
	require.NoError(t, err)
}

func TestService_ScanPopulatesLibrary(t *testing.T) {
	f := setupService(t, nil)
	f.writeFile(t, "kick.wav", []byte("a"))
	f.writeFile(t, "ui/click.mp3", []byte("b"))
	f.connectAndScan(t)

	sounds := f.svc.Sounds()
	assert.Len(t, sounds, 2)

	all, custom := f.svc.Categories()
	assert.Equal(t, domain.DefaultCategories, all)
	assert.Empty(t, custom)

	assert.Contains(t, f.emitter.types(), sse.EventScanStarted)
	assert.Contains(t, f.emitter.types(), sse.EventScanComplete)
}

// gateProber parks inside the reconciler once armed, holding a scan
// mid-merge so the test can race a mutation against it.
type gateProber struct {
	armed   atomic.Bool
	entered chan struct{}
	release chan struct{}
}

func (p *gateProber) Probe(context.Context, string) (float64, error) {
	if p.armed.Load() {
		p.entered <- struct{}{}
		<-p.release
	}
	return 1, nil
}

func TestService_ScanSerializesWithUpdates(t *testing.T) {
	prober := &gateProber{entered: make(chan struct{}), release: make(chan struct{})}
	f := setupServiceWithProber(t, nil, prober)
	f.writeFile(t, "kick.wav", []byte("a"))
	f.connectAndScan(t)

	rec := f.svc.Sounds()[0]

	// A new file forces the next scan to probe, parking it between its
	// metadata read and its persisted merge.
	f.writeFile(t, "snare.wav", []byte("b"))
	prober.armed.Store(true)

	scanDone := make(chan error, 1)
	go func() {
		_, err := f.svc.Scan(context.Background())
		scanDone <- err
	}()
	<-prober.entered

	updateDone := make(chan error, 1)
	go func() {
		name := "Renamed Kick"
		_, err := f.svc.UpdateSound(context.Background(), rec.ID, UpdateSoundParams{Name: &name})
		updateDone <- err
	}()

	// Give the update time to reach the lock before the scan resumes.
	time.Sleep(50 * time.Millisecond)
	close(prober.release)

	require.NoError(t, <-scanDone)
	require.NoError(t, <-updateDone)

	got, err := f.svc.Sound(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed Kick", got.Name, "an edit racing a rescan must not be lost")

	data, err := os.ReadFile(filepath.Join(f.root, metastore.MetadataFilename))
	require.NoError(t, err)
	assert.Contains(t, string(data), "Renamed Kick")
}

func TestService_ScanWithoutSession(t *testing.T) {
	f := setupService(t, nil)

	_, err := f.svc.Scan(context.Background())
	assert.True(t, apperrors.Is(err, apperrors.ErrNoActiveSession))
}

func TestService_AddSound(t *testing.T) {
	f := setupService(t, nil)
	f.connectAndScan(t)

	rec, err := f.svc.AddSound(context.Background(), AddSoundParams{
		Name:     "Laser",
		Category: "ui",
		Data:     []byte("pew"),
		MimeType: "audio/wav",
	})
	require.NoError(t, err)

	assert.Equal(t, "Laser", rec.Name)
	assert.Equal(t, "Laser.wav", rec.Filename)
	assert.Equal(t, "ui", rec.Category)
	assert.NotEmpty(t, rec.URL)

	data, err := os.ReadFile(filepath.Join(f.root, "Laser.wav"))
	require.NoError(t, err)
	assert.Equal(t, []byte("pew"), data)

	assert.Len(t, f.svc.Sounds(), 1)
	assert.Contains(t, f.emitter.types(), sse.EventSoundCreated)
}

func TestService_AddSound_FilenameCollision(t *testing.T) {
	f := setupService(t, nil)
	f.connectAndScan(t)
	ctx := context.Background()

	first, err := f.svc.AddSound(ctx, AddSoundParams{Name: "Laser", Data: []byte("a"), MimeType: "audio/wav"})
	require.NoError(t, err)
	second, err := f.svc.AddSound(ctx, AddSoundParams{Name: "Laser", Data: []byte("b"), MimeType: "audio/wav"})
	require.NoError(t, err)

	assert.Equal(t, "Laser.wav", first.Filename)
	assert.Equal(t, "Laser (1).wav", second.Filename)
	assert.NotEqual(t, first.ID, second.ID)
}

func TestService_AddSound_UppercaseExtension(t *testing.T) {
	f := setupService(t, nil)
	f.connectAndScan(t)
	ctx := context.Background()

	rec, err := f.svc.AddSound(ctx, AddSoundParams{
		Name:     "Laser.WAV",
		Data:     []byte("pew"),
		MimeType: "audio/wav",
	})
	require.NoError(t, err)
	assert.Equal(t, "Laser.wav", rec.Filename, "extension is trimmed case-insensitively, not doubled")

	rec, err = f.svc.AddSound(ctx, AddSoundParams{Name: "Boom.FLAC", Data: []byte("b")})
	require.NoError(t, err)
	assert.Equal(t, "Boom.flac", rec.Filename)
}

func TestService_AddSound_ReadOnlyMode(t *testing.T) {
	f := setupService(t, nil)
	f.sessions.OpenFallback(map[string][]byte{"kick.wav": []byte("a")})
	_, err := f.svc.Scan(context.Background())
	require.NoError(t, err)

	_, err = f.svc.AddSound(context.Background(), AddSoundParams{Name: "X", Data: []byte("x")})
	assert.True(t, apperrors.Is(err, apperrors.ErrReadOnlyMode))
}

func TestService_AddSound_UnknownCategory(t *testing.T) {
	f := setupService(t, nil)
	f.connectAndScan(t)

	_, err := f.svc.AddSound(context.Background(), AddSoundParams{
		Name:     "X",
		Category: "nope",
		Data:     []byte("x"),
	})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))
}

func TestService_UpdateSound(t *testing.T) {
	f := setupService(t, nil)
	f.writeFile(t, "kick.wav", []byte("a"))
	f.connectAndScan(t)
	ctx := context.Background()

	rec := f.svc.Sounds()[0]

	name := "Big Kick"
	tags := []string{"drum", "punchy"}
	fav := true
	updated, err := f.svc.UpdateSound(ctx, rec.ID, UpdateSoundParams{
		Name:       &name,
		Tags:       &tags,
		IsFavorite: &fav,
	})
	require.NoError(t, err)

	assert.Equal(t, "Big Kick", updated.Name)
	assert.Equal(t, []string{"drum", "punchy"}, updated.Tags)
	assert.True(t, updated.IsFavorite)

	got, err := f.svc.Sound(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, updated, got)
}

func TestService_UpdateSound_Validation(t *testing.T) {
	f := setupService(t, nil)
	f.writeFile(t, "kick.wav", []byte("a"))
	f.connectAndScan(t)
	ctx := context.Background()

	rec := f.svc.Sounds()[0]

	empty := ""
	_, err := f.svc.UpdateSound(ctx, rec.ID, UpdateSoundParams{Name: &empty})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	bad := "nope"
	_, err = f.svc.UpdateSound(ctx, rec.ID, UpdateSoundParams{Category: &bad})
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	_, err = f.svc.UpdateSound(ctx, "snd-missing", UpdateSoundParams{Name: &bad})
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestService_Categories(t *testing.T) {
	f := setupService(t, nil)
	f.connectAndScan(t)
	ctx := context.Background()

	require.NoError(t, f.svc.CreateCategory(ctx, "cinematic"))

	err := f.svc.CreateCategory(ctx, "cinematic")
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyExists))

	err = f.svc.CreateCategory(ctx, domain.CategoryUncategorized)
	assert.True(t, apperrors.Is(err, apperrors.ErrAlreadyExists))

	_, custom := f.svc.Categories()
	assert.Equal(t, []string{"cinematic"}, custom)
}

func TestService_DeleteCategory_ReassignsMembers(t *testing.T) {
	f := setupService(t, nil)
	f.writeFile(t, "kick.wav", []byte("a"))
	f.connectAndScan(t)
	ctx := context.Background()

	require.NoError(t, f.svc.CreateCategory(ctx, "cinematic"))
	rec := f.svc.Sounds()[0]
	_, err := f.svc.MoveToCategory(ctx, rec.ID, "cinematic")
	require.NoError(t, err)

	require.NoError(t, f.svc.DeleteCategory(ctx, "cinematic"))

	got, err := f.svc.Sound(rec.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CategoryUncategorized, got.Category)

	_, custom := f.svc.Categories()
	assert.Empty(t, custom)

	// The reassignment landed in the sidecar, not just in memory.
	data, err := os.ReadFile(filepath.Join(f.root, metastore.MetadataFilename))
	require.NoError(t, err)
	assert.NotContains(t, string(data), "cinematic")
}

func TestService_DeleteCategory_Defaults(t *testing.T) {
	f := setupService(t, nil)
	f.connectAndScan(t)
	ctx := context.Background()

	err := f.svc.DeleteCategory(ctx, domain.CategoryUncategorized)
	assert.True(t, apperrors.Is(err, apperrors.ErrValidation))

	err = f.svc.DeleteCategory(ctx, "never-existed")
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}

func TestService_Search(t *testing.T) {
	f := setupService(t, nil)
	f.writeFile(t, "door_slam.wav", []byte("a"))
	f.writeFile(t, "rain_loop.ogg", []byte("b"))
	f.connectAndScan(t)

	params := search.DefaultSearchParams()
	params.Query = "door"

	records, result, err := f.svc.Search(context.Background(), params)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Total)
	require.Len(t, records, 1)
	assert.Equal(t, "door_slam.wav", records[0].Filename)
}

func TestService_Clear(t *testing.T) {
	f := setupService(t, nil)
	f.writeFile(t, "kick.wav", []byte("a"))
	f.connectAndScan(t)
	require.NotEmpty(t, f.svc.Sounds())

	f.svc.Clear()

	assert.Empty(t, f.svc.Sounds())
	assert.Equal(t, 0, f.registry.Len())
}
