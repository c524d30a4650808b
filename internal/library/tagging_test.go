package library

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundvaultapp/soundvault-server/internal/domain"
	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
	"github.com/soundvaultapp/soundvault-server/internal/sse"
	"github.com/soundvaultapp/soundvault-server/internal/tagger"
)

func newTagServer(t *testing.T, calls *atomic.Int32, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls != nil {
			calls.Add(1)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestService_BatchTag_AppliesSuggestions(t *testing.T) {
	srv := newTagServer(t, nil, `{"name":"Door Slam","category":"impacts","tags":["door","slam"]}`)
	client := tagger.New(tagger.Options{BaseURL: srv.URL, RequestsPerSec: 100})

	f := setupService(t, client)
	f.writeFile(t, "door_slam.wav", []byte("a"))
	f.connectAndScan(t)

	require.NoError(t, f.svc.StartBatchTag())
	f.svc.taggingWG.Wait()

	rec := f.svc.Sounds()[0]
	assert.Equal(t, "Door Slam", rec.Name)
	assert.Equal(t, "impacts", rec.Category)
	assert.Equal(t, []string{"door", "slam"}, rec.Tags)
	assert.False(t, rec.IsNewlyDetected(), "sentinel tag is cleared on success")

	assert.Contains(t, f.emitter.types(), sse.EventTaggingProgress)
	assert.False(t, f.svc.TaggingInProgress())
}

func TestService_BatchTag_InvalidCategoryKeepsDefault(t *testing.T) {
	srv := newTagServer(t, nil, `{"name":"Mystery","category":"not-a-category","tags":["odd"]}`)
	client := tagger.New(tagger.Options{BaseURL: srv.URL, RequestsPerSec: 100})

	f := setupService(t, client)
	f.writeFile(t, "mystery.wav", []byte("a"))
	f.connectAndScan(t)

	require.NoError(t, f.svc.StartBatchTag())
	f.svc.taggingWG.Wait()

	rec := f.svc.Sounds()[0]
	assert.Equal(t, "Mystery", rec.Name)
	assert.Equal(t, domain.CategoryUncategorized, rec.Category,
		"unknown suggested category is ignored")
	assert.Equal(t, []string{"odd"}, rec.Tags)
}

func TestService_BatchTag_FailureKeepsSentinel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	t.Cleanup(srv.Close)
	client := tagger.New(tagger.Options{BaseURL: srv.URL, RequestsPerSec: 100})

	f := setupService(t, client)
	f.writeFile(t, "kick.wav", []byte("a"))
	f.connectAndScan(t)

	require.NoError(t, f.svc.StartBatchTag())
	f.svc.taggingWG.Wait()

	rec := f.svc.Sounds()[0]
	assert.Equal(t, "Kick", rec.Name, "synthesized defaults stay on failure")
	assert.True(t, rec.IsNewlyDetected(), "failed item remains a candidate for the next run")
}

func TestService_BatchTag_OnlyTargetsNewlyDetected(t *testing.T) {
	var calls atomic.Int32
	srv := newTagServer(t, &calls, `{"name":"Tagged","category":"music","tags":[]}`)
	client := tagger.New(tagger.Options{BaseURL: srv.URL, RequestsPerSec: 100})

	f := setupService(t, client)
	f.writeFile(t, "kick.wav", []byte("a"))
	f.writeFile(t, "snare.wav", []byte("b"))
	f.connectAndScan(t)

	// Manually clear the sentinel on one record.
	first := f.svc.Sounds()[0]
	tags := []string{"handled"}
	_, err := f.svc.UpdateSound(context.Background(), first.ID, UpdateSoundParams{Tags: &tags})
	require.NoError(t, err)

	require.NoError(t, f.svc.StartBatchTag())
	f.svc.taggingWG.Wait()

	assert.Equal(t, int32(1), calls.Load(), "already-tagged records are skipped")
}

func TestService_BatchTag_Unconfigured(t *testing.T) {
	f := setupService(t, nil)
	f.writeFile(t, "kick.wav", []byte("a"))
	f.connectAndScan(t)

	err := f.svc.StartBatchTag()
	assert.True(t, apperrors.Is(err, apperrors.ErrUnsupported))
}

func TestService_BatchTag_NoSession(t *testing.T) {
	srv := newTagServer(t, nil, `{}`)
	client := tagger.New(tagger.Options{BaseURL: srv.URL, RequestsPerSec: 100})

	f := setupService(t, client)
	err := f.svc.StartBatchTag()
	assert.True(t, apperrors.Is(err, apperrors.ErrNoActiveSession))
}

func TestService_CancelBatchTag_Idle(t *testing.T) {
	f := setupService(t, nil)
	err := f.svc.CancelBatchTag()
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))
}
