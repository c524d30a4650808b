package domain

import (
	"encoding/json/v2"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRecord() SoundRecord {
	return SoundRecord{
		ID:         "snd-abc123",
		Name:       "Door Slam",
		Filename:   "impacts/door_slam.wav",
		Category:   "impacts",
		Tags:       []string{"door", "slam"},
		IsFavorite: true,
		Duration:   1.25,
		CreatedAt:  time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Source:     SourceUploaded,
		URL:        "/api/v1/playback/some-token",
	}
}

func TestSoundRecord_PersistableRoundTrip(t *testing.T) {
	rec := sampleRecord()

	got := rec.ToPersistable().ToRecord()

	// Everything except the ephemeral URL survives the round trip.
	rec.URL = ""
	assert.Equal(t, rec, got)
}

func TestPersistableSoundRecord_NeverSerializesURL(t *testing.T) {
	p := sampleRecord().ToPersistable()

	data, err := json.Marshal(p)
	require.NoError(t, err)

	assert.False(t, strings.Contains(string(data), "url"),
		"persisted JSON must not contain a playback URL: %s", data)
	assert.False(t, strings.Contains(string(data), "playback"),
		"persisted JSON must not contain a playback URL: %s", data)
}

func TestSoundRecord_IsNewlyDetected(t *testing.T) {
	rec := sampleRecord()
	assert.False(t, rec.IsNewlyDetected())

	rec.Tags = []string{TagNewlyDetected}
	assert.True(t, rec.IsNewlyDetected())

	rec.Tags = []string{"door", TagNewlyDetected, "slam"}
	assert.True(t, rec.IsNewlyDetected())

	rec.Tags = nil
	assert.False(t, rec.IsNewlyDetected())
}
