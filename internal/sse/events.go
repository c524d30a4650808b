// Package sse implements Server-Sent Events so every open UI surface
// (library grid, upload modal, tagging panel) observes mutations made by
// the others without polling.
package sse

import (
	"time"

	"github.com/soundvaultapp/soundvault-server/internal/domain"
)

// EventType represents the type of SSE event.
type EventType string

const (
	// EventSoundCreated represents a sound record creation.
	EventSoundCreated EventType = "sound.created"
	// EventSoundUpdated represents a sound record update.
	EventSoundUpdated EventType = "sound.updated"
	// EventSoundDeleted represents a sound record removal.
	EventSoundDeleted EventType = "sound.deleted"

	// EventCategoryCreated represents a custom category creation.
	EventCategoryCreated EventType = "category.created"
	// EventCategoryDeleted represents a custom category deletion.
	EventCategoryDeleted EventType = "category.deleted"

	// EventScanStarted represents a library scan start.
	EventScanStarted EventType = "library.scan_started"
	// EventScanComplete represents a library scan completion.
	EventScanComplete EventType = "library.scan_completed"

	// EventTaggingProgress reports batch tagging advancing one item.
	EventTaggingProgress EventType = "tagging.progress"

	// EventHeartbeat represents a connection keepalive.
	EventHeartbeat EventType = "heartbeat"
)

// Event is the envelope broadcast to clients.
type Event struct {
	Type      EventType `json:"type"`
	Data      any       `json:"data,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewSoundEvent builds a sound lifecycle event. The record's ephemeral
// URL is included - clients need it for playback - but never persisted.
func NewSoundEvent(t EventType, rec domain.SoundRecord) Event {
	return Event{Type: t, Data: rec, Timestamp: time.Now()}
}

// NewCategoryEvent builds a category lifecycle event.
func NewCategoryEvent(t EventType, name string) Event {
	return Event{Type: t, Data: map[string]string{"name": name}, Timestamp: time.Now()}
}

// NewScanStartedEvent builds a scan start event.
func NewScanStartedEvent() Event {
	return Event{Type: EventScanStarted, Timestamp: time.Now()}
}

// NewScanCompleteEvent builds a scan completion event with counts.
func NewScanCompleteEvent(added, removed, errors int) Event {
	return Event{
		Type: EventScanComplete,
		Data: map[string]int{
			"added":   added,
			"removed": removed,
			"errors":  errors,
		},
		Timestamp: time.Now(),
	}
}

// NewTaggingProgressEvent reports one batch-tagging step.
func NewTaggingProgressEvent(done, total int, soundID string) Event {
	return Event{
		Type: EventTaggingProgress,
		Data: map[string]any{
			"done":    done,
			"total":   total,
			"soundId": soundID,
		},
		Timestamp: time.Now(),
	}
}

// NewHeartbeatEvent builds a keepalive event.
func NewHeartbeatEvent() Event {
	return Event{Type: EventHeartbeat, Timestamp: time.Now()}
}
