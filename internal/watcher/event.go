// Package watcher monitors the connected sound folder for external
// changes so the library can rescan without the user clicking refresh.
package watcher

import "time"

// EventType represents the type of file system event.
type EventType int

const (
	// EventAdded is emitted when a new file is detected (after settling).
	EventAdded EventType = iota
	// EventRemoved is emitted when a file is deleted.
	EventRemoved
)

// String returns the string representation of the event type.
func (t EventType) String() string {
	switch t {
	case EventAdded:
		return "added"
	case EventRemoved:
		return "removed"
	default:
		return "unknown"
	}
}

// Event represents a file system event.
type Event struct {
	ModTime time.Time
	Path    string
	Size    int64
	Type    EventType
}
