// Package search provides full-text search over the sound library using
// Bleve. Name matching tolerates typos; category and tags match exactly.
package search

import (
	"github.com/soundvaultapp/soundvault-server/internal/domain"
)

// SoundDocument is the document structure for the Bleve index.
type SoundDocument struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Filename  string   `json:"filename"`
	Category  string   `json:"category"`
	Tags      []string `json:"tags,omitempty"`
	Favorite  bool     `json:"favorite"`
	Duration  float64  `json:"duration,omitempty"`
	CreatedAt int64    `json:"created_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// Bleve defaults to Go struct field names (capitalized); the index
// mapping uses lowercase names, so convert explicitly.
func (d *SoundDocument) ToMap() map[string]interface{} {
	m := map[string]interface{}{
		"id":         d.ID,
		"name":       d.Name,
		"filename":   d.Filename,
		"category":   d.Category,
		"favorite":   d.Favorite,
		"created_at": d.CreatedAt,
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	if d.Duration > 0 {
		m["duration"] = d.Duration
	}
	return m
}

// FromRecord converts a sound record to a search document.
func FromRecord(rec domain.SoundRecord) *SoundDocument {
	return &SoundDocument{
		ID:        rec.ID,
		Name:      rec.Name,
		Filename:  rec.Filename,
		Category:  rec.Category,
		Tags:      rec.Tags,
		Favorite:  rec.IsFavorite,
		Duration:  rec.Duration,
		CreatedAt: rec.CreatedAt.UnixMilli(),
	}
}
