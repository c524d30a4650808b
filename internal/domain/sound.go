// Package domain defines the core entities of the sound library:
// sound records, categories, and the persisted library snapshot.
package domain

import "time"

// Source records where a sound originally came from.
type Source string

// Known provenance values.
const (
	SourceUploaded  Source = "uploaded"
	SourceExtracted Source = "extracted"
	SourceWeb       Source = "web"
)

// TagNewlyDetected marks records synthesized by a scan that have not yet
// been through batch tagging. Batch tagging replaces it with real tags.
const TagNewlyDetected = "newly-detected"

// SoundRecord is the in-memory representation of one physical audio asset.
//
// Filename is the reconciliation key: it is the path relative to the managed
// root (at most one subfolder deep) and the only field used to match a live
// file against a previously recorded entry. ID is minted once, the first
// time a filename is seen, and survives rescans unchanged.
//
// URL is an ephemeral playback reference (a token route served by this
// process). It is regenerated on every scan and must never be persisted.
type SoundRecord struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Filename        string    `json:"filename"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags"`
	IsFavorite      bool      `json:"isFavorite"`
	CopyrightStatus string    `json:"copyrightStatus,omitempty"`
	CopyrightReason string    `json:"copyrightReason,omitempty"`
	Duration        float64   `json:"duration"` // seconds, 0 until computed
	CreatedAt       time.Time `json:"createdAt"`
	Source          Source    `json:"source"`
	URL             string    `json:"url,omitempty"`
}

// PersistableSoundRecord is the on-disk shape of a SoundRecord. It is a
// distinct type so a playback URL can never leak into persisted JSON by
// accident: the conversion functions below are total and the persistable
// type simply has no URL field.
type PersistableSoundRecord struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Filename        string    `json:"filename"`
	Category        string    `json:"category"`
	Tags            []string  `json:"tags"`
	IsFavorite      bool      `json:"isFavorite"`
	CopyrightStatus string    `json:"copyrightStatus,omitempty"`
	CopyrightReason string    `json:"copyrightReason,omitempty"`
	Duration        float64   `json:"duration"`
	CreatedAt       time.Time `json:"createdAt"`
	Source          Source    `json:"source"`
}

// ToPersistable strips the ephemeral URL from a record.
func (r SoundRecord) ToPersistable() PersistableSoundRecord {
	return PersistableSoundRecord{
		ID:              r.ID,
		Name:            r.Name,
		Filename:        r.Filename,
		Category:        r.Category,
		Tags:            r.Tags,
		IsFavorite:      r.IsFavorite,
		CopyrightStatus: r.CopyrightStatus,
		CopyrightReason: r.CopyrightReason,
		Duration:        r.Duration,
		CreatedAt:       r.CreatedAt,
		Source:          r.Source,
	}
}

// ToRecord rehydrates a persisted record. The URL starts empty; the caller
// attaches a fresh playback reference for the current session.
func (p PersistableSoundRecord) ToRecord() SoundRecord {
	return SoundRecord{
		ID:              p.ID,
		Name:            p.Name,
		Filename:        p.Filename,
		Category:        p.Category,
		Tags:            p.Tags,
		IsFavorite:      p.IsFavorite,
		CopyrightStatus: p.CopyrightStatus,
		CopyrightReason: p.CopyrightReason,
		Duration:        p.Duration,
		CreatedAt:       p.CreatedAt,
		Source:          p.Source,
	}
}

// IsNewlyDetected reports whether the record still carries the scan
// sentinel tag and is therefore a candidate for batch tagging.
func (r *SoundRecord) IsNewlyDetected() bool {
	for _, tag := range r.Tags {
		if tag == TagNewlyDetected {
			return true
		}
	}
	return false
}
