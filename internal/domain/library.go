package domain

// LibrarySnapshot is the full persisted state of a library: every record
// (sans playback URLs) plus the user-defined categories. Both persistence
// tiers store exactly this shape, always as a whole - there is no partial
// or incremental write path.
type LibrarySnapshot struct {
	Sounds           []PersistableSoundRecord `json:"sounds"`
	CustomCategories []string                 `json:"customCategories"`
}

// EmptySnapshot returns a snapshot with non-nil, zero-length slices so it
// serializes as empty arrays rather than nulls.
func EmptySnapshot() *LibrarySnapshot {
	return &LibrarySnapshot{
		Sounds:           []PersistableSoundRecord{},
		CustomCategories: []string{},
	}
}

// Snapshot builds a LibrarySnapshot from live records and categories.
func Snapshot(records []SoundRecord, customCategories []string) *LibrarySnapshot {
	snap := EmptySnapshot()
	for _, r := range records {
		snap.Sounds = append(snap.Sounds, r.ToPersistable())
	}
	if len(customCategories) > 0 {
		snap.CustomCategories = append(snap.CustomCategories, customCategories...)
	}
	return snap
}

// Records rehydrates the snapshot's persisted records.
func (s *LibrarySnapshot) Records() []SoundRecord {
	out := make([]SoundRecord, 0, len(s.Sounds))
	for _, p := range s.Sounds {
		out = append(out, p.ToRecord())
	}
	return out
}
