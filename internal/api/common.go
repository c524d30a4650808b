package api

import (
	"time"

	"github.com/soundvaultapp/soundvault-server/internal/domain"
)

// MessageResponse is a simple acknowledgement body.
type MessageResponse struct {
	Message string `json:"message" doc:"Human-readable result"`
}

// MessageOutput wraps MessageResponse for huma.
type MessageOutput struct {
	Body MessageResponse
}

// SoundResponse is the wire shape of a sound record.
type SoundResponse struct {
	ID              string    `json:"id" doc:"Sound ID"`
	Name            string    `json:"name" doc:"Display name"`
	Filename        string    `json:"filename" doc:"Path relative to the folder root"`
	Category        string    `json:"category" doc:"Category name"`
	Tags            []string  `json:"tags" doc:"Tags"`
	IsFavorite      bool      `json:"isFavorite" doc:"Favorite flag"`
	CopyrightStatus string    `json:"copyrightStatus,omitempty" doc:"Copyright status"`
	CopyrightReason string    `json:"copyrightReason,omitempty" doc:"Copyright reason"`
	Duration        float64   `json:"duration" doc:"Duration in seconds, 0 if unknown"`
	CreatedAt       time.Time `json:"createdAt" doc:"First-seen time"`
	Source          string    `json:"source" doc:"Provenance: uploaded, extracted or web"`
	URL             string    `json:"url,omitempty" doc:"Ephemeral playback URL, valid for this session only"`
}

func mapSoundResponse(rec domain.SoundRecord) SoundResponse {
	return SoundResponse{
		ID:              rec.ID,
		Name:            rec.Name,
		Filename:        rec.Filename,
		Category:        rec.Category,
		Tags:            rec.Tags,
		IsFavorite:      rec.IsFavorite,
		CopyrightStatus: rec.CopyrightStatus,
		CopyrightReason: rec.CopyrightReason,
		Duration:        rec.Duration,
		CreatedAt:       rec.CreatedAt,
		Source:          string(rec.Source),
		URL:             rec.URL,
	}
}

func mapSoundResponses(recs []domain.SoundRecord) []SoundResponse {
	out := make([]SoundResponse, len(recs))
	for i, rec := range recs {
		out[i] = mapSoundResponse(rec)
	}
	return out
}
