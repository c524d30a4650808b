package api

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/soundvaultapp/soundvault-server/internal/domain"
	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
	"github.com/soundvaultapp/soundvault-server/internal/library"
	"github.com/soundvaultapp/soundvault-server/internal/search"
)

func (s *Server) registerSoundRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "scanLibrary",
		Method:      http.MethodPost,
		Path:        "/api/v1/library/scan",
		Summary:     "Scan library",
		Description: "Reconciles the folder contents against recorded metadata",
		Tags:        []string{"Library"},
	}, s.handleScanLibrary)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSounds",
		Method:      http.MethodGet,
		Path:        "/api/v1/sounds",
		Summary:     "List sounds",
		Description: "Returns all sound records",
		Tags:        []string{"Sounds"},
	}, s.handleListSounds)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSound",
		Method:      http.MethodGet,
		Path:        "/api/v1/sounds/{id}",
		Summary:     "Get sound",
		Description: "Returns a sound record by ID",
		Tags:        []string{"Sounds"},
	}, s.handleGetSound)

	huma.Register(s.api, huma.Operation{
		OperationID: "addSound",
		Method:      http.MethodPost,
		Path:        "/api/v1/sounds",
		Summary:     "Add sound",
		Description: "Writes an audio file into the folder and records it",
		Tags:        []string{"Sounds"},
	}, s.handleAddSound)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateSound",
		Method:      http.MethodPatch,
		Path:        "/api/v1/sounds/{id}",
		Summary:     "Update sound",
		Description: "Applies a partial update to a sound record",
		Tags:        []string{"Sounds"},
	}, s.handleUpdateSound)

	huma.Register(s.api, huma.Operation{
		OperationID: "setFavorite",
		Method:      http.MethodPut,
		Path:        "/api/v1/sounds/{id}/favorite",
		Summary:     "Set favorite",
		Description: "Sets or clears the favorite flag",
		Tags:        []string{"Sounds"},
	}, s.handleSetFavorite)

	huma.Register(s.api, huma.Operation{
		OperationID: "moveSound",
		Method:      http.MethodPut,
		Path:        "/api/v1/sounds/{id}/category",
		Summary:     "Move sound",
		Description: "Reassigns a sound to another category",
		Tags:        []string{"Sounds"},
	}, s.handleMoveSound)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchSounds",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search sounds",
		Description: "Full-text search over names, filenames and tags",
		Tags:        []string{"Search"},
	}, s.handleSearchSounds)
}

// === DTOs ===

type ScanResultResponse struct {
	Added   int `json:"added" doc:"Newly detected files"`
	Kept    int `json:"kept" doc:"Files matched to prior records"`
	Removed int `json:"removed" doc:"Prior records whose file is gone"`
	Errors  int `json:"errors" doc:"Soft per-file errors"`
	Total   int `json:"total" doc:"Records after reconciliation"`
}

type ScanOutput struct {
	Body ScanResultResponse
}

type ListSoundsResponse struct {
	Sounds []SoundResponse `json:"sounds" doc:"All sound records"`
}

type ListSoundsOutput struct {
	Body ListSoundsResponse
}

type GetSoundInput struct {
	ID string `path:"id" doc:"Sound ID"`
}

type SoundOutput struct {
	Body SoundResponse
}

type AddSoundRequest struct {
	Name     string `json:"name,omitempty" doc:"Display name; derived from the filename if empty"`
	Category string `json:"category,omitempty" doc:"Target category; default when empty"`
	Data     string `json:"data" validate:"required" doc:"Base64-encoded audio bytes"`
	MimeType string `json:"mimeType,omitempty" doc:"Declared MIME type, used to pick the extension"`
	Source   string `json:"source,omitempty" doc:"Provenance: uploaded, extracted or web"`
}

type AddSoundInput struct {
	Body AddSoundRequest
}

type UpdateSoundRequest struct {
	Name            *string   `json:"name,omitempty" doc:"Display name"`
	Category        *string   `json:"category,omitempty" doc:"Category name"`
	Tags            *[]string `json:"tags,omitempty" doc:"Replacement tag list"`
	IsFavorite      *bool     `json:"isFavorite,omitempty" doc:"Favorite flag"`
	CopyrightStatus *string   `json:"copyrightStatus,omitempty" doc:"Copyright status"`
	CopyrightReason *string   `json:"copyrightReason,omitempty" doc:"Copyright reason"`
}

type UpdateSoundInput struct {
	ID   string `path:"id" doc:"Sound ID"`
	Body UpdateSoundRequest
}

type SetFavoriteRequest struct {
	Favorite bool `json:"favorite" doc:"New favorite state"`
}

type SetFavoriteInput struct {
	ID   string `path:"id" doc:"Sound ID"`
	Body SetFavoriteRequest
}

type MoveSoundRequest struct {
	Category string `json:"category" validate:"required" doc:"Target category"`
}

type MoveSoundInput struct {
	ID   string `path:"id" doc:"Sound ID"`
	Body MoveSoundRequest
}

type SearchSoundsInput struct {
	Query    string `query:"q" doc:"Search text"`
	Category string `query:"category" doc:"Exact category filter"`
	Favorite bool   `query:"favorite" doc:"Favorites only"`
	Limit    int    `query:"limit" doc:"Maximum results (default 50)"`
}

type SearchSoundsResponse struct {
	Query  string          `json:"query" doc:"Echoed search text"`
	Total  uint64          `json:"total" doc:"Total matches"`
	Sounds []SoundResponse `json:"sounds" doc:"Matching records in relevance order"`
}

type SearchSoundsOutput struct {
	Body SearchSoundsResponse
}

// === Handlers ===

func (s *Server) handleScanLibrary(ctx context.Context, _ *struct{}) (*ScanOutput, error) {
	result, err := s.library.Scan(ctx)
	if err != nil {
		return nil, err
	}

	return &ScanOutput{Body: ScanResultResponse{
		Added:   result.Added,
		Kept:    result.Kept,
		Removed: result.Removed,
		Errors:  result.Errors,
		Total:   len(result.Records),
	}}, nil
}

func (s *Server) handleListSounds(_ context.Context, _ *struct{}) (*ListSoundsOutput, error) {
	return &ListSoundsOutput{Body: ListSoundsResponse{
		Sounds: mapSoundResponses(s.library.Sounds()),
	}}, nil
}

func (s *Server) handleGetSound(_ context.Context, input *GetSoundInput) (*SoundOutput, error) {
	rec, err := s.library.Sound(input.ID)
	if err != nil {
		return nil, err
	}
	return &SoundOutput{Body: mapSoundResponse(rec)}, nil
}

func (s *Server) handleAddSound(ctx context.Context, input *AddSoundInput) (*SoundOutput, error) {
	if err := s.validate.Validate(input.Body); err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(input.Body.Data)
	if err != nil {
		return nil, apperrors.Validation("sound data is not valid base64")
	}

	rec, err := s.library.AddSound(ctx, library.AddSoundParams{
		Name:     input.Body.Name,
		Category: input.Body.Category,
		Data:     data,
		MimeType: input.Body.MimeType,
		Source:   domain.Source(input.Body.Source),
	})
	if err != nil {
		return nil, err
	}

	return &SoundOutput{Body: mapSoundResponse(rec)}, nil
}

func (s *Server) handleUpdateSound(ctx context.Context, input *UpdateSoundInput) (*SoundOutput, error) {
	rec, err := s.library.UpdateSound(ctx, input.ID, library.UpdateSoundParams{
		Name:            input.Body.Name,
		Category:        input.Body.Category,
		Tags:            input.Body.Tags,
		IsFavorite:      input.Body.IsFavorite,
		CopyrightStatus: input.Body.CopyrightStatus,
		CopyrightReason: input.Body.CopyrightReason,
	})
	if err != nil {
		return nil, err
	}
	return &SoundOutput{Body: mapSoundResponse(rec)}, nil
}

func (s *Server) handleSetFavorite(ctx context.Context, input *SetFavoriteInput) (*SoundOutput, error) {
	rec, err := s.library.SetFavorite(ctx, input.ID, input.Body.Favorite)
	if err != nil {
		return nil, err
	}
	return &SoundOutput{Body: mapSoundResponse(rec)}, nil
}

func (s *Server) handleMoveSound(ctx context.Context, input *MoveSoundInput) (*SoundOutput, error) {
	rec, err := s.library.MoveToCategory(ctx, input.ID, input.Body.Category)
	if err != nil {
		return nil, err
	}
	return &SoundOutput{Body: mapSoundResponse(rec)}, nil
}

func (s *Server) handleSearchSounds(ctx context.Context, input *SearchSoundsInput) (*SearchSoundsOutput, error) {
	params := search.DefaultSearchParams()
	params.Query = input.Query
	params.Category = input.Category
	params.FavoriteOnly = input.Favorite
	if input.Limit > 0 {
		params.Limit = input.Limit
	}

	records, result, err := s.library.Search(ctx, params)
	if err != nil {
		return nil, err
	}

	return &SearchSoundsOutput{Body: SearchSoundsResponse{
		Query:  result.Query,
		Total:  result.Total,
		Sounds: mapSoundResponses(records),
	}}, nil
}
