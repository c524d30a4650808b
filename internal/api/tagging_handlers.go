package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
)

func (s *Server) registerTaggingRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "startBatchTagging",
		Method:      http.MethodPost,
		Path:        "/api/v1/tagging/batch",
		Summary:     "Start batch tagging",
		Description: "Tags all newly-detected sounds via the AI service, one at a time",
		Tags:        []string{"Tagging"},
	}, s.handleStartBatchTagging)

	huma.Register(s.api, huma.Operation{
		OperationID: "cancelBatchTagging",
		Method:      http.MethodDelete,
		Path:        "/api/v1/tagging/batch",
		Summary:     "Cancel batch tagging",
		Description: "Stops the running batch between items; completed items stay applied",
		Tags:        []string{"Tagging"},
	}, s.handleCancelBatchTagging)

	huma.Register(s.api, huma.Operation{
		OperationID: "getTaggingStatus",
		Method:      http.MethodGet,
		Path:        "/api/v1/tagging/batch",
		Summary:     "Get tagging status",
		Description: "Reports whether a batch run is in progress",
		Tags:        []string{"Tagging"},
	}, s.handleGetTaggingStatus)
}

// === DTOs ===

type TaggingStatusResponse struct {
	Running bool `json:"running" doc:"Whether a batch run is active"`
}

type TaggingStatusOutput struct {
	Body TaggingStatusResponse
}

// === Handlers ===

func (s *Server) handleStartBatchTagging(_ context.Context, _ *struct{}) (*MessageOutput, error) {
	if err := s.library.StartBatchTag(); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Batch tagging started"}}, nil
}

func (s *Server) handleCancelBatchTagging(_ context.Context, _ *struct{}) (*MessageOutput, error) {
	if err := s.library.CancelBatchTag(); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "Batch tagging cancelled"}}, nil
}

func (s *Server) handleGetTaggingStatus(_ context.Context, _ *struct{}) (*TaggingStatusOutput, error) {
	return &TaggingStatusOutput{Body: TaggingStatusResponse{
		Running: s.library.TaggingInProgress(),
	}}, nil
}
