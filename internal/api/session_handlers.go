package api

import (
	"context"
	"encoding/base64"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
)

func (s *Server) registerSessionRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "connectFolder",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/connect",
		Summary:     "Connect sound folder",
		Description: "Connects a directory in read-write mode and scans it",
		Tags:        []string{"Session"},
	}, s.handleConnectFolder)

	huma.Register(s.api, huma.Operation{
		OperationID: "restoreSession",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/restore",
		Summary:     "Restore session",
		Description: "Reconnects the previously granted directory",
		Tags:        []string{"Session"},
	}, s.handleRestoreSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "openFallback",
		Method:      http.MethodPost,
		Path:        "/api/v1/session/fallback",
		Summary:     "Open fallback session",
		Description: "Starts a read-only session over an uploaded file set",
		Tags:        []string{"Session"},
	}, s.handleOpenFallback)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSession",
		Method:      http.MethodGet,
		Path:        "/api/v1/session",
		Summary:     "Get session",
		Description: "Returns the current session state",
		Tags:        []string{"Session"},
	}, s.handleGetSession)

	huma.Register(s.api, huma.Operation{
		OperationID: "disconnectSession",
		Method:      http.MethodDelete,
		Path:        "/api/v1/session",
		Summary:     "Disconnect",
		Description: "Disconnects the folder and forgets the saved grant",
		Tags:        []string{"Session"},
	}, s.handleDisconnectSession)
}

// === DTOs ===

type SessionResponse struct {
	ID        string `json:"id,omitempty" doc:"Session ID"`
	Mode      string `json:"mode" doc:"disconnected, read-write or read-only"`
	Root      string `json:"root,omitempty" doc:"Connected folder path (native sessions only)"`
	Connected bool   `json:"connected" doc:"Whether a session is active"`
}

type SessionOutput struct {
	Body SessionResponse
}

type ConnectFolderRequest struct {
	Path string `json:"path" validate:"required,min=1" doc:"Absolute path of the folder to connect"`
}

type ConnectFolderInput struct {
	Body ConnectFolderRequest
}

type FallbackFile struct {
	Name string `json:"name" validate:"required" doc:"Filename, at most one subfolder deep"`
	Data string `json:"data" validate:"required" doc:"Base64-encoded file contents"`
}

type OpenFallbackRequest struct {
	Files []FallbackFile `json:"files" validate:"required,min=1" doc:"Selected files"`
}

type OpenFallbackInput struct {
	Body OpenFallbackRequest
}

// === Handlers ===

func (s *Server) handleConnectFolder(ctx context.Context, input *ConnectFolderInput) (*SessionOutput, error) {
	if err := s.validate.Validate(input.Body); err != nil {
		return nil, err
	}

	sess, err := s.sessions.RequestDirectory(ctx, input.Body.Path)
	if err != nil {
		return nil, err
	}

	if _, err := s.library.Scan(ctx); err != nil {
		return nil, err
	}

	return &SessionOutput{Body: mapSessionResponse(sess.ID, string(sess.Mode), sess.Root(), true)}, nil
}

func (s *Server) handleRestoreSession(ctx context.Context, _ *struct{}) (*SessionOutput, error) {
	sess, err := s.sessions.RestoreSession(ctx)
	if err != nil {
		// A revoked grant is stale: clear it so the client falls back to
		// a fresh connect instead of retrying forever.
		if apperrors.Is(err, apperrors.ErrPermissionDenied) {
			if derr := s.sessions.DisconnectSession(ctx); derr != nil {
				s.logger.Warn("failed to clear stale session grant", "error", derr)
			}
		}
		return nil, err
	}

	if _, err := s.library.Scan(ctx); err != nil {
		return nil, err
	}

	return &SessionOutput{Body: mapSessionResponse(sess.ID, string(sess.Mode), sess.Root(), true)}, nil
}

func (s *Server) handleOpenFallback(ctx context.Context, input *OpenFallbackInput) (*SessionOutput, error) {
	if err := s.validate.Validate(input.Body); err != nil {
		return nil, err
	}

	files := make(map[string][]byte, len(input.Body.Files))
	for _, f := range input.Body.Files {
		data, err := base64.StdEncoding.DecodeString(f.Data)
		if err != nil {
			return nil, apperrors.Validationf("file %q is not valid base64", f.Name)
		}
		files[f.Name] = data
	}

	sess := s.sessions.OpenFallback(files)

	if _, err := s.library.Scan(ctx); err != nil {
		return nil, err
	}

	return &SessionOutput{Body: mapSessionResponse(sess.ID, string(sess.Mode), "", true)}, nil
}

func (s *Server) handleGetSession(_ context.Context, _ *struct{}) (*SessionOutput, error) {
	sess := s.sessions.Current()
	if sess == nil || !sess.Active() {
		return &SessionOutput{Body: SessionResponse{Mode: "disconnected", Connected: false}}, nil
	}
	return &SessionOutput{Body: mapSessionResponse(sess.ID, string(sess.Mode), sess.Root(), true)}, nil
}

func (s *Server) handleDisconnectSession(ctx context.Context, _ *struct{}) (*MessageOutput, error) {
	if err := s.sessions.DisconnectSession(ctx); err != nil {
		return nil, err
	}
	s.library.Clear()
	return &MessageOutput{Body: MessageResponse{Message: "Disconnected"}}, nil
}

// === Mappers ===

func mapSessionResponse(id, mode, root string, connected bool) SessionResponse {
	return SessionResponse{ID: id, Mode: mode, Root: root, Connected: connected}
}
