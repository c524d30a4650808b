package api

import (
	"mime"
	"net/http"
	"path"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/soundvaultapp/soundvault-server/internal/http/response"
)

// handlePlayback streams the audio file behind a playback token. Served
// as a raw chi route: huma's typed model doesn't fit range-request
// streaming, and ServeContent handles seeking for the audio element.
func (s *Server) handlePlayback(w http.ResponseWriter, r *http.Request) {
	token := chi.URLParam(r, "token")
	if token == "" {
		response.Error(w, http.StatusBadRequest, "playback token is required", s.logger)
		return
	}

	rc, relPath, err := s.playback.Open(r.Context(), token)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}
	defer rc.Close()

	if ct := mime.TypeByExtension(path.Ext(relPath)); ct != "" {
		w.Header().Set("Content-Type", ct)
	}
	http.ServeContent(w, r, path.Base(relPath), time.Time{}, rc)
}
