package providers

import (
	"context"
	"errors"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/soundvaultapp/soundvault-server/internal/api"
	"github.com/soundvaultapp/soundvault-server/internal/config"
	apperrors "github.com/soundvaultapp/soundvault-server/internal/errors"
	"github.com/soundvaultapp/soundvault-server/internal/library"
	"github.com/soundvaultapp/soundvault-server/internal/logger"
	"github.com/soundvaultapp/soundvault-server/internal/playback"
	"github.com/soundvaultapp/soundvault-server/internal/session"
	"github.com/soundvaultapp/soundvault-server/internal/sse"
	"github.com/soundvaultapp/soundvault-server/internal/validation"
)

// Bootstrap restores or auto-connects a session at startup so a restart
// lands the user back in their library without clicking connect again.
type Bootstrap struct {
	Restored bool
}

// ProvideBootstrap reconnects the saved or configured folder.
func ProvideBootstrap(i do.Injector) (*Bootstrap, error) {
	cfg := do.MustInvoke[*config.Config](i)
	sessions := do.MustInvoke[*session.Manager](i)
	librarySvc := do.MustInvoke[*library.Service](i)
	log := do.MustInvoke[*logger.Logger](i)

	ctx := context.Background()

	_, err := sessions.RestoreSession(ctx)
	if err != nil && apperrors.Is(err, apperrors.ErrNoSavedSession) && cfg.Library.SoundPath != "" {
		_, err = sessions.RequestDirectory(ctx, cfg.Library.SoundPath)
	}
	if err != nil {
		// Not fatal: the user connects via the API instead.
		if !apperrors.Is(err, apperrors.ErrNoSavedSession) {
			log.Warn("could not reconnect folder at startup", "error", err)
		}
		return &Bootstrap{Restored: false}, nil
	}

	if _, err := librarySvc.Scan(ctx); err != nil {
		log.Warn("initial scan failed", "error", err)
		return &Bootstrap{Restored: false}, nil
	}

	return &Bootstrap{Restored: true}, nil
}

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	sessions := do.MustInvoke[*session.Manager](i)
	librarySvc := do.MustInvoke[*library.Service](i)
	registry := do.MustInvoke[*playback.Registry](i)
	sseHandle := do.MustInvoke[*SSEManagerHandle](i)
	validate := do.MustInvoke[*validation.Validator](i)

	sseHandler := sse.NewHandler(sseHandle.Manager, log.Logger)
	handler := api.NewServer(librarySvc, sessions, registry, sseHandler, validate, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
