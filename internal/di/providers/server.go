package providers

import (
	"context"

	"github.com/samber/do/v2"

	"github.com/reelfeedapp/reelfeed-server/internal/api"
	"github.com/reelfeedapp/reelfeed-server/internal/config"
	"github.com/reelfeedapp/reelfeed-server/internal/logger"
	"github.com/reelfeedapp/reelfeed-server/internal/service"
)

// HTTPServerHandle wraps the API server with Shutdownable.
type HTTPServerHandle struct {
	*api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	services := &api.Services{
		Auth:        do.MustInvoke[*service.AuthService](i),
		Session:     do.MustInvoke[*service.SessionService](i),
		Category:    do.MustInvoke[*service.CategoryService](i),
		Video:       do.MustInvoke[*service.VideoService](i),
		Interaction: do.MustInvoke[*service.InteractionService](i),
		Interest:    do.MustInvoke[*service.InterestService](i),
		Recommender: do.MustInvoke[*service.Recommender](i),
		Feed:        do.MustInvoke[*service.FeedService](i),
	}

	server := api.NewServer(cfg, storeHandle.Store, services, log.Logger)

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", ":"+cfg.Server.Port)
		if err := server.Start(); err != nil {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", ":"+cfg.Server.Port)

	return &HTTPServerHandle{Server: server}, nil
}
