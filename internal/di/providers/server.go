package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/Iceblockp/mobile-pos-sub001/internal/api"
	"github.com/Iceblockp/mobile-pos-sub001/internal/config"
	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/export"
	snapimport "github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/import"
)

// serverVersion is reported in the OpenAPI document.
const serverVersion = "dev"

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

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	snapshots := do.MustInvoke[*snapshot.Service](i)
	exporter := do.MustInvoke[*export.Exporter](i)
	importer := do.MustInvoke[*snapimport.Importer](i)
	log := do.MustInvoke[*logger.Logger](i)

	handler := api.NewServer(storeHandle.Store, snapshots, exporter, importer, serverVersion, log)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv}, nil
}
