// Package api provides the HTTP surface for the POS data sync engine.
package api

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/Iceblockp/mobile-pos-sub001/internal/logger"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot"
	"github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/export"
	snapimport "github.com/Iceblockp/mobile-pos-sub001/internal/snapshot/import"
	"github.com/Iceblockp/mobile-pos-sub001/internal/store"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	store     *store.Store
	snapshots *snapshot.Service
	exporter  *export.Exporter
	importer  *snapimport.Importer
	router    *chi.Mux
	api       huma.API
	logger    *logger.Logger
}

// NewServer creates an HTTP server with all routes configured.
func NewServer(st *store.Store, snapshots *snapshot.Service, exporter *export.Exporter, importer *snapimport.Importer, version string, log *logger.Logger) *Server {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	// The client is a phone app on the same LAN; origins are not known
	// ahead of time.
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
	}))

	humaConfig := huma.DefaultConfig("POS Sync API", version)
	humaAPI := humachi.New(router, humaConfig)
	RegisterErrorHandler()

	s := &Server{
		store:     st,
		snapshots: snapshots,
		exporter:  exporter,
		importer:  importer,
		router:    router,
		api:       humaAPI,
		logger:    log,
	}

	s.registerHealthRoutes()
	s.registerExportRoutes()
	s.registerImportRoutes()
	s.registerSnapshotRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
