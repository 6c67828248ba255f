// Package app contains the application wiring for the inventory service.
package app

import (
	"log/slog"
	"net/http"

	"github.com/adenisov/bookstock/internal/catalog"
	"github.com/adenisov/bookstock/internal/config"
	"github.com/adenisov/bookstock/internal/ledger"
	"github.com/adenisov/bookstock/internal/media"
	"github.com/adenisov/bookstock/internal/store"
	"github.com/adenisov/bookstock/internal/transport/rest"
	"github.com/adenisov/bookstock/pkg/messaging"
	"github.com/adenisov/bookstock/pkg/server"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Dependencies struct {
	Store    store.BookStore
	Ledger   *ledger.Ledger
	Catalog  *catalog.Catalog
	Resolver media.Resolver
	Logger   *slog.Logger
}

// SetupDependencies constructs the store, ledger, catalog and media
// resolver. publisher may be nil to disable stock events.
func SetupDependencies(dbPool *pgxpool.Pool, publisher messaging.Publisher, cfg *config.Config, logger *slog.Logger) *Dependencies {
	bookStore := store.NewPgStore(dbPool)

	return &Dependencies{
		Store:    bookStore,
		Ledger:   ledger.NewLedger(bookStore, publisher, logger),
		Catalog:  catalog.NewCatalog(bookStore),
		Resolver: media.NewHTTPResolver(cfg.Media),
		Logger:   logger,
	}
}

// SetupHttpHandler initializes the HTTP routes for the inventory service.
// Used by tests to run the real handler inside an httptest.Server.
func SetupHttpHandler(deps *Dependencies, cfg *config.Config) http.Handler {
	mux := server.NewChiRouter(deps.Logger)
	wireRoutes(mux, deps, cfg)
	return mux
}

// wireRoutes sets up the HTTP routes for the inventory service.
func wireRoutes(mux *chi.Mux, deps *Dependencies, cfg *config.Config) {
	handler := rest.NewHandler(deps.Ledger, deps.Catalog, deps.Resolver, deps.Store, cfg.Media.MaxUploadBytes, deps.Logger)
	handler.RegisterRoutes(mux)
}

// SetupHttpServer creates and configures an HTTP server for the inventory service.
func SetupHttpServer(deps *Dependencies, cfg *config.Config) *http.Server {

	mux := SetupHttpHandler(deps, cfg)

	httpCfg := server.HTTPConfig{
		Port:           cfg.HTTPServer.Port,
		MaxHeaderBytes: cfg.HTTPServer.MaxHeaderBytes,
		ReadTimeout:    cfg.HTTPServer.Timeout.Read,
		WriteTimeout:   cfg.HTTPServer.Timeout.Write,
		IdleTimeout:    cfg.HTTPServer.Timeout.Idle,
		ReadHeader:     cfg.HTTPServer.Timeout.ReadHeader,
	}

	return server.NewHTTPServer(httpCfg, mux)
}
