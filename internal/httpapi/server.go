// Package httpapi exposes a tripgeo Catalog over a read-only JSON HTTP API.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/patrickmn/go-cache"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"github.com/andreiashu/tripgeo"
	"github.com/andreiashu/tripgeo/internal/config"
)

// maxExtractBody caps the POST /extract request body.
const maxExtractBody = 64 << 10

// Server serves one immutable catalog. All request handling is read-only, so
// the only shared mutable state lives in the search cache, the rate limiter
// and the metric collectors.
type Server struct {
	catalog *tripgeo.Catalog
	cfg     *config.Config
	logger  *slog.Logger
	cache   *cache.Cache // nil when caching is disabled
	metrics *metrics
	handler http.Handler
}

// New builds a Server and its routing table.
func New(catalog *tripgeo.Catalog, cfg *config.Config, logger *slog.Logger) *Server {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		catalog: catalog,
		cfg:     cfg,
		logger:  logger,
		metrics: newMetrics(),
	}
	if cfg.Cache.TTL > 0 {
		s.cache = cache.New(cfg.Cache.TTL, 2*cfg.Cache.TTL)
	}
	s.metrics.catalogSize.Set(float64(catalog.Len()))
	s.handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	r := mux.NewRouter()
	r.Use(s.loggingMiddleware)
	r.Use(s.recoveryMiddleware)

	r.HandleFunc("/health", s.handleHealth).Methods(http.MethodGet)
	r.Handle("/metrics", s.metrics.handler()).Methods(http.MethodGet)

	api := r.PathPrefix("/api/v1").Subrouter()
	if s.cfg.Server.RateLimit > 0 {
		limiter := rate.NewLimiter(rate.Limit(s.cfg.Server.RateLimit), s.cfg.Server.RateBurst)
		api.Use(s.rateLimitMiddleware(limiter))
	}

	// Fixed paths under /cities go before the {name} catch-all.
	api.HandleFunc("/cities/search", s.handleSearch).Methods(http.MethodGet)
	api.HandleFunc("/cities/nearest", s.handleNearest).Methods(http.MethodGet)
	api.HandleFunc("/cities/{name}", s.handleLookup).Methods(http.MethodGet)
	api.HandleFunc("/cities/{name}/nearby", s.handleNearby).Methods(http.MethodGet)
	api.HandleFunc("/route", s.handleRoute).Methods(http.MethodGet)
	api.HandleFunc("/travel-time", s.handleTravelTime).Methods(http.MethodGet)
	api.HandleFunc("/popular-sources", s.handlePopularSources).Methods(http.MethodGet)
	api.HandleFunc("/destination-shortcuts", s.handleDestinationShortcuts).Methods(http.MethodGet)
	api.HandleFunc("/extract", s.handleExtract).Methods(http.MethodPost)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "no such endpoint")
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	})

	c := cors.New(cors.Options{
		AllowedOrigins: s.cfg.Server.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Origin"},
		MaxAge:         86400,
	})
	return c.Handler(r)
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// ListenAndServe serves on the configured address until ctx is cancelled,
// then shuts down gracefully within the configured timeout.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Server.Addr,
		Handler:           s,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("starting server", "addr", srv.Addr, "cities", s.catalog.Len())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrors <- err
		}
		close(serverErrors)
	}()

	select {
	case err, ok := <-serverErrors:
		if ok {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}
