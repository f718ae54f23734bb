// Package server wires the HTTP API: property analysis, individual source
// endpoints, health, and metrics.
package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gtsearch/parcel-risk/internal/analyzer"
	"github.com/gtsearch/parcel-risk/internal/config"
	"github.com/gtsearch/parcel-risk/internal/health"
	"github.com/gtsearch/parcel-risk/internal/middleware"
)

type Sources struct {
	Analyzer *analyzer.Analyzer
	Flood    analyzer.FloodSource
	Wetlands analyzer.WetlandsSource
	LandUse  analyzer.LandUseSource
	Zoning   analyzer.ZoningSource
}

func Run(ctx context.Context, cfg config.Config, logger *slog.Logger, src Sources) error {
	r := Router(cfg, logger, src)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http listen", "addr", cfg.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
		return nil
	case err := <-errCh:
		return err
	}
}

// Router builds the chi router; split out so tests can drive it directly.
func Router(cfg config.Config, logger *slog.Logger, src Sources) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recover())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS())

	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(nil))
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	h := &handlers{logger: logger, src: src}

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.Auth(cfg.APIToken))
		api.Get("/property-analysis", h.propertyAnalysis)
		api.Get("/flood-zone", h.floodZone)
		api.Get("/wetlands", h.wetlands)
		api.Get("/land-use", h.landUse)
		api.Get("/zoning", h.zoning)
	})

	return r
}
