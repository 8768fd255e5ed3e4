package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/vigil-events/internal/adapter/feeds"
	"github.com/couchcryptid/vigil-events/internal/adapter/gdelt"
	httpadapter "github.com/couchcryptid/vigil-events/internal/adapter/http"
	"github.com/couchcryptid/vigil-events/internal/adapter/mapbox"
	"github.com/couchcryptid/vigil-events/internal/config"
	"github.com/couchcryptid/vigil-events/internal/domain"
	"github.com/couchcryptid/vigil-events/internal/observability"
	"github.com/couchcryptid/vigil-events/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	clock := clockwork.NewRealClock()

	// Country backfill is feature-flagged via MAPBOX_ENABLED / MAPBOX_TOKEN.
	var geocoder domain.Geocoder
	if cfg.MapboxEnabled {
		client := mapbox.NewClient(cfg.MapboxToken, cfg.MapboxTimeout, logger, metrics)
		cached, err := mapbox.NewCachedGeocoder(client, cfg.MapboxCacheSize, metrics)
		if err != nil {
			logger.Error("failed to create geocoder", "error", err)
			os.Exit(1)
		}
		geocoder = cached
		metrics.GeocodeEnabled.Set(1)
		logger.Info("mapbox geocoding enabled", "cache_size", cfg.MapboxCacheSize, "timeout", cfg.MapboxTimeout)
	} else {
		logger.Info("mapbox geocoding disabled")
	}

	exports := gdelt.NewClient(gdelt.Options{
		LastUpdateURL:   cfg.GDELTLastUpdateURL,
		Timeout:         cfg.GDELTTimeout,
		MaxArchiveBytes: cfg.GDELTMaxArchiveBytes,
	}, geocoder, clock, logger, metrics)

	news := feeds.NewClient(feeds.Options{
		URLs:       cfg.FeedURLs,
		Timeout:    cfg.FeedTimeout,
		MaxEntries: cfg.FeedMaxEntries,
	}, clock, logger, metrics)

	p := pipeline.New(exports, news, pipeline.Limits{
		Ranked:      cfg.RankedLimit,
		RankedGDELT: cfg.RankedGDELTLimit,
		GeoGDELT:    cfg.GeoGDELTLimit,
		StatsGDELT:  cfg.StatsGDELTLimit,
	}, logger, metrics)

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:               cfg.HTTPAddr,
		CORSAllowedOrigins: cfg.CORSAllowedOrigins,
	}, p, p, logger, metrics)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	logger.Info("vigil events started", "feeds", len(cfg.FeedURLs), "gdelt", cfg.GDELTLastUpdateURL)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
}
