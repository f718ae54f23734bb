package main

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/gtsearch/parcel-risk/internal/analyzer"
	"github.com/gtsearch/parcel-risk/internal/app/server"
	"github.com/gtsearch/parcel-risk/internal/arcgis"
	"github.com/gtsearch/parcel-risk/internal/cache"
	"github.com/gtsearch/parcel-risk/internal/cache/providercache"
	"github.com/gtsearch/parcel-risk/internal/cache/ttlstore"
	"github.com/gtsearch/parcel-risk/internal/config"
	"github.com/gtsearch/parcel-risk/internal/flood"
	"github.com/gtsearch/parcel-risk/internal/httpclient"
	"github.com/gtsearch/parcel-risk/internal/landuse"
	"github.com/gtsearch/parcel-risk/internal/logger"
	"github.com/gtsearch/parcel-risk/internal/observability"
	"github.com/gtsearch/parcel-risk/internal/wetlands"
	"github.com/gtsearch/parcel-risk/internal/zoning"
)

var Version = "dev"

func main() {
	os.Exit(run())
}

func run() int {
	cfg := config.FromEnv()

	zl := logger.Build(logger.Config{
		Level:     cfg.LogLevel,
		Console:   strings.ToLower(os.Getenv("LOG_CONSOLE")) == "true",
		Component: "server",
	}, os.Stdout)
	appLog := logger.NewSlog(&zl)

	observability.ExposeBuildInfo(Version)
	appLog.Info("starting parcel-risk", "addr", cfg.Addr, "version", Version)

	httpClient := httpclient.NewOutbound(cfg.InsecureTLSHosts)
	gis := arcgis.New(appLog, httpClient)

	registry := zoning.Load(cfg.RegistryPath, appLog)
	if registry.Statewide.FLU == nil && cfg.StatewideFLUURL != "" {
		registry.Statewide.FLU = &zoning.Layer{Name: "statewide-flu", URL: cfg.StatewideFLUURL}
	}
	cadastralURL := cfg.CadastralURL
	if registry.Statewide.LandUseURL != "" {
		cadastralURL = registry.Statewide.LandUseURL
	}

	resultCache := ttlstore.New(cfg.ResultCacheTTL, cfg.ResultCacheMaxSize)

	// cadastral parcel data moves slowly; give it the long second tier
	var longTier cache.Interface
	if cfg.RedisAddr != "" {
		longTier = providercache.NewRedis(cfg.RedisAddr, cfg.ProviderCacheTTL, cfg.CacheOpTimeout, appLog)
		appLog.Info("provider cache backend", "backend", "redis", "addr", cfg.RedisAddr)
	} else {
		longTier = providercache.NewMemory(cfg.ProviderCacheTTL)
		appLog.Info("provider cache backend", "backend", "memory")
	}
	parcelCache := cache.Layered{Short: resultCache, Long: longTier}

	floodSvc := flood.New(appLog, gis, cfg.FEMAUrl, cfg.QueryTimeout, cfg.QueryRetries, resultCache)
	wetlandsSvc := wetlands.New(appLog, gis, cfg.NWIUrl, cfg.QueryTimeout, cfg.QueryRetries, cfg.WetlandRadiiMeters, resultCache)
	landUseSvc := landuse.New(appLog, gis, cadastralURL, cfg.QueryTimeout, cfg.QueryRetries, parcelCache, registry.DORUseCodes)
	zoningSvc := zoning.New(appLog, gis, registry, cfg.QueryTimeout, cfg.QueryRetries, resultCache)

	az := analyzer.New(appLog, floodSvc, wetlandsSvc, landUseSvc, zoningSvc, registry)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := server.Run(ctx, cfg, appLog, server.Sources{
		Analyzer: az,
		Flood:    floodSvc,
		Wetlands: wetlandsSvc,
		LandUse:  landUseSvc,
		Zoning:   zoningSvc,
	})
	if err != nil {
		appLog.Error("server exited with error", "err", err)
		return 1
	}
	appLog.Info("server stopped")
	return 0
}
