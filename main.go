// ABOUTME: Entry point for the vDU Placement Rule Engine backend service
// ABOUTME: Serves the HTTP API that validates deployments against the Deterministic Rule catalog

package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/asquaree/pod-placement-ai/cache"
	"github.com/asquaree/pod-placement-ai/catalog"
	"github.com/asquaree/pod-placement-ai/config"
	"github.com/asquaree/pod-placement-ai/handlers"
	"github.com/asquaree/pod-placement-ai/logger"
	"github.com/asquaree/pod-placement-ai/middleware"
)

func main() {
	_ = godotenv.Load()
	logger.Init()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("Failed to load configuration", "error", err)
		os.Exit(1)
	}

	slog.Info("Starting vDU Placement Rule Engine")

	ruleCatalog, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		slog.Error("Failed to load rule catalog", "path", cfg.CatalogPath, "error", err)
		os.Exit(1)
	}
	if cfg.CatalogPath != "" {
		slog.Info("Rule catalog loaded from override", "path", cfg.CatalogPath)
	} else {
		slog.Info("Rule catalog loaded from embedded default")
	}

	cacheTTL := time.Duration(cfg.CacheTTL) * time.Second
	c := cache.New(cacheTTL)
	slog.Info("Cache initialized", "ttl", cacheTTL)

	limiter := middleware.NewRateLimiter(cfg.RateLimitRPM, time.Minute)

	h := handlers.NewHandler(cfg, c, ruleCatalog)
	for _, route := range h.Routes() {
		handler := middleware.Chain(route.Handler,
			middleware.LogRequest,
			middleware.CORS,
			middleware.RateLimit(limiter, middleware.ClientIP),
		)
		http.HandleFunc(route.Path, handler)
	}

	addr := ":" + cfg.Port
	slog.Info("Server listening", "addr", addr)
	if err := http.ListenAndServe(addr, nil); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
