package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"iss-tracker/internal/cache"
	"iss-tracker/internal/config"
	"iss-tracker/internal/httpapi"
	"iss-tracker/internal/modules/tracker"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"feedURL", cfg.FeedURL,
		"feedTimeout", cfg.FeedTimeout,
		"redisAddr", cfg.RedisAddr,
		"redisDB", cfg.RedisDB,
		"cacheTTL", cfg.CacheTTL,
		"geocoderURL", cfg.GeocoderURL,
		"geocoderTimeout", cfg.GeocoderTimeout,
	)

	rdb := cache.Open(cfg)
	defer func() {
		if closeErr := cache.Close(rdb); closeErr != nil {
			slog.Error("redis close", "error", closeErr)
		}
	}()

	// A down cache is not fatal: requests fall through to the feed and the
	// healthcheck reports the outage.
	pingCtx, pingCancel := context.WithTimeout(ctx, 3*time.Second)
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		slog.Warn("redis ping failed (continuing without warm cache)", "addr", cfg.RedisAddr, "error", err)
	} else {
		slog.Info("redis connection successful", "addr", cfg.RedisAddr)
	}
	pingCancel()

	store := cache.NewRedis(rdb, cfg.CacheTTL)
	mux := httpapi.NewMux(rdb)
	tracker.RegisterFeature(mux, cfg, store)

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err := <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
