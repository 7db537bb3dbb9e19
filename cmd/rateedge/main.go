// Command rateedge serves the swap rate store, analytics, alerting, and
// pricing API over HTTP.
//
// Configuration comes from an optional YAML file plus environment
// overrides (PORT, DATABASE_URL, REDIS_ADDR, LOG_LEVEL); a .env file in
// the working directory is honored when present. Without DATABASE_URL
// the server runs on the in-memory store.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/meenmo/rateedge/alerts"
	"github.com/meenmo/rateedge/config"
	"github.com/meenmo/rateedge/logger"
	"github.com/meenmo/rateedge/ratestore"
	"github.com/meenmo/rateedge/server"
)

func main() {
	_ = godotenv.Load()

	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.WithError(err).Fatal("load config")
	}
	if err := logger.Setup(cfg.Log); err != nil {
		logrus.WithError(err).Fatal("configure logging")
	}

	ctx := context.Background()

	var store ratestore.Store
	switch cfg.Database.Driver {
	case "postgres":
		store, err = ratestore.NewPostgresStore(ctx, cfg.Database.DSN)
		if err != nil {
			logrus.WithError(err).Fatal("connect to postgres")
		}
		logrus.Info("using postgres store")
	default:
		store = ratestore.NewMemoryStore()
		logrus.Info("using in-memory store, data will not survive restarts")
	}
	defer store.Close()

	var cache ratestore.Cache = ratestore.NopCache{}
	if cfg.Redis.Addr != "" {
		rc, err := ratestore.NewRedisCache(ctx, cfg.Redis.Addr, time.Duration(cfg.Redis.TTLSeconds)*time.Second)
		if err != nil {
			logrus.WithError(err).WithField("addr", cfg.Redis.Addr).Warn("redis unavailable, serving without cache")
		} else {
			cache = rc
			defer rc.Close()
			logrus.WithField("addr", cfg.Redis.Addr).Info("redis cache enabled")
		}
	}

	mgr, err := alerts.NewManager(store, cfg.Alerts.File)
	if err != nil {
		logrus.WithError(err).Fatal("load alerts")
	}

	gin.SetMode(cfg.Server.Mode)
	srv := server.New(store, cache, mgr)

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      srv.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logrus.WithField("addr", httpServer.Addr).Info("rateedge listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		logrus.WithError(err).Fatal("server failed")
	case sig := <-quit:
		logrus.WithField("signal", sig.String()).Info("shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logrus.WithError(err).Error("shutdown incomplete")
	}
	logrus.Info("server exited")
}
