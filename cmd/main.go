package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/medication-reminder/config"
	"github.com/oksasatya/medication-reminder/internal/container"
	pginfra "github.com/oksasatya/medication-reminder/internal/infrastructure/postgres"
	"github.com/oksasatya/medication-reminder/internal/router"
	"github.com/oksasatya/medication-reminder/pkg/helpers"
	"github.com/oksasatya/medication-reminder/pkg/validation"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env)
	gin.SetMode(cfg.GinMode)
	validation.Init()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	c, err := container.New(ctx, cfg, logger)
	cancel()
	if err != nil {
		logger.WithError(err).Fatal("failed to build container")
	}
	defer c.Close()

	if cfg.Backend == config.BackendPostgres {
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			logger.WithError(err).Fatal("migration failed")
		}
	}

	r := router.New(c)

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r, ReadHeaderTimeout: 10 * time.Second}
	go func() {
		helpers.LogInfo(logger, "server starting", logrus.Fields{"port": cfg.Port, "backend": cfg.Backend})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatalf("listen: %s\n", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		helpers.LogError(logger, "server forced to shutdown", err, nil)
		return
	}
	logger.Info("server exited properly")
}
