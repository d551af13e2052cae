package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/dharmasatrya/flightcrawl/internal/app"
	"github.com/dharmasatrya/flightcrawl/internal/config"
	"github.com/dharmasatrya/flightcrawl/internal/handler"
	"github.com/dharmasatrya/flightcrawl/internal/logger"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat, os.Stdout)

	a, err := app.New(cfg, log)
	if err != nil {
		return err
	}
	defer a.Close()

	e := echo.New()
	e.HideBanner = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestID())

	searchHandler := handler.NewSearchHandler(a.Search, a.Cache, log)
	sessionHandler := handler.NewSessionHandler(a.Sessions, cfg.SessionTTL, log)

	api := e.Group("/api/v1")
	api.POST("/flights/search", searchHandler.Search)
	api.PUT("/sessions/:provider", sessionHandler.Put)
	e.GET("/health", handler.HealthHandler)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting flight search server",
			"port", cfg.Port,
			"session_backend", cfg.SessionBackend,
			"cache_enabled", cfg.CacheEnabled,
			"use_proxy", cfg.UseProxy,
		)
		errCh <- e.Start(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
		return err
	}
	return nil
}
