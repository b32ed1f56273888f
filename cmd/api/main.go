// @title Pets Gateway API
// @version 1.0
// @description Gateway de acceso a la tabla pets por identificadores collection/item, con validación y notificación de cambios.
// @BasePath /
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

	"pets-gateway/internal/adapters/storage"
	"pets-gateway/internal/domain/pets"
	"pets-gateway/internal/platform/config"
	"pets-gateway/internal/platform/logger"
	"pets-gateway/internal/router"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("%w\n\n%s", err, config.Usage())
	}

	log := logger.New(logger.Options{
		Level:  logger.ParseLevel(cfg.LogLevel),
		Format: logger.ParseFormat(cfg.LogFormat),
		App:    cfg.AppName,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	engine, closeEngine, err := storage.Open(ctx, cfg.DBDriver, cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer func() {
		if err := closeEngine(); err != nil {
			log.Warn("close storage", map[string]any{"error": err})
		}
	}()

	matcher, err := pets.NewMatcher(cfg.Authority, pets.DefaultRoutes(pets.DefaultPath)...)
	if err != nil {
		return err
	}

	r := router.NewRouter(router.Options{
		Engine:  engine,
		Matcher: matcher,
		Logger:  log,
	})

	srv := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]any{"addr": srv.Addr, "driver": cfg.DBDriver, "authority": cfg.Authority})
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down", nil)
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
