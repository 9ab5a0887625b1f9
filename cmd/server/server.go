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
)

// run starts the HTTP server and blocks until a shutdown signal arrives,
// then drains in-flight requests and pending record writes.
func (app *application) run(ctx context.Context) error {
	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.setupRouter(),
	}

	errCh := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	pruneDone := make(chan struct{})
	defer close(pruneDone)
	if ttl := app.config.Server.SessionTTL; ttl > 0 {
		go app.pruneIdleSessions(ttl, pruneDone)
	}

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		app.shutdown(ctx)
		return err
	case sig := <-shutdownCh:
		app.logger.Info("shutdown signal received", "signal", sig.String())
	case <-ctx.Done():
		app.logger.Info("context canceled, shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.config.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("graceful shutdown failed", "error", err)
	}
	app.shutdown(shutdownCtx)
	return nil
}

// pruneIdleSessions periodically evicts sessions idle for longer than ttl,
// so abandoned anonymous sessions do not pile up in memory. Their reviewed
// records stay in the local cache under the session ID.
func (app *application) pruneIdleSessions(ttl time.Duration, done <-chan struct{}) {
	interval := ttl / 4
	if interval > 10*time.Minute {
		interval = 10 * time.Minute
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if pruned := app.manager.PruneIdle(ttl); pruned > 0 {
				app.logger.Info("pruned idle sessions", "count", pruned)
			}
		case <-done:
			return
		}
	}
}
