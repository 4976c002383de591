package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"flint/internal/api"
	"flint/internal/config"
	fileutil "flint/internal/file"
	"flint/internal/session"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the launch API",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, closer, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = closer.Close() }()
			return serve(cfg)
		},
	}
}

func serve(cfg config.Config) error {
	for _, dir := range []string{cfg.DataDir, cfg.CacheDir} {
		if err := fileutil.EnsureDir(dir); err != nil {
			return fmt.Errorf("prepare %s: %w", dir, err)
		}
	}

	sessions := buildSessionManager(cfg)
	router := setupRouter()
	api.NewAPI(sessions).RegisterRoutes(router)

	baseCtx, baseCancel := context.WithCancel(context.Background())
	sessions.SetBaseContext(baseCtx)

	const (
		readHeaderTimeout = 5 * time.Second
		shutdownTimeout   = 10 * time.Second
	)

	srv := newHTTPServer(cfg.Port, router, readHeaderTimeout)

	errCh := make(chan error, 1)
	go func() {
		log.Info().Int("port", cfg.Port).Str("cache_dir", cfg.CacheDir).Msg("launch api listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		baseCancel()
		return fmt.Errorf("http server failed: %w", err)
	case <-waitForShutdownSignal():
	}

	gracefulShutdown(srv, baseCancel, sessions, shutdownTimeout)
	return nil
}

func setupRouter() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(api.ZerologLogger())
	return r
}

func buildSessionManager(cfg config.Config) *session.Manager {
	m := session.NewManager(session.Options{
		DataDir:               cfg.DataDir,
		CacheDir:              cfg.CacheDir,
		MaxConcurrentSessions: cfg.MaxConcurrentSessions,
		HTTPClient:            &http.Client{Timeout: cfg.HTTPTimeout},
		Launcher:              newLauncher(cfg),
	})
	if err := m.LoadFromDisk(); err != nil {
		log.Warn().Err(err).Msg("restore sessions failed")
	}
	return m
}

func newHTTPServer(port int, handler http.Handler, readHeaderTimeout time.Duration) *http.Server {
	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
	}
}

func waitForShutdownSignal() <-chan os.Signal {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	return quit
}

func gracefulShutdown(srv *http.Server, cancelBase context.CancelFunc, m *session.Manager, timeout time.Duration) {
	log.Info().Msg("shutdown signal received")
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Warn().Err(err).Msg("http server shutdown warning")
	}

	cancelBase()
	if !m.WaitAll(ctx) {
		log.Warn().Msg("loader workers did not finish before timeout")
	}
	log.Info().Msg("server exited cleanly")
}
