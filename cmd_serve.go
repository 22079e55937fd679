package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"status-viewer/account"
	"status-viewer/api"
	"status-viewer/config"
	"status-viewer/preset"
	"status-viewer/session"
	"status-viewer/storage"
)

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		Long: `Starts the web app and its JSON/WebSocket API.

The listen address comes from the config file; PORT and STORAGE_DIR in the
environment override it. SIGINT or SIGTERM shuts the server down gracefully.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			logger, err := newLogger(cfg.Log, opts.verbose)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cfg, logger)
		},
	}
}

func runServe(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	kv, err := storage.FromConfig(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer kv.Close()

	pm, err := preset.NewManager(ctx, kv,
		preset.WithLogger(logger.Named("preset")),
		preset.WithResetMalformed(cfg.Storage.ResetMalformed))
	if err != nil {
		return fmt.Errorf("failed to load presets: %w", err)
	}
	accounts, err := account.NewStore(ctx, kv, logger.Named("account"), cfg.Storage.ResetMalformed)
	if err != nil {
		return fmt.Errorf("failed to load accounts: %w", err)
	}

	var static fs.FS = staticFiles
	if cfg.StaticDir != "" {
		static = os.DirFS(cfg.StaticDir)
	}

	sessions := session.NewManager(logger.Named("session"))
	defer sessions.Shutdown()

	router := api.RegisterRoutes(api.Deps{
		Sessions:       sessions,
		Presets:        pm,
		Accounts:       accounts,
		Static:         static,
		Logger:         logger.Named("api"),
		Registry:       prometheus.NewRegistry(),
		SignupRedirect: cfg.View.SignupRedirect.Duration,
		SigninRedirect: cfg.View.SigninRedirect.Duration,
	})

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("status-viewer listening",
			zap.String("addr", cfg.Listen),
			zap.String("storage", cfg.Storage.Type),
			zap.Int("presets", len(pm.List().Presets)),
			zap.Int("accounts", accounts.Count()))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Ending sessions first closes their websockets, which Shutdown does not track.
	sessions.Shutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
