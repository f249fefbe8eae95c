// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"inkwell/internal/config"
	"inkwell/internal/content"
	"inkwell/internal/handlers"
	"inkwell/internal/middleware"
	"inkwell/internal/router"
	"inkwell/internal/session"
	"inkwell/internal/storage"
)

const shutdownTimeout = 30 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Start the public JSON API and the dashboard API.

The server connects to the configured store, to Valkey for sessions and,
when S3_ENDPOINT is set, to object storage for cover images. It shuts
down gracefully on SIGINT or SIGTERM.`,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackend(ctx, cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer b.close()

	valkey, err := session.Connect(cfg.ValkeyAddr(), cfg.ValkeyPassword)
	if err != nil {
		return fmt.Errorf("connect to valkey: %w", err)
	}
	defer valkey.Close()

	images, err := openImages(cfg)
	if err != nil {
		return err
	}

	reader := content.NewReader(b.store, b.store, cfg.ViewCountTimeout)
	editor := content.NewEditor(b.store)

	loginLimiter := middleware.NewRateLimiter(10, time.Minute)
	defer loginLimiter.Stop()
	contactLimiter := middleware.NewRateLimiter(5, 10*time.Minute)
	defer contactLimiter.Stop()

	sessions := session.NewStore(valkey, !cfg.IsDev())
	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.New(router.Deps{
			Sessions:       sessions,
			Public:         handlers.NewPublic(reader, editor),
			Auth:           handlers.NewAuth(b.authn, b.twoFactor, sessions),
			Admin:          handlers.NewAdmin(editor, reader, images),
			CORSOrigins:    cfg.CORSOrigins,
			SecureCookies:  !cfg.IsDev(),
			AttachToken:    b.attachToken,
			LoginLimiter:   loginLimiter,
			ContactLimiter: contactLimiter,
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	// Let in-flight view-count increments finish before the store closes.
	reader.Wait()
	if err != nil {
		return err
	}
	slog.Info("server stopped")
	return nil
}

// openImages returns nil when object storage is not configured, which
// disables cover uploads.
func openImages(c *config.Config) (handlers.Images, error) {
	client, err := storage.New(storage.Config{
		Endpoint:  c.S3Endpoint,
		Region:    c.S3Region,
		AccessKey: c.S3AccessKey,
		SecretKey: c.S3SecretKey,
		Bucket:    c.S3Bucket,
		PublicURL: c.S3PublicURL,
	})
	if err != nil {
		return nil, fmt.Errorf("object storage: %w", err)
	}
	if client == nil {
		slog.Warn("object storage not configured, cover uploads disabled")
		return nil, nil
	}
	slog.Info("object storage configured", "bucket", c.S3Bucket)
	return client, nil
}
