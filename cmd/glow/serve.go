package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"glow"
	"glow/internal/appinfo"
	"glow/internal/auth"
	"glow/internal/config"
	"glow/internal/database"
	"glow/internal/editor"
	"glow/internal/handlers"
	"glow/internal/identity"
	"glow/internal/layout"
	"glow/internal/media"
	"glow/internal/rsvp"
	"glow/pkg/cache"
	"glow/pkg/logger"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	printBanner()

	store := openStore()
	cfg := config.AppConfig
	appinfo.StartTime = time.Now()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go database.StartCleaner(ctx, store)

	appCache := cache.New(cache.Options{
		Enabled:     cfg.Cache.Enabled,
		MaxCapacity: cfg.Cache.MaxCapacity,
		TTL:         config.Duration(cfg.Cache.TTL, cache.DefaultTTL),
	})
	appCache.Start(ctx)

	editors := editor.NewManager(config.Duration(cfg.Editor.SessionTTL, 2*time.Hour))
	editorsDone := make(chan struct{})
	go func() {
		editors.Run(ctx)
		close(editorsDone)
	}()

	google, err := identity.NewGoogle(identity.Config{
		ClientID:     cfg.Auth.Google.ClientID,
		ClientSecret: cfg.Auth.Google.ClientSecret,
		RedirectURL:  cfg.Auth.Google.RedirectURL,
	})
	if err != nil {
		logger.LogWarn("Google sign-in disabled: %v", err)
	}

	forwarder := rsvp.NewForwarder(config.Duration(cfg.Webhook.Timeout, 5*time.Second))

	pages, err := layout.NewRenderer(glow.WebAssets)
	if err != nil {
		return fmt.Errorf("templates: %w", err)
	}
	static, err := fs.Sub(glow.WebAssets, "web/static")
	if err != nil {
		return fmt.Errorf("static assets: %w", err)
	}

	app := handlers.New(handlers.Deps{
		Config:   cfg,
		Store:    store,
		Editors:  editors,
		Sessions: auth.NewRegistry(),
		Tokens:   auth.NewTokens(cfg.Security.JWTSecret, config.Duration(cfg.Security.SessionTTL, 30*24*time.Hour)),
		Google:   google,
		Media:    media.NewStore(ctx, cfg.Media.Driver, s3Config(cfg)),
		RSVP:     rsvp.NewService(store, forwarder),
		Cache:    appCache,
		Pages:    pages,
		Static:   static,
	})
	for _, l := range app.Limiters() {
		if l != nil {
			go l.Cleanup(ctx)
		}
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      app.Handler(),
		ReadTimeout:  config.Duration(cfg.Server.ReadTimeout, 15*time.Second),
		WriteTimeout: config.Duration(cfg.Server.WriteTimeout, 30*time.Second),
		IdleTimeout:  config.Duration(cfg.Server.IdleTimeout, 60*time.Second),
	}

	errCh := make(chan error, 1)
	go func() {
		logger.LogServerStart(cfg.Server.Port, cfg.GetBaseUrl())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return err
		}
	case <-ctx.Done():
	}

	logger.LogInfo("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.LogError("Graceful shutdown failed: %v", err)
	}
	// Open sessions are closed; edits still inside the autosave delay are lost.
	stop()
	<-editorsDone
	forwarder.Wait()
	return nil
}

func s3Config(cfg *config.Config) media.S3Config {
	c := cfg.Media.S3
	return media.S3Config{
		Bucket:        c.Bucket,
		Region:        c.Region,
		Endpoint:      c.Endpoint,
		AccessKey:     c.AccessKey,
		SecretKey:     c.SecretKey,
		PublicBaseURL: c.PublicBaseURL,
		Prefix:        c.Prefix,
	}
}
