// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/afero"

	"github.com/danielhkuo/quickly-frame/auth"
	"github.com/danielhkuo/quickly-frame/cliparse"
	"github.com/danielhkuo/quickly-frame/db"
	"github.com/danielhkuo/quickly-frame/fonts"
	"github.com/danielhkuo/quickly-frame/logging"
	"github.com/danielhkuo/quickly-frame/preview"
	"github.com/danielhkuo/quickly-frame/router"
	"github.com/danielhkuo/quickly-frame/templates"
	"github.com/danielhkuo/quickly-frame/templates/poll"
)

const (
	tokenTTL        = 30 * 24 * time.Hour
	fontCacheSize   = 16
	shutdownTimeout = 10 * time.Second
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "issue-token" {
		if err := issueToken(os.Args[2:]); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	slog.SetDefault(logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr))

	if err := run(cfg); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(cfg cliparse.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect and verify
	dbConn, err := db.Open(ctx, cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("database connection failed: %w", err)
	}
	defer dbConn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(ctx, dbConn); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	loader, err := fonts.NewGoogleLoader(cfg.FontsURL, nil, fontCacheSize)
	if err != nil {
		return err
	}

	registry := templates.NewRegistry()
	if err := registry.Register(poll.Tag, poll.New(loader)); err != nil {
		return err
	}

	uploader := preview.NewFSUploader(afero.NewOsFs(), cfg.PreviewDir)

	handler, err := router.NewRouter(ctx, dbConn, cfg, registry, uploader)
	if err != nil {
		return err
	}

	server := &http.Server{
		Handler:           handler,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ln, err := net.Listen("tcp", server.Addr)
	if err != nil {
		return err
	}

	slog.Info("Listening", "port", cfg.Port, "base_url", cfg.BaseURL)
	if err := serve(ctx, server, ln); err != nil {
		return err
	}
	slog.Info("Server closed")
	return nil
}

// serve runs server on ln until ctx is done, then returns only after
// in-flight requests have drained or the shutdown timeout has passed.
func serve(ctx context.Context, server *http.Server, ln net.Listener) error {
	drained := make(chan error, 1)
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := server.Shutdown(shutdownCtx)
		if err != nil {
			slog.Warn("graceful shutdown failed", "error", err)
			server.Close()
		}
		drained <- err
	}()

	err := server.Serve(ln)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	// Serve returns as soon as Shutdown starts; wait for it to finish.
	if err := <-drained; err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}
	return nil
}
