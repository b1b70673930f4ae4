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

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"

	"pfm/config"
	"pfm/notify"
	"pfm/pkg/logging"
	"pfm/store/gormstore"
)

func main() {
	// Auto-load ./.env if present before reading vars
	if err := config.LoadDotEnv(".env"); err != nil {
		fmt.Fprintln(os.Stderr, "failed to load .env:", err)
	}
	cfg := config.Load()
	logger := logging.Setup(cfg.LogLevel)

	// `pfm migrate` runs AutoMigrate and exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		if err := migrate(cfg); err != nil {
			logger.Error("Migration failed", "error", err)
			os.Exit(1)
		}
		fmt.Println("migration completed")
		return
	}

	if err := cfg.Validate(); err != nil {
		logger.Error("Invalid configuration", "error", err)
		os.Exit(1)
	}
	if cfg.UsesDevSecret() {
		logger.Warn("JWT_SECRET not set, using the development secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("Server failed", "error", err)
		os.Exit(1)
	}
}

func migrate(cfg *config.Config) error {
	if cfg.DatabaseDSN == "" {
		return errors.New("DB_DSN is not set")
	}
	st, err := gormstore.Open(cfg.DatabaseDSN, true)
	if err != nil {
		return err
	}
	return st.Close()
}

func run(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	st, err := openStore(cfg)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()
	logger.Info("Storage initialized", "backend", cfg.DataBackend)

	hub := notify.NewHub()
	var events notify.Publisher = hub
	var bridge *notify.AMQPBridge
	if cfg.AMQPURL != "" {
		bridge, err = notify.DialAMQP(cfg.AMQPURL, cfg.AMQPExchange, hub)
		if err != nil {
			return err
		}
		defer bridge.Close()
		events = bridge
		logger.Info("Change fan-out enabled", "exchange", cfg.AMQPExchange, "origin", bridge.Origin())
	}

	if logging.ParseLevel(cfg.LogLevel) != slog.LevelDebug {
		gin.SetMode(gin.ReleaseMode)
	}
	app := NewApp(cfg, st, hub, events, logger)

	// No WriteTimeout: /api/updates legitimately holds a response for the
	// whole poll timeout.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("HTTP server starting", "address", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.PollTimeout+5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if bridge != nil {
		g.Go(func() error { return bridge.Run(gctx) })
	}
	return g.Wait()
}
