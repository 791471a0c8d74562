package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"securekyc/internal/audit"
	"securekyc/internal/config"
	"securekyc/internal/db"
	"securekyc/internal/extract"
	"securekyc/internal/handlers"
	"securekyc/internal/kyc"
	"securekyc/internal/logging"
	"securekyc/internal/ocr"
	"securekyc/internal/router"
	"securekyc/internal/similarity"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := logging.New(cfg.Logging)
	defer func() { _ = logger.Sync() }()

	engine, err := ocr.Open(ctx, cfg.OCR.Engine, cfg.OCR.TesseractPath, cfg.OCR.GoogleCredentials)
	if err != nil {
		logger.Error("ocr engine unavailable, extraction will return no results",
			zap.String("engine", cfg.OCR.Engine), zap.Error(err))
		engine = ocr.Unavailable(err)
	}
	defer closeIfCloser(logger, "ocr engine", engine)

	extractor, err := extract.New(
		ocr.NewInvoker(engine, cfg.OCR.Timeout, logger),
		extract.Options{Workers: cfg.OCR.Workers, Timeout: cfg.OCR.ExtractTimeout},
		logger,
	)
	if err != nil {
		logger.Error("failed to create extractor", zap.Error(err))
		os.Exit(1)
	}
	defer extractor.Close()

	store := db.Open(ctx, cfg.Store.DatabaseURL, db.GormOptions{
		MaxIdleConns: cfg.Store.MaxIdleConns,
		MaxOpenConns: cfg.Store.MaxOpenConns,
	}, logger)
	defer func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing store failed", zap.Error(err))
		}
	}()

	feed := audit.OpenFeed(ctx, cfg.Redis.URL, cfg.Redis.AuditKey, logger)
	defer closeIfCloser(logger, "audit feed", feed)

	svc := kyc.NewService(extractor, store, audit.NewEmitter(feed, logger), similarity.NewScorer(cfg.Similarity), logger)
	if cfg.SeedDemo {
		if _, err := svc.SeedDemo(ctx); err != nil {
			logger.Warn("demo seed failed", zap.Error(err))
		}
	}

	secret := []byte(cfg.Auth.AdminJWTSecret)
	h := handlers.New(svc, store, handlers.Options{
		MaxUploadBytes: cfg.HTTP.MaxUploadBytes,
		ShareSecret:    secret,
		ShareTTL:       cfg.Auth.ShareLinkTTL,
		PublicBaseURL:  cfg.Auth.PublicBaseURL,
	}, logger)
	if len(secret) == 0 {
		logger.Warn("ADMIN_JWT_SECRET not set, back-office routes are unauthenticated")
	}

	srv := &http.Server{
		Addr: cfg.HTTP.Addr(),
		Handler: router.New(h, router.Options{
			AllowedOrigins: cfg.HTTP.AllowedOrigins(),
			AdminSecret:    secret,
		}, logger),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("http server listening",
			zap.String("addr", srv.Addr),
			zap.String("ocr_engine", engine.Name()),
			zap.String("similarity", cfg.Similarity))
		errCh <- srv.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logger.Info("received shutdown signal", zap.String("signal", sig.String()))
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func closeIfCloser(logger *zap.Logger, what string, v any) {
	c, ok := v.(io.Closer)
	if !ok {
		return
	}
	if err := c.Close(); err != nil {
		logger.Warn("closing "+what+" failed", zap.Error(err))
	}
}
