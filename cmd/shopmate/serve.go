package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shopmate/internal/augment"
	"shopmate/internal/catalog"
	"shopmate/internal/config"
	"shopmate/internal/httpapi"
	"shopmate/internal/llm/gemini"
	"shopmate/internal/logging"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the product REST API",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
}

func serve(parent context.Context, cfg *config.AppConfig) error {
	settings, err := config.ResolveServer(cfg, os.Getenv)
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg.Store, settings.MongoURI, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	g := cfg.Generator.Gemini
	gen, err := gemini.NewClient(gemini.Config{
		BaseURL:     g.BaseURL,
		APIKey:      settings.GeminiAPIKey,
		TextModel:   g.TextModel,
		VisionModel: g.VisionModel,
		Timeout:     time.Duration(g.TimeoutSecs) * time.Second,
	})
	if err != nil {
		return err
	}

	requestTimeout := time.Duration(cfg.Server.RequestTimeoutSecs) * time.Second
	products := catalog.NewService(store)
	aug := augment.NewService(gen, gen, requestTimeout, logger)

	gin.SetMode(gin.ReleaseMode)
	api := httpapi.New(products, aug, logger, httpapi.Options{
		BasePath:       cfg.Server.BasePath,
		RequestTimeout: requestTimeout,
		MaxUploadBytes: int64(cfg.Server.MaxUploadMB) << 20,
	})
	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", cfg.Server.Addr), zap.String("base_path", cfg.Server.BasePath))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
