package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"shopmate/internal/config"
	"shopmate/internal/domain"
	geminiembed "shopmate/internal/embedding/gemini"
	"shopmate/internal/embedding/openai"
	"shopmate/internal/indexer"
	"shopmate/internal/logging"
	"shopmate/internal/vectorstore/memory"
	"shopmate/internal/vectorstore/pinecone"
	"shopmate/internal/vectorstore/qdrant"
)

func newEmbedCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "embed",
		Short: "Embed every product description and upsert it into the vector index",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			return embed(cmd.Context(), cfg)
		},
	}
}

func embed(parent context.Context, cfg *config.AppConfig) error {
	settings, err := config.ResolveEmbedJob(cfg, os.Getenv)
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

	emb, err := newEmbedder(cfg.Embedder, settings.EmbedderAPIKey)
	if err != nil {
		return err
	}
	index, err := newVectorIndex(cfg.VectorStore, settings)
	if err != nil {
		return err
	}
	store, closeStore, err := openStore(ctx, cfg.Store, settings.MongoURI, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	logger.Info("embedding catalog", zap.String("embedder", emb.Name()), zap.String("vector_store", cfg.VectorStore.Type), zap.String("index", settings.IndexName))
	summary, err := indexer.NewJob(store, emb, index, logger).Run(ctx)
	if err != nil {
		return err
	}
	logger.Info("embedding job finished", zap.Int("products", summary.Products), zap.Int("dimension", summary.Dimension))
	return nil
}

func newEmbedder(cfg config.EmbedderConfig, apiKey string) (domain.Embedder, error) {
	switch cfg.Type {
	case "gemini":
		c, err := geminiembed.NewClient(geminiembed.Config{
			BaseURL: cfg.Gemini.BaseURL,
			APIKey:  apiKey,
			Model:   cfg.Gemini.Model,
			Timeout: time.Duration(cfg.Gemini.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	case "openai":
		c, err := openai.NewClient(openai.Config{
			BaseURL: cfg.OpenAI.BaseURL,
			APIKey:  apiKey,
			Model:   cfg.OpenAI.Model,
			Timeout: time.Duration(cfg.OpenAI.TimeoutSecs) * time.Second,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown embedder: %s", cfg.Type)
	}
}

func newVectorIndex(cfg config.VectorStoreConfig, settings config.EmbedJobSettings) (domain.VectorIndex, error) {
	switch cfg.Type {
	case "pinecone":
		return pinecone.NewStorage(pinecone.Config{
			APIKey:        settings.VectorAPIKey,
			Index:         settings.IndexName,
			ControllerURL: cfg.Pinecone.ControllerURL,
			Namespace:     cfg.Pinecone.Namespace,
			Timeout:       time.Duration(cfg.Pinecone.TimeoutSecs) * time.Second,
		}), nil
	case "qdrant":
		return qdrant.NewStorage(qdrant.Config{
			URL:        cfg.Qdrant.URL,
			APIKey:     settings.VectorAPIKey,
			Collection: cfg.Qdrant.Collection,
			Distance:   cfg.Qdrant.Distance,
			Timeout:    time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	case "memory":
		return memory.NewStorage(), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Type)
	}
}
