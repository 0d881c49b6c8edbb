package app

import (
	"context"
	"fmt"
	"time"

	"github.com/MarroquinRiv/jarvis/internal/config"
	"github.com/MarroquinRiv/jarvis/internal/core"
	db "github.com/MarroquinRiv/jarvis/internal/core/database"
	"github.com/MarroquinRiv/jarvis/internal/core/ingest"
	"github.com/MarroquinRiv/jarvis/internal/core/llm"
	objectclient "github.com/MarroquinRiv/jarvis/internal/core/object-client"
	"github.com/MarroquinRiv/jarvis/internal/logger"
)

// App owns every long-lived client and the HTTP server.
type App struct {
	DBClient     core.DbClient
	ObjectClient core.ObjectClient
	Embedder     *llm.GeminiEmbedder
	LLM          *llm.GeminiLLM
	Pipeline     *ingest.Pipeline
	Server       *Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	appCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	dbClient, err := db.NewDatabaseClient(appCtx, cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("database initialized and ready")

	objClient, err := objectclient.NewS3Client(appCtx, cfg)
	if err != nil {
		return nil, err
	}

	embedder, err := llm.NewGeminiEmbedder(appCtx, cfg.AIAPIKey, cfg.EmbedModel)
	if err != nil {
		return nil, fmt.Errorf("init embedder: %w", err)
	}

	llmProvider, err := llm.NewGeminiLLM(appCtx, cfg.AIAPIKey, cfg.GenModel)
	if err != nil {
		return nil, fmt.Errorf("init llm: %w", err)
	}

	extractor := ingest.NewTypeExtractor()
	notifier := ingest.NewWebhookNotifier(cfg.WebhookURL)
	pipeline := ingest.NewPipeline(dbClient, extractor, embedder, notifier, ingest.Config{
		ChunkSize:    cfg.ChunkSize,
		ChunkOverlap: cfg.ChunkOverlap,
		EmbedDim:     cfg.EmbedDim,
	})

	server := NewServer(cfg, dbClient, objClient, pipeline, embedder, llmProvider)

	return &App{
		DBClient:     dbClient,
		ObjectClient: objClient,
		Embedder:     embedder,
		LLM:          llmProvider,
		Pipeline:     pipeline,
		Server:       server,
	}, nil
}

func (a *App) Close() {
	if a.Embedder != nil {
		_ = a.Embedder.Close()
	}
	if a.LLM != nil {
		_ = a.LLM.Close()
	}
	if a.DBClient != nil {
		_ = a.DBClient.Close()
	}
}
