package app

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"casewizard/internal/assistant"
	"casewizard/internal/auth"
	"casewizard/internal/gateway/archive"
	"casewizard/internal/gateway/config"
	"casewizard/internal/gateway/handler"
	"casewizard/internal/gateway/recordstore"
	"casewizard/internal/gateway/server"
	"casewizard/internal/llmclient"
)

type App struct {
	server        *server.Server
	records       *recordstore.Store
	chain         *llmclient.Chain
	shutdownGrace time.Duration
}

func New() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.AuthSecret == "" {
		return nil, fmt.Errorf("AUTH_SECRET is required outside local env")
	}

	// Dependencies
	records := recordstore.NewFromEnv(filepath.Join("tmp", cfg.RecordPath))
	arc := initArchive(cfg)
	chain := initProviders(context.Background(), cfg)
	signer := auth.NewSigner(cfg.AuthSecret)
	asst := assistant.NewService(chain, records, assistant.NewHub())

	h := handler.New(records, arc, asst, signer)

	// Routing & Server
	mux := server.NewMux(h)
	srv := server.New(cfg.Port, mux)

	return &App{server: srv, records: records, chain: chain, shutdownGrace: cfg.ShutdownGrace}, nil
}

// ShutdownGrace is the configured drain window for graceful shutdown.
func (a *App) ShutdownGrace() time.Duration {
	return a.shutdownGrace
}

func initArchive(cfg *config.Config) archive.Store {
	if !cfg.Archive.Enabled {
		return archive.NewMemoryStore()
	}
	s3, err := archive.NewS3Store(archive.S3Config{
		Endpoint:  cfg.Archive.Endpoint,
		Region:    cfg.Archive.Region,
		AccessKey: cfg.Archive.AccessKey,
		SecretKey: cfg.Archive.SecretKey,
		Bucket:    cfg.Archive.Bucket,
		UseSSL:    cfg.Archive.UseSSL,
	})
	if err != nil {
		log.Printf("archive: s3 unavailable, using in-memory store: %v", err)
		return archive.NewMemoryStore()
	}
	return s3
}

func initProviders(ctx context.Context, cfg *config.Config) *llmclient.Chain {
	var clients []llmclient.Client
	if g, err := llmclient.NewGeminiClient(ctx, cfg.GeminiModel); err != nil {
		log.Printf("gemini unavailable: %v", err)
	} else {
		clients = append(clients, g)
	}
	if g, err := llmclient.NewGroqClient("", cfg.GroqModel); err != nil {
		log.Printf("groq unavailable: %v", err)
	} else {
		clients = append(clients, g)
	}
	return llmclient.NewChain(clients...)
}

func (a *App) Start() error {
	return a.server.Start()
}

func (a *App) Shutdown(ctx context.Context) error {
	err := a.server.Shutdown(ctx)
	if cerr := a.chain.Close(); err == nil {
		err = cerr
	}
	if cerr := a.records.Close(); err == nil {
		err = cerr
	}
	return err
}
