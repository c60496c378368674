// Package server wires the adoption concierge together: catalog,
// semantic index, reasoning backend, session registry, tools, and the
// HTTP router. It is the single construction context every component is
// injected from.
package server

import (
	"context"
	"fmt"
	"net/http"

	mcpgo "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog/log"

	"github.com/poochpalace/adoptions/internal/api"
	"github.com/poochpalace/adoptions/internal/api/handlers"
	"github.com/poochpalace/adoptions/internal/assistant"
	"github.com/poochpalace/adoptions/internal/catalog"
	"github.com/poochpalace/adoptions/internal/config"
	"github.com/poochpalace/adoptions/internal/embeddings"
	"github.com/poochpalace/adoptions/internal/index"
	"github.com/poochpalace/adoptions/internal/llm"
	"github.com/poochpalace/adoptions/internal/mcpserver"
	"github.com/poochpalace/adoptions/internal/sessions"
	"github.com/poochpalace/adoptions/internal/telemetry"
	"github.com/poochpalace/adoptions/internal/tools"
	"github.com/poochpalace/adoptions/internal/vectorstore"
)

// Server holds the initialized concierge.
type Server struct {
	// Handler is the HTTP handler with all routes and middleware.
	Handler http.Handler

	// Catalog is the dog store; Close it on shutdown.
	Catalog *catalog.Store

	// Sessions is the conversation memory registry.
	Sessions *sessions.Registry

	// MCP is the optional MCP server (nil unless enabled).
	MCP *mcpgo.MCPServer

	// Config is the loaded configuration.
	Config *config.Config

	// Port is the port the server should listen on.
	Port int

	// ShutdownFunc should be called on graceful shutdown to flush telemetry.
	ShutdownFunc func(context.Context) error
}

// New initializes the concierge from environment configuration.
func New(ctx context.Context) (*Server, error) {
	return NewWithConfig(ctx, config.Load())
}

// NewWithConfig initializes the concierge with an explicit configuration.
// An index seeding failure is returned as an error: the process must not
// serve inquiries against an unverifiable index, so main treats it as
// fatal.
func NewWithConfig(ctx context.Context, cfg *config.Config) (*Server, error) {
	shutdown, err := telemetry.Init(cfg.Telemetry)
	if err != nil {
		return nil, fmt.Errorf("init telemetry: %w", err)
	}

	cat, err := catalog.Open(cfg.Catalog.DataDir)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	if cfg.Catalog.Seed {
		if err := cat.SeedIfEmpty(ctx, catalog.DemoDogs()); err != nil {
			cat.Close()
			return nil, fmt.Errorf("seed catalog: %w", err)
		}
	}

	emb, err := newEmbeddingDriver(cfg.Embedding)
	if err != nil {
		cat.Close()
		return nil, err
	}

	store, err := newVectorStore(ctx, cfg.Vector, emb.Dimensions())
	if err != nil {
		cat.Close()
		return nil, err
	}

	indexer := index.NewIndexer(cat, emb, store)
	if err := indexer.EnsureIndexed(ctx); err != nil {
		cat.Close()
		return nil, fmt.Errorf("seed semantic index: %w", err)
	}

	retriever := index.NewRetriever(emb, store, cfg.Vector.TopK)
	backend := llm.NewHTTPClient(cfg.Model)
	registry := sessions.NewRegistry()
	scheduler := tools.NewScheduler()

	concierge := assistant.New(backend, retriever, registry, scheduler.Descriptor())

	h := handlers.New(concierge, cat)
	router := api.NewRouter(cfg, h)

	var mcpSrv *mcpgo.MCPServer
	if cfg.MCP.Enabled {
		mcpSrv = mcpserver.New(mcpserver.Deps{Scheduler: scheduler, Retriever: retriever})
		log.Info().Msg("MCP server initialized")
	}

	log.Info().
		Str("embeddings", emb.Kind()).
		Str("vector_store", store.Kind()).
		Str("model", cfg.Model.Kind).
		Msg("Concierge initialized")

	return &Server{
		Handler:      router,
		Catalog:      cat,
		Sessions:     registry,
		MCP:          mcpSrv,
		Config:       cfg,
		Port:         cfg.Port,
		ShutdownFunc: shutdown,
	}, nil
}

func newEmbeddingDriver(cfg config.EmbeddingConfig) (embeddings.Driver, error) {
	switch cfg.Kind {
	case "openai":
		return embeddings.NewOpenAIDriver(cfg.Endpoint, cfg.APIKey, cfg.Model), nil
	case "ollama", "":
		return embeddings.NewOllamaDriver(cfg.Endpoint, cfg.Model), nil
	default:
		return nil, fmt.Errorf("unknown embedding driver: %s", cfg.Kind)
	}
}

func newVectorStore(ctx context.Context, cfg config.VectorConfig, dims int) (vectorstore.Driver, error) {
	switch cfg.Kind {
	case "pgvector":
		if cfg.PgvectorURL == "" {
			return nil, fmt.Errorf("pgvector store requires ADOPTIONS_PGVECTOR_URL")
		}
		return vectorstore.NewPgvectorStore(ctx, cfg.PgvectorURL, dims)
	case "embedded", "":
		return vectorstore.NewEmbeddedStore(), nil
	default:
		return nil, fmt.Errorf("unknown vector store: %s", cfg.Kind)
	}
}
