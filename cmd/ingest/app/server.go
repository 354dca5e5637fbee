// Package app provides the ingestion CLI application.
package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/kart-io/logger"

	"github.com/kart-io/tedrag/cmd/ingest/app/options"
	"github.com/kart-io/tedrag/internal/ingest"
	"github.com/kart-io/tedrag/internal/tedrag/store"
	"github.com/kart-io/tedrag/pkg/app"
	"github.com/kart-io/tedrag/pkg/component/milvus"
	"github.com/kart-io/tedrag/pkg/llm"
	// Register the LLM provider.
	_ "github.com/kart-io/tedrag/pkg/llm/openai"
)

const commandDesc = `TED Talk ingestion pipeline

Reads a CSV of TED talks, chunks each transcript, embeds the chunks
(consulting an append-only embedding cache to avoid recomputation), and
upserts the vectors into Milvus in batches. Every flag has an environment
variable fallback; a .env file in the working directory is loaded first.`

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	// Flags and env fallbacks are resolved in Complete; .env has to be in
	// the environment before that runs.
	_ = godotenv.Load()

	opts := options.NewIngestOptions()
	return app.NewApp(
		app.WithName("tedrag-ingest"),
		app.WithShortDescription("Ingest TED talk transcripts into the vector store"),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

// run contains the main ingestion logic.
func run(opts *options.IngestOptions) app.RunFunc {
	return func() error {
		if err := opts.LogOptions.Init(); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		ctx := signalContext()

		var vectorStore store.VectorStore
		cfg := opts.Config()

		if !cfg.DryRun {
			milvusClient, err := milvus.New(opts.MilvusOptions)
			if err != nil {
				return fmt.Errorf("failed to initialize milvus: %w", err)
			}
			vectorStore = store.NewMilvusStore(milvusClient)
			defer func() {
				_ = vectorStore.Close(context.Background())
			}()
		}

		var embedder llm.EmbeddingProvider
		if !cfg.NoEmbed {
			var err error
			embedder, err = llm.NewEmbeddingProvider(opts.EmbeddingOptions.Provider, opts.EmbeddingOptions.ToConfigMap())
			if err != nil {
				return fmt.Errorf("failed to initialize embedding provider: %w", err)
			}
		}

		summary, err := ingest.NewDriver(vectorStore, embedder, cfg).Run(ctx)
		if err != nil {
			return err
		}

		logger.Infow("ingestion summary",
			"talks_ingested", summary.TalksIngested,
			"offset", summary.Offset,
			"limit", summary.Limit,
			"chunks_total", summary.ChunksTotal,
			"embeddings_new", summary.EmbeddingsNew,
			"upserted", summary.Upserted,
		)
		return nil
	}
}

// signalContext returns a context cancelled on SIGINT or SIGTERM.
func signalContext() context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	c := make(chan os.Signal, 2)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-c
		cancel()
		<-c
		os.Exit(1)
	}()
	return ctx
}
