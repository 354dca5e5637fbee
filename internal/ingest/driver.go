// Package ingest implements the offline pipeline that chunks transcripts,
// embeds them, and loads the vectors into the store.
package ingest

import (
	"context"
	"fmt"

	"github.com/kart-io/logger"

	"github.com/kart-io/tedrag/internal/pkg/chunk"
	"github.com/kart-io/tedrag/internal/tedrag/metrics"
	"github.com/kart-io/tedrag/internal/tedrag/store"
	"github.com/kart-io/tedrag/pkg/embedcache"
	"github.com/kart-io/tedrag/pkg/llm"
)

// upsertBatchSize is the flush threshold for vector store writes.
const upsertBatchSize = 100

// Config configures one ingestion run.
type Config struct {
	// CSVPath is the talks CSV location.
	CSVPath string
	// Offset skips the first N talks.
	Offset int
	// Limit bounds the number of talks processed after the offset.
	Limit int
	// DryRun skips vector store writes.
	DryRun bool
	// NoEmbed replaces cache misses with a zero vector instead of calling
	// the embedding service. The resulting index is not usable for real
	// retrieval; it exists so the pipeline can be exercised without
	// credentials.
	NoEmbed bool
	// Verbose enables per-talk progress logging.
	Verbose bool
	// Namespace is the target corpus partition.
	Namespace string
	// CachePath is the embedding cache log location.
	CachePath string

	// Collection is the vector store collection name.
	Collection string
	// ChunkSizeTokens is the chunk token budget.
	ChunkSizeTokens int
	// OverlapRatio is the chunk overlap ratio.
	OverlapRatio float64
	// EmbeddingDim is the vector dimension, used for the zero placeholder.
	EmbeddingDim int
}

// Summary is the final record of one ingestion run.
type Summary struct {
	TalksIngested int `json:"talks_ingested"`
	Offset        int `json:"offset"`
	Limit         int `json:"limit"`
	ChunksTotal   int `json:"chunks_total"`
	EmbeddingsNew int `json:"embeddings_new"`
	Upserted      int `json:"upserted"`
}

// Driver runs the ingestion pipeline. It is a single logical writer: the
// cache log and the upsert batches are not safe for concurrent drivers.
type Driver struct {
	store    store.VectorStore
	embedder llm.EmbeddingProvider
	config   *Config
	metrics  *metrics.Metrics
}

// NewDriver creates an ingestion driver. store may be nil for dry runs;
// embedder may be nil when NoEmbed is set.
func NewDriver(vectorStore store.VectorStore, embedder llm.EmbeddingProvider, config *Config) *Driver {
	return &Driver{
		store:    vectorStore,
		embedder: embedder,
		config:   config,
		metrics:  metrics.Get(),
	}
}

// Run executes the pipeline: read rows, chunk, embed cache misses, batch
// into the vector store, and flush the final partial batch.
func (d *Driver) Run(ctx context.Context) (*Summary, error) {
	cfg := d.config

	rows, err := ReadTalks(cfg.CSVPath)
	if err != nil {
		return nil, err
	}

	start := cfg.Offset
	if start < 0 {
		start = 0
	}
	if start > len(rows) {
		start = len(rows)
	}
	end := start + cfg.Limit
	if cfg.Limit < 0 || end > len(rows) {
		end = len(rows)
	}
	subset := rows[start:end]

	logger.Infow("Starting ingestion",
		"csv", cfg.CSVPath,
		"talks_total", len(rows),
		"talks_selected", len(subset),
		"offset", start,
		"limit", cfg.Limit,
		"namespace", cfg.Namespace,
		"dry_run", cfg.DryRun,
		"no_embed", cfg.NoEmbed,
	)

	cache, err := embedcache.Load(cfg.CachePath)
	if err != nil {
		return nil, err
	}
	logger.Infow("Embedding cache loaded", "path", cfg.CachePath, "entries", cache.Len())

	if !cfg.DryRun {
		if err := d.store.EnsureCollection(ctx, &store.CollectionConfig{
			Name:        cfg.Collection,
			Description: "TED talk transcript chunks",
			Dimension:   cfg.EmbeddingDim,
		}); err != nil {
			return nil, err
		}
	}

	summary := &Summary{Offset: start, Limit: cfg.Limit}
	chunkParams := chunk.Params{
		ChunkSizeTokens: cfg.ChunkSizeTokens,
		OverlapRatio:    cfg.OverlapRatio,
	}

	batch := make([]*store.Chunk, 0, upsertBatchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if !cfg.DryRun {
			if err := d.store.Upsert(ctx, cfg.Collection, cfg.Namespace, batch); err != nil {
				return err
			}
			summary.Upserted += len(batch)
			if cfg.Verbose {
				logger.Infow("upserted batch", "size", len(batch), "total_upserted", summary.Upserted)
			}
		}
		batch = batch[:0]
		return nil
	}

	for talkIdx, row := range subset {
		if row.TalkID == "" || row.Title == "" || row.Transcript == "" {
			continue
		}
		summary.TalksIngested++

		if cfg.Verbose {
			logger.Infow("processing talk",
				"n", talkIdx+1,
				"of", len(subset),
				"talk_id", row.TalkID,
				"title", row.Title,
			)
		}

		chunks := chunk.Split(row.Transcript, chunkParams)
		if cfg.Verbose {
			logger.Infow("chunked talk", "talk_id", row.TalkID, "chunks", len(chunks))
		}

		for i, text := range chunks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			key := embedcache.Key(row.TalkID, i, text, cfg.ChunkSizeTokens, cfg.OverlapRatio)
			embedding, hit := cache.Get(key)
			if !hit && !cfg.NoEmbed {
				embedding, err = d.embedder.EmbedSingle(ctx, text)
				if err != nil {
					return nil, fmt.Errorf("failed to embed chunk %s: %w", key, err)
				}
				if err := cache.Put(key, embedding); err != nil {
					return nil, err
				}
				summary.EmbeddingsNew++
				if cfg.Verbose && summary.EmbeddingsNew%25 == 0 {
					logger.Infow("embedding progress",
						"embedded_new", summary.EmbeddingsNew,
						"talk_id", row.TalkID,
						"chunk_index", i,
					)
				}
			}

			if len(embedding) == 0 {
				// Placeholder so record shaping can be tested without
				// credentials. Not valid for real retrieval.
				embedding = make([]float32, cfg.EmbeddingDim)
			}

			batch = append(batch, &store.Chunk{
				ID:         fmt.Sprintf("talk_%s_chunk_%d", row.TalkID, i),
				TalkID:     row.TalkID,
				Title:      row.Title,
				Speaker:    row.Speaker,
				ChunkIndex: i,
				Text:       text,
				Embedding:  embedding,
			})
			summary.ChunksTotal++

			if len(batch) >= upsertBatchSize {
				if err := flush(); err != nil {
					return nil, err
				}
			}
		}
	}

	// Final partial batch; without this trailing records would be dropped.
	if err := flush(); err != nil {
		return nil, err
	}

	d.metrics.RecordIngestion(summary.TalksIngested, summary.ChunksTotal, summary.EmbeddingsNew)

	logger.Infow("Ingestion complete",
		"talks_ingested", summary.TalksIngested,
		"chunks_total", summary.ChunksTotal,
		"embeddings_new", summary.EmbeddingsNew,
		"upserted", summary.Upserted,
	)

	return summary, nil
}
