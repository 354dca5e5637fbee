// Package store defines the vector storage layer for transcript chunks.
package store

import (
	"context"
)

// Chunk is one transcript slice written to the vector store.
type Chunk struct {
	// ID is the deterministic record key, talk_<talk_id>_chunk_<index>.
	ID string
	// TalkID is the source talk identifier.
	TalkID string
	// Title is the talk title.
	Title string
	// Speaker is the primary speaker name.
	Speaker string
	// ChunkIndex is the zero-based position within the talk.
	ChunkIndex int
	// Text is the chunk content.
	Text string
	// Embedding is the chunk's embedding vector.
	Embedding []float32
}

// SearchResult is one similarity search hit.
type SearchResult struct {
	// ID is the record key.
	ID string
	// TalkID is the source talk identifier.
	TalkID string
	// Title is the talk title.
	Title string
	// Speaker is the primary speaker name.
	Speaker string
	// ChunkIndex is the zero-based position within the talk.
	ChunkIndex int
	// Text is the chunk content.
	Text string
	// Score is the similarity score, higher is closer.
	Score float32
}

// CollectionConfig describes the backing collection.
type CollectionConfig struct {
	// Name is the collection name.
	Name string
	// Description is the collection description.
	Description string
	// Dimension is the embedding vector dimension.
	Dimension int
}

// VectorStore is the storage interface for transcript chunks.
type VectorStore interface {
	// EnsureCollection creates the collection if it does not exist and
	// loads it for searching.
	EnsureCollection(ctx context.Context, config *CollectionConfig) error

	// Upsert writes a batch of chunks into a namespace. Re-ingesting the
	// same talk replaces its records instead of duplicating them.
	Upsert(ctx context.Context, collection, namespace string, chunks []*Chunk) error

	// Search runs a similarity search restricted to one namespace.
	Search(ctx context.Context, collection, namespace string, embedding []float32, topK int) ([]*SearchResult, error)

	// GetStats returns the number of stored records.
	GetStats(ctx context.Context, collection string) (int64, error)

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
