// Package rag provides retrieval pipeline configuration options.
package rag

import (
	"fmt"

	"github.com/kart-io/tedrag/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*Options)(nil)

// Options contains retrieval pipeline configuration. ChunkSize and
// OverlapRatio must match the values the index was built with; they are
// also the values published by GET /stats.
type Options struct {
	// ChunkSize is the approximate token budget per transcript chunk.
	ChunkSize int `json:"chunk-size" mapstructure:"chunk-size"`

	// OverlapRatio is the chunk overlap fraction, clamped to [0, 0.3].
	OverlapRatio float64 `json:"overlap-ratio" mapstructure:"overlap-ratio"`

	// TopK is the default number of candidates from similarity search.
	TopK int `json:"top-k" mapstructure:"top-k"`

	// Collection is the vector store collection name.
	Collection string `json:"collection" mapstructure:"collection"`

	// Namespace is the default corpus namespace inside the collection.
	Namespace string `json:"namespace" mapstructure:"namespace"`

	// EmbeddingDim is the embedding vector dimension.
	EmbeddingDim int `json:"embedding-dim" mapstructure:"embedding-dim"`
}

// NewOptions creates new Options with the published defaults.
func NewOptions() *Options {
	return &Options{
		ChunkSize:    1024,
		OverlapRatio: 0.2,
		TopK:         8,
		Collection:   "ted_talks",
		Namespace:    "ted",
		EmbeddingDim: 1536,
	}
}

// AddFlags adds flags to the flagset.
func (o *Options) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.IntVar(&o.ChunkSize, options.Join(prefixes...)+"rag.chunk-size", o.ChunkSize, "Approximate token budget per transcript chunk.")
	fs.Float64Var(&o.OverlapRatio, options.Join(prefixes...)+"rag.overlap-ratio", o.OverlapRatio, "Chunk overlap ratio in [0, 0.3].")
	fs.IntVar(&o.TopK, options.Join(prefixes...)+"rag.top-k", o.TopK, "Default number of candidates from similarity search.")
	fs.StringVar(&o.Collection, options.Join(prefixes...)+"rag.collection", o.Collection, "Vector store collection name.")
	fs.StringVar(&o.Namespace, options.Join(prefixes...)+"rag.namespace", o.Namespace, "Default corpus namespace.")
	fs.IntVar(&o.EmbeddingDim, options.Join(prefixes...)+"rag.embedding-dim", o.EmbeddingDim, "Embedding vector dimension.")
}

// Validate validates the options.
func (o *Options) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.ChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("rag.chunk-size must be positive"))
	}
	if o.OverlapRatio < 0 || o.OverlapRatio > 0.3 {
		errs = append(errs, fmt.Errorf("rag.overlap-ratio must be in [0, 0.3]"))
	}
	if o.TopK <= 0 {
		errs = append(errs, fmt.Errorf("rag.top-k must be positive"))
	}
	if o.Collection == "" {
		errs = append(errs, fmt.Errorf("rag.collection is required"))
	}
	if o.Namespace == "" {
		errs = append(errs, fmt.Errorf("rag.namespace is required"))
	}
	if o.EmbeddingDim <= 0 {
		errs = append(errs, fmt.Errorf("rag.embedding-dim must be positive"))
	}
	return errs
}
