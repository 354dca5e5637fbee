// Package options contains flags and options for the ingestion CLI.
package options

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/tedrag/internal/ingest"
	llmopts "github.com/kart-io/tedrag/pkg/options/llm"
	logopts "github.com/kart-io/tedrag/pkg/options/logger"
	milvusopts "github.com/kart-io/tedrag/pkg/options/milvus"
	ragopts "github.com/kart-io/tedrag/pkg/options/rag"
)

// Flag defaults applied after environment fallbacks.
const (
	defaultCSVPath   = "ted_talks_en.csv"
	defaultLimit     = 100
	defaultCachePath = ".rag_cache/embeddings.jsonl"
)

// IngestOptions contains the configuration options for one ingestion run.
// Each flag left unset falls back to an environment variable, then to a
// built-in default.
type IngestOptions struct {
	// CSVPath is the talks CSV path. Env: TED_CSV_PATH.
	CSVPath string `json:"csv" mapstructure:"csv"`

	// Offset skips the first N talks. Env: INGEST_OFFSET_TALKS.
	Offset int `json:"offset" mapstructure:"offset"`

	// Limit bounds the talks processed; 0 means unset. Env: INGEST_LIMIT_TALKS.
	Limit int `json:"limit" mapstructure:"limit"`

	// DryRun skips vector store writes. Env: DRY_RUN=1.
	DryRun bool `json:"dry-run" mapstructure:"dry-run"`

	// NoEmbed injects zero vectors instead of embedding. Env: NO_EMBED=1.
	NoEmbed bool `json:"no-embed" mapstructure:"no-embed"`

	// Verbose enables progress logging. Env: VERBOSE=1.
	Verbose bool `json:"verbose" mapstructure:"verbose"`

	// Namespace is the target corpus partition. Env: TED_NAMESPACE.
	Namespace string `json:"namespace" mapstructure:"namespace"`

	// CachePath is the embedding cache log path. Env: EMBED_CACHE_PATH.
	CachePath string `json:"cache" mapstructure:"cache"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MilvusOptions contains Milvus database configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// RAGOptions contains chunking and collection configuration.
	RAGOptions *ragopts.Options `json:"rag" mapstructure:"rag"`
}

// NewIngestOptions creates an IngestOptions instance with default values.
func NewIngestOptions() *IngestOptions {
	return &IngestOptions{
		LogOptions:       logopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		RAGOptions:       ragopts.NewOptions(),
	}
}

// AddFlags adds the ingestion flags to the flagset.
func (o *IngestOptions) AddFlags(fs *pflag.FlagSet) {
	fs.StringVar(&o.CSVPath, "csv", o.CSVPath, "Path to the TED talks CSV (env TED_CSV_PATH).")
	fs.IntVar(&o.Offset, "offset", o.Offset, "Number of talks to skip (env INGEST_OFFSET_TALKS).")
	fs.IntVar(&o.Limit, "limit", o.Limit, "Maximum talks to ingest, default 100 (env INGEST_LIMIT_TALKS).")
	fs.BoolVar(&o.DryRun, "dry-run", o.DryRun, "Skip vector store writes (env DRY_RUN=1).")
	fs.BoolVar(&o.NoEmbed, "no-embed", o.NoEmbed, "Inject zero vectors instead of embedding; not valid for real retrieval (env NO_EMBED=1).")
	fs.BoolVar(&o.Verbose, "verbose", o.Verbose, "Log per-talk progress (env VERBOSE=1).")
	fs.StringVar(&o.Namespace, "namespace", o.Namespace, "Target corpus namespace (env TED_NAMESPACE).")
	fs.StringVar(&o.CachePath, "cache", o.CachePath, "Embedding cache log path (env EMBED_CACHE_PATH).")

	o.LogOptions.AddFlags(fs)
	o.MilvusOptions.AddFlags(fs)
	o.EmbeddingOptions.AddFlags(fs, "embedding")
	o.RAGOptions.AddFlags(fs)
}

// Complete applies environment fallbacks and defaults for unset flags.
func (o *IngestOptions) Complete() error {
	if o.CSVPath == "" {
		o.CSVPath = envOr("TED_CSV_PATH", defaultCSVPath)
	}
	if o.Offset == 0 {
		o.Offset = envInt("INGEST_OFFSET_TALKS", 0)
	}
	if o.Limit == 0 {
		o.Limit = envInt("INGEST_LIMIT_TALKS", defaultLimit)
	}
	if !o.DryRun {
		o.DryRun = os.Getenv("DRY_RUN") == "1"
	}
	if !o.NoEmbed {
		o.NoEmbed = os.Getenv("NO_EMBED") == "1"
	}
	if !o.Verbose {
		o.Verbose = os.Getenv("VERBOSE") == "1"
	}
	if o.Namespace == "" {
		o.Namespace = envOr("TED_NAMESPACE", o.RAGOptions.Namespace)
	}
	if o.CachePath == "" {
		o.CachePath = envOr("EMBED_CACHE_PATH", defaultCachePath)
	}

	if !o.NoEmbed {
		if err := o.EmbeddingOptions.Complete(); err != nil {
			return fmt.Errorf("embedding: %w", err)
		}
	}
	return nil
}

// Validate checks whether the options are valid.
func (o *IngestOptions) Validate() error {
	errs := []error{}

	if o.CSVPath == "" {
		errs = append(errs, fmt.Errorf("csv path is required: pass --csv or set TED_CSV_PATH"))
	}
	if o.Offset < 0 {
		errs = append(errs, fmt.Errorf("offset must not be negative"))
	}
	if o.Namespace == "" {
		errs = append(errs, fmt.Errorf("namespace is required"))
	}

	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.RAGOptions.Validate()...)
	if !o.DryRun {
		errs = append(errs, o.MilvusOptions.Validate()...)
	}
	if !o.NoEmbed {
		errs = append(errs, o.EmbeddingOptions.Validate()...)
	}

	return utilerrors.NewAggregate(errs)
}

// Config builds the ingestion driver config.
func (o *IngestOptions) Config() *ingest.Config {
	return &ingest.Config{
		CSVPath:         o.CSVPath,
		Offset:          o.Offset,
		Limit:           o.Limit,
		DryRun:          o.DryRun,
		NoEmbed:         o.NoEmbed,
		Verbose:         o.Verbose,
		Namespace:       o.Namespace,
		CachePath:       o.CachePath,
		Collection:      o.RAGOptions.Collection,
		ChunkSizeTokens: o.RAGOptions.ChunkSize,
		OverlapRatio:    o.RAGOptions.OverlapRatio,
		EmbeddingDim:    o.RAGOptions.EmbeddingDim,
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
