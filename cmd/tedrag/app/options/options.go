// Package options contains flags and options for initializing the QA server.
package options

import (
	"fmt"
	"time"

	"github.com/spf13/pflag"
	utilerrors "k8s.io/apimachinery/pkg/util/errors"

	"github.com/kart-io/tedrag/internal/tedrag"
	cacheopts "github.com/kart-io/tedrag/pkg/options/cache"
	httpopts "github.com/kart-io/tedrag/pkg/options/http"
	llmopts "github.com/kart-io/tedrag/pkg/options/llm"
	logopts "github.com/kart-io/tedrag/pkg/options/logger"
	milvusopts "github.com/kart-io/tedrag/pkg/options/milvus"
	ragopts "github.com/kart-io/tedrag/pkg/options/rag"
)

// ServerOptions contains the configuration options for the server.
type ServerOptions struct {
	// HTTPOptions contains HTTP server configuration.
	HTTPOptions *httpopts.Options `json:"http" mapstructure:"http"`

	// LogOptions contains logger configuration.
	LogOptions *logopts.Options `json:"log" mapstructure:"log"`

	// MilvusOptions contains Milvus database configuration.
	MilvusOptions *milvusopts.Options `json:"milvus" mapstructure:"milvus"`

	// EmbeddingOptions contains embedding provider configuration.
	EmbeddingOptions *llmopts.ProviderOptions `json:"embedding" mapstructure:"embedding"`

	// ChatOptions contains chat provider configuration.
	ChatOptions *llmopts.ProviderOptions `json:"chat" mapstructure:"chat"`

	// RAGOptions contains retrieval pipeline configuration.
	RAGOptions *ragopts.Options `json:"rag" mapstructure:"rag"`

	// CacheOptions contains answer cache configuration.
	CacheOptions *cacheopts.Options `json:"cache" mapstructure:"cache"`

	// ShutdownTimeout is the timeout for graceful shutdown.
	ShutdownTimeout time.Duration `json:"shutdown-timeout" mapstructure:"shutdown-timeout"`
}

// NewServerOptions creates a ServerOptions instance with default values.
func NewServerOptions() *ServerOptions {
	return &ServerOptions{
		HTTPOptions:      httpopts.NewOptions(),
		LogOptions:       logopts.NewOptions(),
		MilvusOptions:    milvusopts.NewOptions(),
		EmbeddingOptions: llmopts.NewEmbeddingOptions(),
		ChatOptions:      llmopts.NewChatOptions(),
		RAGOptions:       ragopts.NewOptions(),
		CacheOptions:     cacheopts.NewOptions(),
		ShutdownTimeout:  30 * time.Second,
	}
}

// AddFlags adds all server flags to the flagset.
func (o *ServerOptions) AddFlags(fs *pflag.FlagSet) {
	o.HTTPOptions.AddFlags(fs)
	o.LogOptions.AddFlags(fs)
	o.MilvusOptions.AddFlags(fs)
	o.EmbeddingOptions.AddFlags(fs, "embedding")
	o.ChatOptions.AddFlags(fs, "chat")
	o.RAGOptions.AddFlags(fs)
	o.CacheOptions.AddFlags(fs)

	fs.DurationVar(&o.ShutdownTimeout, "shutdown-timeout", o.ShutdownTimeout, "Graceful shutdown timeout")
}

// Complete completes all the required options.
func (o *ServerOptions) Complete() error {
	if err := o.EmbeddingOptions.Complete(); err != nil {
		return fmt.Errorf("embedding: %w", err)
	}
	if err := o.ChatOptions.Complete(); err != nil {
		return fmt.Errorf("chat: %w", err)
	}
	return nil
}

// Validate checks whether the options in ServerOptions are valid.
func (o *ServerOptions) Validate() error {
	errs := []error{}

	errs = append(errs, o.HTTPOptions.Validate()...)
	if err := o.LogOptions.Validate(); err != nil {
		errs = append(errs, err)
	}
	errs = append(errs, o.MilvusOptions.Validate()...)
	errs = append(errs, o.EmbeddingOptions.Validate()...)
	errs = append(errs, o.ChatOptions.Validate()...)
	errs = append(errs, o.RAGOptions.Validate()...)
	errs = append(errs, o.CacheOptions.Validate()...)

	return utilerrors.NewAggregate(errs)
}

// Config builds a tedrag.Config based on ServerOptions.
func (o *ServerOptions) Config() (*tedrag.Config, error) {
	return &tedrag.Config{
		HTTPOptions:      o.HTTPOptions,
		LogOptions:       o.LogOptions,
		MilvusOptions:    o.MilvusOptions,
		EmbeddingOptions: o.EmbeddingOptions,
		ChatOptions:      o.ChatOptions,
		RAGOptions:       o.RAGOptions,
		CacheOptions:     o.CacheOptions,
		ShutdownTimeout:  o.ShutdownTimeout,
	}, nil
}
