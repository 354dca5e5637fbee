// Package llm provides LLM provider configuration options.
package llm

import (
	"fmt"
	"os"
	"time"

	"github.com/kart-io/tedrag/pkg/options"
	"github.com/spf13/pflag"
)

var _ options.IOptions = (*ProviderOptions)(nil)

// ProviderOptions configures one model provider (embedding or chat).
type ProviderOptions struct {
	// Provider is the provider name in the llm registry.
	Provider string `json:"provider" mapstructure:"provider"`

	// BaseURL is the API base address.
	BaseURL string `json:"base-url" mapstructure:"base-url"`

	// APIKey is the API key. When empty it falls back to the
	// LLMOD_API_KEY and RPRTHPB_API_KEY environment variables.
	APIKey string `json:"api-key" mapstructure:"api-key"`

	// Model is the model name.
	Model string `json:"model" mapstructure:"model"`

	// Timeout bounds each request.
	Timeout time.Duration `json:"timeout" mapstructure:"timeout"`

	// MaxRetries bounds retries on transient failures.
	MaxRetries int `json:"max-retries" mapstructure:"max-retries"`
}

// NewProviderOptions creates default provider options for the LLMOD
// gateway (an OpenAI-compatible API).
func NewProviderOptions() *ProviderOptions {
	return &ProviderOptions{
		Provider:   "openai",
		BaseURL:    "https://api.llmod.ai/v1",
		Timeout:    120 * time.Second,
		MaxRetries: 3,
	}
}

// NewEmbeddingOptions creates default embedding provider options.
func NewEmbeddingOptions() *ProviderOptions {
	opts := NewProviderOptions()
	opts.Model = "RPRTHPB-text-embedding-3-small"
	return opts
}

// NewChatOptions creates default chat provider options.
func NewChatOptions() *ProviderOptions {
	opts := NewProviderOptions()
	opts.Model = "RPRTHPB-gpt-5-mini"
	return opts
}

// ToConfigMap converts the options into a provider factory config map.
func (o *ProviderOptions) ToConfigMap() map[string]any {
	return map[string]any{
		"base_url":    o.BaseURL,
		"api_key":     o.APIKey,
		"embed_model": o.Model,
		"chat_model":  o.Model,
		"timeout":     o.Timeout,
		"max_retries": o.MaxRetries,
	}
}

// AddFlags adds flags for LLM provider options to the specified FlagSet.
func (o *ProviderOptions) AddFlags(fs *pflag.FlagSet, prefixes ...string) {
	fs.StringVar(&o.Provider, options.Join(prefixes...)+"provider", o.Provider, "LLM provider name.")
	fs.StringVar(&o.BaseURL, options.Join(prefixes...)+"base-url", o.BaseURL, "LLM API base URL.")
	fs.StringVar(&o.APIKey, options.Join(prefixes...)+"api-key", o.APIKey, "LLM API key.")
	fs.StringVar(&o.Model, options.Join(prefixes...)+"model", o.Model, "LLM model name.")
	fs.DurationVar(&o.Timeout, options.Join(prefixes...)+"timeout", o.Timeout, "LLM request timeout.")
	fs.IntVar(&o.MaxRetries, options.Join(prefixes...)+"max-retries", o.MaxRetries, "LLM maximum number of retries.")
}

// Complete fills the API key from the environment when unset.
func (o *ProviderOptions) Complete() error {
	if o.APIKey == "" {
		if v := os.Getenv("LLMOD_API_KEY"); v != "" {
			o.APIKey = v
		} else if v := os.Getenv("RPRTHPB_API_KEY"); v != "" {
			o.APIKey = v
		}
	}
	if v := os.Getenv("LLMOD_BASE_URL"); v != "" {
		o.BaseURL = v
	}
	if o.MaxRetries <= 0 {
		o.MaxRetries = 3
	}
	return nil
}

// Validate validates the LLM provider options.
func (o *ProviderOptions) Validate() []error {
	if o == nil {
		return nil
	}

	var errs []error
	if o.Provider == "" {
		errs = append(errs, fmt.Errorf("provider is required"))
	}
	if o.BaseURL == "" {
		errs = append(errs, fmt.Errorf("base-url is required"))
	}
	if o.Model == "" {
		errs = append(errs, fmt.Errorf("model is required"))
	}
	if o.Provider == "openai" && o.APIKey == "" {
		errs = append(errs, fmt.Errorf("api-key is required: set the flag or the LLMOD_API_KEY (or RPRTHPB_API_KEY) environment variable"))
	}
	if o.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive"))
	}
	return errs
}
