// Package llm provides narrow interfaces over hosted embedding and chat
// model providers, with a registry so implementations stay injectable.
package llm

import (
	"context"
	"fmt"
	"sync"
)

// EmbeddingProvider generates vector embeddings.
type EmbeddingProvider interface {
	// Embed generates embeddings for a batch of texts, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedSingle generates the embedding for one text.
	EmbedSingle(ctx context.Context, text string) ([]float32, error)

	// Name returns the provider name.
	Name() string
}

// ChatProvider generates text from a system/user prompt pair.
type ChatProvider interface {
	// Generate produces text for the prompt. An empty completion is
	// reported as an error, never as an empty string.
	Generate(ctx context.Context, prompt string, systemPrompt string) (string, error)

	// Name returns the provider name.
	Name() string
}

// Provider supports both embedding and chat.
type Provider interface {
	EmbeddingProvider
	ChatProvider
}

// ProviderFactory builds a provider from a configuration map.
type ProviderFactory func(config map[string]any) (Provider, error)

var registry = struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}{factories: make(map[string]ProviderFactory)}

// RegisterProvider registers a provider factory under name. Providers
// register themselves from init, so importing a provider package for side
// effects is enough to make it available.
func RegisterProvider(name string, factory ProviderFactory) {
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.factories[name] = factory
}

// NewProvider creates a provider instance by name.
func NewProvider(name string, config map[string]any) (Provider, error) {
	registry.mu.RLock()
	factory, ok := registry.factories[name]
	registry.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("unknown provider: %s", name)
	}
	return factory(config)
}

// NewEmbeddingProvider creates a provider by name for embedding use.
func NewEmbeddingProvider(name string, config map[string]any) (EmbeddingProvider, error) {
	return NewProvider(name, config)
}

// NewChatProvider creates a provider by name for chat use.
func NewChatProvider(name string, config map[string]any) (ChatProvider, error) {
	return NewProvider(name, config)
}

// ListProviders lists the registered provider names.
func ListProviders() []string {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	names := make([]string, 0, len(registry.factories))
	for name := range registry.factories {
		names = append(names, name)
	}
	return names
}
