package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const testAPIKey = "test-key"

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name      string
		config    map[string]any
		wantError bool
	}{
		{
			name:      "valid config",
			config:    map[string]any{"api_key": testAPIKey},
			wantError: false,
		},
		{
			name: "gateway config",
			config: map[string]any{
				"api_key":     testAPIKey,
				"base_url":    "https://api.llmod.ai/v1",
				"embed_model": "RPRTHPB-text-embedding-3-small",
				"chat_model":  "RPRTHPB-gpt-5-mini",
			},
			wantError: false,
		},
		{
			name:      "missing api_key",
			config:    map[string]any{},
			wantError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)
			if tt.wantError {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if provider.Name() != ProviderName {
				t.Errorf("expected provider name %s, got %s", ProviderName, provider.Name())
			}
		})
	}
}

func TestProviderEmbed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/embeddings" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer "+testAPIKey {
			t.Errorf("unexpected Authorization header: %s", got)
		}

		var req struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)

		resp := map[string]any{
			"data": []map[string]any{
				// Out of order on purpose; the client must sort by index.
				{"index": 1, "embedding": []float32{0.3, 0.4}},
				{"index": 0, "embedding": []float32{0.1, 0.2}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewProviderWithConfig(&Config{
		BaseURL:    server.URL,
		APIKey:     testAPIKey,
		EmbedModel: "text-embedding-3-small",
		Timeout:    5 * time.Second,
	})

	embeddings, err := provider.Embed(context.Background(), []string{"a", "b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(embeddings) != 2 {
		t.Fatalf("expected 2 embeddings, got %d", len(embeddings))
	}
	if embeddings[0][0] != 0.1 || embeddings[1][0] != 0.3 {
		t.Errorf("embeddings not ordered by index: %v", embeddings)
	}
}

func TestProviderGenerate(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var req struct {
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" {
			t.Errorf("expected system+user messages, got %+v", req.Messages)
		}

		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": "grounded answer"}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewProviderWithConfig(&Config{
		BaseURL:   server.URL,
		APIKey:    testAPIKey,
		ChatModel: "gpt-4o-mini",
		Timeout:   5 * time.Second,
	})

	out, err := provider.Generate(context.Background(), "question", "system prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if out != "grounded answer" {
		t.Errorf("unexpected output: %s", out)
	}
}

func TestProviderGenerateEmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		resp := map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"role": "assistant", "content": ""}},
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider := NewProviderWithConfig(&Config{
		BaseURL:   server.URL,
		APIKey:    testAPIKey,
		ChatModel: "gpt-4o-mini",
		Timeout:   5 * time.Second,
	})

	if _, err := provider.Generate(context.Background(), "q", "s"); err == nil {
		t.Error("expected error for empty completion, got nil")
	}
}
