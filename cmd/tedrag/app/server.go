// Package app provides the QA server application.
package app

import (
	"context"
	"fmt"

	"github.com/kart-io/tedrag/cmd/tedrag/app/options"
	"github.com/kart-io/tedrag/internal/tedrag"
	"github.com/kart-io/tedrag/pkg/app"
)

const commandDesc = `TED Talk QA Service

A retrieval-augmented question answering service over TED Talk transcripts.

This server provides:
  - Question intent classification and per-intent context selection
  - Semantic similarity search over transcript chunks in Milvus
  - Grounded answer synthesis with a strict refusal policy
  - Published retrieval configuration via GET /stats`

// NewApp creates and returns a new App object with default parameters.
func NewApp() *app.App {
	opts := options.NewServerOptions()
	return app.NewApp(
		app.WithName(tedrag.Name),
		app.WithShortDescription("TED Talk QA service"),
		app.WithDescription(commandDesc),
		app.WithOptions(opts),
		app.WithRunFunc(run(opts)),
	)
}

// run contains the main logic for initializing and running the server.
func run(opts *options.ServerOptions) app.RunFunc {
	return func() error {
		cfg, err := opts.Config()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		server, err := cfg.NewServer(context.Background())
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		return server.Run()
	}
}
