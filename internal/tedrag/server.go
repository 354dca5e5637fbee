// Package tedrag provides the QA service server implementation.
package tedrag

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"
	goredis "github.com/redis/go-redis/v9"

	"github.com/kart-io/tedrag/internal/tedrag/biz"
	"github.com/kart-io/tedrag/internal/tedrag/handler"
	"github.com/kart-io/tedrag/internal/tedrag/router"
	"github.com/kart-io/tedrag/internal/tedrag/store"
	"github.com/kart-io/tedrag/pkg/component/milvus"
	"github.com/kart-io/tedrag/pkg/llm"
	// Register the LLM provider.
	_ "github.com/kart-io/tedrag/pkg/llm/openai"
	cacheopts "github.com/kart-io/tedrag/pkg/options/cache"
	httpopts "github.com/kart-io/tedrag/pkg/options/http"
	llmopts "github.com/kart-io/tedrag/pkg/options/llm"
	logopts "github.com/kart-io/tedrag/pkg/options/logger"
	milvusopts "github.com/kart-io/tedrag/pkg/options/milvus"
	ragopts "github.com/kart-io/tedrag/pkg/options/rag"
)

// Name is the service name.
const Name = "tedrag"

// Config contains the assembled service configuration.
type Config struct {
	HTTPOptions      *httpopts.Options
	LogOptions       *logopts.Options
	MilvusOptions    *milvusopts.Options
	EmbeddingOptions *llmopts.ProviderOptions
	ChatOptions      *llmopts.ProviderOptions
	RAGOptions       *ragopts.Options
	CacheOptions     *cacheopts.Options
	ShutdownTimeout  time.Duration
}

// Server is the assembled QA service.
type Server struct {
	httpServer      *http.Server
	shutdownTimeout time.Duration
	milvusClose     func()
	redisClose      func()
}

// NewServer initializes the service: logger, Milvus, Redis, LLM providers,
// the QA pipeline, and the HTTP server.
func (cfg *Config) NewServer(ctx context.Context) (*Server, error) {
	cfg.LogOptions.AddInitialField("service.name", Name)
	if err := cfg.LogOptions.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger.Info("Starting TED QA service...")

	milvusClient, err := milvus.New(cfg.MilvusOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize milvus: %w", err)
	}
	logger.Infow("Milvus client initialized", "address", cfg.MilvusOptions.Address)

	vectorStore := store.NewMilvusStore(milvusClient)
	if err := vectorStore.EnsureCollection(ctx, &store.CollectionConfig{
		Name:        cfg.RAGOptions.Collection,
		Description: "TED talk transcript chunks",
		Dimension:   cfg.RAGOptions.EmbeddingDim,
	}); err != nil {
		return nil, fmt.Errorf("failed to prepare collection: %w", err)
	}
	if count, err := vectorStore.GetStats(ctx, cfg.RAGOptions.Collection); err == nil {
		logger.Infow("Vector store ready", "collection", cfg.RAGOptions.Collection, "records", count)
	}

	var answerCache *biz.AnswerCache
	var redisClose func()
	if cfg.CacheOptions.Enabled {
		redisClient := goredis.NewClient(&goredis.Options{
			Addr:     cfg.CacheOptions.Addr,
			Password: cfg.CacheOptions.Password,
			DB:       cfg.CacheOptions.Database,
		})
		if err := redisClient.Ping(ctx).Err(); err != nil {
			logger.Warnw("failed to connect to redis, answer cache disabled", "error", err.Error())
			_ = redisClient.Close()
		} else {
			answerCache = biz.NewAnswerCache(redisClient, &biz.AnswerCacheConfig{
				Enabled:   true,
				TTL:       cfg.CacheOptions.TTL,
				KeyPrefix: cfg.CacheOptions.KeyPrefix,
			})
			redisClose = func() { _ = redisClient.Close() }
			logger.Infow("Answer cache initialized", "addr", cfg.CacheOptions.Addr, "ttl", cfg.CacheOptions.TTL)
		}
	} else {
		logger.Info("Answer cache is disabled")
	}

	embedProvider, err := llm.NewEmbeddingProvider(cfg.EmbeddingOptions.Provider, cfg.EmbeddingOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}
	logger.Infow("Embedding provider initialized",
		"provider", cfg.EmbeddingOptions.Provider,
		"model", cfg.EmbeddingOptions.Model,
	)

	chatProvider, err := llm.NewChatProvider(cfg.ChatOptions.Provider, cfg.ChatOptions.ToConfigMap())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize chat provider: %w", err)
	}
	logger.Infow("Chat provider initialized",
		"provider", cfg.ChatOptions.Provider,
		"model", cfg.ChatOptions.Model,
	)

	service := biz.NewQAService(vectorStore, embedProvider, chatProvider, answerCache, &biz.ServiceConfig{
		Collection:   cfg.RAGOptions.Collection,
		Namespace:    cfg.RAGOptions.Namespace,
		ChunkSize:    cfg.RAGOptions.ChunkSize,
		OverlapRatio: cfg.RAGOptions.OverlapRatio,
		TopK:         cfg.RAGOptions.TopK,
	})

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())
	router.Register(engine, handler.NewQAHandler(service))

	shutdownTimeout := cfg.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.HTTPOptions.Addr,
			Handler:      engine,
			ReadTimeout:  cfg.HTTPOptions.ReadTimeout,
			WriteTimeout: cfg.HTTPOptions.WriteTimeout,
			IdleTimeout:  cfg.HTTPOptions.IdleTimeout,
		},
		shutdownTimeout: shutdownTimeout,
		milvusClose: func() {
			closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = milvusClient.Close(closeCtx)
		},
		redisClose: redisClose,
	}, nil
}

// Run serves HTTP until SIGINT or SIGTERM, then shuts down gracefully.
func (s *Server) Run() error {
	errCh := make(chan error, 1)
	go func() {
		logger.Infow("HTTP server listening", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		logger.Infow("Shutting down", "signal", sig.String())
	}

	ctx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(ctx); err != nil {
		logger.Errorf("HTTP server shutdown: %v", err)
	}
	if s.redisClose != nil {
		s.redisClose()
	}
	if s.milvusClose != nil {
		s.milvusClose()
	}

	logger.Info("Server stopped")
	return nil
}
