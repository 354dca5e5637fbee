// Package biz implements the question answering pipeline: classification,
// retrieval, context selection, and answer synthesis.
package biz

import (
	"context"
	"time"

	"github.com/kart-io/logger"

	"github.com/kart-io/tedrag/internal/model"
	"github.com/kart-io/tedrag/internal/tedrag/metrics"
	"github.com/kart-io/tedrag/internal/tedrag/store"
	"github.com/kart-io/tedrag/pkg/llm"
)

// Service is the question answering service surface.
type Service interface {
	// Answer handles one question end to end.
	Answer(ctx context.Context, question string) (*model.Answer, error)
	// Stats returns the published retrieval configuration.
	Stats(ctx context.Context) *model.Stats
}

// ServiceConfig configures the QA service.
type ServiceConfig struct {
	// Collection is the vector store collection name.
	Collection string
	// Namespace is the corpus partition to search.
	Namespace string
	// ChunkSize is the chunk size in tokens, published via Stats.
	ChunkSize int
	// OverlapRatio is the chunk overlap ratio, published via Stats.
	OverlapRatio float64
	// TopK is the default retrieval width.
	TopK int
}

// QAService wires the classifier, retriever, and synthesizer together.
type QAService struct {
	retriever   *Retriever
	synthesizer *Synthesizer
	cache       *AnswerCache
	config      *ServiceConfig
	metrics     *metrics.Metrics
}

// NewQAService creates the QA service. cache may be nil.
func NewQAService(
	vectorStore store.VectorStore,
	embedder llm.EmbeddingProvider,
	chat llm.ChatProvider,
	cache *AnswerCache,
	config *ServiceConfig,
) *QAService {
	retriever := NewRetriever(vectorStore, embedder, &RetrieverConfig{
		Collection: config.Collection,
		Namespace:  config.Namespace,
		TopK:       config.TopK,
	})
	return &QAService{
		retriever:   retriever,
		synthesizer: NewSynthesizer(chat),
		cache:       cache,
		config:      config,
		metrics:     metrics.Get(),
	}
}

// Answer classifies the question, retrieves and selects context, and
// synthesizes the answer. Requests are stateless and safe to run
// concurrently.
func (s *QAService) Answer(ctx context.Context, question string) (*model.Answer, error) {
	start := time.Now()

	if cached := s.cache.Get(ctx, question); cached != nil {
		s.metrics.RecordCacheLookup(true)
		logger.Infow("answer served from cache", "elapsed", time.Since(start).String())
		return cached, nil
	}
	s.metrics.RecordCacheLookup(false)

	questionType := ClassifyQuestion(question)

	chunks, err := s.retriever.AnswerContext(ctx, question, questionType)
	if err != nil {
		s.metrics.RecordQuestion(time.Since(start), err)
		return nil, err
	}

	answer, err := s.synthesizer.Synthesize(ctx, questionType, question, chunks)
	s.metrics.RecordQuestion(time.Since(start), err)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, question, answer)

	logger.Infow("question answered",
		"type", string(questionType),
		"context_chunks", len(answer.Context),
		"refused", answer.Response == RefusalAnswer,
		"elapsed", time.Since(start).String(),
	)

	return answer, nil
}

// Stats returns the active retrieval configuration as fixed values.
func (s *QAService) Stats(_ context.Context) *model.Stats {
	return &model.Stats{
		ChunkSize:    s.config.ChunkSize,
		OverlapRatio: s.config.OverlapRatio,
		TopK:         s.config.TopK,
	}
}

var _ Service = (*QAService)(nil)
