package biz

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kart-io/tedrag/internal/model"
	"github.com/kart-io/tedrag/internal/tedrag/metrics"
	"github.com/kart-io/tedrag/internal/tedrag/store"
	"github.com/kart-io/tedrag/pkg/llm"
)

const (
	// exactThreeRetrievalTopK widens retrieval for the exact-three-titles
	// case to raise the odds of seeing three distinct talks.
	exactThreeRetrievalTopK = 20
	// distinctTalkLimit caps the distinct-talks selection.
	distinctTalkLimit = 3
	// singleTalkLimit caps the single-talk selection.
	singleTalkLimit = 3
	// genericContextCap bounds generic-question context.
	genericContextCap = 8
)

// RetrieverConfig configures the retrieval orchestrator.
type RetrieverConfig struct {
	// Collection is the vector store collection name.
	Collection string
	// Namespace is the corpus partition to search.
	Namespace string
	// TopK is the default retrieval width.
	TopK int
}

// Retriever embeds the question, fetches ranked candidates from the vector
// store, and applies the selection policy for the question type.
type Retriever struct {
	store    store.VectorStore
	embedder llm.EmbeddingProvider
	config   *RetrieverConfig
	metrics  *metrics.Metrics
}

// NewRetriever creates a retrieval orchestrator.
func NewRetriever(vectorStore store.VectorStore, embedder llm.EmbeddingProvider, config *RetrieverConfig) *Retriever {
	return &Retriever{
		store:    vectorStore,
		embedder: embedder,
		config:   config,
		metrics:  metrics.Get(),
	}
}

// AnswerContext returns the context chunks for one question, selected
// according to its type.
func (r *Retriever) AnswerContext(ctx context.Context, question string, questionType QuestionType) ([]model.RetrievedChunk, error) {
	q := strings.TrimSpace(question)
	if q == "" {
		return nil, nil
	}

	topK := r.config.TopK
	if questionType == QuestionExactThreeTitles {
		topK = exactThreeRetrievalTopK
	}

	candidates, err := r.retrieve(ctx, q, topK)
	if err != nil {
		return nil, err
	}

	switch questionType {
	case QuestionExactThreeTitles:
		return PickTopDistinctTalks(candidates, distinctTalkLimit), nil
	case QuestionPreciseFact, QuestionSummary, QuestionRecommendation:
		talkID := BestTalkID(candidates)
		if talkID == "" {
			return nil, nil
		}
		return PickTopChunksFromSingleTalk(candidates, talkID, singleTalkLimit), nil
	default:
		return BoundContext(candidates, genericContextCap), nil
	}
}

// retrieve runs the similarity search and converts the raw hits. Hits
// missing a talk id, title, or text are dropped.
func (r *Retriever) retrieve(ctx context.Context, question string, topK int) ([]model.RetrievedChunk, error) {
	start := time.Now()

	vector, err := r.embedder.EmbedSingle(ctx, question)
	if err != nil {
		r.metrics.RecordRetrieval(time.Since(start), err)
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	results, err := r.store.Search(ctx, r.config.Collection, r.config.Namespace, vector, topK)
	r.metrics.RecordRetrieval(time.Since(start), err)
	if err != nil {
		return nil, fmt.Errorf("failed to search vector store: %w", err)
	}

	chunks := make([]model.RetrievedChunk, 0, len(results))
	for _, res := range results {
		if res.TalkID == "" || res.Title == "" || res.Text == "" {
			continue
		}
		chunks = append(chunks, model.RetrievedChunk{
			TalkID:  res.TalkID,
			Title:   res.Title,
			Speaker: res.Speaker,
			Text:    res.Text,
			Score:   res.Score,
		})
	}

	return chunks, nil
}
