package biz

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/tedrag/internal/tedrag/store"
)

func newTestService(fs *fakeStore, chat *fakeChat) *QAService {
	return NewQAService(fs, &fakeEmbedder{}, chat, nil, &ServiceConfig{
		Collection:   "ted_talks",
		Namespace:    "ted",
		ChunkSize:    1024,
		OverlapRatio: 0.2,
		TopK:         8,
	})
}

func TestServiceAnswerEndToEnd(t *testing.T) {
	fs := &fakeStore{results: []*store.SearchResult{
		hit("42", "Octopus Minds", "Jane Doe", "the transcript", 0.9),
		hit("42", "Octopus Minds", "Jane Doe", "more transcript", 0.8),
	}}
	chat := &fakeChat{response: "A talk about octopus cognition."}
	svc := newTestService(fs, chat)

	answer, err := svc.Answer(context.Background(), "Summarize the octopus talk")
	require.NoError(t, err)

	assert.Equal(t, chat.response, answer.Response)
	assert.Len(t, answer.Context, 2)
	assert.Equal(t, 1, chat.calls)
}

func TestServiceAnswerExactThreeNoGeneration(t *testing.T) {
	fs := &fakeStore{results: []*store.SearchResult{
		hit("a", "Talk A", "", "ta", 0.9),
		hit("b", "Talk B", "", "tb", 0.8),
		hit("c", "Talk C", "", "tc", 0.7),
	}}
	chat := &fakeChat{response: "should not be called"}
	svc := newTestService(fs, chat)

	answer, err := svc.Answer(context.Background(), "List exactly 3 talk titles about courage")
	require.NoError(t, err)

	assert.Equal(t, "Talk A\nTalk B\nTalk C", answer.Response)
	assert.Zero(t, chat.calls)
	assert.Equal(t, 20, fs.lastTopK)
}

func TestServiceAnswerRefusalOnEmptyRetrieval(t *testing.T) {
	fs := &fakeStore{}
	chat := &fakeChat{response: "should not be called"}
	svc := newTestService(fs, chat)

	answer, err := svc.Answer(context.Background(), "What's the capital of France")
	require.NoError(t, err)

	assert.Equal(t, RefusalAnswer, answer.Response)
	assert.Zero(t, chat.calls)
}

func TestServiceStats(t *testing.T) {
	svc := newTestService(&fakeStore{}, &fakeChat{})

	stats := svc.Stats(context.Background())

	assert.Equal(t, 1024, stats.ChunkSize)
	assert.Equal(t, 0.2, stats.OverlapRatio)
	assert.Equal(t, 8, stats.TopK)
}
