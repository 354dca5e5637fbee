package biz

import (
	"context"
	"fmt"

	"github.com/kart-io/tedrag/internal/tedrag/store"
)

// fakeStore returns canned search results and records the requested width.
type fakeStore struct {
	results    []*store.SearchResult
	searchErr  error
	lastTopK   int
	lastNS     string
	searchCnt  int
	statsCount int64
}

func (f *fakeStore) EnsureCollection(context.Context, *store.CollectionConfig) error { return nil }

func (f *fakeStore) Upsert(context.Context, string, string, []*store.Chunk) error { return nil }

func (f *fakeStore) Search(_ context.Context, _ string, namespace string, _ []float32, topK int) ([]*store.SearchResult, error) {
	f.searchCnt++
	f.lastTopK = topK
	f.lastNS = namespace
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	if len(f.results) > topK {
		return f.results[:topK], nil
	}
	return f.results, nil
}

func (f *fakeStore) GetStats(context.Context, string) (int64, error) { return f.statsCount, nil }

func (f *fakeStore) Close(context.Context) error { return nil }

// fakeEmbedder returns a fixed vector for any input.
type fakeEmbedder struct {
	embedErr error
	calls    int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.embedErr != nil {
		return nil, f.embedErr
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		f.calls++
		out[i] = []float32{0.1, 0.2, 0.3}
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedSingle(ctx context.Context, text string) ([]float32, error) {
	vecs, err := f.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

func (f *fakeEmbedder) Name() string { return "fake" }

// fakeChat records generation calls and returns a canned response.
type fakeChat struct {
	response   string
	err        error
	calls      int
	lastPrompt string
	lastSystem string
}

func (f *fakeChat) Generate(_ context.Context, prompt, systemPrompt string) (string, error) {
	f.calls++
	f.lastPrompt = prompt
	f.lastSystem = systemPrompt
	if f.err != nil {
		return "", f.err
	}
	return f.response, nil
}

func (f *fakeChat) Name() string { return "fake" }

// hit builds a search result for talk n with a descending score.
func hit(talkID, title, speaker, text string, score float32) *store.SearchResult {
	return &store.SearchResult{
		ID:      fmt.Sprintf("talk_%s_chunk_0", talkID),
		TalkID:  talkID,
		Title:   title,
		Speaker: speaker,
		Text:    text,
		Score:   score,
	}
}
