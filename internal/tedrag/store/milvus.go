package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/milvus-io/milvus/client/v2/entity"

	"github.com/kart-io/tedrag/pkg/component/milvus"
)

// MilvusStore implements VectorStore on top of Milvus. Namespaces map to
// a scalar field on a single collection, filtered at search time.
type MilvusStore struct {
	client *milvus.Client
}

// NewMilvusStore creates a Milvus-backed store.
func NewMilvusStore(client *milvus.Client) *MilvusStore {
	return &MilvusStore{client: client}
}

// EnsureCollection creates the chunk collection if needed and loads it.
func (s *MilvusStore) EnsureCollection(ctx context.Context, config *CollectionConfig) error {
	schema := &milvus.CollectionSchema{
		Name:        config.Name,
		Description: config.Description,
		Dimension:   config.Dimension,
		MetaFields: []milvus.MetaField{
			{Name: "talk_id", DataType: entity.FieldTypeVarChar, MaxLen: 64},
			{Name: "title", DataType: entity.FieldTypeVarChar, MaxLen: 512},
			{Name: "speaker", DataType: entity.FieldTypeVarChar, MaxLen: 255},
			{Name: "chunk_index", DataType: entity.FieldTypeInt64},
			{Name: "chunk", DataType: entity.FieldTypeVarChar, MaxLen: 65535},
			{Name: "namespace", DataType: entity.FieldTypeVarChar, MaxLen: 64},
		},
	}
	if err := s.client.CreateCollection(ctx, schema); err != nil {
		return err
	}
	return s.client.LoadCollection(ctx, config.Name)
}

// Upsert writes a batch of chunks into a namespace.
func (s *MilvusStore) Upsert(ctx context.Context, collection, namespace string, chunks []*Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	metadata := map[string][]any{
		"talk_id":     make([]any, len(chunks)),
		"title":       make([]any, len(chunks)),
		"speaker":     make([]any, len(chunks)),
		"chunk_index": make([]any, len(chunks)),
		"chunk":       make([]any, len(chunks)),
		"namespace":   make([]any, len(chunks)),
	}

	for i, chunk := range chunks {
		ids[i] = chunk.ID
		embeddings[i] = chunk.Embedding
		metadata["talk_id"][i] = chunk.TalkID
		metadata["title"][i] = chunk.Title
		metadata["speaker"][i] = chunk.Speaker
		metadata["chunk_index"][i] = int64(chunk.ChunkIndex)
		metadata["chunk"][i] = chunk.Text
		metadata["namespace"][i] = namespace
	}

	data := &milvus.UpsertData{
		IDs:        ids,
		Embeddings: embeddings,
		Metadata:   metadata,
	}

	if err := s.client.Upsert(ctx, collection, data); err != nil {
		return fmt.Errorf("failed to upsert into milvus: %w", err)
	}

	return nil
}

// Search runs a similarity search restricted to one namespace.
func (s *MilvusStore) Search(ctx context.Context, collection, namespace string, embedding []float32, topK int) ([]*SearchResult, error) {
	outputFields := []string{"talk_id", "title", "speaker", "chunk_index", "chunk"}
	filter := namespaceFilter(namespace)

	results, err := s.client.Search(ctx, collection, embedding, topK, filter, outputFields)
	if err != nil {
		return nil, fmt.Errorf("failed to search milvus: %w", err)
	}

	searchResults := make([]*SearchResult, 0, len(results))
	for _, r := range results {
		sr := &SearchResult{
			ID:    r.ID,
			Score: r.Score,
		}
		if v, ok := r.Metadata["talk_id"].(string); ok {
			sr.TalkID = v
		}
		if v, ok := r.Metadata["title"].(string); ok {
			sr.Title = v
		}
		if v, ok := r.Metadata["speaker"].(string); ok {
			sr.Speaker = v
		}
		if v, ok := r.Metadata["chunk_index"].(int64); ok {
			sr.ChunkIndex = int(v)
		}
		if v, ok := r.Metadata["chunk"].(string); ok {
			sr.Text = v
		}
		searchResults = append(searchResults, sr)
	}

	return searchResults, nil
}

// GetStats returns the number of stored records.
func (s *MilvusStore) GetStats(ctx context.Context, collection string) (int64, error) {
	return s.client.GetCollectionStats(ctx, collection)
}

// Close closes the Milvus connection.
func (s *MilvusStore) Close(ctx context.Context) error {
	return s.client.Close(ctx)
}

// namespaceFilter builds the Milvus filter expression for one namespace.
func namespaceFilter(namespace string) string {
	escaped := strings.ReplaceAll(namespace, `"`, `\"`)
	return fmt.Sprintf(`namespace == "%s"`, escaped)
}

var _ VectorStore = (*MilvusStore)(nil)
