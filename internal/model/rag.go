// Package model defines shared data types for the TED RAG service.
package model

// RetrievedChunk is one scored transcript passage returned by the vector
// store. Lists of RetrievedChunk are always in descending score order; the
// selection logic relies on that order and never re-sorts.
type RetrievedChunk struct {
	TalkID  string  `json:"talk_id"`
	Title   string  `json:"title"`
	Speaker string  `json:"speaker_1,omitempty"`
	Text    string  `json:"chunk"`
	Score   float32 `json:"score"`
}

// AugmentedPrompt is the system/user prompt pair sent to the chat model.
// It is constructed per request and returned to the caller for debugging.
type AugmentedPrompt struct {
	System string `json:"system"`
	User   string `json:"user"`
}

// Answer is the final outcome of one /prompt request.
type Answer struct {
	Response        string           `json:"response"`
	Context         []RetrievedChunk `json:"context"`
	AugmentedPrompt AugmentedPrompt  `json:"augmented_prompt"`
}

// Stats is the published retrieval configuration returned by GET /stats.
type Stats struct {
	ChunkSize    int     `json:"chunk_size"`
	OverlapRatio float64 `json:"overlap_ratio"`
	TopK         int     `json:"top_k"`
}
