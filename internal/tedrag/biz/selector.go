package biz

import "github.com/kart-io/tedrag/internal/model"

// Selection policies are pure functions over a ranked candidate list. The
// list arrives in descending relevance order and is never re-sorted here.

// PickTopDistinctTalks keeps the first chunk of each distinct talk, in
// original order, stopping at limit kept items.
func PickTopDistinctTalks(chunks []model.RetrievedChunk, limit int) []model.RetrievedChunk {
	out := make([]model.RetrievedChunk, 0, limit)
	seen := make(map[string]struct{}, limit)
	for _, c := range chunks {
		if _, ok := seen[c.TalkID]; ok {
			continue
		}
		seen[c.TalkID] = struct{}{}
		out = append(out, c)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// PickTopChunksFromSingleTalk keeps only chunks from one talk, in original
// order, truncated to limit.
func PickTopChunksFromSingleTalk(chunks []model.RetrievedChunk, talkID string, limit int) []model.RetrievedChunk {
	out := make([]model.RetrievedChunk, 0, limit)
	for _, c := range chunks {
		if c.TalkID != talkID {
			continue
		}
		out = append(out, c)
		if len(out) >= limit {
			break
		}
	}
	return out
}

// BestTalkID returns the talk id of the highest-ranked candidate, or ""
// when there are no candidates.
func BestTalkID(chunks []model.RetrievedChunk) string {
	if len(chunks) == 0 {
		return ""
	}
	return chunks[0].TalkID
}

// BoundContext truncates the ranked list to at most limit items with no
// deduplication.
func BoundContext(chunks []model.RetrievedChunk, limit int) []model.RetrievedChunk {
	if len(chunks) <= limit {
		return chunks
	}
	return chunks[:limit]
}
