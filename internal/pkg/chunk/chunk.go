// Package chunk splits transcripts into overlapping fixed-size text windows.
package chunk

import (
	"regexp"
	"strings"
)

// approxCharsPerToken converts the token budget into a character budget.
// The 4:1 ratio and the 200-character floor match the values the index was
// built with; changing them invalidates every cached embedding key.
const approxCharsPerToken = 4

// minWindowChars is the hard lower bound on the window size.
const minWindowChars = 200

// maxOverlapRatio caps the overlap so the sliding step stays positive.
const maxOverlapRatio = 0.3

var whitespaceRE = regexp.MustCompile(`\s+`)

// Params are the chunking parameters in effect for one ingestion run.
type Params struct {
	// ChunkSizeTokens is the approximate token budget per chunk.
	ChunkSizeTokens int
	// OverlapRatio is the fraction of the window shared between
	// consecutive chunks, clamped to [0, 0.3].
	OverlapRatio float64
}

// Split cuts text into overlapping windows. Whitespace runs are collapsed
// to single spaces before splitting. Empty or whitespace-only input yields
// nil; no returned chunk is empty after trimming. Out-of-range parameters
// are clamped, not rejected.
func Split(text string, p Params) []string {
	windowChars := p.ChunkSizeTokens * approxCharsPerToken
	if windowChars < minWindowChars {
		windowChars = minWindowChars
	}

	ratio := p.OverlapRatio
	if ratio < 0 {
		ratio = 0
	}
	if ratio > maxOverlapRatio {
		ratio = maxOverlapRatio
	}
	overlapChars := int(float64(windowChars) * ratio)

	step := windowChars - overlapChars
	if step < 1 {
		step = 1
	}

	cleaned := strings.TrimSpace(whitespaceRE.ReplaceAllString(text, " "))
	if cleaned == "" {
		return nil
	}

	runes := []rune(cleaned)
	var out []string
	for start := 0; start < len(runes); start += step {
		end := start + windowChars
		if end > len(runes) {
			end = len(runes)
		}
		piece := strings.TrimSpace(string(runes[start:end]))
		if piece != "" {
			out = append(out, piece)
		}
		if end >= len(runes) {
			break
		}
	}
	return out
}
