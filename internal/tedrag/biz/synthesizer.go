package biz

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/kart-io/tedrag/internal/model"
	"github.com/kart-io/tedrag/internal/tedrag/metrics"
	"github.com/kart-io/tedrag/pkg/llm"
)

// RefusalAnswer is returned verbatim whenever grounding is impossible.
// Consumers pattern-match on it, so it must never be reworded.
const RefusalAnswer = "I don’t know based on the provided TED data."

// answerSystemPrompt constrains the chat model to the retrieved context.
const answerSystemPrompt = `You are a TED Talk assistant that answers questions strictly and
only based on the TED dataset context provided to you (metadata
and transcript passages). You must not use any external
knowledge, the open internet, or information that is not explicitly
contained in the retrieved context. If the answer cannot be
determined from the provided context, respond: “I don’t know
based on the provided TED data.” Always explain your answer
using the given context, quoting or paraphrasing the relevant
transcript or metadata when helpful.`

// Synthesizer turns a question type and its selected context into the
// final answer, either deterministically or via the chat model.
type Synthesizer struct {
	chat    llm.ChatProvider
	metrics *metrics.Metrics
}

// NewSynthesizer creates an answer synthesizer.
func NewSynthesizer(chat llm.ChatProvider) *Synthesizer {
	return &Synthesizer{
		chat:    chat,
		metrics: metrics.Get(),
	}
}

// Synthesize produces the answer for one question. The augmented prompt is
// always attached to the result, including refusals, so callers can see
// what would have been sent to the model.
//
// Generation failures propagate as errors; a refusal is a successful
// answer, not an error.
func (s *Synthesizer) Synthesize(ctx context.Context, questionType QuestionType, question string, chunks []model.RetrievedChunk) (*model.Answer, error) {
	prompt := model.AugmentedPrompt{
		System: answerSystemPrompt,
		User:   buildUserPrompt(question, chunks),
	}

	answer := &model.Answer{
		Context:         chunks,
		AugmentedPrompt: prompt,
	}
	if answer.Context == nil {
		answer.Context = []model.RetrievedChunk{}
	}

	if questionType == QuestionExactThreeTitles {
		// The exact-three guarantee cannot be met with fewer than three
		// distinct talks; partial lists are disallowed.
		if len(chunks) < distinctTalkLimit {
			s.metrics.RecordRefusal()
			answer.Response = RefusalAnswer
			return answer, nil
		}
		titles := make([]string, len(chunks))
		for i, c := range chunks {
			titles[i] = c.Title
		}
		s.metrics.RecordDeterministicAnswer()
		answer.Response = strings.Join(titles, "\n")
		return answer, nil
	}

	if len(chunks) == 0 {
		s.metrics.RecordRefusal()
		answer.Response = RefusalAnswer
		return answer, nil
	}

	response, err := s.chat.Generate(ctx, prompt.User, prompt.System)
	s.metrics.RecordGeneration(err)
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	answer.Response = response
	return answer, nil
}

// buildUserPrompt serializes the question, the numbered context items, and
// the formatting rules into the user message.
func buildUserPrompt(question string, chunks []model.RetrievedChunk) string {
	var contextBlock string
	if len(chunks) == 0 {
		contextBlock = "(no relevant context retrieved)"
	} else {
		items := make([]string, len(chunks))
		for i, c := range chunks {
			header := fmt.Sprintf("[#%d] talk_id=%s | title=%q", i+1, c.TalkID, c.Title)
			if c.Speaker != "" {
				header += fmt.Sprintf(" | speaker_1=%q", c.Speaker)
			}
			header += " | score=" + strconv.FormatFloat(float64(c.Score), 'g', -1, 32)
			items[i] = header + "\nchunk:\n" + c.Text
		}
		contextBlock = strings.Join(items, "\n\n")
	}

	return strings.Join([]string{
		"Question: " + question,
		"",
		"TED dataset context (metadata + transcript chunks):",
		contextBlock,
		"",
		"Rules:",
		"- Only use the provided TED dataset context.",
		"- If the answer cannot be determined from the provided context, respond exactly: “I don’t know based on the provided TED data.”",
		"- If asked for a list of exactly 3 talk titles, output exactly 3 distinct titles (no extra text).",
	}, "\n")
}
