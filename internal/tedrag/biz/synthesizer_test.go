package biz

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/tedrag/internal/model"
)

func TestSynthesizeExactThreeRefusalBoundary(t *testing.T) {
	chat := &fakeChat{response: "should not be called"}
	s := NewSynthesizer(chat)

	// Two distinct talks cannot satisfy the exact-three guarantee.
	chunks := []model.RetrievedChunk{
		chunk("a", "Talk A", 0.9),
		chunk("b", "Talk B", 0.8),
	}

	answer, err := s.Synthesize(context.Background(), QuestionExactThreeTitles, "list exactly 3 talk titles", chunks)
	require.NoError(t, err)

	assert.Equal(t, RefusalAnswer, answer.Response)
	assert.Zero(t, chat.calls)
	assert.Len(t, answer.Context, 2)
	assert.NotEmpty(t, answer.AugmentedPrompt.User)
}

func TestSynthesizeExactThreeDeterministic(t *testing.T) {
	chat := &fakeChat{response: "should not be called"}
	s := NewSynthesizer(chat)

	chunks := []model.RetrievedChunk{
		chunk("a", "Talk A", 0.9),
		chunk("b", "Talk B", 0.8),
		chunk("c", "Talk C", 0.7),
	}

	answer, err := s.Synthesize(context.Background(), QuestionExactThreeTitles, "list exactly 3 talk titles", chunks)
	require.NoError(t, err)

	assert.Equal(t, "Talk A\nTalk B\nTalk C", answer.Response)
	assert.Zero(t, chat.calls)
}

func TestSynthesizeEmptyContextRefusal(t *testing.T) {
	for _, qt := range []QuestionType{QuestionPreciseFact, QuestionSummary, QuestionRecommendation, QuestionGeneric} {
		chat := &fakeChat{response: "should not be called"}
		s := NewSynthesizer(chat)

		answer, err := s.Synthesize(context.Background(), qt, "anything", nil)
		require.NoError(t, err)

		assert.Equal(t, RefusalAnswer, answer.Response)
		assert.Zero(t, chat.calls)
		assert.NotNil(t, answer.Context)
		assert.Empty(t, answer.Context)
	}
}

func TestSynthesizeDelegatesToChat(t *testing.T) {
	chat := &fakeChat{response: "She talks about the octopus nervous system."}
	s := NewSynthesizer(chat)

	chunks := []model.RetrievedChunk{
		{TalkID: "42", Title: "Octopus Minds", Speaker: "Jane Doe", Text: "the transcript text", Score: 0.91},
	}

	answer, err := s.Synthesize(context.Background(), QuestionSummary, "summarize the octopus talk", chunks)
	require.NoError(t, err)

	assert.Equal(t, 1, chat.calls)
	assert.Equal(t, chat.response, answer.Response)
	assert.Equal(t, answerSystemPrompt, chat.lastSystem)
	assert.Equal(t, answer.AugmentedPrompt.User, chat.lastPrompt)
}

func TestSynthesizeGenerationErrorPropagates(t *testing.T) {
	chat := &fakeChat{err: errors.New("gateway timeout")}
	s := NewSynthesizer(chat)

	chunks := []model.RetrievedChunk{chunk("a", "Talk A", 0.9)}

	_, err := s.Synthesize(context.Background(), QuestionGeneric, "anything", chunks)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gateway timeout")
	assert.NotEqual(t, RefusalAnswer, err.Error())
}

func TestBuildUserPromptFormat(t *testing.T) {
	chunks := []model.RetrievedChunk{
		{TalkID: "42", Title: "Octopus Minds", Speaker: "Jane Doe", Text: "chunk one text", Score: 0.5},
		{TalkID: "7", Title: "Deep Sea", Text: "chunk two text", Score: 0.25},
	}

	prompt := buildUserPrompt("tell me about octopuses", chunks)

	assert.True(t, strings.HasPrefix(prompt, "Question: tell me about octopuses\n"))
	assert.Contains(t, prompt, "TED dataset context (metadata + transcript chunks):")
	assert.Contains(t, prompt, `[#1] talk_id=42 | title="Octopus Minds" | speaker_1="Jane Doe" | score=0.5`)
	// Speaker is omitted when absent.
	assert.Contains(t, prompt, `[#2] talk_id=7 | title="Deep Sea" | score=0.25`)
	assert.Contains(t, prompt, "chunk:\nchunk one text")
	assert.Contains(t, prompt, "Rules:")
	assert.Contains(t, prompt, "respond exactly: “I don’t know based on the provided TED data.”")
}

func TestBuildUserPromptEmptyContext(t *testing.T) {
	prompt := buildUserPrompt("anything", nil)
	assert.Contains(t, prompt, "(no relevant context retrieved)")
}

func TestRefusalSentenceVerbatim(t *testing.T) {
	// The apostrophe is U+2019, not ASCII. Consumers match this exactly.
	assert.Equal(t, "I don’t know based on the provided TED data.", RefusalAnswer)
}
