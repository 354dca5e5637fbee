package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kart-io/tedrag/internal/model"
	"github.com/kart-io/tedrag/pkg/utils/json"
)

type fakeService struct {
	answer *model.Answer
	err    error
	asked  string
}

func (f *fakeService) Answer(_ context.Context, question string) (*model.Answer, error) {
	f.asked = question
	if f.err != nil {
		return nil, f.err
	}
	return f.answer, nil
}

func (f *fakeService) Stats(context.Context) *model.Stats {
	return &model.Stats{ChunkSize: 1024, OverlapRatio: 0.2, TopK: 8}
}

func newTestEngine(svc *fakeService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	h := NewQAHandler(svc)
	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, ErrorResponse{Error: "Method not allowed"})
	})
	engine.POST("/prompt", h.Prompt)
	engine.GET("/stats", h.Stats)
	engine.GET("/metrics", h.Metrics)

	return engine
}

func doRequest(engine *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestPromptSuccess(t *testing.T) {
	svc := &fakeService{answer: &model.Answer{
		Response: "An answer.",
		Context:  []model.RetrievedChunk{{TalkID: "42", Title: "Talk", Text: "text", Score: 0.9}},
		AugmentedPrompt: model.AugmentedPrompt{
			System: "system text",
			User:   "user text",
		},
	}}
	engine := newTestEngine(svc)

	w := doRequest(engine, http.MethodPost, "/prompt", `{"question": "What is courage?"}`)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "What is courage?", svc.asked)

	var got map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "An answer.", got["response"])
	assert.Contains(t, got, "context")
	assert.Contains(t, got, "augmented_prompt")
}

func TestPromptInvalidJSON(t *testing.T) {
	engine := newTestEngine(&fakeService{})

	w := doRequest(engine, http.MethodPost, "/prompt", `{notjson`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid JSON body")
}

func TestPromptBlankQuestion(t *testing.T) {
	engine := newTestEngine(&fakeService{})

	for _, body := range []string{`{}`, `{"question": ""}`, `{"question": "   "}`} {
		w := doRequest(engine, http.MethodPost, "/prompt", body)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, w.Body.String(), "Missing required field: question")
	}
}

func TestPromptServiceError(t *testing.T) {
	engine := newTestEngine(&fakeService{err: errors.New("generation failed: gateway timeout")})

	w := doRequest(engine, http.MethodPost, "/prompt", `{"question": "anything"}`)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "gateway timeout")
}

func TestPromptMethodNotAllowed(t *testing.T) {
	engine := newTestEngine(&fakeService{})

	w := doRequest(engine, http.MethodGet, "/prompt", "")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestStats(t *testing.T) {
	engine := newTestEngine(&fakeService{})

	w := doRequest(engine, http.MethodGet, "/stats", "")

	require.Equal(t, http.StatusOK, w.Code)

	var got model.Stats
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, 1024, got.ChunkSize)
	assert.Equal(t, 0.2, got.OverlapRatio)
	assert.Equal(t, 8, got.TopK)
}

func TestStatsMethodNotAllowed(t *testing.T) {
	engine := newTestEngine(&fakeService{})

	w := doRequest(engine, http.MethodPost, "/stats", "{}")

	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	engine := newTestEngine(&fakeService{})

	w := doRequest(engine, http.MethodGet, "/metrics", "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "tedrag_questions_total")
}
