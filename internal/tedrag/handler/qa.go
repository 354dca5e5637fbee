// Package handler provides the HTTP handlers for the QA service.
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/kart-io/tedrag/internal/tedrag/biz"
	"github.com/kart-io/tedrag/internal/tedrag/metrics"
)

// answerTimeout bounds one question end to end, including retrieval and
// generation.
const answerTimeout = 60 * time.Second

// QAHandler handles the QA HTTP endpoints.
type QAHandler struct {
	service biz.Service
}

// NewQAHandler creates a QAHandler.
func NewQAHandler(service biz.Service) *QAHandler {
	return &QAHandler{service: service}
}

// ErrorResponse is the error envelope for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
}

// PromptRequest is the POST /prompt request body.
type PromptRequest struct {
	Question string `json:"question"`
}

// Prompt answers one question. Invalid JSON or a blank question is a 400;
// upstream collaborator failures surface as 500 with the cause attached.
func (h *QAHandler) Prompt(c *gin.Context) {
	var req PromptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid JSON body"})
		return
	}

	question := strings.TrimSpace(req.Question)
	if question == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Missing required field: question"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), answerTimeout)
	defer cancel()

	answer, err := h.service.Answer(ctx, question)
	if err != nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	c.JSON(http.StatusOK, answer)
}

// Stats publishes the active retrieval configuration.
func (h *QAHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats(c.Request.Context()))
}

// Metrics renders the service counters in Prometheus text format.
func (h *QAHandler) Metrics(c *gin.Context) {
	c.String(http.StatusOK, metrics.Get().Export("tedrag"))
}

// Healthz is the liveness probe.
func (h *QAHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
