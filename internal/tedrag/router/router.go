// Package router wires the QA service routes.
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kart-io/logger"

	"github.com/kart-io/tedrag/internal/tedrag/handler"
)

// Register attaches the QA routes to the engine. Method gating is handled
// by gin: any route hit with the wrong method yields a 405.
func Register(engine *gin.Engine, qaHandler *handler.QAHandler) {
	logger.Info("Registering QA routes...")

	engine.HandleMethodNotAllowed = true
	engine.NoMethod(func(c *gin.Context) {
		c.JSON(http.StatusMethodNotAllowed, handler.ErrorResponse{Error: "Method not allowed"})
	})

	engine.POST("/prompt", qaHandler.Prompt)
	engine.GET("/stats", qaHandler.Stats)
	engine.GET("/metrics", qaHandler.Metrics)
	engine.GET("/healthz", qaHandler.Healthz)

	logger.Info("QA routes registered")
}
