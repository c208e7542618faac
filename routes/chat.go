package routes

import (
	"errors"
	"net/http"

	"rag-chatbot-platform/internal/config"
	"rag-chatbot-platform/internal/logger"
	"rag-chatbot-platform/middleware"
	"rag-chatbot-platform/models"
	"rag-chatbot-platform/services"
	"rag-chatbot-platform/utils"

	"github.com/gin-gonic/gin"
)

const defaultTemperature = 0.7

// SetupChatRoutes registers the question answering endpoint.
func SetupChatRoutes(router *gin.Engine, cfg *config.Config, rag *services.RAGService) {
	router.POST("/chat", func(c *gin.Context) {
		var req models.ChatRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondWithBadRequest(c, "Invalid request data", gin.H{"error": err.Error()})
			return
		}

		topK := req.TopK
		if topK <= 0 {
			topK = cfg.TopKResults
		}
		temperature := defaultTemperature
		if req.Temperature != nil {
			temperature = *req.Temperature
		}

		logger.Info("Chat request",
			"request_id", middleware.GetRequestID(c),
			"top_k", topK,
			"temperature", temperature,
			"evaluate", req.Evaluate)

		result, err := rag.Query(c.Request.Context(), req.Message, topK, temperature, req.Evaluate)
		if err != nil {
			respondPipelineError(c, err)
			return
		}

		c.JSON(http.StatusOK, models.ChatResponse{
			Response:   result.Answer,
			Sources:    result.Sources,
			Evaluation: result.Evaluation,
		})
	})
}

// respondPipelineError maps pipeline sentinel errors to HTTP statuses.
func respondPipelineError(c *gin.Context, err error) {
	logger.Error("Pipeline request failed",
		"request_id", middleware.GetRequestID(c),
		"error", err)

	switch {
	case errors.Is(err, services.ErrConfiguration):
		utils.RespondWithBadRequest(c, err.Error(), nil)
	case errors.Is(err, services.ErrUpstream):
		utils.RespondWithUpstreamError(c, "The language model service is currently unavailable", gin.H{"error": err.Error()})
	default:
		utils.RespondWithInternalError(c, "Internal server error", gin.H{"error": err.Error()})
	}
}
