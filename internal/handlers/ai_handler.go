package handlers

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"agronorte-pos/internal/ai"
	"agronorte-pos/internal/pos"
)

// AIHandler wires the sales assistant to the POS session's history view.
type AIHandler struct {
	session *pos.Session
	logger  *zap.Logger
}

// NewAIHandler creates the assistant handler.
func NewAIHandler(session *pos.Session, logger *zap.Logger) *AIHandler {
	return &AIHandler{session: session, logger: logger}
}

// AskRequest is the operator's free-form question.
type AskRequest struct {
	Message string `json:"message" binding:"required"`
}

// Ask forwards a question about the sales history to the assistant.
// POST /api/ask
func (h *AIHandler) Ask(c *gin.Context) {
	var req AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
		return
	}

	apiKey := os.Getenv("GEMINI_API_KEY")
	if apiKey == "" {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Assistant is not configured on this terminal"})
		return
	}

	response, err := ai.RunAgent(req.Message, apiKey, h.session)
	if err != nil {
		h.logger.Error("assistant request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Assistant request failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reply": response})
}
