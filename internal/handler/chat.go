package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"itstore-assistant/internal/model"
	"itstore-assistant/internal/service"
)

// ChatHandler handles conversational search requests
type ChatHandler struct {
	chatService *service.ChatService
}

// NewChatHandler creates a new chat handler
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	var req model.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request: " + err.Error()})
		return
	}

	// The pipeline degrades internally; a chat request never errors.
	response := h.chatService.Chat(c.Request.Context(), req.Message)
	c.JSON(http.StatusOK, response)
}
