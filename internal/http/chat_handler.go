package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"science-chat/internal/service"
)

// ChatHandler mantiene dependencias para endpoints de chat e historial.
type ChatHandler struct {
	logger   *zap.Logger
	chatServ *service.ChatService
}

// NewChatHandler crea una instancia de ChatHandler con dependencias necesarias.
func NewChatHandler(logger *zap.Logger, chatServ *service.ChatService) *ChatHandler {
	return &ChatHandler{
		logger:   logger,
		chatServ: chatServ,
	}
}

type chatEntry struct {
	Role    string `json:"role"`
	Message string `json:"message"`
}

// PostChat maneja POST /chats.
func (h *ChatHandler) PostChat(c *gin.Context) {
	var req struct {
		Prompt string `json:"prompt"`
		UserID string `json:"userId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("invalid chat request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	reply, err := h.chatServ.HandlePrompt(c.Request.Context(), req.Prompt, req.UserID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRequest):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		case errors.Is(err, service.ErrRateLimited):
			c.JSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
		default:
			h.logger.Error("chat failed", zap.Error(err), zap.String("user_id", req.UserID))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"response": reply})
}

// GetHistory maneja GET /chat-history/:userId.
func (h *ChatHandler) GetHistory(c *gin.Context) {
	userID := c.Param("userId")
	turns, err := h.chatServ.History(c.Request.Context(), userID)
	if err != nil {
		h.logger.Error("fetch chat history failed", zap.Error(err), zap.String("user_id", userID))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
		return
	}

	chats := make([]chatEntry, 0, len(turns))
	for _, t := range turns {
		chats = append(chats, chatEntry{Role: string(t.Role), Message: t.Message})
	}
	c.JSON(http.StatusOK, gin.H{"chats": chats})
}
