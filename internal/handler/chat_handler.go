package handler

import (
	"net/http"

	"edushare/config"
	"edushare/internal/middleware"
	"edushare/internal/service"
	"edushare/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	chatSvc *service.ChatService
	cfg     *config.ChatConfig
}

func NewChatHandler(chatSvc *service.ChatService, cfg *config.ChatConfig) *ChatHandler {
	return &ChatHandler{chatSvc: chatSvc, cfg: cfg}
}

// GetOrCreate returns the caller's conversation with participantId, creating it on first contact.
func (h *ChatHandler) GetOrCreate(c *gin.Context) {
	var req struct {
		ParticipantID string `json:"participantId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidInput("participantId is required"))
		return
	}
	conv, err := h.chatSvc.GetOrCreate(c.Request.Context(), middleware.GetUserID(c), req.ParticipantID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *ChatHandler) List(c *gin.Context) {
	list, err := h.chatSvc.ListForUser(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"chats": list})
}

func (h *ChatHandler) Get(c *gin.Context) {
	conv, err := h.chatSvc.Get(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

func (h *ChatHandler) Messages(c *gin.Context) {
	page, limit, err := pageParams(c, h.cfg.DefaultPageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	out, err := h.chatSvc.ListMessages(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *ChatHandler) Send(c *gin.Context) {
	var req struct {
		Content string `json:"content"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidInput("invalid body"))
		return
	}
	msg, err := h.chatSvc.SendMessage(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), req.Content)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *ChatHandler) MarkRead(c *gin.Context) {
	n, err := h.chatSvc.MarkRead(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *ChatHandler) Delete(c *gin.Context) {
	if err := h.chatSvc.SoftDelete(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *ChatHandler) UnreadCount(c *gin.Context) {
	n, err := h.chatSvc.UnreadCount(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}
