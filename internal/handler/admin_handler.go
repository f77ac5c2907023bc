package handler

import (
	"log"
	"net/http"

	"edushare/internal/middleware"
	"edushare/internal/service"
	"edushare/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	notifSvc *service.NotificationService
}

func NewAdminHandler(notifSvc *service.NotificationService) *AdminHandler {
	return &AdminHandler{notifSvc: notifSvc}
}

// Broadcast sends a live system_notification to every connected session.
func (h *AdminHandler) Broadcast(c *gin.Context) {
	var req struct {
		Title string `json:"title" binding:"required"`
		Body  string `json:"body" binding:"required"`
		Link  string `json:"link"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidInput("title and body are required"))
		return
	}
	n, reached, err := h.notifSvc.BroadcastSystem(req.Title, req.Body, req.Link)
	if err != nil {
		respondError(c, err)
		return
	}
	log.Printf("[admin] %s broadcast %q to %d sessions", middleware.GetUserID(c), n.Title, reached)
	c.JSON(http.StatusOK, gin.H{"notification": n, "delivered": reached})
}
