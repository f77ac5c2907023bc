package handler

import (
	"net/http"
	"strconv"

	"edushare/config"
	"edushare/internal/middleware"
	"edushare/internal/service"
	"edushare/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	notifSvc *service.NotificationService
	cfg      *config.NotificationConfig
}

func NewNotificationHandler(notifSvc *service.NotificationService, cfg *config.NotificationConfig) *NotificationHandler {
	return &NotificationHandler{notifSvc: notifSvc, cfg: cfg}
}

func (h *NotificationHandler) List(c *gin.Context) {
	page, limit, err := pageParams(c, h.cfg.DefaultPageSize)
	if err != nil {
		respondError(c, err)
		return
	}
	unreadOnly := false
	if raw := c.Query("unreadOnly"); raw != "" {
		if unreadOnly, err = strconv.ParseBool(raw); err != nil {
			respondError(c, apperror.InvalidInput("unreadOnly must be a boolean"))
			return
		}
	}
	out, err := h.notifSvc.List(c.Request.Context(), middleware.GetUserID(c), page, limit, unreadOnly)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	n, err := h.notifSvc.UnreadCount(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": n})
}

func (h *NotificationHandler) MarkRead(c *gin.Context) {
	n, err := h.notifSvc.MarkRead(c.Request.Context(), c.Param("id"), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.notifSvc.MarkAllRead(c.Request.Context(), middleware.GetUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updated": n})
}

func (h *NotificationHandler) Delete(c *gin.Context) {
	if err := h.notifSvc.Delete(c.Request.Context(), c.Param("id"), middleware.GetUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
