package handler

import (
	"errors"
	"net/http"

	"edushare/internal/middleware"
	"edushare/internal/repository"
	"edushare/pkg/apperror"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MeHandler struct {
	userRepo *repository.UserRepository
}

func NewMeHandler(userRepo *repository.UserRepository) *MeHandler {
	return &MeHandler{userRepo: userRepo}
}

// RegisterFCMToken saves the device token notifications are mirrored to.
func (h *MeHandler) RegisterFCMToken(c *gin.Context) {
	var req struct {
		Token string `json:"token" binding:"required,max=512"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidInput("token is required"))
		return
	}
	ctx := c.Request.Context()
	u, err := h.userRepo.GetByID(ctx, middleware.GetUserID(c))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondError(c, apperror.NotFound("user not found"))
		return
	}
	if err != nil {
		respondError(c, apperror.Unavailable("lookup failed", err))
		return
	}
	if _, err := h.userRepo.UpdateFCMToken(ctx, u.ID, req.Token); err != nil {
		respondError(c, apperror.Unavailable("update failed", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
