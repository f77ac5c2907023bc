package handler

import (
	"net/http"

	"edushare/internal/middleware"
	"edushare/internal/service"
	"edushare/pkg/apperror"

	"github.com/gin-gonic/gin"
)

type FeedbackHandler struct {
	feedbackSvc *service.FeedbackService
}

func NewFeedbackHandler(feedbackSvc *service.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackSvc: feedbackSvc}
}

// Submit rates a resource 1..5. Re-submitting replaces the caller's earlier rating.
func (h *FeedbackHandler) Submit(c *gin.Context) {
	var req struct {
		Rating  int    `json:"rating" binding:"required,min=1,max=5"`
		Comment string `json:"comment" binding:"max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperror.InvalidInput("rating must be between 1 and 5"))
		return
	}
	res, err := h.feedbackSvc.Submit(c.Request.Context(), c.Param("id"), middleware.GetUserID(c), req.Rating, req.Comment)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"resourceId": res.ID, "ratingAverage": res.RatingAverage, "ratingCount": res.RatingCount})
}
