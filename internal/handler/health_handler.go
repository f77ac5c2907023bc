package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionCounter reports live realtime sessions.
type SessionCounter interface {
	SessionCount() int
}

func Health(sessions SessionCounter) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "connections": sessions.SessionCount()})
	}
}
