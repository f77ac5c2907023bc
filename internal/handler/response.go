package handler

import (
	"log"
	"net/http"
	"strconv"

	"edushare/pkg/apperror"

	"github.com/gin-gonic/gin"
)

// respondError renders err as {"error", "code"} with the status of its code.
// Internal causes are logged, never returned.
func respondError(c *gin.Context, err error) {
	code := apperror.CodeOf(err)
	status := apperror.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		log.Printf("[http] %s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.JSON(status, gin.H{"error": apperror.Message(err), "code": code})
}

// queryInt reads an integer query parameter, falling back to def when absent.
func queryInt(c *gin.Context, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, apperror.InvalidInput(key + " must be an integer")
	}
	return n, nil
}

func pageParams(c *gin.Context, defaultLimit int) (page, limit int, err error) {
	if page, err = queryInt(c, "page", 1); err != nil {
		return 0, 0, err
	}
	if limit, err = queryInt(c, "limit", defaultLimit); err != nil {
		return 0, 0, err
	}
	return page, limit, nil
}
