package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"edushare/config"
	"edushare/internal/auth"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testJWT() *config.JWTConfig {
	return &config.JWTConfig{AccessSecret: "test-secret", AccessExpiry: time.Hour, Issuer: "test"}
}

func newRouter(cfg *config.JWTConfig, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers := append([]gin.HandlerFunc{AuthRequired(cfg)}, extra...)
	handlers = append(handlers, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"id": GetUserID(c), "name": GetUserName(c), "role": GetRole(c)})
	})
	r.GET("/me", handlers...)
	return r
}

func do(r http.Handler, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthRequired(t *testing.T) {
	cfg := testJWT()
	r := newRouter(cfg)

	w := do(r, "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"missing authorization header","code":"UNAUTHENTICATED"}`, w.Body.String())
	assert.Equal(t, http.StatusUnauthorized, do(r, "not-a-jwt").Code)

	tok, err := auth.GenerateAccessToken(cfg, "u1", "Ann", "student")
	require.NoError(t, err)
	w = do(r, tok)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"id":"u1","name":"Ann","role":"student"}`, w.Body.String())
}

func TestAuthRequiredRejectsBadScheme(t *testing.T) {
	r := newRouter(testJWT())
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Basic abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAdminRequired(t *testing.T) {
	cfg := testJWT()
	r := newRouter(cfg, AdminRequired())

	student, err := auth.GenerateAccessToken(cfg, "u1", "Ann", "student")
	require.NoError(t, err)
	admin, err := auth.GenerateAccessToken(cfg, "a1", "Root", "admin")
	require.NoError(t, err)

	w := do(r, student)
	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), `"code":"FORBIDDEN"`)
	assert.Equal(t, http.StatusOK, do(r, admin).Code)
}

func TestRateLimiterWindow(t *testing.T) {
	l := NewInMemoryRateLimiter(2, time.Minute)
	defer l.Stop()
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	l.now = func() time.Time { return now }

	assert.True(t, l.Allow("a"))
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))

	now = now.Add(61 * time.Second)
	assert.True(t, l.Allow("a"))
}

func TestRateLimitKeysByUser(t *testing.T) {
	cfg := testJWT()
	l := NewInMemoryRateLimiter(1, time.Minute)
	defer l.Stop()
	r := newRouter(cfg, RateLimit(l))

	ann, err := auth.GenerateAccessToken(cfg, "u1", "Ann", "student")
	require.NoError(t, err)
	bob, err := auth.GenerateAccessToken(cfg, "u2", "Bob", "student")
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, do(r, ann).Code)
	w := do(r, ann)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.JSONEq(t, `{"error":"rate limit exceeded","code":"RATE_LIMITED"}`, w.Body.String())
	assert.Equal(t, http.StatusOK, do(r, bob).Code)
}

func TestRateLimiterStopEndsCleanup(t *testing.T) {
	l := NewInMemoryRateLimiter(1, time.Minute)
	l.Stop()
	select {
	case <-l.done:
	default:
		t.Fatal("cleanup goroutine still running after Stop")
	}
	l.Stop()
}
