package http

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func setupRateLimitedRouter(rps float64, burst int) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.POST("/auth/login", RateLimitMiddleware(rps, burst, slog.Default()), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func TestRateLimitMiddleware(t *testing.T) {
	t.Run("Success_AllowsWithinBurst", func(t *testing.T) {
		router := setupRateLimitedRouter(1, 3)

		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			assert.Equal(t, http.StatusOK, w.Code)
		}
	})

	t.Run("Error_RejectsBeyondBurst", func(t *testing.T) {
		router := setupRateLimitedRouter(0.001, 1)

		first := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		first.RemoteAddr = "10.0.0.2:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, first)
		assert.Equal(t, http.StatusOK, w.Code)

		second := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		second.RemoteAddr = "10.0.0.2:1234"
		w = httptest.NewRecorder()
		router.ServeHTTP(w, second)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.NotEmpty(t, w.Header().Get("Retry-After"))
	})

	t.Run("Success_LimitsArePerIP", func(t *testing.T) {
		router := setupRateLimitedRouter(0.001, 1)

		first := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		first.RemoteAddr = "10.0.0.3:1234"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, first)
		assert.Equal(t, http.StatusOK, w.Code)

		other := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		other.RemoteAddr = "10.0.0.4:1234"
		w = httptest.NewRecorder()
		router.ServeHTTP(w, other)

		assert.Equal(t, http.StatusOK, w.Code)
	})
}
