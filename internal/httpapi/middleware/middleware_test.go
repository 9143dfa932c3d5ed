package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)

	var seen string
	r := gin.New()
	r.Use(RequestID(zap.NewNop()))
	r.GET("/ping", func(c *gin.Context) {
		seen = GetRequestID(c.Request.Context())
		c.Status(http.StatusNoContent)
	})

	t.Run("generates id when absent", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		got := w.Header().Get("X-Request-Id")
		require.NotEmpty(t, got)
		assert.Equal(t, got, seen, "handler must observe the same id")
	})

	t.Run("echoes provided id", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.Header.Set("X-Request-Id", "abc-123")
		r.ServeHTTP(w, req)

		assert.Equal(t, "abc-123", w.Header().Get("X-Request-Id"))
		assert.Equal(t, "abc-123", seen)
	})
}

type allowFunc func(ctx context.Context, key string) (bool, error)

func (f allowFunc) Allow(ctx context.Context, key string) (bool, error) { return f(ctx, key) }

func TestRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(l allowFunc) *gin.Engine {
		r := gin.New()
		r.Use(RateLimit(l, zap.NewNop()))
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })
		return r
	}

	t.Run("allowed", func(t *testing.T) {
		r := newRouter(func(_ context.Context, _ string) (bool, error) { return true, nil })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("denied", func(t *testing.T) {
		r := newRouter(func(_ context.Context, _ string) (bool, error) { return false, nil })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

		require.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Contains(t, w.Body.String(), `"RATE_LIMITED"`)
	})

	t.Run("limiter failure fails open", func(t *testing.T) {
		r := newRouter(func(_ context.Context, _ string) (bool, error) {
			return false, errors.New("redis down")
		})
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("keys by user when authenticated", func(t *testing.T) {
		var gotKey string
		limiter := allowFunc(func(_ context.Context, key string) (bool, error) {
			gotKey = key
			return true, nil
		})

		r := gin.New()
		r.Use(func(c *gin.Context) { c.Set("user_db_id", "u-42") })
		r.Use(RateLimit(limiter, zap.NewNop()))
		r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
		assert.Equal(t, "u-42", gotKey)
	})
}
