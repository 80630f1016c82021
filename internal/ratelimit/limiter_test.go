package ratelimit

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newFallbackLimiter(perMinute int) *Limiter {
	return NewLimiter(&RedisClient{}, Config{AnalyzePerMinute: perMinute})
}

func TestDisabledRedisClient(t *testing.T) {
	rc := NewRedisClient("", "", 0)
	assert.False(t, rc.IsEnabled())
	assert.Nil(t, rc.Client())
	assert.NoError(t, rc.Close())
}

func TestUnreachableRedisFallsBack(t *testing.T) {
	rc := NewRedisClient("127.0.0.1:1", "", 0)
	assert.False(t, rc.IsEnabled())
}

func TestAllowIPFallbackBurst(t *testing.T) {
	l := newFallbackLimiter(3)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		res := l.AllowIP(ctx, "10.0.0.1")
		assert.True(t, res.Allowed, "request %d within burst", i)
		assert.Equal(t, 3, res.Limit)
	}

	res := l.AllowIP(ctx, "10.0.0.1")
	assert.False(t, res.Allowed)
	assert.Positive(t, res.RetryAfter)
}

func TestAllowIPIsPerIP(t *testing.T) {
	l := newFallbackLimiter(1)
	ctx := context.Background()

	assert.True(t, l.AllowIP(ctx, "10.0.0.1").Allowed)
	assert.False(t, l.AllowIP(ctx, "10.0.0.1").Allowed)

	// a different client is unaffected
	assert.True(t, l.AllowIP(ctx, "10.0.0.2").Allowed)
}

func TestMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	l := newFallbackLimiter(1)
	router := gin.New()
	router.POST("/analyze", l.Middleware(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"success": true})
	})

	doRequest := func() *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/analyze", nil)
		req.RemoteAddr = "10.0.0.9:1234"
		router.ServeHTTP(w, req)
		return w
	}

	first := doRequest()
	require.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Limit"))

	second := doRequest()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "exceeded the limit")
}
