package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// Without a configured redis client the limiter must fail open.
func TestRedisRateLimitFailOpen(t *testing.T) {
	gin.SetMode(gin.TestMode)
	redisClient = nil

	r := gin.New()
	r.GET("/x", RedisRateLimit(1, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d; want 200", i, w.Code)
		}
	}
}

func TestInitRedisRateLimiterEmptyAddr(t *testing.T) {
	redisClient = nil
	InitRedisRateLimiter("", "", 0)
	if redisClient != nil {
		t.Fatal("client configured despite empty addr")
	}
}
