package middlewares

import (
	"net/http"
	"time"

	"tttserver/database"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
)

// RateLimit はRedisのウィンドウカウンタを真偽値のゲートとして消費する。
// AuthRequiredの後段に置くこと。
func RateLimit(rdb *redis.Client, action string, limit int, window time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := CurrentUserID(c)
		if !database.CheckRateLimit(c.Request.Context(), rdb, userID, action, limit, window) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "Too many requests"})
			return
		}
		c.Next()
	}
}
