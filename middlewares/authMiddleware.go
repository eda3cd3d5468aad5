package middlewares

import (
	"net/http"

	"tttserver/auth"
	"tttserver/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// コンテキストに積むキー
const (
	ContextUserID   = "userID"
	ContextUsername = "username"
)

// AuthRequired はBearerトークンを検証し、ユーザーをコンテキストに積むミドルウェア
func AuthRequired(db *gorm.DB, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		claims, err := auth.ParseToken(tokenString)
		if err != nil {
			logger.Info("Rejected request with invalid token", zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication credentials"})
			return
		}

		var user models.User
		if err := db.First(&user, claims.UserID).Error; err != nil {
			logger.Error("Failed to fetch user for token", zap.Uint("userID", claims.UserID), zap.Error(err))
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid authentication credentials"})
			return
		}
		if !user.IsActive {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Account is disabled"})
			return
		}

		c.Set(ContextUserID, user.ID)
		c.Set(ContextUsername, user.Username)
		c.Next()
	}
}

// CurrentUserID はAuthRequiredが積んだユーザーIDを取り出す
func CurrentUserID(c *gin.Context) uint {
	if id, ok := c.Get(ContextUserID); ok {
		return id.(uint)
	}
	return 0
}
