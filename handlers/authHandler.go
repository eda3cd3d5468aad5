package handlers

import (
	"net/http"

	"tttserver/auth"
	"tttserver/database"
	"tttserver/middlewares"
	"tttserver/models"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func userResponse(user *models.User) models.UserResponse {
	return models.UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		IsActive: user.IsActive,
	}
}

// issueToken はトークンを発行し、セッションキャッシュにも記録する
func issueToken(c *gin.Context, rdb *redis.Client, logger *zap.Logger, user *models.User) (string, bool) {
	token, err := auth.GenerateToken(user)
	if err != nil {
		logger.Error("Token generation error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return "", false
	}
	session := map[string]interface{}{"user_id": user.ID, "username": user.Username}
	if err := database.StoreSession(c.Request.Context(), rdb, token, session); err != nil {
		// セッションキャッシュは補助的なもの。失敗してもログインは通す。
		logger.Error("Failed to store session", zap.Uint("userID", user.ID), zap.Error(err))
	}
	return token, true
}

// Register は新規ユーザー登録を処理するハンドラです。
func Register(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	var request models.RegisterRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Register request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var count int64
	db.Model(&models.User{}).Where("username = ?", request.Username).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Username already registered"})
		return
	}
	db.Model(&models.User{}).Where("email = ?", request.Email).Count(&count)
	if count > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Email already registered"})
		return
	}

	hash, err := auth.HashPassword(request.Password)
	if err != nil {
		logger.Error("Password hashing error", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	user := models.User{
		Username:     request.Username,
		Email:        request.Email,
		PasswordHash: hash,
		IsActive:     true,
	}
	if err := db.Create(&user).Error; err != nil {
		logger.Error("Failed to create user", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register user"})
		return
	}

	token, ok := issueToken(c, rdb, logger, &user)
	if !ok {
		return
	}
	logger.Info("User registered", zap.Uint("userID", user.ID), zap.String("username", user.Username))
	c.JSON(http.StatusCreated, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         userResponse(&user),
	})
}

// Login はログインを処理するハンドラです。
func Login(c *gin.Context, db *gorm.DB, rdb *redis.Client, logger *zap.Logger) {
	var request models.LoginRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Login request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user models.User
	if err := db.Where("username = ?", request.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
		return
	}
	if !auth.CheckPassword(request.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Incorrect username or password"})
		return
	}

	token, ok := issueToken(c, rdb, logger, &user)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"access_token": token,
		"token_type":   "bearer",
		"user":         userResponse(&user),
	})
}

// Me は認証済みユーザー自身の情報を返す
func Me(c *gin.Context, db *gorm.DB, logger *zap.Logger) {
	userID := middlewares.CurrentUserID(c)
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		logger.Error("Failed to fetch current user", zap.Uint("userID", userID), zap.Error(err))
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, userResponse(&user))
}
