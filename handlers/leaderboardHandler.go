package handlers

import (
	"net/http"
	"strconv"

	"tttserver/game"
	"tttserver/middlewares"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultLeaderboardLimit = 20

// Leaderboard は勝率順のランキングを返すハンドラです。
func Leaderboard(c *gin.Context, svc *game.Service, logger *zap.Logger) {
	limit := defaultLeaderboardLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	entries, totalUsers, err := svc.Leaderboard(limit)
	if err != nil {
		logger.Error("Failed to fetch leaderboard", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leaderboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries":     entries,
		"total_users": totalUsers,
	})
}

// MyStats は認証済みユーザー自身の成績を返す
func MyStats(c *gin.Context, svc *game.Service, logger *zap.Logger) {
	userID := middlewares.CurrentUserID(c)
	stats, err := svc.UserStats(userID)
	if err != nil {
		logger.Error("Failed to fetch user stats", zap.Uint("userID", userID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stats"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// UserStats は指定ユーザーの成績を返す
func UserStats(c *gin.Context, svc *game.Service, logger *zap.Logger) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid user id"})
		return
	}
	stats, err := svc.UserStats(uint(id))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	c.JSON(http.StatusOK, stats)
}
