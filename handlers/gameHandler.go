package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"tttserver/database"
	"tttserver/game"
	"tttserver/middlewares"
	"tttserver/models"
	"tttserver/realtime"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 一覧の取得上限のデフォルト
const defaultGamesLimit = 50

func gameIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid game id"})
		return 0, false
	}
	return uint(id), true
}

// statusForGameError は裁定エラーをHTTPステータスに対応付ける
func statusForGameError(err error) int {
	switch {
	case errors.Is(err, game.ErrGameNotFound):
		return http.StatusNotFound
	case errors.Is(err, game.ErrInvalidMove),
		errors.Is(err, game.ErrNotYourTurn),
		errors.Is(err, game.ErrNotInProgress),
		errors.Is(err, game.ErrCannotJoin):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// ListGames はアクティブなゲーム一覧を返すハンドラです。
func ListGames(c *gin.Context, svc *game.Service, rdb *redis.Client, logger *zap.Logger) {
	limit := defaultGamesLimit
	if raw := c.Query("limit"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			limit = parsed
		}
	}

	// 一覧は揮発キャッシュを優先し、DBの読み込みを減らす
	if limit == defaultGamesLimit {
		var cached []models.GameListItem
		if database.CachedActiveGames(c.Request.Context(), rdb, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
	}

	games, err := svc.ActiveGames(limit)
	if err != nil {
		logger.Error("Failed to list games", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list games"})
		return
	}
	if limit == defaultGamesLimit {
		database.CacheActiveGames(c.Request.Context(), rdb, logger, games)
	}
	c.JSON(http.StatusOK, games)
}

// CreateGame は新しいゲームを作成するハンドラです。
func CreateGame(c *gin.Context, svc *game.Service, dispatcher *realtime.Dispatcher, rdb *redis.Client, logger *zap.Logger) {
	var request models.GameCreateRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		logger.Error("Game create request bind error", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middlewares.CurrentUserID(c)
	g, err := svc.CreateGame(userID, request.Player2ID, request.Player2Type, request.AIDifficulty)
	if err != nil {
		logger.Error("Failed to create game", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create game"})
		return
	}

	database.InvalidateActiveGames(c.Request.Context(), rdb)
	dispatcher.NotifyGamesListUpdate(c.Request.Context())
	c.JSON(http.StatusCreated, game.GameSnapshot(g))
}

// GetGame はゲームの詳細を返すハンドラです。
func GetGame(c *gin.Context, svc *game.Service, logger *zap.Logger) {
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}
	g, err := svc.GetGame(gameID)
	if err != nil {
		c.JSON(statusForGameError(err), gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, game.GameSnapshot(g))
}

// JoinGame は2人目のプレイヤーとしての参加を処理するハンドラです。
func JoinGame(c *gin.Context, svc *game.Service, dispatcher *realtime.Dispatcher, rdb *redis.Client, logger *zap.Logger) {
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}
	userID := middlewares.CurrentUserID(c)

	g, err := svc.JoinGame(gameID, userID)
	if err != nil {
		c.JSON(statusForGameError(err), gin.H{"error": err.Error()})
		return
	}

	snapshot := game.GameSnapshot(g)
	ctx := c.Request.Context()
	database.CacheGameState(ctx, rdb, logger, gameID, snapshot)
	database.InvalidateActiveGames(ctx, rdb)
	dispatcher.NotifyGameUpdate(ctx, gameID, snapshot)
	dispatcher.NotifyGamesListUpdate(ctx)
	c.JSON(http.StatusOK, snapshot)
}

// ObserveGame は観戦者としての参加を処理するハンドラです。
func ObserveGame(c *gin.Context, svc *game.Service, directory *realtime.ObserverDirectory, logger *zap.Logger) {
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}
	userID := middlewares.CurrentUserID(c)

	// 永続メンバーシップと共有ストアの両方に登録する
	if err := svc.AddObserver(gameID, userID); err != nil {
		c.JSON(statusForGameError(err), gin.H{"error": err.Error()})
		return
	}
	if err := directory.AddObserver(c.Request.Context(), gameID, userID); err != nil {
		logger.Error("Failed to register observer in directory", zap.Uint("gameID", gameID), zap.Error(err))
	}
	c.JSON(http.StatusOK, gin.H{"message": "Successfully joined as observer"})
}

// MakeMove は着手リクエストを処理するハンドラです。
func MakeMove(c *gin.Context, svc *game.Service, dispatcher *realtime.Dispatcher, rdb *redis.Client, logger *zap.Logger) {
	gameID, ok := gameIDParam(c)
	if !ok {
		return
	}
	var request models.MoveRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Position must be between 0 and 8"})
		return
	}
	userID := middlewares.CurrentUserID(c)

	g, err := svc.MakeMove(gameID, userID, *request.Position)
	if err != nil {
		c.JSON(statusForGameError(err), gin.H{"error": err.Error()})
		return
	}

	snapshot := game.GameSnapshot(g)
	ctx := c.Request.Context()
	database.CacheGameState(ctx, rdb, logger, gameID, snapshot)
	// 通知の失敗は着手の成否に影響させない
	dispatcher.NotifyGameUpdate(ctx, gameID, snapshot)
	if g.Status == models.GameStatusCompleted {
		database.InvalidateActiveGames(ctx, rdb)
		dispatcher.NotifyGamesListUpdate(ctx)
	}
	c.JSON(http.StatusOK, snapshot)
}
