package realtime

import (
	"context"
	"net/http"
	"time"

	"tttserver/auth"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	pingPeriod   = 10 * time.Second
	readDeadline = 60 * time.Second
)

// HandleConnections はWebSocket接続へのアップグレードと接続の一生を管理する
func HandleConnections(c *gin.Context, registry *Registry, directory *ObserverDirectory, dispatcher *Dispatcher, logger *zap.Logger, upgrader websocket.Upgrader) {
	// ブラウザのWebSocketはヘッダーを付けられないため、クエリパラメータも受け付ける
	tokenString := c.GetHeader("Authorization")
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	claims, err := auth.ParseToken(tokenString)
	if err != nil {
		logger.Error("Failed to validate token", zap.Error(err))
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	userID := claims.UserID

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Error("Error upgrading WebSocket", zap.Error(err))
		return
	}

	connection := registry.Connect(userID, conn)
	// リクエストのコンテキストはこのハンドラの復帰と同時にキャンセルされるため、
	// 接続の一生に紐づくRedis操作には使えない
	ctx := context.Background()
	if err := directory.TrackConnection(ctx, userID, connection.ID); err != nil {
		logger.Error("Failed to track connection", zap.Uint("userID", userID), zap.Error(err))
	}

	// クライアントごとのメッセージ読み取りゴルーチン
	go func() {
		defer func() {
			registry.Disconnect(userID, connection.ID)
			if err := directory.UntrackConnection(ctx, userID, connection.ID); err != nil {
				logger.Error("Failed to untrack connection", zap.Uint("userID", userID), zap.Error(err))
			}
			conn.Close()
			logger.Info("Client removed", zap.Uint("userID", userID))
		}()

		conn.SetReadDeadline(time.Now().Add(readDeadline))
		for {
			_, message, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
					logger.Error("WebSocket error", zap.Uint("userID", userID), zap.Error(err))
				}
				break
			}
			dispatcher.HandleInbound(ctx, userID, message)
		}
	}()

	// Ping/Pongを管理するゴルーチン
	go func() {
		conn.SetPongHandler(func(string) error {
			conn.SetReadDeadline(time.Now().Add(readDeadline))
			return nil
		})

		ticker := time.NewTicker(pingPeriod)
		defer ticker.Stop()

		for range ticker.C {
			if err := connection.Ping(); err != nil {
				return
			}
		}
	}()
}
