package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// Redisに持たせる揮発データの有効期限
const (
	sessionTTL     = 30 * time.Minute
	gameStateTTL   = time.Hour
	activeGamesTTL = time.Minute
)

const activeGamesKey = "active_games"

// StoreSession はセッション情報を有効期限付きで保存する
func StoreSession(ctx context.Context, rdb *redis.Client, token string, data interface{}) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to encode session: %w", err)
	}
	return rdb.Set(ctx, "session:"+token, payload, sessionTTL).Err()
}

// GetSession はセッション情報を取り出す。存在しなければnilを返す。
func GetSession(ctx context.Context, rdb *redis.Client, token string, out interface{}) (bool, error) {
	data, err := rdb.Get(ctx, "session:"+token).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to fetch session: %w", err)
	}
	if err := json.Unmarshal([]byte(data), out); err != nil {
		return false, fmt.Errorf("failed to decode session: %w", err)
	}
	return true, nil
}

// DeleteSession はセッションを削除する
func DeleteSession(ctx context.Context, rdb *redis.Client, token string) error {
	return rdb.Del(ctx, "session:"+token).Err()
}

// CheckRateLimit はウィンドウ内の実行回数を数え、上限以内ならtrueを返す。
// 呼び出し側はbooleanのゲートとしてのみ扱う。
// INCRを先行させることでカウントと判定が1コマンドに収まり、同時リクエストが
// 同じカウント値を読んですり抜けることはない。
func CheckRateLimit(ctx context.Context, rdb *redis.Client, userID uint, action string, limit int, window time.Duration) bool {
	key := fmt.Sprintf("rate_limit:%d:%s", userID, action)

	count, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		// Redisが落ちていても機能自体は止めない
		return true
	}
	if count == 1 {
		rdb.Expire(ctx, key, window)
	}
	return count <= int64(limit)
}

// CacheGameState はゲームのスナップショットをキャッシュする
func CacheGameState(ctx context.Context, rdb *redis.Client, logger *zap.Logger, gameID uint, snapshot interface{}) {
	payload, err := json.Marshal(snapshot)
	if err != nil {
		logger.Error("Failed to encode game state cache", zap.Uint("gameID", gameID), zap.Error(err))
		return
	}
	key := fmt.Sprintf("game_state:%d", gameID)
	if err := rdb.Set(ctx, key, payload, gameStateTTL).Err(); err != nil {
		logger.Error("Failed to cache game state", zap.Uint("gameID", gameID), zap.Error(err))
	}
}

// InvalidateGameState はゲームのキャッシュを破棄する
func InvalidateGameState(ctx context.Context, rdb *redis.Client, gameID uint) {
	rdb.Del(ctx, fmt.Sprintf("game_state:%d", gameID))
}

// CacheActiveGames はアクティブなゲーム一覧をキャッシュする
func CacheActiveGames(ctx context.Context, rdb *redis.Client, logger *zap.Logger, games interface{}) {
	payload, err := json.Marshal(games)
	if err != nil {
		logger.Error("Failed to encode active games cache", zap.Error(err))
		return
	}
	if err := rdb.Set(ctx, activeGamesKey, payload, activeGamesTTL).Err(); err != nil {
		logger.Error("Failed to cache active games", zap.Error(err))
	}
}

// CachedActiveGames はキャッシュされた一覧を取り出す。無ければfalse。
func CachedActiveGames(ctx context.Context, rdb *redis.Client, out interface{}) bool {
	data, err := rdb.Get(ctx, activeGamesKey).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(data), out) == nil
}

// InvalidateActiveGames は一覧キャッシュを破棄する
func InvalidateActiveGames(ctx context.Context, rdb *redis.Client) {
	rdb.Del(ctx, activeGamesKey)
}
