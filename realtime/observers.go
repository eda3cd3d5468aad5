package realtime

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// 観戦セットの保持期間。放置されたゲームのセットが無限に残らないようにする。
const observerTTL = 24 * time.Hour

// 接続トラッキングの保持期間
const connectionTTL = time.Hour

// ObserverDirectory はゲームごとの観戦者集合をRedisのセットで保持する。
// 複数プロセスから同じ集合が見えるよう、プロセスローカルには持たない。
type ObserverDirectory struct {
	rdb    *redis.Client
	logger *zap.Logger
}

func NewObserverDirectory(rdb *redis.Client, logger *zap.Logger) *ObserverDirectory {
	return &ObserverDirectory{rdb: rdb, logger: logger}
}

func observerKey(gameID uint) string {
	return fmt.Sprintf("game_observers:%d", gameID)
}

func connectionKey(userID uint) string {
	return fmt.Sprintf("connections:%d", userID)
}

// AddObserver は観戦者を登録し、セットの有効期限を更新する
func (d *ObserverDirectory) AddObserver(ctx context.Context, gameID, userID uint) error {
	key := observerKey(gameID)
	if err := d.rdb.SAdd(ctx, key, strconv.FormatUint(uint64(userID), 10)).Err(); err != nil {
		return fmt.Errorf("failed to add observer: %w", err)
	}
	if err := d.rdb.Expire(ctx, key, observerTTL).Err(); err != nil {
		d.logger.Error("Failed to set observer set TTL", zap.Uint("gameID", gameID), zap.Error(err))
	}
	return nil
}

// RemoveObserver は観戦者を外す
func (d *ObserverDirectory) RemoveObserver(ctx context.Context, gameID, userID uint) error {
	err := d.rdb.SRem(ctx, observerKey(gameID), strconv.FormatUint(uint64(userID), 10)).Err()
	if err != nil {
		return fmt.Errorf("failed to remove observer: %w", err)
	}
	return nil
}

// ListObservers はゲームの観戦者ID一覧を返す
func (d *ObserverDirectory) ListObservers(ctx context.Context, gameID uint) ([]uint, error) {
	members, err := d.rdb.SMembers(ctx, observerKey(gameID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list observers: %w", err)
	}
	observers := make([]uint, 0, len(members))
	for _, member := range members {
		id, err := strconv.ParseUint(member, 10, 32)
		if err != nil {
			d.logger.Error("Invalid observer entry", zap.String("member", member), zap.Error(err))
			continue
		}
		observers = append(observers, uint(id))
	}
	return observers, nil
}

// TrackConnection は接続IDをユーザーのセットに記録する。
// どのユーザーがオンラインかをプロセス間で参照できるようにするためのもの。
func (d *ObserverDirectory) TrackConnection(ctx context.Context, userID uint, connID string) error {
	key := connectionKey(userID)
	if err := d.rdb.SAdd(ctx, key, connID).Err(); err != nil {
		return fmt.Errorf("failed to track connection: %w", err)
	}
	if err := d.rdb.Expire(ctx, key, connectionTTL).Err(); err != nil {
		d.logger.Error("Failed to set connection set TTL", zap.Uint("userID", userID), zap.Error(err))
	}
	return nil
}

// UntrackConnection は接続IDの記録を外す
func (d *ObserverDirectory) UntrackConnection(ctx context.Context, userID uint, connID string) error {
	if err := d.rdb.SRem(ctx, connectionKey(userID), connID).Err(); err != nil {
		return fmt.Errorf("failed to untrack connection: %w", err)
	}
	return nil
}
