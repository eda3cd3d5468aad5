package utils

import (
	"time"

	"tttserver/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func CronCleaner(db *gorm.DB, logger *zap.Logger) {
	c := cron.New()

	// 相手が現れないまま放置されたゲームをabandonedに更新するジョブ（毎日実行）
	c.AddFunc("@daily", func() {
		logger.Info("放置されたゲームを整理する処理を開始")
		result := db.Model(&models.Game{}).
			Where("status = ? AND updated_at <= ?", models.GameStatusWaiting, time.Now().Add(-24*time.Hour)).
			Update("status", models.GameStatusAbandoned)
		if result.Error != nil {
			logger.Error("放置ゲームの更新に失敗しました", zap.Error(result.Error))
		} else if result.RowsAffected > 0 {
			logger.Info("放置ゲームをabandonedに更新", zap.Int64("games_updated", result.RowsAffected))
		}
	})

	// 決着済みゲームの観戦メンバーシップを削除するジョブ（"分 時 日 月 曜日"）
	c.AddFunc("0 3 * * *", func() {
		logger.Info("古い観戦レコードを削除する処理を開始")
		finishedGameIDs := []uint{}
		db.Model(&models.Game{}).
			Where("status IN ? AND updated_at <= ?",
				[]string{models.GameStatusCompleted, models.GameStatusAbandoned},
				time.Now().Add(-48*time.Hour)).
			Pluck("id", &finishedGameIDs)

		if len(finishedGameIDs) > 0 {
			result := db.Where("game_id IN ?", finishedGameIDs).Delete(&models.GameObserver{})
			if result.Error != nil {
				logger.Error("観戦レコードの削除に失敗しました", zap.Error(result.Error))
			} else {
				logger.Info("観戦レコードの削除完了", zap.Int64("observers_deleted", result.RowsAffected))
			}
		}
	})

	c.Start()
}
