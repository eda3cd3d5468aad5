package game

import (
	"errors"
	"fmt"

	"tttserver/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ランキング掲載に必要な最小対戦数
const leaderboardMinGames = 5

// recordResult は完了したゲームの成績を両参加者に反映する。
// AIには成績レコードを作らない。
func (s *Service) recordResult(tx *gorm.DB, g *models.Game) error {
	won, lost, drawn := resultFor(g, 1)
	if err := applyStats(tx, g.Player1ID, g.TotalMoves, won, lost, drawn); err != nil {
		return err
	}

	if g.Player2ID != nil && g.Player2Type == models.PlayerTypeHuman {
		won, lost, drawn = resultFor(g, 2)
		if err := applyStats(tx, *g.Player2ID, g.TotalMoves, won, lost, drawn); err != nil {
			return err
		}
	}
	return nil
}

// resultFor はスロット視点の勝敗を返す
func resultFor(g *models.Game, slot int) (won, lost, drawn bool) {
	switch g.Outcome {
	case models.OutcomeDraw:
		return false, false, true
	case models.OutcomePlayer1Won:
		return slot == 1, slot != 1, false
	case models.OutcomePlayer2Won:
		return slot == 2, slot != 2, false
	}
	return false, false, false
}

// applyStats は1ユーザー分の集計レコードを更新する
func applyStats(tx *gorm.DB, userID uint, totalMoves int, won, lost, drawn bool) error {
	var stats models.UserStats
	err := tx.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.UserStats{UserID: userID}
	} else if err != nil {
		return fmt.Errorf("failed to fetch user stats: %w", err)
	}

	stats.GamesPlayed++
	stats.TotalMoves += totalMoves
	switch {
	case won:
		stats.GamesWon++
	case lost:
		stats.GamesLost++
	case drawn:
		stats.GamesDrawn++
	}
	stats.WinRate = float64(stats.GamesWon) / float64(stats.GamesPlayed)
	stats.AvgMovesPerGame = float64(stats.TotalMoves) / float64(stats.GamesPlayed)

	if err := tx.Save(&stats).Error; err != nil {
		return fmt.Errorf("failed to save user stats: %w", err)
	}
	return nil
}

// Leaderboard は勝率順の上位プレイヤー一覧を返す
func (s *Service) Leaderboard(limit int) ([]models.LeaderboardEntry, int64, error) {
	type row struct {
		UserID          uint
		Username        string
		GamesPlayed     int
		GamesWon        int
		GamesLost       int
		GamesDrawn      int
		WinRate         float64
		AvgMovesPerGame float64
	}

	var rows []row
	err := s.db.Table("user_stats").
		Select("user_stats.user_id, users.username, user_stats.games_played, user_stats.games_won, user_stats.games_lost, user_stats.games_drawn, user_stats.win_rate, user_stats.avg_moves_per_game").
		Joins("JOIN users ON users.id = user_stats.user_id").
		Where("user_stats.games_played >= ?", leaderboardMinGames).
		Order("user_stats.win_rate DESC, user_stats.games_played DESC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leaderboard: %w", err)
	}

	var totalUsers int64
	err = s.db.Model(&models.UserStats{}).
		Where("games_played >= ?", leaderboardMinGames).
		Count(&totalUsers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count leaderboard users: %w", err)
	}

	entries := make([]models.LeaderboardEntry, 0, len(rows))
	for i, r := range rows {
		entries = append(entries, models.LeaderboardEntry{
			Rank:            i + 1,
			UserID:          r.UserID,
			Username:        r.Username,
			GamesPlayed:     r.GamesPlayed,
			GamesWon:        r.GamesWon,
			GamesLost:       r.GamesLost,
			GamesDrawn:      r.GamesDrawn,
			WinRate:         r.WinRate,
			AvgMovesPerGame: r.AvgMovesPerGame,
		})
	}
	return entries, totalUsers, nil
}

// UserStats は指定ユーザーの成績を返す。レコードが無ければゼロ値で作成する。
func (s *Service) UserStats(userID uint) (*models.UserStatsResponse, error) {
	var user models.User
	if err := s.db.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %d not found", userID)
		}
		return nil, fmt.Errorf("failed to fetch user: %w", err)
	}

	var stats models.UserStats
	err := s.db.Where("user_id = ?", userID).First(&stats).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		stats = models.UserStats{UserID: userID}
		if err := s.db.Create(&stats).Error; err != nil {
			s.logger.Error("Failed to create default user stats", zap.Error(err))
			return nil, fmt.Errorf("failed to create user stats: %w", err)
		}
	} else if err != nil {
		return nil, fmt.Errorf("failed to fetch user stats: %w", err)
	}

	return &models.UserStatsResponse{
		UserID:          user.ID,
		Username:        user.Username,
		GamesPlayed:     stats.GamesPlayed,
		GamesWon:        stats.GamesWon,
		GamesLost:       stats.GamesLost,
		GamesDrawn:      stats.GamesDrawn,
		TotalMoves:      stats.TotalMoves,
		WinRate:         stats.WinRate,
		AvgMovesPerGame: stats.AvgMovesPerGame,
	}, nil
}

// GameSnapshot はAPIレスポンス/通知ペイロード用の表現に変換する
func GameSnapshot(g *models.Game) models.GameResponse {
	board, err := ParseBoard(g.BoardState)
	if err != nil {
		board = Board{}
	}
	return models.GameResponse{
		ID:           g.ID,
		Player1ID:    g.Player1ID,
		Player2ID:    g.Player2ID,
		Player2Type:  g.Player2Type,
		AIDifficulty: g.AIDifficulty,
		BoardState:   board[:],
		CurrentTurn:  g.CurrentTurn,
		Status:       g.Status,
		WinnerID:     g.WinnerID,
		Outcome:      g.Outcome,
		TotalMoves:   g.TotalMoves,
		CreatedAt:    g.CreatedAt,
		UpdatedAt:    g.UpdatedAt,
		CompletedAt:  g.CompletedAt,
	}
}
