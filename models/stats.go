package models

import (
	"gorm.io/gorm"
)

// UserStats は対戦成績の集計レコード。ゲーム完了時に更新される。
type UserStats struct {
	gorm.Model
	UserID          uint    `gorm:"unique;not null"`
	GamesPlayed     int     `gorm:"not null;default:0"`
	GamesWon        int     `gorm:"not null;default:0"`
	GamesLost       int     `gorm:"not null;default:0"`
	GamesDrawn      int     `gorm:"not null;default:0"`
	TotalMoves      int     `gorm:"not null;default:0"`
	WinRate         float64 `gorm:"not null;default:0"`
	AvgMovesPerGame float64 `gorm:"not null;default:0"`
}

// LeaderboardEntry はランキング1行分のレスポンス
type LeaderboardEntry struct {
	Rank            int     `json:"rank"`
	UserID          uint    `json:"user_id"`
	Username        string  `json:"username"`
	GamesPlayed     int     `json:"games_played"`
	GamesWon        int     `json:"games_won"`
	GamesLost       int     `json:"games_lost"`
	GamesDrawn      int     `json:"games_drawn"`
	WinRate         float64 `json:"win_rate"`
	AvgMovesPerGame float64 `json:"avg_moves_per_game"`
}

// UserStatsResponse は個別ユーザーの成績レスポンス
type UserStatsResponse struct {
	UserID          uint    `json:"user_id"`
	Username        string  `json:"username"`
	GamesPlayed     int     `json:"games_played"`
	GamesWon        int     `json:"games_won"`
	GamesLost       int     `json:"games_lost"`
	GamesDrawn      int     `json:"games_drawn"`
	TotalMoves      int     `json:"total_moves"`
	WinRate         float64 `json:"win_rate"`
	AvgMovesPerGame float64 `json:"avg_moves_per_game"`
}
