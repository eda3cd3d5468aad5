package models

import (
	"time"

	"gorm.io/gorm"
)

// ゲームのライフサイクル状態
const (
	GameStatusWaiting    = "waiting"
	GameStatusInProgress = "in_progress"
	GameStatusCompleted  = "completed"
	GameStatusAbandoned  = "abandoned"
)

// 2人目のプレイヤーの種別
const (
	PlayerTypeHuman = "human"
	PlayerTypeAI    = "ai"
)

// 決着の三値表現。winner_id が null のままでは「AIの勝ち」と「引き分け」を
// 区別できないため、明示的な outcome 列を持たせる。
const (
	OutcomePlayer1Won = "player1_won"
	OutcomePlayer2Won = "player2_won"
	OutcomeDraw       = "draw"
)

// 空盤面のシリアライズ表現（9マスのJSON配列）
const EmptyBoardState = `["","","","","","","","",""]`

// Game モデルの定義
type Game struct {
	gorm.Model
	Player1ID    uint   `gorm:"not null"`
	Player2ID    *uint  // AI対戦の場合はnull
	Player2Type  string `gorm:"size:10;not null;default:'human'"`
	AIDifficulty string `gorm:"size:10;not null;default:'medium'"` // "easy", "medium", "hard"
	BoardState   string `gorm:"type:text;not null"`
	CurrentTurn  string `gorm:"size:1;not null"` // "X" または "O"
	Status       string `gorm:"size:15;not null"`
	WinnerID     *uint  // 人間の勝者のみ。AI勝利と引き分けはOutcomeで判別
	Outcome      string `gorm:"size:15"`
	TotalMoves   int    `gorm:"not null;default:0"`
	CompletedAt  *time.Time
}

// GameObserver は観戦メンバーシップの永続レコード。
// (game_id, user_id) の一意制約で同一ユーザーの重複登録をDB側でも防ぐ。
type GameObserver struct {
	gorm.Model
	GameID uint `gorm:"not null;index;uniqueIndex:idx_game_observer_membership"`
	UserID uint `gorm:"not null;uniqueIndex:idx_game_observer_membership"`
}

// GameListItem はアクティブなゲーム一覧の1行分
type GameListItem struct {
	ID              uint      `json:"id"`
	Player1Username string    `json:"player1_username"`
	Player2Username *string   `json:"player2_username"`
	Player2Type     string    `json:"player2_type"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	ObserverCount   int64     `json:"observer_count"`
}

// GameResponse はAPIレスポンスと観戦者向けスナップショットの共通形
type GameResponse struct {
	ID           uint       `json:"id"`
	Player1ID    uint       `json:"player1_id"`
	Player2ID    *uint      `json:"player2_id"`
	Player2Type  string     `json:"player2_type"`
	AIDifficulty string     `json:"ai_difficulty"`
	BoardState   []string   `json:"board_state"`
	CurrentTurn  string     `json:"current_turn"`
	Status       string     `json:"status"`
	WinnerID     *uint      `json:"winner_id"`
	Outcome      string     `json:"outcome"`
	TotalMoves   int        `json:"total_moves"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	CompletedAt  *time.Time `json:"completed_at"`
}
