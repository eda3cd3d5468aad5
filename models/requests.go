package models

// RegisterRequest は新規登録リクエストのボディを表す構造体です。
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

// LoginRequest はログインリクエストのボディを表す構造体です。
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GameCreateRequest はゲーム作成リクエストのボディを表す構造体です。
type GameCreateRequest struct {
	Player2ID    *uint  `json:"player2_id"`
	Player2Type  string `json:"player2_type" binding:"omitempty,oneof=human ai"`
	AIDifficulty string `json:"ai_difficulty" binding:"omitempty,oneof=easy medium hard"`
}

// MoveRequest は着手リクエストのボディ。positionは境界で[0,8]に制約する。
type MoveRequest struct {
	Position *int `json:"position" binding:"required,min=0,max=8"`
}

// UserResponse は認証系レスポンスに含めるユーザー情報
type UserResponse struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	IsActive bool   `json:"is_active"`
}
