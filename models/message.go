package models

import (
	"encoding/json"
)

// リアルタイムメッセージのtypeタグ
const (
	MessageJoinGame        = "join_game"
	MessageLeaveGame       = "leave_game"
	MessageGameUpdate      = "game_update"
	MessagePlayerJoined    = "player_joined"
	MessagePlayerLeft      = "player_left"
	MessageGamesListUpdate = "games_list_update"
)

// Message はWebSocketで送受信するエンベロープ。dataの形はtypeごとに異なる。
type Message struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// GameRef はjoin_game/leave_gameのdata部
type GameRef struct {
	GameID uint `json:"game_id"`
}

// PlayerEvent はplayer_joined/player_leftのdata部
type PlayerEvent struct {
	GameID uint `json:"game_id"`
	UserID uint `json:"user_id"`
}
