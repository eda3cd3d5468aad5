package game

import (
	"errors"
)

// 着手裁定のエラー分類。いずれもリクエスト単位のユーザーエラーで、
// ゲーム状態は変更されない。
var (
	ErrGameNotFound  = errors.New("game not found")
	ErrNotInProgress = errors.New("game is not in progress")
	ErrNotYourTurn   = errors.New("not your turn")
	ErrInvalidMove   = errors.New("invalid move")
	ErrCannotJoin    = errors.New("cannot join this game")
)

// NoMove は探索エンジンが合法手を持たないときの番兵値。
// 呼び出し側はエラーではなくno-opとして扱う。
const NoMove = -1
