package game

import (
	"encoding/json"
	"fmt"
)

// プレイヤーの印。先手がX、後手（AI含む）がO。
const (
	MarkX = "X"
	MarkO = "O"
)

// Board は9マスの盤面。インデックスは左上0から右下8。
type Board [9]string

// 8本の勝利ライン。判定順は横3本、縦3本、斜め2本で固定。
var winningLines = [8][3]int{
	{0, 1, 2}, {3, 4, 5}, {6, 7, 8},
	{0, 3, 6}, {1, 4, 7}, {2, 5, 8},
	{0, 4, 8}, {2, 4, 6},
}

// ParseBoard はDBに保存されたJSON配列表現から盤面を復元する
func ParseBoard(state string) (Board, error) {
	var cells []string
	if err := json.Unmarshal([]byte(state), &cells); err != nil {
		return Board{}, fmt.Errorf("failed to parse board state: %w", err)
	}
	if len(cells) != 9 {
		return Board{}, fmt.Errorf("board state has %d cells, want 9", len(cells))
	}
	var b Board
	copy(b[:], cells)
	return b, nil
}

// Serialize は永続化用のJSON配列表現を返す
func (b Board) Serialize() string {
	data, _ := json.Marshal(b[:])
	return string(data)
}

// Apply は指定マスに印を置いた新しい盤面を返す。元の盤面は変更しない。
func (b Board) Apply(position int, mark string) (Board, error) {
	if position < 0 || position > 8 {
		return b, ErrInvalidMove
	}
	if b[position] != "" {
		return b, ErrInvalidMove
	}
	b[position] = mark
	return b, nil
}

// Winner は全8ラインを走査し、揃っている印を返す。勝者がいなければ空文字。
func (b Board) Winner() string {
	for _, line := range winningLines {
		if b[line[0]] != "" && b[line[0]] == b[line[1]] && b[line[1]] == b[line[2]] {
			return b[line[0]]
		}
	}
	return ""
}

// IsFull は空きマスが無いときtrue
func (b Board) IsFull() bool {
	for _, cell := range b {
		if cell == "" {
			return false
		}
	}
	return true
}

// emptyPositions は空きマスのインデックスを昇順で返す
func (b Board) emptyPositions() []int {
	var empties []int
	for i, cell := range b {
		if cell == "" {
			empties = append(empties, i)
		}
	}
	return empties
}
