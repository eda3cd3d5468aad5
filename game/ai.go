package game

import (
	"math"
	"math/rand"
	"time"
)

// AIの強さ
const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

// mediumがhard側に倒れる確率。設計上の固定値。
const mediumOptimalRate = 0.7

// 乱数は手のランダム選択とmediumの分岐に使用
func createLocalRandGenerator() *rand.Rand {
	source := rand.NewSource(time.Now().UnixNano())
	return rand.New(source)
}

// ChooseMove は指定された強さでAIの着手位置を返す。
// 盤面に空きマスが無い場合はNoMoveを返す。AIの印はO固定。
func ChooseMove(board Board, difficulty string) int {
	switch difficulty {
	case DifficultyEasy:
		return randomMove(board, createLocalRandGenerator())
	case DifficultyHard:
		return optimalMove(board)
	default: // medium
		randGen := createLocalRandGenerator()
		if randGen.Float64() < mediumOptimalRate {
			return optimalMove(board)
		}
		return randomMove(board, randGen)
	}
}

// randomMove は空きマスから一様ランダムに選ぶ
func randomMove(board Board, randGen *rand.Rand) int {
	empties := board.emptyPositions()
	if len(empties) == 0 {
		return NoMove
	}
	return empties[randGen.Intn(len(empties))]
}

// optimalMove はアルファベータ枝刈り付きミニマックスで最善手を選ぶ。
// ルートは0..8を昇順に走査し、同点なら先に評価した位置を採用する。
func optimalMove(board Board) int {
	bestMove := NoMove
	bestValue := math.Inf(-1)

	for i := 0; i < 9; i++ {
		if board[i] != "" {
			continue
		}
		board[i] = MarkO
		value := minimax(board, 0, false, math.Inf(-1), math.Inf(1))
		board[i] = ""
		if value > bestValue {
			bestValue = value
			bestMove = i
		}
	}

	if bestMove == NoMove {
		return randomMove(board, createLocalRandGenerator())
	}
	return bestMove
}

// minimax はAI(O)視点の評価値を返す。早い勝ちほど高く、遅い負けほど高い。
// depthは現局面からのプライ数。
func minimax(board Board, depth int, maximizing bool, alpha, beta float64) float64 {
	switch board.Winner() {
	case MarkO:
		return float64(10 - depth)
	case MarkX:
		return float64(depth - 10)
	}
	if board.IsFull() {
		return 0
	}

	if maximizing {
		maxEval := math.Inf(-1)
		for i := 0; i < 9; i++ {
			if board[i] != "" {
				continue
			}
			board[i] = MarkO
			eval := minimax(board, depth+1, false, alpha, beta)
			board[i] = ""
			maxEval = math.Max(maxEval, eval)
			alpha = math.Max(alpha, eval)
			if beta <= alpha {
				break
			}
		}
		return maxEval
	}

	minEval := math.Inf(1)
	for i := 0; i < 9; i++ {
		if board[i] != "" {
			continue
		}
		board[i] = MarkX
		eval := minimax(board, depth+1, true, alpha, beta)
		board[i] = ""
		minEval = math.Min(minEval, eval)
		beta = math.Min(beta, eval)
		if beta <= alpha {
			break
		}
	}
	return minEval
}
