package game

import (
	"errors"
	"testing"

	"tttserver/models"

	"go.uber.org/zap"
)

func uintPtr(v uint) *uint {
	return &v
}

func TestNewGame(t *testing.T) {
	tests := []struct {
		name        string
		player2ID   *uint
		player2Type string
		wantStatus  string
	}{
		{name: "human without opponent waits", player2ID: nil, player2Type: models.PlayerTypeHuman, wantStatus: models.GameStatusWaiting},
		{name: "human with opponent starts", player2ID: uintPtr(2), player2Type: models.PlayerTypeHuman, wantStatus: models.GameStatusInProgress},
		{name: "ai opponent starts", player2ID: nil, player2Type: models.PlayerTypeAI, wantStatus: models.GameStatusInProgress},
		{name: "empty type defaults to human", player2ID: nil, player2Type: "", wantStatus: models.GameStatusWaiting},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGame(1, tt.player2ID, tt.player2Type, "")
			if g.Status != tt.wantStatus {
				t.Fatalf("status = %q, want %q", g.Status, tt.wantStatus)
			}
			if g.CurrentTurn != MarkX {
				t.Fatalf("current turn = %q, want X", g.CurrentTurn)
			}
			if g.TotalMoves != 0 {
				t.Fatalf("total moves = %d, want 0", g.TotalMoves)
			}
			if g.BoardState != models.EmptyBoardState {
				t.Fatalf("board state = %q, want empty board", g.BoardState)
			}
			if g.AIDifficulty != DifficultyMedium {
				t.Fatalf("difficulty = %q, want medium default", g.AIDifficulty)
			}
		})
	}
}

func TestJoin(t *testing.T) {
	t.Run("join waiting game", func(t *testing.T) {
		g := NewGame(1, nil, models.PlayerTypeHuman, "")
		if err := join(g, 2); err != nil {
			t.Fatalf("join() unexpected error: %v", err)
		}
		if g.Status != models.GameStatusInProgress {
			t.Fatalf("status = %q, want in_progress", g.Status)
		}
		if g.Player2ID == nil || *g.Player2ID != 2 {
			t.Fatalf("player2 = %v, want 2", g.Player2ID)
		}
	})

	t.Run("join in-progress game fails", func(t *testing.T) {
		g := NewGame(1, uintPtr(2), models.PlayerTypeHuman, "")
		if err := join(g, 3); !errors.Is(err, ErrCannotJoin) {
			t.Fatalf("join() error = %v, want ErrCannotJoin", err)
		}
	})

	t.Run("join twice fails", func(t *testing.T) {
		g := NewGame(1, nil, models.PlayerTypeHuman, "")
		if err := join(g, 2); err != nil {
			t.Fatalf("first join failed: %v", err)
		}
		if err := join(g, 3); !errors.Is(err, ErrCannotJoin) {
			t.Fatalf("second join error = %v, want ErrCannotJoin", err)
		}
	})
}

// 人間同士の対戦での基本フロー:
// 作成→参加→先手の着手→同じマスへの着手拒否→手番違いの拒否
func TestPlayMoveHumanVsHuman(t *testing.T) {
	g := NewGame(1, nil, models.PlayerTypeHuman, "")
	if g.Status != models.GameStatusWaiting {
		t.Fatalf("status = %q, want waiting", g.Status)
	}
	if err := join(g, 2); err != nil {
		t.Fatalf("join failed: %v", err)
	}

	if err := playMove(g, 1, 0); err != nil {
		t.Fatalf("first move failed: %v", err)
	}
	board, _ := ParseBoard(g.BoardState)
	if board[0] != MarkX {
		t.Fatalf("board[0] = %q, want X", board[0])
	}
	if g.CurrentTurn != MarkO {
		t.Fatalf("turn = %q, want O", g.CurrentTurn)
	}
	if g.TotalMoves != 1 {
		t.Fatalf("total moves = %d, want 1", g.TotalMoves)
	}

	// 同じマスへの着手は拒否され、状態は変わらない
	if err := playMove(g, 2, 0); !errors.Is(err, ErrInvalidMove) {
		t.Fatalf("occupied cell error = %v, want ErrInvalidMove", err)
	}
	if g.TotalMoves != 1 || g.CurrentTurn != MarkO {
		t.Fatalf("rejected move changed state: moves=%d turn=%q", g.TotalMoves, g.CurrentTurn)
	}

	// 手番ではないプレイヤーの着手は拒否される
	if err := playMove(g, 1, 4); !errors.Is(err, ErrNotYourTurn) {
		t.Fatalf("out-of-turn error = %v, want ErrNotYourTurn", err)
	}
}

func TestPlayMoveLifecycleGuards(t *testing.T) {
	t.Run("waiting game rejects moves", func(t *testing.T) {
		g := NewGame(1, nil, models.PlayerTypeHuman, "")
		if err := playMove(g, 1, 0); !errors.Is(err, ErrNotInProgress) {
			t.Fatalf("error = %v, want ErrNotInProgress", err)
		}
	})

	t.Run("completed game rejects moves", func(t *testing.T) {
		g := NewGame(1, uintPtr(2), models.PlayerTypeHuman, "")
		g.Status = models.GameStatusCompleted
		if err := playMove(g, 1, 0); !errors.Is(err, ErrNotInProgress) {
			t.Fatalf("error = %v, want ErrNotInProgress", err)
		}
	})

	t.Run("non-participant rejected", func(t *testing.T) {
		g := NewGame(1, uintPtr(2), models.PlayerTypeHuman, "")
		if err := playMove(g, 99, 0); !errors.Is(err, ErrNotYourTurn) {
			t.Fatalf("error = %v, want ErrNotYourTurn", err)
		}
	})
}

func TestPlayMoveWinCompletesGame(t *testing.T) {
	g := NewGame(1, uintPtr(2), models.PlayerTypeHuman, "")
	g.BoardState = boardOf("X", "X", "", "O", "O", "", "", "", "").Serialize()
	g.TotalMoves = 4

	if err := playMove(g, 1, 2); err != nil {
		t.Fatalf("winning move failed: %v", err)
	}
	if g.Status != models.GameStatusCompleted {
		t.Fatalf("status = %q, want completed", g.Status)
	}
	if g.Outcome != models.OutcomePlayer1Won {
		t.Fatalf("outcome = %q, want player1_won", g.Outcome)
	}
	if g.WinnerID == nil || *g.WinnerID != 1 {
		t.Fatalf("winner = %v, want 1", g.WinnerID)
	}
	if g.CompletedAt == nil {
		t.Fatal("completed_at not stamped")
	}
	if g.TotalMoves != 5 {
		t.Fatalf("total moves = %d, want 5", g.TotalMoves)
	}
}

func TestPlayMoveFullBoardIsDraw(t *testing.T) {
	g := NewGame(1, uintPtr(2), models.PlayerTypeHuman, "")
	g.BoardState = boardOf("X", "O", "X", "X", "O", "O", "O", "X", "").Serialize()
	g.TotalMoves = 8

	if err := playMove(g, 1, 8); err != nil {
		t.Fatalf("final move failed: %v", err)
	}
	if g.Status != models.GameStatusCompleted {
		t.Fatalf("status = %q, want completed", g.Status)
	}
	if g.Outcome != models.OutcomeDraw {
		t.Fatalf("outcome = %q, want draw", g.Outcome)
	}
	if g.WinnerID != nil {
		t.Fatalf("winner = %v, want nil on draw", g.WinnerID)
	}
}

// AI対戦では人間の1着手で最大2つの半手が適用される
func TestPlayMoveTriggersAIReply(t *testing.T) {
	g := NewGame(1, nil, models.PlayerTypeAI, DifficultyHard)
	if err := playMove(g, 1, 4); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if g.TotalMoves != 2 {
		t.Fatalf("total moves = %d, want 2 (human + AI reply)", g.TotalMoves)
	}
	if g.CurrentTurn != MarkX {
		t.Fatalf("turn = %q, want X after AI reply", g.CurrentTurn)
	}
	board, _ := ParseBoard(g.BoardState)
	oCount := 0
	for _, cell := range board {
		if cell == MarkO {
			oCount++
		}
	}
	if oCount != 1 {
		t.Fatalf("AI placed %d marks, want 1", oCount)
	}
}

// リーチ状態のhard AIは同一リクエスト内でラインを完成させてゲームを終える
func TestPlayMoveAIWinsInSameRequest(t *testing.T) {
	g := NewGame(1, nil, models.PlayerTypeAI, DifficultyHard)
	g.BoardState = boardOf("O", "O", "", "X", "", "", "", "", "X").Serialize()
	g.TotalMoves = 4

	if err := playMove(g, 1, 4); err != nil {
		t.Fatalf("move failed: %v", err)
	}
	if g.Status != models.GameStatusCompleted {
		t.Fatalf("status = %q, want completed", g.Status)
	}
	if g.Outcome != models.OutcomePlayer2Won {
		t.Fatalf("outcome = %q, want player2_won", g.Outcome)
	}
	if g.WinnerID != nil {
		t.Fatalf("winner = %v, want nil for AI win", g.WinnerID)
	}
	board, _ := ParseBoard(g.BoardState)
	if board[2] != MarkO {
		t.Fatalf("board[2] = %q, want O (AI completes the line)", board[2])
	}
	if g.TotalMoves != 6 {
		t.Fatalf("total moves = %d, want 6", g.TotalMoves)
	}
}

// 参加・着手・観戦登録は同一ゲームでは同じロックを共有する
func TestLockGamePerGame(t *testing.T) {
	s := NewService(nil, zap.NewNop())
	if s.lockGame(1) != s.lockGame(1) {
		t.Fatal("same game resolved to different locks")
	}
	if s.lockGame(1) == s.lockGame(2) {
		t.Fatal("different games share a lock")
	}
}

// ターンは厳密に交互になる
func TestTurnAlternation(t *testing.T) {
	g := NewGame(1, uintPtr(2), models.PlayerTypeHuman, "")
	moves := []struct {
		userID   uint
		position int
	}{
		{1, 0}, {2, 4}, {1, 1}, {2, 8},
	}
	expectedTurns := []string{MarkO, MarkX, MarkO, MarkX}

	for i, mv := range moves {
		if err := playMove(g, mv.userID, mv.position); err != nil {
			t.Fatalf("move %d failed: %v", i, err)
		}
		if g.CurrentTurn != expectedTurns[i] {
			t.Fatalf("after move %d turn = %q, want %q", i, g.CurrentTurn, expectedTurns[i])
		}
		if g.TotalMoves != i+1 {
			t.Fatalf("after move %d total moves = %d, want %d", i, g.TotalMoves, i+1)
		}
	}
}
