package game

import (
	"errors"
	"testing"
)

func boardOf(cells ...string) Board {
	var b Board
	copy(b[:], cells)
	return b
}

func TestBoardWinner(t *testing.T) {
	tests := []struct {
		name  string
		board Board
		want  string
	}{
		{name: "empty board", board: Board{}, want: ""},
		{name: "top row X", board: boardOf("X", "X", "X", "O", "O", "", "", "", ""), want: "X"},
		{name: "middle row O", board: boardOf("X", "", "X", "O", "O", "O", "X", "", ""), want: "O"},
		{name: "bottom row X", board: boardOf("O", "O", "", "", "", "", "X", "X", "X"), want: "X"},
		{name: "left column X", board: boardOf("X", "O", "", "X", "O", "", "X", "", ""), want: "X"},
		{name: "middle column O", board: boardOf("X", "O", "", "X", "O", "", "", "O", "X"), want: "O"},
		{name: "right column O", board: boardOf("X", "", "O", "X", "", "O", "", "X", "O"), want: "O"},
		{name: "main diagonal X", board: boardOf("X", "O", "", "O", "X", "", "", "", "X"), want: "X"},
		{name: "anti diagonal O", board: boardOf("X", "X", "O", "", "O", "", "O", "", "X"), want: "O"},
		{name: "no winner in progress", board: boardOf("X", "O", "X", "", "O", "", "", "X", ""), want: ""},
		{name: "full board draw", board: boardOf("X", "O", "X", "X", "O", "O", "O", "X", "X"), want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.board.Winner(); got != tt.want {
				t.Fatalf("Winner() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestBoardApply(t *testing.T) {
	tests := []struct {
		name     string
		board    Board
		position int
		wantErr  bool
	}{
		{name: "valid move on empty cell", board: Board{}, position: 4, wantErr: false},
		{name: "position below range", board: Board{}, position: -1, wantErr: true},
		{name: "position above range", board: Board{}, position: 9, wantErr: true},
		{name: "occupied cell", board: boardOf("X", "", "", "", "", "", "", "", ""), position: 0, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.board.Apply(tt.position, MarkX)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidMove) {
					t.Fatalf("Apply() error = %v, want ErrInvalidMove", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Apply() unexpected error: %v", err)
			}
			if got[tt.position] != MarkX {
				t.Fatalf("Apply() did not place mark at %d", tt.position)
			}
		})
	}
}

func TestBoardApplyIsPure(t *testing.T) {
	original := Board{}
	applied, err := original.Apply(0, MarkX)
	if err != nil {
		t.Fatalf("Apply() unexpected error: %v", err)
	}
	if original[0] != "" {
		t.Fatalf("Apply() mutated the receiver: %v", original)
	}
	if applied[0] != MarkX {
		t.Fatalf("Apply() result missing mark: %v", applied)
	}
}

func TestBoardIsFull(t *testing.T) {
	if (Board{}).IsFull() {
		t.Fatal("empty board reported as full")
	}
	full := boardOf("X", "O", "X", "X", "O", "O", "O", "X", "X")
	if !full.IsFull() {
		t.Fatal("full board not reported as full")
	}
	almost := full
	almost[8] = ""
	if almost.IsFull() {
		t.Fatal("board with one empty cell reported as full")
	}
}

func TestParseBoard(t *testing.T) {
	board, err := ParseBoard(`["X","","","","O","","","",""]`)
	if err != nil {
		t.Fatalf("ParseBoard() unexpected error: %v", err)
	}
	if board[0] != "X" || board[4] != "O" {
		t.Fatalf("ParseBoard() = %v", board)
	}

	if _, err := ParseBoard("not json"); err == nil {
		t.Fatal("ParseBoard() accepted malformed input")
	}
	if _, err := ParseBoard(`["",""]`); err == nil {
		t.Fatal("ParseBoard() accepted wrong cell count")
	}
}

func TestBoardSerializeRoundTrip(t *testing.T) {
	board := boardOf("X", "O", "", "", "X", "", "", "", "O")
	parsed, err := ParseBoard(board.Serialize())
	if err != nil {
		t.Fatalf("round trip failed: %v", err)
	}
	if parsed != board {
		t.Fatalf("round trip = %v, want %v", parsed, board)
	}
}
