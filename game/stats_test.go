package game

import (
	"testing"

	"tttserver/models"
)

func TestResultFor(t *testing.T) {
	tests := []struct {
		name     string
		outcome  string
		slot     int
		wantWon  bool
		wantLost bool
		wantDraw bool
	}{
		{name: "player1 wins slot1", outcome: models.OutcomePlayer1Won, slot: 1, wantWon: true},
		{name: "player1 wins slot2", outcome: models.OutcomePlayer1Won, slot: 2, wantLost: true},
		{name: "player2 wins slot1", outcome: models.OutcomePlayer2Won, slot: 1, wantLost: true},
		{name: "player2 wins slot2", outcome: models.OutcomePlayer2Won, slot: 2, wantWon: true},
		{name: "draw slot1", outcome: models.OutcomeDraw, slot: 1, wantDraw: true},
		{name: "draw slot2", outcome: models.OutcomeDraw, slot: 2, wantDraw: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &models.Game{Outcome: tt.outcome}
			won, lost, drawn := resultFor(g, tt.slot)
			if won != tt.wantWon || lost != tt.wantLost || drawn != tt.wantDraw {
				t.Fatalf("resultFor() = (%v, %v, %v), want (%v, %v, %v)",
					won, lost, drawn, tt.wantWon, tt.wantLost, tt.wantDraw)
			}
		})
	}
}

func TestGameSnapshot(t *testing.T) {
	winnerID := uint(1)
	g := &models.Game{
		Player1ID:   1,
		Player2Type: models.PlayerTypeHuman,
		BoardState:  boardOf("X", "X", "X", "O", "O", "", "", "", "").Serialize(),
		CurrentTurn: MarkX,
		Status:      models.GameStatusCompleted,
		WinnerID:    &winnerID,
		Outcome:     models.OutcomePlayer1Won,
		TotalMoves:  5,
	}
	snapshot := GameSnapshot(g)
	if len(snapshot.BoardState) != 9 {
		t.Fatalf("board state has %d cells, want 9", len(snapshot.BoardState))
	}
	if snapshot.BoardState[0] != "X" || snapshot.BoardState[4] != "O" {
		t.Fatalf("board state = %v", snapshot.BoardState)
	}
	if snapshot.Outcome != models.OutcomePlayer1Won {
		t.Fatalf("outcome = %q", snapshot.Outcome)
	}
}
