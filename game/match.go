package game

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"tttserver/models"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service は1ゲームのライフサイクルと着手裁定を担う。
// 同一ゲームへの並行着手はゲームIDごとのロックで直列化する。
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
	locks  sync.Map // ゲームID -> *sync.Mutex
}

func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{db: db, logger: logger}
}

// lockGame は対象ゲーム専用のロックを返す。ゲームをまたぐ直列化はしない。
func (s *Service) lockGame(gameID uint) *sync.Mutex {
	mu, _ := s.locks.LoadOrStore(gameID, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// NewGame はゲームレコードの初期状態を組み立てる。
// 人間対戦で相手が未定ならwaiting、それ以外は即in_progressで開始する。
func NewGame(player1ID uint, player2ID *uint, player2Type, aiDifficulty string) *models.Game {
	if player2Type == "" {
		player2Type = models.PlayerTypeHuman
	}
	if aiDifficulty == "" {
		aiDifficulty = DifficultyMedium
	}
	status := models.GameStatusInProgress
	if player2Type == models.PlayerTypeHuman && player2ID == nil {
		status = models.GameStatusWaiting
	}
	return &models.Game{
		Player1ID:    player1ID,
		Player2ID:    player2ID,
		Player2Type:  player2Type,
		AIDifficulty: aiDifficulty,
		BoardState:   models.EmptyBoardState,
		CurrentTurn:  MarkX,
		Status:       status,
	}
}

// CreateGame は新しいゲームを作成して保存する
func (s *Service) CreateGame(player1ID uint, player2ID *uint, player2Type, aiDifficulty string) (*models.Game, error) {
	g := NewGame(player1ID, player2ID, player2Type, aiDifficulty)
	if err := s.db.Create(g).Error; err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	s.logger.Info("Game created",
		zap.Uint("gameID", g.ID),
		zap.Uint("player1ID", g.Player1ID),
		zap.String("player2Type", g.Player2Type),
		zap.String("status", g.Status),
	)
	return g, nil
}

// GetGame はIDでゲームを取得する。見つからない場合はErrGameNotFound。
func (s *Service) GetGame(gameID uint) (*models.Game, error) {
	var g models.Game
	if err := s.db.First(&g, gameID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGameNotFound
		}
		return nil, fmt.Errorf("failed to fetch game: %w", err)
	}
	return &g, nil
}

// ActiveGames はwaiting/in_progressのゲーム一覧を新しい順に返す
func (s *Service) ActiveGames(limit int) ([]models.GameListItem, error) {
	var games []models.Game
	err := s.db.
		Where("status IN ?", []string{models.GameStatusWaiting, models.GameStatusInProgress}).
		Order("created_at DESC").
		Limit(limit).
		Find(&games).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active games: %w", err)
	}

	items := make([]models.GameListItem, 0, len(games))
	for _, g := range games {
		var observerCount int64
		s.db.Model(&models.GameObserver{}).Where("game_id = ?", g.ID).Count(&observerCount)

		var player1Name string
		s.db.Model(&models.User{}).Select("username").Where("id = ?", g.Player1ID).Scan(&player1Name)
		if player1Name == "" {
			player1Name = "Unknown"
		}

		var player2Name *string
		if g.Player2ID != nil {
			var name string
			s.db.Model(&models.User{}).Select("username").Where("id = ?", *g.Player2ID).Scan(&name)
			if name != "" {
				player2Name = &name
			}
		} else if g.Player2Type == models.PlayerTypeAI {
			name := "AI"
			player2Name = &name
		}

		items = append(items, models.GameListItem{
			ID:              g.ID,
			Player1Username: player1Name,
			Player2Username: player2Name,
			Player2Type:     g.Player2Type,
			Status:          g.Status,
			CreatedAt:       g.CreatedAt,
			ObserverCount:   observerCount,
		})
	}
	return items, nil
}

// JoinGame は2人目のプレイヤーとして参加する
func (s *Service) JoinGame(gameID, userID uint) (*models.Game, error) {
	mu := s.lockGame(gameID)
	mu.Lock()
	defer mu.Unlock()

	g, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if err := join(g, userID); err != nil {
		return nil, err
	}
	if err := s.db.Save(g).Error; err != nil {
		return nil, fmt.Errorf("failed to save game: %w", err)
	}
	s.logger.Info("Player joined game", zap.Uint("gameID", gameID), zap.Uint("userID", userID))
	return g, nil
}

// AddObserver は観戦メンバーシップを登録する。既に観戦中なら何もしない。
// 同じゲームへの同時リクエストが重複行を作らないよう、他の遷移と同じロックを取る。
func (s *Service) AddObserver(gameID, userID uint) error {
	mu := s.lockGame(gameID)
	mu.Lock()
	defer mu.Unlock()

	if _, err := s.GetGame(gameID); err != nil {
		return err
	}
	observer := models.GameObserver{GameID: gameID, UserID: userID}
	err := s.db.
		Where("game_id = ? AND user_id = ?", gameID, userID).
		FirstOrCreate(&observer).Error
	if err != nil {
		return fmt.Errorf("failed to add observer: %w", err)
	}
	return nil
}

// MakeMove は着手を裁定・適用する。AI対戦でAIの手番になった場合は
// 同一リクエスト内で応手まで適用してから保存する（観戦者からは
// 2つの半手がひとつの遷移として見える）。
func (s *Service) MakeMove(gameID, userID uint, position int) (*models.Game, error) {
	mu := s.lockGame(gameID)
	mu.Lock()
	defer mu.Unlock()

	g, err := s.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if err := playMove(g, userID, position); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(g).Error; err != nil {
			return err
		}
		if g.Status == models.GameStatusCompleted {
			return s.recordResult(tx, g)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to persist move: %w", err)
	}

	s.logger.Info("Move applied",
		zap.Uint("gameID", gameID),
		zap.Uint("userID", userID),
		zap.Int("position", position),
		zap.Int("totalMoves", g.TotalMoves),
		zap.String("status", g.Status),
	)
	return g, nil
}

// join はメモリ上のゲームに参加遷移を適用する
func join(g *models.Game, userID uint) error {
	if g.Status != models.GameStatusWaiting || g.Player2ID != nil {
		return ErrCannotJoin
	}
	g.Player2ID = &userID
	g.Status = models.GameStatusInProgress
	return nil
}

// playMove はメモリ上のゲームに人間の半手とAIの応手を適用する。
// エラー時はゲームを変更せずに返す。
func playMove(g *models.Game, userID uint, position int) error {
	if g.Status != models.GameStatusInProgress {
		return ErrNotInProgress
	}

	// 手番のスロットと着手ユーザーの一致を確認
	if g.CurrentTurn == MarkX {
		if g.Player1ID != userID {
			return ErrNotYourTurn
		}
	} else {
		if g.Player2ID == nil || *g.Player2ID != userID {
			return ErrNotYourTurn
		}
	}

	if err := advance(g, g.CurrentTurn, position); err != nil {
		return err
	}

	// AIの手番になったら同期的に応手を適用する
	if g.Status == models.GameStatusInProgress &&
		g.Player2Type == models.PlayerTypeAI &&
		g.CurrentTurn == MarkO {
		board, err := ParseBoard(g.BoardState)
		if err != nil {
			return err
		}
		aiPosition := ChooseMove(board, g.AIDifficulty)
		if aiPosition == NoMove {
			// 合法手なしはno-op扱い
			return nil
		}
		if err := advance(g, MarkO, aiPosition); err != nil {
			return err
		}
	}
	return nil
}

// advance は1半手分の盤面更新と勝敗・手番の遷移を行う
func advance(g *models.Game, mark string, position int) error {
	board, err := ParseBoard(g.BoardState)
	if err != nil {
		return err
	}
	board, err = board.Apply(position, mark)
	if err != nil {
		return err
	}
	g.BoardState = board.Serialize()
	g.TotalMoves++

	if winner := board.Winner(); winner != "" {
		finishGame(g, winner)
	} else if board.IsFull() {
		finishGame(g, "")
	} else if g.CurrentTurn == MarkX {
		g.CurrentTurn = MarkO
	} else {
		g.CurrentTurn = MarkX
	}
	return nil
}

// finishGame は決着状態への遷移。winnerMarkが空なら引き分け。
func finishGame(g *models.Game, winnerMark string) {
	now := time.Now()
	g.Status = models.GameStatusCompleted
	g.CompletedAt = &now
	switch winnerMark {
	case MarkX:
		g.Outcome = models.OutcomePlayer1Won
		winnerID := g.Player1ID
		g.WinnerID = &winnerID
	case MarkO:
		g.Outcome = models.OutcomePlayer2Won
		if g.Player2ID != nil {
			winnerID := *g.Player2ID
			g.WinnerID = &winnerID
		}
		// AIの勝利はWinnerIDをnullのままにし、Outcomeで判別する
	default:
		g.Outcome = models.OutcomeDraw
	}
}
