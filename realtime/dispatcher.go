package realtime

import (
	"context"
	"encoding/json"

	"tttserver/models"

	"go.uber.org/zap"
)

// ObserverStore は観戦者集合の読み書き
type ObserverStore interface {
	AddObserver(ctx context.Context, gameID, userID uint) error
	RemoveObserver(ctx context.Context, gameID, userID uint) error
	ListObservers(ctx context.Context, gameID uint) ([]uint, error)
}

// ConnectionSender はライブ接続への送達
type ConnectionSender interface {
	Send(userID uint, payload []byte)
	Broadcast(payload []byte)
}

// Dispatcher は観戦者解決と接続送達を合成し、通知の配信を担う。
// ライブ接続へpushするのはこのコンポーネントだけ。
type Dispatcher struct {
	connections ConnectionSender
	observers   ObserverStore
	logger      *zap.Logger
}

func NewDispatcher(connections ConnectionSender, observers ObserverStore, logger *zap.Logger) *Dispatcher {
	return &Dispatcher{
		connections: connections,
		observers:   observers,
		logger:      logger,
	}
}

// NotifyGameUpdate はゲームの観戦者全員に最新スナップショットを配信する
func (d *Dispatcher) NotifyGameUpdate(ctx context.Context, gameID uint, snapshot interface{}) {
	d.broadcastToGame(ctx, gameID, map[string]interface{}{
		"type": models.MessageGameUpdate,
		"data": map[string]interface{}{
			"game_id": gameID,
			"game":    snapshot,
		},
	})
}

// NotifyGamesListUpdate は接続中の全ユーザーに一覧更新シグナルを配信する
func (d *Dispatcher) NotifyGamesListUpdate(ctx context.Context) {
	payload, err := json.Marshal(map[string]interface{}{
		"type": models.MessageGamesListUpdate,
		"data": map[string]interface{}{},
	})
	if err != nil {
		d.logger.Error("Failed to marshal games list update", zap.Error(err))
		return
	}
	d.connections.Broadcast(payload)
}

// HandleInbound は受信メッセージをtypeタグで振り分ける。
// 未知のtypeはログに残して無視する（致命的にはしない）。
func (d *Dispatcher) HandleInbound(ctx context.Context, userID uint, raw []byte) {
	var msg models.Message
	if err := json.Unmarshal(raw, &msg); err != nil {
		d.logger.Error("Failed to decode inbound message", zap.Uint("userID", userID), zap.Error(err))
		return
	}

	switch msg.Type {
	case models.MessageJoinGame:
		d.handleJoinGame(ctx, userID, msg.Data)
	case models.MessageLeaveGame:
		d.handleLeaveGame(ctx, userID, msg.Data)
	case models.MessageGameUpdate:
		d.handleRelayUpdate(ctx, msg.Data)
	default:
		d.logger.Info("Received unknown message type",
			zap.Uint("userID", userID),
			zap.String("type", msg.Type),
		)
	}
}

func (d *Dispatcher) handleJoinGame(ctx context.Context, userID uint, data json.RawMessage) {
	var ref models.GameRef
	if err := json.Unmarshal(data, &ref); err != nil || ref.GameID == 0 {
		return
	}
	if err := d.observers.AddObserver(ctx, ref.GameID, userID); err != nil {
		d.logger.Error("Failed to add observer", zap.Uint("gameID", ref.GameID), zap.Error(err))
		return
	}
	d.broadcastToGame(ctx, ref.GameID, map[string]interface{}{
		"type": models.MessagePlayerJoined,
		"data": models.PlayerEvent{GameID: ref.GameID, UserID: userID},
	})
}

func (d *Dispatcher) handleLeaveGame(ctx context.Context, userID uint, data json.RawMessage) {
	var ref models.GameRef
	if err := json.Unmarshal(data, &ref); err != nil || ref.GameID == 0 {
		return
	}
	if err := d.observers.RemoveObserver(ctx, ref.GameID, userID); err != nil {
		d.logger.Error("Failed to remove observer", zap.Uint("gameID", ref.GameID), zap.Error(err))
		return
	}
	d.broadcastToGame(ctx, ref.GameID, map[string]interface{}{
		"type": models.MessagePlayerLeft,
		"data": models.PlayerEvent{GameID: ref.GameID, UserID: userID},
	})
}

// handleRelayUpdate は任意のペイロードをゲームの観戦者にそのまま再配信する
func (d *Dispatcher) handleRelayUpdate(ctx context.Context, data json.RawMessage) {
	var ref models.GameRef
	if err := json.Unmarshal(data, &ref); err != nil || ref.GameID == 0 {
		return
	}
	d.broadcastToGame(ctx, ref.GameID, map[string]interface{}{
		"type": models.MessageGameUpdate,
		"data": data,
	})
}

// broadcastToGame は観戦者を解決し、1人ずつベストエフォートで送達する。
// 1人への送達失敗が残りの送達を妨げることはない。
func (d *Dispatcher) broadcastToGame(ctx context.Context, gameID uint, message interface{}) {
	observers, err := d.observers.ListObservers(ctx, gameID)
	if err != nil {
		d.logger.Error("Failed to resolve observers", zap.Uint("gameID", gameID), zap.Error(err))
		return
	}
	payload, err := json.Marshal(message)
	if err != nil {
		d.logger.Error("Failed to marshal broadcast message", zap.Uint("gameID", gameID), zap.Error(err))
		return
	}
	for _, userID := range observers {
		d.connections.Send(userID, payload)
	}
}
