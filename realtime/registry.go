package realtime

import (
	"sync"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// wsConn は*websocket.Connのうちレジストリが必要とする操作
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Connection は1本のライブ接続。書き込みは内部ロックで直列化する
// （gorillaは並行書き込みを許さない）。
type Connection struct {
	ID string
	ws wsConn
	mu sync.Mutex
}

func (c *Connection) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ws.WriteMessage(messageType, data)
}

// Ping はキープアライブ用のPingフレームを送る
func (c *Connection) Ping() error {
	return c.write(websocket.PingMessage, nil)
}

// Close は下位のトランスポートを閉じる
func (c *Connection) Close() error {
	return c.ws.Close()
}

// Registry はユーザーとライブ接続の対応を保持する。プロセスローカルであり、
// 別プロセスが持つ接続への送達はここでは解決しない。
type Registry struct {
	mu     sync.RWMutex
	conns  map[uint]*Connection
	logger *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		conns:  make(map[uint]*Connection),
		logger: logger,
	}
}

// Connect は新しい接続を登録する。同一ユーザーの旧接続が残っていれば
// ハンドルをリークさせないよう明示的に閉じてから差し替える。
func (r *Registry) Connect(userID uint, ws wsConn) *Connection {
	conn := &Connection{ID: uuid.New().String(), ws: ws}

	r.mu.Lock()
	old := r.conns[userID]
	r.conns[userID] = conn
	r.mu.Unlock()

	if old != nil {
		old.Close()
		r.logger.Info("Replaced stale connection", zap.Uint("userID", userID), zap.String("oldConnID", old.ID))
	}
	r.logger.Info("Client connected", zap.Uint("userID", userID), zap.String("connID", conn.ID))
	return conn
}

// Disconnect は接続の登録を外す。接続の差し替え後に旧リーダーが
// 終了した場合に新しい接続を外してしまわないよう、IDの一致を確認する。
func (r *Registry) Disconnect(userID uint, connID string) {
	r.mu.Lock()
	current, ok := r.conns[userID]
	if ok && current.ID == connID {
		delete(r.conns, userID)
	} else {
		ok = false
	}
	r.mu.Unlock()

	if ok {
		r.logger.Info("Client disconnected", zap.Uint("userID", userID), zap.String("connID", connID))
	}
}

// Send はユーザーのライブ接続にペイロードを送る。接続が無ければ何もしない。
// 書き込みに失敗した接続は死んだものとして登録から外し、閉じる。
func (r *Registry) Send(userID uint, payload []byte) {
	r.mu.RLock()
	conn := r.conns[userID]
	r.mu.RUnlock()
	if conn == nil {
		return
	}

	if err := conn.write(websocket.TextMessage, payload); err != nil {
		r.logger.Error("Failed to send message, dropping connection",
			zap.Uint("userID", userID),
			zap.String("connID", conn.ID),
			zap.Error(err),
		)
		r.Disconnect(userID, conn.ID)
		conn.Close()
	}
}

// Broadcast は接続中の全ユーザーにペイロードを送る
func (r *Registry) Broadcast(payload []byte) {
	for _, userID := range r.ConnectedUsers() {
		r.Send(userID, payload)
	}
}

// ConnectedUsers は接続中ユーザーのIDを返す
func (r *Registry) ConnectedUsers() []uint {
	r.mu.RLock()
	defer r.mu.RUnlock()
	users := make([]uint, 0, len(r.conns))
	for userID := range r.conns {
		users = append(users, userID)
	}
	return users
}
