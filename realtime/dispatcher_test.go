package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"tttserver/models"

	"go.uber.org/zap"
)

type fakeObservers struct {
	mu   sync.Mutex
	sets map[uint]map[uint]bool
}

func newFakeObservers() *fakeObservers {
	return &fakeObservers{sets: make(map[uint]map[uint]bool)}
}

func (f *fakeObservers) AddObserver(ctx context.Context, gameID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sets[gameID] == nil {
		f.sets[gameID] = make(map[uint]bool)
	}
	f.sets[gameID][userID] = true
	return nil
}

func (f *fakeObservers) RemoveObserver(ctx context.Context, gameID, userID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sets[gameID], userID)
	return nil
}

func (f *fakeObservers) ListObservers(ctx context.Context, gameID uint) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var observers []uint
	for userID := range f.sets[gameID] {
		observers = append(observers, userID)
	}
	return observers, nil
}

type fakeSender struct {
	mu         sync.Mutex
	sent       map[uint][][]byte
	broadcasts [][]byte
}

func newFakeSender() *fakeSender {
	return &fakeSender{sent: make(map[uint][][]byte)}
}

func (f *fakeSender) Send(userID uint, payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent[userID] = append(f.sent[userID], payload)
}

func (f *fakeSender) Broadcast(payload []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.broadcasts = append(f.broadcasts, payload)
}

func (f *fakeSender) lastSentTo(userID uint) *models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	payloads := f.sent[userID]
	if len(payloads) == 0 {
		return nil
	}
	var msg models.Message
	if err := json.Unmarshal(payloads[len(payloads)-1], &msg); err != nil {
		return nil
	}
	return &msg
}

func TestHandleInboundJoinGame(t *testing.T) {
	observers := newFakeObservers()
	sender := newFakeSender()
	dispatcher := NewDispatcher(sender, observers, zap.NewNop())

	raw := []byte(`{"type":"join_game","data":{"game_id":7}}`)
	dispatcher.HandleInbound(context.Background(), 3, raw)

	if !observers.sets[7][3] {
		t.Fatal("user 3 was not registered as observer of game 7")
	}

	msg := sender.lastSentTo(3)
	if msg == nil || msg.Type != models.MessagePlayerJoined {
		t.Fatalf("expected player_joined notification, got %+v", msg)
	}
	var event models.PlayerEvent
	if err := json.Unmarshal(msg.Data, &event); err != nil {
		t.Fatalf("failed to decode event data: %v", err)
	}
	if event.GameID != 7 || event.UserID != 3 {
		t.Fatalf("event = %+v, want game 7 user 3", event)
	}
}

func TestHandleInboundLeaveGame(t *testing.T) {
	observers := newFakeObservers()
	sender := newFakeSender()
	dispatcher := NewDispatcher(sender, observers, zap.NewNop())

	observers.AddObserver(context.Background(), 7, 3)
	observers.AddObserver(context.Background(), 7, 4)

	raw := []byte(`{"type":"leave_game","data":{"game_id":7}}`)
	dispatcher.HandleInbound(context.Background(), 3, raw)

	if observers.sets[7][3] {
		t.Fatal("user 3 still observing game 7 after leave")
	}
	// 退出通知は残りの観戦者に届く
	msg := sender.lastSentTo(4)
	if msg == nil || msg.Type != models.MessagePlayerLeft {
		t.Fatalf("expected player_left notification, got %+v", msg)
	}
}

func TestHandleInboundRelayUpdate(t *testing.T) {
	observers := newFakeObservers()
	sender := newFakeSender()
	dispatcher := NewDispatcher(sender, observers, zap.NewNop())

	observers.AddObserver(context.Background(), 9, 1)
	observers.AddObserver(context.Background(), 9, 2)

	raw := []byte(`{"type":"game_update","data":{"game_id":9,"note":"hi"}}`)
	dispatcher.HandleInbound(context.Background(), 1, raw)

	for _, userID := range []uint{1, 2} {
		msg := sender.lastSentTo(userID)
		if msg == nil || msg.Type != models.MessageGameUpdate {
			t.Fatalf("user %d: expected game_update, got %+v", userID, msg)
		}
	}
}

func TestHandleInboundUnknownTypeIgnored(t *testing.T) {
	observers := newFakeObservers()
	sender := newFakeSender()
	dispatcher := NewDispatcher(sender, observers, zap.NewNop())

	dispatcher.HandleInbound(context.Background(), 1, []byte(`{"type":"mystery","data":{}}`))
	dispatcher.HandleInbound(context.Background(), 1, []byte(`not json at all`))

	if len(sender.sent) != 0 || len(sender.broadcasts) != 0 {
		t.Fatal("unknown or malformed messages must not produce notifications")
	}
}

func TestNotifyGameUpdate(t *testing.T) {
	observers := newFakeObservers()
	sender := newFakeSender()
	dispatcher := NewDispatcher(sender, observers, zap.NewNop())

	observers.AddObserver(context.Background(), 5, 1)
	observers.AddObserver(context.Background(), 5, 2)

	dispatcher.NotifyGameUpdate(context.Background(), 5, map[string]interface{}{"status": "in_progress"})

	for _, userID := range []uint{1, 2} {
		msg := sender.lastSentTo(userID)
		if msg == nil || msg.Type != models.MessageGameUpdate {
			t.Fatalf("user %d: expected game_update, got %+v", userID, msg)
		}
	}
	if sender.lastSentTo(3) != nil {
		t.Fatal("non-observer received a game update")
	}
}

func TestNotifyGamesListUpdate(t *testing.T) {
	observers := newFakeObservers()
	sender := newFakeSender()
	dispatcher := NewDispatcher(sender, observers, zap.NewNop())

	dispatcher.NotifyGamesListUpdate(context.Background())

	if len(sender.broadcasts) != 1 {
		t.Fatalf("broadcast count = %d, want 1", len(sender.broadcasts))
	}
	var msg models.Message
	if err := json.Unmarshal(sender.broadcasts[0], &msg); err != nil {
		t.Fatalf("failed to decode broadcast: %v", err)
	}
	if msg.Type != models.MessageGamesListUpdate {
		t.Fatalf("type = %q, want games_list_update", msg.Type)
	}
}
