package events

import (
	"strconv"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Event names emitted by the game engine. Events exist only for successful
// actions; failed attempts leave no trace.
const (
	TableCreated        = "table_created"
	TableClosed         = "table_closed"
	PlayerJoined        = "player_joined"
	PlayerLeft          = "player_left"
	PlayerKicked        = "player_kicked"
	BetPlaced           = "bet_placed"
	MoveSignaled        = "move_signaled"
	GameStateChanged    = "game_state_changed"
	TurnChanged         = "turn_changed"
	WinningsDistributed = "winnings_distributed"
	SignalsCleared      = "signals_cleared"
	EmergencyRefund     = "emergency_refund"
	GlobalPause         = "global_pause"
	GlobalResume        = "global_resume"
)

type Event struct {
	EventID  string         `json:"event_id"`
	Event    string         `json:"event"`
	TableID  string         `json:"table_id"`
	ServerTS int64          `json:"server_ts"`
	Data     map[string]any `json:"data"`
}

// Bus is a bounded replay buffer with live watchers. Every published event is
// also mirrored to the global zerolog logger.
type Bus struct {
	mu       sync.Mutex
	nextID   int64
	max      int
	events   []Event
	watchers map[chan Event]struct{}
	closed   bool
}

func NewBus(max int) *Bus {
	if max <= 0 {
		max = 500
	}
	return &Bus{
		max:      max,
		watchers: map[chan Event]struct{}{},
	}
}

func (b *Bus) Publish(event, tableID string, data map[string]any) Event {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Event{}
	}
	b.nextID++
	ev := Event{
		EventID:  strconv.FormatInt(b.nextID, 10),
		Event:    event,
		TableID:  tableID,
		ServerTS: time.Now().UnixMilli(),
		Data:     data,
	}
	b.events = append(b.events, ev)
	if len(b.events) > b.max {
		b.events = b.events[len(b.events)-b.max:]
	}
	for ch := range b.watchers {
		select {
		case ch <- ev:
		default:
		}
	}
	b.mu.Unlock()

	log.Info().
		Str("event", event).
		Str("table_id", tableID).
		Fields(map[string]any{"data": data}).
		Msg("game event")
	return ev
}

// ReplayAfter returns buffered events for a table newer than lastEventID.
// An empty or unparsable lastEventID replays the whole buffer.
func (b *Bus) ReplayAfter(tableID, lastEventID string) []Event {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.events) == 0 {
		return nil
	}
	last, err := strconv.ParseInt(lastEventID, 10, 64)
	if lastEventID == "" || err != nil {
		last = 0
	}
	out := make([]Event, 0, len(b.events))
	for _, ev := range b.events {
		if tableID != "" && ev.TableID != tableID {
			continue
		}
		id, _ := strconv.ParseInt(ev.EventID, 10, 64)
		if id > last {
			out = append(out, ev)
		}
	}
	return out
}

func (b *Bus) Subscribe() chan Event {
	ch := make(chan Event, 32)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return ch
	}
	b.watchers[ch] = struct{}{}
	return ch
}

func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watchers[ch]; ok {
		delete(b.watchers, ch)
		close(ch)
	}
}

func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.watchers {
		close(ch)
		delete(b.watchers, ch)
	}
}
