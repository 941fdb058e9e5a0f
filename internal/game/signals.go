package game

import "cardhouse/internal/events"

// PendingBets returns the table's bet queue without draining it. An absent
// table reports an empty queue.
func (e *Engine) PendingBets(tableID string) []BetSignal {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.tables[tableID]
	if t == nil || len(t.BetSignals) == 0 {
		return nil
	}
	out := make([]BetSignal, len(t.BetSignals))
	copy(out, t.BetSignals)
	return out
}

func (e *Engine) PendingMoves(tableID string) []MoveSignal {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.tables[tableID]
	if t == nil || len(t.MoveSignals) == 0 {
		return nil
	}
	out := make([]MoveSignal, len(t.MoveSignals))
	copy(out, t.MoveSignals)
	return out
}

// ClearSignals drops up to betCount and moveCount signals from the front of
// the queues. A count past the queue length clears it; a wrong count from the
// backend can drop signals it never read, there is no cursor protocol.
func (e *Engine) ClearSignals(tableID string, betCount, moveCount int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return ErrPaused
	}
	t := e.tables[tableID]
	if t == nil {
		return ErrTableNotFound
	}
	if betCount > len(t.BetSignals) {
		betCount = len(t.BetSignals)
	}
	if betCount > 0 {
		t.BetSignals = append([]BetSignal(nil), t.BetSignals[betCount:]...)
	}
	if moveCount > len(t.MoveSignals) {
		moveCount = len(t.MoveSignals)
	}
	if moveCount > 0 {
		t.MoveSignals = append([]MoveSignal(nil), t.MoveSignals[moveCount:]...)
	}
	t.LastActivity = e.now()

	e.bus.Publish(events.SignalsCleared, tableID, map[string]any{
		"bets":  betCount,
		"moves": moveCount,
	})
	return nil
}
