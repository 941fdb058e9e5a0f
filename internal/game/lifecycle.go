package game

import (
	"context"
	"time"

	"cardhouse/internal/bank"
	"cardhouse/internal/events"
)

// AdvanceState moves a table to the given phase and applies that phase's
// entry side effects. Transitions are driven externally; the machine never
// advances on its own except for settlement's loop-back.
func (e *Engine) AdvanceState(tableID string, state GameState) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return ErrPaused
	}
	t := e.tables[tableID]
	if t == nil {
		return ErrTableNotFound
	}
	e.enterState(t, state)
	return nil
}

// enterState applies the per-phase side effects. Caller holds the lock.
func (e *Engine) enterState(t *Table, state GameState) {
	now := e.now()
	from := t.State
	t.State = state
	t.LastActivity = now

	switch state {
	case StateWaitingForPlayers:
		t.CurrentSeat = 0
		t.BettingDeadline = time.Time{}
		t.MoveDeadline = time.Time{}
	case StateBetting:
		for _, p := range t.Seats {
			if p == nil {
				continue
			}
			if p.State == PlayerObserving || p.State == PlayerWaitingForNextRound {
				p.State = PlayerActive
			}
			p.Hands = nil
			p.CurrentHand = 0
			p.BurnedThisRound = 0
			p.BurnHistory = nil
		}
		t.Pot = 0
		t.CurrentSeat = 0
		t.BettingDeadline = now.Add(e.cfg.BettingTimeout)
		t.MoveDeadline = time.Time{}
	case StateDealingInitialCards:
		t.BettingDeadline = time.Time{}
		t.MoveDeadline = time.Time{}
	case StatePlayerTurn:
		t.BettingDeadline = time.Time{}
		t.CurrentSeat = t.firstEligibleSeat()
		if t.CurrentSeat != 0 {
			t.MoveDeadline = now.Add(e.cfg.MoveTimeout)
		} else {
			t.MoveDeadline = time.Time{}
		}
	case StateDealerTurn:
		t.CurrentSeat = 0
		t.BettingDeadline = time.Time{}
		t.MoveDeadline = time.Time{}
	case StateRoundEnded:
		t.CurrentSeat = 0
		t.BettingDeadline = time.Time{}
		t.MoveDeadline = time.Time{}
		t.Round++
	}

	e.bus.Publish(events.GameStateChanged, t.ID, map[string]any{
		"from":  string(from),
		"to":    string(state),
		"round": t.Round,
	})
}

// SetCurrentPlayer overrides the turn holder. The seat must hold an Active
// player with a live stake, the same invariant normal advancement keeps.
func (e *Engine) SetCurrentPlayer(tableID string, seatNo int) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return ErrPaused
	}
	t := e.tables[tableID]
	if t == nil {
		return ErrTableNotFound
	}
	p := t.seat(seatNo)
	if p == nil || p.State != PlayerActive || p.BurnedThisRound == 0 {
		return ErrBadSeat
	}
	now := e.now()
	t.CurrentSeat = seatNo
	t.BettingDeadline = time.Time{}
	t.MoveDeadline = now.Add(e.cfg.MoveTimeout)
	t.LastActivity = now

	e.bus.Publish(events.TurnChanged, tableID, map[string]any{
		"seat":    seatNo,
		"account": p.Account,
		"forced":  false,
	})
	return nil
}

// ForceNextPlayer skips the current turn holder, usually on a blown move
// deadline. With nobody left to act the table falls through to DealerTurn.
func (e *Engine) ForceNextPlayer(tableID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return ErrPaused
	}
	t := e.tables[tableID]
	if t == nil {
		return ErrTableNotFound
	}
	next := t.nextEligibleSeat(t.CurrentSeat)
	if next == 0 {
		e.enterState(t, StateDealerTurn)
		return nil
	}
	now := e.now()
	t.CurrentSeat = next
	t.BettingDeadline = time.Time{}
	t.MoveDeadline = now.Add(e.cfg.MoveTimeout)
	t.LastActivity = now

	e.bus.Publish(events.TurnChanged, tableID, map[string]any{
		"seat":    next,
		"account": t.seat(next).Account,
		"forced":  true,
	})
	return nil
}

// SetTableActive opens or closes a table for play without removing it.
func (e *Engine) SetTableActive(tableID string, active bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return ErrPaused
	}
	t := e.tables[tableID]
	if t == nil {
		return ErrTableNotFound
	}
	t.Active = active
	t.LastActivity = e.now()
	return nil
}

// EmergencyRefund returns every live stake regardless of phase and resets
// the table to WaitingForPlayers with empty queues. Players keep their seats.
func (e *Engine) EmergencyRefund(ctx context.Context, tableID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return ErrPaused
	}
	t := e.tables[tableID]
	if t == nil {
		return ErrTableNotFound
	}
	var total int64
	refunds := map[string]int64{}
	for _, p := range t.Seats {
		if p == nil || p.BurnedThisRound == 0 {
			continue
		}
		amount := p.BurnedThisRound
		if _, err := e.ledger.Credit(ctx, p.Account, amount, bank.EntryRefund, bank.RefTable, t.ID); err != nil {
			return err
		}
		refunds[p.Account] = amount
		total += amount
		p.Hands = nil
		p.CurrentHand = 0
		p.BurnedThisRound = 0
		p.BurnHistory = nil
		e.stats.TokensBurned -= amount
		e.stats.TokensRefunded += amount
	}
	t.Pot = 0
	t.flushSignals()
	e.enterState(t, StateWaitingForPlayers)

	e.bus.Publish(events.EmergencyRefund, tableID, map[string]any{
		"refunds": refunds,
		"total":   total,
	})
	return nil
}

// firstEligibleSeat returns the lowest seat holding an Active player with a
// live stake, or 0.
func (t *Table) firstEligibleSeat() int {
	for i, p := range t.Seats {
		if p != nil && p.State == PlayerActive && p.BurnedThisRound > 0 {
			return i + 1
		}
	}
	return 0
}

// nextEligibleSeat scans cyclically starting just after the given seat. The
// starting seat itself is never reconsidered; 0 means nobody is left.
func (t *Table) nextEligibleSeat(after int) int {
	n := len(t.Seats)
	if n == 0 {
		return 0
	}
	if after < 1 || after > n {
		return t.firstEligibleSeat()
	}
	for i := 1; i < n; i++ {
		seatNo := (after-1+i)%n + 1
		p := t.Seats[seatNo-1]
		if p != nil && p.State == PlayerActive && p.BurnedThisRound > 0 {
			return seatNo
		}
	}
	return 0
}
