package game

import (
	"context"
	"time"

	"cardhouse/internal/bank"
	"cardhouse/internal/events"
)

// Join seats an account at a table. Every expected failure (bad seat, seat
// taken, table missing or inactive, already seated, storage deposit too low)
// is a soft false; only guard/ledger faults abort.
func (e *Engine) Join(ctx context.Context, tableID string, seatNo int, account string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return false, ErrPaused
	}
	ok, err := e.guard.HasSufficientStorage(ctx, account)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	t := e.tables[tableID]
	if t == nil || !t.Active {
		return false, nil
	}
	if seatNo < 1 || seatNo > len(t.Seats) {
		return false, nil
	}
	if t.Seats[seatNo-1] != nil {
		return false, nil
	}
	if t.findPlayer(account) != nil {
		return false, nil
	}

	now := e.now()
	p := &SeatedPlayer{
		Account:    account,
		Seat:       seatNo,
		State:      joinState(t.State),
		JoinedAt:   now,
		LastAction: now,
	}
	t.Seats[seatNo-1] = p
	t.LastActivity = now
	e.stats.PlayersJoined++

	e.bus.Publish(events.PlayerJoined, tableID, map[string]any{
		"account": account,
		"seat":    seatNo,
		"state":   string(p.State),
	})
	return true, nil
}

// joinState derives the session state a newcomer starts in from the table
// phase at join time.
func joinState(s GameState) PlayerState {
	switch s {
	case StateWaitingForPlayers, StateBetting:
		return PlayerActive
	case StateRoundEnded:
		return PlayerWaitingForNextRound
	default:
		return PlayerObserving
	}
}

// Leave removes the caller from the table. A live stake is refunded only in
// WaitingForPlayers or Betting; in any later phase it is forfeited.
func (e *Engine) Leave(ctx context.Context, tableID, account string) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return false, ErrPaused
	}
	t := e.tables[tableID]
	if t == nil {
		return false, nil
	}
	p := t.findPlayer(account)
	if p == nil {
		return false, nil
	}
	refunded, err := e.refundIfAllowed(ctx, t, p)
	if err != nil {
		return false, err
	}
	now := e.now()
	e.removeSeat(t, p.Seat, now)
	t.LastActivity = now

	e.bus.Publish(events.PlayerLeft, tableID, map[string]any{
		"account":  account,
		"seat":     p.Seat,
		"refunded": refunded,
	})
	return true, nil
}

// Kick is the admin form of Leave: same refund and turn-adjustment rules,
// hard errors instead of soft rejections, and an audit reason.
func (e *Engine) Kick(ctx context.Context, tableID, account, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return ErrPaused
	}
	t := e.tables[tableID]
	if t == nil {
		return ErrTableNotFound
	}
	p := t.findPlayer(account)
	if p == nil {
		return ErrPlayerNotFound
	}
	refunded, err := e.refundIfAllowed(ctx, t, p)
	if err != nil {
		return err
	}
	now := e.now()
	e.removeSeat(t, p.Seat, now)
	t.LastActivity = now

	e.bus.Publish(events.PlayerKicked, tableID, map[string]any{
		"account":  account,
		"seat":     p.Seat,
		"reason":   reason,
		"refunded": refunded,
	})
	return nil
}

// SweepInactivePlayers removes every seated player whose last action is older
// than timeout, refunding stakes under the Leave rules. Seats are processed
// from the highest index down so earlier removals cannot disturb later ones.
func (e *Engine) SweepInactivePlayers(ctx context.Context, tableID string, timeout time.Duration, now time.Time) (int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t := e.tables[tableID]
	if t == nil {
		return 0, ErrTableNotFound
	}
	removed := 0
	for i := len(t.Seats) - 1; i >= 0; i-- {
		p := t.Seats[i]
		if p == nil || now.Sub(p.LastAction) <= timeout {
			continue
		}
		refunded, err := e.refundIfAllowed(ctx, t, p)
		if err != nil {
			return removed, err
		}
		e.removeSeat(t, p.Seat, now)
		removed++
		e.bus.Publish(events.PlayerKicked, tableID, map[string]any{
			"account":  p.Account,
			"seat":     p.Seat,
			"reason":   "inactive",
			"refunded": refunded,
		})
	}
	if removed > 0 {
		t.LastActivity = now
	}
	return removed, nil
}

// refundIfAllowed reverses a player's round burn when the table phase still
// permits it. This is the only player-initiated path that undoes a burn.
// Caller holds the engine lock.
func (e *Engine) refundIfAllowed(ctx context.Context, t *Table, p *SeatedPlayer) (int64, error) {
	if p.BurnedThisRound == 0 {
		return 0, nil
	}
	if t.State != StateWaitingForPlayers && t.State != StateBetting {
		return 0, nil
	}
	amount := p.BurnedThisRound
	if _, err := e.ledger.Credit(ctx, p.Account, amount, bank.EntryRefund, bank.RefTable, t.ID); err != nil {
		return 0, err
	}
	p.BurnedThisRound = 0
	p.BurnHistory = nil
	p.Hands = nil
	p.CurrentHand = 0
	t.Pot -= amount
	e.stats.TokensBurned -= amount
	e.stats.TokensRefunded += amount
	return amount, nil
}

// removeSeat vacates a seat, hands the turn to the next eligible player when
// the holder left, and fully resets an emptied table. Caller holds the lock.
func (e *Engine) removeSeat(t *Table, seatNo int, now time.Time) {
	t.Seats[seatNo-1] = nil
	if t.CurrentSeat == seatNo {
		next := t.nextEligibleSeat(seatNo)
		t.CurrentSeat = next
		if next != 0 {
			t.BettingDeadline = time.Time{}
			t.MoveDeadline = now.Add(e.cfg.MoveTimeout)
		} else {
			t.MoveDeadline = time.Time{}
		}
	}
	if t.occupied() == 0 {
		t.State = StateWaitingForPlayers
		t.CurrentSeat = 0
		t.BettingDeadline = time.Time{}
		t.MoveDeadline = time.Time{}
		t.Pot = 0
		t.flushSignals()
	}
}
