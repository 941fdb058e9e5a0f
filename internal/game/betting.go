package game

import (
	"context"
	"errors"

	"cardhouse/internal/bank"
	"cardhouse/internal/events"
)

// PlaceBet stakes amount for the caller's first hand. The ledger debit
// happens strictly before the signal append so a queue reader never sees an
// unfunded bet. Expected failures return false; a debit failing after the
// balance check passed is a ledger fault and aborts.
func (e *Engine) PlaceBet(ctx context.Context, tableID, account string, amount int64) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return false, ErrPaused
	}
	t := e.tables[tableID]
	if t == nil || !t.Active || t.State != StateBetting {
		return false, nil
	}
	p := t.findPlayer(account)
	if p == nil || p.State != PlayerActive {
		return false, nil
	}
	if p.BurnedThisRound > 0 || len(p.Hands) > 0 {
		return false, nil
	}
	if !e.validStake(t, amount) {
		return false, nil
	}
	bal, err := e.balanceOrZero(ctx, account)
	if err != nil {
		return false, err
	}
	if bal < amount {
		return false, nil
	}

	if _, err := e.ledger.Debit(ctx, account, amount, bank.EntryBet, bank.RefTable, t.ID); err != nil {
		return false, err
	}

	now := e.now()
	p.BurnedThisRound += amount
	p.BurnHistory = append(p.BurnHistory, BurnRecord{Kind: BurnBet, Amount: amount, At: now})
	p.Hands = []*Hand{{Index: 1, Bet: amount, CanHit: true}}
	p.CurrentHand = 1
	p.LastAction = now
	t.Pot += amount
	t.LastActivity = now
	e.stats.TokensBurned += amount
	e.stats.BetsPlaced++

	t.BetSignals = append(t.BetSignals, BetSignal{
		Account: account,
		Seat:    p.Seat,
		Amount:  amount,
		Round:   t.Round,
		At:      now,
	})

	e.bus.Publish(events.BetPlaced, tableID, map[string]any{
		"account": account,
		"seat":    p.Seat,
		"amount":  amount,
		"round":   t.Round,
	})
	return true, nil
}

// SignalMove records a hit/stand/double/split intent. Only the current turn
// holder may move, and only on the hand the current-hand pointer names;
// double and split debit the original hand bet before the signal is appended.
func (e *Engine) SignalMove(ctx context.Context, tableID, account string, move Move, handIndex int) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return false, ErrPaused
	}
	t := e.tables[tableID]
	if t == nil || !t.Active || t.State != StatePlayerTurn {
		return false, nil
	}
	p := t.findPlayer(account)
	if p == nil || p.State != PlayerActive {
		return false, nil
	}
	if t.CurrentSeat != p.Seat {
		return false, nil
	}
	h := p.hand(handIndex)
	if h == nil || handIndex != p.CurrentHand {
		return false, nil
	}
	// A finished hand accepts no further moves this round.
	if h.Finished {
		return false, nil
	}

	now := e.now()
	switch move {
	case MoveHit:
		if !h.CanHit {
			return false, nil
		}
	case MoveStand:
		h.Finished = true
		h.CanHit = false
	case MoveDouble:
		if h.Doubled || !h.CanHit {
			return false, nil
		}
		bal, err := e.balanceOrZero(ctx, account)
		if err != nil {
			return false, err
		}
		if bal < h.Bet {
			return false, nil
		}
		amount := h.Bet
		if _, err := e.ledger.Debit(ctx, account, amount, bank.EntryBet, bank.RefTable, t.ID); err != nil {
			return false, err
		}
		h.Bet += amount
		h.Doubled = true
		h.Finished = true
		h.CanHit = false
		p.BurnedThisRound += amount
		p.BurnHistory = append(p.BurnHistory, BurnRecord{Kind: BurnDouble, Amount: amount, At: now})
		t.Pot += amount
		e.stats.TokensBurned += amount
	case MoveSplit:
		if handIndex != 1 || h.Split || len(p.Hands) != 1 {
			return false, nil
		}
		bal, err := e.balanceOrZero(ctx, account)
		if err != nil {
			return false, err
		}
		if bal < h.Bet {
			return false, nil
		}
		amount := h.Bet
		if _, err := e.ledger.Debit(ctx, account, amount, bank.EntryBet, bank.RefTable, t.ID); err != nil {
			return false, err
		}
		h.Split = true
		p.Hands = append(p.Hands, &Hand{Index: 2, Bet: amount, CanHit: true})
		p.CurrentHand = 2
		p.BurnedThisRound += amount
		p.BurnHistory = append(p.BurnHistory, BurnRecord{Kind: BurnSplit, Amount: amount, At: now})
		t.Pot += amount
		e.stats.TokensBurned += amount
	default:
		return false, ErrBadMove
	}

	// A finished hand hands play to an unfinished split hand when one exists.
	// Turn advancement beyond that is the backend's call, never implicit.
	if h.Finished && p.CurrentHand == h.Index {
		for _, other := range p.Hands {
			if !other.Finished {
				p.CurrentHand = other.Index
				break
			}
		}
	}

	p.LastAction = now
	t.LastActivity = now
	e.stats.MovesSignaled++

	t.MoveSignals = append(t.MoveSignals, MoveSignal{
		Account:   account,
		Seat:      p.Seat,
		Move:      move,
		HandIndex: handIndex,
		Round:     t.Round,
		At:        now,
	})

	e.bus.Publish(events.MoveSignaled, tableID, map[string]any{
		"account":    account,
		"seat":       p.Seat,
		"move":       string(move),
		"hand_index": handIndex,
	})
	return true, nil
}

// validStake applies the shared bet rules, narrowed to the table's own
// min/max bounds.
func (e *Engine) validStake(t *Table, amount int64) bool {
	cfg := e.cfg
	cfg.MinBet, cfg.MaxBet = t.MinBet, t.MaxBet
	return cfg.ValidBet(amount)
}

// balanceOrZero treats an unregistered account as empty so the caller gets
// the soft insufficient-balance rejection instead of an abort.
func (e *Engine) balanceOrZero(ctx context.Context, account string) (int64, error) {
	bal, err := e.ledger.Balance(ctx, account)
	if errors.Is(err, bank.ErrAccountNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return bal, nil
}
