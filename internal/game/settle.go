package game

import (
	"context"
	"errors"

	"github.com/rs/zerolog/log"

	"cardhouse/internal/bank"
	"cardhouse/internal/events"
)

// DistributeWinnings applies the backend's outcome batch for one round:
// credits every resolvable winner, records hand results, resets all seated
// players, clears the signal queues and moves the table to RoundEnded.
// A batch for a round older than the table's current round is rejected
// outright. Unknown accounts inside the batch are skipped with a warning so
// one bad entry cannot block the rest of the payout.
func (e *Engine) DistributeWinnings(ctx context.Context, tableID string, dist WinningsDistribution) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.paused {
		return ErrPaused
	}
	t := e.tables[tableID]
	if t == nil {
		return ErrTableNotFound
	}
	if dist.Round < t.Round {
		return ErrStaleRound
	}

	var total int64
	for _, w := range dist.Winnings {
		if p := t.seat(w.Seat); p != nil && p.Account == w.Account {
			if h := p.hand(w.HandIndex); h != nil && h.Result == "" {
				h.Result = w.Result
			}
		}
		if w.Winnings <= 0 {
			continue
		}
		_, err := e.ledger.Credit(ctx, w.Account, w.Winnings, bank.EntryPayout, bank.RefRound, t.ID)
		if errors.Is(err, bank.ErrAccountNotFound) {
			log.Warn().
				Str("table_id", t.ID).
				Str("account", w.Account).
				Int64("winnings", w.Winnings).
				Msg("skipping payout for unresolvable account")
			continue
		}
		if err != nil {
			return err
		}
		total += w.Winnings
	}

	now := e.now()
	for _, p := range t.Seats {
		if p != nil {
			p.resetRound(now)
		}
	}
	t.Pot = 0
	t.flushSignals()
	e.stats.RoundsSettled++
	e.stats.WinningsDistributed += total
	e.enterState(t, StateRoundEnded)

	e.bus.Publish(events.WinningsDistributed, tableID, map[string]any{
		"round":   dist.Round,
		"total":   total,
		"entries": len(dist.Winnings),
	})
	return nil
}
