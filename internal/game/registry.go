package game

import (
	"context"
	"errors"
	"time"

	"cardhouse/internal/events"
	"cardhouse/internal/ids"
)

// CreateTable registers a new table and returns its id. An empty id gets a
// generated one. Bet bounds and seat capacity come from the current config.
func (e *Engine) CreateTable(id string) (string, error) {
	e.mu.Lock()
	if e.paused {
		e.mu.Unlock()
		return "", ErrPaused
	}
	if id == "" {
		id = ids.New()
	}
	if _, ok := e.tables[id]; ok {
		e.mu.Unlock()
		return "", ErrTableExists
	}
	now := e.now()
	t := &Table{
		ID:           id,
		State:        StateWaitingForPlayers,
		Seats:        make([]*SeatedPlayer, e.cfg.MaxPlayers),
		Round:        1,
		CreatedAt:    now,
		LastActivity: now,
		MinBet:       e.cfg.MinBet,
		MaxBet:       e.cfg.MaxBet,
		Active:       true,
	}
	e.tables[id] = t
	e.mu.Unlock()

	e.bus.Publish(events.TableCreated, id, map[string]any{
		"seats":   e.cfg.MaxPlayers,
		"min_bet": t.MinBet,
		"max_bet": t.MaxBet,
	})
	return id, nil
}

// RemoveTable deletes a table and its signal queues. Removing an absent id
// is a no-op.
func (e *Engine) RemoveTable(id string) {
	e.mu.Lock()
	t, ok := e.tables[id]
	if ok {
		t.flushSignals()
		delete(e.tables, id)
	}
	e.mu.Unlock()
	if ok {
		e.bus.Publish(events.TableClosed, id, nil)
	}
}

// SweepExpiredTables removes every table whose last activity is older than
// timeout and returns the removed count. A table already gone when its turn
// comes counts as expired.
func (e *Engine) SweepExpiredTables(timeout time.Duration, now time.Time) int {
	e.mu.Lock()
	var expired []string
	for id, t := range e.tables {
		if now.Sub(t.LastActivity) > timeout {
			expired = append(expired, id)
		}
	}
	removed := 0
	for _, id := range expired {
		t, ok := e.tables[id]
		if !ok {
			removed++
			continue
		}
		t.flushSignals()
		delete(e.tables, id)
		removed++
	}
	e.mu.Unlock()

	for _, id := range expired {
		e.bus.Publish(events.TableClosed, id, map[string]any{"reason": "expired"})
	}
	return removed
}

// Sweep is the janitor pass: inactive players are removed (with refunds
// where the phase allows) and then expired tables are dropped, both using
// the configured timeouts. Returns tables and players removed.
func (e *Engine) Sweep(ctx context.Context) (int, int, error) {
	e.mu.Lock()
	inactive := e.cfg.MaxInactiveTime
	expiry := e.cfg.TableExpiry
	tableIDs := make([]string, 0, len(e.tables))
	for id := range e.tables {
		tableIDs = append(tableIDs, id)
	}
	e.mu.Unlock()

	now := e.now()
	players := 0
	for _, id := range tableIDs {
		n, err := e.SweepInactivePlayers(ctx, id, inactive, now)
		if errors.Is(err, ErrTableNotFound) {
			continue
		}
		if err != nil {
			return 0, players, err
		}
		players += n
	}
	tables := e.SweepExpiredTables(expiry, now)
	return tables, players, nil
}

// FindAvailableTable returns the first active table with a free seat that is
// still accepting players.
func (e *Engine) FindAvailableTable() (TableView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	for _, t := range e.tables {
		if !t.Active {
			continue
		}
		if t.State != StateWaitingForPlayers && t.State != StateBetting {
			continue
		}
		if t.occupied() < len(t.Seats) {
			return e.tableView(t, now), true
		}
	}
	return TableView{}, false
}
