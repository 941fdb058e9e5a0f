package game

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"cardhouse/internal/bank"
	"cardhouse/internal/config"
	"cardhouse/internal/events"
)

// Engine owns every table and serializes all calls behind one mutex, so an
// entry point always sees and commits whole-table state with no interleaving.
type Engine struct {
	mu     sync.Mutex
	cfg    config.GameConfig
	ledger bank.Ledger
	guard  bank.StorageGuard
	bus    *events.Bus

	tables map[string]*Table
	stats  Stats

	paused      bool
	pauseReason string

	clock func() time.Time
}

func NewEngine(cfg config.GameConfig, ledger bank.Ledger, guard bank.StorageGuard, bus *events.Bus) *Engine {
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = 3
	}
	return &Engine{
		cfg:    cfg,
		ledger: ledger,
		guard:  guard,
		bus:    bus,
		tables: make(map[string]*Table),
		clock:  time.Now,
	}
}

func (e *Engine) now() time.Time { return e.clock() }

// StartJanitor runs the sweep on a ticker until ctx is cancelled. The
// deadlines themselves are advisory; this loop is the watchdog that acts on
// stale tables and players.
func (e *Engine) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				tables, players, err := e.Sweep(ctx)
				if err != nil {
					log.Error().Err(err).Msg("janitor sweep failed")
					continue
				}
				if tables > 0 || players > 0 {
					log.Info().
						Int("tables_removed", tables).
						Int("players_removed", players).
						Msg("janitor sweep")
				}
			}
		}
	}()
}

// Config returns the current game configuration.
func (e *Engine) Config() config.GameConfig {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cfg
}

// UpdateConfig replaces the runtime configuration. Existing tables keep
// their bet bounds; new tables and new deadlines pick up the new values.
func (e *Engine) UpdateConfig(cfg config.GameConfig) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if cfg.MaxPlayers <= 0 {
		cfg.MaxPlayers = e.cfg.MaxPlayers
	}
	e.cfg = cfg
}

// Pause blocks every state-changing entry point until Resume. Views and
// signal polling keep working.
func (e *Engine) Pause(reason string) {
	e.mu.Lock()
	e.paused = true
	e.pauseReason = reason
	e.mu.Unlock()
	e.bus.Publish(events.GlobalPause, "", map[string]any{"reason": reason})
}

func (e *Engine) Resume() {
	e.mu.Lock()
	e.paused = false
	e.pauseReason = ""
	e.mu.Unlock()
	e.bus.Publish(events.GlobalResume, "", nil)
}

func (e *Engine) Paused() (bool, string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused, e.pauseReason
}

// StatsSnapshot returns engine-wide counters plus live table/signal totals.
func (e *Engine) StatsSnapshot() AdminStats {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := AdminStats{Stats: e.stats, Paused: e.paused, PauseReason: e.pauseReason}
	for _, t := range e.tables {
		out.TableCount++
		if t.Active {
			out.ActiveTables++
		}
		out.PendingBets += len(t.BetSignals)
		out.PendingMoves += len(t.MoveSignals)
		out.StakedChips += t.Pot
		for _, p := range t.Seats {
			if p != nil {
				out.SeatedPlayers++
			}
		}
	}
	return out
}
