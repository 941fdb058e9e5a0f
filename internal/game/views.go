package game

import (
	"sort"
	"time"
)

type HandView struct {
	Index    int        `json:"index"`
	Bet      int64      `json:"bet"`
	Finished bool       `json:"finished"`
	Doubled  bool       `json:"doubled"`
	Split    bool       `json:"split"`
	CanHit   bool       `json:"can_hit"`
	Result   HandResult `json:"result,omitempty"`
}

type PlayerView struct {
	Account         string       `json:"account"`
	Seat            int          `json:"seat"`
	State           PlayerState  `json:"state"`
	Hands           []HandView   `json:"hands,omitempty"`
	CurrentHand     int          `json:"current_hand,omitempty"`
	BurnedThisRound int64        `json:"burned_this_round"`
	BurnHistory     []BurnRecord `json:"burn_history,omitempty"`
	RoundsPlayed    int          `json:"rounds_played"`
	IsCurrentTurn   bool         `json:"is_current_turn"`
	LastActionAgoMs int64        `json:"last_action_ago_ms"`
}

type TableView struct {
	ID              string       `json:"id"`
	State           GameState    `json:"state"`
	Round           int64        `json:"round"`
	Active          bool         `json:"active"`
	MinBet          int64        `json:"min_bet"`
	MaxBet          int64        `json:"max_bet"`
	Pot             int64        `json:"pot"`
	CurrentSeat     int          `json:"current_seat,omitempty"`
	Players         []PlayerView `json:"players"`
	AvailableSeats  []int        `json:"available_seats"`
	BettingDeadline int64        `json:"betting_deadline_ms,omitempty"`
	MoveDeadline    int64        `json:"move_deadline_ms,omitempty"`
	IdleMs          int64        `json:"idle_ms"`
	PendingBets     int          `json:"pending_bets"`
	PendingMoves    int          `json:"pending_moves"`
}

// TableStats is the on-demand per-table statistics projection.
type TableStats struct {
	ID         string  `json:"id"`
	Round      int64   `json:"round"`
	Seated     int     `json:"seated"`
	TotalPot   int64   `json:"total_pot"`
	AverageBet float64 `json:"average_bet"`
	UptimeSecs int64   `json:"uptime_secs"`
}

// AdminStats combines engine counters with live table and queue totals.
type AdminStats struct {
	Stats
	TableCount    int    `json:"table_count"`
	ActiveTables  int    `json:"active_tables"`
	SeatedPlayers int    `json:"seated_players"`
	StakedChips   int64  `json:"staked_chips"`
	PendingBets   int    `json:"pending_bets"`
	PendingMoves  int    `json:"pending_moves"`
	Paused        bool   `json:"paused"`
	PauseReason   string `json:"pause_reason,omitempty"`
}

// GetTable returns a view of one table. Absent ids report ok=false rather
// than an error.
func (e *Engine) GetTable(id string) (TableView, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables[id]
	if !ok {
		return TableView{}, false
	}
	return e.tableView(t, e.now()), true
}

// ListActiveTables returns views of every active table, ordered by id.
func (e *Engine) ListActiveTables() []TableView {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	out := make([]TableView, 0, len(e.tables))
	for _, t := range e.tables {
		if !t.Active {
			continue
		}
		out = append(out, e.tableView(t, now))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// GetTableStats computes the statistics projection for one table.
func (e *Engine) GetTableStats(id string) (TableStats, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	t, ok := e.tables[id]
	if !ok {
		return TableStats{}, false
	}
	stats := TableStats{
		ID:         t.ID,
		Round:      t.Round,
		Seated:     t.occupied(),
		TotalPot:   t.Pot,
		UptimeSecs: int64(e.now().Sub(t.CreatedAt) / time.Second),
	}
	bets, total := 0, int64(0)
	for _, p := range t.Seats {
		if p == nil {
			continue
		}
		for _, h := range p.Hands {
			bets++
			total += h.Bet
		}
	}
	if bets > 0 {
		stats.AverageBet = float64(total) / float64(bets)
	}
	return stats, true
}

// tableView builds the read-only projection. Caller holds the engine lock.
func (e *Engine) tableView(t *Table, now time.Time) TableView {
	v := TableView{
		ID:           t.ID,
		State:        t.State,
		Round:        t.Round,
		Active:       t.Active,
		MinBet:       t.MinBet,
		MaxBet:       t.MaxBet,
		Pot:          t.Pot,
		CurrentSeat:  t.CurrentSeat,
		IdleMs:       now.Sub(t.LastActivity).Milliseconds(),
		PendingBets:  len(t.BetSignals),
		PendingMoves: len(t.MoveSignals),
	}
	if !t.BettingDeadline.IsZero() {
		v.BettingDeadline = t.BettingDeadline.UnixMilli()
	}
	if !t.MoveDeadline.IsZero() {
		v.MoveDeadline = t.MoveDeadline.UnixMilli()
	}
	for i, p := range t.Seats {
		seatNo := i + 1
		if p == nil {
			v.AvailableSeats = append(v.AvailableSeats, seatNo)
			continue
		}
		pv := PlayerView{
			Account:         p.Account,
			Seat:            p.Seat,
			State:           p.State,
			CurrentHand:     p.CurrentHand,
			BurnedThisRound: p.BurnedThisRound,
			BurnHistory:     append([]BurnRecord(nil), p.BurnHistory...),
			RoundsPlayed:    p.RoundsPlayed,
			IsCurrentTurn:   t.CurrentSeat == seatNo,
			LastActionAgoMs: now.Sub(p.LastAction).Milliseconds(),
		}
		for _, h := range p.Hands {
			pv.Hands = append(pv.Hands, HandView{
				Index:    h.Index,
				Bet:      h.Bet,
				Finished: h.Finished,
				Doubled:  h.Doubled,
				Split:    h.Split,
				CanHit:   h.CanHit,
				Result:   h.Result,
			})
		}
		v.Players = append(v.Players, pv)
	}
	return v
}
