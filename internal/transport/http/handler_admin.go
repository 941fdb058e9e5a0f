package httptransport

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"cardhouse/internal/bank"
	"cardhouse/internal/config"
	"cardhouse/internal/game"
)

type AdminHandlers struct {
	engine *game.Engine
	bank   bank.Admin
}

func NewAdminHandlers(e *game.Engine, b bank.Admin) *AdminHandlers {
	return &AdminHandlers{engine: e, bank: b}
}

func (h *AdminHandlers) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		paused, reason := h.engine.Paused()
		writeJSON(w, map[string]any{"ok": true, "paused": paused, "pause_reason": reason})
	}
}

func (h *AdminHandlers) CreateTable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ID string `json:"id"`
		}
		// An empty body is fine; the engine generates an id.
		_ = json.NewDecoder(r.Body).Decode(&req)
		id, err := h.engine.CreateTable(req.ID)
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]any{"id": id})
	}
}

func (h *AdminHandlers) DeleteTable() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.engine.RemoveTable(chi.URLParam(r, "table_id"))
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) Signals() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := chi.URLParam(r, "table_id")
		writeJSON(w, map[string]any{
			"bets":  h.engine.PendingBets(tableID),
			"moves": h.engine.PendingMoves(tableID),
		})
	}
}

func (h *AdminHandlers) ClearSignals() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			BetCount  int `json:"bet_count"`
			MoveCount int `json:"move_count"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := h.engine.ClearSignals(chi.URLParam(r, "table_id"), req.BetCount, req.MoveCount); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) Advance() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			State string `json:"state"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		state, ok := game.ParseGameState(req.State)
		if !ok {
			WriteHTTPError(w, http.StatusBadRequest, game.ErrBadState.Error())
			return
		}
		if err := h.engine.AdvanceState(chi.URLParam(r, "table_id"), state); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) SetCurrentPlayer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Seat int `json:"seat"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := h.engine.SetCurrentPlayer(chi.URLParam(r, "table_id"), req.Seat); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) ForceNextPlayer() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.engine.ForceNextPlayer(chi.URLParam(r, "table_id")); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) Settle() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var dist game.WinningsDistribution
		if err := json.NewDecoder(r.Body).Decode(&dist); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := h.engine.DistributeWinnings(r.Context(), chi.URLParam(r, "table_id"), dist); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) Kick() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Account string `json:"account"`
			Reason  string `json:"reason"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Account == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := h.engine.Kick(r.Context(), chi.URLParam(r, "table_id"), req.Account, req.Reason); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) EmergencyRefund() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h.engine.EmergencyRefund(r.Context(), chi.URLParam(r, "table_id")); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) SetActive() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Active bool `json:"active"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := h.engine.SetTableActive(chi.URLParam(r, "table_id"), req.Active); err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) Sweep() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tables, players, err := h.engine.Sweep(r.Context())
		if err != nil {
			httpError(w, err)
			return
		}
		writeJSON(w, map[string]any{"tables_removed": tables, "players_removed": players})
	}
}

func (h *AdminHandlers) Stats() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		supply, err := h.bank.SupplyStats(r.Context())
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, map[string]any{
			"game":   h.engine.StatsSnapshot(),
			"supply": supply,
		})
	}
}

type gameConfigDTO struct {
	BettingTimeoutSecs  int64   `json:"betting_timeout_secs"`
	MoveTimeoutSecs     int64   `json:"move_timeout_secs"`
	RoundBreakSecs      int64   `json:"round_break_secs"`
	MaxInactiveTimeSecs int64   `json:"max_inactive_time_secs"`
	TableExpirySecs     int64   `json:"table_expiry_secs"`
	MinBet              int64   `json:"min_bet"`
	MaxBet              int64   `json:"max_bet"`
	MaxPlayers          int     `json:"max_players"`
	BetDenominations    []int64 `json:"bet_denominations"`
}

func configToDTO(cfg config.GameConfig) gameConfigDTO {
	return gameConfigDTO{
		BettingTimeoutSecs:  int64(cfg.BettingTimeout / time.Second),
		MoveTimeoutSecs:     int64(cfg.MoveTimeout / time.Second),
		RoundBreakSecs:      int64(cfg.RoundBreak / time.Second),
		MaxInactiveTimeSecs: int64(cfg.MaxInactiveTime / time.Second),
		TableExpirySecs:     int64(cfg.TableExpiry / time.Second),
		MinBet:              cfg.MinBet,
		MaxBet:              cfg.MaxBet,
		MaxPlayers:          cfg.MaxPlayers,
		BetDenominations:    cfg.BetDenominations,
	}
}

func (h *AdminHandlers) GetConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, configToDTO(h.engine.Config()))
	}
}

// UpdateConfig merges non-zero fields of the request into the running
// configuration. Seat capacity changes only apply to tables created later.
func (h *AdminHandlers) UpdateConfig() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req gameConfigDTO
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		cfg := h.engine.Config()
		if req.BettingTimeoutSecs > 0 {
			cfg.BettingTimeout = time.Duration(req.BettingTimeoutSecs) * time.Second
		}
		if req.MoveTimeoutSecs > 0 {
			cfg.MoveTimeout = time.Duration(req.MoveTimeoutSecs) * time.Second
		}
		if req.RoundBreakSecs > 0 {
			cfg.RoundBreak = time.Duration(req.RoundBreakSecs) * time.Second
		}
		if req.MaxInactiveTimeSecs > 0 {
			cfg.MaxInactiveTime = time.Duration(req.MaxInactiveTimeSecs) * time.Second
		}
		if req.TableExpirySecs > 0 {
			cfg.TableExpiry = time.Duration(req.TableExpirySecs) * time.Second
		}
		if req.MinBet > 0 {
			cfg.MinBet = req.MinBet
		}
		if req.MaxBet > 0 {
			cfg.MaxBet = req.MaxBet
		}
		if req.MaxPlayers > 0 {
			cfg.MaxPlayers = req.MaxPlayers
		}
		if req.BetDenominations != nil {
			cfg.BetDenominations = req.BetDenominations
		}
		h.engine.UpdateConfig(cfg)
		writeJSON(w, configToDTO(h.engine.Config()))
	}
}

func (h *AdminHandlers) Pause() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Reason string `json:"reason"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		h.engine.Pause(req.Reason)
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) Resume() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.engine.Resume()
		writeJSON(w, map[string]any{"ok": true})
	}
}

func (h *AdminHandlers) Accounts() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, offset := ParsePagination(r)
		items, err := h.bank.ListAccounts(r.Context(), limit, offset)
		if err != nil {
			WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
			return
		}
		writeJSON(w, map[string]any{"items": items, "limit": limit, "offset": offset})
	}
}

// Topup registers the account when unknown and mints the requested amount.
func (h *AdminHandlers) Topup() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Account string `json:"account"`
			Amount  int64  `json:"amount"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Account == "" || req.Amount < 0 {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		if err := h.bank.EnsureAccount(r.Context(), req.Account, 0); err != nil {
			httpError(w, err)
			return
		}
		balance := int64(0)
		if req.Amount > 0 {
			var err error
			balance, err = h.bank.Credit(r.Context(), req.Account, req.Amount, bank.EntryMint, bank.RefAdmin, "topup")
			if err != nil {
				httpError(w, err)
				return
			}
		} else {
			var err error
			balance, err = h.bank.Balance(r.Context(), req.Account)
			if err != nil {
				httpError(w, err)
				return
			}
		}
		writeJSON(w, map[string]any{"ok": true, "account": req.Account, "balance": balance})
	}
}
