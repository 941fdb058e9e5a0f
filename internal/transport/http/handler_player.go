package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"cardhouse/internal/bank"
	"cardhouse/internal/game"
)

type PlayerHandlers struct {
	engine *game.Engine
}

func NewPlayerHandlers(e *game.Engine) *PlayerHandlers {
	return &PlayerHandlers{engine: e}
}

type joinRequest struct {
	Account string `json:"account"`
	Seat    int    `json:"seat"`
}

func (h *PlayerHandlers) Join() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := chi.URLParam(r, "table_id")
		var req joinRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Account == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		ok, err := h.engine.Join(r.Context(), tableID, req.Seat, req.Account)
		writeOutcome(w, ok, err)
	}
}

type leaveRequest struct {
	Account string `json:"account"`
}

func (h *PlayerHandlers) Leave() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := chi.URLParam(r, "table_id")
		var req leaveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Account == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		ok, err := h.engine.Leave(r.Context(), tableID, req.Account)
		writeOutcome(w, ok, err)
	}
}

type betRequest struct {
	Account string `json:"account"`
	Amount  int64  `json:"amount"`
}

func (h *PlayerHandlers) Bet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := chi.URLParam(r, "table_id")
		var req betRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Account == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		ok, err := h.engine.PlaceBet(r.Context(), tableID, req.Account, req.Amount)
		writeOutcome(w, ok, err)
	}
}

type moveRequest struct {
	Account   string `json:"account"`
	Move      string `json:"move"`
	HandIndex int    `json:"hand_index"`
}

func (h *PlayerHandlers) Move() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tableID := chi.URLParam(r, "table_id")
		var req moveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Account == "" {
			WriteHTTPError(w, http.StatusBadRequest, "invalid_request")
			return
		}
		move, valid := game.ParseMove(req.Move)
		if !valid {
			// A malformed move is an expected failure on the player path.
			writeOutcome(w, false, nil)
			return
		}
		if req.HandIndex == 0 {
			req.HandIndex = 1
		}
		ok, err := h.engine.SignalMove(r.Context(), tableID, req.Account, move, req.HandIndex)
		writeOutcome(w, ok, err)
	}
}

// writeOutcome renders the player-path contract: expected rejections are an
// ok=false body with a 200, hard aborts map to error statuses.
func writeOutcome(w http.ResponseWriter, ok bool, err error) {
	if err != nil {
		httpError(w, err)
		return
	}
	writeJSON(w, map[string]any{"ok": ok})
}

func httpError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, game.ErrPaused):
		WriteHTTPError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, game.ErrTableNotFound), errors.Is(err, game.ErrPlayerNotFound):
		WriteHTTPError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, game.ErrTableExists), errors.Is(err, game.ErrStaleRound):
		WriteHTTPError(w, http.StatusConflict, err.Error())
	case errors.Is(err, game.ErrBadState), errors.Is(err, game.ErrBadMove), errors.Is(err, game.ErrBadSeat):
		WriteHTTPError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, bank.ErrAccountNotFound), errors.Is(err, bank.ErrInsufficientBalance),
		errors.Is(err, bank.ErrBalanceOverflow), errors.Is(err, bank.ErrNegativeAmount):
		WriteHTTPError(w, http.StatusInternalServerError, err.Error())
	default:
		WriteHTTPError(w, http.StatusInternalServerError, "internal_error")
	}
}
