package game

import "errors"

// Hard-abort conditions. Player-path soft rejections are reported as a
// false return with a nil error instead.
var (
	ErrPaused         = errors.New("engine_paused")
	ErrTableExists    = errors.New("table_exists")
	ErrTableNotFound  = errors.New("table_not_found")
	ErrPlayerNotFound = errors.New("player_not_found")
	ErrStaleRound     = errors.New("stale_round")
	ErrBadState       = errors.New("unknown_game_state")
	ErrBadMove        = errors.New("unknown_move")
	ErrBadSeat        = errors.New("invalid_seat")
)
