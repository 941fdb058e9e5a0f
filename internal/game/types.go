package game

import "time"

type GameState string

const (
	StateWaitingForPlayers   GameState = "waiting_for_players"
	StateBetting             GameState = "betting"
	StateDealingInitialCards GameState = "dealing_initial_cards"
	StatePlayerTurn          GameState = "player_turn"
	StateDealerTurn          GameState = "dealer_turn"
	StateRoundEnded          GameState = "round_ended"
)

func ParseGameState(s string) (GameState, bool) {
	switch GameState(s) {
	case StateWaitingForPlayers, StateBetting, StateDealingInitialCards,
		StatePlayerTurn, StateDealerTurn, StateRoundEnded:
		return GameState(s), true
	}
	return "", false
}

type PlayerState string

const (
	PlayerActive              PlayerState = "active"
	PlayerSittingOut          PlayerState = "sitting_out"
	PlayerObserving           PlayerState = "observing"
	PlayerWaitingForNextRound PlayerState = "waiting_for_next_round"
	PlayerAwaitingBuyIn       PlayerState = "awaiting_buy_in"
)

type Move string

const (
	MoveHit    Move = "hit"
	MoveStand  Move = "stand"
	MoveDouble Move = "double"
	MoveSplit  Move = "split"
)

func ParseMove(s string) (Move, bool) {
	switch Move(s) {
	case MoveHit, MoveStand, MoveDouble, MoveSplit:
		return Move(s), true
	}
	return "", false
}

type HandResult string

const (
	ResultBlackjack HandResult = "blackjack"
	ResultWin       HandResult = "win"
	ResultPush      HandResult = "push"
	ResultBust      HandResult = "bust"
	ResultLose      HandResult = "lose"
)

func ParseHandResult(s string) (HandResult, bool) {
	switch HandResult(s) {
	case ResultBlackjack, ResultWin, ResultPush, ResultBust, ResultLose:
		return HandResult(s), true
	}
	return "", false
}

// Hand is one betting line for a seated player. Index is 1, or 2 after a
// split. Result stays empty until settlement writes it.
type Hand struct {
	Index    int
	Bet      int64
	Finished bool
	Doubled  bool
	Split    bool
	CanHit   bool
	Result   HandResult
}

// BurnRecord is one audit entry in a player's per-round burn history.
type BurnRecord struct {
	Kind   string
	Amount int64
	At     time.Time
}

const (
	BurnBet    = "bet"
	BurnDouble = "double"
	BurnSplit  = "split"
)

type SeatedPlayer struct {
	Account         string
	Seat            int
	State           PlayerState
	Hands           []*Hand
	CurrentHand     int
	BurnedThisRound int64
	BurnHistory     []BurnRecord
	JoinedAt        time.Time
	LastAction      time.Time
	RoundsPlayed    int
}

func (p *SeatedPlayer) hand(index int) *Hand {
	for _, h := range p.Hands {
		if h.Index == index {
			return h
		}
	}
	return nil
}

// resetRound clears all round-scoped fields at settlement. Every seated
// player counts the round as played, staked or not, and gets a fresh
// last-action time so sitting through a long round is not inactivity.
func (p *SeatedPlayer) resetRound(now time.Time) {
	p.RoundsPlayed++
	p.Hands = nil
	p.CurrentHand = 0
	p.BurnedThisRound = 0
	p.BurnHistory = nil
	p.LastAction = now
}

// BetSignal records a funded bet for asynchronous backend consumption.
// Signals are immutable once appended.
type BetSignal struct {
	Account string    `json:"account"`
	Seat    int       `json:"seat"`
	Amount  int64     `json:"amount"`
	Round   int64     `json:"round"`
	At      time.Time `json:"at"`
}

type MoveSignal struct {
	Account   string    `json:"account"`
	Seat      int       `json:"seat"`
	Move      Move      `json:"move"`
	HandIndex int       `json:"hand_index"`
	Round     int64     `json:"round"`
	At        time.Time `json:"at"`
}

// Table is the unit of mutation: every call fetches it whole under the
// engine lock, mutates it, and leaves. Seats is a fixed optional-slot array;
// seat numbers are 1-based and stable for the life of the table.
// CurrentSeat 0 means no player holds the turn.
type Table struct {
	ID              string
	State           GameState
	Seats           []*SeatedPlayer
	CurrentSeat     int
	Round           int64
	CreatedAt       time.Time
	LastActivity    time.Time
	BettingDeadline time.Time
	MoveDeadline    time.Time
	MinBet          int64
	MaxBet          int64
	Active          bool
	Pot             int64
	BetSignals      []BetSignal
	MoveSignals     []MoveSignal
}

func (t *Table) seat(n int) *SeatedPlayer {
	if n < 1 || n > len(t.Seats) {
		return nil
	}
	return t.Seats[n-1]
}

func (t *Table) findPlayer(account string) *SeatedPlayer {
	for _, p := range t.Seats {
		if p != nil && p.Account == account {
			return p
		}
	}
	return nil
}

func (t *Table) occupied() int {
	n := 0
	for _, p := range t.Seats {
		if p != nil {
			n++
		}
	}
	return n
}

// flushSignals empties both queues. Round completion and full table resets
// call this as an explicit step.
func (t *Table) flushSignals() {
	t.BetSignals = nil
	t.MoveSignals = nil
}

// PlayerWinning is one settlement line for a single hand.
type PlayerWinning struct {
	Account   string     `json:"account"`
	Seat      int        `json:"seat"`
	Bet       int64      `json:"bet"`
	Winnings  int64      `json:"winnings"`
	Result    HandResult `json:"result"`
	HandIndex int        `json:"hand_index"`
}

// WinningsDistribution is the backend-submitted outcome batch for one round.
type WinningsDistribution struct {
	Round    int64           `json:"round"`
	Winnings []PlayerWinning `json:"winnings"`
}

// Stats are engine-wide counters across all tables.
type Stats struct {
	PlayersJoined       int64 `json:"players_joined"`
	BetsPlaced          int64 `json:"bets_placed"`
	MovesSignaled       int64 `json:"moves_signaled"`
	RoundsSettled       int64 `json:"rounds_settled"`
	TokensBurned        int64 `json:"tokens_burned"`
	TokensRefunded      int64 `json:"tokens_refunded"`
	WinningsDistributed int64 `json:"winnings_distributed"`
}
