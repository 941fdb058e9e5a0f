package bank

import (
	"context"
	"errors"
)

// Ledger entry types written alongside every balance mutation.
const (
	EntryBet    = "bet"
	EntryPayout = "payout"
	EntryRefund = "refund"
	EntryMint   = "mint"
	EntryBurn   = "burn"
)

// Ref types for ledger entries.
const (
	RefTable = "table"
	RefRound = "round"
	RefAdmin = "admin"
)

var (
	ErrAccountNotFound     = errors.New("account_not_found")
	ErrInsufficientBalance = errors.New("insufficient_balance")
	ErrNegativeAmount      = errors.New("amount must be positive")
	ErrBalanceOverflow     = errors.New("balance_overflow")
)

// Ledger is the chip-accounting surface the game engine runs against.
// Debit and Credit return the new balance and must be atomic per account.
type Ledger interface {
	Balance(ctx context.Context, account string) (int64, error)
	Debit(ctx context.Context, account string, amount int64, entryType, refType, refID string) (int64, error)
	Credit(ctx context.Context, account string, amount int64, entryType, refType, refID string) (int64, error)
}

// StorageGuard gates join attempts on a prior storage deposit.
type StorageGuard interface {
	HasSufficientStorage(ctx context.Context, account string) (bool, error)
}

// Admin is the management surface the HTTP layer needs on top of the ledger,
// satisfied by both the in-memory and the Postgres bank.
type Admin interface {
	Ledger
	StorageGuard
	EnsureAccount(ctx context.Context, account string, initial int64) error
	ListAccounts(ctx context.Context, limit, offset int) ([]Account, error)
	SupplyStats(ctx context.Context) (SupplyStats, error)
}

type LedgerEntry struct {
	ID        string `json:"id"`
	Account   string `json:"account"`
	Type      string `json:"type"`
	Amount    int64  `json:"amount"`
	RefType   string `json:"ref_type"`
	RefID     string `json:"ref_id"`
	CreatedAt int64  `json:"created_at"`
}
