package bank

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"cardhouse/internal/ids"
)

// Bank is an in-memory chip ledger. Accounts must be registered before they
// can hold a balance; every mutation appends an audit entry. Debits burn
// chips out of total supply and credits mint them back in, so the supply
// counter always equals the sum of account balances.
type Bank struct {
	mu              sync.Mutex
	balances        map[string]int64
	deposits        map[string]int64
	requiredDeposit int64
	totalSupply     int64
	minted          int64
	burned          int64
	entries         []LedgerEntry
}

func NewBank(requiredDeposit int64) *Bank {
	return &Bank{
		balances:        make(map[string]int64),
		deposits:        make(map[string]int64),
		requiredDeposit: requiredDeposit,
	}
}

// Register creates an account with an initial balance, minting the chips
// into supply. Registering an existing account is a no-op.
func (b *Bank) Register(account string, initial int64) error {
	if initial < 0 {
		return ErrNegativeAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.balances[account]; ok {
		return nil
	}
	if b.totalSupply > math.MaxInt64-initial {
		return ErrBalanceOverflow
	}
	b.balances[account] = initial
	b.totalSupply += initial
	b.minted += initial
	if initial > 0 {
		b.append(account, EntryMint, initial, RefAdmin, "register")
	}
	return nil
}

func (b *Bank) Balance(_ context.Context, account string) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bal, ok := b.balances[account]
	if !ok {
		return 0, ErrAccountNotFound
	}
	return bal, nil
}

// Debit burns amount from the account and from total supply.
func (b *Bank) Debit(_ context.Context, account string, amount int64, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	bal, ok := b.balances[account]
	if !ok {
		return 0, ErrAccountNotFound
	}
	if bal < amount {
		return 0, ErrInsufficientBalance
	}
	newBal := bal - amount
	b.balances[account] = newBal
	b.totalSupply -= amount
	b.burned += amount
	b.append(account, entryType, -amount, refType, refID)
	return newBal, nil
}

// Credit mints amount into the account and into total supply.
func (b *Bank) Credit(_ context.Context, account string, amount int64, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	bal, ok := b.balances[account]
	if !ok {
		return 0, ErrAccountNotFound
	}
	if bal > math.MaxInt64-amount || b.totalSupply > math.MaxInt64-amount {
		return 0, ErrBalanceOverflow
	}
	newBal := bal + amount
	b.balances[account] = newBal
	b.totalSupply += amount
	b.minted += amount
	b.append(account, entryType, amount, refType, refID)
	return newBal, nil
}

// DepositStorage records a storage deposit for an account, registering it
// with a zero balance when unknown.
func (b *Bank) DepositStorage(account string, amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.balances[account]; !ok {
		b.balances[account] = 0
	}
	b.deposits[account] += amount
	return nil
}

func (b *Bank) HasSufficientStorage(_ context.Context, account string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.requiredDeposit <= 0 {
		_, ok := b.balances[account]
		return ok, nil
	}
	return b.deposits[account] >= b.requiredDeposit, nil
}

type SupplyStats struct {
	TotalSupply int64 `json:"total_supply"`
	Minted      int64 `json:"minted"`
	Burned      int64 `json:"burned"`
	Accounts    int   `json:"accounts"`
}

func (b *Bank) Supply() SupplyStats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return SupplyStats{
		TotalSupply: b.totalSupply,
		Minted:      b.minted,
		Burned:      b.burned,
		Accounts:    len(b.balances),
	}
}

type Account struct {
	ID      string `json:"id"`
	Balance int64  `json:"balance"`
}

// Accounts lists accounts ordered by ID, with optional pagination.
func (b *Bank) Accounts(limit, offset int) []Account {
	if limit <= 0 {
		limit = 50
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Account, 0, len(b.balances))
	for id, bal := range b.balances {
		out = append(out, Account{ID: id, Balance: bal})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if offset >= len(out) {
		return nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Entries returns the most recent ledger entries, newest last.
func (b *Bank) Entries(limit int) []LedgerEntry {
	if limit <= 0 {
		limit = 100
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	start := 0
	if len(b.entries) > limit {
		start = len(b.entries) - limit
	}
	out := make([]LedgerEntry, len(b.entries)-start)
	copy(out, b.entries[start:])
	return out
}

// EnsureAccount, ListAccounts and SupplyStats adapt the in-memory bank to
// the Admin interface shared with PgBank.
func (b *Bank) EnsureAccount(_ context.Context, account string, initial int64) error {
	return b.Register(account, initial)
}

func (b *Bank) ListAccounts(_ context.Context, limit, offset int) ([]Account, error) {
	return b.Accounts(limit, offset), nil
}

func (b *Bank) SupplyStats(_ context.Context) (SupplyStats, error) {
	return b.Supply(), nil
}

func (b *Bank) append(account, entryType string, amount int64, refType, refID string) {
	b.entries = append(b.entries, LedgerEntry{
		ID:        ids.New(),
		Account:   account,
		Type:      entryType,
		Amount:    amount,
		RefType:   refType,
		RefID:     refID,
		CreatedAt: time.Now().UnixMilli(),
	})
}
