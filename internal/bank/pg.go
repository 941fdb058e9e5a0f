package bank

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"cardhouse/internal/ids"
)

// PgBank is a Postgres-backed chip ledger. Debits and credits lock the
// account row and write the ledger entry in the same transaction.
type PgBank struct {
	Pool            *pgxpool.Pool
	requiredDeposit int64
}

func NewPgBank(pool *pgxpool.Pool, requiredDeposit int64) *PgBank {
	return &PgBank{Pool: pool, requiredDeposit: requiredDeposit}
}

const schemaSQL = `
CREATE TABLE IF NOT EXISTS accounts (
    id              TEXT PRIMARY KEY,
    balance         BIGINT NOT NULL DEFAULT 0,
    storage_deposit BIGINT NOT NULL DEFAULT 0,
    updated_at      TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE TABLE IF NOT EXISTS chip_ledger (
    id         TEXT PRIMARY KEY,
    account_id TEXT NOT NULL REFERENCES accounts(id),
    type       TEXT NOT NULL,
    amount     BIGINT NOT NULL,
    ref_type   TEXT NOT NULL,
    ref_id     TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS chip_ledger_account_idx ON chip_ledger (account_id, created_at);
CREATE TABLE IF NOT EXISTS chip_supply (
    id     BOOLEAN PRIMARY KEY DEFAULT TRUE CHECK (id),
    total  BIGINT NOT NULL DEFAULT 0,
    minted BIGINT NOT NULL DEFAULT 0,
    burned BIGINT NOT NULL DEFAULT 0
);
INSERT INTO chip_supply (id) VALUES (TRUE) ON CONFLICT (id) DO NOTHING;
`

func (p *PgBank) EnsureSchema(ctx context.Context) error {
	_, err := p.Pool.Exec(ctx, schemaSQL)
	return err
}

func (p *PgBank) EnsureAccount(ctx context.Context, account string, initial int64) error {
	if initial < 0 {
		return ErrNegativeAmount
	}
	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	tag, err := tx.Exec(ctx,
		`INSERT INTO accounts (id, balance) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING`,
		account, initial)
	if err != nil {
		return err
	}
	if tag.RowsAffected() > 0 && initial > 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE chip_supply SET total = total + $1, minted = minted + $1`, initial); err != nil {
			return err
		}
	}
	return tx.Commit(ctx)
}

func (p *PgBank) Balance(ctx context.Context, account string) (int64, error) {
	var bal int64
	err := p.Pool.QueryRow(ctx, `SELECT balance FROM accounts WHERE id = $1`, account).Scan(&bal)
	if err != nil {
		return 0, mapNotFound(err)
	}
	return bal, nil
}

func (p *PgBank) Debit(ctx context.Context, account string, amount int64, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var bal int64
	if err := tx.QueryRow(ctx,
		`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, account).Scan(&bal); err != nil {
		return 0, mapNotFound(err)
	}
	if bal < amount {
		return 0, ErrInsufficientBalance
	}
	newBal := bal - amount
	if err := p.applyTx(ctx, tx, account, newBal, entryType, -amount, refType, refID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBal, nil
}

func (p *PgBank) Credit(ctx context.Context, account string, amount int64, entryType, refType, refID string) (int64, error) {
	if amount < 0 {
		return 0, ErrNegativeAmount
	}
	tx, err := p.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	var bal int64
	if err := tx.QueryRow(ctx,
		`SELECT balance FROM accounts WHERE id = $1 FOR UPDATE`, account).Scan(&bal); err != nil {
		return 0, mapNotFound(err)
	}
	newBal := bal + amount
	if newBal < bal {
		return 0, ErrBalanceOverflow
	}
	if err := p.applyTx(ctx, tx, account, newBal, entryType, amount, refType, refID); err != nil {
		return 0, err
	}
	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return newBal, nil
}

func (p *PgBank) applyTx(ctx context.Context, tx pgx.Tx, account string, newBal int64, entryType string, amount int64, refType, refID string) error {
	if _, err := tx.Exec(ctx,
		`UPDATE accounts SET balance = $1, updated_at = now() WHERE id = $2`,
		newBal, account); err != nil {
		return err
	}
	if amount < 0 {
		if _, err := tx.Exec(ctx,
			`UPDATE chip_supply SET total = total + $1, burned = burned - $1`, amount); err != nil {
			return err
		}
	} else {
		if _, err := tx.Exec(ctx,
			`UPDATE chip_supply SET total = total + $1, minted = minted + $1`, amount); err != nil {
			return err
		}
	}
	_, err := tx.Exec(ctx,
		`INSERT INTO chip_ledger (id, account_id, type, amount, ref_type, ref_id) VALUES ($1, $2, $3, $4, $5, $6)`,
		ids.New(), account, entryType, amount, refType, refID)
	return err
}

func (p *PgBank) Supply(ctx context.Context) (SupplyStats, error) {
	var s SupplyStats
	err := p.Pool.QueryRow(ctx,
		`SELECT total, minted, burned, (SELECT count(*) FROM accounts) FROM chip_supply`).
		Scan(&s.TotalSupply, &s.Minted, &s.Burned, &s.Accounts)
	return s, err
}

func (p *PgBank) DepositStorage(ctx context.Context, account string, amount int64) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	_, err := p.Pool.Exec(ctx,
		`INSERT INTO accounts (id, storage_deposit) VALUES ($1, $2)
		 ON CONFLICT (id) DO UPDATE SET storage_deposit = accounts.storage_deposit + $2, updated_at = now()`,
		account, amount)
	return err
}

func (p *PgBank) HasSufficientStorage(ctx context.Context, account string) (bool, error) {
	var deposit int64
	err := p.Pool.QueryRow(ctx,
		`SELECT storage_deposit FROM accounts WHERE id = $1`, account).Scan(&deposit)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if p.requiredDeposit <= 0 {
		return true, nil
	}
	return deposit >= p.requiredDeposit, nil
}

func (p *PgBank) SupplyStats(ctx context.Context) (SupplyStats, error) {
	return p.Supply(ctx)
}

func (p *PgBank) ListAccounts(ctx context.Context, limit, offset int) ([]Account, error) {
	return p.Accounts(ctx, limit, offset)
}

func (p *PgBank) Accounts(ctx context.Context, limit, offset int) ([]Account, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := p.Pool.Query(ctx,
		`SELECT id, balance FROM accounts ORDER BY id LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Account
	for rows.Next() {
		var a Account
		if err := rows.Scan(&a.ID, &a.Balance); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAccountNotFound
	}
	return err
}
