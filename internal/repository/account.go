package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
)

const accountColumns = `number, currency, balance, created_at`

type AccountRepository struct {
	db *sql.DB
}

func NewAccountRepository(db *sql.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

func (r *AccountRepository) GetByNumber(ctx context.Context, number int64) (*domain.Account, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE number = $1`, number,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByNumber: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByNumber: %w", err)
	}
	return a, nil
}

func (r *AccountRepository) List(ctx context.Context) ([]domain.Account, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+accountColumns+` FROM accounts ORDER BY number`,
	)
	if err != nil {
		return nil, fmt.Errorf("List: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("List: scan: %w", err)
		}
		accounts = append(accounts, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("List: rows: %w", err)
	}
	return accounts, nil
}

// Create inserts an account with an explicitly chosen number. A taken
// number surfaces as a unique violation (see IsUniqueViolation).
func (r *AccountRepository) Create(ctx context.Context, account *domain.Account) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO accounts (number, currency, balance, created_at)
		 VALUES ($1, $2, $3, $4)`,
		account.Number, account.Currency, account.Balance, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// accountNumberLockKey serializes sequential number reservation across
// concurrent creations (pg_advisory_xact_lock, released at commit).
const accountNumberLockKey = 855001

// CreateWithNextNumber reserves the next sequential number (current max + 1,
// or 1 for an empty store) and inserts the row in one transaction. The
// advisory lock keeps two concurrent creations from computing the same
// number; a collision with a concurrently chosen explicit number still
// surfaces as a unique violation, which the caller retries.
func (r *AccountRepository) CreateWithNextNumber(ctx context.Context, currency domain.Currency, createdAt time.Time) (*domain.Account, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("CreateWithNextNumber: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, accountNumberLockKey); err != nil {
		return nil, fmt.Errorf("CreateWithNextNumber: lock: %w", err)
	}

	a := &domain.Account{
		Currency:  currency,
		Balance:   decimal.Zero,
		CreatedAt: createdAt,
	}
	err = tx.QueryRowContext(ctx,
		`INSERT INTO accounts (number, currency, balance, created_at)
		 SELECT COALESCE(MAX(number), 0) + 1, $1, $2, $3 FROM accounts
		 RETURNING number`,
		currency, decimal.Zero, createdAt,
	).Scan(&a.Number)
	if err != nil {
		return nil, fmt.Errorf("CreateWithNextNumber: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("CreateWithNextNumber: commit: %w", err)
	}
	return a, nil
}

// GetForUpdate locks the account row for the duration of tx.
func (r *AccountRepository) GetForUpdate(ctx context.Context, tx *sql.Tx, number int64) (*domain.Account, error) {
	row := tx.QueryRowContext(ctx,
		`SELECT `+accountColumns+` FROM accounts WHERE number = $1 FOR UPDATE`, number,
	)
	a, err := scanAccount(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForUpdate: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForUpdate: %w", err)
	}
	return a, nil
}

// UpdateBalance writes a new balance inside tx; it commits or rolls back
// together with everything else in that transaction.
func (r *AccountRepository) UpdateBalance(ctx context.Context, tx *sql.Tx, number int64, balance decimal.Decimal) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE accounts SET balance = $1 WHERE number = $2`,
		balance, number,
	)
	if err != nil {
		return fmt.Errorf("UpdateBalance: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("UpdateBalance: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrNotFound)
	}
	return nil
}

func scanAccount(s scanner) (*domain.Account, error) {
	var a domain.Account
	err := s.Scan(&a.Number, &a.Currency, &a.Balance, &a.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
