package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
)

const transactionColumns = `id, date, op_type, source_account, dest_account,
	source_amount, dest_amount, created_at`

type TransactionRepository struct {
	db *sql.DB
}

func NewTransactionRepository(db *sql.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

// Create writes the transaction record inside tx so that it shares a
// commit-or-rollback scope with the balance updates it implies.
func (r *TransactionRepository) Create(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO transactions (
			id, date, op_type, source_account, dest_account,
			source_amount, dest_amount, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		txn.ID, txn.Date, txn.OpType, txn.SourceAccount, txn.DestAccount,
		nullDecimal(txn.SourceAmount), nullDecimal(txn.DestAmount), txn.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions WHERE id = $1`, id,
	)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return t, nil
}

// ListByAccount returns every transaction touching the account as source or
// destination, ordered by event date with the id as a stable tiebreak. This
// is the order the history reconstruction replays.
func (r *TransactionRepository) ListByAccount(ctx context.Context, number int64) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+transactionColumns+` FROM transactions
		 WHERE source_account = $1 OR dest_account = $1
		 ORDER BY date, id`,
		number,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByAccount: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByAccount: scan: %w", err)
		}
		txns = append(txns, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByAccount: rows: %w", err)
	}
	return txns, nil
}

func scanTransaction(s scanner) (*domain.Transaction, error) {
	var (
		t          domain.Transaction
		src, dst   sql.NullInt64
		srcA, dstA decimal.NullDecimal
	)
	err := s.Scan(&t.ID, &t.Date, &t.OpType, &src, &dst, &srcA, &dstA, &t.CreatedAt)
	if err != nil {
		return nil, err
	}
	if src.Valid {
		t.SourceAccount = &src.Int64
	}
	if dst.Valid {
		t.DestAccount = &dst.Int64
	}
	if srcA.Valid {
		t.SourceAmount = &srcA.Decimal
	}
	if dstA.Valid {
		t.DestAmount = &dstA.Decimal
	}
	return &t, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
