// Package ledger implements the consistency engine: transaction
// validation, atomic application of balance deltas, and reconstruction of
// per-account running-balance history from the transaction log.
package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
)

// balanceScale is the fractional precision of stored balances and amounts.
const balanceScale = 5

type accountRepo interface {
	GetByNumber(ctx context.Context, number int64) (*domain.Account, error)
	GetForUpdate(ctx context.Context, tx *sql.Tx, number int64) (*domain.Account, error)
	UpdateBalance(ctx context.Context, tx *sql.Tx, number int64, balance decimal.Decimal) error
}

type transactionRepo interface {
	Create(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, number int64) ([]domain.Transaction, error)
}

// RateProvider quotes the multiplicative conversion rate between two
// currencies: 1 unit of source equals rate units of dest.
type RateProvider interface {
	Rate(ctx context.Context, source, dest domain.Currency) (decimal.Decimal, error)
}

type Service struct {
	accounts accountRepo
	txns     transactionRepo
	rates    RateProvider
	db       *sql.DB
}

func NewService(accounts accountRepo, txns transactionRepo, rates RateProvider, db *sql.DB) *Service {
	return &Service{
		accounts: accounts,
		txns:     txns,
		rates:    rates,
		db:       db,
	}
}

func (s *Service) GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error) {
	t, err := s.txns.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("GetTransaction: %w", err)
	}
	return t, nil
}
