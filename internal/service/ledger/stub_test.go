package ledger

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
)

// In-memory fakes for the engine's unit tests; the database-backed paths
// are covered by the integration tests.

type fakeAccounts struct {
	accounts map[int64]*domain.Account
}

func (f *fakeAccounts) GetByNumber(_ context.Context, number int64) (*domain.Account, error) {
	a, ok := f.accounts[number]
	if !ok {
		return nil, fmt.Errorf("GetByNumber: %w", domain.ErrNotFound)
	}
	return a, nil
}

func (f *fakeAccounts) GetForUpdate(_ context.Context, _ *sql.Tx, number int64) (*domain.Account, error) {
	return f.GetByNumber(context.Background(), number)
}

func (f *fakeAccounts) UpdateBalance(_ context.Context, _ *sql.Tx, number int64, balance decimal.Decimal) error {
	a, ok := f.accounts[number]
	if !ok {
		return fmt.Errorf("UpdateBalance: %w", domain.ErrNotFound)
	}
	a.Balance = balance
	return nil
}

type fakeTxns struct {
	txns []domain.Transaction
}

func (f *fakeTxns) Create(_ context.Context, _ *sql.Tx, txn *domain.Transaction) error {
	f.txns = append(f.txns, *txn)
	return nil
}

func (f *fakeTxns) GetByID(_ context.Context, id uuid.UUID) (*domain.Transaction, error) {
	for i := range f.txns {
		if f.txns[i].ID == id {
			return &f.txns[i], nil
		}
	}
	return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
}

func (f *fakeTxns) ListByAccount(_ context.Context, number int64) ([]domain.Transaction, error) {
	var out []domain.Transaction
	for _, t := range f.txns {
		if (t.SourceAccount != nil && *t.SourceAccount == number) ||
			(t.DestAccount != nil && *t.DestAccount == number) {
			out = append(out, t)
		}
	}
	return out, nil
}

type fakeRates struct {
	rate decimal.Decimal
	err  error
}

func (f *fakeRates) Rate(_ context.Context, _, _ domain.Currency) (decimal.Decimal, error) {
	if f.err != nil {
		return decimal.Zero, f.err
	}
	return f.rate, nil
}

func decPtr(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func int64Ptr(n int64) *int64 { return &n }
