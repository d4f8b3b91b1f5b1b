package ledger

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
)

// balanceDelta is one side of an operation: the signed change to apply to
// an account and the error to report if the resulting balance fails the
// invariant check.
type balanceDelta struct {
	number       int64
	change       decimal.Decimal
	belowZeroErr *domain.Error
}

// apply persists the transaction record and its balance deltas in a single
// database transaction. After the deltas are in place every touched account
// must hold a balance strictly greater than zero; otherwise the whole unit
// of work, transaction record included, is rolled back.
func (s *Service) apply(ctx context.Context, txn *domain.Transaction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("apply: begin tx: %w", err)
	}
	defer tx.Rollback()

	locked, err := lockAccountsInOrder(ctx, tx, s.accounts, touchedAccounts(txn)...)
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}

	deltas, err := balanceDeltas(txn)
	if err != nil {
		return fmt.Errorf("apply: %w", err)
	}

	if err := s.txns.Create(ctx, tx, txn); err != nil {
		return fmt.Errorf("apply: create transaction: %w", err)
	}

	results := make([]decimal.Decimal, len(deltas))
	for i, d := range deltas {
		acct, ok := locked[d.number]
		if !ok {
			return fmt.Errorf("apply: account %d not locked", d.number)
		}
		results[i] = acct.Balance.Add(d.change)
		if err := s.accounts.UpdateBalance(ctx, tx, d.number, results[i]); err != nil {
			return fmt.Errorf("apply: update account %d: %w", d.number, err)
		}
	}

	// Re-check after both deltas are in place; rollback happens via the
	// deferred Rollback when we return without committing.
	for i, d := range deltas {
		if results[i].Sign() <= 0 {
			return fmt.Errorf("apply: account %d would end at %s: %w", d.number, results[i], d.belowZeroErr)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("apply: commit: %w", err)
	}
	return nil
}

// balanceDeltas maps the op type onto its one or two signed changes. An
// unrecognized op type here is a programming error: classification has
// already run.
func balanceDeltas(txn *domain.Transaction) ([]balanceDelta, error) {
	switch txn.OpType {
	case domain.OpDeposit:
		return []balanceDelta{
			{*txn.DestAccount, *txn.DestAmount, domain.ErrDestBelowZero},
		}, nil
	case domain.OpWithdrawal:
		return []balanceDelta{
			{*txn.SourceAccount, txn.SourceAmount.Neg(), domain.ErrSourceBelowZero},
		}, nil
	case domain.OpTransfer:
		return []balanceDelta{
			{*txn.SourceAccount, txn.SourceAmount.Neg(), domain.ErrSourceBelowZero},
			{*txn.DestAccount, *txn.DestAmount, domain.ErrDestBelowZero},
		}, nil
	default:
		return nil, fmt.Errorf("balanceDeltas: unrecognized op type %q", txn.OpType)
	}
}

func touchedAccounts(txn *domain.Transaction) []int64 {
	var numbers []int64
	if txn.SourceAccount != nil {
		numbers = append(numbers, *txn.SourceAccount)
	}
	if txn.DestAccount != nil {
		numbers = append(numbers, *txn.DestAccount)
	}
	return numbers
}

// lockAccountsInOrder takes row locks in ascending account-number order so
// concurrent operations on overlapping accounts cannot deadlock.
func lockAccountsInOrder(ctx context.Context, tx *sql.Tx, accounts accountRepo, numbers ...int64) (map[int64]*domain.Account, error) {
	sorted := make([]int64, len(numbers))
	copy(sorted, numbers)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	result := make(map[int64]*domain.Account, len(sorted))
	for _, n := range sorted {
		acct, err := accounts.GetForUpdate(ctx, tx, n)
		if err != nil {
			return nil, fmt.Errorf("lockAccountsInOrder: %w", err)
		}
		result[n] = acct
	}
	return result, nil
}
