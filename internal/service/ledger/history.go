package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
)

// HistoryEntry is one row of an account's reconstructed history: the
// transaction, its signed effect on this account, and the running balance
// after it.
type HistoryEntry struct {
	Transaction domain.Transaction
	Change      decimal.Decimal
	Balance     decimal.Decimal
}

// AccountHistory replays every transaction referencing the account, in date
// order with the transaction id as tiebreak, accumulating the running
// balance from zero. The final running balance must equal the stored balance
// exactly; a mismatch means the transaction log and the balance column have
// diverged and is surfaced as a hard integrity failure.
func (s *Service) AccountHistory(ctx context.Context, number int64) (*domain.Account, []HistoryEntry, error) {
	account, err := s.accounts.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, fmt.Errorf("AccountHistory: %w", domain.ErrAccountNotFound)
		}
		return nil, nil, fmt.Errorf("AccountHistory: %w", err)
	}

	txns, err := s.txns.ListByAccount(ctx, number)
	if err != nil {
		return nil, nil, fmt.Errorf("AccountHistory: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(txns))
	running := decimal.Zero
	for i := range txns {
		change, err := signedChange(&txns[i], number)
		if err != nil {
			return nil, nil, fmt.Errorf("AccountHistory: %w", err)
		}
		running = running.Add(change)
		entries = append(entries, HistoryEntry{
			Transaction: txns[i],
			Change:      change,
			Balance:     running,
		})
	}

	if !running.Equal(account.Balance) {
		return nil, nil, fmt.Errorf("AccountHistory: account %d: replayed %s, stored %s: %w",
			number, running, account.Balance, domain.ErrBalanceMismatch)
	}

	return account, entries, nil
}

// signedChange is the transaction's effect on the given account: negative
// when the account is debited, positive when credited.
func signedChange(txn *domain.Transaction, number int64) (decimal.Decimal, error) {
	switch txn.OpType {
	case domain.OpDeposit:
		if txn.DestAmount == nil {
			return decimal.Zero, fmt.Errorf("signedChange: deposit %s has no dest amount", txn.ID)
		}
		return *txn.DestAmount, nil

	case domain.OpWithdrawal:
		if txn.SourceAmount == nil {
			return decimal.Zero, fmt.Errorf("signedChange: withdrawal %s has no source amount", txn.ID)
		}
		return txn.SourceAmount.Neg(), nil

	case domain.OpTransfer:
		if txn.SourceAccount != nil && *txn.SourceAccount == number {
			if txn.SourceAmount == nil {
				return decimal.Zero, fmt.Errorf("signedChange: transfer %s has no source amount", txn.ID)
			}
			return txn.SourceAmount.Neg(), nil
		}
		if txn.DestAccount != nil && *txn.DestAccount == number {
			if txn.DestAmount == nil {
				return decimal.Zero, fmt.Errorf("signedChange: transfer %s has no dest amount", txn.ID)
			}
			return *txn.DestAmount, nil
		}
		return decimal.Zero, fmt.Errorf("signedChange: transfer %s does not touch account %d", txn.ID, number)

	default:
		return decimal.Zero, fmt.Errorf("signedChange: unrecognized op type %q in transaction %s", txn.OpType, txn.ID)
	}
}
