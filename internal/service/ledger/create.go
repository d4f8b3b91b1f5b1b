package ledger

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
	"github.com/example/f4y/internal/logging"
)

// CreateTransactionRequest carries the raw create payload. A nil field means
// the caller omitted it entirely; an empty string means it was supplied with
// no value. The distinction matters: op classification looks at values,
// structural validation looks at presence.
type CreateTransactionRequest struct {
	SourceAccount *string
	DestAccount   *string
	Amount        *string
	Date          *time.Time
}

// CreateTransaction validates the request, classifies the operation,
// resolves the referenced accounts, computes amounts (converting across
// currencies when needed) and applies the result atomically. On any failure
// nothing is persisted and exactly one coded error is returned.
func (s *Service) CreateTransaction(ctx context.Context, req CreateTransactionRequest) (*domain.Transaction, error) {
	log := logging.FromContext(ctx)

	amount, err := validateRequest(req)
	if err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}

	op, err := classify(req)
	if err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}

	source, dest, err := s.resolveAccounts(ctx, op, req)
	if err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}

	txn, err := s.buildTransaction(ctx, op, source, dest, amount, req.Date)
	if err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}

	if err := s.apply(ctx, txn); err != nil {
		return nil, fmt.Errorf("CreateTransaction: %w", err)
	}

	log.Info("transaction applied",
		"transaction_id", txn.ID,
		"op_type", txn.OpType,
		"source_account", txn.SourceAccount,
		"dest_account", txn.DestAccount,
	)

	return txn, nil
}

// validateRequest checks field presence and the amount's shape. Missing
// fields are detected individually but only the first, in the fixed order
// destination, source, amount, is reported.
func validateRequest(req CreateTransactionRequest) (decimal.Decimal, error) {
	if req.DestAccount == nil && req.SourceAccount == nil && req.Amount == nil {
		return decimal.Zero, domain.ErrMissingParams
	}
	if req.DestAccount == nil {
		return decimal.Zero, domain.ErrMissingDestAccount
	}
	if req.SourceAccount == nil {
		return decimal.Zero, domain.ErrMissingSrcAccount
	}
	if req.Amount == nil || *req.Amount == "" {
		return decimal.Zero, domain.ErrMissingAmount
	}

	amount, err := decimal.NewFromString(*req.Amount)
	if err != nil || amount.IsNegative() {
		return decimal.Zero, domain.ErrNotANumber
	}

	// Columns store balanceScale fractional digits. Round here so the
	// balance invariant is checked against what will actually be persisted,
	// not a higher-precision intermediate.
	return amount.Round(balanceScale), nil
}

// classify derives the op type from which account identifiers carry a
// value, not from an explicit field.
func classify(req CreateTransactionRequest) (domain.OpType, error) {
	hasSource := req.SourceAccount != nil && *req.SourceAccount != ""
	hasDest := req.DestAccount != nil && *req.DestAccount != ""

	switch {
	case !hasSource && hasDest:
		return domain.OpDeposit, nil
	case hasSource && !hasDest:
		return domain.OpWithdrawal, nil
	case hasSource && hasDest:
		return domain.OpTransfer, nil
	default:
		return "", domain.ErrMissingParams
	}
}

// resolveAccounts resolves both sides even when one fails, so every error is
// known internally; the first one (destination side checked first) wins.
func (s *Service) resolveAccounts(ctx context.Context, op domain.OpType, req CreateTransactionRequest) (*domain.Account, *domain.Account, error) {
	var (
		source, dest *domain.Account
		fieldErrs    []error
	)

	if op == domain.OpDeposit || op == domain.OpTransfer {
		a, err := s.lookupAccount(ctx, *req.DestAccount)
		if err != nil {
			var coded *domain.Error
			if !errors.As(err, &coded) {
				return nil, nil, fmt.Errorf("resolveAccounts: dest: %w", err)
			}
			fieldErrs = append(fieldErrs, err)
		}
		dest = a
	}

	if op == domain.OpWithdrawal || op == domain.OpTransfer {
		a, err := s.lookupAccount(ctx, *req.SourceAccount)
		if err != nil {
			var coded *domain.Error
			if !errors.As(err, &coded) {
				return nil, nil, fmt.Errorf("resolveAccounts: source: %w", err)
			}
			fieldErrs = append(fieldErrs, err)
		}
		source = a
	}

	if op == domain.OpTransfer && source != nil && dest != nil && source.Number == dest.Number {
		fieldErrs = append(fieldErrs, domain.ErrSameAccount)
	}

	if len(fieldErrs) > 0 {
		return nil, nil, fmt.Errorf("resolveAccounts: %w", fieldErrs[0])
	}
	return source, dest, nil
}

func (s *Service) lookupAccount(ctx context.Context, raw string) (*domain.Account, error) {
	number, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, domain.ErrAccountNotFound
	}

	a, err := s.accounts.GetByNumber(ctx, number)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrAccountNotFound
		}
		return nil, fmt.Errorf("lookupAccount: %w", err)
	}
	return a, nil
}

// buildTransaction computes the amounts for the classified operation. A
// cross-currency transfer quotes the rate provider; a provider failure
// aborts the whole operation before anything is written.
func (s *Service) buildTransaction(ctx context.Context, op domain.OpType, source, dest *domain.Account, amount decimal.Decimal, date *time.Time) (*domain.Transaction, error) {
	now := time.Now().UTC()
	eventDate := now
	if date != nil {
		eventDate = *date
	}

	txn := &domain.Transaction{
		ID:        uuid.New(),
		Date:      eventDate,
		OpType:    op,
		CreatedAt: now,
	}

	switch op {
	case domain.OpDeposit:
		txn.DestAccount = &dest.Number
		destAmount := amount
		txn.DestAmount = &destAmount

	case domain.OpWithdrawal:
		txn.SourceAccount = &source.Number
		sourceAmount := amount
		txn.SourceAmount = &sourceAmount

	case domain.OpTransfer:
		txn.SourceAccount = &source.Number
		txn.DestAccount = &dest.Number
		sourceAmount := amount
		txn.SourceAmount = &sourceAmount

		destAmount := amount
		if source.Currency != dest.Currency {
			rate, err := s.rates.Rate(ctx, source.Currency, dest.Currency)
			if err != nil {
				return nil, fmt.Errorf("buildTransaction: %s/%s: %w", source.Currency, dest.Currency, err)
			}
			destAmount = amount.Mul(rate).Round(balanceScale)
		}
		txn.DestAmount = &destAmount

	default:
		return nil, fmt.Errorf("buildTransaction: unrecognized op type %q", op)
	}

	return txn, nil
}
