package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
	"github.com/example/f4y/internal/logging"
	"github.com/example/f4y/internal/repository"
)

// numberRetries bounds the reservation retries when concurrent creations
// race for the same sequential number.
const numberRetries = 5

type accountRepo interface {
	GetByNumber(ctx context.Context, number int64) (*domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	Create(ctx context.Context, account *domain.Account) error
	CreateWithNextNumber(ctx context.Context, currency domain.Currency, createdAt time.Time) (*domain.Account, error)
}

type AccountService struct {
	accounts accountRepo
}

func NewAccountService(accounts accountRepo) *AccountService {
	return &AccountService{accounts: accounts}
}

// CreateAccountRequest mirrors the create payload: currency is required,
// the number optional. Nil means the field was omitted.
type CreateAccountRequest struct {
	Currency *string
	Number   *string
}

// CreateAccount opens an account with a zero balance. Without an explicit
// number the next sequential one is assigned; the insert-select reservation
// may lose a race, in which case it is retried.
func (s *AccountService) CreateAccount(ctx context.Context, req CreateAccountRequest) (*domain.Account, error) {
	log := logging.FromContext(ctx)

	if req.Currency == nil || *req.Currency == "" {
		return nil, fmt.Errorf("CreateAccount: %w", domain.ErrMissingCurrency)
	}
	currency := domain.Currency(*req.Currency)
	if !currency.IsValid() {
		return nil, fmt.Errorf("CreateAccount: %q: %w", *req.Currency, domain.ErrUnknownCurrency)
	}

	var (
		account *domain.Account
		err     error
	)
	if req.Number != nil && *req.Number != "" {
		account, err = s.createWithExplicitNumber(ctx, currency, *req.Number)
	} else {
		account, err = s.createWithAssignedNumber(ctx, currency)
	}
	if err != nil {
		return nil, fmt.Errorf("CreateAccount: %w", err)
	}

	log.Info("account created",
		"account_number", account.Number,
		"currency", account.Currency,
	)
	return account, nil
}

func (s *AccountService) createWithExplicitNumber(ctx context.Context, currency domain.Currency, raw string) (*domain.Account, error) {
	number, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || !domain.ValidExplicitAccountNumber(number) {
		return nil, fmt.Errorf("createWithExplicitNumber: %q: %w", raw, domain.ErrNotANumber)
	}

	account := &domain.Account{
		Number:    number,
		Currency:  currency,
		Balance:   decimal.Zero,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("createWithExplicitNumber: %w", err)
	}
	return account, nil
}

func (s *AccountService) createWithAssignedNumber(ctx context.Context, currency domain.Currency) (*domain.Account, error) {
	var lastErr error
	for range numberRetries {
		account, err := s.accounts.CreateWithNextNumber(ctx, currency, time.Now().UTC())
		if err == nil {
			return account, nil
		}
		if !repository.IsUniqueViolation(err) {
			return nil, fmt.Errorf("createWithAssignedNumber: %w", err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("createWithAssignedNumber: gave up after %d attempts: %w", numberRetries, lastErr)
}

func (s *AccountService) GetAccount(ctx context.Context, number int64) (*domain.Account, error) {
	account, err := s.accounts.GetByNumber(ctx, number)
	if err != nil {
		return nil, fmt.Errorf("GetAccount: %w", err)
	}
	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	accounts, err := s.accounts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListAccounts: %w", err)
	}
	return accounts, nil
}
