package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
	"github.com/example/f4y/internal/logging"
	"github.com/example/f4y/internal/service"
	"github.com/example/f4y/internal/service/ledger"
)

type accountService interface {
	CreateAccount(ctx context.Context, req service.CreateAccountRequest) (*domain.Account, error)
	ListAccounts(ctx context.Context) ([]domain.Account, error)
}

type historyService interface {
	AccountHistory(ctx context.Context, number int64) (*domain.Account, []ledger.HistoryEntry, error)
}

type AccountHandler struct {
	accounts accountService
	history  historyService
}

func NewAccountHandler(accounts accountService, history historyService) *AccountHandler {
	return &AccountHandler{accounts: accounts, history: history}
}

type createAccountRequest struct {
	Currency optString `json:"currency"`
	Number   optString `json:"number"`
}

// accountDTO exposes the internal number as "account_number".
type accountDTO struct {
	AccountNumber int64           `json:"account_number"`
	Currency      string          `json:"currency"`
	Balance       decimal.Decimal `json:"balance"`
	CreatedAt     time.Time       `json:"created_at"`
}

func toAccountDTO(a *domain.Account) accountDTO {
	return accountDTO{
		AccountNumber: a.Number,
		Currency:      string(a.Currency),
		Balance:       a.Balance,
		CreatedAt:     a.CreatedAt,
	}
}

type historyRowDTO struct {
	Transaction transactionDTO  `json:"transaction"`
	Change      decimal.Decimal `json:"change"`
	Balance     decimal.Decimal `json:"balance"`
}

type accountDetailDTO struct {
	accountDTO
	History []historyRowDTO `json:"history"`
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMissingParams.Code, domain.ErrMissingParams.Message)
		return
	}

	account, err := h.accounts.CreateAccount(r.Context(), service.CreateAccountRequest{
		Currency: req.Currency.Ptr(),
		Number:   req.Number.Ptr(),
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create account", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, toAccountDTO(account))
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context())
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list accounts", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]accountDTO, len(accounts))
	for i := range accounts {
		dtos[i] = toAccountDTO(&accounts[i])
	}
	RespondJSON(w, http.StatusOK, dtos)
}

// Get returns the account together with its replayed transaction history:
// one row per transaction with the signed change and the running balance.
func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	number, err := strconv.ParseInt(r.PathValue("number"), 10, 64)
	if err != nil {
		RespondError(w, http.StatusNotFound, domain.ErrAccountNotFound.Code, domain.ErrAccountNotFound.Message)
		return
	}

	account, entries, err := h.history.AccountHistory(r.Context(), number)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to load account history", "error", err)
		RespondDomainError(w, err)
		return
	}

	rows := make([]historyRowDTO, len(entries))
	for i, e := range entries {
		rows[i] = historyRowDTO{
			Transaction: toTransactionDTO(&e.Transaction),
			Change:      e.Change,
			Balance:     e.Balance,
		}
	}

	RespondJSON(w, http.StatusOK, accountDetailDTO{
		accountDTO: toAccountDTO(account),
		History:    rows,
	})
}
