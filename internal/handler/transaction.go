package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
	"github.com/example/f4y/internal/logging"
	"github.com/example/f4y/internal/service/ledger"
)

type ledgerService interface {
	CreateTransaction(ctx context.Context, req ledger.CreateTransactionRequest) (*domain.Transaction, error)
	GetTransaction(ctx context.Context, id uuid.UUID) (*domain.Transaction, error)
}

type TransactionHandler struct {
	ledger ledgerService
}

func NewTransactionHandler(svc ledgerService) *TransactionHandler {
	return &TransactionHandler{ledger: svc}
}

type createTransactionRequest struct {
	SourceAccount optString `json:"source_account"`
	DestAccount   optString `json:"dest_account"`
	Amount        optString `json:"amount"`
}

type transactionDTO struct {
	ID            uuid.UUID        `json:"id"`
	OpType        string           `json:"op_type"`
	Date          time.Time        `json:"date"`
	SourceAccount *int64           `json:"source_account"`
	DestAccount   *int64           `json:"dest_account"`
	SourceAmount  *decimal.Decimal `json:"source_amount"`
	DestAmount    *decimal.Decimal `json:"dest_amount"`
	CreatedAt     time.Time        `json:"created_at"`
}

func toTransactionDTO(t *domain.Transaction) transactionDTO {
	return transactionDTO{
		ID:            t.ID,
		OpType:        string(t.OpType),
		Date:          t.Date,
		SourceAccount: t.SourceAccount,
		DestAccount:   t.DestAccount,
		SourceAmount:  t.SourceAmount,
		DestAmount:    t.DestAmount,
		CreatedAt:     t.CreatedAt,
	}
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondError(w, http.StatusBadRequest, domain.ErrMissingParams.Code, domain.ErrMissingParams.Message)
		return
	}

	txn, err := h.ledger.CreateTransaction(r.Context(), ledger.CreateTransactionRequest{
		SourceAccount: req.SourceAccount.Ptr(),
		DestAccount:   req.DestAccount.Ptr(),
		Amount:        req.Amount.Ptr(),
	})
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to create transaction", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondJSON(w, http.StatusCreated, toTransactionDTO(txn))
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		RespondError(w, http.StatusNotFound, "not_found", "not found")
		return
	}

	txn, err := h.ledger.GetTransaction(r.Context(), id)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to get transaction", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondJSON(w, http.StatusOK, toTransactionDTO(txn))
}
