package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/f4y/internal/domain"
	"github.com/example/f4y/internal/service/ledger"
)

func strPtr(s string) *string { return &s }

type stubLedger struct {
	gotReq ledger.CreateTransactionRequest
	txn    *domain.Transaction
	err    error
}

func (s *stubLedger) CreateTransaction(_ context.Context, req ledger.CreateTransactionRequest) (*domain.Transaction, error) {
	s.gotReq = req
	if s.err != nil {
		return nil, s.err
	}
	return s.txn, nil
}

func (s *stubLedger) GetTransaction(_ context.Context, _ uuid.UUID) (*domain.Transaction, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.txn, nil
}

func decodeErrorBody(t *testing.T, rec *httptest.ResponseRecorder) errorBody {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestTransactionCreate_Success(t *testing.T) {
	amount := decimal.RequireFromString("100.25")
	dest := int64(1)
	stub := &stubLedger{txn: &domain.Transaction{
		ID:          uuid.New(),
		OpType:      domain.OpDeposit,
		Date:        time.Now().UTC(),
		DestAccount: &dest,
		DestAmount:  &amount,
		CreatedAt:   time.Now().UTC(),
	}}
	h := NewTransactionHandler(stub)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions",
		strings.NewReader(`{"dest_account": "1", "amount": "100.25"}`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	// Absent fields reach the ledger as nil, present ones as values.
	assert.Nil(t, stub.gotReq.SourceAccount)
	require.NotNil(t, stub.gotReq.DestAccount)
	assert.Equal(t, "1", *stub.gotReq.DestAccount)
	require.NotNil(t, stub.gotReq.Amount)
	assert.Equal(t, "100.25", *stub.gotReq.Amount)

	var dto transactionDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
	assert.Equal(t, stub.txn.ID, dto.ID)
	assert.Equal(t, "deposit", dto.OpType)
	assert.Nil(t, dto.SourceAccount)
	require.NotNil(t, dto.DestAmount)
	assert.True(t, dto.DestAmount.Equal(amount))
}

func TestTransactionCreate_MalformedBody(t *testing.T) {
	h := NewTransactionHandler(&stubLedger{})

	req := httptest.NewRequest(http.MethodPost, "/api/transactions", strings.NewReader(`{`))
	rec := httptest.NewRecorder()
	h.Create(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeErrorBody(t, rec)
	assert.True(t, body.Error)
	assert.Equal(t, "m_par", body.Code)
}

func TestTransactionCreate_ErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "missing params", err: domain.ErrMissingParams, wantStatus: http.StatusBadRequest, wantCode: "m_par"},
		{name: "unknown account", err: domain.ErrAccountNotFound, wantStatus: http.StatusNotFound, wantCode: "nf_acc"},
		{name: "source below zero", err: domain.ErrSourceBelowZero, wantStatus: http.StatusUnprocessableEntity, wantCode: "z_srcacc"},
		{name: "same account", err: domain.ErrSameAccount, wantStatus: http.StatusUnprocessableEntity, wantCode: "no_same"},
		{name: "rate provider down", err: domain.ErrRateUnavailable, wantStatus: http.StatusBadGateway, wantCode: "internal"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			h := NewTransactionHandler(&stubLedger{err: tc.err})

			req := httptest.NewRequest(http.MethodPost, "/api/transactions",
				strings.NewReader(`{"source_account": "1", "dest_account": "2", "amount": "10"}`))
			rec := httptest.NewRecorder()
			h.Create(rec, req)

			require.Equal(t, tc.wantStatus, rec.Code)
			body := decodeErrorBody(t, rec)
			assert.True(t, body.Error)
			assert.Equal(t, tc.wantCode, body.Code)
			assert.NotEmpty(t, body.Message)
		})
	}
}

func TestTransactionGet_InvalidID(t *testing.T) {
	h := NewTransactionHandler(&stubLedger{})

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/not-a-uuid", nil)
	req.SetPathValue("id", "not-a-uuid")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeErrorBody(t, rec).Code)
}

func TestTransactionGet_NotFound(t *testing.T) {
	h := NewTransactionHandler(&stubLedger{err: domain.ErrNotFound})

	id := uuid.New()
	req := httptest.NewRequest(http.MethodGet, "/api/transactions/"+id.String(), nil)
	req.SetPathValue("id", id.String())
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeErrorBody(t, rec).Code)
}
