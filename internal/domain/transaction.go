package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type OpType string

const (
	OpDeposit    OpType = "deposit"
	OpWithdrawal OpType = "withdrawal"
	OpTransfer   OpType = "transfer"
)

// Transaction is immutable once created. It references accounts by number
// only; which of the optional fields are set depends on the op type:
//
//	deposit:    dest account + dest amount
//	withdrawal: source account + source amount
//	transfer:   all four
//
// Date is the economic event time, CreatedAt the record-insertion time.
type Transaction struct {
	ID            uuid.UUID
	Date          time.Time
	OpType        OpType
	SourceAccount *int64
	DestAccount   *int64
	SourceAmount  *decimal.Decimal
	DestAmount    *decimal.Decimal
	CreatedAt     time.Time
}
