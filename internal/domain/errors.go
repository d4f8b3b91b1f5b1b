package domain

import "errors"

// Error is a ledger validation failure that carries its short machine code
// from the point of origin. Exactly one of these is surfaced per failed
// request.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Message }

var (
	ErrMissingParams      = &Error{Code: "m_par", Message: "missing parameters"}
	ErrMissingDestAccount = &Error{Code: "m_destacc", Message: "missing destination account"}
	ErrMissingSrcAccount  = &Error{Code: "m_srcacc", Message: "missing source account"}
	ErrMissingAmount      = &Error{Code: "m_am", Message: "missing amount"}
	ErrMissingCurrency    = &Error{Code: "m_cur", Message: "missing currency"}
	ErrUnknownCurrency    = &Error{Code: "nf_cur", Message: "currency is not in the allowed set"}
	ErrAccountNotFound    = &Error{Code: "nf_acc", Message: "account does not exist"}
	ErrSourceBelowZero    = &Error{Code: "z_srcacc", Message: "operation would leave source account at or below zero"}
	ErrDestBelowZero      = &Error{Code: "z_destacc", Message: "operation would leave destination account at or below zero"}
	ErrSameAccount        = &Error{Code: "no_same", Message: "source and destination are the same account"}
	ErrNotANumber         = &Error{Code: "no_number", Message: "not a valid number"}
)

var (
	ErrNotFound = errors.New("not found")

	// ErrRateUnavailable is fatal to the operation it occurs in; no partial
	// transaction is ever created on the back of a failed rate lookup.
	ErrRateUnavailable = errors.New("connection to get currency rates failed")

	// ErrBalanceMismatch signals a latent engine bug: the transaction log and
	// the stored balance disagree. Never tolerated silently.
	ErrBalanceMismatch = errors.New("reconstructed balance does not match stored balance")
)
