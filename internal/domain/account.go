package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type Currency string

const (
	CurrencyUSD Currency = "USD"
	CurrencyEUR Currency = "EUR"
	CurrencyGBP Currency = "GBP"
	CurrencyCHF Currency = "CHF"
)

func (c Currency) IsValid() bool {
	switch c {
	case CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyCHF:
		return true
	}
	return false
}

// Explicitly supplied account numbers must be 8 digits. Auto-assigned
// numbers are sequential starting at 1 and are exempt.
const (
	MinExplicitAccountNumber int64 = 10_000_000
	MaxExplicitAccountNumber int64 = 99_999_999
)

func ValidExplicitAccountNumber(n int64) bool {
	return n >= MinExplicitAccountNumber && n <= MaxExplicitAccountNumber
}

type Account struct {
	Number    int64
	Currency  Currency
	Balance   decimal.Decimal
	CreatedAt time.Time
}
