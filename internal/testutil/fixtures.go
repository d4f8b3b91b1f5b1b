package testutil

import (
	"database/sql"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
)

func SeedAccount(t *testing.T, db *sql.DB, number int64, currency string, balance string) *domain.Account {
	t.Helper()

	a := &domain.Account{
		Number:    number,
		Currency:  domain.Currency(currency),
		Balance:   decimal.RequireFromString(balance),
		CreatedAt: time.Now().UTC(),
	}

	_, err := db.Exec(
		`INSERT INTO accounts (number, currency, balance, created_at)
		 VALUES ($1, $2, $3, $4)`,
		a.Number, a.Currency, a.Balance, a.CreatedAt,
	)
	if err != nil {
		t.Fatalf("seed account %d/%s: %v", number, currency, err)
	}
	return a
}

// SeedDeposit backfills a deposit transaction so the seeded balance stays
// reconstructible from the log.
func SeedDeposit(t *testing.T, db *sql.DB, number int64, amount string) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO transactions (id, date, op_type, dest_account, dest_amount, created_at)
		 VALUES (gen_random_uuid(), now(), 'deposit', $1, $2, now())`,
		number, decimal.RequireFromString(amount),
	)
	if err != nil {
		t.Fatalf("seed deposit into %d: %v", number, err)
	}
}

func GetBalance(t *testing.T, db *sql.DB, number int64) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(`SELECT balance FROM accounts WHERE number = $1`, number).Scan(&balance)
	if err != nil {
		t.Fatalf("get balance of %d: %v", number, err)
	}
	return balance
}

func CountTransactions(t *testing.T, db *sql.DB, number int64) int {
	t.Helper()

	var count int
	err := db.QueryRow(
		`SELECT COUNT(*) FROM transactions WHERE source_account = $1 OR dest_account = $1`, number,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count transactions of %d: %v", number, err)
	}
	return count
}
