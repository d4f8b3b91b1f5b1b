package service_test

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/f4y/internal/repository"
	"github.com/example/f4y/internal/service"
	"github.com/example/f4y/internal/testutil"
)

func strPtr(s string) *string { return &s }

func TestCreateAccount_SequentialNumbering(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewAccountService(repository.NewAccountRepository(db))
	ctx := context.Background()

	const n = 5
	for i := int64(1); i <= n; i++ {
		account, err := svc.CreateAccount(ctx, service.CreateAccountRequest{Currency: strPtr("USD")})
		require.NoError(t, err)
		assert.Equal(t, i, account.Number)
	}
}

func TestCreateAccount_SequenceContinuesAfterExplicitNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewAccountService(repository.NewAccountRepository(db))
	ctx := context.Background()

	_, err := svc.CreateAccount(ctx, service.CreateAccountRequest{
		Currency: strPtr("EUR"),
		Number:   strPtr("10000000"),
	})
	require.NoError(t, err)

	account, err := svc.CreateAccount(ctx, service.CreateAccountRequest{Currency: strPtr("EUR")})
	require.NoError(t, err)
	assert.Equal(t, int64(10000001), account.Number)
}

func TestCreateAccount_DuplicateExplicitNumber(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewAccountService(repository.NewAccountRepository(db))
	ctx := context.Background()

	req := service.CreateAccountRequest{Currency: strPtr("GBP"), Number: strPtr("22222222")}

	_, err := svc.CreateAccount(ctx, req)
	require.NoError(t, err)

	_, err = svc.CreateAccount(ctx, req)
	require.Error(t, err)
	assert.True(t, repository.IsUniqueViolation(err))
}

func TestCreateAccount_ConcurrentNumbersAreDistinct(t *testing.T) {
	db := testutil.SetupTestDB(t)
	svc := service.NewAccountService(repository.NewAccountRepository(db))

	const n = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		numbers = make(map[int64]bool)
	)

	for range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			account, err := svc.CreateAccount(context.Background(), service.CreateAccountRequest{
				Currency: strPtr("USD"),
			})
			if err != nil {
				t.Errorf("concurrent create: %v", err)
				return
			}
			mu.Lock()
			numbers[account.Number] = true
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Len(t, numbers, n, "every concurrent create must receive a distinct number")
}
