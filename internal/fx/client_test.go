package fx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/f4y/internal/domain"
)

func TestRate_FetchesQuote(t *testing.T) {
	var gotPath, gotBase, gotSymbols string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotBase = r.URL.Query().Get("base")
		gotSymbols = r.URL.Query().Get("symbols")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"base":"USD","rates":{"EUR":0.92}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	rate, err := client.Rate(context.Background(), domain.CurrencyUSD, domain.CurrencyEUR)
	require.NoError(t, err)

	assert.True(t, rate.Equal(decimal.RequireFromString("0.92")), "rate = %s", rate)
	assert.Equal(t, "/latest", gotPath)
	assert.Equal(t, "USD", gotBase)
	assert.Equal(t, "EUR", gotSymbols)
}

func TestRate_SameCurrencySkipsLookup(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	rate, err := client.Rate(context.Background(), domain.CurrencyGBP, domain.CurrencyGBP)
	require.NoError(t, err)

	assert.True(t, rate.Equal(decimal.NewFromInt(1)))
	assert.Zero(t, calls)
}

func TestRate_UnexpectedStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate source down", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Rate(context.Background(), domain.CurrencyUSD, domain.CurrencyEUR)
	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestRate_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Rate(context.Background(), domain.CurrencyUSD, domain.CurrencyEUR)
	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestRate_MissingQuoteInResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"base":"USD","rates":{}}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Rate(context.Background(), domain.CurrencyUSD, domain.CurrencyEUR)
	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestRate_MalformedResponseBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL, time.Second)
	_, err := client.Rate(context.Background(), domain.CurrencyUSD, domain.CurrencyEUR)
	require.ErrorIs(t, err, domain.ErrRateUnavailable)
}

func TestRate_RejectsMalformedCurrencyPair(t *testing.T) {
	client := NewClient("http://unused", time.Second)

	_, err := client.Rate(context.Background(), domain.Currency("usd"), domain.CurrencyEUR)
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRateUnavailable)
}
