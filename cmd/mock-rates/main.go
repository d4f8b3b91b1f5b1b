// mock-rates serves a fixer-style currency rate API for local development:
//
//	GET /latest?base=USD&symbols=EUR -> {"base":"USD","rates":{"EUR":"0.92"}}
package main

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/logging"
)

// Mid-market rates expressed against USD.
var usdRates = map[string]decimal.Decimal{
	"USD": decimal.NewFromInt(1),
	"EUR": decimal.RequireFromString("0.92"),
	"GBP": decimal.RequireFromString("0.79"),
	"CHF": decimal.RequireFromString("0.88"),
}

func main() {
	logging.Init("mock-rates", "info", os.Getenv("APP_ENV"))

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /latest", handleLatest)

	slog.Info("mock rates server started", "addr", ":8082")
	if err := http.ListenAndServe(":8082", mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func handleLatest(w http.ResponseWriter, r *http.Request) {
	base := r.URL.Query().Get("base")
	symbol := r.URL.Query().Get("symbols")

	baseUSD, ok := usdRates[base]
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "unsupported base " + base})
		return
	}
	symbolUSD, ok := usdRates[symbol]
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": "unsupported symbol " + symbol})
		return
	}

	// 1 base = symbolUSD/baseUSD units of symbol.
	rate := symbolUSD.DivRound(baseUSD, 8)

	writeJSON(w, http.StatusOK, map[string]any{
		"base":  base,
		"date":  time.Now().UTC().Format("2006-01-02"),
		"rates": map[string]decimal.Decimal{symbol: rate},
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}
