// Package fx resolves currency conversion rates from a fixer-style HTTP
// API. A rate r from currency A to currency B means 1 unit of A equals
// r units of B.
package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/f4y/internal/domain"
	"github.com/example/f4y/internal/logging"
)

var currencyCode = regexp.MustCompile(`^[A-Z]{3}$`)

type Client struct {
	baseURL    string
	httpClient *http.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

type ratesPayload struct {
	Base  string                     `json:"base"`
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Rate fetches the multiplicative conversion rate from source to dest. Any
// transport or decoding failure is reported as domain.ErrRateUnavailable;
// callers treat that as fatal to the operation in flight.
func (c *Client) Rate(ctx context.Context, source, dest domain.Currency) (decimal.Decimal, error) {
	if !currencyCode.MatchString(string(source)) || !currencyCode.MatchString(string(dest)) {
		return decimal.Zero, fmt.Errorf("Rate: malformed currency pair %q/%q", source, dest)
	}
	if source == dest {
		return decimal.NewFromInt(1), nil
	}

	log := logging.FromContext(ctx)

	// Ask only about the destination currency, in source terms.
	q := url.Values{}
	q.Set("base", string(source))
	q.Set("symbols", string(dest))
	reqURL := c.baseURL + "/latest?" + q.Encode()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Rate: build request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return decimal.Zero, fmt.Errorf("Rate: %s/%s: %w: %w", source, dest, domain.ErrRateUnavailable, err)
	}
	defer resp.Body.Close()

	log.Debug("rate response received",
		"pair", string(source)+"/"+string(dest),
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return decimal.Zero, fmt.Errorf("Rate: unexpected status %d: %s: %w", resp.StatusCode, string(body), domain.ErrRateUnavailable)
	}

	var payload ratesPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return decimal.Zero, fmt.Errorf("Rate: decode: %w: %w", domain.ErrRateUnavailable, err)
	}

	rate, ok := payload.Rates[string(dest)]
	if !ok {
		return decimal.Zero, fmt.Errorf("Rate: no quote for %s in response: %w", dest, domain.ErrRateUnavailable)
	}
	return rate, nil
}
