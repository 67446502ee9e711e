package stockgenius

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const defaultAlphaVantageBaseURL = "https://www.alphavantage.co"

// maxResponseSize limits external API responses to 1MB.
const maxResponseSize = 1 << 20

// ErrRateLimited indicates the provider refused the call because of its request quota.
var ErrRateLimited = errors.New("rate limited by market-data provider")

// HTTPDoer is an interface for making HTTP requests. It enables dependency
// injection for testing without network calls.
type HTTPDoer interface {
	Do(*http.Request) (*http.Response, error)
}

// AlphaVantageFetcher reads company fundamentals from the Alpha Vantage OVERVIEW endpoint.
type AlphaVantageFetcher struct {
	apiKey  string
	baseURL string
	client  HTTPDoer
	timeout time.Duration
	logger  *slog.Logger
}

// AlphaVantageOption configures an AlphaVantageFetcher.
type AlphaVantageOption func(*AlphaVantageFetcher)

// WithAlphaVantageBaseURL overrides the API base URL.
func WithAlphaVantageBaseURL(baseURL string) AlphaVantageOption {
	return func(f *AlphaVantageFetcher) {
		f.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithAlphaVantageHTTPClient injects the HTTP client.
func WithAlphaVantageHTTPClient(client HTTPDoer) AlphaVantageOption {
	return func(f *AlphaVantageFetcher) {
		f.client = client
	}
}

// WithAlphaVantageTimeout sets the HTTP client timeout used when no client is injected.
func WithAlphaVantageTimeout(timeout time.Duration) AlphaVantageOption {
	return func(f *AlphaVantageFetcher) {
		f.timeout = timeout
	}
}

// WithAlphaVantageLogger sets the logger.
func WithAlphaVantageLogger(logger *slog.Logger) AlphaVantageOption {
	return func(f *AlphaVantageFetcher) {
		f.logger = logger
	}
}

// NewAlphaVantageFetcher creates a fetcher for the given API key.
func NewAlphaVantageFetcher(apiKey string, opts ...AlphaVantageOption) *AlphaVantageFetcher {
	f := &AlphaVantageFetcher{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: defaultAlphaVantageBaseURL,
		timeout: defaultFetchTimeout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	if f.logger == nil {
		f.logger = slog.Default()
	}
	return f
}

// Name implements MarketDataFetcher.
func (f *AlphaVantageFetcher) Name() string { return "alphavantage" }

type alphaVantageOverview struct {
	Symbol               string `json:"Symbol"`
	Name                 string `json:"Name"`
	PERatio              string `json:"PERatio"`
	MarketCapitalization string `json:"MarketCapitalization"`
	DividendYield        string `json:"DividendYield"`
}

// FetchFundamentals implements MarketDataFetcher.
func (f *AlphaVantageFetcher) FetchFundamentals(ctx context.Context, ticker string) (FundamentalsRecord, error) {
	ticker = normalizeSymbol(ticker)
	if ticker == "" {
		return FundamentalsRecord{}, invalidInputf("ticker is required")
	}

	q := url.Values{}
	q.Set("function", "OVERVIEW")
	q.Set("symbol", ticker)
	q.Set("apikey", f.apiKey)
	body, err := f.httpGet(ctx, f.baseURL+"/query?"+q.Encode())
	if err != nil {
		return FundamentalsRecord{}, err
	}
	if err := checkAPIError(body); err != nil {
		f.logger.Debug("alphavantage overview rejected", "ticker", ticker, "err", err)
		return FundamentalsRecord{}, fmt.Errorf("%s: %w", ticker, err)
	}
	return parseOverview(ticker, body)
}

func (f *AlphaVantageFetcher) httpGet(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("http status %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
}

// checkAPIError detects the error payloads Alpha Vantage returns with HTTP 200.
func checkAPIError(body []byte) error {
	var probe map[string]any
	if err := json.Unmarshal(body, &probe); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(probe) == 0 {
		return ErrSymbolNotFound
	}
	for _, key := range []string{"Note", "Information"} {
		if msg, ok := probe[key].(string); ok {
			return fmt.Errorf("%w: %s", ErrRateLimited, msg)
		}
	}
	if msg, ok := probe["Error Message"].(string); ok {
		return fmt.Errorf("%w: %s", ErrSymbolNotFound, msg)
	}
	return nil
}

func parseOverview(ticker string, body []byte) (FundamentalsRecord, error) {
	var overview alphaVantageOverview
	if err := json.Unmarshal(body, &overview); err != nil {
		return FundamentalsRecord{}, fmt.Errorf("decode overview: %w", err)
	}
	record := FundamentalsRecord{
		Ticker:        ticker,
		PERatio:       parseFloatPtr(overview.PERatio),
		MarketCap:     parseFloatPtr(overview.MarketCapitalization),
		DividendYield: parseFloatPtr(overview.DividendYield),
	}
	if name := strings.TrimSpace(overview.Name); !isMissingText(name) {
		record.CompanyName = &name
	}
	return record, nil
}

// parseFloatPtr parses a numeric field, returning nil for the provider's missing markers.
func parseFloatPtr(s string) *float64 {
	s = strings.TrimSpace(s)
	if isMissingText(s) {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func isMissingText(s string) bool {
	switch strings.ToLower(s) {
	case "", "none", "-", "null", "n/a":
		return true
	}
	return false
}
