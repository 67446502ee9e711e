package stockgenius

import (
	"context"
	"fmt"
	"sync"
)

// StaticFetcher serves fundamentals from memory. It backs offline mode and tests.
type StaticFetcher struct {
	mu      sync.RWMutex
	records map[string]FundamentalsRecord
	errs    map[string]error
}

// NewStaticFetcher creates a fetcher preloaded with records keyed by their ticker.
func NewStaticFetcher(records ...FundamentalsRecord) *StaticFetcher {
	f := &StaticFetcher{
		records: make(map[string]FundamentalsRecord, len(records)),
		errs:    map[string]error{},
	}
	for _, r := range records {
		f.Set(r)
	}
	return f
}

// Name implements MarketDataFetcher.
func (f *StaticFetcher) Name() string { return "static" }

// Set stores or replaces a record.
func (f *StaticFetcher) Set(record FundamentalsRecord) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticker := normalizeSymbol(record.Ticker)
	record.Ticker = ticker
	f.records[ticker] = record
	delete(f.errs, ticker)
}

// Fail makes every fetch of ticker return err.
func (f *StaticFetcher) Fail(ticker string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.errs[normalizeSymbol(ticker)] = err
}

// FetchFundamentals implements MarketDataFetcher.
func (f *StaticFetcher) FetchFundamentals(ctx context.Context, ticker string) (FundamentalsRecord, error) {
	if err := ctx.Err(); err != nil {
		return FundamentalsRecord{}, err
	}
	ticker = normalizeSymbol(ticker)

	f.mu.RLock()
	defer f.mu.RUnlock()
	if err, ok := f.errs[ticker]; ok {
		return FundamentalsRecord{}, err
	}
	record, ok := f.records[ticker]
	if !ok {
		return FundamentalsRecord{}, fmt.Errorf("%s: %w", ticker, ErrSymbolNotFound)
	}
	return record, nil
}

// SampleFundamentals is a small offline dataset covering the default tickers of every tier.
func SampleFundamentals() []FundamentalsRecord {
	type row struct {
		ticker, name    string
		pe, mcap, yield float64
	}
	rows := []row{
		{"AAPL", "Apple Inc", 29.8, 3.4e12, 0.0044},
		{"MSFT", "Microsoft Corporation", 35.2, 3.1e12, 0.0072},
		{"GOOGL", "Alphabet Inc Class A", 23.1, 2.1e12, 0.0046},
		{"JPM", "JPMorgan Chase & Co", 12.4, 6.1e11, 0.022},
		{"V", "Visa Inc", 31.5, 5.6e11, 0.0072},
		{"JNJ", "Johnson & Johnson", 15.6, 3.7e11, 0.031},
		{"KO", "Coca-Cola Company", 24.9, 2.9e11, 0.029},
		{"PEP", "PepsiCo Inc", 22.7, 2.1e11, 0.035},
		{"PG", "Procter & Gamble Company", 26.3, 3.9e11, 0.024},
		{"WMT", "Walmart Inc", 38.4, 7.3e11, 0.0097},
		{"AMD", "Advanced Micro Devices Inc", 98.2, 2.6e11, 0},
		{"NVDA", "NVIDIA Corporation", 54.6, 4.2e12, 0.0002},
		{"PLTR", "Palantir Technologies Inc", 410.5, 3.5e11, 0},
		{"SHOP", "Shopify Inc", 82.3, 1.9e11, 0},
		{"TSLA", "Tesla Inc", 180.7, 1.3e12, 0},
		{"AMZN", "Amazon.com Inc", 34.6, 2.3e12, 0},
		{"NFLX", "Netflix Inc", 48.9, 5.2e11, 0},
		{"BRK-B", "Berkshire Hathaway Inc Class B", 13.2, 1.0e12, 0},
		{"T", "AT&T Inc", 17.1, 1.9e11, 0.041},
	}
	out := make([]FundamentalsRecord, 0, len(rows))
	for _, r := range rows {
		name, pe, mc, dy := r.name, r.pe, r.mcap, r.yield
		rec := FundamentalsRecord{Ticker: r.ticker, CompanyName: &name, PERatio: &pe, MarketCap: &mc}
		if dy > 0 {
			rec.DividendYield = &dy
		}
		out = append(out, rec)
	}
	return out
}
