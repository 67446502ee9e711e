package stockgenius

import (
	"context"
	"errors"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"stockgenius/internal/trace"
)

// Field names used for fundamentals in tables and reports.
const (
	FieldCompanyName   = "Company Name"
	FieldPERatio       = "PE Ratio"
	FieldMarketCap     = "Market Cap"
	FieldDividendYield = "Dividend Yield"
)

// FundamentalFields is the fixed row order of formatted tables.
var FundamentalFields = []string{FieldCompanyName, FieldPERatio, FieldMarketCap, FieldDividendYield}

// ErrSymbolNotFound indicates the market-data provider has no record for the symbol.
var ErrSymbolNotFound = errors.New("symbol not found")

// FundamentalsRecord holds per-ticker fundamentals. A nil field is missing data, never zero.
type FundamentalsRecord struct {
	Ticker        string    `json:"ticker"`
	CompanyName   *string   `json:"company_name"`
	PERatio       *float64  `json:"pe_ratio"`
	MarketCap     *float64  `json:"market_cap"`
	DividendYield *float64  `json:"dividend_yield"`
	Error         string    `json:"error,omitempty"`
	ErrorCode     ErrorCode `json:"error_code,omitempty"`
}

// Available reports whether the fetch for this ticker succeeded.
func (r FundamentalsRecord) Available() bool {
	return r.Error == ""
}

// Value returns the raw value of a field: *float64 for numeric fields, *string for the name.
func (r FundamentalsRecord) Value(field string) any {
	switch field {
	case FieldCompanyName:
		return r.CompanyName
	case FieldPERatio:
		return r.PERatio
	case FieldMarketCap:
		return r.MarketCap
	case FieldDividendYield:
		return r.DividendYield
	default:
		return nil
	}
}

// missingRecord is the record of a ticker whose fetch failed: every field missing plus a note.
func missingRecord(ticker string, err *Error) FundamentalsRecord {
	return FundamentalsRecord{
		Ticker:    ticker,
		Error:     err.Error(),
		ErrorCode: err.Code,
	}
}

// MarketDataFetcher is the market-data collaborator: a possibly-failing function of a ticker.
type MarketDataFetcher interface {
	Name() string
	FetchFundamentals(ctx context.Context, ticker string) (FundamentalsRecord, error)
}

// fetchFundamentals fetches every ticker with bounded parallelism. Results keep the input
// order and failures are recovered into missing records.
func (c *Core) fetchFundamentals(ctx context.Context, tickers []string) []FundamentalsRecord {
	records := make([]FundamentalsRecord, len(tickers))
	sem := make(chan struct{}, c.fetchWorkers)
	var wg sync.WaitGroup
	for i, ticker := range tickers {
		wg.Add(1)
		go func(i int, ticker string) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			records[i] = c.fetchOne(ctx, ticker)
		}(i, ticker)
	}
	wg.Wait()
	return records
}

func (c *Core) fetchOne(ctx context.Context, ticker string) FundamentalsRecord {
	if c.market == nil {
		return missingRecord(ticker, NewError(ErrCodeUpstreamUnavailable, "no market-data provider configured"))
	}

	ctx, span := trace.StartSpan(ctx, "market.FetchFundamentals")
	defer span.End()
	span.SetAttributes(
		attribute.String("ticker", ticker),
		attribute.String("provider", c.market.Name()),
	)

	fetchCtx, cancel := context.WithTimeout(ctx, c.fetchTimeout)
	defer cancel()

	record, err := c.market.FetchFundamentals(fetchCtx, ticker)
	if err != nil {
		classified := upstreamError("fundamentals unavailable for "+ticker, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, classified.Message)
		c.logger.Warn("fundamentals fetch failed",
			"ticker", ticker,
			"provider", c.market.Name(),
			"code", classified.Code,
			"err", err,
		)
		return missingRecord(ticker, classified)
	}
	record.Ticker = ticker
	return record
}
