package stockgenius

import (
	"context"
	"strings"
)

// ComparisonTable holds fundamentals for a target and its competitors. Tickers keeps the
// display order: target first, then competitors in caller order.
type ComparisonTable struct {
	Target  string                        `json:"target"`
	Tickers []string                      `json:"tickers"`
	Records map[string]FundamentalsRecord `json:"records"`
}

// Record returns the record for a ticker.
func (t ComparisonTable) Record(ticker string) (FundamentalsRecord, bool) {
	r, ok := t.Records[normalizeSymbol(ticker)]
	return r, ok
}

// Ordered returns the records in display order.
func (t ComparisonTable) Ordered() []FundamentalsRecord {
	out := make([]FundamentalsRecord, 0, len(t.Tickers))
	for _, ticker := range t.Tickers {
		if r, ok := t.Records[ticker]; ok {
			out = append(out, r)
		}
	}
	return out
}

// Format converts the table into display strings.
func (t ComparisonTable) Format() FormattedTable {
	return FormatRecords(t.Ordered())
}

// Compare fetches fundamentals for the target and every competitor. A failing ticker becomes
// an all-missing column; the comparison itself only fails on invalid input.
func (c *Core) Compare(ctx context.Context, target string, competitors []string) (*ComparisonTable, error) {
	tickers, err := comparisonTickers(target, competitors)
	if err != nil {
		return nil, err
	}

	records := c.fetchFundamentals(ctx, tickers)
	table := &ComparisonTable{
		Target:  tickers[0],
		Tickers: tickers,
		Records: make(map[string]FundamentalsRecord, len(records)),
	}
	for _, r := range records {
		table.Records[r.Ticker] = r
	}
	c.logger.Info("comparison built", "target", table.Target, "tickers", len(tickers), "failed", countFailed(records))
	return table, nil
}

// comparisonTickers normalizes the target and competitors, dropping blanks and repeats.
func comparisonTickers(target string, competitors []string) ([]string, error) {
	target = normalizeSymbol(target)
	if target == "" {
		return nil, invalidInputf("target ticker is required")
	}
	seen := map[string]struct{}{target: {}}
	tickers := []string{target}
	for _, raw := range competitors {
		for _, t := range ParseCustomTickers(raw) {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			tickers = append(tickers, t)
		}
	}
	return tickers, nil
}

// SplitCompetitors parses a free-text competitor list, accepting commas or whitespace.
func SplitCompetitors(raw string) []string {
	return strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
