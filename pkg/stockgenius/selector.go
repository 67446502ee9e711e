package stockgenius

import "context"

// Select derives the candidate ticker set: the tier's defaults, the tickers of every matching
// strategy rule, and the parsed custom tickers. Unrecognized tiers contribute nothing.
func Select(riskTier, strategy, customTickers string) TickerSet {
	tier, _ := ParseRiskTier(riskTier)
	set := NewTickerSet(tier.DefaultTickers()...)
	for _, rule := range MatchedRules(strategy) {
		set.Add(rule.Tickers...)
	}
	set.Add(ParseCustomTickers(customTickers)...)
	return set
}

// Enrich fetches fundamentals for every ticker of the set, in lexicographic order. A failing
// ticker yields an all-missing record with an error note; the batch never aborts.
func (c *Core) Enrich(ctx context.Context, set TickerSet) ([]FundamentalsRecord, error) {
	if set.Len() == 0 {
		return nil, invalidInputf("ticker set is empty")
	}
	tickers := set.Sorted()
	records := c.fetchFundamentals(ctx, tickers)
	c.logger.Info("enriched ticker set", "tickers", len(tickers), "failed", countFailed(records))
	return records, nil
}

// Recommendation is the result of selection plus enrichment.
type Recommendation struct {
	Tickers TickerSet            `json:"tickers"`
	Records []FundamentalsRecord `json:"records"`
	Table   FormattedTable       `json:"table"`
}

// Recommend runs Select then Enrich and formats the enriched records as a table.
func (c *Core) Recommend(ctx context.Context, riskTier, strategy, customTickers string) (*Recommendation, error) {
	set := Select(riskTier, strategy, customTickers)
	records, err := c.Enrich(ctx, set)
	if err != nil {
		return nil, err
	}
	return &Recommendation{
		Tickers: set,
		Records: records,
		Table:   FormatRecords(records),
	}, nil
}

func countFailed(records []FundamentalsRecord) int {
	n := 0
	for _, r := range records {
		if !r.Available() {
			n++
		}
	}
	return n
}
