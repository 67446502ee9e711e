package mobile

import (
	"context"
	"encoding/json"
	"fmt"

	"stockgenius/pkg/stockgenius"
)

// Core wraps the StockGenius core for gomobile bindings. It runs offline against the
// bundled sample fundamentals.
type Core struct {
	core *stockgenius.Core
}

// Open initializes the core. A non-empty journalPath enables the advice journal.
func Open(journalPath string) (*Core, error) {
	core, err := stockgenius.OpenWithOptions(stockgenius.Options{
		Market:      stockgenius.NewStaticFetcher(stockgenius.SampleFundamentals()...),
		JournalPath: journalPath,
	})
	if err != nil {
		return nil, err
	}
	return &Core{core: core}, nil
}

// Close releases resources.
func (c *Core) Close() error {
	if c == nil || c.core == nil {
		return nil
	}
	return c.core.Close()
}

// RecommendJSON selects and enriches tickers from a JSON profile and returns the recommendation as JSON.
func (c *Core) RecommendJSON(payloadJSON string) (string, error) {
	var payload selectPayload
	if err := unmarshalPayload(payloadJSON, &payload); err != nil {
		return "", err
	}
	rec, err := c.core.Recommend(context.Background(), payload.RiskTier, payload.Strategy, payload.CustomTickers)
	if err != nil {
		return "", err
	}
	return marshalJSON(rec)
}

// SimulateJSON runs one projection from a JSON request and returns the result as JSON.
func (c *Core) SimulateJSON(payloadJSON string) (string, error) {
	var req stockgenius.SimulationRequest
	if err := unmarshalPayload(payloadJSON, &req); err != nil {
		return "", err
	}
	result, err := c.core.Simulate(req)
	if err != nil {
		return "", err
	}
	return marshalJSON(result)
}

// CompareJSON compares a target with comma-separated competitors and returns the formatted table as JSON.
func (c *Core) CompareJSON(target, competitors string) (string, error) {
	table, err := c.core.Compare(context.Background(), target, stockgenius.SplitCompetitors(competitors))
	if err != nil {
		return "", err
	}
	return marshalJSON(table.Format())
}

// ReportMarkdown builds a comparative report from a JSON request and returns its Markdown.
func (c *Core) ReportMarkdown(payloadJSON string) (string, error) {
	var req stockgenius.ReportRequest
	if err := unmarshalPayload(payloadJSON, &req); err != nil {
		return "", err
	}
	doc, err := c.core.BuildReport(context.Background(), req)
	if err != nil {
		return "", err
	}
	return doc.Markdown, nil
}

// AdviceHistoryJSON lists journaled advisor runs. An empty kind lists every kind.
func (c *Core) AdviceHistoryJSON(kind string, limit int) (string, error) {
	records, err := c.core.ListAdviceHistory(context.Background(), stockgenius.AdviceKind(kind), limit)
	if err != nil {
		return "", err
	}
	return marshalJSON(records)
}

func unmarshalPayload(payloadJSON string, dst any) error {
	if err := json.Unmarshal([]byte(payloadJSON), dst); err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	return nil
}

func marshalJSON(value any) (string, error) {
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

type selectPayload struct {
	RiskTier      string `json:"risk_tier"`
	Strategy      string `json:"strategy"`
	CustomTickers string `json:"custom_tickers"`
}
