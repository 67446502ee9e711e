package stockgenius

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"stockgenius/internal/trace"
)

const (
	advisorPersona = "You are a financial advisor."
	analystPersona = "You are a financial analyst."
)

// AdviceRequest carries the investor profile used by the recommendation and report prompts.
type AdviceRequest struct {
	RiskTier string `json:"risk_tier"`
	Duration string `json:"duration"`
	Strategy string `json:"strategy"`
}

// NarrationRequest carries the plan described by the simulation narrative prompt.
type NarrationRequest struct {
	Amount       Amount `json:"amount"`
	PeriodMonths int    `json:"period_months"`
	RiskTier     string `json:"risk_tier"`
}

// AdviceResult is the free-text output of one advisor call.
type AdviceResult struct {
	ID       string     `json:"id,omitempty"`
	Kind     AdviceKind `json:"kind"`
	Provider string     `json:"provider"`
	Model    string     `json:"model"`
	Content  string     `json:"content"`
}

// RecommendStocks asks the LLM for five US stocks suited to the profile, each with a brief reason.
func (c *Core) RecommendStocks(ctx context.Context, req AdviceRequest) (*AdviceResult, error) {
	tier, duration := profileLabels(req.RiskTier, req.Duration)
	var sb strings.Builder
	sb.WriteString("Based on the following investor preferences, recommend suitable US stocks:\n")
	fmt.Fprintf(&sb, "- Risk tolerance: %s\n", tier)
	fmt.Fprintf(&sb, "- Investment horizon: %s\n", duration)
	fmt.Fprintf(&sb, "- Investment strategy: %s\n\n", strings.TrimSpace(req.Strategy))
	sb.WriteString("Provide 5 stocks, each with a brief reason for the recommendation.")

	return c.advise(ctx, AdviceRecommendation, ChatRequest{System: advisorPersona, User: sb.String()}, AdviceRecord{
		RiskTier: tier,
		Duration: duration,
		Strategy: strings.TrimSpace(req.Strategy),
	})
}

// NarrateSimulation asks the LLM to describe the expected outcome of a monthly contribution plan.
func (c *Core) NarrateSimulation(ctx context.Context, req NarrationRequest) (*AdviceResult, error) {
	if !req.Amount.IsPositive() {
		return nil, invalidInputf("amount must be positive, got %s", req.Amount.String())
	}
	if req.PeriodMonths <= 0 {
		return nil, invalidInputf("period_months must be positive, got %d", req.PeriodMonths)
	}
	tier, _ := profileLabels(req.RiskTier, "")
	amount := req.Amount.StringFixed(2)

	var sb strings.Builder
	sb.WriteString("Simulate the outcome of the following dollar-cost averaging plan:\n")
	fmt.Fprintf(&sb, "- Monthly contribution: $%s\n", amount)
	fmt.Fprintf(&sb, "- Contribution period: %d months\n", req.PeriodMonths)
	fmt.Fprintf(&sb, "- Risk tolerance: %s\n\n", tier)
	sb.WriteString("Provide the expected annualized return and maximum drawdown, and briefly explain the result.")

	period := req.PeriodMonths
	a := Amount{req.Amount.Round(2)}
	return c.advise(ctx, AdviceSimulation, ChatRequest{System: analystPersona, User: sb.String()}, AdviceRecord{
		RiskTier:     tier,
		Amount:       &a,
		PeriodMonths: &period,
	})
}

// WriteReport asks the LLM for a full investment analysis report.
func (c *Core) WriteReport(ctx context.Context, req AdviceRequest) (*AdviceResult, error) {
	tier, duration := profileLabels(req.RiskTier, req.Duration)
	var sb strings.Builder
	sb.WriteString("Based on the following information, write an investment analysis report:\n")
	fmt.Fprintf(&sb, "- Risk tolerance: %s\n", tier)
	fmt.Fprintf(&sb, "- Investment horizon: %s\n", duration)
	fmt.Fprintf(&sb, "- Investment strategy: %s\n\n", strings.TrimSpace(req.Strategy))
	sb.WriteString("The report should include the following sections:\n")
	sb.WriteString("1. Recommended stocks\n")
	sb.WriteString("2. Dollar-cost averaging simulation results\n")
	sb.WriteString("3. Risk analysis\n")
	sb.WriteString("4. Conclusion")

	return c.advise(ctx, AdviceReport, ChatRequest{System: advisorPersona, User: sb.String()}, AdviceRecord{
		RiskTier: tier,
		Duration: duration,
		Strategy: strings.TrimSpace(req.Strategy),
	})
}

// profileLabels canonicalizes the tier and duration for prompts; unknown text passes through.
func profileLabels(riskTier, duration string) (string, string) {
	tier, _ := ParseRiskTier(riskTier)
	return string(tier), string(ParseDuration(duration))
}

func (c *Core) advise(ctx context.Context, kind AdviceKind, chat ChatRequest, record AdviceRecord) (*AdviceResult, error) {
	if c.llm == nil {
		return nil, NewError(ErrCodeUpstreamUnavailable, "no llm provider configured")
	}
	provider := c.llm.Name()

	ctx, span := trace.StartSpan(ctx, "llm.Complete")
	defer span.End()
	span.SetAttributes(
		attribute.String("provider", provider),
		attribute.String("advice.kind", string(kind)),
	)

	callCtx, cancel := context.WithTimeout(ctx, c.llmTimeout)
	defer cancel()

	result, err := c.llm.Complete(callCtx, chat)
	record.Kind = kind
	record.Provider = provider
	record.Model = result.Model

	if err != nil {
		classified := upstreamError(string(kind)+" advice unavailable", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, classified.Message)
		c.logger.Warn("llm completion failed", "provider", provider, "kind", kind, "code", classified.Code, "err", err)
		record.ErrorMessage = classified.Error()
		c.journalAdvice(ctx, record)
		return nil, classified
	}

	record.Content = result.Content
	id := c.journalAdvice(ctx, record)
	c.logger.Info("llm completion", "provider", provider, "model", result.Model, "kind", kind, "chars", len(result.Content))
	return &AdviceResult{
		ID:       id,
		Kind:     kind,
		Provider: provider,
		Model:    result.Model,
		Content:  result.Content,
	}, nil
}

// journalAdvice records the run when the journal is enabled. A journal failure is logged and
// never fails the advice call.
func (c *Core) journalAdvice(ctx context.Context, record AdviceRecord) string {
	if !c.JournalEnabled() {
		return ""
	}
	saved, err := c.RecordAdvice(ctx, record)
	if err != nil {
		c.logger.Warn("advice journal write failed", "kind", record.Kind, "err", err)
		return ""
	}
	return saved.ID
}
