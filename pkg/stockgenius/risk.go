package stockgenius

import "strings"

// RiskTier is the coarse risk appetite bucket selected by the user.
type RiskTier string

const (
	RiskLow    RiskTier = "Low"
	RiskMedium RiskTier = "Medium"
	RiskHigh   RiskTier = "High"
)

// RiskTiers lists the recognized tiers in ascending order.
var RiskTiers = []RiskTier{RiskLow, RiskMedium, RiskHigh}

var riskTierAliases = map[string]RiskTier{
	"low":          RiskLow,
	"low risk":     RiskLow,
	"conservative": RiskLow,
	"低风险":          RiskLow,
	"medium":       RiskMedium,
	"medium risk":  RiskMedium,
	"balanced":     RiskMedium,
	"中风险":          RiskMedium,
	"high":         RiskHigh,
	"high risk":    RiskHigh,
	"aggressive":   RiskHigh,
	"高风险":          RiskHigh,
}

var baseRiskFactors = map[RiskTier]float64{
	RiskLow:    0.8,
	RiskMedium: 1.0,
	RiskHigh:   1.2,
}

// Each default set has exactly five members.
var defaultTickers = map[RiskTier][]string{
	RiskLow:    {"JNJ", "KO", "PEP", "PG", "WMT"},
	RiskMedium: {"AAPL", "GOOGL", "JPM", "MSFT", "V"},
	RiskHigh:   {"AMD", "NVDA", "PLTR", "SHOP", "TSLA"},
}

// ParseRiskTier maps user input to a tier. The second result is false for unrecognized
// input; callers degrade silently rather than failing.
func ParseRiskTier(raw string) (RiskTier, bool) {
	key := strings.ToLower(strings.TrimSpace(raw))
	tier, ok := riskTierAliases[key]
	if !ok {
		return RiskTier(strings.TrimSpace(raw)), false
	}
	return tier, true
}

// Known reports whether the tier is one of the enumerated values.
func (t RiskTier) Known() bool {
	_, ok := baseRiskFactors[t]
	return ok
}

// BaseRisk returns the tier's base risk factor; unrecognized tiers get 1.0.
func (t RiskTier) BaseRisk() float64 {
	if f, ok := baseRiskFactors[t]; ok {
		return f
	}
	return 1.0
}

// DefaultTickers returns a copy of the tier's default ticker list (empty when unrecognized).
func (t RiskTier) DefaultTickers() []string {
	src := defaultTickers[t]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// DurationCategory is the investment horizon bucket used in advisor prompts.
type DurationCategory string

const (
	DurationShort  DurationCategory = "Short-term (<1 year)"
	DurationMedium DurationCategory = "Medium-term (1-3 years)"
	DurationLong   DurationCategory = "Long-term (>3 years)"
)

var durationAliases = map[string]DurationCategory{
	"short":       DurationShort,
	"short-term":  DurationShort,
	"短期":          DurationShort,
	"短期 (<1年)":    DurationShort,
	"medium":      DurationMedium,
	"medium-term": DurationMedium,
	"中期":          DurationMedium,
	"中期 (1-3年)":   DurationMedium,
	"long":        DurationLong,
	"long-term":   DurationLong,
	"长期":          DurationLong,
	"长期 (>3年)":    DurationLong,
}

// ParseDuration maps user input to a duration category; unknown text passes through verbatim.
func ParseDuration(raw string) DurationCategory {
	trimmed := strings.TrimSpace(raw)
	if d, ok := durationAliases[strings.ToLower(trimmed)]; ok {
		return d
	}
	return DurationCategory(trimmed)
}
