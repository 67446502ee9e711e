package stockgenius

import "strings"

// StrategyRule pairs a predicate over the strategy text with its two effects: tickers added
// by the selector and a multiplier applied by the simulator. Each consumer reads only its own
// effect, so the two never depend on each other.
type StrategyRule struct {
	Name    string
	Matches func(strategy string) bool
	Tickers []string
	Factor  float64
}

func keyword(word string) func(string) bool {
	return func(strategy string) bool {
		return strings.Contains(strings.ToLower(strategy), word)
	}
}

// strategyRules is evaluated in order; multiplication makes the factor order irrelevant but
// the order is kept fixed for reproducibility.
var strategyRules = []StrategyRule{
	{Name: "growth", Matches: keyword("growth"), Tickers: []string{"AMZN", "NFLX", "TSLA"}, Factor: 1.2},
	{Name: "value", Matches: keyword("value"), Tickers: []string{"BRK-B", "JNJ"}, Factor: 0.9},
	{Name: "dividend", Matches: keyword("dividend"), Tickers: []string{"KO", "PG", "T"}, Factor: 0.85},
}

// StrategyRules returns a copy of the keyword rule table.
func StrategyRules() []StrategyRule {
	out := make([]StrategyRule, len(strategyRules))
	copy(out, strategyRules)
	return out
}

// MatchedRules returns the rules whose predicate fires for the strategy text.
func MatchedRules(strategy string) []StrategyRule {
	var matched []StrategyRule
	for _, rule := range strategyRules {
		if rule.Matches(strategy) {
			matched = append(matched, rule)
		}
	}
	return matched
}

// StrategyFactor is the product of the factors of every matching rule (1.0 when none match).
func StrategyFactor(strategy string) float64 {
	factor := 1.0
	for _, rule := range MatchedRules(strategy) {
		factor *= rule.Factor
	}
	return factor
}
