package stockgenius

import (
	"encoding/json"
	"sort"
	"strings"
)

// TickerSet is a set of upper-cased ticker symbols.
type TickerSet struct {
	members map[string]struct{}
}

// NewTickerSet builds a set from the given symbols, normalizing each one.
func NewTickerSet(tickers ...string) TickerSet {
	s := TickerSet{members: make(map[string]struct{}, len(tickers))}
	s.Add(tickers...)
	return s
}

// Add inserts symbols; blank symbols are ignored.
func (s *TickerSet) Add(tickers ...string) {
	if s.members == nil {
		s.members = make(map[string]struct{}, len(tickers))
	}
	for _, t := range tickers {
		t = normalizeSymbol(t)
		if t == "" {
			continue
		}
		s.members[t] = struct{}{}
	}
}

// Contains reports whether the symbol is in the set.
func (s TickerSet) Contains(ticker string) bool {
	_, ok := s.members[normalizeSymbol(ticker)]
	return ok
}

// Len returns the number of symbols.
func (s TickerSet) Len() int {
	return len(s.members)
}

// Sorted returns the symbols in lexicographic order.
func (s TickerSet) Sorted() []string {
	out := make([]string, 0, len(s.members))
	for t := range s.members {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// MarshalJSON encodes the set as a sorted array.
func (s TickerSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// ParseCustomTickers splits a comma-separated list, trimming and upper-casing each token and
// discarding empty ones.
func ParseCustomTickers(raw string) []string {
	var out []string
	for _, token := range strings.Split(raw, ",") {
		if t := normalizeSymbol(token); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func normalizeSymbol(symbol string) string {
	return strings.ToUpper(strings.TrimSpace(symbol))
}
