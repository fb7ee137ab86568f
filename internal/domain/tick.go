package domain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// DepthLevel is one orderbook price level as published by the backend.
// On the wire it is an array: [price, amount, cumulative_total, local_price].
type DepthLevel struct {
	Price      float64
	Amount     float64
	Total      float64
	LocalPrice float64 // zero when the backend omits it
}

func (d *DepthLevel) UnmarshalJSON(data []byte) error {
	var raw []*float64
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("depth level: %w", err)
	}
	if len(raw) < 2 {
		return fmt.Errorf("depth level: want at least 2 elements, got %d", len(raw))
	}
	fields := []*float64{&d.Price, &d.Amount, &d.Total, &d.LocalPrice}
	for i, v := range raw {
		if i >= len(fields) {
			break
		}
		if v != nil {
			*fields[i] = *v
		}
	}
	return nil
}

func (d DepthLevel) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{d.Price, d.Amount, d.Total, d.LocalPrice})
}

// TickRecord is one exchange's view of one symbol in a poll cycle.
type TickRecord struct {
	Exchange       string       `json:"exchange"`
	Symbol         string       `json:"symbol"`
	LastPrice      *float64     `json:"last_price"`
	LastPriceLocal *float64     `json:"last_price_krw"`
	Asks           []DepthLevel `json:"asks"`
	Bids           []DepthLevel `json:"bids"`
	PriceGap       *float64     `json:"price_gap"`
	PriceGapQuote  *float64     `json:"price_gap_usdt"`
	Timestamp      int64        `json:"timestamp,omitempty"`
}

// HasPrice reports whether the record carries a non-null last price.
func (t TickRecord) HasPrice() bool {
	return t.LastPrice != nil
}

// Price returns the last price, or 0 when it is null.
func (t TickRecord) Price() float64 {
	if t.LastPrice == nil {
		return 0
	}
	return *t.LastPrice
}

// BestAsk returns the top ask level, if any.
func (t TickRecord) BestAsk() (DepthLevel, bool) {
	if len(t.Asks) == 0 {
		return DepthLevel{}, false
	}
	return t.Asks[0], true
}

// BestBid returns the top bid level, if any.
func (t TickRecord) BestBid() (DepthLevel, bool) {
	if len(t.Bids) == 0 {
		return DepthLevel{}, false
	}
	return t.Bids[0], true
}

// SymbolSnapshot groups tick records by symbol, then by exchange name.
type SymbolSnapshot map[string]map[string]TickRecord

// Len returns the number of (symbol, exchange) entries.
func (s SymbolSnapshot) Len() int {
	n := 0
	for _, exchanges := range s {
		n += len(exchanges)
	}
	return n
}

// Symbols returns the snapshot's symbols in sorted order.
func (s SymbolSnapshot) Symbols() []string {
	symbols := make([]string, 0, len(s))
	for symbol := range s {
		symbols = append(symbols, symbol)
	}
	sort.Strings(symbols)
	return symbols
}

// Exchanges returns the exchanges quoting symbol in sorted order.
func (s SymbolSnapshot) Exchanges(symbol string) []string {
	exchanges := make([]string, 0, len(s[symbol]))
	for exchange := range s[symbol] {
		exchanges = append(exchanges, exchange)
	}
	sort.Strings(exchanges)
	return exchanges
}

// ExchangePair names two exchanges whose prices are compared.
// PercentGap is computed as (Reference - Comparison) / Comparison.
type ExchangePair struct {
	Name       string `yaml:"name" json:"name"`
	Reference  string `yaml:"reference" json:"reference"`
	Comparison string `yaml:"comparison" json:"comparison"`
}

// PairNotional is the quote-currency amount available at the best level
// on each side of a pair.
type PairNotional struct {
	Reference  float64 `json:"reference"`
	Comparison float64 `json:"comparison"`
}

// GapResult is the spread between two exchanges for one symbol.
type GapResult struct {
	Pair            string        `json:"pair"`
	Symbol          string        `json:"symbol"`
	Reference       string        `json:"reference"`
	Comparison      string        `json:"comparison"`
	ReferencePrice  float64       `json:"reference_price"`
	ComparisonPrice float64       `json:"comparison_price"`
	PercentGap      float64       `json:"percent_gap"`
	AbsoluteGap     float64       `json:"absolute_gap"`
	Notional        *PairNotional `json:"notional,omitempty"` // nil when a book side is empty
}
