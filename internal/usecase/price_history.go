package usecase

import "sync"

const (
	HighlightNone = ""
	HighlightUp   = "price-up"
	HighlightDown = "price-down"
)

// PriceHistory remembers the last rendered price per exchange and symbol.
type PriceHistory struct {
	mu     sync.Mutex
	prices map[string]float64
}

func NewPriceHistory() *PriceHistory {
	return &PriceHistory{prices: make(map[string]float64)}
}

// Observe records price and returns the highlight class relative to the
// previous observation. The first observation never highlights.
func (h *PriceHistory) Observe(exchange, symbol string, price float64) string {
	key := exchange + "|" + symbol

	h.mu.Lock()
	defer h.mu.Unlock()

	prev, seen := h.prices[key]
	h.prices[key] = price
	switch {
	case !seen || price == prev:
		return HighlightNone
	case price > prev:
		return HighlightUp
	default:
		return HighlightDown
	}
}
