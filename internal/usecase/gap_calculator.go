package usecase

import (
	"math"

	"github.com/vitos/crypto_gap_board/internal/domain"
)

// ComputeGap compares record a (reference) against record b (comparison).
//
// Notional sides: a positive gap means a is the expensive side, so a's best
// bid and b's best ask are the levels an arbitrage would hit. A negative gap
// swaps the sides. Notional stays nil when either level is missing.
func ComputeGap(pair domain.ExchangePair, a, b domain.TickRecord) (domain.GapResult, error) {
	if !a.HasPrice() || !b.HasPrice() {
		return domain.GapResult{}, domain.ErrMissingPrice
	}
	refPrice, cmpPrice := a.Price(), b.Price()
	if cmpPrice == 0 {
		return domain.GapResult{}, domain.ErrZeroReference
	}

	diff := refPrice - cmpPrice
	result := domain.GapResult{
		Pair:            pair.Name,
		Symbol:          a.Symbol,
		Reference:       pair.Reference,
		Comparison:      pair.Comparison,
		ReferencePrice:  refPrice,
		ComparisonPrice: cmpPrice,
		PercentGap:      diff / cmpPrice * 100,
		AbsoluteGap:     diff,
	}
	if result.Symbol == "" {
		result.Symbol = b.Symbol
	}

	if refLevel, cmpLevel, ok := SideLevels(result.PercentGap, a, b); ok {
		result.Notional = &domain.PairNotional{
			Reference:  refLevel.Total,
			Comparison: cmpLevel.Total,
		}
	}
	return result, nil
}

// SideLevels returns the best levels an arbitrage of the given gap direction
// would take on each side: a's bid and b's ask for a non-negative gap, a's ask
// and b's bid otherwise.
func SideLevels(percentGap float64, a, b domain.TickRecord) (ref, cmp domain.DepthLevel, ok bool) {
	var refOK, cmpOK bool
	if percentGap >= 0 {
		ref, refOK = a.BestBid()
		cmp, cmpOK = b.BestAsk()
	} else {
		ref, refOK = a.BestAsk()
		cmp, cmpOK = b.BestBid()
	}
	return ref, cmp, refOK && cmpOK
}

// TradableAmount is the smallest price × amount among the best ask and best
// bid of both records. It is false when any of the four levels is missing.
func TradableAmount(a, b domain.TickRecord) (float64, bool) {
	levels := make([]domain.DepthLevel, 0, 4)
	for _, rec := range []domain.TickRecord{a, b} {
		ask, okAsk := rec.BestAsk()
		bid, okBid := rec.BestBid()
		if !okAsk || !okBid {
			return 0, false
		}
		levels = append(levels, ask, bid)
	}
	amount := math.Inf(1)
	for _, lvl := range levels {
		amount = math.Min(amount, lvl.Price*lvl.Amount)
	}
	return amount, true
}

// ComputePairs evaluates every configured pair for every symbol where both
// exchanges are present. Results follow pair order, then symbol name.
// Symbols whose gap cannot be computed are skipped.
func ComputePairs(snapshot domain.SymbolSnapshot, pairs []domain.ExchangePair) []domain.GapResult {
	symbols := snapshot.Symbols()

	var results []domain.GapResult
	for _, pair := range pairs {
		for _, symbol := range symbols {
			exchanges := snapshot[symbol]
			a, okA := exchanges[pair.Reference]
			b, okB := exchanges[pair.Comparison]
			if !okA || !okB {
				continue
			}
			gap, err := ComputeGap(pair, a, b)
			if err != nil {
				continue
			}
			gap.Symbol = symbol
			results = append(results, gap)
		}
	}
	return results
}

// BackendGapMismatch reports whether the backend's own price_gap field
// disagrees with the recomputed gap by more than tolerance percentage points.
func BackendGapMismatch(rec domain.TickRecord, gap domain.GapResult, tolerance float64) (float64, bool) {
	if rec.PriceGap == nil {
		return 0, false
	}
	delta := *rec.PriceGap - gap.PercentGap
	if delta < 0 {
		delta = -delta
	}
	return *rec.PriceGap, delta > tolerance
}
