package usecase

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vitos/crypto_gap_board/internal/domain"
	"go.uber.org/zap"
)

// GapRecorder appends a journal row whenever the 2dp rounded gap of a
// (pair, symbol) changes.
type GapRecorder struct {
	journal domain.GapJournal
	logger  *zap.Logger
	timeNow func() time.Time

	mu   sync.Mutex
	last map[string]string
}

func NewGapRecorder(journal domain.GapJournal, logger *zap.Logger) *GapRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GapRecorder{
		journal: journal,
		logger:  logger,
		timeNow: time.Now,
		last:    make(map[string]string),
	}
}

func (r *GapRecorder) ObserveGaps(ctx context.Context, snapshot domain.SymbolSnapshot, gaps []domain.GapResult) {
	now := r.timeNow()
	for _, gap := range gaps {
		key := gap.Pair + "|" + gap.Symbol
		rounded := decimal.NewFromFloat(gap.PercentGap).StringFixed(2)

		r.mu.Lock()
		unchanged := r.last[key] == rounded
		r.mu.Unlock()
		if unchanged {
			continue
		}

		obs := r.observation(gap, snapshot[gap.Symbol][gap.Reference], snapshot[gap.Symbol][gap.Comparison], now)
		if err := r.journal.SaveGap(ctx, obs); err != nil {
			r.logger.Error("Failed to journal gap",
				zap.String("pair", gap.Pair),
				zap.String("symbol", gap.Symbol),
				zap.Error(err))
			continue
		}

		r.mu.Lock()
		r.last[key] = rounded
		r.mu.Unlock()
	}
}

func (r *GapRecorder) observation(gap domain.GapResult, ref, cmp domain.TickRecord, at time.Time) *domain.GapObservation {
	obs := &domain.GapObservation{
		ID:              uuid.NewString(),
		Pair:            gap.Pair,
		Symbol:          gap.Symbol,
		PercentGap:      gap.PercentGap,
		AbsoluteGap:     gap.AbsoluteGap,
		ReferencePrice:  gap.ReferencePrice,
		ComparisonPrice: gap.ComparisonPrice,
		ObservedAt:      at,
	}
	if refLevel, cmpLevel, ok := SideLevels(gap.PercentGap, ref, cmp); ok {
		obs.ReferenceBest = refLevel.Price
		obs.ComparisonBest = cmpLevel.Price
	}
	if amount, ok := TradableAmount(ref, cmp); ok {
		obs.MinDepth = amount
	}
	return obs
}

// Prune drops journal rows older than retention.
func (r *GapRecorder) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := r.timeNow().Add(-retention)
	n, err := r.journal.PruneGaps(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		r.logger.Info("Pruned gap journal", zap.Int64("rows", n), zap.Time("before", cutoff))
	}
	return n, nil
}
