package usecase

import (
	"github.com/vitos/crypto_gap_board/internal/domain"
	"go.uber.org/zap"
)

// Normalizer groups a raw orderbook payload by symbol and exchange.
type Normalizer struct {
	logger *zap.Logger
}

func NewNormalizer(logger *zap.Logger) *Normalizer {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Normalizer{logger: logger}
}

// Normalize drops records that cannot be placed (nil, no symbol, no exchange)
// and keeps the last record seen for each (symbol, exchange).
func (n *Normalizer) Normalize(records []*domain.TickRecord) domain.SymbolSnapshot {
	snapshot := make(domain.SymbolSnapshot)
	for i, rec := range records {
		if rec == nil {
			n.logger.Warn("Skipping malformed orderbook record", zap.Int("index", i))
			continue
		}
		if rec.Symbol == "" || rec.Exchange == "" {
			n.logger.Warn("Skipping orderbook record without symbol or exchange",
				zap.Int("index", i),
				zap.String("symbol", rec.Symbol),
				zap.String("exchange", rec.Exchange))
			continue
		}
		bySymbol, ok := snapshot[rec.Symbol]
		if !ok {
			bySymbol = make(map[string]domain.TickRecord)
			snapshot[rec.Symbol] = bySymbol
		}
		bySymbol[rec.Exchange] = *rec
	}
	return snapshot
}
