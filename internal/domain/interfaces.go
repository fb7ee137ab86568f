package domain

import (
	"context"
	"time"
)

// Backend defines the HTTP API of the trading backend the board polls.
type Backend interface {
	FetchOrderbook(ctx context.Context) ([]*TickRecord, error)
	FetchBalances(ctx context.Context) (map[string]Balance, error)
	FetchPrices(ctx context.Context) (map[string]map[string]PriceQuote, error)
	FetchTime(ctx context.Context) (*ServerTime, error)
	FetchStatus(ctx context.Context) (*SystemStatus, error)

	StartTrading(ctx context.Context) (*TradingStatus, error)
	StopTrading(ctx context.Context) (*TradingStatus, error)
	TradingStatus(ctx context.Context) (*TradingStatus, error)
}

// Notifier delivers human readable alerts.
type Notifier interface {
	Enabled() bool
	Send(ctx context.Context, message string) error
}

// GapObservation is one journal row.
type GapObservation struct {
	ID              string    `json:"id"`
	Pair            string    `json:"pair"`
	Symbol          string    `json:"symbol"`
	PercentGap      float64   `json:"percent_gap"`
	AbsoluteGap     float64   `json:"absolute_gap"`
	ReferencePrice  float64   `json:"reference_price"`
	ComparisonPrice float64   `json:"comparison_price"`
	ReferenceBest   float64   `json:"reference_best"`
	ComparisonBest  float64   `json:"comparison_best"`
	MinDepth        float64   `json:"min_depth"`
	ObservedAt      time.Time `json:"observed_at"`
}

// GapJournal stores gap observations for the lifetime of the process.
type GapJournal interface {
	SaveGap(ctx context.Context, obs *GapObservation) error
	ListGaps(ctx context.Context, symbol string, limit int) ([]*GapObservation, error)
	PruneGaps(ctx context.Context, olderThan time.Time) (int64, error)
}
