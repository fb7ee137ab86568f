package render

import (
	"errors"
	"time"
)

// Region is one independently updated area of the board.
type Region string

const (
	RegionOrderbook Region = "orderbook"
	RegionSummary   Region = "summary"
	RegionBalances  Region = "balances"
	RegionPrices    Region = "prices"
	RegionClock     Region = "clock"
)

type Kind string

const (
	KindOrderbook    Kind = "orderbook"
	KindSummary      Kind = "summary"
	KindBalances     Kind = "balances"
	KindPrices       Kind = "prices"
	KindClock        Kind = "clock"
	KindInitializing Kind = "initializing"
	KindError        Kind = "error"
)

// Frame is the full content of one region. Targets replace whatever they
// showed for the region with the frame.
type Frame struct {
	Region     Region    `json:"region"`
	Kind       Kind      `json:"kind"`
	Stale      bool      `json:"stale,omitempty"`
	Notice     string    `json:"notice,omitempty"`
	FlashMs    int64     `json:"flash_ms,omitempty"`
	RenderedAt time.Time `json:"rendered_at"`

	Orderbook    *OrderbookView `json:"orderbook,omitempty"`
	Summary      *SummaryView   `json:"summary,omitempty"`
	Balances     *BalanceView   `json:"balances,omitempty"`
	Prices       *PriceView     `json:"prices,omitempty"`
	Clock        *ClockView     `json:"clock,omitempty"`
	Initializing *StatusView    `json:"initializing,omitempty"`
	Error        *ErrorView     `json:"error,omitempty"`
}

// ErrorFrame replaces a region with an error message.
func ErrorFrame(region Region, message string) Frame {
	return Frame{
		Region:     region,
		Kind:       KindError,
		RenderedAt: time.Now(),
		Error:      &ErrorView{Message: message, Icon: IconError},
	}
}

// Target draws frames. Draw is called from the scheduler goroutine only.
type Target interface {
	Draw(frame Frame) error
}

type TargetFunc func(frame Frame) error

func (f TargetFunc) Draw(frame Frame) error { return f(frame) }

// Multi fans a frame out to several targets. Every target is drawn even when
// an earlier one fails.
type Multi []Target

func (m Multi) Draw(frame Frame) error {
	var errs []error
	for _, t := range m {
		if err := t.Draw(frame); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
