package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/vitos/crypto_gap_board/internal/domain"
	"github.com/vitos/crypto_gap_board/internal/render"
	"go.uber.org/zap"
)

// BalanceBoard renders exchange account balances.
type BalanceBoard struct {
	backend   domain.Backend
	formatter *render.Formatter
	sink      FrameSink
}

func NewBalanceBoard(backend domain.Backend, formatter *render.Formatter, sink FrameSink) *BalanceBoard {
	return &BalanceBoard{backend: backend, formatter: formatter, sink: sink}
}

func (b *BalanceBoard) Hooks() FeedHooks {
	return FeedHooks{Cycle: b.Cycle, GiveUp: b.GiveUp}
}

func (b *BalanceBoard) Cycle(ctx context.Context) error {
	balances, err := b.backend.FetchBalances(ctx)
	if err != nil {
		return fmt.Errorf("fetch balances: %w", err)
	}
	b.sink.Schedule(render.Frame{
		Region:     render.RegionBalances,
		Kind:       render.KindBalances,
		RenderedAt: time.Now(),
		Balances:   render.BuildBalanceView(balances, b.formatter),
	})
	return nil
}

func (b *BalanceBoard) GiveUp(error) {
	b.sink.Schedule(render.ErrorFrame(render.RegionBalances, render.MsgBalancesFailed))
}

// PriceBoard compares last prices of a watchlist across two venues.
type PriceBoard struct {
	backend    domain.Backend
	formatter  *render.Formatter
	sink       FrameSink
	watchlist  []string
	reference  string
	comparison string
}

func NewPriceBoard(backend domain.Backend, formatter *render.Formatter, sink FrameSink, watchlist []string, reference, comparison string) *PriceBoard {
	return &PriceBoard{
		backend:    backend,
		formatter:  formatter,
		sink:       sink,
		watchlist:  watchlist,
		reference:  reference,
		comparison: comparison,
	}
}

func (b *PriceBoard) Hooks() FeedHooks {
	return FeedHooks{Cycle: b.Cycle, GiveUp: b.GiveUp}
}

func (b *PriceBoard) Cycle(ctx context.Context) error {
	prices, err := b.backend.FetchPrices(ctx)
	if err != nil {
		return fmt.Errorf("fetch prices: %w", err)
	}
	b.sink.Schedule(render.Frame{
		Region:     render.RegionPrices,
		Kind:       render.KindPrices,
		RenderedAt: time.Now(),
		Prices:     render.BuildPriceView(prices, b.watchlist, b.reference, b.comparison, b.formatter),
	})
	return nil
}

func (b *PriceBoard) GiveUp(error) {
	b.sink.Schedule(render.ErrorFrame(render.RegionPrices, render.MsgPricesFailed))
}

// ClockBoard shows the backend clock, or the local clock in the display
// timezone when the backend cannot be reached. It never fails a cycle.
type ClockBoard struct {
	backend  domain.Backend
	sink     FrameSink
	location *time.Location
	logger   *zap.Logger
	timeNow  func() time.Time
}

func NewClockBoard(backend domain.Backend, sink FrameSink, location *time.Location, logger *zap.Logger) *ClockBoard {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.Local
	}
	return &ClockBoard{
		backend:  backend,
		sink:     sink,
		location: location,
		logger:   logger,
		timeNow:  time.Now,
	}
}

func (b *ClockBoard) Hooks() FeedHooks {
	return FeedHooks{Cycle: b.Cycle}
}

func (b *ClockBoard) Cycle(ctx context.Context) error {
	var view *render.ClockView
	now, err := b.backend.FetchTime(ctx)
	if err != nil {
		b.logger.Debug("Backend clock unavailable, using local time", zap.Error(err))
		view = render.BuildClockView(render.LocalClock(b.timeNow(), b.location), true)
	} else {
		view = render.BuildClockView(now.FormattedTime, false)
	}
	b.sink.Schedule(render.Frame{
		Region:     render.RegionClock,
		Kind:       render.KindClock,
		RenderedAt: time.Now(),
		Clock:      view,
	})
	return nil
}
