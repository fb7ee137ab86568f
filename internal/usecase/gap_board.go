package usecase

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/vitos/crypto_gap_board/internal/domain"
	"github.com/vitos/crypto_gap_board/internal/render"
	"go.uber.org/zap"
)

// backendGapTolerance is the percentage point difference between the
// backend's price_gap and the recomputed gap that gets logged.
const backendGapTolerance = 0.01

// FrameSink accepts frames for the next frame boundary.
type FrameSink interface {
	Schedule(frame render.Frame)
}

// GapObserver is notified after every successful orderbook cycle with the
// merged snapshot the gaps were computed from.
type GapObserver interface {
	ObserveGaps(ctx context.Context, snapshot domain.SymbolSnapshot, gaps []domain.GapResult)
}

type BoardMode int

const (
	// ModeOrderbook renders exchange cards with depth and highlights.
	ModeOrderbook BoardMode = iota
	// ModeSummary renders the compact spread table.
	ModeSummary
)

// GapBoard owns the merged cache of one orderbook driven region.
type GapBoard struct {
	mode       BoardMode
	region     render.Region
	backend    domain.Backend
	normalizer *Normalizer
	cache      *MergedCache
	history    *PriceHistory
	pairs      []domain.ExchangePair
	formatter  *render.Formatter
	sink       FrameSink
	flash      time.Duration
	observers  []GapObserver
	logger     *zap.Logger

	mu       sync.RWMutex
	lastGaps []domain.GapResult
	lastAt   time.Time
}

type GapBoardConfig struct {
	Mode      BoardMode
	Pairs     []domain.ExchangePair
	Formatter *render.Formatter
	Flash     time.Duration
}

func NewGapBoard(cfg GapBoardConfig, backend domain.Backend, sink FrameSink, logger *zap.Logger, observers ...GapObserver) *GapBoard {
	if logger == nil {
		logger = zap.NewNop()
	}
	region := render.RegionOrderbook
	if cfg.Mode == ModeSummary {
		region = render.RegionSummary
	}
	return &GapBoard{
		mode:       cfg.Mode,
		region:     region,
		backend:    backend,
		normalizer: NewNormalizer(logger),
		cache:      NewMergedCache(),
		history:    NewPriceHistory(),
		pairs:      cfg.Pairs,
		formatter:  cfg.Formatter,
		sink:       sink,
		flash:      cfg.Flash,
		observers:  observers,
		logger:     logger.With(zap.String("region", string(region))),
	}
}

func (b *GapBoard) Region() render.Region { return b.region }

func (b *GapBoard) Cache() *MergedCache { return b.cache }

// Hooks wires the board into a Feed. gate may be nil.
func (b *GapBoard) Hooks(gate StatusChecker) FeedHooks {
	hooks := FeedHooks{
		Cycle:  b.Cycle,
		GiveUp: b.GiveUp,
	}
	if gate != nil {
		hooks.Gate = gate
		hooks.Initializing = b.Initializing
	}
	return hooks
}

// Cycle fetches one orderbook snapshot and schedules the rebuilt region.
func (b *GapBoard) Cycle(ctx context.Context) error {
	records, err := b.backend.FetchOrderbook(ctx)
	if err != nil {
		return fmt.Errorf("fetch orderbook: %w", err)
	}

	snapshot := b.normalizer.Normalize(records)
	replaced := b.cache.Merge(snapshot)
	merged := b.cache.Snapshot()
	gaps := ComputePairs(merged, b.pairs)
	b.logBackendMismatch(merged, gaps)

	b.logger.Debug("Orderbook cycle",
		zap.Int("records", len(records)),
		zap.Int("merged", replaced),
		zap.Int("gaps", len(gaps)))

	b.sink.Schedule(b.frame(merged, gaps, false))

	b.mu.Lock()
	b.lastGaps = gaps
	b.lastAt = time.Now()
	b.mu.Unlock()

	for _, o := range b.observers {
		o.ObserveGaps(ctx, merged, gaps)
	}
	return nil
}

// GiveUp keeps the last merged view on screen when there is one, marked
// stale. Without cached data the region shows an error.
func (b *GapBoard) GiveUp(err error) {
	if b.cache.Empty() {
		msg := render.MsgOrderbookFailed
		if b.mode == ModeSummary {
			msg = render.MsgPricesFailed
		}
		b.sink.Schedule(render.ErrorFrame(b.region, msg))
		return
	}

	b.logger.Warn("Showing stale data", zap.Error(err))
	merged := b.cache.Snapshot()
	frame := b.frame(merged, ComputePairs(merged, b.pairs), true)
	frame.Stale = true
	frame.Notice = render.MsgStaleNotice
	b.sink.Schedule(frame)
}

func (b *GapBoard) Initializing(status *domain.SystemStatus) {
	b.sink.Schedule(render.Frame{
		Region:       b.region,
		Kind:         render.KindInitializing,
		RenderedAt:   time.Now(),
		Initializing: render.BuildStatusView(status),
	})
}

// LastGaps returns the gaps of the last successful cycle and when it ran.
func (b *GapBoard) LastGaps() ([]domain.GapResult, time.Time) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]domain.GapResult, len(b.lastGaps))
	copy(out, b.lastGaps)
	return out, b.lastAt
}

func (b *GapBoard) frame(snapshot domain.SymbolSnapshot, gaps []domain.GapResult, stale bool) render.Frame {
	frame := render.Frame{Region: b.region, RenderedAt: time.Now()}
	switch b.mode {
	case ModeSummary:
		frame.Kind = render.KindSummary
		frame.Summary = render.BuildSummaryView(gaps, b.pairs, b.formatter)
	default:
		var hl render.Highlighter = b.history
		if stale {
			hl = nil
		}
		frame.Kind = render.KindOrderbook
		frame.FlashMs = b.flash.Milliseconds()
		frame.Orderbook = render.BuildOrderbookView(snapshot, gaps, hl, b.formatter)
	}
	return frame
}

func (b *GapBoard) logBackendMismatch(snapshot domain.SymbolSnapshot, gaps []domain.GapResult) {
	if !b.logger.Core().Enabled(zap.DebugLevel) {
		return
	}
	for _, gap := range gaps {
		rec := snapshot[gap.Symbol][gap.Reference]
		if backend, bad := BackendGapMismatch(rec, gap, backendGapTolerance); bad {
			b.logger.Debug("Backend price gap differs from recomputed gap",
				zap.String("pair", gap.Pair),
				zap.String("symbol", gap.Symbol),
				zap.Float64("backend", backend),
				zap.Float64("computed", gap.PercentGap))
		}
	}
}
