package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vitos/crypto_gap_board/internal/domain"
	"github.com/vitos/crypto_gap_board/internal/render"
	"go.uber.org/zap"
)

type AlertConfig struct {
	EntryThreshold float64
	ExitThreshold  float64
	Cooldown       time.Duration
	QueueSize      int
	Location       *time.Location
}

func DefaultAlertConfig() AlertConfig {
	return AlertConfig{
		EntryThreshold: 0.05,
		ExitThreshold:  -0.06,
		Cooldown:       5 * time.Minute,
		QueueSize:      32,
		Location:       time.Local,
	}
}

// GapAlert is one queued notification.
type GapAlert struct {
	ID      string
	Key     string
	Message string
}

// GapSource exposes the most recent gaps of a board.
type GapSource interface {
	LastGaps() ([]domain.GapResult, time.Time)
}

// GapAlerter sends a notification when a pair's gap crosses the entry or
// exit threshold. The same symbol and 2dp gap is not repeated within the
// cooldown. Alerts are delivered from a bounded queue on their own goroutine.
type GapAlerter struct {
	cfg       AlertConfig
	notifier  domain.Notifier
	formatter *render.Formatter
	logger    *zap.Logger

	mu       sync.Mutex
	lastSent map[string]time.Time
	queue    chan GapAlert
	timeNow  func() time.Time

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewGapAlerter(cfg AlertConfig, notifier domain.Notifier, formatter *render.Formatter, logger *zap.Logger) *GapAlerter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 32
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	return &GapAlerter{
		cfg:       cfg,
		notifier:  notifier,
		formatter: formatter,
		logger:    logger,
		lastSent:  make(map[string]time.Time),
		queue:     make(chan GapAlert, cfg.QueueSize),
		timeNow:   time.Now,
	}
}

// Crossed reports whether gap is outside the quiet band.
func (a *GapAlerter) Crossed(gap float64) bool {
	return gap >= a.cfg.EntryThreshold || gap <= a.cfg.ExitThreshold
}

func alertKey(symbol string, gap float64) string {
	return symbol + "-" + decimal.NewFromFloat(gap).StringFixed(2)
}

// ObserveGaps queues alerts for every crossed gap outside its cooldown.
func (a *GapAlerter) ObserveGaps(ctx context.Context, snapshot domain.SymbolSnapshot, gaps []domain.GapResult) {
	if a.notifier == nil || !a.notifier.Enabled() {
		return
	}
	now := a.timeNow()
	for _, gap := range gaps {
		if !a.Crossed(gap.PercentGap) {
			continue
		}
		key := alertKey(gap.Symbol, gap.PercentGap)

		a.mu.Lock()
		last, seen := a.lastSent[key]
		if seen && now.Sub(last) < a.cfg.Cooldown {
			a.mu.Unlock()
			continue
		}
		a.lastSent[key] = now
		a.mu.Unlock()

		a.logger.Info("Found significant price gap",
			zap.String("pair", gap.Pair),
			zap.String("symbol", gap.Symbol),
			zap.Float64("gap", gap.PercentGap))

		alert := GapAlert{
			ID:      uuid.NewString(),
			Key:     key,
			Message: a.FormatAlert(gap, snapshot[gap.Symbol][gap.Reference], snapshot[gap.Symbol][gap.Comparison], now),
		}
		select {
		case a.queue <- alert:
		default:
			a.forget(key)
			a.logger.Warn("Alert queue full, dropping alert", zap.String("key", key))
		}
	}
}

func (a *GapAlerter) forget(key string) {
	a.mu.Lock()
	delete(a.lastSent, key)
	a.mu.Unlock()
}

func shortExchange(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return name
}

// FormatAlert renders the notification text for one crossed gap.
func (a *GapAlerter) FormatAlert(gap domain.GapResult, ref, cmp domain.TickRecord, at time.Time) string {
	coinIcon := "🟡"
	if strings.Contains(gap.Symbol, "XRP") {
		coinIcon = "🟣"
	}
	gapIcon := "🔴"
	if gap.PercentGap > 0 {
		gapIcon = "🔵"
	}
	fixed := func(v float64, dp int32) string { return decimal.NewFromFloat(v).StringFixed(dp) }

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %s 가격차이 발생! %s %s\n", gapIcon, gap.Pair, coinIcon, gap.Symbol)
	fmt.Fprintf(&sb, "시간: %s\n\n", at.In(a.cfg.Location).Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "%s: %s USDT\n", shortExchange(gap.Reference), fixed(gap.ReferencePrice, 4))
	fmt.Fprintf(&sb, "%s: %s USDT\n", shortExchange(gap.Comparison), fixed(gap.ComparisonPrice, 4))
	fmt.Fprintf(&sb, "차이: %s (%s USDT)", a.formatter.Percent(gap.PercentGap), decimal.NewFromFloat(gap.AbsoluteGap).Abs().StringFixed(4))
	if amount, ok := TradableAmount(ref, cmp); ok {
		fmt.Fprintf(&sb, "\n\n거래가능금액: %s USDT\n", fixed(amount, 2))
		fmt.Fprintf(&sb, "원화금액: %s원", a.formatter.Local(amount))
	}
	return sb.String()
}

// Start runs the delivery goroutine until Stop.
func (a *GapAlerter) Start(ctx context.Context) {
	ctx, a.cancel = context.WithCancel(ctx)
	a.wg.Add(1)
	go a.deliver(ctx)
}

func (a *GapAlerter) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	a.wg.Wait()
}

func (a *GapAlerter) deliver(ctx context.Context) {
	defer a.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case alert := <-a.queue:
			if err := a.notifier.Send(ctx, alert.Message); err != nil {
				a.forget(alert.Key)
				a.logger.Error("Failed to send gap alert", zap.String("id", alert.ID), zap.Error(err))
				continue
			}
			a.logger.Info("Gap alert sent", zap.String("id", alert.ID), zap.String("key", alert.Key))
		}
	}
}

// SendDigest sends a summary of the latest gaps of source.
func (a *GapAlerter) SendDigest(ctx context.Context, source GapSource) error {
	if a.notifier == nil || !a.notifier.Enabled() {
		return nil
	}
	gaps, at := source.LastGaps()
	if len(gaps) == 0 {
		a.logger.Debug("No gaps to digest")
		return nil
	}
	return a.notifier.Send(ctx, a.FormatDigest(gaps, at))
}

func (a *GapAlerter) FormatDigest(gaps []domain.GapResult, at time.Time) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "📊 가격차이 요약 (%s)\n", at.In(a.cfg.Location).Format("2006-01-02 15:04:05"))
	for _, gap := range gaps {
		fmt.Fprintf(&sb, "\n%s %s: %s (%s)", gap.Pair, gap.Symbol,
			a.formatter.Percent(gap.PercentGap),
			a.formatter.Signed(gap.AbsoluteGap, 6))
	}
	return sb.String()
}
