package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vitos/crypto_gap_board/internal/domain"
	"go.uber.org/zap"
)

// errGateClosed ends a chain without retry while the backend initializes.
var errGateClosed = errors.New("backend initializing")

type FeedState int32

const (
	FeedIdle FeedState = iota
	FeedFetching
	FeedRetrying
)

func (s FeedState) String() string {
	switch s {
	case FeedFetching:
		return "fetching"
	case FeedRetrying:
		return "retrying"
	default:
		return "idle"
	}
}

// StatusChecker is the part of the backend the init gate needs.
type StatusChecker interface {
	FetchStatus(ctx context.Context) (*domain.SystemStatus, error)
}

// FeedConfig describes one independently scheduled poll loop.
type FeedConfig struct {
	Name        string
	Interval    time.Duration
	Retry       RetryPolicy
	InitRecheck time.Duration // used instead of Interval while the gate is closed
}

// FeedHooks are the board callbacks a feed drives.
type FeedHooks struct {
	// Cycle fetches and renders once. A non-nil error schedules a retry.
	Cycle func(ctx context.Context) error
	// GiveUp runs after the last retry failed.
	GiveUp func(err error)
	// Gate, when set, is asked for backend readiness before every cycle.
	Gate StatusChecker
	// Initializing renders the waiting view while the gate is closed.
	Initializing func(status *domain.SystemStatus)
}

// Feed runs a board cycle on a fixed cadence with single-flight semantics
// and linear retry.
type Feed struct {
	cfg    FeedConfig
	hooks  FeedHooks
	logger *zap.Logger

	state        atomic.Int32
	retries      atomic.Int32
	initializing atomic.Bool
	cadence      chan struct{}

	sleep func(ctx context.Context, d time.Duration) error

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewFeed(cfg FeedConfig, hooks FeedHooks, logger *zap.Logger) *Feed {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.InitRecheck <= 0 {
		cfg.InitRecheck = 2 * time.Second
	}
	return &Feed{
		cfg:     cfg,
		hooks:   hooks,
		logger:  logger.With(zap.String("feed", cfg.Name)),
		cadence: make(chan struct{}, 1),
		sleep:   sleepContext,
	}
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (f *Feed) Name() string { return f.cfg.Name }

func (f *Feed) State() FeedState { return FeedState(f.state.Load()) }

// Retries returns the retry counter of the chain in flight.
func (f *Feed) Retries() int { return int(f.retries.Load()) }

// Initializing reports whether the last gate check found the backend not ready.
func (f *Feed) Initializing() bool { return f.initializing.Load() }

// Trigger runs one cycle chain synchronously. It returns false without doing
// anything when a chain of this feed is already in flight.
func (f *Feed) Trigger(ctx context.Context) bool {
	if !f.state.CompareAndSwap(int32(FeedIdle), int32(FeedFetching)) {
		return false
	}
	defer f.state.Store(int32(FeedIdle))
	f.runChain(ctx)
	return true
}

// TriggerAsync is Trigger on a new goroutine. The single-flight check happens
// before it returns.
func (f *Feed) TriggerAsync(ctx context.Context) bool {
	if !f.state.CompareAndSwap(int32(FeedIdle), int32(FeedFetching)) {
		return false
	}
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		defer f.state.Store(int32(FeedIdle))
		f.runChain(ctx)
	}()
	return true
}

// Refresh starts a chain outside the regular cadence, bound to the feed's
// run context when started.
func (f *Feed) Refresh() bool {
	f.mu.Lock()
	ctx := f.ctx
	f.mu.Unlock()
	if ctx == nil {
		ctx = context.Background()
	}
	return f.TriggerAsync(ctx)
}

func (f *Feed) runChain(ctx context.Context) {
	attempt := 0
	for {
		err := f.attempt(ctx)
		if err == nil || errors.Is(err, errGateClosed) {
			f.retries.Store(0)
			return
		}

		attempt++
		if !f.cfg.Retry.ShouldRetry(attempt) {
			f.logger.Error("Giving up after retries",
				zap.Int("retries", attempt-1),
				zap.Error(err))
			f.retries.Store(0)
			if f.hooks.GiveUp != nil {
				f.hooks.GiveUp(err)
			}
			return
		}

		f.retries.Store(int32(attempt))
		delay := f.cfg.Retry.Delay(attempt)
		f.logger.Warn("Cycle failed, retrying",
			zap.Int("attempt", attempt),
			zap.Int("max_retries", f.cfg.Retry.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err))

		f.state.Store(int32(FeedRetrying))
		if err := f.sleep(ctx, delay); err != nil {
			f.retries.Store(0)
			return
		}
		f.state.Store(int32(FeedFetching))
	}
}

// attempt runs one cycle behind the gate. The gate is asked again on every
// retry.
func (f *Feed) attempt(ctx context.Context) error {
	if f.hooks.Gate != nil {
		open, err := f.gateOpen(ctx)
		if err != nil {
			return err
		}
		if !open {
			return errGateClosed
		}
	}
	return f.hooks.Cycle(ctx)
}

// gateOpen reports whether the backend finished initializing. Only an
// explicit not-initialized reply shows the waiting view; a failed status
// call is returned as a cycle error.
func (f *Feed) gateOpen(ctx context.Context) (bool, error) {
	status, err := f.hooks.Gate.FetchStatus(ctx)
	if err != nil {
		return false, fmt.Errorf("check status: %w", err)
	}

	if status == nil || !status.Initialized {
		if status == nil {
			status = &domain.SystemStatus{}
		}
		f.setInitializing(true)
		if f.hooks.Initializing != nil {
			f.hooks.Initializing(status)
		}
		return false, nil
	}
	f.setInitializing(false)
	return true, nil
}

func (f *Feed) setInitializing(v bool) {
	if f.initializing.Swap(v) == v {
		return
	}
	select {
	case f.cadence <- struct{}{}:
	default:
	}
}

func (f *Feed) period() time.Duration {
	if f.initializing.Load() {
		return f.cfg.InitRecheck
	}
	return f.cfg.Interval
}

// Start begins the cadence loop. The first chain runs immediately.
func (f *Feed) Start(ctx context.Context) {
	f.mu.Lock()
	f.ctx, f.cancel = context.WithCancel(ctx)
	runCtx := f.ctx
	f.mu.Unlock()

	f.wg.Add(1)
	go f.run(runCtx)

	f.logger.Info("Feed started", zap.Duration("interval", f.cfg.Interval))
}

// Stop cancels the loop and waits for in-flight chains to return.
func (f *Feed) Stop() {
	f.mu.Lock()
	cancel := f.cancel
	f.mu.Unlock()
	if cancel != nil {
		cancel()
	}
	f.wg.Wait()
	f.logger.Info("Feed stopped")
}

func (f *Feed) run(ctx context.Context) {
	defer f.wg.Done()

	current := f.period()
	ticker := time.NewTicker(current)
	defer ticker.Stop()

	f.TriggerAsync(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.cadence:
			if next := f.period(); next != current {
				current = next
				ticker.Reset(current)
				f.logger.Debug("Cadence changed", zap.Duration("interval", current))
			}
		case <-ticker.C:
			f.TriggerAsync(ctx)
		}
	}
}
