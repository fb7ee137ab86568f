package render

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

const DefaultFrameInterval = 16 * time.Millisecond

// Scheduler batches frames and draws them on frame boundaries. Only the
// latest frame per region survives until the next flush.
type Scheduler struct {
	target   Target
	interval time.Duration
	logger   *zap.Logger

	mu      sync.Mutex
	pending map[Region]Frame
	order   []Region
}

func NewScheduler(target Target, interval time.Duration, logger *zap.Logger) *Scheduler {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{
		target:   target,
		interval: interval,
		logger:   logger,
		pending:  make(map[Region]Frame),
	}
}

// Schedule queues frame for the next flush, replacing any pending frame of
// the same region.
func (s *Scheduler) Schedule(frame Frame) {
	if frame.RenderedAt.IsZero() {
		frame.RenderedAt = time.Now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.pending[frame.Region]; !ok {
		s.order = append(s.order, frame.Region)
	}
	s.pending[frame.Region] = frame
}

// Pending returns the number of regions waiting for a flush.
func (s *Scheduler) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush draws every pending frame in scheduling order and returns how many
// were drawn.
func (s *Scheduler) Flush() int {
	s.mu.Lock()
	if len(s.order) == 0 {
		s.mu.Unlock()
		return 0
	}
	frames := make([]Frame, 0, len(s.order))
	for _, region := range s.order {
		frames = append(frames, s.pending[region])
	}
	s.pending = make(map[Region]Frame)
	s.order = s.order[:0]
	s.mu.Unlock()

	for _, frame := range frames {
		if err := s.target.Draw(frame); err != nil {
			s.logger.Warn("Draw failed",
				zap.String("region", string(frame.Region)),
				zap.Error(err))
		}
	}
	return len(frames)
}

// Run flushes once per interval until ctx is done, then flushes what is left.
func (s *Scheduler) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.Flush()
			return
		case <-ticker.C:
			s.Flush()
		}
	}
}
