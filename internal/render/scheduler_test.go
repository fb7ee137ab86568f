package render

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingTarget struct {
	mu     sync.Mutex
	frames []Frame
}

func (r *recordingTarget) Draw(frame Frame) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, frame)
	return nil
}

func (r *recordingTarget) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

func TestScheduler_LatestFrameWinsPerRegion(t *testing.T) {
	target := &recordingTarget{}
	s := NewScheduler(target, time.Hour, nil)

	s.Schedule(Frame{Region: RegionOrderbook, Notice: "first"})
	s.Schedule(Frame{Region: RegionClock, Clock: BuildClockView("09:00:00", false)})
	s.Schedule(Frame{Region: RegionOrderbook, Notice: "second"})
	assert.Equal(t, 2, s.Pending())

	assert.Equal(t, 0, len(target.Frames()), "nothing is drawn before a frame boundary")
	assert.Equal(t, 2, s.Flush())

	frames := target.Frames()
	require.Len(t, frames, 2)
	assert.Equal(t, RegionOrderbook, frames[0].Region)
	assert.Equal(t, "second", frames[0].Notice)
	assert.Equal(t, RegionClock, frames[1].Region)
	assert.False(t, frames[0].RenderedAt.IsZero())

	assert.Equal(t, 0, s.Flush())
}

func TestScheduler_RunFlushesOnTick(t *testing.T) {
	target := &recordingTarget{}
	s := NewScheduler(target, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	s.Schedule(Frame{Region: RegionPrices})
	assert.Eventually(t, func() bool { return len(target.Frames()) == 1 }, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}

func TestMulti_DrawsAllTargets(t *testing.T) {
	a := &recordingTarget{}
	b := &recordingTarget{}
	failing := TargetFunc(func(Frame) error { return errors.New("closed") })

	err := Multi{a, failing, b}.Draw(Frame{Region: RegionSummary})
	assert.Error(t, err)
	assert.Len(t, a.Frames(), 1)
	assert.Len(t, b.Frames(), 1)
}
