package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_gap_board/internal/domain"
	"github.com/vitos/crypto_gap_board/internal/render"
)

func alertSnapshot(ref, cmp float64) (domain.SymbolSnapshot, []domain.GapResult) {
	level := func(p float64) []domain.DepthLevel { return []domain.DepthLevel{{Price: p, Amount: 100, Total: p * 100}} }
	refRec := domain.TickRecord{Exchange: "MEXC Futures", Symbol: "XRP/USDT", LastPrice: &ref, Asks: level(ref + 0.001), Bids: level(ref - 0.001)}
	cmpRec := domain.TickRecord{Exchange: "Bitget Futures", Symbol: "XRP/USDT", LastPrice: &cmp, Asks: level(cmp + 0.001), Bids: level(cmp - 0.001)}
	snapshot := domain.SymbolSnapshot{"XRP/USDT": {refRec.Exchange: refRec, cmpRec.Exchange: cmpRec}}
	pair := domain.ExchangePair{Name: "MEXC-Bitget", Reference: refRec.Exchange, Comparison: cmpRec.Exchange}
	gap, err := ComputeGap(pair, refRec, cmpRec)
	if err != nil {
		panic(err)
	}
	return snapshot, []domain.GapResult{gap}
}

func newTestAlerter(notifier domain.Notifier) *GapAlerter {
	cfg := DefaultAlertConfig()
	cfg.Location = time.UTC
	return NewGapAlerter(cfg, notifier, render.NewFormatter(render.DefaultLocale, 1300), nil)
}

func TestGapAlerter_Thresholds(t *testing.T) {
	a := newTestAlerter(&MockNotifier{})
	assert.True(t, a.Crossed(0.05))
	assert.True(t, a.Crossed(-0.06))
	assert.False(t, a.Crossed(0.049))
	assert.False(t, a.Crossed(-0.059))
}

func TestGapAlerter_Cooldown(t *testing.T) {
	a := newTestAlerter(&MockNotifier{})
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	a.timeNow = func() time.Time { return now }

	snapshot, gaps := alertSnapshot(0.52, 0.50)
	a.ObserveGaps(context.Background(), snapshot, gaps)
	a.ObserveGaps(context.Background(), snapshot, gaps)
	assert.Len(t, a.queue, 1, "same key is suppressed inside the cooldown")

	now = now.Add(5 * time.Minute)
	a.ObserveGaps(context.Background(), snapshot, gaps)
	assert.Len(t, a.queue, 2)

	quiet, quietGaps := alertSnapshot(0.50001, 0.50)
	a.ObserveGaps(context.Background(), quiet, quietGaps)
	assert.Len(t, a.queue, 2, "gaps inside the band never alert")
}

func TestGapAlerter_DisabledNotifier(t *testing.T) {
	a := newTestAlerter(&MockNotifier{Disabled: true})
	snapshot, gaps := alertSnapshot(0.52, 0.50)
	a.ObserveGaps(context.Background(), snapshot, gaps)
	assert.Len(t, a.queue, 0)
	assert.NoError(t, a.SendDigest(context.Background(), nil))
}

func TestGapAlerter_FormatAlert(t *testing.T) {
	a := newTestAlerter(&MockNotifier{})
	snapshot, gaps := alertSnapshot(0.52, 0.50)
	gap := gaps[0]

	msg := a.FormatAlert(gap, snapshot["XRP/USDT"]["MEXC Futures"], snapshot["XRP/USDT"]["Bitget Futures"],
		time.Date(2024, 1, 1, 9, 30, 0, 0, time.UTC))

	lines := strings.Split(msg, "\n")
	assert.Equal(t, "🔵 MEXC-Bitget 가격차이 발생! 🟣 XRP/USDT", lines[0])
	assert.Equal(t, "시간: 2024-01-01 09:30:00", lines[1])
	assert.Contains(t, msg, "MEXC: 0.5200 USDT")
	assert.Contains(t, msg, "Bitget: 0.5000 USDT")
	assert.Contains(t, msg, "차이: +4.00% (0.0200 USDT)")
	assert.Contains(t, msg, "거래가능금액: 49.90 USDT")
	assert.Contains(t, msg, "원화금액: 64,870원")
}

func TestGapAlerter_DeliversAndForgetsFailures(t *testing.T) {
	notifier := &MockNotifier{}
	a := newTestAlerter(notifier)
	a.Start(context.Background())
	defer a.Stop()

	snapshot, gaps := alertSnapshot(0.52, 0.50)
	a.ObserveGaps(context.Background(), snapshot, gaps)
	assert.Eventually(t, func() bool { return len(notifier.Sent()) == 1 }, time.Second, time.Millisecond)

	failing := &MockNotifier{Err: errors.New("telegram down")}
	b := newTestAlerter(failing)
	b.Start(context.Background())
	defer b.Stop()

	b.ObserveGaps(context.Background(), snapshot, gaps)
	assert.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.lastSent) == 0
	}, time.Second, time.Millisecond, "a failed send can be retried on the next cycle")
}

type staticGaps []domain.GapResult

func (s staticGaps) LastGaps() ([]domain.GapResult, time.Time) {
	return s, time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
}

func TestGapAlerter_Digest(t *testing.T) {
	notifier := &MockNotifier{}
	a := newTestAlerter(notifier)
	_, gaps := alertSnapshot(0.52, 0.50)

	require.NoError(t, a.SendDigest(context.Background(), staticGaps(gaps)))
	sent := notifier.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0], "📊 가격차이 요약 (2024-01-01 00:00:00)")
	assert.Contains(t, sent[0], "MEXC-Bitget XRP/USDT: +4.00% (+0.020000)")

	require.NoError(t, a.SendDigest(context.Background(), staticGaps(nil)))
	assert.Len(t, notifier.Sent(), 1)
}
