package storage

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vitos/crypto_gap_board/internal/domain"
)

func newTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	journal, err := NewSQLiteJournal(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { journal.Close() })
	return journal
}

func observation(symbol string, gap float64, at time.Time) *domain.GapObservation {
	return &domain.GapObservation{
		ID:              uuid.NewString(),
		Pair:            "MEXC-Bitget",
		Symbol:          symbol,
		PercentGap:      gap,
		AbsoluteGap:     gap / 100,
		ReferencePrice:  1 + gap/100,
		ComparisonPrice: 1,
		ReferenceBest:   0.99,
		ComparisonBest:  1.01,
		MinDepth:        49.9,
		ObservedAt:      at,
	}
}

func TestSQLiteJournal_SaveAndList(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, journal.SaveGap(ctx, observation("XRP/USDT", 0.10, base)))
	require.NoError(t, journal.SaveGap(ctx, observation("XRP/USDT", 0.12, base.Add(time.Second))))
	require.NoError(t, journal.SaveGap(ctx, observation("BTC/USDT", -0.07, base.Add(2*time.Second))))

	all, err := journal.ListGaps(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "BTC/USDT", all[0].Symbol, "newest first")

	xrp, err := journal.ListGaps(ctx, "XRP/USDT", 1)
	require.NoError(t, err)
	require.Len(t, xrp, 1)
	assert.InDelta(t, 0.12, xrp[0].PercentGap, 1e-12)
	assert.InDelta(t, 49.9, xrp[0].MinDepth, 1e-12)
	assert.True(t, base.Add(time.Second).Equal(xrp[0].ObservedAt))
}

func TestSQLiteJournal_Prune(t *testing.T) {
	journal := newTestJournal(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	require.NoError(t, journal.SaveGap(ctx, observation("XRP/USDT", 0.1, now.Add(-48*time.Hour))))
	require.NoError(t, journal.SaveGap(ctx, observation("XRP/USDT", 0.2, now)))

	n, err := journal.PruneGaps(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	rest, err := journal.ListGaps(ctx, "", 10)
	require.NoError(t, err)
	require.Len(t, rest, 1)
	assert.InDelta(t, 0.2, rest[0].PercentGap, 1e-12)
}
