package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGapRecorder_RecordsOnRoundedChange(t *testing.T) {
	journal := &MockJournal{}
	r := NewGapRecorder(journal, nil)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	r.timeNow = func() time.Time { return now }

	snapshot, gaps := alertSnapshot(0.52, 0.50)
	r.ObserveGaps(context.Background(), snapshot, gaps)
	r.ObserveGaps(context.Background(), snapshot, gaps)
	require.Len(t, journal.Rows, 1)

	row := journal.Rows[0]
	assert.NotEmpty(t, row.ID)
	assert.Equal(t, "MEXC-Bitget", row.Pair)
	assert.InDelta(t, 4.0, row.PercentGap, 1e-9)
	assert.InDelta(t, 0.519, row.ReferenceBest, 1e-9, "positive gap uses the reference bid")
	assert.InDelta(t, 0.501, row.ComparisonBest, 1e-9, "and the comparison ask")
	assert.InDelta(t, 49.9, row.MinDepth, 1e-9)
	assert.Equal(t, now, row.ObservedAt)

	moved, movedGaps := alertSnapshot(0.53, 0.50)
	r.ObserveGaps(context.Background(), moved, movedGaps)
	assert.Len(t, journal.Rows, 2)
}

func TestGapRecorder_SaveErrorRetriesNextCycle(t *testing.T) {
	journal := &MockJournal{SaveErr: errors.New("locked")}
	r := NewGapRecorder(journal, nil)
	snapshot, gaps := alertSnapshot(0.52, 0.50)

	r.ObserveGaps(context.Background(), snapshot, gaps)
	journal.SaveErr = nil
	r.ObserveGaps(context.Background(), snapshot, gaps)
	assert.Len(t, journal.Rows, 1)
}

func TestGapRecorder_Prune(t *testing.T) {
	journal := &MockJournal{}
	r := NewGapRecorder(journal, nil)
	now := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)

	r.timeNow = func() time.Time { return now.Add(-48 * time.Hour) }
	snapshot, gaps := alertSnapshot(0.52, 0.50)
	r.ObserveGaps(context.Background(), snapshot, gaps)

	r.timeNow = func() time.Time { return now }
	moved, movedGaps := alertSnapshot(0.53, 0.50)
	r.ObserveGaps(context.Background(), moved, movedGaps)

	n, err := r.Prune(context.Background(), 24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, now.Add(-24*time.Hour), journal.Cutoff)
	assert.Len(t, journal.Rows, 1)
}
