package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/crypto_gap_board/internal/usecase"
)

func TestPriceHistory_HighlightRule(t *testing.T) {
	h := usecase.NewPriceHistory()

	steps := []struct {
		price float64
		want  string
	}{
		{100, usecase.HighlightNone},
		{101, usecase.HighlightUp},
		{101, usecase.HighlightNone},
		{99.5, usecase.HighlightDown},
		{99.6, usecase.HighlightUp},
	}
	for i, s := range steps {
		assert.Equal(t, s.want, h.Observe("MEXC Futures", "BTC/USDT", s.price), "step %d", i)
	}

	assert.Equal(t, usecase.HighlightNone, h.Observe("Bitget Futures", "BTC/USDT", 50), "keys are per exchange")
	assert.Equal(t, usecase.HighlightNone, h.Observe("MEXC Futures", "ETH/USDT", 50), "keys are per symbol")
}
