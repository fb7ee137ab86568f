package usecase_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/vitos/crypto_gap_board/internal/usecase"
)

func TestRetryPolicy_LinearDelay(t *testing.T) {
	p := usecase.DefaultRetryPolicy()

	assert.Equal(t, 3, p.MaxRetries)
	assert.Equal(t, time.Duration(0), p.Delay(0))
	assert.Equal(t, 2*time.Second, p.Delay(1))
	assert.Equal(t, 4*time.Second, p.Delay(2))
	assert.Equal(t, 6*time.Second, p.Delay(3))

	assert.True(t, p.ShouldRetry(3))
	assert.False(t, p.ShouldRetry(4))
}
