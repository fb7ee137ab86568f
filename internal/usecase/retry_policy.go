package usecase

import "time"

// RetryPolicy is a linear backoff: attempt n waits n × BaseDelay.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: 2 * time.Second}
}

// Delay returns the wait before retry attempt n (1-based).
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		return 0
	}
	return time.Duration(attempt) * p.BaseDelay
}

// ShouldRetry reports whether retry attempt n is allowed.
func (p RetryPolicy) ShouldRetry(attempt int) bool {
	return attempt <= p.MaxRetries
}
