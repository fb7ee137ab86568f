package config

import (
	"time"

	"github.com/vitos/crypto_gap_board/internal/domain"
)

// Default values for optional configuration fields.
const (
	DefaultBackendURL        = "http://localhost:5000"
	DefaultBackendTimeout    = 10 * time.Second
	DefaultOrderbookInterval = 500 * time.Millisecond
	DefaultSummaryInterval   = 3 * time.Second
	DefaultBalancesInterval  = 30 * time.Second
	DefaultPricesInterval    = 5 * time.Second
	DefaultClockInterval     = 1 * time.Second
	DefaultMaxRetries        = 3
	DefaultRetryBaseDelay    = 2 * time.Second
	DefaultInitRecheck       = 2 * time.Second
	DefaultLocale            = "ko-KR"
	DefaultLocalRate         = 1300
	DefaultTimezone          = "Asia/Seoul"
	DefaultFlash             = 500 * time.Millisecond
	DefaultFrameInterval     = 16 * time.Millisecond
	DefaultPriceReference    = "MEXC"
	DefaultPriceComparison   = "OKX"
	DefaultEntryThreshold    = 0.05
	DefaultExitThreshold     = -0.06
	DefaultAlertCooldown     = 5 * time.Minute
	DefaultAlertQueueSize    = 32
	DefaultDigestSchedule    = "0 * * * *"
	DefaultJournalRetention  = 24 * time.Hour
	DefaultPruneSchedule     = "*/10 * * * *"
	DefaultHistoryLimit      = 100
	DefaultServerPort        = 8080
	DefaultLogLevel          = "info"
)

func DefaultPairs() []domain.ExchangePair {
	return []domain.ExchangePair{
		{Name: "MEXC-Bitget", Reference: "MEXC Futures", Comparison: "Bitget Futures"},
		{Name: "Gate-Bitget", Reference: "Gate.io Futures", Comparison: "Bitget Futures"},
	}
}

func DefaultWatchlist() []string {
	return []string{"BTC/USDT", "ETH/USDT", "XRP/USDT"}
}

func (c *Config) applyDefaults() {
	// Backend defaults
	if c.Backend.BaseURL == "" {
		c.Backend.BaseURL = DefaultBackendURL
	}
	if c.Backend.Timeout == 0 {
		c.Backend.Timeout = DefaultBackendTimeout
	}

	// Feed defaults
	applyFeedDefaults(&c.Feeds.Orderbook, DefaultOrderbookInterval)
	applyFeedDefaults(&c.Feeds.Summary, DefaultSummaryInterval)
	applyFeedDefaults(&c.Feeds.Balances, DefaultBalancesInterval)
	applyFeedDefaults(&c.Feeds.Prices, DefaultPricesInterval)
	applyFeedDefaults(&c.Feeds.Clock, DefaultClockInterval)
	if c.Feeds.Orderbook.InitGate == nil {
		gated := true
		c.Feeds.Orderbook.InitGate = &gated
	}

	if c.Retry.MaxRetries == 0 {
		c.Retry.MaxRetries = DefaultMaxRetries
	}
	if c.Retry.BaseDelay == 0 {
		c.Retry.BaseDelay = DefaultRetryBaseDelay
	}
	if c.InitRecheck == 0 {
		c.InitRecheck = DefaultInitRecheck
	}

	// Display defaults
	if c.Display.Locale == "" {
		c.Display.Locale = DefaultLocale
	}
	if c.Display.LocalRate == 0 {
		c.Display.LocalRate = DefaultLocalRate
	}
	if c.Display.Timezone == "" {
		c.Display.Timezone = DefaultTimezone
	}
	if c.Display.Flash == 0 {
		c.Display.Flash = DefaultFlash
	}
	if c.Display.FrameInterval == 0 {
		c.Display.FrameInterval = DefaultFrameInterval
	}

	if len(c.Pairs) == 0 {
		c.Pairs = DefaultPairs()
	}

	// Prices watchlist defaults
	if len(c.Prices.Watchlist) == 0 {
		c.Prices.Watchlist = DefaultWatchlist()
	}
	if c.Prices.Reference == "" {
		c.Prices.Reference = DefaultPriceReference
	}
	if c.Prices.Comparison == "" {
		c.Prices.Comparison = DefaultPriceComparison
	}

	// Alert defaults
	if c.Alerts.EntryThreshold == 0 {
		c.Alerts.EntryThreshold = DefaultEntryThreshold
	}
	if c.Alerts.ExitThreshold == 0 {
		c.Alerts.ExitThreshold = DefaultExitThreshold
	}
	if c.Alerts.Cooldown == 0 {
		c.Alerts.Cooldown = DefaultAlertCooldown
	}
	if c.Alerts.QueueSize == 0 {
		c.Alerts.QueueSize = DefaultAlertQueueSize
	}
	if c.Alerts.DigestSchedule == "" {
		c.Alerts.DigestSchedule = DefaultDigestSchedule
	}

	// Journal defaults
	if c.Journal.Retention == 0 {
		c.Journal.Retention = DefaultJournalRetention
	}
	if c.Journal.PruneSchedule == "" {
		c.Journal.PruneSchedule = DefaultPruneSchedule
	}
	if c.Journal.HistoryLimit == 0 {
		c.Journal.HistoryLimit = DefaultHistoryLimit
	}

	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
}

func applyFeedDefaults(f *FeedConfig, interval time.Duration) {
	if f.Interval == 0 {
		f.Interval = interval
	}
}
