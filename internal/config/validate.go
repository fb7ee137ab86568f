package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/robfig/cron/v3"
)

// Validate checks that all values are usable. It reports the first invalid
// field by its yaml path.
func (c *Config) Validate() error {
	u, err := url.Parse(c.Backend.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an absolute URL, got %q", c.Backend.BaseURL)
	}
	if c.Backend.Timeout < 0 {
		return errors.New("backend.timeout must be >= 0")
	}

	feeds := []struct {
		name string
		feed FeedConfig
	}{
		{"orderbook", c.Feeds.Orderbook},
		{"summary", c.Feeds.Summary},
		{"balances", c.Feeds.Balances},
		{"prices", c.Feeds.Prices},
		{"clock", c.Feeds.Clock},
	}
	for _, f := range feeds {
		if f.feed.Interval <= 0 {
			return fmt.Errorf("feeds.%s.interval must be > 0", f.name)
		}
	}

	if c.Retry.MaxRetries < 0 {
		return errors.New("retry.max_retries must be >= 0")
	}
	if c.Retry.BaseDelay <= 0 {
		return errors.New("retry.base_delay must be > 0")
	}
	if c.InitRecheck <= 0 {
		return errors.New("init_recheck must be > 0")
	}

	if c.Display.LocalRate <= 0 {
		return fmt.Errorf("display.local_rate must be > 0, got %v", c.Display.LocalRate)
	}
	if _, err := time.LoadLocation(c.Display.Timezone); err != nil {
		return fmt.Errorf("display.timezone: %w", err)
	}
	if c.Display.FrameInterval <= 0 {
		return errors.New("display.frame_interval must be > 0")
	}

	if len(c.Pairs) == 0 {
		return errors.New("pairs must not be empty")
	}
	seen := make(map[string]bool)
	for i, p := range c.Pairs {
		if p.Name == "" || p.Reference == "" || p.Comparison == "" {
			return fmt.Errorf("pairs[%d] needs name, reference and comparison", i)
		}
		if p.Reference == p.Comparison {
			return fmt.Errorf("pairs[%d].comparison must differ from reference", i)
		}
		if seen[p.Name] {
			return fmt.Errorf("pairs[%d].name %q is duplicated", i, p.Name)
		}
		seen[p.Name] = true
	}

	if c.Prices.Reference == c.Prices.Comparison {
		return errors.New("prices.comparison must differ from prices.reference")
	}

	if c.Alerts.EntryThreshold <= c.Alerts.ExitThreshold {
		return fmt.Errorf("alerts.entry_threshold (%v) must exceed alerts.exit_threshold (%v)",
			c.Alerts.EntryThreshold, c.Alerts.ExitThreshold)
	}
	if c.Alerts.Cooldown < 0 {
		return errors.New("alerts.cooldown must be >= 0")
	}
	if _, err := cron.ParseStandard(c.Alerts.DigestSchedule); err != nil {
		return fmt.Errorf("alerts.digest_schedule: %w", err)
	}

	if c.Journal.Retention <= 0 {
		return errors.New("journal.retention must be > 0")
	}
	if _, err := cron.ParseStandard(c.Journal.PruneSchedule); err != nil {
		return fmt.Errorf("journal.prune_schedule: %w", err)
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}
