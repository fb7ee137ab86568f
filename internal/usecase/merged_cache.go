package usecase

import (
	"sync"

	"github.com/vitos/crypto_gap_board/internal/domain"
)

// MergedCache keeps the last record with a non-null price for every
// (symbol, exchange) ever seen. Entries are replaced, never removed.
type MergedCache struct {
	mu      sync.RWMutex
	entries domain.SymbolSnapshot
}

func NewMergedCache() *MergedCache {
	return &MergedCache{entries: make(domain.SymbolSnapshot)}
}

// Merge folds a fresh snapshot into the cache and returns how many entries
// were replaced. Records with a null price leave the cached entry untouched.
func (c *MergedCache) Merge(in domain.SymbolSnapshot) int {
	c.mu.Lock()
	defer c.mu.Unlock()

	replaced := 0
	for symbol, exchanges := range in {
		for exchange, rec := range exchanges {
			if !rec.HasPrice() {
				continue
			}
			bySymbol, ok := c.entries[symbol]
			if !ok {
				bySymbol = make(map[string]domain.TickRecord)
				c.entries[symbol] = bySymbol
			}
			bySymbol[exchange] = rec
			replaced++
		}
	}
	return replaced
}

// Snapshot returns a copy that callers may hold across later merges.
func (c *MergedCache) Snapshot() domain.SymbolSnapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(domain.SymbolSnapshot, len(c.entries))
	for symbol, exchanges := range c.entries {
		cp := make(map[string]domain.TickRecord, len(exchanges))
		for exchange, rec := range exchanges {
			cp[exchange] = rec
		}
		out[symbol] = cp
	}
	return out
}

func (c *MergedCache) Get(symbol, exchange string) (domain.TickRecord, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	rec, ok := c.entries[symbol][exchange]
	return rec, ok
}

func (c *MergedCache) Empty() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries) == 0
}
