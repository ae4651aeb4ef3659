package cache

import "spcplot/app/stats"

// StatsCache holds per-column summary statistics for one data version. Any
// lookup or store with a different version drops the whole map first.
type StatsCache struct {
	version uint64
	entries map[int]stats.CachedStats
}

// NewStatsCache returns an empty cache
func NewStatsCache() *StatsCache {
	return &StatsCache{entries: make(map[int]stats.CachedStats)}
}

// Get returns the statistics of col computed at version
func (c *StatsCache) Get(col int, version uint64) (stats.CachedStats, bool) {
	if version != c.version {
		c.reset(version)
		return stats.CachedStats{}, false
	}
	s, ok := c.entries[col]
	return s, ok
}

// Put stores the statistics of col computed at version
func (c *StatsCache) Put(col int, version uint64, s stats.CachedStats) {
	if version != c.version {
		c.reset(version)
	}
	c.entries[col] = s
}

// Invalidate drops every entry
func (c *StatsCache) Invalidate() {
	c.entries = make(map[int]stats.CachedStats)
}

// Len returns the number of cached columns
func (c *StatsCache) Len() int {
	return len(c.entries)
}

func (c *StatsCache) reset(version uint64) {
	c.version = version
	c.entries = make(map[int]stats.CachedStats)
}
