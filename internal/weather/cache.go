package weather

import (
	"sync"
	"time"

	"github.com/yegors/tailwinds/pkg/logger"
)

// Cache keeps the latest report for a configurable time
type Cache struct {
	data      *Report
	expiresAt time.Time
	ttl       time.Duration
	logger    *logger.Logger
	mu        sync.RWMutex
}

// NewCache creates a new report cache
func NewCache(ttl time.Duration, log *logger.Logger) *Cache {
	return &Cache{
		ttl:    ttl,
		logger: log.Named("weather-cache"),
	}
}

// Get returns the cached report, or nil when empty or expired at now
func (c *Cache) Get(now time.Time) *Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.data == nil || now.After(c.expiresAt) {
		return nil
	}
	return c.data
}

// Latest returns the last report regardless of expiry
func (c *Cache) Latest() *Report {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

// Set stores a report
func (c *Cache) Set(data *Report, now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = data
	c.expiresAt = now.Add(c.ttl)

	c.logger.Debug("Report cached",
		logger.String("airport", data.Airport),
		logger.Time("expires_at", c.expiresAt),
		logger.Int("error_count", len(data.FetchErrors)))
}

// Invalidate clears the cache
func (c *Cache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = nil
	c.expiresAt = time.Time{}
	c.logger.Info("Report cache invalidated")
}

// GetStats returns cache statistics
func (c *Cache) GetStats(now time.Time) map[string]interface{} {
	c.mu.RLock()
	defer c.mu.RUnlock()

	stats := map[string]interface{}{
		"has_data":   c.data != nil,
		"is_expired": c.data == nil || now.After(c.expiresAt),
	}
	if c.data != nil {
		stats["last_updated"] = c.data.LastUpdated
		stats["error_count"] = len(c.data.FetchErrors)
		stats["runway_count"] = len(c.data.Runways)
	}
	return stats
}
