package cache

import (
	"fmt"
	"time"

	"github.com/OFFIS-RIT/scholargraph/pkg/analysis"

	"github.com/dgraph-io/ristretto/v2"
)

// AnalysisCache keeps analysis results keyed by the fingerprint of the
// snapshot they were computed from. Identical snapshots share one entry no
// matter which graph id they are stored under.
type AnalysisCache struct {
	cache *ristretto.Cache[string, analysis.Result]
	ttl   time.Duration
}

// New creates a cache holding at most maxEntries results. A ttl of zero keeps
// entries until they are evicted.
func New(maxEntries int64, ttl time.Duration) (*AnalysisCache, error) {
	if maxEntries <= 0 {
		maxEntries = 1
	}

	c, err := ristretto.NewCache(&ristretto.Config[string, analysis.Result]{
		NumCounters:        maxEntries * 10,
		MaxCost:            maxEntries,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create analysis cache: %w", err)
	}

	return &AnalysisCache{cache: c, ttl: ttl}, nil
}

// Get returns the result cached for a snapshot fingerprint.
func (c *AnalysisCache) Get(fingerprint string) (analysis.Result, bool) {
	return c.cache.Get(fingerprint)
}

// Set stores a result. Writes are applied asynchronously; call Wait when a
// following Get must observe them.
func (c *AnalysisCache) Set(fingerprint string, result analysis.Result) bool {
	return c.cache.SetWithTTL(fingerprint, result, 1, c.ttl)
}

// Delete drops the result cached for a fingerprint.
func (c *AnalysisCache) Delete(fingerprint string) {
	c.cache.Del(fingerprint)
}

// Wait blocks until pending writes are applied.
func (c *AnalysisCache) Wait() {
	c.cache.Wait()
}

// Close stops the cache's background goroutines.
func (c *AnalysisCache) Close() {
	c.cache.Close()
}
