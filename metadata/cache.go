package metadata

import (
	arc "github.com/hashicorp/golang-lru/arc/v2"
	"github.com/prometheus/client_golang/prometheus"
)

const DefaultCacheSize = 4096

var (
	cacheHits = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vdb",
		Subsystem: "metadata",
		Name:      "cache_hits_total",
		Help:      "Metadata object cache lookups that found an entry.",
	})
	cacheMisses = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "vdb",
		Subsystem: "metadata",
		Name:      "cache_misses_total",
		Help:      "Metadata object cache lookups that found nothing.",
	})
)

// RegisterMetrics adds the cache counters to reg.
func RegisterMetrics(reg prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{cacheHits, cacheMisses} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}

type cacheKey struct {
	id  ID
	key string
}

// Cache memoizes values computed from catalog objects, such as the element
// list of a group.  It is safe for concurrent use.  Two resolutions that
// miss on the same entry may both compute it; the last Put wins.
type Cache struct {
	entries *arc.ARCCache[cacheKey, any]
}

func NewCache(size int) *Cache {
	if size <= 0 {
		size = DefaultCacheSize
	}
	entries, err := arc.NewARC[cacheKey, any](size)
	if err != nil {
		// Only a non-positive size fails.
		panic(err)
	}
	return &Cache{entries: entries}
}

func (c *Cache) Get(id ID, key string) (any, bool) {
	v, ok := c.entries.Get(cacheKey{id, key})
	if ok {
		cacheHits.Inc()
	} else {
		cacheMisses.Inc()
	}
	return v, ok
}

func (c *Cache) Put(id ID, key string, value any) {
	c.entries.Add(cacheKey{id, key}, value)
}

func (c *Cache) Invalidate(id ID, key string) {
	c.entries.Remove(cacheKey{id, key})
}

func (c *Cache) Len() int {
	return c.entries.Len()
}

func (c *Cache) Purge() {
	c.entries.Purge()
}
