package loader

import (
	"context"
	"time"

	"github.com/s21toolkit/s21introspector/pkg/cache"
)

// DefaultCacheOptions keeps successful loads for the life of the process and
// remembers failures briefly so a broken source is not refetched by every
// crawl that references it.
var DefaultCacheOptions = cache.Options{
	NegativeTTL: 30 * time.Second,
	MaxEntries:  4096,
}

// NewCache builds a source cache reporting to the loader cache metrics.
func NewCache(opts cache.Options) *cache.Cache[string] {
	return cache.New[string](opts, cache.MetricsHooks{
		OnHit:  func(string) { cacheEventsTotal.WithLabelValues("hit").Inc() },
		OnMiss: func(string) { cacheEventsTotal.WithLabelValues("miss").Inc() },
		OnStore: func(_ string, ok bool) {
			if ok {
				cacheEventsTotal.WithLabelValues("store").Inc()
			} else {
				cacheEventsTotal.WithLabelValues("store_negative").Inc()
			}
		},
	})
}

type cached struct {
	next  Loader
	store *cache.Cache[string]
}

// Cached memoizes next. A nil store gets a fresh cache with DefaultCacheOptions.
func Cached(next Loader, store *cache.Cache[string]) Loader {
	if store == nil {
		store = NewCache(DefaultCacheOptions)
	}
	return &cached{next: next, store: store}
}

func (c *cached) Load(ctx context.Context, url string) (string, error) {
	text, _, err := c.store.Get(ctx, url, func(ctx context.Context, key string) (string, bool, error) {
		text, err := c.next.Load(ctx, key)
		if err != nil {
			return "", false, err
		}
		return text, true, nil
	})
	if err != nil {
		return "", err
	}
	return text, nil
}
