package retrieval

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	defaultResultTTL      = 5 * time.Minute
	defaultCleanupMinutes = 10
)

// CachedSearcher memoizes search results for repeated queries.
type CachedSearcher struct {
	inner Searcher
	cache *gocache.Cache
}

func NewCachedSearcher(inner Searcher, ttl time.Duration) *CachedSearcher {
	if ttl <= 0 {
		ttl = defaultResultTTL
	}
	return &CachedSearcher{
		inner: inner,
		cache: gocache.New(ttl, defaultCleanupMinutes*time.Minute),
	}
}

func (s *CachedSearcher) Search(ctx context.Context, query string, topK int) ([]Document, error) {
	key := fmt.Sprintf("%d:%s", topK, query)
	if cached, found := s.cache.Get(key); found {
		return cached.([]Document), nil
	}

	docs, err := s.inner.Search(ctx, query, topK)
	if err != nil {
		return nil, err
	}
	s.cache.Set(key, docs, gocache.DefaultExpiration)
	return docs, nil
}

// Flush drops all cached results, for use after knowledge-base updates.
func (s *CachedSearcher) Flush() {
	s.cache.Flush()
}
