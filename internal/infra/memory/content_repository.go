package memory

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"arquiz-service/internal/domain"
	"golang.org/x/sync/singleflight"
)

// ContentLoader fetches question content from a backing store (file, Postgres, ...).
type ContentLoader interface {
	LoadContent(ctx context.Context, contentID string) (domain.Content, error)
}

// ContentRepository caches content with TTL so game starts don't hit the loader every time.
type ContentRepository struct {
	loader ContentLoader
	ttl    time.Duration
	clock  func() time.Time
	sf     singleflight.Group
	rnd    *rand.Rand

	mu    sync.RWMutex
	cache map[string]cachedContent
}

type cachedContent struct {
	content   domain.Content
	expiresAt time.Time
}

func NewContentRepository(loader ContentLoader, ttl time.Duration) *ContentRepository {
	return &ContentRepository{
		loader: loader,
		ttl:    ttl,
		clock:  time.Now,
		rnd:    rand.New(rand.NewSource(time.Now().UnixNano())),
		cache:  make(map[string]cachedContent),
	}
}

func (r *ContentRepository) GetContent(ctx context.Context, contentID string) (domain.Content, error) {
	if content, ok := r.lookup(contentID); ok {
		return content, nil
	}

	result, err, _ := r.sf.Do(contentID, func() (interface{}, error) {
		if content, ok := r.lookup(contentID); ok {
			return content, nil
		}

		content, err := r.loader.LoadContent(ctx, contentID)
		if err != nil {
			return domain.Content{}, err
		}

		expiresAt := r.clock().Add(r.ttlWithJitter())
		r.mu.Lock()
		r.cache[contentID] = cachedContent{content: content, expiresAt: expiresAt}
		r.mu.Unlock()
		return content, nil
	})
	if err != nil {
		return domain.Content{}, err
	}
	return result.(domain.Content), nil
}

func (r *ContentRepository) lookup(contentID string) (domain.Content, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	entry, ok := r.cache[contentID]
	if !ok || !entry.expiresAt.After(r.clock()) {
		return domain.Content{}, false
	}
	return entry.content, true
}

func (r *ContentRepository) ttlWithJitter() time.Duration {
	if r.ttl <= 0 {
		return 0
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	// up to 10% jitter spreads expirations across content sets
	jitterMax := int64(r.ttl) / 10
	return r.ttl + time.Duration(r.rnd.Int63n(jitterMax+1))
}

// StaticContentLoader serves content from a map (tests, demos, content files).
type StaticContentLoader struct {
	contents map[string]domain.Content
}

func NewStaticContentLoader(contents map[string]domain.Content) *StaticContentLoader {
	return &StaticContentLoader{contents: contents}
}

func (l *StaticContentLoader) LoadContent(_ context.Context, contentID string) (domain.Content, error) {
	if content, ok := l.contents[contentID]; ok {
		return content, nil
	}
	return domain.Content{}, domain.ErrContentNotFound
}
