package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/VictorEZCodes/BouncerLink/internal/link"
	"github.com/redis/go-redis/v9"
)

// RedisCacheStore wraps a link.Store with a Redis read cache for
// GetByCode. Entries carry a short TTL and are invalidated on every
// RegisterVisit, so a cached snapshot never hides a consumed quota
// slot for longer than one write. The conditional increment in the
// underlying store remains the authoritative quota gate either way.
type RedisCacheStore struct {
	store  link.Store
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewRedisCacheStore creates a caching decorator around store.
func NewRedisCacheStore(store link.Store, client *redis.Client, ttl time.Duration) *RedisCacheStore {
	return &RedisCacheStore{
		store:  store,
		client: client,
		prefix: "link:",
		ttl:    ttl,
	}
}

func (r *RedisCacheStore) GetByCode(ctx context.Context, code link.Code) (*link.Link, error) {
	if l, err := r.getFromCache(ctx, code); err == nil {
		return l, nil
	}

	l, err := r.store.GetByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	r.cache(ctx, l)

	return l, nil
}

func (r *RedisCacheStore) Create(ctx context.Context, l *link.Link) error {
	if err := r.store.Create(ctx, l); err != nil {
		return err
	}

	// Write-through so the first resolution hits the cache.
	r.cache(ctx, l)

	return nil
}

func (r *RedisCacheStore) RegisterVisit(ctx context.Context, code link.Code, now time.Time) (bool, error) {
	ok, err := r.store.RegisterVisit(ctx, code, now)
	if err != nil {
		return false, err
	}

	// The counters changed; drop the stale snapshot.
	r.client.Del(ctx, r.prefix+string(code))

	return ok, nil
}

func (r *RedisCacheStore) ListByOwner(ctx context.Context, ownerID string) ([]*link.Link, error) {
	return r.store.ListByOwner(ctx, ownerID)
}

func (r *RedisCacheStore) getFromCache(ctx context.Context, code link.Code) (*link.Link, error) {
	payload, err := r.client.Get(ctx, r.prefix+string(code)).Bytes()
	if err != nil {
		return nil, err
	}

	var l link.Link
	if err := json.Unmarshal(payload, &l); err != nil {
		return nil, err
	}

	return &l, nil
}

func (r *RedisCacheStore) cache(ctx context.Context, l *link.Link) {
	payload, err := json.Marshal(l)
	if err != nil {
		return
	}

	_ = r.client.Set(ctx, r.prefix+string(l.Code), payload, r.ttl).Err()
}

var _ link.Store = (*RedisCacheStore)(nil)
