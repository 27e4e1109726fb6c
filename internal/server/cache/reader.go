package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/dmitrijs2005/taskkeeper/internal/logging"
	"github.com/dmitrijs2005/taskkeeper/internal/server/metrics"
)

// Reader wires a Store to a TTL, a logger and metrics. Cache faults are never
// returned to callers: reads degrade to the loader, writes and deletes are
// logged and dropped.
type Reader struct {
	store   Store
	ttl     time.Duration
	log     logging.Logger
	metrics *metrics.Metrics
}

func NewReader(store Store, ttl time.Duration, log logging.Logger, m *metrics.Metrics) *Reader {
	return &Reader{store: store, ttl: ttl, log: log, metrics: m}
}

// ReadThrough returns the resource kind/id from the cache, or loads it and
// caches the result. authorize runs on both paths, so a cached entry is held
// to the same policy as a fresh load. Load and authorize errors are returned
// unchanged and nothing is cached for them.
func ReadThrough[T any](
	ctx context.Context,
	r *Reader,
	kind string,
	id int64,
	load func(ctx context.Context) (T, error),
	authorize func(T) error,
) (T, error) {
	var zero T
	key := Key(kind, id)

	if v, ok := lookup[T](ctx, r, kind, key); ok {
		if err := authorize(v); err != nil {
			return zero, err
		}
		return v, nil
	}

	v, err := load(ctx)
	if err != nil {
		return zero, err
	}
	if err := authorize(v); err != nil {
		return zero, err
	}

	r.put(ctx, key, v)
	return v, nil
}

func lookup[T any](ctx context.Context, r *Reader, kind, key string) (T, bool) {
	var v T

	raw, err := r.store.Get(ctx, key)
	if errors.Is(err, ErrMiss) {
		r.metrics.CacheRequest(kind, metrics.CacheMiss)
		return v, false
	}
	if err != nil {
		r.metrics.CacheRequest(kind, metrics.CacheError)
		r.log.Warn(ctx, "cache read failed", "key", key, "error", err)
		return v, false
	}

	if err := json.Unmarshal(raw, &v); err != nil {
		r.metrics.CacheRequest(kind, metrics.CacheError)
		r.log.Warn(ctx, "cache entry undecodable", "key", key, "error", err)
		return v, false
	}

	r.metrics.CacheRequest(kind, metrics.CacheHit)
	return v, true
}

func (r *Reader) put(ctx context.Context, key string, v any) {
	raw, err := json.Marshal(v)
	if err != nil {
		r.log.Warn(ctx, "cache entry not encodable", "key", key, "error", err)
		return
	}
	if err := r.store.Set(ctx, key, raw, r.ttl); err != nil {
		r.log.Warn(ctx, "cache write failed", "key", key, "error", err)
	}
}

// Invalidate drops the entry of kind/id. Call it after the mutation has
// committed; a failure is logged and counted but never reported.
func (r *Reader) Invalidate(ctx context.Context, kind string, id int64) {
	key := Key(kind, id)
	if err := r.store.Delete(ctx, key); err != nil {
		r.metrics.CacheInvalidationFailed(kind)
		r.log.Warn(ctx, "cache invalidation failed", "key", key, "error", err)
	}
}
