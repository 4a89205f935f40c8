package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"coinguard/internal/reward/models"
	id "coinguard/pkg/domain"
	"coinguard/pkg/platform/circuit"
)

const cacheKeyPrefix = "coinguard:rule:"

// RedisCache is a read-through cache in front of a rule Store. Rules are
// read on every validation call, so the cache absorbs the hot path; the
// staleness window (TTL) is a deployment decision, not a policy invariant.
//
// A circuit breaker guards the Redis round-trips: when Redis is failing the
// cache degrades to direct inner-store reads instead of adding latency to
// every validation call. Cache misses for the same action are collapsed
// through singleflight so a popular action does not stampede the database
// when its entry expires.
type RedisCache struct {
	inner   Store
	client  *redis.Client
	ttl     time.Duration
	breaker *circuit.Breaker
	group   singleflight.Group
	logger  *slog.Logger
}

// CacheOption configures a RedisCache.
type CacheOption func(*RedisCache)

// WithCacheTTL overrides the default 30s entry TTL.
func WithCacheTTL(ttl time.Duration) CacheOption {
	return func(c *RedisCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithCacheLogger sets a logger for degraded-mode reporting.
func WithCacheLogger(logger *slog.Logger) CacheOption {
	return func(c *RedisCache) {
		c.logger = logger
	}
}

// NewRedisCache wraps inner with a Redis read-through cache.
func NewRedisCache(inner Store, client *redis.Client, opts ...CacheOption) *RedisCache {
	c := &RedisCache{
		inner:   inner,
		client:  client,
		ttl:     30 * time.Second,
		breaker: circuit.New("rules-cache"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *RedisCache) Get(ctx context.Context, action id.Action) (*models.ActionRule, error) {
	if c.breaker.IsOpen() {
		rule, err := c.inner.Get(ctx, action)
		if err == nil {
			// Probe Redis health lazily on successful inner reads.
			if pingErr := c.client.Ping(ctx).Err(); pingErr == nil {
				if _, change := c.breaker.RecordSuccess(); change.Closed && c.logger != nil {
					c.logger.InfoContext(ctx, "rule cache recovered", "breaker", c.breaker.Name())
				}
			}
		}
		return rule, err
	}

	cached, err := c.client.Get(ctx, cacheKeyPrefix+action.String()).Bytes()
	switch {
	case err == nil:
		c.breaker.RecordSuccess()
		var rule models.ActionRule
		if jsonErr := json.Unmarshal(cached, &rule); jsonErr == nil {
			return &rule, nil
		}
		// Corrupt entry: fall through to a fresh load.
	case errors.Is(err, redis.Nil):
		c.breaker.RecordSuccess()
	default:
		if _, change := c.breaker.RecordFailure(); change.Opened && c.logger != nil {
			c.logger.WarnContext(ctx, "rule cache degraded, reading rules directly",
				"breaker", c.breaker.Name(),
				"error", err,
			)
		}
		return c.inner.Get(ctx, action)
	}

	return c.load(ctx, action)
}

// load fetches from the inner store and backfills the cache entry,
// collapsing concurrent misses for the same action.
func (c *RedisCache) load(ctx context.Context, action id.Action) (*models.ActionRule, error) {
	v, err, _ := c.group.Do(action.String(), func() (any, error) {
		rule, err := c.inner.Get(ctx, action)
		if err != nil {
			return nil, err
		}
		if payload, jsonErr := json.Marshal(rule); jsonErr == nil {
			if setErr := c.client.Set(ctx, cacheKeyPrefix+action.String(), payload, c.ttl).Err(); setErr != nil {
				c.breaker.RecordFailure()
			}
		}
		return rule, nil
	})
	if err != nil {
		return nil, err
	}
	rule, ok := v.(*models.ActionRule)
	if !ok {
		return nil, fmt.Errorf("unexpected cache load result type %T", v)
	}
	return rule, nil
}

// List always reads through to the inner store; admin views are rare and
// want fresh data.
func (c *RedisCache) List(ctx context.Context) ([]*models.ActionRule, error) {
	return c.inner.List(ctx)
}
