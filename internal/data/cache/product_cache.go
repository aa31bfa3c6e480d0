// Package cache holds the public product listing cache.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"marketplace/internal/data/entity"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publicListingKey = "marketplace:products:approved"

// ProductCache caches the approved listing. Failures are logged and reported as misses.
type ProductCache interface {
	GetPublic(ctx context.Context) ([]*entity.Product, bool)
	SetPublic(ctx context.Context, products []*entity.Product)
	Invalidate(ctx context.Context)
}

type redisProductCache struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewRedisProductCache(rdb *redis.Client, ttl time.Duration, log *zap.Logger) ProductCache {
	return &redisProductCache{
		rdb: rdb,
		ttl: ttl,
		log: log.With(zap.String("cache", "product")),
	}
}

func (c *redisProductCache) GetPublic(ctx context.Context) ([]*entity.Product, bool) {
	raw, err := c.rdb.Get(ctx, publicListingKey).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			c.log.Warn("Failed to read listing cache", zap.Error(err))
		}
		return nil, false
	}

	var products []*entity.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		c.log.Warn("Corrupt listing cache entry", zap.Error(err))
		return nil, false
	}
	return products, true
}

func (c *redisProductCache) SetPublic(ctx context.Context, products []*entity.Product) {
	raw, err := json.Marshal(products)
	if err != nil {
		c.log.Warn("Failed to encode listing cache", zap.Error(err))
		return
	}
	if err := c.rdb.Set(ctx, publicListingKey, raw, c.ttl).Err(); err != nil {
		c.log.Warn("Failed to write listing cache", zap.Error(err))
	}
}

func (c *redisProductCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Del(ctx, publicListingKey).Err(); err != nil {
		c.log.Warn("Failed to invalidate listing cache", zap.Error(err))
	}
}

type noopProductCache struct{}

// NewNoopProductCache disables caching.
func NewNoopProductCache() ProductCache { return noopProductCache{} }

func (noopProductCache) GetPublic(context.Context) ([]*entity.Product, bool) { return nil, false }
func (noopProductCache) SetPublic(context.Context, []*entity.Product)        {}
func (noopProductCache) Invalidate(context.Context)                          {}
