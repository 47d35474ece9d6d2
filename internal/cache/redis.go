package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"cartify/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	listKeyPattern    = "catalog:products:*"
	catalogKeyPattern = "catalog:*"
)

type RedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

var _ CatalogCache = (*RedisCache)(nil)

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisCache{client: client, baseTTL: ttl}
}

func (r *RedisCache) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var p domain.Product
	if err := r.get(ctx, productKey(id), &p); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RedisCache) SetProduct(ctx context.Context, p *domain.Product) error {
	return r.set(ctx, productKey(p.ID), p)
}

func (r *RedisCache) GetProductList(ctx context.Context, categoryID string) ([]domain.Product, error) {
	var list []domain.Product
	if err := r.get(ctx, listKey(categoryID), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (r *RedisCache) SetProductList(ctx context.Context, categoryID string, products []domain.Product) error {
	return r.set(ctx, listKey(categoryID), products)
}

func (r *RedisCache) InvalidateProduct(ctx context.Context, id string) error {
	keys := []string{}
	if id != "" {
		keys = append(keys, productKey(id))
	}
	return r.deleteMatching(ctx, listKeyPattern, keys)
}

func (r *RedisCache) InvalidateCatalog(ctx context.Context) error {
	return r.deleteMatching(ctx, catalogKeyPattern, nil)
}

// deleteMatching removes keys plus every key matching pattern.
func (r *RedisCache) deleteMatching(ctx context.Context, pattern string, keys []string) error {
	iter := r.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("redis scan failed: %w", err)
	}
	if len(keys) == 0 {
		return nil
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis delete failed: %w", err)
	}
	return nil
}

func (r *RedisCache) get(ctx context.Context, key string, out any) error {
	data, err := r.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrCacheMiss
	}
	if err != nil {
		return fmt.Errorf("redis get failed: %w", err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("unmarshal %s failed: %w", key, err)
	}
	return nil
}

func (r *RedisCache) set(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s failed: %w", key, err)
	}
	// jitter spreads expiry so hot keys do not all refill at once
	ttl := r.baseTTL + time.Duration(rand.Int63n(int64(r.baseTTL/5)+1))
	if err := r.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

func productKey(id string) string {
	return fmt.Sprintf("catalog:product:%s", id)
}

func listKey(categoryID string) string {
	if categoryID == "" {
		categoryID = "all"
	}
	return fmt.Sprintf("catalog:products:%s", categoryID)
}
