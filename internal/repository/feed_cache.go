package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/go-redis/redis/v8"
)

const FeedCacheKey = "feed:recent"

// FeedCache 信息流基础列表缓存；Redis 未启用时所有方法均为空操作
type FeedCache struct {
	Redis *redis.Client
	TTL   time.Duration
}

func NewFeedCache(client *redis.Client, ttl time.Duration) *FeedCache {
	return &FeedCache{Redis: client, TTL: ttl}
}

func (c *FeedCache) enabled() bool {
	return c != nil && c.Redis != nil && c.TTL > 0
}

// Get 命中时反序列化到 dest 并返回 true
func (c *FeedCache) Get(ctx context.Context, dest interface{}) (bool, error) {
	if !c.enabled() {
		return false, nil
	}
	data, err := c.Redis.Get(ctx, FeedCacheKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return false, err
	}
	return true, nil
}

func (c *FeedCache) Set(ctx context.Context, value interface{}) error {
	if !c.enabled() {
		return nil
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.Redis.Set(ctx, FeedCacheKey, data, c.TTL).Err()
}

func (c *FeedCache) Invalidate(ctx context.Context) error {
	if !c.enabled() {
		return nil
	}
	return c.Redis.Del(ctx, FeedCacheKey).Err()
}
