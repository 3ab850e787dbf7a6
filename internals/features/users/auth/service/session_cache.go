package service

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	authModel "polopay_backend/internals/features/users/auth/model"
)

const sessionCacheTTL = 5 * time.Minute

// CachedSession is what the guard needs to authorize a request without a DB round trip.
type CachedSession struct {
	Actor     authModel.Actor `json:"actor"`
	ExpiresAt time.Time       `json:"expires_at"`
}

type SessionCache interface {
	Get(ctx context.Context, sid uuid.UUID) (*CachedSession, error)
	Set(ctx context.Context, sid uuid.UUID, s CachedSession) error
	Delete(ctx context.Context, sid uuid.UUID) error
}

// RedisSessionCache stores resolved sessions under session:<sid>.
type RedisSessionCache struct {
	rdb *redis.Client
}

func NewRedisSessionCache(rdb *redis.Client) *RedisSessionCache {
	return &RedisSessionCache{rdb: rdb}
}

func sessionKey(sid uuid.UUID) string { return "session:" + sid.String() }

// Get returns (nil, nil) on a miss.
func (c *RedisSessionCache) Get(ctx context.Context, sid uuid.UUID) (*CachedSession, error) {
	raw, err := c.rdb.Get(ctx, sessionKey(sid)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var s CachedSession
	if err := sonic.Unmarshal(raw, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

func (c *RedisSessionCache) Set(ctx context.Context, sid uuid.UUID, s CachedSession) error {
	ttl := time.Until(s.ExpiresAt)
	if ttl <= 0 {
		return nil
	}
	if ttl > sessionCacheTTL {
		ttl = sessionCacheTTL
	}
	raw, err := sonic.Marshal(s)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, sessionKey(sid), raw, ttl).Err()
}

func (c *RedisSessionCache) Delete(ctx context.Context, sid uuid.UUID) error {
	return c.rdb.Del(ctx, sessionKey(sid)).Err()
}
