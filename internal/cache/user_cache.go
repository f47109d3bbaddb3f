package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eion/technotes/internal/directory/users"
)

const (
	keyUserListGeneration = "technotes:users:generation"
	keyUserListPrefix     = "technotes:users:list:"
)

// DefaultTTL bounds staleness when another instance writes without invalidating
const DefaultTTL = 5 * time.Minute

// UserListCache caches the user listing in Redis. It satisfies users.ListCache.
// Each listing is keyed by the generation it was read under; Invalidate bumps
// the generation so listings read before a write are never served.
type UserListCache struct {
	rdb redis.UniversalClient
	ttl time.Duration
}

// NewUserListCache returns a new UserListCache
func NewUserListCache(rdb redis.UniversalClient, ttl time.Duration) *UserListCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &UserListCache{rdb: rdb, ttl: ttl}
}

func listKey(generation int64) string {
	return keyUserListPrefix + strconv.FormatInt(generation, 10)
}

// GetUsers returns the listing of the current generation, or nil on a miss
func (c *UserListCache) GetUsers(ctx context.Context) ([]*users.User, int64, error) {
	generation, err := c.rdb.Get(ctx, keyUserListGeneration).Int64()
	if errors.Is(err, redis.Nil) {
		generation = 0
	} else if err != nil {
		return nil, 0, err
	}

	b, err := c.rdb.Get(ctx, listKey(generation)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, generation, nil
	}
	if err != nil {
		return nil, 0, err
	}
	var list []*users.User
	if err := json.Unmarshal(b, &list); err != nil {
		return nil, 0, err
	}
	return list, generation, nil
}

// SetUsers stores the listing for generation. Password hashes never reach the cache.
func (c *UserListCache) SetUsers(ctx context.Context, generation int64, list []*users.User) error {
	b, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, listKey(generation), b, c.ttl).Err()
}

// Invalidate advances the generation and drops the listing it replaces
func (c *UserListCache) Invalidate(ctx context.Context) error {
	next, err := c.rdb.Incr(ctx, keyUserListGeneration).Result()
	if err != nil {
		return err
	}
	return c.rdb.Del(ctx, listKey(next-1)).Err()
}

// NewClient connects to Redis and verifies the connection
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}
