package redis

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/bryanwahyu/ip-inspection/internal/domain/profile"
)

type Options struct {
	Addr, Password, Namespace string
	DB                        int
	TTL                       time.Duration
	Timeout                   time.Duration
}

// ProfileCache keeps subject → profile id lookups in redis.
// Any redis failure is reported as a miss.
type ProfileCache struct {
	rdb *redis.Client
	ns  string
	ttl time.Duration
}

func NewProfileCache(o Options) *ProfileCache {
	timeout := o.Timeout
	if timeout <= 0 {
		timeout = 500 * time.Millisecond
	}
	ttl := o.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	ns := o.Namespace
	if ns == "" {
		ns = "ipinspection:profile"
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:         o.Addr,
		Password:     o.Password,
		DB:           o.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})
	return &ProfileCache{rdb: rdb, ns: ns, ttl: ttl}
}

func (c *ProfileCache) key(k string) string { return c.ns + ":" + k }

func (c *ProfileCache) Get(ctx context.Context, key string) (profile.ID, bool) {
	v, err := c.rdb.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		log.Printf("profile_cache op=get err=%v", err)
		return "", false
	}
	return profile.ID(v), v != ""
}

func (c *ProfileCache) Set(ctx context.Context, key string, id profile.ID) {
	if err := c.rdb.Set(ctx, c.key(key), string(id), c.ttl).Err(); err != nil {
		log.Printf("profile_cache op=set err=%v", err)
	}
}

// Check pings redis for health reporting.
func (c *ProfileCache) Check(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *ProfileCache) Close() error { return c.rdb.Close() }
