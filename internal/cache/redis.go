package cache

import (
	"context"
	"errors"
	"time"

	"github.com/emrgen/sweater/internal/compress"
	"github.com/emrgen/sweater/internal/config"
	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	graphKeyPrefix  = "sweater:graph:"
	DefaultGraphTTL = time.Hour
)

func graphKey(key string) string {
	return graphKeyPrefix + key
}

// NewRedisClient connects to the redis configured in cfg.
func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		Protocol: 2, // Connection protocol
	})
}

// NewGraphCache returns a redis backed cache when an address is configured,
// a Nop cache otherwise.
func NewGraphCache(cfg *config.Config) (GraphCache, error) {
	if cfg.Redis.Addr == "" {
		return Nop{}, nil
	}

	encoder, err := compress.New(cfg.Compression)
	if err != nil {
		return nil, err
	}

	logrus.Infof("caching graph exports in redis at %s with %s compression", cfg.Redis.Addr, cfg.Compression)

	return NewRedisGraphCache(NewRedisClient(cfg.Redis), encoder, DefaultGraphTTL), nil
}

var _ GraphCache = (*RedisGraphCache)(nil)

type RedisGraphCache struct {
	client  *redis.Client
	encoder compress.Compress
	ttl     time.Duration
}

func NewRedisGraphCache(client *redis.Client, encoder compress.Compress, ttl time.Duration) *RedisGraphCache {
	return &RedisGraphCache{client: client, encoder: encoder, ttl: ttl}
}

func (r *RedisGraphCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	res := r.client.Get(ctx, graphKey(key))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, false, nil
		}
		return nil, false, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, false, err
	}

	graph, err := r.encoder.Decode(buf)
	if err != nil {
		return nil, false, err
	}

	return graph, true, nil
}

func (r *RedisGraphCache) Set(ctx context.Context, key string, graph []byte) error {
	data, err := r.encoder.Encode(graph)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, graphKey(key), data, r.ttl).Err()
}

func (r *RedisGraphCache) Close() error {
	return r.client.Close()
}
