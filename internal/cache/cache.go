package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/flightcrawl/internal/models"
)

// Cache holds complete search responses keyed by the request that produced
// them.
type Cache interface {
	Get(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, bool)
	Set(ctx context.Context, req models.SearchRequest, resp *models.SearchResponse) error
	Close() error
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr: "localhost:6379",
		TTL:  5 * time.Minute,
	}
}

// NewRedisClient connects and pings. The client is shared with the session
// store.
func NewRedisClient(cfg RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// RedisCache stores zstd-compressed JSON.
type RedisCache struct {
	client  *redis.Client
	ttl     time.Duration
	encoder *zstd.Encoder
	decoder *zstd.Decoder
}

func NewRedisCache(client *redis.Client, ttl time.Duration) (*RedisCache, error) {
	encoder, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, err
	}
	decoder, err := zstd.NewReader(nil)
	if err != nil {
		encoder.Close()
		return nil, err
	}
	return &RedisCache{
		client:  client,
		ttl:     ttl,
		encoder: encoder,
		decoder: decoder,
	}, nil
}

func (c *RedisCache) Get(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, bool) {
	data, err := c.client.Get(ctx, Key(req)).Bytes()
	if err != nil {
		return nil, false
	}

	resp, err := c.decode(data)
	if err != nil {
		return nil, false
	}
	return resp, true
}

func (c *RedisCache) Set(ctx context.Context, req models.SearchRequest, resp *models.SearchResponse) error {
	data, err := c.encode(resp)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(req), data, c.ttl).Err()
}

// Close releases the codecs. The redis client belongs to the caller.
func (c *RedisCache) Close() error {
	c.decoder.Close()
	return c.encoder.Close()
}

func (c *RedisCache) encode(resp *models.SearchResponse) ([]byte, error) {
	raw, err := json.Marshal(resp)
	if err != nil {
		return nil, err
	}
	return c.encoder.EncodeAll(raw, nil), nil
}

func (c *RedisCache) decode(data []byte) (*models.SearchResponse, error) {
	raw, err := c.decoder.DecodeAll(data, nil)
	if err != nil {
		return nil, err
	}
	var resp models.SearchResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

type NoOpCache struct{}

func NewNoOpCache() *NoOpCache {
	return &NoOpCache{}
}

func (c *NoOpCache) Get(ctx context.Context, req models.SearchRequest) (*models.SearchResponse, bool) {
	return nil, false
}

func (c *NoOpCache) Set(ctx context.Context, req models.SearchRequest, resp *models.SearchResponse) error {
	return nil
}

func (c *NoOpCache) Close() error {
	return nil
}

// Key hashes everything that shapes a search result.
func Key(req models.SearchRequest) string {
	data, _ := json.Marshal(req)
	hash := sha256.Sum256(data)
	return "search:" + hex.EncodeToString(hash[:])
}
