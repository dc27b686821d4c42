package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Domenick1991/flightroutes/config"
	"github.com/Domenick1991/flightroutes/internal/domain"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix = "cache:flightdata:"
	// outside keyPrefix so invalidation never releases it
	loadLockKey = "lock:flightdata:load"
)

// RedisCache holds segment and flight lookups between loads.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(cfg config.RedisConfig, ttl time.Duration) *RedisCache {
	return &RedisCache{
		client: redis.NewClient(&redis.Options{Addr: cfg.Addr, Password: cfg.Password, DB: cfg.DB}),
		ttl:    ttl,
	}
}

// GetSegment returns nil, nil on a miss.
func (c *RedisCache) GetSegment(ctx context.Context, originCode, destCode string) (*domain.FlightSegment, error) {
	var segment domain.FlightSegment
	ok, err := c.get(ctx, segmentKey(originCode, destCode), &segment)
	if err != nil || !ok {
		return nil, err
	}
	return &segment, nil
}

func (c *RedisCache) SetSegment(ctx context.Context, segment domain.FlightSegment) error {
	return c.set(ctx, segmentKey(segment.OriginCode, segment.DestCode), segment)
}

// GetFlights returns nil, nil on a miss.
func (c *RedisCache) GetFlights(ctx context.Context, segmentID string, departure *time.Time) ([]domain.FlightInstance, error) {
	var flights []domain.FlightInstance
	ok, err := c.get(ctx, FlightsKey(segmentID, departure), &flights)
	if err != nil || !ok {
		return nil, err
	}
	if flights == nil {
		flights = []domain.FlightInstance{}
	}
	return flights, nil
}

func (c *RedisCache) SetFlights(ctx context.Context, segmentID string, departure *time.Time, flights []domain.FlightInstance) error {
	return c.set(ctx, FlightsKey(segmentID, departure), flights)
}

// InvalidateFlightData drops every cached lookup.
func (c *RedisCache) InvalidateFlightData(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	keys := make([]string, 0, 100)
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
		if len(keys) == cap(keys) {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return err
			}
			keys = keys[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) > 0 {
		return c.client.Del(ctx, keys...).Err()
	}
	return nil
}

// AcquireLoadLock takes the cluster-wide load lock. It reports false when another
// process holds it.
func (c *RedisCache) AcquireLoadLock(ctx context.Context, ttl time.Duration) (bool, error) {
	return c.client.SetNX(ctx, loadLockKey, "locked", ttl).Result()
}

func (c *RedisCache) ReleaseLoadLock(ctx context.Context) error {
	return c.client.Del(ctx, loadLockKey).Err()
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

func (c *RedisCache) get(ctx context.Context, key string, dst any) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, err
	}
	return true, nil
}

func (c *RedisCache) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, key, payload, c.ttl).Err()
}

func segmentKey(originCode, destCode string) string {
	return fmt.Sprintf("%ssegment:%s:%s", keyPrefix, originCode, destCode)
}

// FlightsKey names the cached flight list of a segment, optionally for one departure.
func FlightsKey(segmentID string, departure *time.Time) string {
	if departure == nil {
		return fmt.Sprintf("%sflights:%s:all", keyPrefix, segmentID)
	}
	return fmt.Sprintf("%sflights:%s:%d", keyPrefix, segmentID, departure.Unix())
}
