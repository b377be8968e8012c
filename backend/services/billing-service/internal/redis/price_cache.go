package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

// PriceCache keeps hour prices in redis behind a circuit breaker so an
// unhealthy redis degrades to direct database reads.
type PriceCache struct {
	client  redis.Cmdable
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker
}

// BreakerSettings tunes the circuit breaker.
type BreakerSettings struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// NewPriceCache returns a redis-backed price cache.
func NewPriceCache(client redis.Cmdable, ttl time.Duration, bs BreakerSettings, logger *zap.Logger) *PriceCache {
	if bs.MaxRequests == 0 {
		bs.MaxRequests = 5
	}
	if bs.Interval <= 0 {
		bs.Interval = 30 * time.Second
	}
	if bs.Timeout <= 0 {
		bs.Timeout = 10 * time.Second
	}
	if bs.ConsecutiveFailures == 0 {
		bs.ConsecutiveFailures = 3
	}
	limit := bs.ConsecutiveFailures

	return &PriceCache{
		client: client,
		ttl:    ttl,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "redis-price-cache",
			MaxRequests: bs.MaxRequests,
			Interval:    bs.Interval,
			Timeout:     bs.Timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= limit
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.String("breaker", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()),
				)
			},
		}),
	}
}

func (c *PriceCache) key(hourStart time.Time) string {
	return fmt.Sprintf("prices:hour:%d", hourStart.UTC().Unix())
}

// Get returns the cached price of an hour. A cache miss is not an error.
func (c *PriceCache) Get(ctx context.Context, hourStart time.Time) (float64, bool, error) {
	v, err := c.breaker.Execute(func() (interface{}, error) {
		raw, err := c.client.Get(ctx, c.key(hourStart)).Result()
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		return raw, nil
	})
	if err != nil || v == nil {
		return 0, false, err
	}
	price, err := strconv.ParseFloat(v.(string), 64)
	if err != nil {
		return 0, false, fmt.Errorf("redis: bad cached price: %w", err)
	}
	return price, true, nil
}

// Set caches the price of an hour.
func (c *PriceCache) Set(ctx context.Context, hourStart time.Time, price float64) error {
	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.client.Set(ctx, c.key(hourStart), strconv.FormatFloat(price, 'g', -1, 64), c.ttl).Err()
	})
	return err
}

// State reports the breaker state, mostly for health output.
func (c *PriceCache) State() string {
	return c.breaker.State().String()
}
