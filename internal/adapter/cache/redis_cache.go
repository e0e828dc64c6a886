package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/olyamironova/artist-exchange/internal/domain"
	"github.com/olyamironova/artist-exchange/internal/port"
	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var _ port.NotificationGateway = (*RedisCache)(nil)

// client is the part of redis.Client the cache uses.
type client interface {
	Publish(ctx context.Context, channel string, message interface{}) *redis.IntCmd
	HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	HGetAll(ctx context.Context, key string) *redis.MapStringStringCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
	Close() error
}

// RedisCache publishes market events on Redis pub/sub channels and keeps the
// latest reference price of each instrument in a hash.
type RedisCache struct {
	client client
	ttl    time.Duration
}

func NewRedisCache(addr string, password string, db int, ttl time.Duration) *RedisCache {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &RedisCache{
		client: rdb,
		ttl:    ttl,
	}
}

func priceKey(instrumentID string) string { return "instrument:" + instrumentID + ":price" }

func (c *RedisCache) publish(ctx context.Context, typ domain.EventType, channel string, data any) error {
	b, err := json.Marshal(domain.Event{Type: typ, Channel: channel, Data: data})
	if err != nil {
		return errors.Wrapf(err, "redis: encode %s", typ)
	}
	return errors.Wrapf(c.client.Publish(ctx, channel, b).Err(), "redis: publish %s", channel)
}

func (c *RedisCache) PublishOrderbookDelta(ctx context.Context, instrumentID string, delta domain.OrderbookDelta) error {
	return c.publish(ctx, domain.EventOrderbookDelta, domain.OrderbookChannel(instrumentID), delta)
}

func (c *RedisCache) PublishTrade(ctx context.Context, userID string, fill domain.Fill) error {
	return c.publish(ctx, domain.EventTrade, domain.UserChannel(userID), fill)
}

func (c *RedisCache) PublishOrderUpdate(ctx context.Context, userID string, update domain.OrderUpdate) error {
	return c.publish(ctx, domain.EventOrderUpdate, domain.UserChannel(userID), update)
}

// PublishPriceTick caches the tick and then announces it.
func (c *RedisCache) PublishPriceTick(ctx context.Context, tick domain.PriceTick) error {
	key := priceKey(tick.InstrumentID)
	if err := c.client.HSet(ctx, key,
		"price", tick.Price.String(),
		"change_24h", tick.Change24h.String(),
		"updated_at", tick.Timestamp.UTC().Format(time.RFC3339Nano),
	).Err(); err != nil {
		return errors.Wrapf(err, "redis: cache price %s", tick.InstrumentID)
	}
	if c.ttl > 0 {
		if err := c.client.Expire(ctx, key, c.ttl).Err(); err != nil {
			return errors.Wrapf(err, "redis: expire price %s", tick.InstrumentID)
		}
	}
	return c.publish(ctx, domain.EventPriceTick, domain.PriceChannel(tick.InstrumentID), tick)
}

// GetPrice reads the cached reference price. ok is false when nothing is
// cached or the entry expired.
func (c *RedisCache) GetPrice(ctx context.Context, instrumentID string) (tick domain.PriceTick, ok bool, err error) {
	vals, err := c.client.HGetAll(ctx, priceKey(instrumentID)).Result()
	if err != nil {
		return domain.PriceTick{}, false, errors.Wrapf(err, "redis: get price %s", instrumentID)
	}
	if len(vals) == 0 {
		return domain.PriceTick{}, false, nil
	}
	tick.InstrumentID = instrumentID
	if tick.Price, err = decimal.NewFromString(vals["price"]); err != nil {
		return domain.PriceTick{}, false, errors.Wrap(err, "redis: decode price")
	}
	if tick.Change24h, err = decimal.NewFromString(vals["change_24h"]); err != nil {
		return domain.PriceTick{}, false, errors.Wrap(err, "redis: decode change_24h")
	}
	if tick.Timestamp, err = time.Parse(time.RFC3339Nano, vals["updated_at"]); err != nil {
		return domain.PriceTick{}, false, errors.Wrap(err, "redis: decode updated_at")
	}
	return tick, true, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}
