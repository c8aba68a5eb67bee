package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/amirphl/cargo-certificates/utils"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

const currencyListCacheKey = "currencies:list"

// CachedExchangeRateClient keeps the supported-currency list in Redis. Rates are never cached.
type CachedExchangeRateClient struct {
	next   ExchangeRateClient
	client *redis.Client
	prefix string
	ttl    time.Duration
}

// NewCachedExchangeRateClient wraps next; a nil redis client disables caching
func NewCachedExchangeRateClient(next ExchangeRateClient, client *redis.Client, prefix string, ttl time.Duration) ExchangeRateClient {
	if client == nil {
		return next
	}
	if ttl <= 0 {
		ttl = utils.CurrencyListTTL
	}
	return &CachedExchangeRateClient{next: next, client: client, prefix: prefix, ttl: ttl}
}

func (c *CachedExchangeRateClient) key() string {
	return c.prefix + currencyListCacheKey
}

// Currencies serves the list from Redis, refreshing it from upstream on a miss
func (c *CachedExchangeRateClient) Currencies(ctx context.Context) (map[string]string, error) {
	raw, err := c.client.Get(ctx, c.key()).Bytes()
	if err == nil {
		var cached map[string]string
		if jerr := json.Unmarshal(raw, &cached); jerr == nil && len(cached) > 0 {
			return cached, nil
		}
	} else if err != redis.Nil {
		log.Printf("currency cache read failed: %v", err)
	}

	list, err := c.next.Currencies(ctx)
	if err != nil {
		return nil, err
	}

	if payload, jerr := json.Marshal(list); jerr == nil {
		if serr := c.client.Set(ctx, c.key(), payload, c.ttl).Err(); serr != nil {
			log.Printf("currency cache write failed: %v", serr)
		}
	}
	return list, nil
}

func (c *CachedExchangeRateClient) RateToEUR(ctx context.Context, currency string) (*ExchangeRate, error) {
	return c.next.RateToEUR(ctx, currency)
}

func (c *CachedExchangeRateClient) ConvertToEUR(ctx context.Context, amount decimal.Decimal, currency string) (*Conversion, error) {
	return c.next.ConvertToEUR(ctx, amount, currency)
}
