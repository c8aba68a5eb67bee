package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRates struct {
	currencies map[string]string
	err        error
	calls      int
}

func (s *stubRates) Currencies(ctx context.Context) (map[string]string, error) {
	s.calls++
	return s.currencies, s.err
}

func (s *stubRates) RateToEUR(ctx context.Context, currency string) (*ExchangeRate, error) {
	s.calls++
	return &ExchangeRate{Currency: currency, Rate: decimal.RequireFromString("0.5"), Date: "2026-01-02"}, nil
}

func (s *stubRates) ConvertToEUR(ctx context.Context, amount decimal.Decimal, currency string) (*Conversion, error) {
	s.calls++
	return &Conversion{ValueEuro: amount.Div(decimal.NewFromInt(2)), ExchangeRate: decimal.RequireFromString("0.5")}, nil
}

func setupMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestCachedExchangeRateClient_CachesCurrencyList(t *testing.T) {
	mr, rdb := setupMiniredis(t)
	upstream := &stubRates{currencies: map[string]string{"USD": "United States Dollar"}}
	client := NewCachedExchangeRateClient(upstream, rdb, "test:", time.Hour)

	first, err := client.Currencies(context.Background())
	require.NoError(t, err)
	second, err := client.Currencies(context.Background())
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, upstream.calls)
	assert.True(t, mr.Exists("test:currencies:list"))
	assert.Equal(t, time.Hour, mr.TTL("test:currencies:list"))

	mr.FastForward(time.Hour + time.Second)
	_, err = client.Currencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, upstream.calls)
}

func TestCachedExchangeRateClient_UpstreamErrorNotCached(t *testing.T) {
	mr, rdb := setupMiniredis(t)
	upstream := &stubRates{err: &CurrencyAPIError{Cause: CauseUnavailable, Message: "Currency API unavailable"}}
	client := NewCachedExchangeRateClient(upstream, rdb, "", 0)

	_, err := client.Currencies(context.Background())
	var apiErr *CurrencyAPIError
	require.True(t, errors.As(err, &apiErr))
	assert.False(t, mr.Exists("currencies:list"))
}

func TestCachedExchangeRateClient_RedisDownFallsThrough(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer rdb.Close()
	upstream := &stubRates{currencies: map[string]string{"GBP": "British Pound"}}
	client := NewCachedExchangeRateClient(upstream, rdb, "", time.Minute)
	mr.Close()

	list, err := client.Currencies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "British Pound", list["GBP"])
}

func TestCachedExchangeRateClient_RatesPassThrough(t *testing.T) {
	_, rdb := setupMiniredis(t)
	upstream := &stubRates{}
	client := NewCachedExchangeRateClient(upstream, rdb, "", time.Minute)

	for i := 0; i < 2; i++ {
		conv, err := client.ConvertToEUR(context.Background(), decimal.NewFromInt(10), "USD")
		require.NoError(t, err)
		assert.True(t, conv.ValueEuro.Equal(decimal.NewFromInt(5)))
	}
	assert.Equal(t, 2, upstream.calls)
}

func TestNewCachedExchangeRateClient_NilRedis(t *testing.T) {
	upstream := &stubRates{}
	assert.Same(t, ExchangeRateClient(upstream), NewCachedExchangeRateClient(upstream, nil, "", 0))
}
