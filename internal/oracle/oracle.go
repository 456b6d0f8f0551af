// Package oracle provides USD prices for the native token and funding assets.
// Prices are injected (static/config-seeded) and optionally fronted by a Redis
// read-through cache; feed sourcing is out of scope.
package oracle

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

var ErrPriceUnavailable = errors.New("No price available for asset")

// PriceProvider resolves the USD price of one asset.
type PriceProvider interface {
	Price(ctx context.Context, asset string) (decimal.Decimal, error)
}

// StaticProvider serves a fixed price table, seeded from config.
type StaticProvider struct {
	Prices map[string]decimal.Decimal
}

func (p *StaticProvider) Price(ctx context.Context, asset string) (decimal.Decimal, error) {
	price, ok := p.Prices[asset]
	if !ok {
		return decimal.Zero, ErrPriceUnavailable
	}
	return price, nil
}

// CachedProvider fronts another provider with a Redis read-through cache.
type CachedProvider struct {
	Next PriceProvider
	Rdb  *redis.Client
	TTL  time.Duration
}

const cacheKeyPrefix = "oracle:price:"

func (p *CachedProvider) Price(ctx context.Context, asset string) (decimal.Decimal, error) {
	if p.Rdb != nil {
		cached, err := p.Rdb.Get(ctx, cacheKeyPrefix+asset).Result()
		if err == nil {
			if price, perr := decimal.NewFromString(cached); perr == nil {
				return price, nil
			}
		}
	}
	price, err := p.Next.Price(ctx, asset)
	if err != nil {
		return decimal.Zero, err
	}
	if p.Rdb != nil {
		ttl := p.TTL
		if ttl == 0 {
			ttl = time.Minute
		}
		_ = p.Rdb.Set(ctx, cacheKeyPrefix+asset, price.String(), ttl).Err()
	}
	return price, nil
}
