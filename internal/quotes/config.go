package quotes

import (
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/config"
	"github.com/ndewijer/Portfolio-Rentability-Backend/internal/yahoo"
)

// FromConfig builds the configured source and its cache layers.
// The returned close function releases the Redis client, if any.
func FromConfig(cfg config.QuotesConfig) (Source, func() error, error) {
	var source Source
	switch cfg.Source {
	case "yahoo":
		client := yahoo.NewFinanceClient(yahoo.DefaultBaseURL, cfg.RatePerSecond, cfg.Burst)
		source = NewYahooSource(client, cfg.SymbolSuffix)
	case "file":
		source = NewFileSource(cfg.File)
	default:
		return nil, nil, fmt.Errorf("unknown quote source %q", cfg.Source)
	}

	closeFn := func() error { return nil }
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		source = NewRedisCache(source, rdb, cfg.CacheTTL)
		closeFn = rdb.Close
	}

	if cfg.CacheTTL > 0 {
		source = NewMemoryCache(source, cfg.CacheTTL)
	}
	return source, closeFn, nil
}
