// Package app wires the search stack from configuration. Both binaries build
// on it.
package app

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/dharmasatrya/flightcrawl/internal/cache"
	"github.com/dharmasatrya/flightcrawl/internal/config"
	"github.com/dharmasatrya/flightcrawl/internal/crawler"
	"github.com/dharmasatrya/flightcrawl/internal/providers"
	"github.com/dharmasatrya/flightcrawl/internal/proxy"
	"github.com/dharmasatrya/flightcrawl/internal/ratelimit"
	"github.com/dharmasatrya/flightcrawl/internal/retry"
	"github.com/dharmasatrya/flightcrawl/internal/search"
	"github.com/dharmasatrya/flightcrawl/internal/session"
)

type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Search   *search.Service
	Sessions session.Store
	Cache    cache.Cache
	Registry *providers.Registry
	Proxies  *proxy.Rotator

	closers []func() error
}

type Option func(*options)

type options struct {
	fetcher  crawler.Fetcher
	sessions session.Store
}

// WithFetcher replaces the colly fetcher.
func WithFetcher(f crawler.Fetcher) Option {
	return func(o *options) { o.fetcher = f }
}

// WithSessions replaces the configured session store.
func WithSessions(s session.Store) Option {
	return func(o *options) { o.sessions = s }
}

func New(cfg *config.Config, logger *slog.Logger, opts ...Option) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	a := &App{Config: cfg, Logger: logger}

	if cfg.UseProxy {
		pool, err := proxy.LoadFile(cfg.ProxyFile)
		if err != nil {
			return nil, err
		}
		a.Proxies, err = proxy.NewRotator(pool)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", cfg.ProxyFile, err)
		}
		logger.Info("proxy pool loaded", "file", cfg.ProxyFile, "proxies", a.Proxies.Len())
	}

	var client *redis.Client
	if cfg.NeedsRedis() && (cfg.CacheEnabled || o.sessions == nil) {
		var err error
		client, err = cache.NewRedisClient(cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
	}

	switch {
	case o.sessions != nil:
		a.Sessions = o.sessions
	case cfg.SessionBackend == "redis":
		a.Sessions = session.NewRedisStore(client)
	default:
		a.Sessions = session.NewMemoryStore()
	}

	if cfg.CacheEnabled {
		rc, err := cache.NewRedisCache(client, cfg.CacheTTL)
		if err != nil {
			a.Close()
			return nil, err
		}
		a.Cache = rc
		a.closers = append([]func() error{rc.Close}, a.closers...)
		logger.Info("response cache enabled", "addr", cfg.RedisAddr, "ttl", cfg.CacheTTL)
	} else {
		a.Cache = cache.NewNoOpCache()
	}

	limiter := ratelimit.NewProviderLimiter(ratelimit.Config{
		RequestsPerSecond: cfg.ProviderRPS,
		BurstSize:         cfg.ProviderBurst,
	})

	fetcher := o.fetcher
	if fetcher == nil {
		fetcher = crawler.NewCollyFetcher(logger)
	}

	crawlCfg := crawler.DefaultConfig()
	crawlCfg.Timeout = cfg.CrawlTimeout
	if cfg.UserAgent != "" {
		crawlCfg.UserAgent = cfg.UserAgent
	}
	crawlCfg.Retry = retry.Policy{
		MaxAttempts: cfg.RetryMaxAttempts,
		Multiplier:  cfg.RetryMultiplier,
		MinWait:     cfg.RetryMinWait,
		MaxWait:     cfg.RetryMaxWait,
	}
	crawl := crawler.NewService(fetcher, a.Proxies, limiter, crawlCfg, logger)

	a.Registry = providers.NewDefaultRegistry(logger)
	a.Search = search.NewService(crawl, a.Registry, a.Sessions, search.Config{
		MaxConcurrency: cfg.MaxConcurrency,
		ResultLimit:    cfg.ResultLimit,
		SearchTimeout:  cfg.SearchTimeout,
		UseProxy:       cfg.UseProxy,
	}, logger)

	return a, nil
}

// Close releases everything New opened, in reverse order of need.
func (a *App) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
