package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"bookshelf/src/internal/bookmeta"
	"bookshelf/src/internal/cache"
	"bookshelf/src/internal/config"
	"bookshelf/src/internal/httpx"
	"bookshelf/src/internal/lookup"
	"bookshelf/src/internal/store"
)

// app carries configuration and lazily built services for one invocation.
type app struct {
	dataFile string
	verbose  bool

	// getenv and doer are set by tests; nil means the process environment
	// (plus envFile) and a plain http.Client.
	getenv  func(string) string
	envFile string
	doer    httpx.Doer

	cfg    config.Config
	logger *slog.Logger

	once    sync.Once
	client  *lookup.Client
	initErr error
	closers []func() error
}

func newApp() *app {
	return &app{envFile: ".env"}
}

// init loads configuration and the logger. Flags override the environment.
func (a *app) init(stderr io.Writer) error {
	var (
		cfg config.Config
		err error
	)
	if a.getenv != nil {
		cfg, err = config.FromEnv(a.getenv)
	} else {
		cfg, err = config.Load(a.envFile)
	}
	if err != nil {
		return err
	}
	if a.dataFile != "" {
		cfg.DataFile = a.dataFile
	}
	if a.verbose {
		cfg.LogLevel = slog.LevelDebug
	}
	a.cfg = cfg
	a.logger = slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	return nil
}

func (a *app) store() (*store.Store, error) { return store.New(a.cfg.DataFile), nil }

// lookupClient builds the catalog client on first use so commands that only
// touch the reading log never dial Redis.
func (a *app) lookupClient(ctx context.Context) (*lookup.Client, error) {
	a.once.Do(func() {
		c, closeFn, err := newCache(ctx, a.cfg, a.logger)
		if err != nil {
			a.initErr = err
			return
		}
		if closeFn != nil {
			a.closers = append(a.closers, closeFn)
		}
		doer := a.doer
		if doer == nil {
			doer = &http.Client{}
		}
		opts := []lookup.Option{
			lookup.WithDoer(httpx.RateLimited(doer, a.cfg.RPS)),
			lookup.WithLogger(a.logger),
			lookup.WithTimeout(a.cfg.Timeout),
			lookup.WithPrimary(a.cfg.Primary),
			lookup.WithGoogleAPIKey(a.cfg.GoogleAPIKey),
		}
		if c != nil {
			opts = append(opts, lookup.WithCache(c))
		}
		a.client = lookup.New(opts...)
	})
	return a.client, a.initErr
}

func (a *app) search(ctx context.Context, q bookmeta.Query, maxResults int, preferred bookmeta.Source) ([]bookmeta.BookRecord, error) {
	c, err := a.lookupClient(ctx)
	if err != nil {
		return nil, err
	}
	return c.Search(ctx, q, maxResults, preferred)
}

func (a *app) close() {
	for _, fn := range a.closers {
		_ = fn()
	}
}

// newCache returns the configured lookup cache, or nil for "none".
func newCache(ctx context.Context, cfg config.Config, logger *slog.Logger) (lookup.Cache, func() error, error) {
	switch cfg.Cache {
	case config.CacheNone:
		return nil, nil, nil
	case config.CacheMemory:
		return cache.NewMemory(), nil, nil
	case config.CacheLRU:
		c, err := cache.NewLRU(cfg.CacheSize)
		return c, nil, err
	case config.CacheRedis:
		c, rdb, err := cache.DialRedis(ctx, cfg.RedisAddr, cfg.RedisTTL, logger)
		if err != nil {
			return nil, nil, fmt.Errorf("redis cache at %s: %w", cfg.RedisAddr, err)
		}
		return c, rdb.Close, nil
	default:
		return nil, nil, fmt.Errorf("unknown cache backend %q", cfg.Cache)
	}
}
