package config

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/rushteam/seqrec/catalog"
	"github.com/rushteam/seqrec/core"
	"github.com/rushteam/seqrec/feast"
	"github.com/rushteam/seqrec/filter"
	"github.com/rushteam/seqrec/history"
	"github.com/rushteam/seqrec/model"
	"github.com/rushteam/seqrec/pipeline"
	"github.com/rushteam/seqrec/service"
	"github.com/rushteam/seqrec/store"
	"github.com/rushteam/seqrec/vocab"
)

// Components 是按配置构建出的全部组件。
type Components struct {
	Store    core.KeyValueStore
	Vocab    *vocab.Set
	Catalog  *catalog.Catalog
	Scorer   model.Scorer
	History  history.Provider
	Filters  *filter.Chain
	Pipeline *pipeline.Pipeline

	closers []func() error
}

// Close 释放外部连接（Redis、Feast、模型服务）。
func (c *Components) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Build 按配置构建推理链路。词表或目录加载失败是致命错误。
func Build(ctx context.Context, cfg *Config, logger zerolog.Logger) (*Components, error) {
	c := &Components{}
	fail := func(err error) (*Components, error) {
		_ = c.Close()
		return nil, err
	}

	kv, err := BuildStore(cfg.Redis)
	if err != nil {
		return fail(err)
	}
	c.Store = kv
	c.closers = append(c.closers, kv.Close)

	if c.Vocab, err = BuildVocab(ctx, cfg.Vocab, kv, logger); err != nil {
		return fail(err)
	}
	if c.Catalog, err = BuildCatalog(ctx, cfg.Catalog, kv); err != nil {
		return fail(err)
	}
	logger.Info().
		Int("users", c.Vocab.User.Len()).
		Int("items", c.Vocab.Item.Len()).
		Int("categories", c.Vocab.Category.Len()).
		Int("catalog", c.Catalog.Len()).
		Msg("vocabularies and catalog loaded")

	scorer, closeScorer, err := BuildScorer(cfg.Scorer, logger)
	if err != nil {
		return fail(err)
	}
	c.Scorer = scorer
	c.closers = append(c.closers, closeScorer)

	provider, closeHistory, err := BuildHistory(cfg.History, kv, logger)
	if err != nil {
		return fail(err)
	}
	c.History = provider
	c.closers = append(c.closers, closeHistory)

	if c.Filters, err = BuildFilters(cfg.Filters, logger); err != nil {
		return fail(err)
	}

	c.Pipeline, err = pipeline.New(pipeline.Deps{
		Vocab:   c.Vocab,
		Catalog: c.Catalog,
		Scorer:  c.Scorer,
		Filters: c.Filters,
		History: c.History,
		Logger:  logger,
	}, cfg.Pipeline)
	if err != nil {
		return fail(err)
	}
	return c, nil
}

// BuildStore 创建存储；未配置 Redis 地址时使用进程内存储。
func BuildStore(cfg RedisConfig) (core.KeyValueStore, error) {
	if cfg.Addr == "" {
		return store.NewMemoryStore(), nil
	}
	s, err := store.NewRedisStore(store.RedisOptions{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	})
	if err != nil {
		return nil, fmt.Errorf("connect redis %s: %w", cfg.Addr, err)
	}
	return s, nil
}

// BuildVocab 加载三个词表，并对映射到 0 的 ID 打印警告。
func BuildVocab(ctx context.Context, cfg VocabConfig, kv core.KeyValueStore, logger zerolog.Logger) (*vocab.Set, error) {
	var (
		set *vocab.Set
		err error
	)
	switch cfg.Source {
	case "store":
		set, err = vocab.LoadSetFromStore(ctx, kv, cfg.KeyPrefix)
	default:
		set, err = vocab.LoadSet(vocab.Paths{User: cfg.User, Item: cfg.Item, Category: cfg.Category})
	}
	if err != nil {
		return nil, fmt.Errorf("load vocabularies: %w", err)
	}
	for _, axis := range vocab.Axes {
		if ids := set.Get(axis).ZeroIDs(); len(ids) > 0 {
			logger.Warn().
				Str("axis", axis.String()).
				Strs("ids", ids).
				Msg("vocabulary maps ids to the reserved unknown index")
		}
	}
	return set, nil
}

// BuildCatalog 加载商品目录。
func BuildCatalog(ctx context.Context, cfg CatalogConfig, s core.Store) (*catalog.Catalog, error) {
	var (
		cat *catalog.Catalog
		err error
	)
	switch cfg.Source {
	case "store":
		cat, err = catalog.LoadFromStore(ctx, s, cfg.Key)
	default:
		cat, err = catalog.LoadFile(cfg.Path, cfg.Format)
	}
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return cat, nil
}

// BuildScorer 创建打分器，按需包装熔断器。
func BuildScorer(cfg ScorerConfig, logger zerolog.Logger) (model.Scorer, func() error, error) {
	var (
		scorer model.Scorer
		closer = func() error { return nil }
	)
	switch cfg.Type {
	case "rpc", "":
		scorer = model.NewRPCScorer("model.rpc", cfg.Endpoint, cfg.Timeout)
	case string(service.ServiceTypeTFServing), string(service.ServiceTypeCustom):
		svc, err := service.NewMLService(&service.ServiceConfig{
			Type:          service.ServiceType(cfg.Type),
			Endpoint:      cfg.Endpoint,
			ModelName:     cfg.ModelName,
			ModelVersion:  cfg.ModelVersion,
			SignatureName: cfg.SignatureName,
			Timeout:       cfg.Timeout,
			Auth:          cfg.Auth,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("build scorer: %w", err)
		}
		ss := model.NewServiceScorer(svc, cfg.ModelName)
		ss.ModelVersion = cfg.ModelVersion
		ss.SignatureName = cfg.SignatureName
		scorer = ss
		closer = func() error { return svc.Close(context.Background()) }
	default:
		return nil, nil, fmt.Errorf("unsupported scorer type: %s", cfg.Type)
	}

	if cfg.Breaker.Enabled {
		scorer = model.NewBreakerScorer(scorer, model.BreakerOptions{
			MaxRequests:         cfg.Breaker.MaxRequests,
			Interval:            cfg.Breaker.Interval,
			Timeout:             cfg.Breaker.Timeout,
			ConsecutiveFailures: cfg.Breaker.ConsecutiveFailures,
		}, logger)
	}
	return scorer, closer, nil
}

// BuildHistory 创建用户历史来源；未配置时返回 nil。
func BuildHistory(cfg HistoryConfig, s core.Store, logger zerolog.Logger) (history.Provider, func() error, error) {
	p, closer, err := buildHistorySource(cfg, s, logger)
	if err != nil || p == nil || !cfg.Cache.Enabled {
		return p, closer, err
	}
	cached := history.NewCachedProvider(p, cfg.Cache.Size, cfg.Cache.TTL)
	return cached, func() error { return errors.Join(cached.Close(), closer()) }, nil
}

func buildHistorySource(cfg HistoryConfig, s core.Store, logger zerolog.Logger) (history.Provider, func() error, error) {
	noop := func() error { return nil }
	storeProvider := func() *history.StoreProvider {
		p := history.NewStoreProvider(s, cfg.KeyPrefix)
		p.MaxEvents = cfg.MaxEvents
		return p
	}

	switch cfg.Source {
	case "":
		return nil, noop, nil
	case "store":
		return storeProvider(), noop, nil
	case "feast":
		fc := cfg.Feast
		opts := []feast.ClientOption{feast.WithTimeout(fc.Timeout)}
		if fc.Token != "" {
			opts = append(opts, feast.WithAuth(&feast.AuthConfig{Type: "static", Token: fc.Token}))
		}
		if fc.TLS {
			opts = append(opts, feast.WithTLS())
		}
		client, err := feast.NewGrpcClient(fc.Host, fc.Port, fc.Project, opts...)
		if err != nil {
			return nil, nil, fmt.Errorf("build history: %w", err)
		}
		p := history.NewFeastProvider(client, fc.FeatureView)
		if fc.EntityKey != "" {
			p.EntityKey = fc.EntityKey
		}
		p.WithCategories = fc.WithCategories
		p.MaxEvents = cfg.MaxEvents
		if cfg.FallbackToStore {
			return &history.FallbackProvider{
				Primary:  p,
				Fallback: storeProvider(),
				Logger:   logger,
			}, client.Close, nil
		}
		return p, client.Close, nil
	default:
		return nil, nil, fmt.Errorf("unsupported history source: %s", cfg.Source)
	}
}

// BuildFilters 按配置顺序构建候选规则链；没有配置时返回 nil。
func BuildFilters(cfgs []FilterConfig, logger zerolog.Logger) (*filter.Chain, error) {
	if len(cfgs) == 0 {
		return nil, nil
	}
	chain := &filter.Chain{
		OnError: func(f filter.Filter, candidate catalog.Entry, err error) {
			logger.Warn().Err(err).Str("filter", f.Name()).Str("item_id", candidate.ItemID).Msg("filter evaluation failed")
		},
	}
	for _, fc := range cfgs {
		f, err := BuildFilter(fc)
		if err != nil {
			return nil, err
		}
		chain.Filters = append(chain.Filters, f)
	}
	return chain, nil
}
