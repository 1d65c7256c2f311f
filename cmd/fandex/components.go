package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/hyperjump/fandex/internal/catalog"
	"github.com/hyperjump/fandex/internal/config"
	"github.com/hyperjump/fandex/internal/keyword"
	"github.com/hyperjump/fandex/internal/models"
	"github.com/hyperjump/fandex/internal/profile"
	"github.com/hyperjump/fandex/internal/ranking"
	"github.com/hyperjump/fandex/internal/search"
)

// Components holds the wired catalog and search service.
type Components struct {
	Store     *catalog.Store
	Loader    *catalog.Loader
	Service   *search.Service
	databases []*catalog.SQLiteStore
}

// Close releases the watcher and any open databases.
func (c *Components) Close() {
	if c.Loader != nil {
		c.Loader.Close()
	}
	for _, db := range c.databases {
		_ = db.Close()
	}
}

func initializeComponents(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Components, error) {
	c := &Components{Store: catalog.NewStore()}

	sources, err := c.openSources(cfg.Catalog.Sources)
	if err != nil {
		c.Close()
		return nil, err
	}
	loader, err := catalog.NewLoader(c.Store, sources, logger)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.Loader = loader
	if err := loader.LoadAll(ctx); err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load catalogs: %w", err)
	}

	profiles, err := profile.LoadAll(profile.Options{
		LexiconDir: cfg.Search.LexiconDir,
		MatchMode:  keyword.ParseMatchMode(cfg.Search.SynonymMatch),
		Ranking:    &cfg.Ranking,
		Logger:     logger,
	})
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to load search profiles: %w", err)
	}

	opts := []search.ServiceOption{
		search.WithServiceLogger(logger),
		search.WithServiceLimits(cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		search.WithEngineOptions(
			search.WithEmptyQueryMode(ranking.ParseEmptyQueryMode(cfg.Search.EmptyQuery)),
			search.WithDidYouMean(cfg.Search.DidYouMean),
		),
	}
	if cfg.Remote.Enabled {
		enhancer, err := newEnhancer(&cfg.Remote)
		if err != nil {
			c.Close()
			return nil, err
		}
		opts = append(opts, search.WithRemoteEnhancer(enhancer, search.RemoteConfig{
			Timeout:       cfg.Remote.Timeout,
			LocalWeight:   cfg.Remote.LocalWeight,
			RemoteWeight:  cfg.Remote.RemoteWeight,
			MaxCandidates: cfg.Remote.MaxCandidates,
		}, cfg.Remote.RequestsPerMinute))
		logger.Info("Remote enhancement enabled",
			zap.String("provider", cfg.Remote.Provider),
			zap.Duration("timeout", cfg.Remote.Timeout))
	}
	c.Service = search.NewService(profiles, c.Store, opts...)
	return c, nil
}

// openSources builds one source per configured domain. Domains sharing a
// database file share one connection.
func (c *Components) openSources(cfgs []config.SourceConfig) ([]catalog.Source, error) {
	dbs := make(map[string]*catalog.SQLiteStore)
	sources := make([]catalog.Source, 0, len(cfgs))
	for _, sc := range cfgs {
		d, err := models.ParseDomain(sc.Domain)
		if err != nil {
			return nil, err
		}
		if sc.Database == "" {
			src, err := catalog.NewFileSource(d, sc.Path)
			if err != nil {
				return nil, err
			}
			sources = append(sources, src)
			continue
		}
		db, ok := dbs[sc.Database]
		if !ok {
			db, err = catalog.NewSQLiteStore(sc.Database)
			if err != nil {
				return nil, fmt.Errorf("failed to open catalog database: %w", err)
			}
			dbs[sc.Database] = db
			c.databases = append(c.databases, db)
		}
		sources = append(sources, catalog.NewSQLiteSource(db, d, sc.Database))
	}
	return sources, nil
}

func newEnhancer(cfg *config.RemoteConfig) (search.Enhancer, error) {
	switch cfg.Provider {
	case config.ProviderHTTP:
		return search.NewHTTPEnhancer(cfg.Endpoint, cfg.APIKey, nil), nil
	case config.ProviderOpenAI:
		return search.NewOpenAIEnhancer(cfg.APIKey, cfg.Model, cfg.Endpoint), nil
	}
	return nil, fmt.Errorf("unknown remote provider %q", cfg.Provider)
}
