package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/hyperjump/fandex/internal/metrics"
	"github.com/hyperjump/fandex/internal/models"
	"github.com/hyperjump/fandex/internal/profile"
)

// Catalog provides the current item snapshot of each domain.
type Catalog interface {
	Items(d models.Domain) []models.CatalogItem
	Item(d models.Domain, id string) (models.CatalogItem, bool)
}

// Service searches every configured domain over the catalog's current
// snapshots. It is what the HTTP server and the CLI call.
type Service struct {
	catalog      Catalog
	domains      map[models.Domain]*domainSearch
	logger       *zap.Logger
	remote       bool
	defaultLimit int
	maxLimit     int
}

type domainSearch struct {
	engine *Engine
	local  Strategy
	remote Strategy // nil when no enhancer is configured
}

type serviceOptions struct {
	logger       *zap.Logger
	engineOpts   []Option
	enhancer     Enhancer
	remoteConfig RemoteConfig
	limiter      *rate.Limiter
	defaultLimit int
	maxLimit     int
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

// WithServiceLogger sets the logger of the service and its engines.
func WithServiceLogger(l *zap.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEngineOptions passes options to every domain engine.
func WithEngineOptions(opts ...Option) ServiceOption {
	return func(o *serviceOptions) { o.engineOpts = append(o.engineOpts, opts...) }
}

// WithServiceLimits sets the default and maximum result counts.
func WithServiceLimits(defaultLimit, maxLimit int) ServiceOption {
	return func(o *serviceOptions) {
		if defaultLimit > 0 {
			o.defaultLimit = defaultLimit
		}
		if maxLimit > 0 {
			o.maxLimit = maxLimit
		}
	}
}

// WithRemoteEnhancer enables remote-enhanced searches. One limiter is
// shared by every domain.
func WithRemoteEnhancer(e Enhancer, cfg RemoteConfig, requestsPerMinute int) ServiceOption {
	return func(o *serviceOptions) {
		o.enhancer = e
		o.remoteConfig = cfg
		o.limiter = NewLimiter(requestsPerMinute)
	}
}

// NewService builds one engine per profile.
func NewService(profiles map[models.Domain]*profile.Profile, catalog Catalog, opts ...ServiceOption) *Service {
	o := &serviceOptions{
		logger:       zap.NewNop(),
		remoteConfig: DefaultRemoteConfig(),
		defaultLimit: 20,
		maxLimit:     50,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.defaultLimit > o.maxLimit {
		o.defaultLimit = o.maxLimit
	}

	s := &Service{
		catalog:      catalog,
		domains:      make(map[models.Domain]*domainSearch, len(profiles)),
		logger:       o.logger,
		remote:       o.enhancer != nil,
		defaultLimit: o.defaultLimit,
		maxLimit:     o.maxLimit,
	}
	engineOpts := append([]Option{
		WithLogger(o.logger),
		WithLimits(o.defaultLimit, o.maxLimit),
	}, o.engineOpts...)
	for d, p := range profiles {
		engine := NewEngine(p, engineOpts...)
		ds := &domainSearch{engine: engine, local: NewLocalStrategy(engine)}
		if o.enhancer != nil {
			ds.remote = NewRemoteStrategy(engine, o.enhancer, o.limiter, o.remoteConfig, o.logger)
		}
		s.domains[d] = ds
	}
	return s
}

// Domains returns the configured domains in stable order.
func (s *Service) Domains() []models.Domain {
	out := make([]models.Domain, 0, len(s.domains))
	for _, d := range models.Domains() {
		if _, ok := s.domains[d]; ok {
			out = append(out, d)
		}
	}
	return out
}

// Engine returns the engine of a domain.
func (s *Service) Engine(d models.Domain) (*Engine, error) {
	ds, err := s.domain(d)
	if err != nil {
		return nil, err
	}
	return ds.engine, nil
}

// RemoteEnabled reports whether remote-enhanced searches are available.
func (s *Service) RemoteEnabled() bool {
	return s.remote
}

func (s *Service) domain(d models.Domain) (*domainSearch, error) {
	ds, ok := s.domains[d]
	if !ok {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownDomain, d)
	}
	return ds, nil
}

// Search runs q against one domain. Errors are reserved for invalid
// queries, unknown domains and a cancelled context.
func (s *Service) Search(ctx context.Context, q *models.SearchQuery) (*models.SearchResponse, error) {
	if err := ProcessQuery(q, s.defaultLimit, s.maxLimit); err != nil {
		return nil, err
	}
	if q.Domain == "" {
		return nil, fmt.Errorf("%w: domain is required", models.ErrUnknownDomain)
	}
	return s.searchDomain(ctx, q)
}

func (s *Service) searchDomain(ctx context.Context, q *models.SearchQuery) (*models.SearchResponse, error) {
	ds, err := s.domain(q.Domain)
	if err != nil {
		return nil, err
	}

	strategy := ds.local
	if q.Remote {
		if ds.remote != nil {
			strategy = ds.remote
		} else {
			s.logger.Debug("Remote search requested but not configured", zap.String("domain", string(q.Domain)))
		}
	}

	start := time.Now()
	resp, err := strategy.Search(ctx, &Request{
		Query:    q.Query,
		Items:    q.Filters.Apply(s.catalog.Items(q.Domain)),
		Limit:    q.Limit,
		MinScore: q.MinScore,
	})
	if err != nil {
		return nil, err
	}
	metrics.ObserveSearch(string(q.Domain), resp.Strategy, time.Since(start), len(resp.Results))
	if len(resp.Results) == 0 && q.Query != "" {
		metrics.IncEmptySearch(string(q.Domain))
	}
	return resp, nil
}

// SearchAll runs q against every configured domain concurrently. q.Domain
// is ignored.
func (s *Service) SearchAll(ctx context.Context, q *models.SearchQuery) (*models.MultiSearchResponse, error) {
	start := time.Now()
	q.Domain = ""
	if err := ProcessQuery(q, s.defaultLimit, s.maxLimit); err != nil {
		return nil, err
	}

	var mu sync.Mutex
	out := &models.MultiSearchResponse{
		Query:   q.Query,
		Domains: make(map[models.Domain]*models.SearchResponse, len(s.domains)),
	}
	g, gctx := errgroup.WithContext(ctx)
	for _, d := range s.Domains() {
		dq := *q
		dq.Domain = d
		g.Go(func() error {
			resp, err := s.searchDomain(gctx, &dq)
			if err != nil {
				return fmt.Errorf("%s: %w", d, err)
			}
			mu.Lock()
			out.Domains[d] = resp
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	out.QueryTime = time.Since(start).Milliseconds()
	return out, nil
}

// Suggest returns autocomplete strings for a partial query in one domain.
func (s *Service) Suggest(d models.Domain, partial string, limit int) ([]string, error) {
	ds, err := s.domain(d)
	if err != nil {
		return nil, err
	}
	return ds.engine.Suggest(partial, s.catalog.Items(d), min(limit, s.maxLimit)), nil
}

// Item returns one catalog item.
func (s *Service) Item(d models.Domain, id string) (models.CatalogItem, bool) {
	if _, err := s.domain(d); err != nil {
		return nil, false
	}
	return s.catalog.Item(d, id)
}

// Similar returns the items most similar to the item with the given id.
func (s *Service) Similar(d models.Domain, id string, limit int) ([]*Recommendation, error) {
	ds, err := s.domain(d)
	if err != nil {
		return nil, err
	}
	item, ok := s.catalog.Item(d, id)
	if !ok {
		return nil, fmt.Errorf("%w: %s/%s", ErrItemNotFound, d, id)
	}
	return ds.engine.Recommend(item, s.catalog.Items(d), min(limit, s.maxLimit)), nil
}
