// Package search runs catalog searches: the local ranking engine, the
// remote-enhanced strategy that falls back to it, suggestion helpers and the
// multi-domain service the adapters call.
package search

import (
	"time"

	"go.uber.org/zap"

	"github.com/hyperjump/fandex/internal/models"
	"github.com/hyperjump/fandex/internal/profile"
	"github.com/hyperjump/fandex/internal/ranking"
)

// Engine is the synchronous local search of one domain. It holds only
// read-only state and is safe for concurrent use.
type Engine struct {
	profile    *profile.Profile
	ranker     *ranking.Ranker
	logger     *zap.Logger
	didYouMean int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithEmptyQueryMode sets what a blank query returns.
func WithEmptyQueryMode(mode ranking.EmptyQueryMode) Option {
	return func(e *Engine) { e.ranker.WithEmptyQueryMode(mode) }
}

// WithLimits sets the default and maximum result counts.
func WithLimits(defaultLimit, maxLimit int) Option {
	return func(e *Engine) { e.ranker.WithLimits(defaultLimit, maxLimit) }
}

// WithDidYouMean sets how many "Did you mean?" titles an empty result
// carries. Zero disables them.
func WithDidYouMean(n int) Option {
	return func(e *Engine) { e.didYouMean = max(n, 0) }
}

// NewEngine creates the engine of the profile's domain.
func NewEngine(p *profile.Profile, opts ...Option) *Engine {
	e := &Engine{
		profile:    p,
		ranker:     ranking.NewRanker(p.Ranking),
		logger:     zap.NewNop(),
		didYouMean: 3,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Request is one search over a snapshot of a domain's catalog.
type Request struct {
	Query    string
	Items    []models.CatalogItem
	Limit    int
	MinScore float64 // the profile threshold applies when zero
}

// Domain returns the engine's domain.
func (e *Engine) Domain() models.Domain {
	return e.profile.Domain
}

// Profile returns the engine's profile.
func (e *Engine) Profile() *profile.Profile {
	return e.profile
}

// Ranker returns the engine's ranker.
func (e *Engine) Ranker() *ranking.Ranker {
	return e.ranker
}

// Analyze normalizes, corrects and expands a query.
func (e *Engine) Analyze(query string) *ranking.AnalyzedQuery {
	return e.profile.Analyzer.Analyze(query)
}

// Search ranks req.Items against req.Query. It never fails: nil items are
// skipped and a blank query follows the empty-query mode.
func (e *Engine) Search(req *Request) *models.SearchResponse {
	start := time.Now()
	q := e.Analyze(req.Query)
	results, total := e.ranker.RankWithTotal(q, req.Items, e.rankOptions(req))

	resp := e.newResponse(req, q)
	resp.Results = results
	resp.Total = total
	if len(results) == 0 && !q.IsEmpty() && e.didYouMean > 0 {
		resp.Suggestions = DidYouMean(q.Corrected, req.Items, e.didYouMean)
	}
	resp.QueryTime = time.Since(start).Milliseconds()

	e.logger.Debug("Local search",
		zap.String("domain", string(e.Domain())),
		zap.String("query", req.Query),
		zap.String("corrected", q.Corrected),
		zap.Int("variants", len(q.Variants)),
		zap.Int("results", len(results)),
		zap.Int("total", total))
	return resp
}

func (e *Engine) rankOptions(req *Request) ranking.RankOptions {
	return ranking.RankOptions{Limit: req.Limit, MinScore: req.MinScore}
}

// newResponse fills the query echo fields shared by both strategies.
func (e *Engine) newResponse(req *Request, q *ranking.AnalyzedQuery) *models.SearchResponse {
	resp := &models.SearchResponse{
		Domain:   e.Domain(),
		Query:    req.Query,
		Results:  []*models.SearchResult{},
		Strategy: StrategyLocal,
	}
	if len(q.Corrections) > 0 {
		resp.CorrectedQuery = q.Corrected
	}
	if exp := q.Expansions(); len(exp) > 1 {
		resp.Expansions = exp[1:]
	}
	return resp
}
