package search

import (
	"context"
	"errors"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/hyperjump/fandex/internal/metrics"
	"github.com/hyperjump/fandex/internal/models"
)

// RemoteConfig tunes the remote strategy.
type RemoteConfig struct {
	Timeout      time.Duration
	LocalWeight  float64
	RemoteWeight float64
	// MaxCandidates caps how many items, best local score first, are sent.
	MaxCandidates int
}

// DefaultRemoteConfig returns the default remote tuning.
func DefaultRemoteConfig() RemoteConfig {
	return RemoteConfig{
		Timeout:       3 * time.Second,
		LocalWeight:   0.5,
		RemoteWeight:  0.5,
		MaxCandidates: 200,
	}
}

func (c *RemoteConfig) applyDefaults() {
	def := DefaultRemoteConfig()
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	if c.LocalWeight <= 0 && c.RemoteWeight <= 0 {
		c.LocalWeight, c.RemoteWeight = def.LocalWeight, def.RemoteWeight
	}
	if c.MaxCandidates <= 0 {
		c.MaxCandidates = def.MaxCandidates
	}
}

// NewLimiter returns a limiter allowing requestsPerMinute remote calls with
// a burst of the same size. Non-positive values mean unlimited.
func NewLimiter(requestsPerMinute int) *rate.Limiter {
	if requestsPerMinute <= 0 {
		return rate.NewLimiter(rate.Inf, 0)
	}
	return rate.NewLimiter(rate.Limit(float64(requestsPerMinute)/60), requestsPerMinute)
}

// Fallback reasons, used as the metrics label and log field.
const (
	reasonDisabled    = "disabled"
	reasonRateLimited = "rate_limited"
	reasonTimeout     = "timeout"
	reasonEmpty       = "empty"
	reasonError       = "error"
)

// RemoteStrategy blends an enhancer's relevance into the local ranking. Any
// remote failure is logged and the local response is served instead.
type RemoteStrategy struct {
	engine   *Engine
	enhancer Enhancer
	limiter  *rate.Limiter
	config   RemoteConfig
	logger   *zap.Logger
}

// NewRemoteStrategy creates the strategy. limiter may be shared by the
// strategies of every domain; nil means unlimited.
func NewRemoteStrategy(engine *Engine, enhancer Enhancer, limiter *rate.Limiter, cfg RemoteConfig, logger *zap.Logger) *RemoteStrategy {
	cfg.applyDefaults()
	if limiter == nil {
		limiter = NewLimiter(0)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RemoteStrategy{engine: engine, enhancer: enhancer, limiter: limiter, config: cfg, logger: logger}
}

func (s *RemoteStrategy) Name() string { return StrategyRemote }

// Search never returns an error: a failed remote call yields the local
// response with Fallback set.
func (s *RemoteStrategy) Search(ctx context.Context, req *Request) (*models.SearchResponse, error) {
	start := time.Now()
	q := s.engine.Analyze(req.Query)
	if q.IsEmpty() {
		// nothing for the remote side to judge
		return s.engine.Search(req), nil
	}
	if s.enhancer == nil {
		return s.fallback(req, reasonDisabled, ErrRemoteDisabled), nil
	}
	if !s.limiter.Allow() {
		return s.fallback(req, reasonRateLimited, ErrRateLimited), nil
	}

	ranker := s.engine.Ranker()
	scored := ranker.ScoreAll(q, req.Items)
	candidates := topCandidates(scored, s.config.MaxCandidates)
	items := make([]models.CatalogItem, len(candidates))
	for i, r := range candidates {
		items[i] = r.Item
	}

	callCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()
	callStart := time.Now()
	remote, err := s.enhancer.Enhance(callCtx, req.Query, Summarize(items))
	elapsed := time.Since(callStart)
	if err != nil {
		reason := classifyRemoteError(callCtx, err)
		metrics.ObserveRemoteCall(s.enhancer.Name(), reason, elapsed)
		return s.fallback(req, reason, err), nil
	}

	byID := make(map[string]*models.SearchResult, len(scored))
	for _, r := range scored {
		if _, dup := byID[r.Item.ItemID()]; !dup {
			byID[r.Item.ItemID()] = r
		}
	}
	remoteScores := NormalizeRemoteScores(remote.Results, func(id string) bool {
		_, ok := byID[id]
		return ok
	})
	if len(remoteScores) == 0 {
		metrics.ObserveRemoteCall(s.enhancer.Name(), reasonEmpty, elapsed)
		return s.fallback(req, reasonEmpty, ErrEmptyRemoteResponse), nil
	}
	metrics.ObserveRemoteCall(s.enhancer.Name(), "ok", elapsed)

	results := s.blend(scored, remote.Results, remoteScores)
	minScore := req.MinScore
	if minScore <= 0 {
		minScore = ranker.GetConfig().MinScore
	}
	final, total := ranker.FinalizeWithTotal(results, minScore, ranker.ClampLimit(req.Limit))

	resp := s.engine.newResponse(req, q)
	resp.Results = final
	resp.Total = total
	resp.Strategy = StrategyRemote
	resp.QueryTime = time.Since(start).Milliseconds()

	s.logger.Debug("Remote search",
		zap.String("domain", string(s.engine.Domain())),
		zap.String("query", req.Query),
		zap.String("enhancer", s.enhancer.Name()),
		zap.Int("candidates", len(candidates)),
		zap.Int("remote_results", len(remoteScores)),
		zap.Duration("remote_time", elapsed))
	return resp, nil
}

// blend rewrites the scored results, still in catalog order, with the fused
// score. Items only the remote side matched are typed semantic.
func (s *RemoteStrategy) blend(scored []*models.SearchResult, remote []RemoteResult, remoteScores map[string]float64) []*models.SearchResult {
	order := make([]string, 0, len(scored))
	localScores := make(map[string]float64, len(scored))
	for _, r := range scored {
		id := r.Item.ItemID()
		if _, dup := localScores[id]; dup {
			continue
		}
		order = append(order, id)
		if r.Score > 0 {
			localScores[id] = r.Score
		}
	}
	fused := make(map[string]*FusedResult)
	for _, f := range Fuse(order, localScores, remoteScores, s.config.LocalWeight, s.config.RemoteWeight) {
		fused[f.ItemID] = f
	}
	details := make(map[string]RemoteResult, len(remote))
	for _, r := range remote {
		if _, seen := details[r.ItemID]; !seen {
			details[r.ItemID] = r
		}
	}

	out := make([]*models.SearchResult, 0, len(fused))
	seen := make(map[string]bool, len(fused))
	for _, r := range scored {
		id := r.Item.ItemID()
		f, ok := fused[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		res := *r
		res.Score = f.Score
		if f.LocalScore == 0 {
			res.MatchType = models.MatchSemantic
		}
		if d, ok := details[id]; ok {
			res.Reasoning = d.Reasoning
			res.MatchedFields = mergeFields(res.MatchedFields, d.MatchedFields)
		}
		out = append(out, &res)
	}
	return out
}

func (s *RemoteStrategy) fallback(req *Request, reason string, err error) *models.SearchResponse {
	s.logger.Warn("Remote enhancement failed, serving local results",
		zap.String("domain", string(s.engine.Domain())),
		zap.String("reason", reason),
		zap.Error(err))
	metrics.IncRemoteFallback(reason)

	resp := s.engine.Search(req)
	resp.Fallback = true
	return resp
}

func classifyRemoteError(ctx context.Context, err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(ctx.Err(), context.DeadlineExceeded):
		return reasonTimeout
	case errors.Is(err, ErrEmptyRemoteResponse):
		return reasonEmpty
	default:
		return reasonError
	}
}

// topCandidates returns up to n items by local score, ties in catalog order.
func topCandidates(scored []*models.SearchResult, n int) []*models.SearchResult {
	sorted := make([]*models.SearchResult, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Score > sorted[j].Score })
	if n > 0 && len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

func mergeFields(local, remote []string) []string {
	out := append([]string(nil), local...)
	for _, f := range remote {
		if f != "" && !slices.Contains(out, f) {
			out = append(out, f)
		}
	}
	return out
}
