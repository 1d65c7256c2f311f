package search

import (
	"context"

	"github.com/hyperjump/fandex/internal/models"
)

// Strategy names reported in SearchResponse.Strategy.
const (
	StrategyLocal  = "local"
	StrategyRemote = "remote"
)

// Strategy produces a search response for one domain.
type Strategy interface {
	Name() string
	Search(ctx context.Context, req *Request) (*models.SearchResponse, error)
}

// LocalStrategy runs the engine directly.
type LocalStrategy struct {
	engine *Engine
}

// NewLocalStrategy wraps an engine as a Strategy.
func NewLocalStrategy(engine *Engine) *LocalStrategy {
	return &LocalStrategy{engine: engine}
}

func (s *LocalStrategy) Name() string { return StrategyLocal }

// Search returns ctx.Err() when the context is already done; otherwise the
// local ranking always succeeds.
func (s *LocalStrategy) Search(ctx context.Context, req *Request) (*models.SearchResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.engine.Search(req), nil
}
