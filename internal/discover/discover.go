package discover

import (
	"context"
	"fmt"

	"NewsDigest/internal/domain"
)

// Strategy captures a single link-discovery implementation for a source kind.
type Strategy interface {
	Name() string
	Discover(ctx context.Context, source domain.Source) ([]domain.ArticleLink, error)
}

// Registry keeps a mapping from strategy names to their implementations.
type Registry struct {
	strategies map[string]Strategy
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{strategies: map[string]Strategy{}}
}

// Register adds or replaces a strategy implementation.
func (r *Registry) Register(strategy Strategy) {
	if r.strategies == nil {
		r.strategies = map[string]Strategy{}
	}
	r.strategies[strategy.Name()] = strategy
}

// Resolve returns a strategy by name or an error if it is absent.
// An empty name resolves to the generic strategy.
func (r *Registry) Resolve(name string) (Strategy, error) {
	if name == "" {
		name = "generic"
	}
	if strategy, ok := r.strategies[name]; ok {
		return strategy, nil
	}
	return nil, fmt.Errorf("discovery strategy %s is not registered", name)
}
