package parser

import (
	"context"
	"fmt"
	"log/slog"

	"NewsDigest/internal/discover"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// StrategyDiscoverer implements LinkDiscoverer via registered strategies.
type StrategyDiscoverer struct {
	registry *discover.Registry
	logger   *slog.Logger
}

var _ ports.LinkDiscoverer = (*StrategyDiscoverer)(nil)

// NewStrategyDiscoverer wires the strategy registry.
func NewStrategyDiscoverer(registry *discover.Registry, logger *slog.Logger) *StrategyDiscoverer {
	return &StrategyDiscoverer{registry: registry, logger: logger}
}

// DiscoverLinks resolves the source's strategy and executes it.
func (d *StrategyDiscoverer) DiscoverLinks(ctx context.Context, source domain.Source) ([]domain.ArticleLink, error) {
	if d.registry == nil {
		return nil, fmt.Errorf("discovery registry is not configured")
	}

	strategy, err := d.registry.Resolve(source.Strategy)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", source.Name, err)
	}

	links, err := strategy.Discover(ctx, source)
	if err != nil {
		return nil, err
	}

	d.debug("source scanned", "source", source.Name, "strategy", strategy.Name(), "links", len(links))
	return links, nil
}

func (d *StrategyDiscoverer) debug(msg string, args ...interface{}) {
	if d.logger != nil {
		d.logger.Debug(msg, args...)
	}
}
