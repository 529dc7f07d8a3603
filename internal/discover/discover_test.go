package discover

import (
	"context"
	"testing"

	"NewsDigest/internal/domain"
)

type stubStrategy struct {
	name string
}

func (s *stubStrategy) Name() string {
	return s.name
}

func (s *stubStrategy) Discover(_ context.Context, source domain.Source) ([]domain.ArticleLink, error) {
	return []domain.ArticleLink{{URL: source.URL + "/news/stub", Source: source}}, nil
}

func TestRegistryResolve(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&stubStrategy{name: "generic"})
	registry.Register(&stubStrategy{name: "rss"})

	strategy, err := registry.Resolve("rss")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if strategy.Name() != "rss" {
		t.Fatalf("resolved wrong strategy: %s", strategy.Name())
	}
}

func TestRegistryResolveEmptyDefaultsToGeneric(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()
	registry.Register(&stubStrategy{name: "generic"})

	strategy, err := registry.Resolve("")
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if strategy.Name() != "generic" {
		t.Fatalf("empty name resolved to %s", strategy.Name())
	}
}

func TestRegistryResolveUnknown(t *testing.T) {
	t.Parallel()

	registry := NewRegistry()

	if _, err := registry.Resolve("missing"); err == nil {
		t.Fatal("expected error for unregistered strategy")
	}
}
