package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
)

func fetchConfig() config.FetchConfig {
	return config.FetchConfig{
		TimeoutSeconds:       5,
		MaxArticlesPerSource: 2,
		MinContentLength:     50,
		Concurrency:          4,
		UserAgent:            "NewsDigest test",
	}
}

func TestGenericStrategyDiscover(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<html><body>
		  <nav><a href="/about">About</a></nav>
		  <a href="/news/first-report">First</a>
		  <a href="/news/first-report">First again</a>
		  <a href="https://elsewhere.example.com/story/external">External</a>
		  <a href="mailto:tips@example.com">Tips</a>
		  <a href="/news/second-report">Second</a>
		  <a href="/news/third-report">Third</a>
		</body></html>`))
	}))
	defer server.Close()

	strategy := NewGenericStrategy(server.Client(), fetchConfig(), nil)
	source := domain.Source{Name: "example", URL: server.URL}

	links, err := strategy.Discover(context.Background(), source)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}

	// The cap keeps the first two matches: the de-duplicated relative link
	// resolved against the page URL, then the absolute external one.
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].URL != server.URL+"/news/first-report" {
		t.Fatalf("unexpected first link: %s", links[0].URL)
	}
	if links[1].URL != "https://elsewhere.example.com/story/external" {
		t.Fatalf("unexpected second link: %s", links[1].URL)
	}
	for _, link := range links {
		if link.Source.Name != "example" {
			t.Fatalf("link lost its source: %+v", link)
		}
	}
}

func TestGenericStrategyZeroCapUsesDefault(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<html><body>
		  <a href="/news/first-report">First</a>
		  <a href="/news/second-report">Second</a>
		  <a href="/news/third-report">Third</a>
		</body></html>`))
	}))
	defer server.Close()

	cfg := fetchConfig()
	cfg.MaxArticlesPerSource = 0

	strategy := NewGenericStrategy(server.Client(), cfg, nil)
	source := domain.Source{Name: "example", URL: server.URL}

	links, err := strategy.Discover(context.Background(), source)
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}
	if len(links) != defaultMaxPerSource {
		t.Fatalf("expected default cap of %d links, got %d", defaultMaxPerSource, len(links))
	}
}

func TestGenericStrategyPatternOverride(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`
		<html><body>
		  <a href="/news/skipped-by-pattern">News</a>
		  <a href="/2026/08/30/matched-post">Post</a>
		</body></html>`))
	}))
	defer server.Close()

	patterns := map[string]*regexp.Regexp{
		"example": regexp.MustCompile(`/\d{4}/\d{2}/\d{2}/`),
	}
	strategy := NewGenericStrategy(server.Client(), fetchConfig(), patterns)

	links, err := strategy.Discover(context.Background(), domain.Source{Name: "example", URL: server.URL})
	if err != nil {
		t.Fatalf("Discover error: %v", err)
	}

	if len(links) != 1 {
		t.Fatalf("expected 1 link, got %d", len(links))
	}
	if links[0].URL != server.URL+"/2026/08/30/matched-post" {
		t.Fatalf("unexpected link: %s", links[0].URL)
	}
}

func TestGenericStrategyNon2xx(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down for maintenance", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	strategy := NewGenericStrategy(server.Client(), fetchConfig(), nil)

	_, err := strategy.Discover(context.Background(), domain.Source{Name: "example", URL: server.URL})
	if err == nil {
		t.Fatal("expected error for non-2xx response")
	}
	if kind := domain.KindOf(err, ""); kind != domain.ErrKindHTTPStatus {
		t.Fatalf("unexpected error kind: %s", kind)
	}
}

func TestGenericStrategyConnectionRefused(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	strategy := NewGenericStrategy(nil, fetchConfig(), nil)

	_, err := strategy.Discover(context.Background(), domain.Source{Name: "example", URL: url})
	if err == nil {
		t.Fatal("expected error for refused connection")
	}
	if kind := domain.KindOf(err, ""); kind != domain.ErrKindNetwork {
		t.Fatalf("unexpected error kind: %s", kind)
	}

	var pe *domain.PipelineError
	if !errors.As(err, &pe) {
		t.Fatal("error is not tagged with a taxonomy kind")
	}
}
