package parser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"NewsDigest/internal/config"
	"NewsDigest/internal/discover"
	"NewsDigest/internal/domain"
)

// articlePathMarkers are the path fragments that identify a likely article
// URL on an arbitrary news front page.
var articlePathMarkers = []string{"/article", "/news/", "/story/"}

// defaultMaxPerSource guards against zero and negative caps sneaking past
// configuration validation.
const defaultMaxPerSource = 2

// GenericStrategy discovers article links on a front page by walking anchor
// tags and keeping those that match an article-path heuristic or a
// per-source pattern override.
type GenericStrategy struct {
	client       *http.Client
	userAgent    string
	maxPerSource int
	patterns     map[string]*regexp.Regexp
}

var _ discover.Strategy = (*GenericStrategy)(nil)

// NewGenericStrategy wires an HTTP client; patterns maps source names to
// optional URL regexps that replace the default heuristic.
func NewGenericStrategy(client *http.Client, cfg config.FetchConfig, patterns map[string]*regexp.Regexp) *GenericStrategy {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}
	maxPerSource := cfg.MaxArticlesPerSource
	if maxPerSource <= 0 {
		maxPerSource = defaultMaxPerSource
	}
	return &GenericStrategy{
		client:       client,
		userAgent:    cfg.UserAgent,
		maxPerSource: maxPerSource,
		patterns:     patterns,
	}
}

// Name identifies the strategy inside the registry.
func (g *GenericStrategy) Name() string {
	return "generic"
}

// Discover fetches the source front page and extracts candidate links.
// Repeated hrefs on one page are skipped; the result is capped at the
// configured per-source maximum.
func (g *GenericStrategy) Discover(ctx context.Context, source domain.Source) ([]domain.ArticleLink, error) {
	base, err := url.Parse(source.URL)
	if err != nil {
		return nil, domain.Classify(domain.ErrKindParse, fmt.Errorf("source url %s: %w", source.URL, err))
	}

	body, err := fetchBody(ctx, g.client, g.userAgent, source.URL)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return nil, domain.Classify(domain.ErrKindParse, fmt.Errorf("parse front page: %w", err))
	}

	seen := map[string]struct{}{}
	var links []domain.ArticleLink

	doc.Find("a[href]").EachWithBreak(func(_ int, anchor *goquery.Selection) bool {
		href, _ := anchor.Attr("href")
		resolved := resolveHref(base, href)
		if resolved == "" || !g.matches(source, resolved) {
			return true
		}
		if _, ok := seen[resolved]; ok {
			return true
		}
		seen[resolved] = struct{}{}
		links = append(links, domain.ArticleLink{URL: resolved, Source: source})
		return len(links) < g.maxPerSource
	})

	return links, nil
}

func (g *GenericStrategy) matches(source domain.Source, candidate string) bool {
	if pattern, ok := g.patterns[source.Name]; ok && pattern != nil {
		return pattern.MatchString(candidate)
	}
	for _, marker := range articlePathMarkers {
		if strings.Contains(candidate, marker) {
			return true
		}
	}
	return false
}

// resolveHref makes href absolute against the page URL. Anything that does
// not resolve to an http(s) URL is discarded.
func resolveHref(base *url.URL, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(parsed)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	return resolved.String()
}
