package parser

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"NewsDigest/internal/domain"
)

const articlePage = `
<html>
<head><title>Pipelines in Production</title></head>
<body>
  <nav><a href="/">Home</a> Navigation boilerplate that must not leak.</nav>
  <h1>Pipelines in Production</h1>
  <article>
    <p>Concurrent pipelines move work through fixed stages with a barrier between each stage.</p>
    <p>Every item is processed independently, so one failure never takes down the whole run.</p>
  </article>
  <footer>Footer boilerplate that must not leak.</footer>
  <script>console.log("tracking")</script>
</body>
</html>`

func testLink(url string) domain.ArticleLink {
	return domain.ArticleLink{URL: url, Source: domain.Source{Name: "example", URL: url}}
}

func TestExtract(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(articlePage))
	}))
	defer server.Close()

	extractor := NewExtractor(server.Client(), fetchConfig())

	article, err := extractor.Extract(context.Background(), testLink(server.URL+"/news/pipelines"))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}

	if article.Title != "Pipelines in Production" {
		t.Fatalf("unexpected title: %q", article.Title)
	}
	if !strings.Contains(article.Body, "one failure never takes down the whole run") {
		t.Fatalf("body lost paragraph text: %q", article.Body)
	}
	if strings.Contains(article.Body, "boilerplate") || strings.Contains(article.Body, "tracking") {
		t.Fatalf("boilerplate leaked into body: %q", article.Body)
	}
	if article.Link.URL != server.URL+"/news/pipelines" {
		t.Fatalf("article link lost: %+v", article.Link)
	}
}

func TestExtractContentTooShort(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body><h1>Stub</h1><p>Too short.</p></body></html>`))
	}))
	defer server.Close()

	extractor := NewExtractor(server.Client(), fetchConfig())

	_, err := extractor.Extract(context.Background(), testLink(server.URL+"/news/stub"))
	if err == nil {
		t.Fatal("expected below-threshold content to fail extraction")
	}
	if !errors.Is(err, domain.ErrContentTooShort) {
		t.Fatalf("expected ErrContentTooShort, got %v", err)
	}
	if kind := domain.KindOf(err, ""); kind != domain.ErrKindContentTooShort {
		t.Fatalf("unexpected error kind: %s", kind)
	}
}

func TestExtractNonUTF8(t *testing.T) {
	t.Parallel()

	// "café" with an ISO-8859-1 encoded é.
	latin := []byte("<html><body><h1>Caf\xe9 Review</h1><article><p>" +
		"The caf\xe9 on the corner serves the strongest espresso in the city, " +
		"and the regulars queue before it opens.</p></article></body></html>")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=iso-8859-1")
		_, _ = w.Write(latin)
	}))
	defer server.Close()

	extractor := NewExtractor(server.Client(), fetchConfig())

	article, err := extractor.Extract(context.Background(), testLink(server.URL+"/news/cafe"))
	if err != nil {
		t.Fatalf("Extract error: %v", err)
	}
	if !strings.Contains(article.Body, "café") {
		t.Fatalf("charset not decoded: %q", article.Body)
	}
	if !strings.Contains(article.Title, "Café") {
		t.Fatalf("charset not decoded in title: %q", article.Title)
	}
}

func TestExtractFetchFailure(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer server.Close()

	extractor := NewExtractor(server.Client(), fetchConfig())

	_, err := extractor.Extract(context.Background(), testLink(server.URL+"/news/missing"))
	if err == nil {
		t.Fatal("expected error for 404 response")
	}
	if kind := domain.KindOf(err, ""); kind != domain.ErrKindHTTPStatus {
		t.Fatalf("unexpected error kind: %s", kind)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	t.Parallel()

	got := collapseWhitespace("  spread \n\t over \r\n lines  ")
	if got != "spread over lines" {
		t.Fatalf("unexpected result: %q", got)
	}
}
