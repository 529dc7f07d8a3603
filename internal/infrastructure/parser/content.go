package parser

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// nonContentSelectors lists elements stripped before the paragraph fallback.
const nonContentSelectors = "script, style, nav, header, footer"

// Extractor downloads an article page and pulls its title and main text.
// Readability extraction runs first; when it yields nothing the extractor
// falls back to concatenating paragraph text with boilerplate stripped.
type Extractor struct {
	client    *http.Client
	userAgent string
	minLength int
}

var _ ports.ArticleExtractor = (*Extractor)(nil)

// NewExtractor wires an HTTP client and the minimum-content threshold.
func NewExtractor(client *http.Client, cfg config.FetchConfig) *Extractor {
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout()}
	}
	return &Extractor{
		client:    client,
		userAgent: cfg.UserAgent,
		minLength: cfg.MinContentLength,
	}
}

// Extract fetches the linked page and returns title and body text. Bodies
// below the minimum length count as extraction failure and drop the article.
func (e *Extractor) Extract(ctx context.Context, link domain.ArticleLink) (domain.ExtractedArticle, error) {
	body, err := fetchBody(ctx, e.client, e.userAgent, link.URL)
	if err != nil {
		return domain.ExtractedArticle{}, err
	}

	pageURL, err := url.Parse(link.URL)
	if err != nil {
		return domain.ExtractedArticle{}, domain.Classify(domain.ErrKindParse, fmt.Errorf("article url %s: %w", link.URL, err))
	}

	title, text, err := extractContent(body, pageURL)
	if err != nil {
		return domain.ExtractedArticle{}, err
	}

	if utf8.RuneCountInString(text) < e.minLength {
		return domain.ExtractedArticle{}, domain.Classify(domain.ErrKindContentTooShort,
			fmt.Errorf("%s: %w", link.URL, domain.ErrContentTooShort))
	}

	return domain.ExtractedArticle{Link: link, Title: title, Body: text}, nil
}

// extractContent parses the body once and hands the node tree to readability.
// The body is already UTF-8 at this point; readability.FromReader would run a
// second charset detection pass and garble non-ASCII text.
func extractContent(body []byte, pageURL *url.URL) (string, string, error) {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return "", "", domain.Classify(domain.ErrKindParse, fmt.Errorf("parse article: %w", err))
	}

	var title, text string
	if article, err := readability.FromDocument(root, pageURL); err == nil {
		title = strings.TrimSpace(article.Title)
		text = collapseWhitespace(article.TextContent)
	}

	if text != "" && title != "" {
		return title, text, nil
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", "", domain.Classify(domain.ErrKindParse, fmt.Errorf("parse article: %w", err))
	}

	if title == "" {
		title = extractTitle(doc)
	}
	if text == "" {
		text = paragraphText(doc)
	}

	return title, text, nil
}

// extractTitle prefers the first <h1>, then the og:title meta tag.
func extractTitle(doc *goquery.Document) string {
	if h1 := strings.TrimSpace(doc.Find("h1").First().Text()); h1 != "" {
		return h1
	}
	if ogTitle, exists := doc.Find("meta[property='og:title']").Attr("content"); exists {
		return strings.TrimSpace(ogTitle)
	}
	return ""
}

// paragraphText strips boilerplate elements and joins paragraph-level text.
func paragraphText(doc *goquery.Document) string {
	doc.Find(nonContentSelectors).Remove()

	var parts []string
	doc.Find("p").Each(func(_ int, paragraph *goquery.Selection) {
		if text := strings.TrimSpace(paragraph.Text()); text != "" {
			parts = append(parts, text)
		}
	})

	return collapseWhitespace(strings.Join(parts, " "))
}

func collapseWhitespace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}
