package ports

import (
	"context"
	"time"

	"NewsDigest/internal/domain"
)

// LinkDiscoverer scans one source front page for candidate article links.
type LinkDiscoverer interface {
	DiscoverLinks(ctx context.Context, source domain.Source) ([]domain.ArticleLink, error)
}

// ArticleExtractor downloads one article and pulls its title and main text.
type ArticleExtractor interface {
	Extract(ctx context.Context, link domain.ArticleLink) (domain.ExtractedArticle, error)
}

// Summarizer converts one extracted article into short summary text.
type Summarizer interface {
	Summarize(ctx context.Context, article domain.ExtractedArticle) (string, error)
}

// Notifier dispatches the surviving summaries as a formatted digest.
type Notifier interface {
	SendDigest(ctx context.Context, summaries []domain.Summary) error
}

// Scheduler controls when pipeline runs execute.
type Scheduler interface {
	Start(ctx context.Context, job func(time.Time)) error
	Stop(ctx context.Context) error
}
