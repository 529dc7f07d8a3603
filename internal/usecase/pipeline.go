package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

const defaultConcurrency = 8

// PipelineDeps wires all driven adapters into the orchestration pipeline.
type PipelineDeps struct {
	Sources     []domain.Source
	Discoverer  ports.LinkDiscoverer
	Extractor   ports.ArticleExtractor
	Summarizer  ports.Summarizer
	Notifier    ports.Notifier
	Concurrency int
	Logger      *slog.Logger
}

// Pipeline implements the digest workflow: fetch links, extract content,
// summarize, notify. Each stage fans out over its items and waits for all of
// them to settle before the next stage begins.
type Pipeline struct {
	sources     []domain.Source
	discoverer  ports.LinkDiscoverer
	extractor   ports.ArticleExtractor
	summarizer  ports.Summarizer
	notifier    ports.Notifier
	concurrency int
	logger      *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = defaultConcurrency
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		sources:     deps.Sources,
		discoverer:  deps.Discoverer,
		extractor:   deps.Extractor,
		summarizer:  deps.Summarizer,
		notifier:    deps.Notifier,
		concurrency: concurrency,
		logger:      logger,
	}
}

// Run executes one full pipeline pass and returns the final run state.
// Per-item failures are recorded on the state and never abort the run; the
// returned error is non-nil only when digest dispatch itself failed.
func (p *Pipeline) Run(ctx context.Context) (*domain.RunState, error) {
	state := domain.NewRunState(p.sources)

	state.Stage = domain.StageListing
	p.logger.Info("run started", "sources", len(state.Sources))

	state.Stage = domain.StageFetching
	state.Links = p.fetchLinks(ctx, state)
	p.logger.Info("links discovered", "links", len(state.Links))

	state.Stage = domain.StageExtracting
	state.Articles = p.extractArticles(ctx, state)
	p.logger.Info("articles extracted", "articles", len(state.Articles), "links", len(state.Links))

	state.Stage = domain.StageSummarizing
	state.Summaries = p.summarize(ctx, state)
	p.logger.Info("summaries generated", "summaries", len(state.Summaries), "articles", len(state.Articles))

	if len(state.Summaries) == 0 {
		state.Stage = domain.StageSkipped
		state.Skipped = true
		p.logger.Info("no summaries survived, skipping notification", "errors", len(state.Errors))
		state.Stage = domain.StageDone
		return state, nil
	}

	state.Stage = domain.StageNotifying
	if err := p.notifier.SendDigest(ctx, state.Summaries); err != nil {
		state.Record(domain.StageNotifying, domain.KindOf(err, domain.ErrKindMailDispatch), "digest", err.Error())
		state.Stage = domain.StageDone
		return state, fmt.Errorf("send digest: %w", err)
	}
	state.Notified = true

	state.Stage = domain.StageDone
	p.logger.Info("run completed", "summaries", len(state.Summaries), "errors", len(state.Errors))
	return state, nil
}

func (p *Pipeline) fetchLinks(ctx context.Context, state *domain.RunState) []domain.ArticleLink {
	perSource, errs := runConcurrent(ctx, state.Sources, p.concurrency,
		func(ctx context.Context, source domain.Source) ([]domain.ArticleLink, error) {
			return p.discoverer.DiscoverLinks(ctx, source)
		})

	var links []domain.ArticleLink
	for i, source := range state.Sources {
		if errs[i] != nil {
			state.Record(domain.StageFetching, domain.KindOf(errs[i], domain.ErrKindNetwork), source.URL, errs[i].Error())
			p.logger.Warn("source fetch failed", "source", source.Name, "url", source.URL, "error", errs[i])
			continue
		}
		links = append(links, perSource[i]...)
	}
	return links
}

func (p *Pipeline) extractArticles(ctx context.Context, state *domain.RunState) []domain.ExtractedArticle {
	extracted, errs := runConcurrent(ctx, state.Links, p.concurrency,
		func(ctx context.Context, link domain.ArticleLink) (domain.ExtractedArticle, error) {
			return p.extractor.Extract(ctx, link)
		})

	var articles []domain.ExtractedArticle
	for i, link := range state.Links {
		if errs[i] != nil {
			state.Record(domain.StageExtracting, domain.KindOf(errs[i], domain.ErrKindParse), link.URL, errs[i].Error())
			p.logger.Warn("article extraction failed", "url", link.URL, "error", errs[i])
			continue
		}
		articles = append(articles, extracted[i])
	}
	return articles
}

func (p *Pipeline) summarize(ctx context.Context, state *domain.RunState) []domain.Summary {
	texts, errs := runConcurrent(ctx, state.Articles, p.concurrency,
		func(ctx context.Context, article domain.ExtractedArticle) (string, error) {
			return p.summarizer.Summarize(ctx, article)
		})

	var summaries []domain.Summary
	for i, article := range state.Articles {
		if errs[i] != nil {
			state.Record(domain.StageSummarizing, domain.KindOf(errs[i], domain.ErrKindSummarization), article.Link.URL, errs[i].Error())
			p.logger.Warn("summarization failed", "url", article.Link.URL, "error", errs[i])
			continue
		}
		if strings.TrimSpace(texts[i]) == "" {
			state.Record(domain.StageSummarizing, domain.ErrKindSummarization, article.Link.URL, domain.ErrEmptySummary.Error())
			p.logger.Warn("summarization returned empty text", "url", article.Link.URL)
			continue
		}
		summaries = append(summaries, domain.Summary{Article: article, Text: texts[i]})
	}
	return summaries
}

// runConcurrent fans work out over items with bounded parallelism. Each item
// writes into its own slot, so results merge back in input order after the
// barrier without shared mutable state.
func runConcurrent[In, Out any](ctx context.Context, items []In, limit int, work func(context.Context, In) (Out, error)) ([]Out, []error) {
	results := make([]Out, len(items))
	errs := make([]error, len(items))

	sem := make(chan struct{}, limit)
	var wg sync.WaitGroup
	for i := range items {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			results[i], errs[i] = work(ctx, items[i])
		}()
	}
	wg.Wait()

	return results, errs
}
