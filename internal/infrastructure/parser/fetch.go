package parser

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/net/html/charset"

	"NewsDigest/internal/domain"
)

// fetchBody issues a GET and returns the response body decoded to UTF-8.
// Failures are tagged with their taxonomy kind for the error log.
func fetchBody(ctx context.Context, client *http.Client, userAgent, pageURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, domain.Classify(domain.ErrKindNetwork, fmt.Errorf("build request: %w", err))
	}
	if userAgent != "" {
		req.Header.Set("User-Agent", userAgent)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, domain.Classify(domain.ErrKindNetwork, fmt.Errorf("request %s: %w", pageURL, err))
	}
	defer resp.Body.Close()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, domain.Classify(domain.ErrKindHTTPStatus, fmt.Errorf("%s returned %s", pageURL, resp.Status))
	}

	// Sources are not guaranteed to serve UTF-8; sniff the charset from the
	// Content-Type header and the document itself.
	reader, err := charset.NewReader(resp.Body, resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, domain.Classify(domain.ErrKindParse, fmt.Errorf("detect charset: %w", err))
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, domain.Classify(domain.ErrKindNetwork, fmt.Errorf("read body: %w", err))
	}

	return body, nil
}
