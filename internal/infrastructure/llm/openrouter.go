package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"NewsDigest/internal/config"
	"NewsDigest/internal/domain"
	"NewsDigest/internal/ports"
)

// Client summarizes articles through an OpenRouter-compatible chat
// completions endpoint.
type Client struct {
	endpoint      string
	model         string
	apiKey        string
	systemPrompt  string
	maxInputChars int
	httpClient    *http.Client
}

var _ ports.Summarizer = (*Client)(nil)

// NewClient builds a client from configuration.
func NewClient(cfg config.LLMConfig) *Client {
	return &Client{
		endpoint:      cfg.Endpoint,
		model:         cfg.Model,
		apiKey:        cfg.APIKey,
		systemPrompt:  safePrompt(cfg.SystemPrompt),
		maxInputChars: cfg.MaxInputChars,
		httpClient:    &http.Client{Timeout: cfg.Timeout()},
	}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message chatMessage `json:"message"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Summarize sends the article to the summarization endpoint and returns the
// generated text. Any failure, including empty output, drops the article.
func (c *Client) Summarize(ctx context.Context, article domain.ExtractedArticle) (string, error) {
	if c.apiKey == "" || c.endpoint == "" || c.model == "" {
		return "", domain.Classify(domain.ErrKindSummarization, fmt.Errorf("summarizer misconfigured"))
	}

	body, err := json.Marshal(chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: c.systemPrompt},
			{Role: "user", Content: buildPrompt(article, c.maxInputChars)},
		},
	})
	if err != nil {
		return "", domain.Classify(domain.ErrKindSummarization, fmt.Errorf("marshal request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", domain.Classify(domain.ErrKindSummarization, fmt.Errorf("new request: %w", err))
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", domain.Classify(domain.ErrKindSummarization, fmt.Errorf("summarize request: %w", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", domain.Classify(domain.ErrKindSummarization,
			fmt.Errorf("summarizer error %s: %s", resp.Status, strings.TrimSpace(string(detail))))
	}

	var apiResp chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return "", domain.Classify(domain.ErrKindSummarization, fmt.Errorf("decode response: %w", err))
	}

	if apiResp.Error != nil {
		return "", domain.Classify(domain.ErrKindSummarization,
			fmt.Errorf("summarizer API error %d: %s", apiResp.Error.Code, apiResp.Error.Message))
	}
	if len(apiResp.Choices) == 0 {
		return "", domain.Classify(domain.ErrKindSummarization, fmt.Errorf("summarizer returned no choices"))
	}

	text := strings.TrimSpace(apiResp.Choices[0].Message.Content)
	if text == "" {
		return "", domain.Classify(domain.ErrKindSummarization, domain.ErrEmptySummary)
	}

	return text, nil
}

// buildPrompt assembles the user message, truncating the body to maxChars
// runes to respect the endpoint's context limits.
func buildPrompt(article domain.ExtractedArticle, maxChars int) string {
	body := article.Body
	if maxChars > 0 {
		if runes := []rune(body); len(runes) > maxChars {
			body = string(runes[:maxChars]) + "..."
		}
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Article Title: %s\n", article.Title))
	sb.WriteString(fmt.Sprintf("Source: %s\n\n", article.Link.Source.Name))
	sb.WriteString("Content:\n")
	sb.WriteString(body)
	sb.WriteString("\n\nPlease provide a concise summary of this article in 3-5 sentences. ")
	sb.WriteString("Extract the most important information, key facts, and main points.")
	return sb.String()
}

func safePrompt(prompt string) string {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "You are a helpful assistant that summarizes news articles."
	}
	return prompt
}
