package analyzer

import (
	"context"
	"fmt"
	"time"

	"resty.dev/v3"

	"github.com/Pratiikpy/irys-confession-board/internal/metrics"
)

const (
	messagesPath = "/v1/messages"
	apiVersion   = "2023-06-01"
	maxTokens    = 1024
)

// Mode selects which analysis prompt is sent.
type Mode string

const (
	ModeModeration  Mode = "moderation"
	ModeEnhancement Mode = "enhancement"
)

// Client talks to a Claude-compatible messages API.
type Client struct {
	client *resty.Client
	apiKey string
	model  string
}

func NewClient(baseURL, apiKey, model string) *Client {
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:       5 * time.Second,
		TLSHandshakeTimeout: 5 * time.Second,
		IdleConnTimeout:     30 * time.Second,
	})
	client.SetBaseURL(baseURL)
	client.SetTimeout(30 * time.Second)
	// Transient 429/5xx responses from the analyzer are retried before the
	// gate falls back to approving unanalyzed.
	client.SetRetryCount(2)
	client.SetRetryWaitTime(500 * time.Millisecond)

	return &Client{client: client, apiKey: apiKey, model: model}
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) r(ctx context.Context) *resty.Request {
	return c.client.R().WithContext(ctx)
}

type messagesRequest struct {
	Model     string    `json:"model"`
	MaxTokens int       `json:"max_tokens"`
	Messages  []message `json:"messages"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []contentBlock `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Analyze sends the content through the prompt for the given mode and
// returns the parsed result. The returned Result may be untagged when the
// model answered with something that is not the expected JSON shape.
func (c *Client) Analyze(ctx context.Context, mode Mode, content string) (*Result, error) {
	res, err := c.r(ctx).
		SetHeader("x-api-key", c.apiKey).
		SetHeader("anthropic-version", apiVersion).
		SetBody(&messagesRequest{
			Model:     c.model,
			MaxTokens: maxTokens,
			Messages:  []message{{Role: "user", Content: promptFor(mode, content)}},
		}).
		SetResult(&messagesResponse{}).
		Post(messagesPath)
	if err != nil {
		metrics.AnalyzerRequestsTotal.WithLabelValues(string(mode), "error").Inc()
		return nil, fmt.Errorf("analyzer request failed: %w", err)
	}
	if res.IsError() {
		metrics.AnalyzerRequestsTotal.WithLabelValues(string(mode), "error").Inc()
		return nil, fmt.Errorf("analyzer returned status %d", res.StatusCode())
	}

	metrics.AnalyzerRequestsTotal.WithLabelValues(string(mode), "ok").Inc()
	return parseResult(mode, res.Result().(*messagesResponse)), nil
}

func promptFor(mode Mode, content string) string {
	switch mode {
	case ModeModeration:
		return fmt.Sprintf(`Analyze this anonymous confession for moderation. Respond with only a JSON object:
{"recommended_action": "approve|flag|remove", "crisis_level": "none|low|medium|high|critical", "confidence": 0.0, "reasoning": "...", "toxic": false, "spam": false}

Confession: %q`, content)
	case ModeEnhancement:
		return fmt.Sprintf(`Analyze this anonymous confession for discovery. Respond with only a JSON object:
{"mood": "...", "tags": ["..."], "keywords": ["..."], "viral_score": 0.0}

Confession: %q`, content)
	}
	return content
}
