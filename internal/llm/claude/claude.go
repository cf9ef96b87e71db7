package claude

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"stock-advisor/internal/llm"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

const (
	defaultBaseURL   = "https://api.anthropic.com"
	defaultModel     = "claude-3-5-sonnet-latest"
	anthropicVersion = "2023-06-01"
)

// Paths probed for the assistant text, newest API shape first.
var contentPaths = []string{
	"content.0.text",
	"completion",
	"choices.0.message.content",
	"output_text",
}

// ClaudeOpinioner asks the Anthropic Messages API for a free-text opinion.
type ClaudeOpinioner struct {
	cfg    *store.Config
	client *resty.Client
}

func NewClaudeOpinioner(cfg *store.Config) *ClaudeOpinioner {
	base := cfg.LLM.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetTimeout(60*time.Second).
		SetRetryCount(1).
		SetHeader("Content-Type", "application/json").
		SetHeader("anthropic-version", anthropicVersion)
	return &ClaudeOpinioner{cfg: cfg, client: client}
}

func (c *ClaudeOpinioner) Opinion(ctx context.Context, symbol string, signals types.SignalSet, currentPrice, revenuePct float64) (string, error) {
	apiKey := c.cfg.Secrets.ClaudeAPIKey
	if apiKey == "" {
		return "", errors.New("CLAUDE_API_KEY missing")
	}
	model := c.cfg.LLM.Model
	if model == "" {
		model = defaultModel
	}
	maxTokens := c.cfg.LLM.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 300
	}

	body := map[string]any{
		"model":  model,
		"system": llm.System(c.cfg.LLM.System),
		"messages": []map[string]string{
			{"role": "user", "content": llm.Prompt(symbol, signals, currentPrice, revenuePct)},
		},
		"max_tokens":  maxTokens,
		"temperature": c.cfg.LLM.Temperature,
	}

	logger.Debug(ctx, "Sending request to Claude", "symbol", symbol, "model", model)
	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("x-api-key", apiKey).
		SetBody(body).
		Post("/v1/messages")
	if err != nil {
		return "", fmt.Errorf("claude request: %w", err)
	}
	logger.Debug(ctx, "Received response from Claude",
		"symbol", symbol,
		"status_code", resp.StatusCode(),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	if resp.IsError() {
		return "", fmt.Errorf("claude http %d: %s", resp.StatusCode(), resp.String())
	}

	return extractText(resp.Body())
}

func extractText(body []byte) (string, error) {
	if !gjson.ValidBytes(body) {
		if s := strings.TrimSpace(string(body)); s != "" {
			return s, nil
		}
		return "", errors.New("claude: empty response")
	}
	for _, p := range contentPaths {
		if s := strings.TrimSpace(gjson.GetBytes(body, p).String()); s != "" {
			return s, nil
		}
	}
	return "", errors.New("claude: no text content in response")
}
