package openai

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
	defaultBaseURL = "https://api.openai.com"
	defaultModel   = "gpt-4o"
)

// OpenAIOpinioner asks the chat completions API for a free-text opinion.
type OpenAIOpinioner struct {
	cfg    *store.Config
	client *resty.Client
}

func NewOpenAIOpinioner(cfg *store.Config) *OpenAIOpinioner {
	base := cfg.LLM.BaseURL
	if base == "" {
		base = defaultBaseURL
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(base, "/")).
		SetTimeout(60*time.Second).
		SetRetryCount(1).
		SetHeader("Content-Type", "application/json")
	return &OpenAIOpinioner{cfg: cfg, client: client}
}

func (o *OpenAIOpinioner) Opinion(ctx context.Context, symbol string, signals types.SignalSet, currentPrice, revenuePct float64) (string, error) {
	apiKey := o.cfg.Secrets.OpenAIAPIKey
	if apiKey == "" {
		return "", errors.New("OPENAI_API_KEY missing")
	}
	model := o.cfg.LLM.Model
	if model == "" {
		model = defaultModel
	}

	body := map[string]any{
		"model": model,
		"messages": []map[string]string{
			{"role": "system", "content": llm.System(o.cfg.LLM.System)},
			{"role": "user", "content": llm.Prompt(symbol, signals, currentPrice, revenuePct)},
		},
		"temperature": o.cfg.LLM.Temperature,
		"max_tokens":  o.cfg.LLM.MaxTokens,
	}

	logger.Debug(ctx, "Sending request to OpenAI", "symbol", symbol, "model", model)
	start := time.Now()
	resp, err := o.client.R().
		SetContext(ctx).
		SetAuthToken(apiKey).
		SetBody(body).
		Post("/v1/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	logger.Debug(ctx, "Received response from OpenAI",
		"symbol", symbol,
		"status_code", resp.StatusCode(),
		"latency_ms", time.Since(start).Milliseconds(),
	)
	if resp.IsError() {
		return "", fmt.Errorf("openai http %d: %s", resp.StatusCode(), resp.String())
	}

	content := strings.TrimSpace(gjson.GetBytes(resp.Body(), "choices.0.message.content").String())
	if content == "" {
		return "", errors.New("openai: no choices in response")
	}
	return content, nil
}
