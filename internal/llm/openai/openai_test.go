package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/store"
	"stock-advisor/internal/types"
)

func testConfig(baseURL, key string) *store.Config {
	cfg := &store.Config{}
	cfg.LLM.BaseURL = baseURL
	cfg.LLM.MaxTokens = 100
	cfg.Secrets.OpenAIAPIKey = key
	return cfg
}

func TestOpinion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "gpt-4o", body["model"])
		msgs := body["messages"].([]any)
		require.Len(t, msgs, 2)
		assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
		assert.Contains(t, msgs[1].(map[string]any)["content"], "about AMD")

		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":" BUY - strong momentum (RSI 62) "}}]}`))
	}))
	defer srv.Close()

	o := NewOpenAIOpinioner(testConfig(srv.URL, "sk-test"))
	got, err := o.Opinion(context.Background(), "AMD", types.SignalSet{RSI: 62}, 140, 10)
	require.NoError(t, err)
	assert.Equal(t, "BUY - strong momentum (RSI 62)", got)
}

func TestOpinionErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "Bearer empty" {
			_, _ = w.Write([]byte(`{"choices":[]}`))
			return
		}
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key"}}`))
	}))
	defer srv.Close()

	_, err := NewOpenAIOpinioner(testConfig(srv.URL, "")).Opinion(context.Background(), "AMD", types.SignalSet{}, 1, 10)
	assert.ErrorContains(t, err, "OPENAI_API_KEY")

	_, err = NewOpenAIOpinioner(testConfig(srv.URL, "wrong")).Opinion(context.Background(), "AMD", types.SignalSet{}, 1, 10)
	assert.ErrorContains(t, err, "openai http 401")

	_, err = NewOpenAIOpinioner(testConfig(srv.URL, "empty")).Opinion(context.Background(), "AMD", types.SignalSet{}, 1, 10)
	assert.ErrorContains(t, err, "no choices")
}
