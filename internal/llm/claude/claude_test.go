package claude

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

func TestOpinion(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "ck-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "custom-model", body["model"])
		assert.Equal(t, "be brief", body["system"])
		assert.EqualValues(t, 300, body["max_tokens"])

		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"HOLD - mixed signals (RSI 55)"}]}`))
	}))
	defer srv.Close()

	cfg := &store.Config{}
	cfg.LLM.BaseURL = srv.URL
	cfg.LLM.Model = "custom-model"
	cfg.LLM.System = "be brief"
	cfg.Secrets.ClaudeAPIKey = "ck-test"

	got, err := NewClaudeOpinioner(cfg).Opinion(context.Background(), "IBM", types.SignalSet{RSI: 55}, 200, 10)
	require.NoError(t, err)
	assert.Equal(t, "HOLD - mixed signals (RSI 55)", got)
}

func TestOpinionMissingKey(t *testing.T) {
	_, err := NewClaudeOpinioner(&store.Config{}).Opinion(context.Background(), "IBM", types.SignalSet{}, 1, 10)
	assert.ErrorContains(t, err, "CLAUDE_API_KEY")
}

func TestExtractText(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    string
		wantErr bool
	}{
		{"messages api", `{"content":[{"text":"BUY - x"}]}`, "BUY - x", false},
		{"legacy completion", `{"completion":" SELL - y"}`, "SELL - y", false},
		{"chat shaped", `{"choices":[{"message":{"content":"HOLD - z"}}]}`, "HOLD - z", false},
		{"plain text", `BUY - not json`, "BUY - not json", false},
		{"no text", `{"content":[]}`, "", true},
		{"empty", ``, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := extractText([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
