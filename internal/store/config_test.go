package store

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("FINNHUB_API_KEY", "fh-key")
	cfg, err := LoadConfig(writeConfig(t, "symbols: [aapl, ' msft ']\n"))
	require.NoError(t, err)

	assert.Equal(t, []string{"AAPL", "MSFT"}, cfg.Symbols)
	assert.Equal(t, 10.0, cfg.RevenuePercentage)
	assert.Equal(t, 100, cfg.MaxRecords)
	assert.Equal(t, "DEFAULT", cfg.ForceOpinion)
	assert.Equal(t, "Europe/Madrid", cfg.Timezone)
	assert.Equal(t, 4, cfg.Concurrency)
	assert.Equal(t, 1825, cfg.Market.HistoryDays)
	assert.Equal(t, "NONE", cfg.LLM.Provider)
	assert.Equal(t, "sqlite", cfg.Ledger.Driver)
	assert.Equal(t, "fh-key", cfg.Secrets.FinnhubAPIKey)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "Europe/Madrid", loc.String())
}

func TestLoadConfigOverrides(t *testing.T) {
	cfg, err := LoadConfig(writeConfig(t, `
symbols: [NVDA]
revenue_percentage: 7.5
max_records: 20
force_opinion: llm
llm:
  provider: openai
  model: gpt-4o-mini
market:
  losers_only: true
  top_n: 3
`))
	require.NoError(t, err)
	assert.Equal(t, 7.5, cfg.RevenuePercentage)
	assert.Equal(t, 20, cfg.MaxRecords)
	assert.Equal(t, "LLM", cfg.ForceOpinion)
	assert.Equal(t, "OPENAI", cfg.LLM.Provider)
	assert.True(t, cfg.Market.LosersOnly)
	assert.Equal(t, 3, cfg.Market.TopN)
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"no symbols", "revenue_percentage: 5\n", "symbols cannot be empty"},
		{"bad policy", "symbols: [A]\nforce_opinion: VOTE\n", "force_opinion"},
		{"bad timezone", "symbols: [A]\ntimezone: Mars/Olympus\n", "timezone"},
		{"bad provider", "symbols: [A]\nllm: {provider: gemini}\n", "llm.provider"},
		{"bad driver", "symbols: [A]\nledger: {driver: mysql}\n", "ledger.driver"},
		{"negative target", "symbols: [A]\nrevenue_percentage: -1\n", "revenue_percentage"},
		{"summary template", "symbols: [A]\nsummary: {enabled: true, url_template: 'https://x'}\n", "{symbol}"},
		{"email without host", "symbols: [A]\nemail: {enabled: true, recipients: [a@b.c]}\n", "email.host"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
