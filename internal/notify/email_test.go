package notify

import (
	"context"
	"errors"
	"net/smtp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stock-advisor/internal/types"
)

func sampleReport() *types.RunReport {
	return &types.RunReport{
		Rows:    []types.AnalysisRow{{Symbol: "AAPL", CurrentPrice: 150, Action: "BUY", LLMOpinion: "BUY - <strong> trend"}},
		NewBuys: []types.Quote{{Symbol: "AAPL", CurrentPrice: 150}},
	}
}

func TestRender(t *testing.T) {
	html, err := Render(sampleReport(), 10)
	require.NoError(t, err)
	assert.Contains(t, html, "daily trading advices")
	assert.Contains(t, html, "<td>AAPL</td>")
	assert.Contains(t, html, "BUY - &lt;strong&gt; trend")
	assert.Contains(t, html, "worth buying")
	assert.NotContains(t, html, "recommended to sell")

	r := sampleReport()
	r.Closed = []types.PositionRow{{Symbol: "AMD", BuyPrice: "100.00", SellPrice: "111.00", PercentageBenefit: "11.00"}}
	html, err = Render(r, 10)
	require.NoError(t, err)
	assert.Contains(t, html, "reached the 10% target")
	assert.Contains(t, html, "<td>11.00</td>")
}

type sent struct {
	addr string
	auth smtp.Auth
	from string
	to   []string
	msg  string
}

func TestEmailerPublish(t *testing.T) {
	var calls []sent
	e := NewEmailer(Options{
		Host: "smtp.example.test", Port: 587, Sender: "bot@example.test", Password: "pw",
		Recipients: []string{"a@example.test", "b@example.test"}, Subject: "Daily", RevenuePct: 10,
	})
	e.send = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		calls = append(calls, sent{addr, a, from, to, string(msg)})
		return nil
	}

	require.NoError(t, e.Publish(context.Background(), sampleReport()))
	require.Len(t, calls, 2)
	assert.Equal(t, "smtp.example.test:587", calls[0].addr)
	assert.NotNil(t, calls[0].auth)
	assert.Equal(t, []string{"b@example.test"}, calls[1].to)
	assert.Contains(t, calls[0].msg, "Subject: Daily\r\n")
	assert.Contains(t, calls[0].msg, "To: a@example.test\r\n")
	assert.Contains(t, calls[0].msg, "Content-Type: text/html")
}

func TestEmailerPartialFailure(t *testing.T) {
	e := NewEmailer(Options{Host: "h", Port: 25, Sender: "s", Recipients: []string{"ok", "bad"}})
	e.send = func(_ string, a smtp.Auth, _ string, to []string, _ []byte) error {
		assert.Nil(t, a)
		if to[0] == "bad" {
			return errors.New("mailbox unavailable")
		}
		return nil
	}
	err := e.Publish(context.Background(), sampleReport())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
	assert.NotContains(t, err.Error(), "ok,")
}
