// Package notify emails the result of a run.
package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net"
	"net/smtp"
	"strconv"
	"strings"

	"stock-advisor/internal/logger"
	"stock-advisor/internal/types"
)

type Options struct {
	Host       string
	Port       int
	Sender     string
	Password   string
	Recipients []string
	Subject    string
	RevenuePct float64
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Emailer sends one HTML message per recipient.
type Emailer struct {
	opts Options
	send sendFunc
}

func NewEmailer(opts Options) *Emailer {
	return &Emailer{opts: opts, send: smtp.SendMail}
}

func (e *Emailer) Publish(ctx context.Context, r *types.RunReport) error {
	body, err := Render(r, e.opts.RevenuePct)
	if err != nil {
		return fmt.Errorf("render email: %w", err)
	}
	addr := net.JoinHostPort(e.opts.Host, strconv.Itoa(e.opts.Port))
	var auth smtp.Auth
	if e.opts.Password != "" {
		auth = smtp.PlainAuth("", e.opts.Sender, e.opts.Password, e.opts.Host)
	}

	var failed []string
	for _, to := range e.opts.Recipients {
		msg := message(e.opts.Sender, to, e.opts.Subject, body)
		if err := e.send(addr, auth, e.opts.Sender, []string{to}, msg); err != nil {
			logger.ErrorWithErr(ctx, "Failed to send email", err, "recipient", to)
			failed = append(failed, to)
			continue
		}
	}
	if len(failed) > 0 {
		return fmt.Errorf("email not delivered to %s", strings.Join(failed, ", "))
	}
	logger.Info(ctx, "Email sent", "recipients", len(e.opts.Recipients))
	return nil
}

func message(from, to, subject, html string) []byte {
	var b bytes.Buffer
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", to)
	fmt.Fprintf(&b, "Subject: %s\r\n", subject)
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	b.WriteString(html)
	return b.Bytes()
}

var page = template.Must(template.New("email").Parse(`<p>Here are the daily trading advices:</p>
<table border="1">
<tr><th>symbol</th><th>current_price</th><th>change_percent</th><th>manual_financial_analysis</th><th>trading_view_opinion</th><th>llm_opinion</th><th>custom_opinion</th><th>action</th></tr>
{{range .Rows}}<tr><td>{{.Symbol}}</td><td>{{.CurrentPrice}}</td><td>{{.ChangePercent}}</td><td>{{.Evaluation}}</td><td>{{.TechnicalOpinion}}</td><td>{{.LLMOpinion}}</td><td>{{.CustomOpinion}}</td><td>{{.Action}}</td></tr>
{{end}}</table>
{{if .NewBuys}}<br><p>The following stocks are worth buying:</p>
<table border="1">
<tr><th>symbol</th><th>buy_value</th><th>change_percent</th></tr>
{{range .NewBuys}}<tr><td>{{.Symbol}}</td><td>{{.CurrentPrice}}</td><td>{{.ChangePercent}}</td></tr>
{{end}}</table>
{{end}}{{if .Closed}}<br><p>The following stocks have reached the {{.RevenuePct}}% target and are recommended to sell:</p>
<table border="1">
<tr><th>symbol</th><th>buy_price</th><th>buy_date</th><th>sell_price</th><th>days_held</th><th>percentage_benefit</th></tr>
{{range .Closed}}<tr><td>{{.Symbol}}</td><td>{{.BuyPrice}}</td><td>{{.BuyDate}}</td><td>{{.SellPrice}}</td><td>{{.DaysHeld}}</td><td>{{.PercentageBenefit}}</td></tr>
{{end}}</table>
{{end}}`))

// Render builds the HTML body: the advice table, then new buys and target sells when present.
func Render(r *types.RunReport, revenuePct float64) (string, error) {
	var b bytes.Buffer
	err := page.Execute(&b, struct {
		*types.RunReport
		RevenuePct float64
	}{r, revenuePct})
	return b.String(), err
}
