// Package display renders runs, evaluations and the ledger for the terminal.
package display

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"stock-advisor/internal/types"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7C3AED")).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3B82F6")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#3B82F6"))
	buyStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#10B981"))
	sellStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#EF4444"))
	holdStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// Action colors a decision token.
func Action(a string) string {
	switch a {
	case types.DecisionBuy:
		return buyStyle.Render(a)
	case types.DecisionSell:
		return sellStyle.Render(a)
	case types.DecisionHold:
		return holdStyle.Render(a)
	default:
		return mutedStyle.Render(a)
	}
}

// Run renders the analysis table, new buys and closed positions of a run.
func Run(r *types.RunReport) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Run %s  %s  policy %s", r.RunID, r.At.Format("2006-01-02 15:04"), r.Policy)))
	b.WriteString("\n")

	rows := make([][]string, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []string{
			row.Symbol,
			fmt.Sprintf("%.2f", row.CurrentPrice),
			fmt.Sprintf("%+.2f%%", row.ChangePercent),
			Action(row.Evaluation),
			fmt.Sprintf("%.2f", row.Confidence),
			row.TechnicalOpinion,
			row.LLMOpinion,
			Action(row.Action),
		})
	}
	b.WriteString(panelStyle.Render(table([]string{"symbol", "price", "change", "technical", "conf", "summary", "llm", "action"}, rows)))
	b.WriteString("\n")

	if len(r.NewBuys) > 0 {
		buys := make([]string, 0, len(r.NewBuys))
		for _, q := range r.NewBuys {
			buys = append(buys, fmt.Sprintf("%s @ %.2f", q.Symbol, q.CurrentPrice))
		}
		b.WriteString(buyStyle.Render("New buys: ") + strings.Join(buys, ", ") + "\n")
	}
	if len(r.Closed) > 0 {
		b.WriteString(sellStyle.Render("Target reached:") + "\n")
		b.WriteString(Ledger(r.Closed))
	}
	return b.String()
}

// Evaluation renders one technical evaluation with its rationale and signals.
func Evaluation(ev types.Evaluation) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(ev.Symbol) + " " + Action(ev.Decision) + fmt.Sprintf(" (confidence %.2f)", ev.Confidence) + "\n")
	for _, s := range ev.ActiveSignals {
		b.WriteString("  " + s + "\n")
	}
	if ev.Failed() {
		b.WriteString(mutedStyle.Render(fmt.Sprintf("  %s: %s", ev.ErrorKind, ev.Error)) + "\n")
		return panelStyle.Render(strings.TrimRight(b.String(), "\n"))
	}
	m := ev.SignalMap()
	rows := make([][]string, 0, len(types.SignalKeys))
	for _, k := range types.SignalKeys {
		rows = append(rows, []string{k, fmt.Sprintf("%v", m[k])})
	}
	b.WriteString(table([]string{"signal", "value"}, rows))
	return panelStyle.Render(b.String())
}

// Ledger renders positions, newest first as stored.
func Ledger(rows []types.PositionRow) string {
	if len(rows) == 0 {
		return mutedStyle.Render("ledger is empty") + "\n"
	}
	out := make([][]string, 0, len(rows))
	for _, p := range rows {
		out = append(out, []string{p.Symbol, p.BuyPrice, p.BuyDate, p.SellPrice, p.SellDate, p.DaysHeld, p.PercentageBenefit})
	}
	return panelStyle.Render(table([]string{"symbol", "buy", "bought", "sell", "sold", "days", "benefit %"}, out)) + "\n"
}

// table pads each column to its widest cell, measured without styling.
func table(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, r := range rows {
		for i, c := range r {
			if w := lipgloss.Width(c); i < len(widths) && w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	line := func(cells []string, style *lipgloss.Style) {
		for i, c := range cells {
			if style != nil {
				c = style.Render(c)
			}
			b.WriteString(c + strings.Repeat(" ", widths[i]-lipgloss.Width(c)))
			if i < len(cells)-1 {
				b.WriteString("  ")
			}
		}
		b.WriteString("\n")
	}
	line(header, &headerStyle)
	for _, r := range rows {
		line(r, nil)
	}
	return strings.TrimRight(b.String(), "\n")
}
