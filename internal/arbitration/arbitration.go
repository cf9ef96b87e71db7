// Package arbitration reconciles the opinion sources of a symbol into one final action.
package arbitration

import (
	"fmt"
	"strings"

	"stock-advisor/internal/opinion"
	"stock-advisor/internal/types"
)

// EmptyDecision is the final action when the sources give nothing usable.
const EmptyDecision = "EMPTY_DECISION"

// Policy selects which source decides.
type Policy string

const (
	Default Policy = "DEFAULT"
	TV      Policy = "TV"
	LLM     Policy = "LLM"
	Custom  Policy = "CUSTOM"
)

// ParsePolicy maps a config value to a Policy. Blank selects Default.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToUpper(strings.TrimSpace(s))); p {
	case "":
		return Default, nil
	case Default, TV, LLM, Custom:
		return p, nil
	default:
		return "", fmt.Errorf("unknown opinion policy %q (want DEFAULT, TV, LLM or CUSTOM)", s)
	}
}

// Row holds the raw opinion texts of one symbol. A nil field means the source produced no text.
type Row struct {
	Symbol     string
	Structured *string
	FreeText   *string
	Custom     *string
}

// Reconcile applies the DEFAULT rule: agreement wins, a lone valid token wins,
// anything else is EMPTY_DECISION.
func Reconcile(structured, free opinion.Token) string {
	ss, fs := structured.Sentinel(), free.Sentinel()
	switch {
	case !ss && !fs && structured.Value == free.Value:
		return structured.Value
	case ss && !fs:
		return free.Value
	case !ss && fs:
		return structured.Value
	default:
		return EmptyDecision
	}
}

// Resolve computes the final action of one row.
func Resolve(p Policy, r Row) string {
	switch p {
	case TV:
		return verbatim(opinion.ParseStructured(r.Structured))
	case LLM:
		return verbatim(opinion.ParseFreeText(r.FreeText))
	case Custom:
		return verbatim(opinion.ParseFreeText(r.Custom))
	default:
		return Reconcile(opinion.ParseStructured(r.Structured), opinion.ParseFreeText(r.FreeText))
	}
}

// ActionColumn resolves every row independently, preserving order.
func ActionColumn(p Policy, rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = Resolve(p, r)
	}
	return out
}

// CustomOpinion renders a technical evaluation in the free-text shape "DECISION - rationale".
// A failed evaluation renders as an error opinion.
func CustomOpinion(ev types.Evaluation) string {
	if ev.Failed() {
		return "error: " + ev.Error
	}
	return ev.Decision + " - " + strings.Join(ev.ActiveSignals, "; ")
}

func verbatim(t opinion.Token) string {
	if t.Sentinel() {
		return EmptyDecision
	}
	return t.Value
}
