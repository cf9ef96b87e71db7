// Package opinion normalizes textual opinions into decision tokens.
package opinion

import (
	"regexp"
	"strconv"
	"strings"
)

// Kind enumerates the token domain. Null and Error are distinct sentinels.
type Kind int

const (
	Null Kind = iota
	Error
	Value
)

const errorLabel = "ERROR"

// Token is a normalized decision. Value is meaningful only for Kind == Value and may be empty.
type Token struct {
	Kind  Kind
	Value string
}

var (
	NullToken  = Token{Kind: Null}
	ErrorToken = Token{Kind: Error}
)

// Of returns a value token.
func Of(v string) Token { return Token{Kind: Value, Value: v} }

// Sentinel reports whether the token carries no usable decision.
// An explicit "ERROR" value and an empty value count as sentinels.
func (t Token) Sentinel() bool {
	if t.Kind != Value {
		return true
	}
	return t.Value == "" || t.Value == errorLabel
}

func (t Token) String() string {
	switch t.Kind {
	case Null:
		return "<null>"
	case Error:
		return errorLabel
	default:
		return t.Value
	}
}

// Text wraps a string for the parsers, which take nil as "no text at all".
func Text(s string) *string { return &s }

var scorePair = regexp.MustCompile(`([\p{L}\p{N}_]+)\s+\((\d+)\)`)

// ParseStructured reads "LABEL (score) - LABEL (score) ..." and returns the label with the
// highest score, first occurrence winning ties. Missing text yields ErrorToken; text without
// any pair yields NullToken.
func ParseStructured(text *string) Token {
	if text == nil {
		return ErrorToken
	}
	best, bestScore := "", -1
	for _, m := range scorePair.FindAllStringSubmatch(*text, -1) {
		score, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		if score > bestScore {
			best, bestScore = strings.ToUpper(m[1]), score
		}
	}
	if bestScore < 0 {
		return NullToken
	}
	return Of(best)
}

// ParseFreeText reads "DECISION - explanation": the segment before the first '-', trimmed
// and upper-cased. Missing text yields NullToken; an empty string yields an empty value;
// "error" or "error: <detail>" yields ErrorToken.
func ParseFreeText(text *string) Token {
	if text == nil {
		return NullToken
	}
	head, _, _ := strings.Cut(*text, "-")
	v := strings.ToUpper(strings.TrimSpace(head))
	if v == errorLabel || strings.HasPrefix(v, errorLabel+":") {
		return ErrorToken
	}
	return Of(v)
}
