// Package summary scrapes the technical-summary opinion of a symbol from a web page.
package summary

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"stock-advisor/internal/logger"
)

// Fetcher returns the HTML of a page.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Selectors locate the label/count pairs on the page. Label and Count are relative to Item.
type Selectors struct {
	Item  string
	Label string
	Count string
}

// Source renders a page's gauge counters as "SELL (9) - NEUTRAL (8) - BUY (7)".
type Source struct {
	fetcher     Fetcher
	urlTemplate string
	selectors   Selectors
}

func NewSource(fetcher Fetcher, urlTemplate string, selectors Selectors) *Source {
	return &Source{fetcher: fetcher, urlTemplate: urlTemplate, selectors: selectors}
}

// URL expands the template for a symbol.
func (s *Source) URL(symbol string) string {
	return strings.ReplaceAll(s.urlTemplate, "{symbol}", symbol)
}

func (s *Source) Summary(ctx context.Context, symbol string) (string, error) {
	url := s.URL(symbol)
	html, err := s.fetcher.Fetch(ctx, url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	out, err := Extract(html, s.selectors)
	if err != nil {
		return "", fmt.Errorf("extract %s: %w", url, err)
	}
	logger.Debug(ctx, "Technical summary extracted", "symbol", symbol, "summary", out)
	return out, nil
}

// Extract reads the label/count pairs from html in document order.
// Items with an empty label or a non-integer count are ignored.
func Extract(html string, sel Selectors) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}
	var parts []string
	doc.Find(sel.Item).Each(func(_ int, item *goquery.Selection) {
		label := strings.ToUpper(strings.Join(strings.Fields(item.Find(sel.Label).First().Text()), "_"))
		count, err := strconv.Atoi(strings.TrimSpace(item.Find(sel.Count).First().Text()))
		if label == "" || err != nil {
			return
		}
		parts = append(parts, fmt.Sprintf("%s (%d)", label, count))
	})
	if len(parts) == 0 {
		return "", errors.New("no summary counters found")
	}
	return strings.Join(parts, " - "), nil
}
