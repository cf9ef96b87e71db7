package summary

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/gocolly/colly/v2"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// StaticFetcher downloads a page without running scripts.
type StaticFetcher struct {
	timeout time.Duration
}

func NewStaticFetcher(timeout time.Duration) *StaticFetcher {
	return &StaticFetcher{timeout: timeout}
}

func (f *StaticFetcher) Fetch(ctx context.Context, url string) (string, error) {
	c := colly.NewCollector(
		colly.MaxDepth(1),
		colly.Async(false),
	)
	c.SetRequestTimeout(f.timeout)
	c.OnRequest(func(r *colly.Request) {
		if ctx.Err() != nil {
			r.Abort()
			return
		}
		r.Headers.Set("User-Agent", userAgent)
	})

	var body string
	var fetchErr error
	c.OnResponse(func(r *colly.Response) {
		body = string(r.Body)
	})
	c.OnError(func(r *colly.Response, err error) {
		fetchErr = fmt.Errorf("status %d: %w", r.StatusCode, err)
	})

	if err := c.Visit(url); err != nil {
		return "", err
	}
	if fetchErr != nil {
		return "", fetchErr
	}
	if ctx.Err() != nil {
		return "", ctx.Err()
	}
	return body, nil
}

// RenderedFetcher loads a page in headless Chrome and returns the DOM once waitSelector is ready.
type RenderedFetcher struct {
	timeout      time.Duration
	waitSelector string
}

func NewRenderedFetcher(timeout time.Duration, waitSelector string) *RenderedFetcher {
	if waitSelector == "" {
		waitSelector = "body"
	}
	return &RenderedFetcher{timeout: timeout, waitSelector: waitSelector}
}

func (f *RenderedFetcher) Fetch(ctx context.Context, url string) (string, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.UserAgent(userAgent),
		chromedp.Flag("disable-gpu", true),
		chromedp.NoSandbox,
	)
	allocCtx, cancelAlloc := chromedp.NewExecAllocator(ctx, opts...)
	defer cancelAlloc()
	parent, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	timeoutCtx, cancelTimeout := context.WithTimeout(parent, f.timeout)
	defer cancelTimeout()

	var html string
	tasks := chromedp.Tasks{
		chromedp.Navigate(url),
		chromedp.WaitReady(f.waitSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	}
	if err := chromedp.Run(timeoutCtx, tasks...); err != nil {
		return "", err
	}
	return html, nil
}
