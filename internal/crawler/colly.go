package crawler

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

// CollyFetcher fetches pages with a fresh colly collector per request so
// proxies and cookies never leak between identities.
type CollyFetcher struct {
	logger *slog.Logger
}

func NewCollyFetcher(logger *slog.Logger) *CollyFetcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CollyFetcher{logger: logger.With("component", "fetcher")}
}

func (f *CollyFetcher) Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error) {
	c := colly.NewCollector(
		colly.AllowURLRevisit(),
		colly.IgnoreRobotsTxt(),
	)
	c.ParseHTTPErrorResponse = true
	if req.Timeout > 0 {
		c.SetRequestTimeout(req.Timeout)
	}
	if ua := req.Headers["User-Agent"]; ua != "" {
		c.UserAgent = ua
	}
	if req.Proxy != nil {
		if err := c.SetProxy(req.Proxy.URL()); err != nil {
			return nil, fmt.Errorf("configuring proxy %s: %w", req.Proxy, err)
		}
	}
	if len(req.Cookies) > 0 {
		if err := c.SetCookies(req.URL, req.Cookies); err != nil {
			return nil, fmt.Errorf("setting cookies: %w", err)
		}
	}

	c.OnRequest(func(r *colly.Request) {
		for k, v := range req.Headers {
			r.Headers.Set(k, v)
		}
	})

	result := &FetchResult{}
	c.OnResponse(func(r *colly.Response) {
		result.StatusCode = r.StatusCode
		result.HTML = string(r.Body)
		result.Success = r.StatusCode >= 200 && r.StatusCode < 400

		contentType := r.Headers.Get("Content-Type")
		if strings.Contains(contentType, "json") {
			result.NetworkEvents = append(result.NetworkEvents, NetworkEvent{
				URL:         r.Request.URL.String(),
				StatusCode:  r.StatusCode,
				ContentType: contentType,
				Body:        r.Body,
			})
		}
	})

	done := make(chan error, 1)
	go func() {
		done <- c.Visit(req.URL)
	}()

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case err := <-done:
		if err != nil {
			return nil, err
		}
	}

	if req.WaitSelector != "" && result.Success && len(result.NetworkEvents) == 0 {
		f.probeSelector(req, result.HTML)
	}
	return result, nil
}

func (f *CollyFetcher) probeSelector(req FetchRequest, html string) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return
	}
	if doc.Find(req.WaitSelector).Length() == 0 {
		f.logger.Warn("wait selector not present in page", "url", req.URL, "selector", req.WaitSelector)
	}
}
