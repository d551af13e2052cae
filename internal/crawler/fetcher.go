package crawler

import (
	"context"
	"net/http"
	"time"

	"github.com/dharmasatrya/flightcrawl/internal/proxy"
)

type FetchRequest struct {
	URL          string
	Headers      map[string]string
	Cookies      []*http.Cookie
	Proxy        *proxy.Config
	WaitSelector string
	Timeout      time.Duration
}

// NetworkEvent is a response observed while loading a page, kept when its
// body is structured data.
type NetworkEvent struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

type FetchResult struct {
	Success       bool
	HTML          string
	StatusCode    int
	NetworkEvents []NetworkEvent
}

// Fetcher loads one URL under the given identity. A transport failure is an
// error; an HTTP error status is a result.
type Fetcher interface {
	Fetch(ctx context.Context, req FetchRequest) (*FetchResult, error)
}
