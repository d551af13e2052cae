package crawler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/dharmasatrya/flightcrawl/internal/proxy"
	"github.com/dharmasatrya/flightcrawl/internal/retry"
)

// Identity is the per-provider session context a crawl runs under.
type Identity struct {
	Cookies   []*http.Cookie
	UserAgent string
}

type Request struct {
	Provider     string
	URL          string
	WaitSelector string
	Identity     Identity
	UseProxy     bool
}

type Result struct {
	Success       bool
	HTML          string
	StatusCode    int
	NetworkEvents []NetworkEvent
	Attempts      int
}

// Limiter throttles attempts per provider.
type Limiter interface {
	Wait(ctx context.Context, provider string) error
}

type Config struct {
	Timeout   time.Duration
	UserAgent string
	Retry     retry.Policy
}

func DefaultConfig() Config {
	return Config{
		Timeout:   45 * time.Second,
		UserAgent: DefaultUserAgent,
		Retry:     retry.DefaultPolicy(),
	}
}

var retryStatuses = map[int]bool{
	http.StatusTooManyRequests:     true,
	http.StatusForbidden:           true,
	http.StatusInternalServerError: true,
	http.StatusBadGateway:          true,
	http.StatusServiceUnavailable:  true,
	http.StatusGatewayTimeout:      true,
}

type Service struct {
	fetcher Fetcher
	proxies *proxy.Rotator
	limiter Limiter
	config  Config
	logger  *slog.Logger
}

// NewService builds a crawler. proxies and limiter may be nil.
func NewService(fetcher Fetcher, proxies *proxy.Rotator, limiter Limiter, config Config, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		fetcher: fetcher,
		proxies: proxies,
		limiter: limiter,
		config:  config,
		logger:  logger.With("component", "crawler"),
	}
}

// Crawl fetches req.URL, retrying captcha and network failures under the
// configured policy. A 404 is returned as an unsuccessful result, not an error.
func (s *Service) Crawl(ctx context.Context, req Request) (*Result, error) {
	policy := s.config.Retry
	policy.Retryable = IsRetryable
	policy.Logger = s.logger.With("provider", req.Provider, "url", req.URL)

	res, attempts, err := retry.Do(ctx, policy, func(ctx context.Context, attempt int) (*Result, error) {
		return s.attempt(ctx, req, attempt)
	})
	if err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) {
			netErr.Attempts = attempts
		}
		s.logger.Error("crawl failed", "provider", req.Provider, "url", req.URL, "attempts", attempts, "error", err)
		return nil, err
	}

	res.Attempts = attempts
	return res, nil
}

func (s *Service) attempt(ctx context.Context, req Request, attempt int) (*Result, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx, req.Provider); err != nil {
			return nil, err
		}
	}

	userAgent := req.Identity.UserAgent
	if userAgent == "" {
		userAgent = s.config.UserAgent
	}
	fr := FetchRequest{
		URL:          req.URL,
		Headers:      StealthHeaders(userAgent),
		Cookies:      req.Identity.Cookies,
		WaitSelector: req.WaitSelector,
		Timeout:      s.config.Timeout,
	}

	proxyHost := ""
	if req.UseProxy && s.proxies != nil {
		p := s.proxies.Next()
		fr.Proxy = &p
		proxyHost = p.Host
	}

	s.logger.Info("crawl attempt",
		"provider", req.Provider,
		"url", req.URL,
		"proxy_host", proxyHost,
		"attempt", attempt,
	)

	fetchCtx := ctx
	if s.config.Timeout > 0 {
		var cancel context.CancelFunc
		fetchCtx, cancel = context.WithTimeout(ctx, s.config.Timeout)
		defer cancel()
	}

	raw, err := s.fetcher.Fetch(fetchCtx, fr)
	if err != nil {
		return nil, &NetworkError{URL: req.URL, Err: err}
	}
	return s.classify(req, raw)
}

func (s *Service) classify(req Request, raw *FetchResult) (*Result, error) {
	status := raw.StatusCode

	if status == http.StatusNotFound {
		s.logger.Warn("page not found", "provider", req.Provider, "url", req.URL)
		return &Result{Success: false, StatusCode: status}, nil
	}

	if retryStatuses[status] || !raw.Success {
		if status == http.StatusTooManyRequests || status == http.StatusForbidden {
			s.rotateProxy(req, "blocked status")
		}
		netErr := &NetworkError{URL: req.URL}
		if status != 0 {
			netErr.StatusCode = &status
		}
		return nil, netErr
	}

	if kind, found := DetectCaptcha(raw.HTML); found {
		s.rotateProxy(req, "captcha")
		return nil, &CaptchaDetectedError{URL: req.URL, CaptchaType: kind}
	}

	return &Result{
		Success:       true,
		HTML:          raw.HTML,
		StatusCode:    status,
		NetworkEvents: raw.NetworkEvents,
	}, nil
}

func (s *Service) rotateProxy(req Request, reason string) {
	if !req.UseProxy || s.proxies == nil {
		return
	}
	s.proxies.Rotate()
	s.logger.Info("rotated proxy", "provider", req.Provider, "reason", reason)
}
