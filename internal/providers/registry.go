package providers

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
)

const (
	GoogleFlights = "google_flights"
	FlightAPI     = "flightapi"
)

// Registry resolves a template URL's host to its provider. Unknown hosts get
// a generic HTML provider named after the host.
type Registry struct {
	mu     sync.RWMutex
	byHost map[string]Provider
	logger *slog.Logger
}

func NewRegistry(logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		byHost: make(map[string]Provider),
		logger: logger,
	}
}

func NewDefaultRegistry(logger *slog.Logger) *Registry {
	r := NewRegistry(logger)
	google := NewHTMLProvider(GoogleFlights, logger)
	r.Register(google, "www.google.com", "google.com")
	r.Register(NewStructuredProvider(FlightAPI, "/api/", logger), "api.flightapi.io")
	return r
}

func (r *Registry) Register(p Provider, hosts ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, h := range hosts {
		r.byHost[strings.ToLower(h)] = p
	}
}

func (r *Registry) Lookup(templateURL string) (Provider, error) {
	u, err := url.Parse(templateURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("invalid template url %q", templateURL)
	}
	host := strings.ToLower(u.Hostname())

	r.mu.RLock()
	p, ok := r.byHost[host]
	r.mu.RUnlock()
	if ok {
		return p, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok = r.byHost[host]; ok {
		return p, nil
	}
	p = NewHTMLProvider(host, r.logger)
	r.byHost[host] = p
	return p, nil
}
