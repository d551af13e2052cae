// Package session stores the cookie context a provider requires before it
// can be searched.
package session

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/dharmasatrya/flightcrawl/internal/crawler"
)

const (
	ReasonNotFound = "not_found"
	ReasonExpired  = "expired"
	ReasonEmpty    = "empty"
)

var ErrNotFound = errors.New("session not found")

type Cookie struct {
	Name     string    `json:"name"`
	Value    string    `json:"value"`
	Domain   string    `json:"domain,omitempty"`
	Path     string    `json:"path,omitempty"`
	Expires  time.Time `json:"expires,omitempty"`
	Secure   bool      `json:"secure,omitempty"`
	HTTPOnly bool      `json:"http_only,omitempty"`
}

type Session struct {
	Provider  string    `json:"provider"`
	Cookies   []Cookie  `json:"cookies"`
	UserAgent string    `json:"user_agent,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Check reports why s cannot back a search at now, or nil when it can.
func (s *Session) Check(now time.Time) error {
	if !s.ExpiresAt.IsZero() && !now.Before(s.ExpiresAt) {
		return &SessionError{Provider: s.Provider, Reason: ReasonExpired}
	}
	if len(s.Cookies) == 0 {
		return &SessionError{Provider: s.Provider, Reason: ReasonEmpty}
	}
	return nil
}

// Identity converts the session into what the crawler sends with each fetch.
func (s *Session) Identity() crawler.Identity {
	cookies := make([]*http.Cookie, 0, len(s.Cookies))
	for _, c := range s.Cookies {
		cookies = append(cookies, &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		})
	}
	return crawler.Identity{
		Cookies:   cookies,
		UserAgent: s.UserAgent,
	}
}

type SessionError struct {
	Provider string
	Reason   string
}

func (e *SessionError) Error() string {
	return fmt.Sprintf("no valid session for provider %s: %s", e.Provider, e.Reason)
}

type Store interface {
	Get(ctx context.Context, provider string) (*Session, error)
	Save(ctx context.Context, s *Session) error
	Close() error
}

// Require loads the provider's session and checks it. Every failure is a
// *SessionError except store errors other than ErrNotFound.
func Require(ctx context.Context, store Store, provider string, now time.Time) (*Session, error) {
	s, err := store.Get(ctx, provider)
	if errors.Is(err, ErrNotFound) {
		return nil, &SessionError{Provider: provider, Reason: ReasonNotFound}
	}
	if err != nil {
		return nil, fmt.Errorf("load session for %s: %w", provider, err)
	}
	if err := s.Check(now); err != nil {
		return nil, err
	}
	return s, nil
}

// Prepare fills the timestamps of a session about to be saved. A zero
// ExpiresAt becomes now+ttl.
func Prepare(s *Session, now time.Time, ttl time.Duration) {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	if s.ExpiresAt.IsZero() && ttl > 0 {
		s.ExpiresAt = now.Add(ttl)
	}
}
