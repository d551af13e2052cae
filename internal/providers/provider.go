package providers

import (
	"github.com/dharmasatrya/flightcrawl/internal/crawler"
	"github.com/dharmasatrya/flightcrawl/internal/models"
	"github.com/dharmasatrya/flightcrawl/internal/parser"
)

// Provider couples a search site with the way its pages are addressed and
// parsed.
type Provider interface {
	Name() string
	WaitSelector() string
	BuildURL(template string, combo models.DateCombination) (string, error)
	Parse(res *crawler.Result) (*parser.Result, error)
}

type ProviderError struct {
	Provider string
	Err      error
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Err.Error()
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

func NewProviderError(provider string, err error) *ProviderError {
	return &ProviderError{
		Provider: provider,
		Err:      err,
	}
}
