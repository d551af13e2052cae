package providers

import (
	"log/slog"

	"github.com/dharmasatrya/flightcrawl/internal/crawler"
	"github.com/dharmasatrya/flightcrawl/internal/models"
	"github.com/dharmasatrya/flightcrawl/internal/parser"
)

type StructuredProvider struct {
	name   string
	parser *parser.StructuredParser
}

func NewStructuredProvider(name, apiPath string, logger *slog.Logger) *StructuredProvider {
	return &StructuredProvider{
		name:   name,
		parser: parser.NewStructuredParser(apiPath, logger),
	}
}

func (p *StructuredProvider) Name() string {
	return p.name
}

func (p *StructuredProvider) WaitSelector() string {
	return ""
}

func (p *StructuredProvider) BuildURL(template string, combo models.DateCombination) (string, error) {
	return BuildURL(template, combo)
}

// Parse prefers captured API responses and falls back to the page body.
func (p *StructuredProvider) Parse(res *crawler.Result) (*parser.Result, error) {
	if len(res.NetworkEvents) > 0 {
		responses := make([]parser.APIResponse, len(res.NetworkEvents))
		for i, ev := range res.NetworkEvents {
			responses[i] = parser.APIResponse{URL: ev.URL, Body: ev.Body}
		}
		total, offers, err := p.parser.ParseAPIResponses(responses)
		if err != nil {
			return nil, NewProviderError(p.name, err)
		}
		return &parser.Result{Offers: offers, TotalPrice: &total}, nil
	}

	out, err := p.parser.Parse([]byte(res.HTML))
	if err != nil {
		return nil, NewProviderError(p.name, err)
	}
	return out, nil
}
